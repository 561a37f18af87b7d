package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newVersionCmd(started *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			*started = true
			fmt.Fprintf(cmd.OutOrStdout(), "izhinet version %s\n", version)
		},
	}
}
