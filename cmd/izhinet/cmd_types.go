package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"izhinet/pkg/izhinet"
)

func newTypesCmd(started *bool) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "types",
		Short: "List the neuron type catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			*started = true
			types := izhinet.NeuronTypes()
			if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(types)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "TYPE\tA\tB\tC\tD\tINHIBITORY")
			for _, ti := range types {
				fmt.Fprintf(w, "%s\t%g\t%g\t%g\t%g\t%t\n", ti.Name, ti.A, ti.B, ti.C, ti.D, ti.Inhibitory)
			}
			return w.Flush()
		},
	}
	cmd.Flags().Bool("json", false, "Output as JSON")
	return cmd
}
