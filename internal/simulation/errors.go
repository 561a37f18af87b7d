package simulation

import "errors"

var (
	ErrArguments  = errors.New("invalid arguments")
	ErrOutput     = errors.New("cannot write output")
	ErrConfigFile = errors.New("configuration file error")
)

// Process exit status for each error class.
const (
	ExitArguments  = 10
	ExitOutput     = 20
	ExitConfigFile = 30
)

// ExitCode maps err to the process exit status: 0 for nil, the class code
// for wrapped sentinels and 1 for anything else.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, ErrArguments):
		return ExitArguments
	case errors.Is(err, ErrOutput):
		return ExitOutput
	case errors.Is(err, ErrConfigFile):
		return ExitConfigFile
	default:
		return 1
	}
}
