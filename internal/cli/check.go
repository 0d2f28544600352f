package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/guilhermedcampos/event-management-system/internal/command"
)

// CheckOptions holds flags for the check command.
type CheckOptions struct {
	*RootOptions
}

// InvalidLine describes a line that failed to parse.
type InvalidLine struct {
	Line int    `json:"line"`
	Text  string `json:"error"`
}

// CheckResult summarizes a parsed script.
type CheckResult struct {
	File     string         `json:"file"`
	Lines    int            `json:"lines"`
	Commands map[string]int `json:"commands"`
	Barriers int            `json:"barriers"`
	Invalid  []InvalidLine  `json:"invalid"`
}

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CheckOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "check <file>",
		Short: "Parse a jobs script and report invalid lines",
		Long: `Parse a jobs script without executing it.

Reports the number of commands of each kind and every line that would be
rejected as an invalid command.

Exit codes:
  0 - Every line is valid
  1 - One or more invalid lines
  2 - Command error (file not found, read failure)

Examples:
  ems check ./jobs/test.jobs
  ems check ./jobs/test.jobs --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(opts, args[0], cmd)
		},
	}

	return cmd
}

func runCheck(opts *CheckOptions, path string, cmd *cobra.Command) error {
	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}

	f, err := os.Open(path)
	if err != nil {
		return outputCommandError(out, "E_SCRIPT_OPEN", "failed to open script", err)
	}
	defer f.Close()

	result, err := checkScript(path, command.NewParser(f))
	if err != nil {
		return outputCommandError(out, "E_SCRIPT_READ", "failed to read script", err)
	}

	if opts.Format == "json" {
		if len(result.Invalid) == 0 {
			return out.Success(result)
		}
		resp := CLIResponse{
			Status: "error",
			Data:   result,
			Error:  &CLIError{Code: "E_INVALID_LINES", Message: fmt.Sprintf("%d invalid line(s)", len(result.Invalid))},
		}
		if err := out.JSON(resp); err != nil {
			return err
		}
	} else {
		w := cmd.OutOrStdout()
		for _, inv := range result.Invalid {
			fmt.Fprintf(w, "%s:%d: %s\n", path, inv.Line, inv.Text)
		}
		fmt.Fprintf(w, "%s: %d lines, %d barriers, %d invalid\n", path, result.Lines, result.Barriers, len(result.Invalid))
	}

	if len(result.Invalid) > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d invalid line(s)", len(result.Invalid)))
	}
	return nil
}

func checkScript(name string, src command.Source) (*CheckResult, error) {
	result := &CheckResult{
		File:     name,
		Commands: map[string]int{},
		Invalid:  []InvalidLine{},
	}
	for {
		cmd, err := src.Next()
		if errors.Is(err, io.EOF) {
			return result, nil
		}
		if err != nil {
			return nil, err
		}

		result.Lines = cmd.Line
		switch cmd.Kind {
		case command.KindEmpty:
		case command.KindInvalid:
			result.Invalid = append(result.Invalid, InvalidLine{Line: cmd.Line, Text: cmd.Err.Error()})
		case command.KindBarrier:
			result.Barriers++
			result.Commands[cmd.Kind.String()]++
		default:
			result.Commands[cmd.Kind.String()]++
		}
	}
}
