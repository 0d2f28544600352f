package cli

import (
	"context"
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/guilhermedcampos/event-management-system/internal/store"
)

// JournalOptions holds flags for the journal command.
type JournalOptions struct {
	*RootOptions
	Database string
	RunID    string
	Script   string
}

// JournalResult holds the journal output.
type JournalResult struct {
	Runs    []store.Run   `json:"runs,omitempty"`
	Entries []store.Entry `json:"entries,omitempty"`
}

// NewJournalCommand creates the journal command.
func NewJournalCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &JournalOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Show recorded runs and executed lines",
		Long: `Show the contents of a run journal written by "ems run --journal".

Without --run, lists the recorded runs. With --run, lists the executed
lines of that run in execution order, optionally limited to one script.

Examples:
  ems journal --db runs.db
  ems journal --db runs.db --run 0190b6c2-... --script test.jobs
  ems journal --db runs.db --run 0190b6c2-... --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runJournal(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite journal (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "run id to show")
	cmd.Flags().StringVar(&opts.Script, "script", "", "limit entries to one script")

	return cmd
}

func runJournal(opts *JournalOptions, cmd *cobra.Command) error {
	ctx := context.Background()

	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}
	w := cmd.OutOrStdout()

	st, err := store.Open(opts.Database)
	if err != nil {
		return outputCommandError(out, "E_JOURNAL_OPEN", "failed to open journal", err)
	}
	defer st.Close()

	if opts.RunID == "" {
		runs, err := st.ReadRuns(ctx)
		if err != nil {
			return outputCommandError(out, "E_JOURNAL_READ", "failed to read runs", err)
		}
		if opts.Format == "json" {
			return out.Success(JournalResult{Runs: runs})
		}
		if len(runs) == 0 {
			fmt.Fprintln(w, "No runs recorded.")
			return nil
		}
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "RUN\tSTARTED\tDIRECTORY\tPROCESSES\tTHREADS")
		for _, r := range runs {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\n", r.ID, r.StartedAt.Format("2006-01-02 15:04:05"), r.Directory, r.MaxProcesses, r.MaxThreads)
		}
		return tw.Flush()
	}

	if _, err := st.ReadRun(ctx, opts.RunID); err != nil {
		if errors.Is(err, store.ErrRunNotFound) {
			return outputCommandError(out, "E_RUN_NOT_FOUND", fmt.Sprintf("run not found: %s", opts.RunID), nil)
		}
		return outputCommandError(out, "E_JOURNAL_READ", "failed to read run", err)
	}

	entries, err := st.ReadEntries(ctx, store.Filter{RunID: opts.RunID, Script: opts.Script})
	if err != nil {
		return outputCommandError(out, "E_JOURNAL_READ", "failed to read entries", err)
	}
	if opts.Format == "json" {
		return out.JSON(CLIResponse{Status: "ok", Data: JournalResult{Entries: entries}, RunID: opts.RunID})
	}

	if len(entries) == 0 {
		fmt.Fprintf(w, "No entries for run: %s\n", opts.RunID)
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SEQ\tSCRIPT\tGEN\tWORKER\tLINE\tKIND\tOUTCOME\tMESSAGE")
	for _, e := range entries {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%d\t%d\t%s\t%s\t%s\n",
			e.Seq, e.Script, e.Generation, e.Worker, e.Line, e.Kind, e.Outcome, e.Message)
	}
	return tw.Flush()
}
