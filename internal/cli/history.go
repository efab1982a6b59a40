package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/psykit/psykit/internal/store"
)

// HistoryRun is one run in the history command's JSON output.
type HistoryRun struct {
	ID           string       `json:"id"`
	Invoke       string       `json:"invoke"`
	ScheduleHash string       `json:"schedule_hash"`
	CreatedAt    string       `json:"created_at"`
	Steps        []store.Step `json:"steps,omitempty"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "history [invoke]",
		Short: "List recorded compile runs",
		Long: `List compile runs recorded in the provenance database, newest first,
with the transformations each run applied. An invoke argument restricts
the listing to that invocation.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			invoke := ""
			if len(args) == 1 {
				invoke = args[0]
			}
			return runHistory(rootOpts, dbPath, invoke, cmd)
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "", "provenance database path (required)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runHistory(opts *RootOptions, dbPath, invoke string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	if _, err := os.Stat(dbPath); err != nil {
		_ = formatter.Error(ErrCodeHistory, fmt.Sprintf("database not found: %s", dbPath), nil)
		return NewExitError(ExitCommandError, "database not found: "+dbPath)
	}

	st, err := store.Open(dbPath)
	if err != nil {
		_ = formatter.Error(ErrCodeStore, err.Error(), nil)
		return WrapExitError(ExitCommandError, "opening provenance store", err)
	}
	defer st.Close()

	runs, err := st.ReadRuns(cmd.Context(), invoke)
	if err != nil {
		_ = formatter.Error(ErrCodeHistory, err.Error(), nil)
		return WrapExitError(ExitCommandError, "reading runs", err)
	}

	out := make([]HistoryRun, len(runs))
	for i, run := range runs {
		steps, err := st.ReadSteps(cmd.Context(), run.ID)
		if err != nil {
			_ = formatter.Error(ErrCodeHistory, err.Error(), nil)
			return WrapExitError(ExitCommandError, "reading steps", err)
		}
		out[i] = HistoryRun{
			ID:           run.ID,
			Invoke:       run.Invoke,
			ScheduleHash: run.ScheduleHash,
			CreatedAt:    run.CreatedAt.Format(time.RFC3339),
			Steps:        steps,
		}
	}

	if formatter.Format == "json" {
		return formatter.Success(out)
	}

	if len(out) == 0 {
		fmt.Fprintln(formatter.Writer, "no runs recorded")
		return nil
	}
	for _, run := range out {
		fmt.Fprintf(formatter.Writer, "%s  %s  %s  %s\n", run.ID, run.CreatedAt, run.Invoke, run.ScheduleHash)
		for _, step := range run.Steps {
			fmt.Fprintf(formatter.Writer, "    %d. %s @ %s -> %s\n", step.Position, step.Name, step.Target, step.HashAfter)
		}
	}
	return nil
}
