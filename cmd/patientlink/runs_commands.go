package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"patientlink/internal/archive"
)

type runDetail struct {
	*archive.Run
	Corrections []archive.Correction `json:"corrections"`
}

func newRunsCommand(ctx *commandContext) *cobra.Command {
	runsCmd := &cobra.Command{
		Use:   "runs",
		Short: "Inspect archived grouping runs",
	}
	runsCmd.AddCommand(newRunsListCommand(ctx))
	runsCmd.AddCommand(newRunsShowCommand(ctx))
	return runsCmd
}

func newRunsListCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List archived runs, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withArchive(func(store *archive.Store) error {
				runs, err := store.ListRuns(cmd.Context(), limit)
				if err != nil {
					return err
				}
				if ctx.outputMode(cmd) == outputJSON {
					if runs == nil {
						runs = []archive.RunSummary{}
					}
					return writeJSON(cmd, runs)
				}
				if len(runs) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No archived runs")
					return nil
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderRuns(runs))
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to list (0 for all)")
	return cmd
}

func newRunsShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show an archived run with its corrections",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := strings.TrimSpace(args[0])
			return ctx.withArchive(func(store *archive.Store) error {
				run, err := store.GetRun(cmd.Context(), id)
				if err != nil {
					return err
				}
				corrections, err := store.Corrections(cmd.Context(), id)
				if err != nil {
					return err
				}
				if corrections == nil {
					corrections = []archive.Correction{}
				}
				if ctx.outputMode(cmd) == outputJSON {
					return writeJSON(cmd, runDetail{Run: run, Corrections: corrections})
				}

				w := cmd.OutOrStdout()
				fmt.Fprintf(w, "Run:         %s\n", run.ID)
				fmt.Fprintf(w, "Created:     %s\n", run.CreatedAt)
				fmt.Fprintf(w, "Updated:     %s\n", run.UpdatedAt)
				fmt.Fprintf(w, "Strategy:    %s\n", run.Strategy)
				fmt.Fprintf(w, "Raw items:   %d\n", run.RawItemCount)
				fmt.Fprintf(w, "Candidates:  %d (%d quarantined)\n", run.CandidateCount, run.QuarantinedCount)
				fmt.Fprintf(w, "Revision:    %d\n", run.Revision)
				fmt.Fprintf(w, "Analysis:    %s\n", yesNo(strings.TrimSpace(run.Result.AnalysisText) != ""))
				fmt.Fprintln(w, renderCandidates(run.Result.Candidates))
				for _, c := range corrections {
					instruction := c.UserInstruction
					if instruction == "" {
						instruction = "(no instruction)"
					}
					fmt.Fprintf(w, "- rev %d at %s: %d operations, %s\n", c.Revision, c.CreatedAt, len(c.Operations), instruction)
				}
				return nil
			})
		},
	}
}
