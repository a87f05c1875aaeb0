package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"patientlink/internal/archive"
	"patientlink/internal/grouping"
	"patientlink/internal/summary"
)

func newSummaryCommand(ctx *commandContext) *cobra.Command {
	var runID string
	var resultPath string

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print the reviewer summary for a grouping result",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result *grouping.Result
			if id := strings.TrimSpace(runID); id != "" {
				err := ctx.withArchive(func(store *archive.Store) error {
					run, err := store.GetRun(cmd.Context(), id)
					if err != nil {
						return err
					}
					result = run.Result
					return nil
				})
				if err != nil {
					return err
				}
			} else {
				loaded, err := loadResultFile(resultPath)
				if err != nil {
					return err
				}
				result = loaded
			}

			text := summary.Summarize(result.Candidates, result.Config, result.AnalysisText)
			if ctx.outputMode(cmd) == outputJSON {
				return writeJSON(cmd, map[string]string{"summary": text})
			}
			fmt.Fprintln(cmd.OutOrStdout(), text)
			return nil
		},
	}

	cmd.Flags().StringVar(&runID, "run", "", "Archived run id")
	cmd.Flags().StringVar(&resultPath, "result", "", "Grouping result JSON")
	cmd.MarkFlagsMutuallyExclusive("run", "result")
	cmd.MarkFlagsOneRequired("run", "result")
	return cmd
}

func loadResultFile(path string) (*grouping.Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read result: %w", err)
	}
	var result grouping.Result
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("decode result: %w", err)
	}
	return &result, nil
}
