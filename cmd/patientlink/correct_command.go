package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"patientlink/internal/archive"
	"patientlink/internal/correction"
	"patientlink/internal/grouping"
	"patientlink/internal/logging"
	"patientlink/internal/rawitem"
)

// candidateFile accepts either a grouping result or a previous correction
// result; both carry patient_candidates.
type candidateFile struct {
	Candidates []*grouping.Candidate `json:"patient_candidates"`
	RawItems   []rawitem.Item        `json:"raw_items"`
}

type correctOutput struct {
	*correction.Result
	Correction *archive.Correction `json:"correction,omitempty"`
}

func newCorrectCommand(ctx *commandContext) *cobra.Command {
	var runID string
	var candidatesPath string
	var opsPath string
	var instruction string

	cmd := &cobra.Command{
		Use:   "correct",
		Short: "Apply reviewer operations (merge, reassign, change_strategy) to candidates",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			batch, err := correction.LoadOperationsFile(opsPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("instruction") {
				batch.UserInstruction = instruction
			}

			var out correctOutput
			if id := strings.TrimSpace(runID); id != "" {
				err = ctx.withArchive(func(store *archive.Store) error {
					run, err := store.GetRun(cmd.Context(), id)
					if err != nil {
						return err
					}
					resolver := indexResolver(run.Result.RawItems)
					out.Result = correction.Apply(run.Result.Candidates, batch.Operations, batch.UserInstruction,
						correction.WithItemResolver(resolver),
						correction.WithLogger(logging.WithRun(logger, id)),
					)
					saved, err := store.SaveCorrection(cmd.Context(), id, out.Result)
					if err != nil {
						return err
					}
					out.Correction = saved
					return nil
				})
				if err != nil {
					return err
				}
			} else {
				file, err := loadCandidateFile(candidatesPath)
				if err != nil {
					return err
				}
				applyOpts := []correction.Option{correction.WithLogger(logger)}
				if len(file.RawItems) > 0 {
					applyOpts = append(applyOpts, correction.WithItemResolver(indexResolver(file.RawItems)))
				}
				out.Result = correction.Apply(file.Candidates, batch.Operations, batch.UserInstruction, applyOpts...)
			}

			if ctx.outputMode(cmd) == outputJSON {
				return writeJSON(cmd, out)
			}
			w := cmd.OutOrStdout()
			fmt.Fprintln(w, renderCandidates(out.Candidates))
			fmt.Fprintf(w, "Operations applied: %d\n", len(out.OperationsApplied))
			if out.Correction != nil {
				fmt.Fprintf(w, "Run %s is now at revision %d\n", out.Correction.RunID, out.Correction.Revision)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&runID, "run", "", "Archived run id to correct")
	cmd.Flags().StringVar(&candidatesPath, "candidates", "", "Result JSON holding patient_candidates")
	cmd.Flags().StringVar(&opsPath, "ops", "", "Operations file (.json, .yaml)")
	cmd.Flags().StringVar(&instruction, "instruction", "", "Reviewer instruction recorded with the operations")
	cmd.MarkFlagsMutuallyExclusive("run", "candidates")
	cmd.MarkFlagsOneRequired("run", "candidates")
	_ = cmd.MarkFlagRequired("ops")
	return cmd
}

func indexResolver(items []rawitem.Item) correction.ItemResolver {
	index := rawitem.Index(items)
	return func(id string) (rawitem.Item, bool) {
		item, ok := index[id]
		return item, ok
	}
}

func loadCandidateFile(path string) (candidateFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return candidateFile{}, fmt.Errorf("read candidates: %w", err)
	}
	var file candidateFile
	if err := json.Unmarshal(data, &file); err != nil {
		return candidateFile{}, fmt.Errorf("decode candidates: %w", err)
	}
	if file.Candidates == nil {
		return candidateFile{}, errors.New("decode candidates: patient_candidates is missing")
	}
	return file, nil
}
