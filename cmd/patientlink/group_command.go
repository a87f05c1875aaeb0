package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"patientlink/internal/archive"
	"patientlink/internal/config"
	"patientlink/internal/grouping"
	"patientlink/internal/ingest"
	"patientlink/internal/logging"
	"patientlink/internal/rawitem"
)

type groupOptions struct {
	input      string
	items      string
	grouping   string
	strategy   string
	idColumn   string
	idPatterns []string
	threshold  float64
	analysis   bool
	archive    bool
}

type groupOutput struct {
	*grouping.Result
	Run *archive.RunSummary `json:"run,omitempty"`
}

func newGroupCommand(ctx *commandContext) *cobra.Command {
	var opts groupOptions

	cmd := &cobra.Command{
		Use:   "group",
		Short: "Group raw items into patient candidates",
		Long: "Group an upload body (--input) or a raw item list (--items) into patient candidates.\n" +
			"Grouping options layer as: config file < --grouping file < flags.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			items, analysis, err := loadGroupInput(opts)
			if err != nil {
				return err
			}

			groupingCfg, err := buildGroupingConfig(cmd, cfg, opts)
			if err != nil {
				return err
			}

			engine := grouping.NewEngine(grouping.WithLogger(logger))
			result, err := engine.Group(items, groupingCfg)
			if err != nil {
				return err
			}
			result.AnalysisText = analysis

			out := groupOutput{Result: result}
			if opts.archive || cfg.Archive.Enabled {
				err := ctx.withArchive(func(store *archive.Store) error {
					run, err := store.SaveRun(cmd.Context(), result)
					if err != nil {
						return err
					}
					out.Run = run
					return nil
				})
				if err != nil {
					return err
				}
				logging.WithRun(logger, out.Run.ID).Info("run archived",
					logging.String(logging.FieldStrategy, out.Run.Strategy),
					logging.Int("candidates", out.Run.CandidateCount),
				)
			}

			if ctx.outputMode(cmd) == outputJSON {
				return writeJSON(cmd, out)
			}
			w := cmd.OutOrStdout()
			fmt.Fprintln(w, renderCandidates(result.Candidates))
			live, quarantined := countCandidates(result.Candidates)
			fmt.Fprintf(w, "Strategy: %s | Items: %d | Candidates: %d | Quarantined: %d\n",
				result.Config.Strategy(), len(result.RawItems), live, quarantined)
			if out.Run != nil {
				fmt.Fprintf(w, "Archived as run %s\n", out.Run.ID)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.input, "input", "i", "", "Upload body JSON (excelFiles/files)")
	cmd.Flags().StringVar(&opts.items, "items", "", "Raw item list JSON")
	cmd.Flags().StringVarP(&opts.grouping, "grouping", "g", "", "Grouping options file (.json, .yaml)")
	cmd.Flags().StringVarP(&opts.strategy, "strategy", "s", "", "Unit strategy: excel_row, subfolder, id_in_filename, fallback")
	cmd.Flags().StringVar(&opts.idColumn, "id-column", "", "Spreadsheet column to use when no id column is detected")
	cmd.Flags().StringArrayVar(&opts.idPatterns, "id-pattern", nil, "Filename id pattern; repeat for more (replaces configured patterns)")
	cmd.Flags().Float64Var(&opts.threshold, "threshold", 0, "Quarantine threshold between 0 and 1")
	cmd.Flags().BoolVar(&opts.analysis, "analysis", false, "Attach heuristic analysis text (requires --input)")
	cmd.Flags().BoolVar(&opts.archive, "archive", false, "Save the run to the review archive")
	cmd.MarkFlagsMutuallyExclusive("input", "items")
	cmd.MarkFlagsOneRequired("input", "items")
	return cmd
}

func loadGroupInput(opts groupOptions) ([]rawitem.Item, string, error) {
	if strings.TrimSpace(opts.items) != "" {
		if opts.analysis {
			return nil, "", errors.New("--analysis needs an upload body; use --input")
		}
		items, err := ingest.LoadItems(opts.items)
		return items, "", err
	}
	body, err := ingest.LoadBody(opts.input)
	if err != nil {
		return nil, "", err
	}
	items := ingest.BuildRawItems(body)
	if err := rawitem.Validate(items); err != nil {
		return nil, "", err
	}
	var analysis string
	if opts.analysis {
		analysis = ingest.Analyze(body)
	}
	return items, analysis, nil
}

// buildGroupingConfig layers configured defaults, the optional grouping file,
// and explicitly set flags.
func buildGroupingConfig(cmd *cobra.Command, cfg *config.Config, opts groupOptions) (grouping.Config, error) {
	gc := groupingDefaults(cfg)

	if path := strings.TrimSpace(opts.grouping); path != "" {
		fileCfg, err := grouping.LoadConfigFile(path)
		if err != nil {
			return grouping.Config{}, err
		}
		gc = overlayGroupingConfig(gc, fileCfg)
	}

	flags := cmd.Flags()
	if flags.Changed("strategy") {
		gc.UnitStrategy = strings.TrimSpace(opts.strategy)
	}
	if flags.Changed("id-column") {
		gc.Excel.IDColumn = strings.TrimSpace(opts.idColumn)
	}
	if flags.Changed("id-pattern") {
		patterns := make([]grouping.IDPattern, 0, len(opts.idPatterns))
		for _, p := range opts.idPatterns {
			patterns = append(patterns, grouping.IDPattern{Pattern: p})
		}
		gc.Folder.IDPatterns = patterns
	}
	if flags.Changed("threshold") {
		gc.Quarantine.Threshold = grouping.Float(opts.threshold)
	}

	if err := gc.Validate(); err != nil {
		return grouping.Config{}, err
	}
	return gc, nil
}

func groupingDefaults(cfg *config.Config) grouping.Config {
	gc := grouping.Config{UnitStrategy: cfg.Grouping.UnitStrategy}
	gc.Excel.IDColumn = cfg.Grouping.ExcelIDColumn
	for _, p := range cfg.Grouping.IDPatterns {
		gc.Folder.IDPatterns = append(gc.Folder.IDPatterns, grouping.IDPattern{Pattern: p.Pattern, Group: p.Group})
	}
	gc.Quarantine.Threshold = grouping.Float(cfg.Grouping.QuarantineThreshold)
	return gc
}

func overlayGroupingConfig(base, over grouping.Config) grouping.Config {
	if strings.TrimSpace(over.UnitStrategy) != "" {
		base.UnitStrategy = over.UnitStrategy
	}
	if strings.TrimSpace(over.Excel.IDColumn) != "" {
		base.Excel.IDColumn = over.Excel.IDColumn
	}
	if len(over.Folder.IDPatterns) > 0 {
		base.Folder.IDPatterns = over.Folder.IDPatterns
	}
	if over.Quarantine.Threshold != nil {
		base.Quarantine.Threshold = over.Quarantine.Threshold
	}
	return base
}

func countCandidates(candidates []*grouping.Candidate) (live, quarantined int) {
	for _, c := range candidates {
		if c == nil || !c.Live() {
			continue
		}
		live++
		if c.Quarantined() {
			quarantined++
		}
	}
	return live, quarantined
}
