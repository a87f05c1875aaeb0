package grouping

import (
	"context"
	"fmt"
	"log/slog"

	"patientlink/internal/extract"
	"patientlink/internal/logging"
	"patientlink/internal/rawitem"
)

// Result is the engine output: the candidates plus the inputs echoed back for
// downstream formatting and review.
type Result struct {
	Candidates   []*Candidate   `json:"patient_candidates"`
	Config       Config         `json:"grouping_config"`
	RawItems     []rawitem.Item `json:"raw_items"`
	AnalysisText string         `json:"analysis_text"`
}

// Engine runs grouping strategies. The zero value is not usable; call
// NewEngine.
type Engine struct {
	policy    Policy
	extractor *extract.Extractor
	logger    *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithPolicy overrides the default confidence policy.
func WithPolicy(p Policy) Option {
	return func(e *Engine) {
		e.policy = p.normalized()
	}
}

// WithExtractor replaces the row identifier extractor.
func WithExtractor(x *extract.Extractor) Option {
	return func(e *Engine) {
		if x != nil {
			e.extractor = x
		}
	}
}

// NewEngine constructs an engine with default policy and extractor.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		policy:    DefaultPolicy(),
		extractor: extract.NewExtractor(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = logging.NewComponentLogger(e.logger, "grouping")
	return e
}

// Group validates items and cfg, runs the configured strategy and applies the
// quarantine decision to every candidate. Invalid items fail the whole call;
// everything else degrades to quarantined candidates.
func (e *Engine) Group(items []rawitem.Item, cfg Config) (*Result, error) {
	if err := rawitem.Validate(items); err != nil {
		return nil, fmt.Errorf("group: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("group: %w", err)
	}

	policy := e.policy
	if t := cfg.Quarantine.Threshold; t != nil {
		policy.QuarantineThreshold = *t
	}
	strategy := cfg.Strategy()
	run := &groupRun{
		policy:    policy,
		extractor: e.extractor,
		logger:    e.logger.With(logging.String(logging.FieldStrategy, string(strategy))),
	}

	switch strategy {
	case StrategyExcelRow:
		run.groupRows(items, cfg.Excel.IDColumn)
	case StrategySubfolder:
		run.patterns = e.compilePatterns(cfg.Folder.IDPatterns)
		run.groupFolders(items)
	case StrategyIDInFilename:
		run.patterns = e.compilePatterns(cfg.Folder.IDPatterns)
		run.groupFilenameIDs(items)
	default:
		run.groupSingles(items)
	}

	quarantined := 0
	for _, c := range run.candidates {
		run.finalize(c)
		if c.Quarantined() {
			quarantined++
		}
	}

	e.logger.Info("grouping complete",
		logging.String(logging.FieldStrategy, string(strategy)),
		logging.Int("raw_items", len(items)),
		logging.Int("candidates", len(run.candidates)),
		logging.Int("quarantined", quarantined),
	)

	candidates := run.candidates
	if candidates == nil {
		candidates = []*Candidate{}
	}
	echoed := items
	if echoed == nil {
		echoed = []rawitem.Item{}
	}
	return &Result{Candidates: candidates, Config: cfg, RawItems: echoed}, nil
}

func (e *Engine) compilePatterns(patterns []IDPattern) *extract.PatternSet {
	set := extract.NewPatternSet(patterns)
	for _, bad := range set.Invalid() {
		logging.WarnWithContext(e.logger, "id pattern skipped", "id_pattern_invalid",
			logging.String("pattern", bad.Pattern),
			logging.Error(bad.Err),
			logging.String(logging.FieldErrorHint, "fix the regular expression in folder.id_patterns"),
			logging.String(logging.FieldImpact, "pattern ignored for this run"),
		)
	}
	return set
}

// groupRun holds the state of one Group call.
type groupRun struct {
	policy     Policy
	extractor  *extract.Extractor
	patterns   *extract.PatternSet
	logger     *slog.Logger
	candidates []*Candidate
}

func (r *groupRun) add(c *Candidate) {
	r.candidates = append(r.candidates, c)
}

func (r *groupRun) decision(c *Candidate, decisionType, result, reason string) {
	if !r.logger.Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	attrs := logging.DecisionAttrs(decisionType, result, reason)
	attrs = append(attrs, logging.String(logging.FieldCandidateID, c.ID))
	r.logger.Debug("grouping decision", logging.Args(attrs...)...)
}
