package correction

import (
	"fmt"
	"log/slog"

	"patientlink/internal/grouping"
	"patientlink/internal/logging"
	"patientlink/internal/rawitem"
)

// ItemResolver looks up the original raw item for an id.
type ItemResolver func(id string) (rawitem.Item, bool)

// Result is the corrected candidate list plus the inputs echoed back.
type Result struct {
	Candidates        []*grouping.Candidate `json:"patient_candidates"`
	OperationsApplied []Operation           `json:"operations_applied"`
	UserInstruction   string                `json:"user_instruction"`
}

type applier struct {
	candidates []*grouping.Candidate
	index      map[string]*grouping.Candidate
	resolve    ItemResolver
	logger     *slog.Logger
}

// Option configures Apply.
type Option func(*applier)

// WithItemResolver makes reassign attach the original item when resolve finds
// it. Without a resolver reassign attaches rawitem.Placeholder.
func WithItemResolver(resolve ItemResolver) Option {
	return func(a *applier) {
		a.resolve = resolve
	}
}

// WithLogger sets the logger used for skipped operations.
func WithLogger(logger *slog.Logger) Option {
	return func(a *applier) {
		a.logger = logger
	}
}

// Apply runs ops in order, mutating candidates in place, and returns them
// with the operations and instruction echoed back.
func Apply(candidates []*grouping.Candidate, ops []Operation, instruction string, opts ...Option) *Result {
	a := &applier{
		candidates: candidates,
		index:      grouping.Index(candidates),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.logger = logging.NewComponentLogger(a.logger, "correction")

	for i, op := range ops {
		switch op.Op {
		case OpMerge:
			a.merge(i, op.Params)
		case OpReassign:
			a.reassign(i, op.Params)
		case OpChangeStrategy:
			a.changeStrategy(i, op.Params)
		default:
			a.skip(i, op.Op, "unknown operation")
		}
	}

	if candidates == nil {
		candidates = []*grouping.Candidate{}
	}
	if ops == nil {
		ops = []Operation{}
	}
	return &Result{Candidates: candidates, OperationsApplied: ops, UserInstruction: instruction}
}

func (a *applier) skip(i int, op OpType, reason string) {
	a.logger.Debug("correction skipped",
		logging.Int("operation_index", i),
		logging.String("op", string(op)),
		logging.String("decision_reason", reason),
	)
}

// live follows the MergedInto chain from id to the candidate that now holds
// its items. It fails on unknown ids and on chains that loop.
func (a *applier) live(id string) (*grouping.Candidate, bool) {
	c, ok := a.index[id]
	for hops := 0; ok && !c.Live(); hops++ {
		if hops >= len(a.index) {
			return nil, false
		}
		c, ok = a.index[c.MergedInto]
	}
	return c, ok
}

func (a *applier) merge(i int, p Params) {
	dst, ok := a.live(p.Into)
	if p.Into == "" || !ok {
		a.skip(i, OpMerge, fmt.Sprintf("target %q not found", p.Into))
		return
	}
	if dst.ID != p.Into {
		a.logger.Debug("merge target already merged",
			logging.String("into", p.Into),
			logging.String("live_target", dst.ID),
		)
	}
	for _, id := range p.From {
		src, ok := a.index[id]
		if !ok {
			a.skip(i, OpMerge, fmt.Sprintf("source %q not found", id))
			continue
		}
		if src == dst {
			a.skip(i, OpMerge, "self merge")
			continue
		}
		if !src.Live() {
			a.skip(i, OpMerge, fmt.Sprintf("source %q already merged into %q", id, src.MergedInto))
			continue
		}
		dst.AddItems(src.RawItems...)
		src.RawItems = []rawitem.Item{}
		src.AddNote("Merged into " + dst.ID)
		src.Confidence = 0
		src.MergedInto = dst.ID
		a.logger.Debug("candidates merged",
			logging.String(logging.FieldCandidateID, id),
			logging.String("into", dst.ID),
		)
	}
}

func (a *applier) reassign(i int, p Params) {
	target, ok := a.live(p.NewCandidate)
	if p.RawItemID == "" || !ok {
		a.skip(i, OpReassign, fmt.Sprintf("item %q or candidate %q missing", p.RawItemID, p.NewCandidate))
		return
	}

	for _, c := range a.candidates {
		if c == nil {
			continue
		}
		kept := make([]rawitem.Item, 0, len(c.RawItems))
		for _, item := range c.RawItems {
			if item.ID != p.RawItemID {
				kept = append(kept, item)
			}
		}
		c.RawItems = kept
	}

	item := rawitem.Placeholder(p.RawItemID)
	if a.resolve != nil {
		if resolved, ok := a.resolve(p.RawItemID); ok {
			item = resolved
		}
	}
	target.AddItems(item)
	a.logger.Debug("raw item reassigned",
		logging.String(logging.FieldRawItemID, p.RawItemID),
		logging.String(logging.FieldCandidateID, target.ID),
		logging.Bool("placeholder", item.SourceRef == rawitem.ReassignedRef),
	)
}

func (a *applier) changeStrategy(i int, p Params) {
	if p.UnitStrategy == "" {
		a.skip(i, OpChangeStrategy, "empty unit_strategy")
		return
	}
	note := fmt.Sprintf("User requested strategy change to %s (not auto-applied in this step).", p.UnitStrategy)
	for _, c := range a.candidates {
		if c != nil {
			c.AddNote(note)
		}
	}
}
