package logging

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldRunID identifies an archived grouping run.
	FieldRunID = "run_id"
	// FieldCandidateID identifies a patient candidate.
	FieldCandidateID = "candidate_id"
	// FieldRawItemID identifies a raw item (Excel row or file).
	FieldRawItemID = "raw_item_id"
	// FieldStrategy is the grouping strategy in effect.
	FieldStrategy = "strategy"
	// FieldEventType classifies warnings and errors for filtering.
	FieldEventType = "event_type"
	// FieldErrorHint suggests a next step to the operator.
	FieldErrorHint = "error_hint"
	// FieldImpact is the user-facing consequence of a warning.
	FieldImpact = "impact"
	// FieldDecisionType names the kind of decision being logged.
	FieldDecisionType = "decision_type"
)
