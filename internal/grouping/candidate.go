package grouping

import (
	"patientlink/internal/identity"
	"patientlink/internal/rawitem"
)

// Status is the review state of a candidate.
type Status string

const (
	StatusReady      Status = "ready"
	StatusQuarantine Status = "quarantine"
)

// Candidate is a provisional group of raw items believed to belong to one
// patient. MergedInto is empty while the candidate is live.
type Candidate struct {
	ID                    string                `json:"candidate_id"`
	InferredKey           string                `json:"inferred_key"`
	InferredIdentifiers   identity.Bundle       `json:"inferred_identifiers"`
	NormalizedIdentifiers identity.Normalized   `json:"normalized_identifiers"`
	PatientKey            string                `json:"patient_key,omitempty"`
	MatchKeyType          identity.MatchKeyType `json:"match_key_type,omitempty"`
	RawItems              []rawitem.Item        `json:"raw_items"`
	Confidence            float64               `json:"confidence"`
	Status                Status                `json:"status"`
	Issues                []string              `json:"issues"`
	Notes                 []string              `json:"notes"`
	MergedInto            string                `json:"merged_into,omitempty"`
}

func newCandidate(id, label string, confidence float64) *Candidate {
	return &Candidate{
		ID:          id,
		InferredKey: label,
		RawItems:    []rawitem.Item{},
		Confidence:  confidence,
		Status:      StatusReady,
		Issues:      []string{},
		Notes:       []string{},
	}
}

// Live reports whether the candidate has not been merged into another.
func (c *Candidate) Live() bool {
	return c.MergedInto == ""
}

// Quarantined reports whether the candidate needs review.
func (c *Candidate) Quarantined() bool {
	return c.Status == StatusQuarantine
}

// SetIdentifiers replaces the raw identifiers and recomputes the normalized
// form and patient key.
func (c *Candidate) SetIdentifiers(b identity.Bundle) {
	c.InferredIdentifiers = b
	c.NormalizedIdentifiers = identity.Normalize(b)
	key := identity.DerivePatientKey(c.NormalizedIdentifiers)
	c.PatientKey = key.Key
	c.MatchKeyType = key.Type
}

// AddItems appends raw items in order.
func (c *Candidate) AddItems(items ...rawitem.Item) {
	c.RawItems = append(c.RawItems, items...)
}

// AddIssue records a human-readable warning.
func (c *Candidate) AddIssue(issue string) {
	c.Issues = append(c.Issues, issue)
}

// AddNote records a free-text annotation.
func (c *Candidate) AddNote(note string) {
	c.Notes = append(c.Notes, note)
}

func (c *Candidate) quarantine(issue string) {
	c.Status = StatusQuarantine
	if issue != "" {
		c.AddIssue(issue)
	}
}

// Index maps candidate ids to candidates. Later duplicates do not replace
// earlier ones.
func Index(candidates []*Candidate) map[string]*Candidate {
	index := make(map[string]*Candidate, len(candidates))
	for _, c := range candidates {
		if c == nil {
			continue
		}
		if _, ok := index[c.ID]; !ok {
			index[c.ID] = c
		}
	}
	return index
}
