package extract

import (
	"strings"

	"patientlink/internal/identity"
	"patientlink/internal/rawitem"
)

// Extractor selects identifier columns from rows using a rule table.
type Extractor struct {
	rules     []ColumnRule
	threshold int
}

var defaultExtractor = NewExtractor()

// NewExtractor builds an extractor from the default rules followed by any
// extra rules supplied.
func NewExtractor(extra ...ColumnRule) *Extractor {
	rules := DefaultRules()
	rules = append(rules, extra...)
	return &Extractor{rules: rules, threshold: AcceptThreshold}
}

// Identifiers extracts a bundle from row with the default rules.
func Identifiers(row rawitem.Row) identity.Bundle {
	return defaultExtractor.Identifiers(row)
}

// ScoreColumn scores a column name with the default rules.
func ScoreColumn(column string) int {
	return defaultExtractor.Score(column)
}

// Score returns the patient-id likeness of a column name.
func (e *Extractor) Score(column string) int {
	key := identity.NormalizeText(column)
	score := 0
	for _, rule := range e.rules {
		if !rule.Match(key) {
			continue
		}
		if rule.Veto {
			return rule.Weight
		}
		score += rule.Weight
	}
	return score
}

// Identifiers picks the patient id, name and date of birth from row. The
// highest-scoring column wins the patient id; ties go to the earlier column.
func (e *Extractor) Identifiers(row rawitem.Row) identity.Bundle {
	var bundle identity.Bundle

	bestScore := 0
	found := false
	for _, cell := range row {
		if strings.TrimSpace(cell.Value) == "" {
			continue
		}
		score := e.Score(cell.Name)
		if score < e.threshold {
			continue
		}
		if !found || score > bestScore {
			bundle.PatientID = cell.Value
			bestScore = score
			found = true
		}
	}

	bundle.Name = firstByHint(row, nameHints)
	bundle.DOB = firstByHint(row, dobHints)
	return bundle
}

func firstByHint(row rawitem.Row, hints []string) string {
	for _, cell := range row {
		key := identity.NormalizeText(cell.Name)
		if !containsAny(hints...)(key) {
			continue
		}
		if strings.TrimSpace(cell.Value) != "" {
			return cell.Value
		}
	}
	return ""
}
