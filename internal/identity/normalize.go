package identity

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Bundle holds raw, unnormalized identifier values pulled from one source.
type Bundle struct {
	PatientID string `json:"patient_id,omitempty" yaml:"patient_id,omitempty"`
	Name      string `json:"name,omitempty" yaml:"name,omitempty"`
	DOB       string `json:"dob,omitempty" yaml:"dob,omitempty"`
}

// Normalized holds canonical identifier values. Any field may be empty.
type Normalized struct {
	PatientID string `json:"patient_id"`
	Name      string `json:"name"`
	DOB       string `json:"dob"`
}

// HasPatientID reports whether a usable patient id is present.
func (n Normalized) HasPatientID() bool {
	return n.PatientID != ""
}

// HasNameDOB reports whether both name and date of birth are present.
func (n Normalized) HasNameDOB() bool {
	return n.Name != "" && n.DOB != ""
}

// Backfill copies fields missing from b out of other. Fields already set in b
// are never overwritten.
func (b Bundle) Backfill(other Bundle) Bundle {
	if strings.TrimSpace(b.PatientID) == "" && strings.TrimSpace(other.PatientID) != "" {
		b.PatientID = other.PatientID
	}
	if strings.TrimSpace(b.Name) == "" && strings.TrimSpace(other.Name) != "" {
		b.Name = other.Name
	}
	if strings.TrimSpace(b.DOB) == "" && strings.TrimSpace(other.DOB) != "" {
		b.DOB = other.DOB
	}
	return b
}

func stripDiacritics() transform.Transformer {
	return transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
}

// NormalizeText lower-cases s, strips diacritics, trims it and collapses
// whitespace runs to single spaces.
func NormalizeText(s string) string {
	if s == "" {
		return ""
	}
	lowered := strings.ToLower(s)
	stripped, _, err := transform.String(stripDiacritics(), lowered)
	if err != nil {
		stripped = lowered
	}
	return strings.Join(strings.Fields(stripped), " ")
}

// NormalizeIdentifier applies NormalizeText and keeps only lowercase ASCII
// letters, digits, underscores and hyphens.
func NormalizeIdentifier(s string) string {
	return keepOnly(NormalizeText(s), func(r rune) bool {
		return (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' || r == '-'
	})
}

// NormalizeDateLike applies NormalizeText and keeps only digits, slashes and
// hyphens. The result is comparable text, not a validated date.
func NormalizeDateLike(s string) string {
	return keepOnly(NormalizeText(s), func(r rune) bool {
		return (r >= '0' && r <= '9') || r == '/' || r == '-'
	})
}

// Normalize converts a raw bundle into its canonical comparable form.
func Normalize(b Bundle) Normalized {
	return Normalized{
		PatientID: NormalizeIdentifier(b.PatientID),
		Name:      NormalizeText(b.Name),
		DOB:       NormalizeDateLike(b.DOB),
	}
}

func keepOnly(s string, keep func(rune) bool) string {
	if s == "" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if keep(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
