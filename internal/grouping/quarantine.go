package grouping

import (
	"patientlink/internal/identity"
)

const (
	issueNoIdentifiers = "No reliable identifiers (needs patient_id or name+dob)."
	issueShortID       = "Patient ID looks too short; high collision risk."
)

// finalize applies the quarantine decision. Caps are cumulative and status is
// decided last. A status already set to quarantine is kept.
func (r *groupRun) finalize(c *Candidate) {
	ni := c.NormalizedIdentifiers

	if !ni.HasPatientID() && !ni.HasNameDOB() {
		c.AddIssue(issueNoIdentifiers)
		c.Confidence = min(c.Confidence, r.policy.NoIdentifierCap)
		r.decision(c, "quarantine_cap", "no_identifiers", "confidence capped")
	}

	if ni.HasPatientID() && isDigits(ni.PatientID) && len(ni.PatientID) < r.policy.ShortNumericIDMinLen {
		c.AddIssue(issueShortID)
		c.Confidence = min(c.Confidence, r.policy.ShortNumericIDCap)
		r.decision(c, "quarantine_cap", "short_numeric_id", ni.PatientID)
	}

	if c.Confidence < r.policy.QuarantineThreshold {
		c.Status = StatusQuarantine
	}
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func identityWithID(id string) identity.Bundle {
	return identity.Bundle{PatientID: id}
}
