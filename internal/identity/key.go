package identity

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/google/uuid"
)

// MatchKeyType names the evidence tier a patient key was derived from.
type MatchKeyType string

const (
	MatchPatientID MatchKeyType = "patient_id"
	MatchNameDOB   MatchKeyType = "name_dob"
	MatchName      MatchKeyType = "name"
	MatchUnknown   MatchKeyType = "unknown"
)

// keySeparator joins values inside the hashed input. It cannot appear in any
// normalized value.
const keySeparator = "\x1f"

// PatientKey is an opaque digest plus the tier that produced it.
type PatientKey struct {
	Key  string       `json:"patient_key"`
	Type MatchKeyType `json:"match_key_type"`
}

// DerivePatientKey digests n using the strongest evidence available:
// patient id, else name and date of birth, else name. Without any evidence the
// key is salted with a random UUID, so two unknown bundles never share a key.
func DerivePatientKey(n Normalized) PatientKey {
	switch {
	case n.PatientID != "":
		return PatientKey{Key: digest("pid", n.PatientID), Type: MatchPatientID}
	case n.Name != "" && n.DOB != "":
		return PatientKey{Key: digest("name_dob", n.Name, n.DOB), Type: MatchNameDOB}
	case n.Name != "":
		return PatientKey{Key: digest("name", n.Name), Type: MatchName}
	default:
		return PatientKey{Key: digest("unknown", uuid.NewString()), Type: MatchUnknown}
	}
}

func digest(tag string, values ...string) string {
	sum := sha256.Sum256([]byte(tag + ":" + strings.Join(values, keySeparator)))
	return hex.EncodeToString(sum[:])
}
