package extract

import "strings"

// AcceptThreshold is the minimum column score accepted as a patient id.
const AcceptThreshold = 6

// ColumnRule scores one aspect of a normalized column name. A matching Veto
// rule ends scoring and the column receives Weight.
type ColumnRule struct {
	Name   string
	Match  func(column string) bool
	Weight int
	Veto   bool
}

// deniedColumns are identifiers of things other than the patient.
var deniedColumns = []string{
	"study_id", "trial_id", "center_id", "hospital_id",
	"tumor_id", "lesion_id", "biopsy_id", "sample_id",
	"visit_id", "episode_id", "treatment_id",
}

// DefaultRules returns the built-in column rule table.
func DefaultRules() []ColumnRule {
	return []ColumnRule{
		{Name: "deny_list", Match: equalsAny(deniedColumns...), Weight: -100, Veto: true},
		{Name: "nhc", Match: containsAny("nhc"), Weight: 10},
		{Name: "historia", Match: containsAny("historia", "hc"), Weight: 6},
		{Name: "patient_and_id", Match: containsAll("patient", "id"), Weight: 10},
		{Name: "id_paciente", Match: containsAny("id_paciente", "idpaciente"), Weight: 10},
		{Name: "exact_patient_id", Match: equalsAny("patient_id"), Weight: 12},
		{Name: "bare_id", Match: equalsAny("id"), Weight: 3},
		{Name: "id_suffix", Match: func(c string) bool { return strings.HasSuffix(c, "_id") }, Weight: 1},
		{Name: "specimen_context", Match: containsAny("tumor", "lesion", "sample"), Weight: -8},
		{Name: "study_context", Match: containsAny("study", "trial", "center"), Weight: -8},
	}
}

var nameHints = []string{"name", "nom", "cognom", "apellido"}

var dobHints = []string{"birth", "dob", "naixement", "nacimiento"}

func equalsAny(values ...string) func(string) bool {
	return func(c string) bool {
		for _, v := range values {
			if c == v {
				return true
			}
		}
		return false
	}
}

func containsAny(values ...string) func(string) bool {
	return func(c string) bool {
		for _, v := range values {
			if strings.Contains(c, v) {
				return true
			}
		}
		return false
	}
}

func containsAll(values ...string) func(string) bool {
	return func(c string) bool {
		for _, v := range values {
			if !strings.Contains(c, v) {
				return false
			}
		}
		return true
	}
}
