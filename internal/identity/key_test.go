package identity

import "testing"

func TestDerivePatientKeyPrecedence(t *testing.T) {
	tests := []struct {
		name string
		in   Normalized
		want MatchKeyType
	}{
		{"id wins over name and dob", Normalized{PatientID: "a100", Name: "ana", DOB: "1990"}, MatchPatientID},
		{"id alone", Normalized{PatientID: "a100"}, MatchPatientID},
		{"name and dob", Normalized{Name: "ana", DOB: "1990"}, MatchNameDOB},
		{"name only", Normalized{Name: "ana"}, MatchName},
		{"dob only", Normalized{DOB: "1990"}, MatchUnknown},
		{"nothing", Normalized{}, MatchUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DerivePatientKey(tt.in)
			if got.Type != tt.want {
				t.Fatalf("match type = %q, want %q", got.Type, tt.want)
			}
			if len(got.Key) != 64 {
				t.Fatalf("expected sha256 hex digest, got %q", got.Key)
			}
		})
	}
}

func TestDerivePatientKeyIsStableForEqualBundles(t *testing.T) {
	a := DerivePatientKey(Normalize(Bundle{PatientID: "NHC-0042"}))
	b := DerivePatientKey(Normalize(Bundle{PatientID: " nhc-0042 ", Name: "ignored"}))
	if a != b {
		t.Fatalf("expected identical keys, got %+v and %+v", a, b)
	}
}

func TestDerivePatientKeyTiersNeverCollide(t *testing.T) {
	byID := DerivePatientKey(Normalized{PatientID: "ana"})
	byName := DerivePatientKey(Normalized{Name: "ana"})
	if byID.Key == byName.Key {
		t.Fatal("patient_id and name tiers produced the same digest")
	}
	joined := DerivePatientKey(Normalized{Name: "ana 1990"})
	split := DerivePatientKey(Normalized{Name: "ana", DOB: "1990"})
	if joined.Key == split.Key {
		t.Fatal("name tier collided with name_dob tier")
	}
}

func TestDerivePatientKeyUnknownIsUniquePerCall(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 50; i++ {
		key := DerivePatientKey(Normalized{})
		if _, ok := seen[key.Key]; ok {
			t.Fatalf("unknown key repeated after %d calls", i)
		}
		seen[key.Key] = struct{}{}
	}
}
