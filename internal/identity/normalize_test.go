package identity

import "testing"

func TestNormalizeText(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"  José   MARÍA\tPérez ", "jose maria perez"},
		{"Çağrı\nÖz", "cagrı oz"},
		{"Núñez-Ibáñez", "nunez-ibanez"},
		{" lead space", "lead space"},
	}
	for _, tt := range tests {
		if got := NormalizeText(tt.in); got != tt.want {
			t.Errorf("NormalizeText(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeIdentifier(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{" NHC 00123 ", "nhc00123"},
		{"A-100_b", "a-100_b"},
		{"Hístoria#42/x", "historia42x"},
		{"12.345.678", "12345678"},
	}
	for _, tt := range tests {
		if got := NormalizeIdentifier(tt.in); got != tt.want {
			t.Errorf("NormalizeIdentifier(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeDateLike(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"1980-01-02", "1980-01-02"},
		{" 02/01/1980 ", "02/01/1980"},
		{"2 Jan 1980", "21980"},
		{"1980.01.02", "19800102"},
	}
	for _, tt := range tests {
		if got := NormalizeDateLike(tt.in); got != tt.want {
			t.Errorf("NormalizeDateLike(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizationIsIdempotent(t *testing.T) {
	inputs := []string{
		"",
		"   ",
		"José  María",
		"ÅNGSTRÖM\t\tLab  #7",
		"ﬁle-Name_01",
		"école",
		"İstanbul",
		"a​b",
		"MIXED case 123 !!",
	}
	for _, in := range inputs {
		once := NormalizeText(in)
		if twice := NormalizeText(once); twice != once {
			t.Errorf("NormalizeText not idempotent for %q: %q then %q", in, once, twice)
		}
		onceID := NormalizeIdentifier(in)
		if twiceID := NormalizeIdentifier(onceID); twiceID != onceID {
			t.Errorf("NormalizeIdentifier not idempotent for %q: %q then %q", in, onceID, twiceID)
		}
	}
}

func TestNormalizeBundle(t *testing.T) {
	got := Normalize(Bundle{PatientID: " A 100 ", Name: "  Ana  GARCÍA ", DOB: "01/02/1990 "})
	want := Normalized{PatientID: "a100", Name: "ana garcia", DOB: "01/02/1990"}
	if got != want {
		t.Fatalf("Normalize() = %+v, want %+v", got, want)
	}
}

func TestBundleBackfillIsFirstWriteWins(t *testing.T) {
	base := Bundle{Name: "Ana"}
	got := base.Backfill(Bundle{PatientID: "42", Name: "Other", DOB: "1990"})
	want := Bundle{PatientID: "42", Name: "Ana", DOB: "1990"}
	if got != want {
		t.Fatalf("Backfill() = %+v, want %+v", got, want)
	}
}
