package question

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"lowercases and strips punctuation", "Quantos transformadores estão operacionais?", "quantos transformadores estão operacionais"},
		{"collapses whitespace", "  How   many\tPUMPS?!  ", "how many pumps"},
		{"keeps digits", "última manutenção do TR-001", "última manutenção do tr 001"},
		{"punctuation only", "?!...", ""},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.raw); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestNewDetectsLanguage(t *testing.T) {
	tests := []struct {
		raw  string
		hint string
		want string
	}{
		{"Quantos transformadores estão operacionais?", "", "pt"},
		{"How many pumps are operational?", "", "en"},
		{"status report", "", "en"},
		{"How many pumps are operational?", "pt", "pt"}, // hint wins
	}
	for _, tt := range tests {
		q := New(tt.raw, tt.hint)
		if q.Language != tt.want {
			t.Errorf("New(%q, %q).Language = %q, want %q", tt.raw, tt.hint, q.Language, tt.want)
		}
	}
}

func TestNewNormalizesOnce(t *testing.T) {
	q := New("  Quais ORDENS abertas? ", "")
	if q.Raw != "  Quais ORDENS abertas? " {
		t.Errorf("Raw changed: %q", q.Raw)
	}
	if q.Normalized != "quais ordens abertas" {
		t.Errorf("Normalized = %q", q.Normalized)
	}
}
