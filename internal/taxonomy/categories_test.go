package taxonomy

import "testing"

func TestKnown(t *testing.T) {
	tax := Load()

	tests := []struct {
		name     string
		category string
		want     bool
	}{
		{"cs subject", "cs.LG", true},
		{"math subject", "math.CO", true},
		{"archive-level category", "hep-th", true},
		{"statistics subject", "stat.ML", true},
		{"retired archive", "alg-geom", false},
		{"unknown", "xx.YY", false},
		{"empty", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tax.Known(tt.category); got != tt.want {
				t.Errorf("Known(%q) = %v, want %v", tt.category, got, tt.want)
			}
		})
	}
}

func TestAllMatchesCount(t *testing.T) {
	tax := Load()
	all := tax.All()
	if len(all) == 0 {
		t.Fatal("taxonomy is empty")
	}
	if len(all) != tax.Count() {
		t.Errorf("All() has %d entries, Count() = %d", len(all), tax.Count())
	}
	seen := make(map[string]struct{}, len(all))
	for _, c := range all {
		if _, dup := seen[c]; dup {
			t.Errorf("duplicate category %q", c)
		}
		seen[c] = struct{}{}
		if !tax.Known(c) {
			t.Errorf("Known(%q) = false for listed category", c)
		}
	}
}
