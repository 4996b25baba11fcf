package workers

import "testing"

func TestCount(t *testing.T) {
	tests := []struct {
		name       string
		multiplier float64
		limit      int
	}{
		{"cpu bound", 1.0, 0},
		{"io bound", 2.0, 0},
		{"capped", 2.0, 2},
		{"tiny multiplier still yields one", 0.001, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Count(tt.multiplier, tt.limit)
			if got < 1 {
				t.Errorf("Count(%v, %d) = %d, want >= 1", tt.multiplier, tt.limit, got)
			}
			if tt.limit > 0 && got > tt.limit {
				t.Errorf("Count(%v, %d) = %d, exceeds limit", tt.multiplier, tt.limit, got)
			}
		})
	}
}

func TestLanesOverride(t *testing.T) {
	t.Setenv("INDEX_LANES", "7")
	if got := Lanes(0); got != 7 {
		t.Errorf("Lanes(0) with INDEX_LANES=7 = %d, want 7", got)
	}
	if got := Lanes(4); got != 4 {
		t.Errorf("Lanes(4) with INDEX_LANES=7 = %d, want limit 4", got)
	}
}

func TestLanesIgnoresInvalidOverride(t *testing.T) {
	t.Setenv("INDEX_LANES", "bogus")
	if got := Lanes(0); got < 1 {
		t.Errorf("Lanes(0) with invalid override = %d, want >= 1", got)
	}
}
