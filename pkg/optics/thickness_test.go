package optics

import (
	"math"
	"testing"
)

func TestThickness_At_Boundaries(t *testing.T) {
	th := Thickness{Short: 2.0, Mid: 3.0, Long: 5.0}

	tests := []struct {
		name     string
		zoom     float64
		expected float64
	}{
		{"short state", 0.0, 2.0},
		{"mid state", 0.5, 3.0},
		{"long state", 1.0, 5.0},
		{"first segment midpoint", 0.25, 2.5},
		{"second segment midpoint", 0.75, 4.0},
		{"clamped below", -0.5, 2.0},
		{"clamped above", 1.5, 5.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := th.At(tt.zoom)
			if math.Abs(got-tt.expected) > 1e-12 {
				t.Errorf("At(%v) = %v, expected %v", tt.zoom, got, tt.expected)
			}
		})
	}
}

func TestFixedThickness_BroadcastsAllStates(t *testing.T) {
	th := FixedThickness(4.2)
	if th.Short != 4.2 || th.Mid != 4.2 || th.Long != 4.2 {
		t.Errorf("FixedThickness(4.2) = %+v, expected all states 4.2", th)
	}
}
