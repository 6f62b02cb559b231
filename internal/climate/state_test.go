package climate

import (
	"math"
	"testing"
)

func TestApplyForcingOverwrites(t *testing.T) {
	s := NewState(0.02)

	if got := s.AnomalyC(); got != 0 {
		t.Fatalf("fresh state anomaly = %v, expected 0", got)
	}

	s.ApplyForcing(500000, 1000) // 500 W/m² × 0.02 = 10 °C
	if got := s.AnomalyC(); math.Abs(got-10) > 1e-12 {
		t.Errorf("anomaly = %v, expected 10", got)
	}

	// A second application replaces the anomaly; it does not accumulate.
	s.ApplyForcing(100000, 1000) // 100 W/m² × 0.02 = 2 °C
	if got := s.AnomalyC(); math.Abs(got-2) > 1e-12 {
		t.Errorf("anomaly = %v, expected 2 (overwrite, not 12)", got)
	}

	// Negative forcing flips the sign.
	s.ApplyForcing(-250000, 1000)
	if got := s.AnomalyC(); math.Abs(got-(-5)) > 1e-12 {
		t.Errorf("anomaly = %v, expected -5", got)
	}
}

func TestApplyForcingIndependentOfHistory(t *testing.T) {
	a := NewState(0.02)
	b := NewState(0.02)

	// a has a long history, b has none; the same final forcing must give
	// bit-identical anomalies.
	for i := 0; i < 100; i++ {
		a.ApplyForcing(float64(i)*1234.5, 1000)
	}
	a.ApplyForcing(77777, 1000)
	b.ApplyForcing(77777, 1000)

	if a.AnomalyC() != b.AnomalyC() {
		t.Errorf("anomaly depends on history: %v vs %v", a.AnomalyC(), b.AnomalyC())
	}
}
