package pvpower

import (
	"errors"
	"math"
	"testing"
)

func TestNewValidation(t *testing.T) {
	tests := []struct {
		name       string
		area       float64
		albedo     float64
		efficiency float64
		wantErr    error
	}{
		{"valid", 1000, 0.15, 0.25, nil},
		{"zero efficiency valid", 1000, 0.85, 0, nil},
		{"zero area", 0, 0.15, 0.25, ErrNonPositiveArea},
		{"negative area", -5, 0.15, 0.25, ErrNonPositiveArea},
		{"efficiency of one", 1000, 0.15, 1.0, ErrBadEfficiency},
		{"negative efficiency", 1000, 0.15, -0.1, ErrBadEfficiency},
		{"albedo above one", 1000, 1.2, 0.25, ErrBadAlbedo},
		{"negative albedo", 1000, -0.2, 0.25, ErrBadAlbedo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.area, tt.albedo, tt.efficiency, -0.08)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("New() error = %v, expected %v", err, tt.wantErr)
			}
		})
	}
}

func TestPower(t *testing.T) {
	m, err := New(1000, 0.15, 0.25, -0.08)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 700 W/m² absorbed at (1−0.15) over 1000 m², 25% converted:
	// 595 kW absorbed, 148.75 kW electrical at the reference temperature.
	const rawW = 700 * 0.85 * 1000 * 0.25

	tests := []struct {
		name       string
		insolation float64
		tempC      float64
		expected   float64
	}{
		{"reference temperature", 700, 25, rawW},
		{"hot cell derates output", 700, 45, rawW * (1 - 0.08*20/100)},
		{"cold cell boosts output", 700, 5, rawW * (1 + 0.08*20/100)},
		{"night", 0, 25, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := m.Power(tt.insolation, tt.tempC)
			if math.Abs(got-tt.expected) > 1e-6 {
				t.Errorf("Power() = %v, expected %v", got, tt.expected)
			}
		})
	}
}

func TestPowerDensityExample(t *testing.T) {
	// Per-m² form of the reference scenario: 700 W/m², panel albedo 0.15,
	// efficiency 0.25 ⇒ 148.75 W/m² pre-derating.
	m, err := New(1, 0.15, 0.25, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := m.Power(700, 25)
	if math.Abs(got-148.75) > 1e-9 {
		t.Errorf("Power() = %v, expected 148.75", got)
	}
}

func TestPowerNeverNegative(t *testing.T) {
	// Absurd positive coefficient and deep cold would go negative without
	// the floor.
	m, err := New(1000, 0.15, 0.25, 5.0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := m.Power(700, -100); got != 0 {
		t.Errorf("Power() = %v, expected 0 (floored)", got)
	}
}

func TestPowerMonotonicInInsolation(t *testing.T) {
	m, err := New(1000, 0.10, 0.18, -0.4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	prev := m.Power(0, 40)
	for ins := 50.0; ins <= 1200; ins += 50 {
		p := m.Power(ins, 40)
		if p < prev {
			t.Errorf("Power decreased from %v to %v at insolation %v", prev, p, ins)
		}
		prev = p
	}
}
