// Package pvpower models the electrical output of a photovoltaic array.
package pvpower

import (
	"errors"
	"fmt"
)

// ReferenceTempC is the cell temperature at which the nameplate efficiency
// applies. Derating is linear around this point.
const ReferenceTempC = 25.0

var (
	ErrNonPositiveArea = errors.New("pvpower: panel area must be positive")
	ErrBadEfficiency   = errors.New("pvpower: efficiency must be in [0,1)")
	ErrBadAlbedo       = errors.New("pvpower: albedo must be in [0,1]")
)

// Model holds the fixed parameters of one installation. Albedo matters here
// because the cells convert absorbed radiation, not incident radiation;
// reflected light is never available for generation.
type Model struct {
	AreaM2          float64
	Albedo          float64
	Efficiency      float64
	TempCoefficient float64 // %/°C; negative for real cells
}

// New validates the panel parameters. A non-positive area is rejected here
// rather than later producing infinite or NaN forcing densities.
func New(areaM2, albedo, efficiency, tempCoefficient float64) (*Model, error) {
	if areaM2 <= 0 {
		return nil, fmt.Errorf("%w: got %v", ErrNonPositiveArea, areaM2)
	}
	if albedo < 0 || albedo > 1 {
		return nil, fmt.Errorf("%w: got %v", ErrBadAlbedo, albedo)
	}
	if efficiency < 0 || efficiency >= 1 {
		return nil, fmt.Errorf("%w: got %v", ErrBadEfficiency, efficiency)
	}
	return &Model{
		AreaM2:          areaM2,
		Albedo:          albedo,
		Efficiency:      efficiency,
		TempCoefficient: tempCoefficient,
	}, nil
}

// Power returns the electrical output in Watts for the given insolation
// (W/m²) and ambient temperature (°C). Output is floored at zero: extreme
// derating never turns the array into a load.
func (m *Model) Power(insolation, ambientTempC float64) float64 {
	absorbed := insolation * (1 - m.Albedo) * m.AreaM2
	raw := absorbed * m.Efficiency
	derate := 1 + m.TempCoefficient*(ambientTempC-ReferenceTempC)/100
	p := raw * derate
	if p < 0 {
		return 0
	}
	return p
}
