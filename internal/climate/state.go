// Package climate holds the single-scalar climate state driven by the
// feedback simulator.
package climate

// State is the local temperature anomaly attributable to the installation.
// Each step's total forcing overwrites the anomaly; the previous value is
// discarded. The model has single-step memory: the anomaly applied at step i
// is visible only as an additive offset to the baseline temperature at step
// i+1, never as a running sum. (The original write-up called this effect
// "cumulative", which it is not; the overwrite is intentional and tested.)
type State struct {
	anomalyC    float64
	sensitivity float64 // °C per W/m²
}

// NewState returns a zero-anomaly state with the given climate sensitivity.
func NewState(sensitivity float64) *State {
	return &State{sensitivity: sensitivity}
}

// AnomalyC returns the current temperature anomaly in °C.
func (s *State) AnomalyC() float64 {
	return s.anomalyC
}

// ApplyForcing replaces the anomaly with the temperature response to the
// given total forcing (Watts) spread over the installation area (m²).
func (s *State) ApplyForcing(totalForcingW, areaM2 float64) {
	forcingDensity := totalForcingW / areaM2
	s.anomalyC = forcingDensity * s.sensitivity
}
