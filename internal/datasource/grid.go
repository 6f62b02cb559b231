package datasource

import (
	"fmt"
	"math"
)

// Grid is a regular lat/lon grid of one variable over a monthly time axis.
// Longitudes are stored in degrees East, [0,360), matching the upstream
// dataset convention. NaN cells mark gaps in the record.
type Grid struct {
	Variable string      `msgpack:"variable"`
	Units    string      `msgpack:"units"`
	Lats     []float64   `msgpack:"lat"`
	Lons     []float64   `msgpack:"lon"`
	Values   [][]float64 `msgpack:"values"` // [step][lat*len(Lons)+lon]
}

// Steps returns the length of the time axis.
func (g *Grid) Steps() int {
	return len(g.Values)
}

// Validate checks the grid's internal consistency after decode.
func (g *Grid) Validate() error {
	if len(g.Lats) == 0 || len(g.Lons) == 0 {
		return fmt.Errorf("grid %q has an empty spatial axis", g.Variable)
	}
	want := len(g.Lats) * len(g.Lons)
	for step, plane := range g.Values {
		if len(plane) != want {
			return fmt.Errorf("grid %q step %d has %d cells, expected %d", g.Variable, step, len(plane), want)
		}
	}
	return nil
}

// NormalizeLon maps a longitude in (-180,180] convention to [0,360).
func NormalizeLon(lon float64) float64 {
	lon = math.Mod(lon, 360)
	if lon < 0 {
		lon += 360
	}
	return lon
}

// nearestIndex returns the index of the axis value closest to v.
func nearestIndex(axis []float64, v float64) int {
	best := 0
	bestDist := math.Abs(axis[0] - v)
	for i := 1; i < len(axis); i++ {
		if d := math.Abs(axis[i] - v); d < bestDist {
			best = i
			bestDist = d
		}
	}
	return best
}

// At returns the value of the cell nearest to (lat, lon) at the given step.
// Longitude may be supplied in either convention. Steps beyond the time
// axis and NaN cells report ErrNoData.
func (g *Grid) At(lat, lon float64, step int) (float64, error) {
	if step < 0 || step >= len(g.Values) {
		return 0, fmt.Errorf("%w: step %d outside time axis (%d steps)", ErrNoData, step, len(g.Values))
	}

	li := nearestIndex(g.Lats, lat)
	lj := nearestIndex(g.Lons, NormalizeLon(lon))

	v := g.Values[step][li*len(g.Lons)+lj]
	if math.IsNaN(v) {
		return 0, fmt.Errorf("%w: gap at step %d for %q", ErrNoData, step, g.Variable)
	}
	return v, nil
}
