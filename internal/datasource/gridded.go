package datasource

import (
	"context"
	"fmt"
	"strings"

	"github.com/wodekuailen/climate-model/internal/log"
)

const kelvinOffset = 273.15

// GriddedSource reads baseline temperature and insolation from two remote
// gridded datasets, mirroring the split temperature/radiation sources of
// the upstream climatology archive. All remote IO happens in Init; At is a
// local nearest-neighbor lookup.
type GriddedSource struct {
	tempURL string
	radURL  string
	lat     float64
	lon     float64

	fetcher *Fetcher
	cache   *Cache

	tempGrid *Grid
	radGrid  *Grid
}

// NewGriddedSource creates a source for the given dataset URLs and point.
// cache may be nil to disable on-disk caching.
func NewGriddedSource(tempURL, radURL string, lat, lon float64, fetcher *Fetcher, cache *Cache) *GriddedSource {
	return &GriddedSource{
		tempURL: tempURL,
		radURL:  radURL,
		lat:     lat,
		lon:     lon,
		fetcher: fetcher,
		cache:   cache,
	}
}

// Init fetches both datasets. Any failure leaves the source unusable and is
// terminal for the run that owns it.
func (s *GriddedSource) Init(ctx context.Context) error {
	var err error
	if s.tempGrid, err = s.load(ctx, s.tempURL); err != nil {
		return fmt.Errorf("loading temperature data: %w", err)
	}
	if s.radGrid, err = s.load(ctx, s.radURL); err != nil {
		return fmt.Errorf("loading radiation data: %w", err)
	}
	log.Infow("climate datasets loaded",
		"temp_steps", s.tempGrid.Steps(),
		"rad_steps", s.radGrid.Steps(),
		"lat", s.lat,
		"lon", NormalizeLon(s.lon))
	return nil
}

func (s *GriddedSource) load(ctx context.Context, url string) (*Grid, error) {
	if s.cache != nil {
		if g, ok := s.cache.Get(url); ok {
			log.Debugf("cache hit for %v", url)
			return g, nil
		}
	}
	g, err := s.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.Put(url, g)
	}
	return g, nil
}

// At returns the sample nearest to the configured point for the given step.
// Temperature grids published in Kelvin are converted to °C.
func (s *GriddedSource) At(ctx context.Context, step int) (Sample, error) {
	if s.tempGrid == nil || s.radGrid == nil {
		return Sample{}, fmt.Errorf("source not initialized")
	}
	if err := ctx.Err(); err != nil {
		return Sample{}, err
	}

	temp, err := s.tempGrid.At(s.lat, s.lon, step)
	if err != nil {
		return Sample{}, err
	}
	rad, err := s.radGrid.At(s.lat, s.lon, step)
	if err != nil {
		return Sample{}, err
	}

	if isKelvin(s.tempGrid.Units) {
		temp -= kelvinOffset
	}

	return Sample{BaselineTempC: temp, InsolationWm2: rad}, nil
}

func isKelvin(units string) bool {
	switch strings.ToLower(strings.TrimSpace(units)) {
	case "k", "kelvin", "degk":
		return true
	}
	return false
}
