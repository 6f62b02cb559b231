package datasource

import (
	"fmt"
	"time"

	"github.com/wodekuailen/climate-model/pkg/config"
)

// FactoryFromConfig builds a source factory from the data section of the
// configuration. When both dataset URLs are set the factory hands out
// gridded sources that share one fetcher and one on-disk cache, so the
// concurrency cap and cached grids span all runs of a sweep. With no URLs
// configured it falls back to the synthetic clear-sky source.
func FactoryFromConfig(cfg *config.ConfigData) (func() Source, error) {
	data := cfg.Data
	sim := cfg.Simulation

	if data.TemperatureURL == "" && data.RadiationURL == "" {
		return func() Source {
			return &ClearSkySource{
				Lat:                sim.Latitude,
				Lon:                sim.Longitude,
				Altitude:           sim.Altitude,
				StartYear:          sim.StartYear,
				MeanTempC:          data.SyntheticMeanTempC,
				SeasonalAmplitudeC: data.SyntheticAmplitudeC,
			}
		}, nil
	}
	if data.TemperatureURL == "" || data.RadiationURL == "" {
		return nil, fmt.Errorf("%w: both temperature_url and radiation_url must be set, or neither", config.ErrInvalid)
	}

	fetcher := NewFetcher(FetcherOptions{
		Timeout:       time.Duration(data.FetchTimeoutSeconds) * time.Second,
		MaxAttempts:   data.FetchMaxAttempts,
		MaxConcurrent: data.MaxConcurrentFetches,
	})

	var cache *Cache
	if data.CacheDir != "" {
		var err error
		if cache, err = NewCache(data.CacheDir); err != nil {
			return nil, fmt.Errorf("opening grid cache: %w", err)
		}
	}

	return func() Source {
		return NewGriddedSource(data.TemperatureURL, data.RadiationURL,
			sim.Latitude, sim.Longitude, fetcher, cache)
	}, nil
}
