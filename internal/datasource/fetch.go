package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/wodekuailen/climate-model/internal/log"
	"golang.org/x/sync/semaphore"
)

const (
	defaultFetchTimeout  = 60 * time.Second
	defaultMaxAttempts   = 5
	defaultMaxConcurrent = 4
	maxBackoff           = 30 * time.Second
)

// Fetcher downloads grid datasets over HTTP with bounded concurrency and
// retry with exponential backoff. A single Fetcher may be shared by many
// sources; the semaphore caps outstanding requests across all of them.
type Fetcher struct {
	client      *http.Client
	timeout     time.Duration
	maxAttempts int
	sem         *semaphore.Weighted
}

// FetcherOptions tune the fetcher; zero values select defaults.
type FetcherOptions struct {
	Timeout       time.Duration
	MaxAttempts   int
	MaxConcurrent int
}

// NewFetcher creates a fetcher with the given options.
func NewFetcher(opts FetcherOptions) *Fetcher {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultFetchTimeout
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = defaultMaxAttempts
	}
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = defaultMaxConcurrent
	}
	return &Fetcher{
		client:      &http.Client{},
		timeout:     opts.Timeout,
		maxAttempts: opts.MaxAttempts,
		sem:         semaphore.NewWeighted(int64(opts.MaxConcurrent)),
	}
}

// gridPayload is the JSON wire form of a Grid. Gaps travel as nulls because
// JSON has no NaN literal.
type gridPayload struct {
	Variable string       `json:"variable"`
	Units    string       `json:"units"`
	Lats     []float64    `json:"lat"`
	Lons     []float64    `json:"lon"`
	Values   [][]*float64 `json:"values"`
}

func (p *gridPayload) toGrid() *Grid {
	g := &Grid{
		Variable: p.Variable,
		Units:    p.Units,
		Lats:     p.Lats,
		Lons:     p.Lons,
		Values:   make([][]float64, len(p.Values)),
	}
	for step, plane := range p.Values {
		cells := make([]float64, len(plane))
		for i, v := range plane {
			if v == nil {
				cells[i] = math.NaN()
			} else {
				cells[i] = *v
			}
		}
		g.Values[step] = cells
	}
	return g
}

// Fetch downloads and decodes one grid dataset. Attempts are retried with
// exponential backoff capped at 30 seconds; each attempt carries its own
// timeout so a hung server cannot stall the caller indefinitely.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*Grid, error) {
	if err := f.sem.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("acquiring fetch slot: %w", err)
	}
	defer f.sem.Release(1)

	var lastErr error
	for attempt := 0; attempt < f.maxAttempts; attempt++ {
		if attempt > 0 {
			delay := time.Second * time.Duration(1<<attempt) // Exponential backoff
			if delay > maxBackoff {
				delay = maxBackoff
			}
			log.Warnf("fetch attempt #%v for %v failed (%v), retrying in %v", attempt, url, lastErr, delay)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		grid, err := f.fetchOnce(ctx, url)
		if err == nil {
			return grid, nil
		}
		lastErr = err
	}

	return nil, fmt.Errorf("fetching %v: giving up after %d attempts: %w", url, f.maxAttempts, lastErr)
}

func (f *Fetcher) fetchOnce(ctx context.Context, url string) (*Grid, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %v", resp.Status)
	}

	var payload gridPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decoding grid: %w", err)
	}

	grid := payload.toGrid()
	if err := grid.Validate(); err != nil {
		return nil, err
	}
	return grid, nil
}
