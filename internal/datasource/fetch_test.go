package datasource

import (
	"context"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestFetchDecodesGrid(t *testing.T) {
	const body = `{
		"variable": "rsds",
		"units": "W m-2",
		"lat": [39.0, 40.0],
		"lon": [254.0, 255.0],
		"values": [[600, 610, null, 630]]
	}`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}))
	defer srv.Close()

	f := NewFetcher(FetcherOptions{MaxAttempts: 1})
	g, err := f.Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if g.Variable != "rsds" || g.Steps() != 1 {
		t.Errorf("unexpected grid metadata: %+v", g)
	}
	if g.Values[0][0] != 600 {
		t.Errorf("value = %v, expected 600", g.Values[0][0])
	}
	if !math.IsNaN(g.Values[0][2]) {
		t.Errorf("null cell = %v, expected NaN", g.Values[0][2])
	}
}

func TestFetchGivesUpOnServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer srv.Close()

	f := NewFetcher(FetcherOptions{MaxAttempts: 1})
	if _, err := f.Fetch(context.Background(), srv.URL); err == nil {
		t.Error("expected error after exhausting attempts")
	}
}

func TestFetchRejectsInconsistentGrid(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"variable":"tasmax","units":"K","lat":[39.0],"lon":[254.0,255.0],"values":[[1]]}`))
	}))
	defer srv.Close()

	f := NewFetcher(FetcherOptions{MaxAttempts: 1})
	if _, err := f.Fetch(context.Background(), srv.URL); err == nil {
		t.Error("expected validation error for short plane")
	}
}
