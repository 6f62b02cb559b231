package simulator

import (
	"context"
	"errors"
	"fmt"
	"math"
	"reflect"
	"testing"

	"github.com/wodekuailen/climate-model/internal/datasource"
	"github.com/wodekuailen/climate-model/pkg/pvpower"
	"go.uber.org/zap"
)

// fakeSource serves a scripted sample series; nil entries are data gaps.
type fakeSource struct {
	samples []*datasource.Sample
	initErr error
	atCalls int
}

func (f *fakeSource) Init(ctx context.Context) error {
	return f.initErr
}

func (f *fakeSource) At(ctx context.Context, step int) (datasource.Sample, error) {
	f.atCalls++
	if step < 0 || step >= len(f.samples) {
		return datasource.Sample{}, fmt.Errorf("%w: step %d", datasource.ErrNoData, step)
	}
	if f.samples[step] == nil {
		return datasource.Sample{}, fmt.Errorf("%w: step %d", datasource.ErrNoData, step)
	}
	return *f.samples[step], nil
}

func steadySource(n int, tempC, insolation float64) *fakeSource {
	s := &fakeSource{}
	for i := 0; i < n; i++ {
		s.samples = append(s.samples, &datasource.Sample{BaselineTempC: tempC, InsolationWm2: insolation})
	}
	return s
}

func testPanel(t *testing.T) *pvpower.Model {
	t.Helper()
	panel, err := pvpower.New(1000, 0.15, 0.25, -0.08)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return panel
}

func newTestSimulator(t *testing.T, cfg Config, src datasource.Source) *Simulator {
	t.Helper()
	sim, err := New(cfg, src, zap.NewNop().Sugar())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return sim
}

func TestNewValidation(t *testing.T) {
	panel := testPanel(t)
	src := steadySource(1, 15, 700)
	logger := zap.NewNop().Sugar()

	tests := []struct {
		name string
		cfg  Config
		src  datasource.Source
	}{
		{"negative steps", Config{Steps: -1, GroundAlbedo: 0.25, Panel: panel, Sensitivity: 0.02}, src},
		{"albedo above one", Config{Steps: 10, GroundAlbedo: 1.5, Panel: panel, Sensitivity: 0.02}, src},
		{"missing panel", Config{Steps: 10, GroundAlbedo: 0.25, Sensitivity: 0.02}, src},
		{"missing source", Config{Steps: 10, GroundAlbedo: 0.25, Panel: panel, Sensitivity: 0.02}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.cfg, tt.src, logger); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestRunProducesOneRecordPerStep(t *testing.T) {
	cfg := Config{Steps: 24, GroundAlbedo: 0.25, Panel: testPanel(t), Sensitivity: 0.02}
	sim := newTestSimulator(t, cfg, steadySource(24, 15, 700))

	result, err := sim.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Records) != 24 {
		t.Errorf("got %d records, expected 24", len(result.Records))
	}
	if result.Skipped != 0 {
		t.Errorf("Skipped = %d, expected 0", result.Skipped)
	}
	for i, rec := range result.Records {
		if rec.Step != i {
			t.Errorf("record %d has step %d, expected %d", i, rec.Step, i)
		}
	}
}

func TestRunZeroLength(t *testing.T) {
	cfg := Config{Steps: 0, GroundAlbedo: 0.25, Panel: testPanel(t), Sensitivity: 0.02}
	sim := newTestSimulator(t, cfg, steadySource(0, 15, 700))

	result, err := sim.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Records) != 0 || result.SourceFailed {
		t.Errorf("expected empty successful result, got %+v", result)
	}
}

func TestRunSkipsGapsWithoutTouchingAnomaly(t *testing.T) {
	src := steadySource(5, 15, 700)
	src.samples[2] = nil // gap at step 2

	cfg := Config{Steps: 5, GroundAlbedo: 0.25, Panel: testPanel(t), Sensitivity: 0.02}
	sim := newTestSimulator(t, cfg, src)

	result, err := sim.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Records) != 4 {
		t.Errorf("got %d records, expected 4", len(result.Records))
	}
	if result.Skipped != 1 {
		t.Errorf("Skipped = %d, expected 1", result.Skipped)
	}

	// Step 3's local temperature must still reflect the anomaly written at
	// step 1; the gap at step 2 neither cleared nor advanced it.
	var step1, step3 int
	for i, rec := range result.Records {
		if rec.Step == 1 {
			step1 = i
		}
		if rec.Step == 3 {
			step3 = i
		}
	}
	wantLocal := 15 + result.Records[step1].TempAnomalyC
	if math.Abs(result.Records[step3].LocalTempC-wantLocal) > 1e-9 {
		t.Errorf("step 3 local temp = %v, expected %v (anomaly preserved across gap)",
			result.Records[step3].LocalTempC, wantLocal)
	}
}

func TestRunSingleStepMemory(t *testing.T) {
	const (
		area        = 1000.0
		sensitivity = 0.02
	)
	cfg := Config{Steps: 6, GroundAlbedo: 0.25, Panel: testPanel(t), Sensitivity: sensitivity}
	sim := newTestSimulator(t, cfg, steadySource(6, 15, 700))

	result, err := sim.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, rec := range result.Records {
		total := rec.AlbedoForcingW + rec.WasteHeatW
		want := total / area * sensitivity
		if math.Abs(rec.TempAnomalyC-want) > 1e-12 {
			t.Errorf("step %d anomaly = %v, expected sensitivity×forcing/area = %v",
				rec.Step, rec.TempAnomalyC, want)
		}
	}

	// First step sees a zero anomaly.
	if result.Records[0].LocalTempC != 15 {
		t.Errorf("step 0 local temp = %v, expected the bare baseline 15", result.Records[0].LocalTempC)
	}
}

func TestRunDeterminism(t *testing.T) {
	run := func() []float64 {
		cfg := Config{Steps: 48, GroundAlbedo: 0.25, Panel: testPanel(t), Sensitivity: 0.02}
		src := &fakeSource{}
		for i := 0; i < 48; i++ {
			src.samples = append(src.samples, &datasource.Sample{
				BaselineTempC: 10 + 10*math.Sin(float64(i)*math.Pi/6),
				InsolationWm2: 600 + 400*math.Sin(float64(i-3)*math.Pi/6),
			})
		}
		sim := newTestSimulator(t, cfg, src)
		result, err := sim.Run(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		out := make([]float64, 0, len(result.Records)*3)
		for _, rec := range result.Records {
			out = append(out, rec.LocalTempC, rec.TempAnomalyC, rec.ElectricalPowerW)
		}
		return out
	}

	if !reflect.DeepEqual(run(), run()) {
		t.Error("identical inputs produced different output sequences")
	}
}

func TestRunSourceInitFailure(t *testing.T) {
	src := &fakeSource{initErr: errors.New("connection refused")}
	cfg := Config{Steps: 10, GroundAlbedo: 0.25, Panel: testPanel(t), Sensitivity: 0.02}
	sim := newTestSimulator(t, cfg, src)

	result, err := sim.Run(context.Background())
	if err != nil {
		t.Fatalf("init failure must be a documented halt, got error: %v", err)
	}
	if !result.SourceFailed {
		t.Error("SourceFailed not set")
	}
	if len(result.Records) != 0 {
		t.Errorf("got %d records, expected none", len(result.Records))
	}
	if src.atCalls != 0 {
		t.Errorf("At was called %d times after failed Init", src.atCalls)
	}
}

func TestRunExecutesOnce(t *testing.T) {
	cfg := Config{Steps: 3, GroundAlbedo: 0.25, Panel: testPanel(t), Sensitivity: 0.02}
	sim := newTestSimulator(t, cfg, steadySource(3, 15, 700))

	if _, err := sim.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := sim.Run(context.Background()); !errors.Is(err, ErrAlreadyRun) {
		t.Errorf("second Run error = %v, expected ErrAlreadyRun", err)
	}
}

func TestRunHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cfg := Config{Steps: 10, GroundAlbedo: 0.25, Panel: testPanel(t), Sensitivity: 0.02}
	sim := newTestSimulator(t, cfg, steadySource(10, 15, 700))

	if _, err := sim.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Run error = %v, expected context.Canceled", err)
	}
}
