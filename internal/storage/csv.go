package storage

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/wodekuailen/climate-model/internal/types"
)

// utf8BOM is the byte-order marker some spreadsheet tools expect at the
// start of a CSV file, and which they re-emit on export.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

var runHeader = []string{
	"month", "local_temp_C", "temp_anomaly_C", "insolation_W_m2",
	"albedo_forcing_W", "waste_heat_forcing_W", "pv_power_W",
}

var summaryHeader = []string{
	"surface_type", "material_type", "coverage_scenario",
	"surface_albedo", "panel_albedo", "panel_efficiency",
	"avg_local_temp_anomaly_C", "global_temp_change_C", "total_co2_reduction_Gt",
	"failed",
}

var _ Engine = (*CSVEngine)(nil)

// CSVEngine writes result tables as CSV files under a directory.
type CSVEngine struct {
	dir      string
	writeBOM bool
}

// NewCSVEngine creates a CSV storage engine rooted at dir. withBOM
// prefixes files with a UTF-8 BOM for spreadsheet interoperability.
func NewCSVEngine(dir string, withBOM bool) (*CSVEngine, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating results dir: %w", err)
	}
	return &CSVEngine{dir: dir, writeBOM: withBOM}, nil
}

func (e *CSVEngine) create(name string) (*os.File, error) {
	f, err := os.Create(filepath.Join(e.dir, name+".csv"))
	if err != nil {
		return nil, err
	}
	if e.writeBOM {
		if _, err := f.Write(utf8BOM); err != nil {
			f.Close()
			return nil, err
		}
	}
	return f, nil
}

// SaveRun writes the per-step records of one run to <dir>/<name>.csv
func (e *CSVEngine) SaveRun(name string, records []types.TimeStepRecord) error {
	f, err := e.create(name)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(runHeader); err != nil {
		return err
	}
	for _, rec := range records {
		row := []string{
			strconv.Itoa(rec.Step),
			formatFloat(rec.LocalTempC),
			formatFloat(rec.TempAnomalyC),
			formatFloat(rec.InsolationWm2),
			formatFloat(rec.AlbedoForcingW),
			formatFloat(rec.WasteHeatW),
			formatFloat(rec.ElectricalPowerW),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// SaveSummary writes the sweep summary table to <dir>/<name>.csv
func (e *CSVEngine) SaveSummary(name string, results []types.ScenarioResult) error {
	f, err := e.create(name)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(summaryHeader); err != nil {
		return err
	}
	for _, res := range results {
		row := []string{
			res.SurfaceID,
			res.MaterialID,
			res.CoverageID,
			formatFloat(res.SurfaceAlbedo),
			formatFloat(res.PanelAlbedo),
			formatFloat(res.PanelEfficiency),
			formatFloat(res.AvgLocalAnomalyC),
			formatFloat(res.GlobalTempChangeC),
			formatFloat(res.CO2ReductionGt),
			strconv.FormatBool(res.Failed),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// Close is a no-op; files are closed per save
func (e *CSVEngine) Close() error {
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// newBOMTolerantReader strips a leading UTF-8 BOM, present in files that
// round-tripped through spreadsheet exports.
func newBOMTolerantReader(r io.Reader) *csv.Reader {
	br := bufio.NewReader(r)
	if lead, err := br.Peek(3); err == nil && lead[0] == 0xEF && lead[1] == 0xBB && lead[2] == 0xBF {
		br.Discard(3)
	}
	return csv.NewReader(br)
}

// ReadRun loads a per-step run table written by SaveRun.
func ReadRun(path string) ([]types.TimeStepRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := newBOMTolerantReader(f)
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("reading %s: missing header row", path)
	}

	var records []types.TimeStepRecord
	for i, row := range rows[1:] {
		if len(row) < len(runHeader) {
			return nil, fmt.Errorf("reading %s: row %d has %d fields, expected %d", path, i+2, len(row), len(runHeader))
		}
		var rec types.TimeStepRecord
		var err error
		if rec.Step, err = strconv.Atoi(row[0]); err != nil {
			return nil, fmt.Errorf("reading %s: row %d: %w", path, i+2, err)
		}
		fields := []*float64{
			&rec.LocalTempC, &rec.TempAnomalyC, &rec.InsolationWm2,
			&rec.AlbedoForcingW, &rec.WasteHeatW, &rec.ElectricalPowerW,
		}
		for j, dst := range fields {
			if *dst, err = strconv.ParseFloat(row[j+1], 64); err != nil {
				return nil, fmt.Errorf("reading %s: row %d: %w", path, i+2, err)
			}
		}
		records = append(records, rec)
	}
	return records, nil
}

// ReadSummary loads a sweep summary table written by SaveSummary.
func ReadSummary(path string) ([]types.ScenarioResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := newBOMTolerantReader(f)
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("reading %s: missing header row", path)
	}

	var results []types.ScenarioResult
	for i, row := range rows[1:] {
		if len(row) < len(summaryHeader) {
			return nil, fmt.Errorf("reading %s: row %d has %d fields, expected %d", path, i+2, len(row), len(summaryHeader))
		}
		res := types.ScenarioResult{
			SurfaceID:  row[0],
			MaterialID: row[1],
			CoverageID: row[2],
		}
		fields := []*float64{
			&res.SurfaceAlbedo, &res.PanelAlbedo, &res.PanelEfficiency,
			&res.AvgLocalAnomalyC, &res.GlobalTempChangeC, &res.CO2ReductionGt,
		}
		for j, dst := range fields {
			if *dst, err = strconv.ParseFloat(row[j+3], 64); err != nil {
				return nil, fmt.Errorf("reading %s: row %d: %w", path, i+2, err)
			}
		}
		if res.Failed, err = strconv.ParseBool(row[9]); err != nil {
			return nil, fmt.Errorf("reading %s: row %d: %w", path, i+2, err)
		}
		results = append(results, res)
	}
	return results, nil
}
