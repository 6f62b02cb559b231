package storage

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wodekuailen/climate-model/internal/database"
	"github.com/wodekuailen/climate-model/internal/types"
)

var _ Engine = (*PostgresEngine)(nil)

// PostgresEngine persists runs and sweep summaries to PostgreSQL. Every
// save gets a fresh UUID so repeated runs under the same name remain
// distinguishable.
type PostgresEngine struct {
	client *database.Client
	logger *zap.SugaredLogger
}

// NewPostgresEngine connects to the results database and migrates the
// result tables.
func NewPostgresEngine(connectionString string, logger *zap.SugaredLogger) (*PostgresEngine, error) {
	client := database.NewClient(connectionString, logger)
	if err := client.Connect(); err != nil {
		return nil, err
	}
	return &PostgresEngine{client: client, logger: logger}, nil
}

// SaveRun inserts all records of one run in a single batch.
func (e *PostgresEngine) SaveRun(name string, records []types.TimeStepRecord) error {
	runID := uuid.New().String()
	now := time.Now()

	rows := make([]database.RunStepRow, 0, len(records))
	for _, rec := range records {
		rows = append(rows, database.RunStepRow{
			RunID:          runID,
			RunName:        name,
			CreatedAt:      now,
			TimeStepRecord: rec,
		})
	}
	if len(rows) == 0 {
		return nil
	}
	if err := e.client.DB.Create(&rows).Error; err != nil {
		return fmt.Errorf("saving run %s: %w", name, err)
	}
	e.logger.Infow("saved run", "run", name, "run_id", runID, "steps", len(rows))
	return nil
}

// SaveSummary inserts all rows of one sweep in a single batch.
func (e *PostgresEngine) SaveSummary(name string, results []types.ScenarioResult) error {
	sweepID := uuid.New().String()
	now := time.Now()

	rows := make([]database.SummaryRow, 0, len(results))
	for _, res := range results {
		rows = append(rows, database.SummaryRow{
			SweepID:        sweepID,
			SweepName:      name,
			CreatedAt:      now,
			ScenarioResult: res,
		})
	}
	if len(rows) == 0 {
		return nil
	}
	if err := e.client.DB.Create(&rows).Error; err != nil {
		return fmt.Errorf("saving sweep %s: %w", name, err)
	}
	e.logger.Infow("saved sweep summary", "sweep", name, "sweep_id", sweepID, "rows", len(rows))
	return nil
}

// Close closes the database connection pool.
func (e *PostgresEngine) Close() error {
	return e.client.Close()
}
