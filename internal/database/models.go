package database

import (
	"time"

	"github.com/wodekuailen/climate-model/internal/types"
)

// RunStepRow is one persisted time step of a feedback run.
type RunStepRow struct {
	ID        uint   `gorm:"primaryKey"`
	RunID     string `gorm:"column:run_id;index"`
	RunName   string `gorm:"column:run_name"`
	CreatedAt time.Time

	types.TimeStepRecord `gorm:"embedded"`
}

// TableName overrides the default table name
func (RunStepRow) TableName() string {
	return "run_steps"
}

// SummaryRow is one persisted sweep summary row.
type SummaryRow struct {
	ID        uint   `gorm:"primaryKey"`
	SweepID   string `gorm:"column:sweep_id;index"`
	SweepName string `gorm:"column:sweep_name"`
	CreatedAt time.Time

	types.ScenarioResult `gorm:"embedded"`
}

// TableName overrides the default table name
func (SummaryRow) TableName() string {
	return "sweep_summaries"
}
