package domain

import "time"

type Status string

const (
	StatusInitialized Status = "INITIALIZED"
	StatusRunning     Status = "RUNNING"
	StatusCompleted   Status = "COMPLETED"
	StatusFailed      Status = "FAILED"
)

// BacktestResult bundles everything a run produced. A failed run still
// carries the trades and equity points recorded before the failure so
// partial analysis remains possible.
type BacktestResult struct {
	ID          string
	Status      Status
	Config      BacktestConfig
	Trades      []Trade
	EquityCurve []EquityCurvePoint
	Performance PerformanceMetrics
	StartedAt   time.Time
	Err         string // causing condition when Status is FAILED
}
