package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

const (
	DefaultMaxPositions    = 5
	DefaultMaxPositionSize = 100
	DefaultStepsPerYear    = 252
)

var defaultInitialCapital = decimal.NewFromInt(100000)

// BacktestConfig is immutable for the lifetime of a run.
type BacktestConfig struct {
	InitialCapital  decimal.Decimal
	StartDate       time.Time
	EndDate         time.Time
	Symbols         []string
	Costs           TransactionCostModel
	MaxPositionSize int64 // contracts per position
	MaxPositions    int   // portfolio-wide open count
	StepsPerYear    int   // Sharpe annualization factor
}

// ApplyDefaults fills zero fields with working defaults.
func (c *BacktestConfig) ApplyDefaults() {
	if c.InitialCapital.IsZero() {
		c.InitialCapital = defaultInitialCapital
	}
	if c.MaxPositions <= 0 {
		c.MaxPositions = DefaultMaxPositions
	}
	if c.MaxPositionSize <= 0 {
		c.MaxPositionSize = DefaultMaxPositionSize
	}
	if c.StepsPerYear <= 0 {
		c.StepsPerYear = DefaultStepsPerYear
	}
}

func (c *BacktestConfig) Validate() error {
	if c.InitialCapital.IsNegative() || c.InitialCapital.IsZero() {
		return errors.New("initial capital must be positive")
	}
	if c.StartDate.IsZero() || c.EndDate.IsZero() {
		return errors.New("start and end dates are required")
	}
	if c.EndDate.Before(c.StartDate) {
		return errors.New("end date before start date")
	}
	if len(c.Symbols) == 0 {
		return errors.New("at least one symbol is required")
	}
	return nil
}
