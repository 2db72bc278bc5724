package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// EquityCurvePoint records portfolio value after one simulated step.
// Points are appended in non-decreasing timestamp order and never
// rewritten.
type EquityCurvePoint struct {
	Timestamp     time.Time
	Equity        decimal.Decimal // cash + mark-to-market of open positions
	Cash          decimal.Decimal
	OpenPositions int
}
