package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// ContractMultiplier is the standard equity-option deliverable size.
const ContractMultiplier = 100

// Notional returns price * quantity * ContractMultiplier.
func Notional(price decimal.Decimal, quantity int64) decimal.Decimal {
	return price.Mul(decimal.NewFromInt(quantity)).Mul(decimal.NewFromInt(ContractMultiplier))
}

// Position is an open holding. It is owned exclusively by the engine's
// open-position set and is removed when closed.
type Position struct {
	Contract        OptionContract
	Side            Side
	Quantity        int64
	EntryPrice      decimal.Decimal
	EntryTime       time.Time
	CostBasis       decimal.Decimal // notional + entry commission + entry cost
	EntryCommission decimal.Decimal
	EntryCost       decimal.Decimal
}

// Trade is a closed round-trip. Immutable once appended to the trade log.
type Trade struct {
	ID            string
	Symbol        string
	Legs          int
	Quantity      int64
	EntryTime     time.Time
	ExitTime      time.Time
	EntryPrice    decimal.Decimal
	ExitPrice     decimal.Decimal
	GrossPnL      decimal.Decimal
	NetPnL        decimal.Decimal
	ReturnPercent float64
}
