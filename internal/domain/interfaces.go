package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// MarketDataProvider supplies quotes to the engine. Implementations must
// return well-formed quotes (bid <= ask); simulated implementations must
// be seedable so runs are reproducible.
type MarketDataProvider interface {
	GetQuote(ctx context.Context, symbol string, at time.Time) (*Quote, error)
	GetQuotes(ctx context.Context, symbols []string, at time.Time) (map[string]*Quote, error)
	GetOptionsChain(ctx context.Context, underlying string, expiry, at time.Time) (*OptionsChain, error)
}

// MarketSnapshot is what a strategy sees at one simulated step.
type MarketSnapshot struct {
	Time   time.Time
	Quotes map[string]*Quote
}

type OrderType string

const (
	OrderMarket OrderType = "MARKET"
	OrderLimit  OrderType = "LIMIT"
	OrderMid    OrderType = "MID"
)

type SizingPolicy string

const (
	SizeFixed            SizingPolicy = "FIXED"
	SizePercentOfCapital SizingPolicy = "PERCENT_OF_CAPITAL"
	SizeKelly            SizingPolicy = "KELLY"
)

// Sizing selects the position-sizing policy for an intent. Quantity is
// used by FIXED, Percent by PERCENT_OF_CAPITAL; KELLY derives its inputs
// from the engine's trade log.
type Sizing struct {
	Policy   SizingPolicy
	Quantity int64
	Percent  decimal.Decimal
}

// OrderIntent is a strategy's request to open (buy) or close (sell) a
// position. LimitPrice is consulted only for LIMIT orders.
type OrderIntent struct {
	Symbol     string
	Side       Side
	Type       OrderType
	LimitPrice decimal.Decimal
	Sizing     Sizing
}

// Strategy turns a market snapshot plus the current open positions into
// zero or more order intents. Strategies are pluggable per run.
type Strategy interface {
	Name() string
	Evaluate(ctx context.Context, snap *MarketSnapshot, open []*Position) ([]OrderIntent, error)
}

// ResultRepository persists completed (or failed) runs. The engine never
// depends on it; wiring happens in cmd.
type ResultRepository interface {
	SaveResult(ctx context.Context, res *BacktestResult) error
	GetResult(ctx context.Context, id string) (*BacktestResult, error)
	ListResults(ctx context.Context, limit int) ([]*BacktestResult, error)
}
