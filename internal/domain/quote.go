package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type OptionType string

const (
	OptionCall OptionType = "CALL"
	OptionPut  OptionType = "PUT"
)

// ErrCrossedQuote marks market data that cannot be trusted downstream.
var ErrCrossedQuote = errors.New("crossed quote: bid above ask")

// OptionContract identifies a single listed option.
type OptionContract struct {
	Symbol     string
	Underlying string
	Strike     decimal.Decimal
	Expiry     time.Time
	Type       OptionType
}

// ExpiredAt reports whether the contract has expired as of t. Contracts
// with a zero expiry never expire (useful for synthetic instruments).
func (c OptionContract) ExpiredAt(t time.Time) bool {
	return !c.Expiry.IsZero() && c.Expiry.Before(t)
}

// Quote is a point-in-time market snapshot for one contract.
type Quote struct {
	Contract          OptionContract
	Bid               decimal.Decimal
	Ask               decimal.Decimal
	Last              decimal.Decimal
	Volume            int64
	OpenInterest      int64
	ImpliedVolatility float64
	Timestamp         time.Time
}

var two = decimal.NewFromInt(2)

func (q *Quote) Validate() error {
	if q.Bid.GreaterThan(q.Ask) {
		return fmt.Errorf("%w: %s bid=%s ask=%s", ErrCrossedQuote, q.Contract.Symbol, q.Bid, q.Ask)
	}
	return nil
}

// Mid returns the bid/ask midpoint.
func (q *Quote) Mid() decimal.Decimal {
	return q.Bid.Add(q.Ask).Div(two)
}

func (q *Quote) HalfSpread() decimal.Decimal {
	return q.Ask.Sub(q.Bid).Div(two)
}

// OptionsChain groups the listed contracts for one underlying/expiry.
type OptionsChain struct {
	Underlying string
	Expiry     time.Time
	Calls      []*Quote
	Puts       []*Quote
}
