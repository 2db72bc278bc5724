package usecase

import (
	"github.com/shopspring/decimal"

	"github.com/vitos/options_backtest/internal/domain"
)

// Position sizing policies. All are pure and all floor at one contract:
// a backtest must never plan zero contracts, so sizing underflow from
// tiny capital or expensive contracts is recovered here, not surfaced.

var hundred = decimal.NewFromInt(100)

// FixedQuantity returns n, floored at 1.
func FixedQuantity(n int64) int64 {
	if n < 1 {
		return 1
	}
	return n
}

// PercentOfCapital allocates a percentage of capital at the given option
// price, using the standard contract multiplier.
func PercentOfCapital(capital, percent, optionPrice decimal.Decimal) int64 {
	perContract := optionPrice.Mul(decimal.NewFromInt(domain.ContractMultiplier))
	if !perContract.IsPositive() {
		return 1
	}
	alloc := capital.Mul(percent).Div(hundred)
	size := alloc.Div(perContract).IntPart()
	if size < 1 {
		return 1
	}
	return size
}

// KellyCriterion sizes by the classic Kelly fraction f = p - (1-p)/b
// with b = avgWin/avgLoss. A zero average loss means unbounded odds, so
// f collapses to p rather than infinity. f is clamped to [0, 1] before
// sizing: a negative edge sizes the minimum, never a short.
func KellyCriterion(winRate float64, avgWin, avgLoss, capital, optionPrice decimal.Decimal) int64 {
	f := winRate
	if avgLoss.IsPositive() {
		b, _ := avgWin.Div(avgLoss).Float64()
		if b > 0 {
			f = winRate - (1-winRate)/b
		} else {
			f = 0
		}
	}
	if f < 0 {
		f = 0
	}
	if f > 1 {
		f = 1
	}

	perContract := optionPrice.Mul(decimal.NewFromInt(domain.ContractMultiplier))
	if !perContract.IsPositive() {
		return 1
	}
	size := decimal.NewFromFloat(f).Mul(capital).Div(perContract).IntPart()
	if size < 1 {
		return 1
	}
	return size
}
