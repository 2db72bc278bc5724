package usecase

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/vitos/options_backtest/internal/domain"
)

// OrderExecutor simulates single fills against a quote under a fixed
// transaction-cost model. It is stateless and safe to share across runs.
type OrderExecutor struct {
	costs domain.TransactionCostModel
}

func NewOrderExecutor(costs domain.TransactionCostModel) *OrderExecutor {
	return &OrderExecutor{costs: costs}
}

// impactFactor scales slippage with order size. sqrt(quantity) is
// strictly increasing and concave, so a larger order always pays
// strictly more while marginal impact shrinks.
func impactFactor(quantity int64) decimal.Decimal {
	return decimal.NewFromFloat(math.Sqrt(float64(quantity)))
}

func (e *OrderExecutor) commission(quantity int64) decimal.Decimal {
	return e.costs.CommissionPerContract.Mul(decimal.NewFromInt(quantity))
}

// ExecuteMarketOrder fills a buy at ask plus slippage, a sell at bid
// minus slippage. CostPaid records the total slippage charged.
func (e *OrderExecutor) ExecuteMarketOrder(q *domain.Quote, side domain.Side, quantity int64) (*domain.Fill, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	touch := q.Ask
	if side == domain.SideSell {
		touch = q.Bid
	}
	slip := touch.Mul(e.costs.SlippagePercent).Mul(impactFactor(quantity))
	price := touch.Add(slip)
	if side == domain.SideSell {
		price = touch.Sub(slip)
	}
	return &domain.Fill{
		Price:      price,
		Commission: e.commission(quantity),
		CostPaid:   slip.Mul(decimal.NewFromInt(quantity)),
	}, nil
}

// ExecuteLimitOrder uses a conservative crossing model: a buy fills only
// when the limit is at or through the ask, a sell only at or through the
// bid, always at the limit price with no improvement. A non-crossing
// order returns (nil, nil): no fill, not an error, and nothing charged.
func (e *OrderExecutor) ExecuteLimitOrder(q *domain.Quote, side domain.Side, quantity int64, limitPrice decimal.Decimal) (*domain.Fill, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	crossed := limitPrice.GreaterThanOrEqual(q.Ask)
	if side == domain.SideSell {
		crossed = limitPrice.LessThanOrEqual(q.Bid)
	}
	if !crossed {
		return nil, nil
	}
	return &domain.Fill{
		Price:      limitPrice,
		Commission: e.commission(quantity),
		CostPaid:   decimal.Zero,
	}, nil
}

// ExecuteAtMid fills at the midpoint and charges a spread cost for the
// liquidity consumed, strictly positive whenever ask > bid.
func (e *OrderExecutor) ExecuteAtMid(q *domain.Quote, side domain.Side, quantity int64) (*domain.Fill, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	spreadCost := e.costs.SpreadCostPercent.Mul(q.HalfSpread()).Mul(decimal.NewFromInt(quantity))
	return &domain.Fill{
		Price:      q.Mid(),
		Commission: e.commission(quantity),
		CostPaid:   spreadCost,
	}, nil
}

// SimulateFillProbability estimates the chance a resting limit order at
// limitPrice fills. Linear in the limit's position between bid and ask:
// 0.95 at the crossing boundary, 0.05 at the opposite one, clamped to
// [0, 1] outside the spread.
func (e *OrderExecutor) SimulateFillProbability(q *domain.Quote, side domain.Side, limitPrice decimal.Decimal) float64 {
	half := q.HalfSpread()
	if half.IsZero() {
		return 1
	}
	x, _ := limitPrice.Sub(q.Mid()).Div(half).Float64()
	if side == domain.SideSell {
		x = -x
	}
	p := 0.5 + 0.45*x
	return math.Min(1, math.Max(0, p))
}

// ApplyTransactionCosts nets commission and slippage/spread cost out of
// a gross P&L. Pure.
func ApplyTransactionCosts(grossPnL, commission, cost decimal.Decimal) decimal.Decimal {
	return grossPnL.Sub(commission).Sub(cost)
}
