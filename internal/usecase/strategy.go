package usecase

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/vitos/options_backtest/internal/domain"
)

// NoOpStrategy never trades. Useful as a baseline: a run over any valid
// date range yields zero trades and a flat equity curve.
type NoOpStrategy struct{}

func (NoOpStrategy) Name() string { return "noop" }

func (NoOpStrategy) Evaluate(context.Context, *domain.MarketSnapshot, []*domain.Position) ([]domain.OrderIntent, error) {
	return nil, nil
}

// TargetExitStrategy buys a fixed quantity of every configured symbol it
// does not already hold, then closes when the mid price has moved past
// the take-profit or stop-loss threshold relative to entry. It keeps no
// state of its own, so runs are deterministic.
type TargetExitStrategy struct {
	Quantity      int64
	TakeProfitPct decimal.Decimal
	StopLossPct   decimal.Decimal
}

func NewTargetExitStrategy(quantity int64, takeProfitPct, stopLossPct decimal.Decimal) *TargetExitStrategy {
	return &TargetExitStrategy{
		Quantity:      quantity,
		TakeProfitPct: takeProfitPct,
		StopLossPct:   stopLossPct,
	}
}

func (s *TargetExitStrategy) Name() string { return "target-exit" }

func (s *TargetExitStrategy) Evaluate(_ context.Context, snap *domain.MarketSnapshot, open []*domain.Position) ([]domain.OrderIntent, error) {
	held := make(map[string]*domain.Position, len(open))
	for _, pos := range open {
		held[pos.Contract.Symbol] = pos
	}

	var intents []domain.OrderIntent
	for _, pos := range open {
		q, ok := snap.Quotes[pos.Contract.Symbol]
		if !ok || !pos.EntryPrice.IsPositive() {
			continue
		}
		movePct := q.Mid().Sub(pos.EntryPrice).Div(pos.EntryPrice).Mul(hundred)
		if movePct.GreaterThanOrEqual(s.TakeProfitPct) || movePct.LessThanOrEqual(s.StopLossPct.Neg()) {
			intents = append(intents, domain.OrderIntent{
				Symbol: pos.Contract.Symbol,
				Side:   domain.SideSell,
				Type:   domain.OrderMarket,
				Sizing: domain.Sizing{Policy: domain.SizeFixed, Quantity: pos.Quantity},
			})
		}
	}

	syms := make([]string, 0, len(snap.Quotes))
	for sym := range snap.Quotes {
		syms = append(syms, sym)
	}
	sort.Strings(syms)
	for _, sym := range syms {
		if _, ok := held[sym]; ok {
			continue
		}
		intents = append(intents, domain.OrderIntent{
			Symbol: sym,
			Side:   domain.SideBuy,
			Type:   domain.OrderMarket,
			Sizing: domain.Sizing{Policy: domain.SizeFixed, Quantity: s.Quantity},
		})
	}
	return intents, nil
}
