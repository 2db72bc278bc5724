package usecase

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/vitos/options_backtest/internal/domain"
)

// PerformanceCalculator derives summary statistics from a full trade log
// and equity curve. It holds no state besides the annualization factor,
// so metrics are recomputed from scratch on every call and cannot drift.
type PerformanceCalculator struct {
	stepsPerYear int
}

func NewPerformanceCalculator(stepsPerYear int) *PerformanceCalculator {
	if stepsPerYear <= 0 {
		stepsPerYear = domain.DefaultStepsPerYear
	}
	return &PerformanceCalculator{stepsPerYear: stepsPerYear}
}

// Calculate returns all-zero metrics for empty inputs.
func (c *PerformanceCalculator) Calculate(trades []domain.Trade, curve []domain.EquityCurvePoint) domain.PerformanceMetrics {
	m := domain.PerformanceMetrics{
		GrossProfit: decimal.Zero,
		GrossLoss:   decimal.Zero,
		TotalPnL:    decimal.Zero,
	}

	for _, t := range trades {
		m.TotalPnL = m.TotalPnL.Add(t.NetPnL)
		switch {
		case t.NetPnL.IsPositive():
			m.WinningTrades++
			m.GrossProfit = m.GrossProfit.Add(t.NetPnL)
		case t.NetPnL.IsNegative():
			m.LosingTrades++
			m.GrossLoss = m.GrossLoss.Add(t.NetPnL.Abs())
		}
	}
	m.TotalTrades = len(trades)
	if m.TotalTrades > 0 {
		m.WinRate = 100 * float64(m.WinningTrades) / float64(m.TotalTrades)
	}
	if m.GrossLoss.IsPositive() {
		m.ProfitFactor, _ = m.GrossProfit.Div(m.GrossLoss).Float64()
	}

	m.SharpeRatio = c.sharpe(curve)
	m.MaxDrawdown = maxDrawdown(curve)
	return m
}

// sharpe is the mean step return over its standard deviation, annualized
// by sqrt(stepsPerYear). Zero with fewer than two points or no variance.
func (c *PerformanceCalculator) sharpe(curve []domain.EquityCurvePoint) float64 {
	if len(curve) < 2 {
		return 0
	}
	returns := make([]float64, 0, len(curve)-1)
	for i := 1; i < len(curve); i++ {
		prev, _ := curve[i-1].Equity.Float64()
		cur, _ := curve[i].Equity.Float64()
		if prev == 0 {
			continue
		}
		returns = append(returns, (cur-prev)/prev)
	}
	if len(returns) == 0 {
		return 0
	}

	var mean float64
	for _, r := range returns {
		mean += r
	}
	mean /= float64(len(returns))

	var variance float64
	for _, r := range returns {
		variance += (r - mean) * (r - mean)
	}
	variance /= float64(len(returns))
	if variance == 0 {
		return 0
	}
	return mean / math.Sqrt(variance) * math.Sqrt(float64(c.stepsPerYear))
}

// maxDrawdown scans the curve in order for the largest relative
// peak-to-trough decline. Zero for empty or non-decreasing curves.
func maxDrawdown(curve []domain.EquityCurvePoint) float64 {
	var peak, maxDD float64
	for _, p := range curve {
		eq, _ := p.Equity.Float64()
		if eq > peak {
			peak = eq
		}
		if peak > 0 {
			dd := (peak - eq) / peak
			if dd > maxDD {
				maxDD = dd
			}
		}
	}
	return maxDD
}
