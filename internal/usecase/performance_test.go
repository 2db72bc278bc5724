package usecase_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/vitos/options_backtest/internal/domain"
	"github.com/vitos/options_backtest/internal/usecase"
)

func tradeWithNet(net string) domain.Trade {
	return domain.Trade{
		NetPnL:   decimal.RequireFromString(net),
		GrossPnL: decimal.RequireFromString(net),
	}
}

func curveOf(equities ...string) []domain.EquityCurvePoint {
	base := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	points := make([]domain.EquityCurvePoint, 0, len(equities))
	for i, eq := range equities {
		points = append(points, domain.EquityCurvePoint{
			Timestamp: base.Add(time.Duration(i) * 24 * time.Hour),
			Equity:    decimal.RequireFromString(eq),
			Cash:      decimal.RequireFromString(eq),
		})
	}
	return points
}

func TestCalculate_EmptyInputs(t *testing.T) {
	calc := usecase.NewPerformanceCalculator(252)
	m := calc.Calculate(nil, nil)

	assert.Equal(t, 0, m.TotalTrades)
	assert.Equal(t, 0, m.WinningTrades)
	assert.Equal(t, 0, m.LosingTrades)
	assert.Zero(t, m.WinRate)
	assert.True(t, m.GrossProfit.IsZero())
	assert.True(t, m.GrossLoss.IsZero())
	assert.Zero(t, m.ProfitFactor)
	assert.Zero(t, m.SharpeRatio)
	assert.Zero(t, m.MaxDrawdown)
	assert.True(t, m.TotalPnL.IsZero())
}

func TestCalculate_WinLossRollup(t *testing.T) {
	calc := usecase.NewPerformanceCalculator(252)
	trades := []domain.Trade{tradeWithNet("19"), tradeWithNet("-11")}

	m := calc.Calculate(trades, nil)

	assert.Equal(t, 2, m.TotalTrades)
	assert.Equal(t, 1, m.WinningTrades)
	assert.Equal(t, 1, m.LosingTrades)
	assert.InDelta(t, 50.0, m.WinRate, 1e-9)
	assert.True(t, m.GrossProfit.Equal(decimal.NewFromInt(19)), "gross profit %s", m.GrossProfit)
	assert.True(t, m.GrossLoss.Equal(decimal.NewFromInt(11)), "gross loss %s", m.GrossLoss)
	assert.InDelta(t, 19.0/11.0, m.ProfitFactor, 1e-9)
	assert.True(t, m.TotalPnL.Equal(decimal.NewFromInt(8)), "total pnl %s", m.TotalPnL)
}

func TestCalculate_BreakevenTradeCountsNeither(t *testing.T) {
	calc := usecase.NewPerformanceCalculator(252)
	m := calc.Calculate([]domain.Trade{tradeWithNet("0")}, nil)

	assert.Equal(t, 1, m.TotalTrades)
	assert.Equal(t, 0, m.WinningTrades)
	assert.Equal(t, 0, m.LosingTrades)
}

func TestCalculate_ProfitFactorZeroWhenNoLosses(t *testing.T) {
	calc := usecase.NewPerformanceCalculator(252)
	m := calc.Calculate([]domain.Trade{tradeWithNet("10"), tradeWithNet("5")}, nil)
	assert.Zero(t, m.ProfitFactor)
}

func TestSharpe_ZeroCases(t *testing.T) {
	calc := usecase.NewPerformanceCalculator(252)

	assert.Zero(t, calc.Calculate(nil, curveOf("100000")).SharpeRatio)
	assert.Zero(t, calc.Calculate(nil, curveOf("100000", "100000", "100000")).SharpeRatio)
}

func TestSharpe_PositiveForRisingCurve(t *testing.T) {
	calc := usecase.NewPerformanceCalculator(252)
	m := calc.Calculate(nil, curveOf("100000", "101000", "100500", "102000", "103000"))
	assert.Greater(t, m.SharpeRatio, 0.0)
}

func TestMaxDrawdown(t *testing.T) {
	calc := usecase.NewPerformanceCalculator(252)

	// peak 120000, trough 90000 -> 25%
	m := calc.Calculate(nil, curveOf("100000", "120000", "90000", "130000"))
	assert.InDelta(t, 0.25, m.MaxDrawdown, 1e-9)

	// non-decreasing curve has no drawdown
	m = calc.Calculate(nil, curveOf("100000", "100000", "110000", "125000"))
	assert.Zero(t, m.MaxDrawdown)
}
