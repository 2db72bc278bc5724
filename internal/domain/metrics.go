package domain

import "github.com/shopspring/decimal"

// PerformanceMetrics summarizes a trade log and equity curve. Derived on
// demand, never stored incrementally. All fields are zero for an empty
// trade log / empty equity curve. WinRate is a percentage, GrossLoss an
// absolute value, MaxDrawdown a fraction of peak equity; ProfitFactor
// reports 0 when there are no losing trades.
type PerformanceMetrics struct {
	TotalTrades   int
	WinningTrades int
	LosingTrades  int
	WinRate       float64
	GrossProfit   decimal.Decimal
	GrossLoss     decimal.Decimal
	ProfitFactor  float64
	SharpeRatio   float64
	MaxDrawdown   float64
	TotalPnL      decimal.Decimal
}
