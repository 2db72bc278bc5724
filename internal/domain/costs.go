package domain

import "github.com/shopspring/decimal"

// TransactionCostModel holds the commission and friction parameters for
// simulated executions. It is a value type: supplied once at engine
// construction and never mutated afterwards.
type TransactionCostModel struct {
	CommissionPerContract decimal.Decimal
	SlippagePercent       decimal.Decimal // fraction of the touch price, scaled by order size
	SpreadCostPercent     decimal.Decimal // fraction of the half-spread charged on mid fills
}

// Fill is the realized outcome of a simulated execution. CostPaid is the
// slippage charged on a market fill or the spread cost charged on a mid
// fill; zero for limit fills.
type Fill struct {
	Price      decimal.Decimal
	Commission decimal.Decimal
	CostPaid   decimal.Decimal
}
