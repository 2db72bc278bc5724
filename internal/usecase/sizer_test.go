package usecase_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/vitos/options_backtest/internal/usecase"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestFixedQuantity(t *testing.T) {
	assert.Equal(t, int64(7), usecase.FixedQuantity(7))
	assert.Equal(t, int64(1), usecase.FixedQuantity(0))
	assert.Equal(t, int64(1), usecase.FixedQuantity(-3))
}

func TestPercentOfCapital(t *testing.T) {
	// 10% of 100k = 10000; 10000 / (5 * 100) = 20
	assert.Equal(t, int64(20), usecase.PercentOfCapital(d("100000"), d("10"), d("5.0")))

	// fractional results floor
	assert.Equal(t, int64(6), usecase.PercentOfCapital(d("100000"), d("10"), d("15.0")))
}

func TestPercentOfCapital_NeverBelowOne(t *testing.T) {
	assert.Equal(t, int64(1), usecase.PercentOfCapital(d("100"), d("1"), d("5.0")))
	assert.Equal(t, int64(1), usecase.PercentOfCapital(d("100000"), d("10"), d("0")))
	assert.Equal(t, int64(1), usecase.PercentOfCapital(d("0"), d("10"), d("5.0")))
}

func TestKellyCriterion(t *testing.T) {
	// b = 100/50 = 2, f = 0.6 - 0.4/2 = 0.4, size = 40000 / 500 = 80
	size := usecase.KellyCriterion(0.6, d("100"), d("50"), d("100000"), d("5.0"))
	assert.Equal(t, int64(80), size)
	assert.GreaterOrEqual(t, size, int64(1))
	assert.Less(t, size, int64(1000))
}

func TestKellyCriterion_ZeroLoss(t *testing.T) {
	// unbounded odds collapse to f = p, never infinity
	size := usecase.KellyCriterion(0.6, d("100"), d("0"), d("100000"), d("5.0"))
	assert.Equal(t, int64(120), size)
}

func TestKellyCriterion_LowEdge(t *testing.T) {
	// f = 0.3 - 0.7/2 < 0 -> clamped to 0 -> floor of one contract
	size := usecase.KellyCriterion(0.3, d("100"), d("50"), d("100000"), d("5.0"))
	assert.Equal(t, int64(1), size)
}

func TestKellyCriterion_DegenerateInputs(t *testing.T) {
	assert.Equal(t, int64(1), usecase.KellyCriterion(0, d("0"), d("0"), d("100000"), d("5.0")))
	assert.Equal(t, int64(1), usecase.KellyCriterion(0.6, d("100"), d("50"), d("100000"), d("0")))
	assert.Equal(t, int64(1), usecase.KellyCriterion(0.6, d("100"), d("50"), d("10"), d("5.0")))
}
