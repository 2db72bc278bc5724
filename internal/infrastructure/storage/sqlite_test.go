package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vitos/options_backtest/internal/domain"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "backtests.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleResult(id string) *domain.BacktestResult {
	start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 3, 29, 0, 0, 0, 0, time.UTC)
	return &domain.BacktestResult{
		ID:     id,
		Status: domain.StatusCompleted,
		Config: domain.BacktestConfig{
			InitialCapital: decimal.NewFromInt(100000),
			StartDate:      start,
			EndDate:        end,
			Symbols:        []string{"SPY-C450", "QQQ-C380"},
		},
		Trades: []domain.Trade{
			{
				ID:            id + "-t1",
				Symbol:        "SPY-C450",
				Legs:          1,
				Quantity:      2,
				EntryTime:     start,
				ExitTime:      start.Add(48 * time.Hour),
				EntryPrice:    decimal.RequireFromString("5.10"),
				ExitPrice:     decimal.RequireFromString("6.25"),
				GrossPnL:      decimal.RequireFromString("230"),
				NetPnL:        decimal.RequireFromString("227.4"),
				ReturnPercent: 22.2,
			},
			{
				ID:            id + "-t2",
				Symbol:        "QQQ-C380",
				Legs:          1,
				Quantity:      1,
				EntryTime:     start,
				ExitTime:      start.Add(96 * time.Hour),
				EntryPrice:    decimal.RequireFromString("4.00"),
				ExitPrice:     decimal.RequireFromString("3.10"),
				GrossPnL:      decimal.RequireFromString("-90"),
				NetPnL:        decimal.RequireFromString("-91.3"),
				ReturnPercent: -22.7,
			},
		},
		Performance: domain.PerformanceMetrics{
			TotalTrades:   2,
			WinningTrades: 1,
			LosingTrades:  1,
			WinRate:       50,
			GrossProfit:   decimal.RequireFromString("227.4"),
			GrossLoss:     decimal.RequireFromString("91.3"),
			ProfitFactor:  2.49,
			SharpeRatio:   1.1,
			MaxDrawdown:   0.02,
			TotalPnL:      decimal.RequireFromString("136.1"),
		},
		StartedAt: time.Now().UTC(),
	}
}

func TestSQLiteStore_SaveAndGetResult(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.SaveResult(ctx, sampleResult("bt-1")); err != nil {
		t.Fatal(err)
	}

	got, err := store.GetResult(ctx, "bt-1")
	if err != nil {
		t.Fatal(err)
	}

	if got.Status != domain.StatusCompleted {
		t.Errorf("status = %s", got.Status)
	}
	if !got.Config.InitialCapital.Equal(decimal.NewFromInt(100000)) {
		t.Errorf("initial capital = %s", got.Config.InitialCapital)
	}
	if len(got.Config.Symbols) != 2 {
		t.Errorf("symbols = %v", got.Config.Symbols)
	}
	if !got.Performance.TotalPnL.Equal(decimal.RequireFromString("136.1")) {
		t.Errorf("total pnl = %s", got.Performance.TotalPnL)
	}
	if len(got.Trades) != 2 {
		t.Fatalf("trades = %d", len(got.Trades))
	}
	// trades come back ordered by exit time
	if got.Trades[0].Symbol != "SPY-C450" || got.Trades[1].Symbol != "QQQ-C380" {
		t.Errorf("trade order: %s, %s", got.Trades[0].Symbol, got.Trades[1].Symbol)
	}
	if !got.Trades[1].NetPnL.Equal(decimal.RequireFromString("-91.3")) {
		t.Errorf("net pnl = %s", got.Trades[1].NetPnL)
	}
}

func TestSQLiteStore_GetMissingResult(t *testing.T) {
	store := newTestStore(t)

	if _, err := store.GetResult(context.Background(), "nope"); err == nil {
		t.Fatal("expected error for missing id")
	}
}

func TestSQLiteStore_ListResults(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first := sampleResult("bt-1")
	first.StartedAt = time.Now().UTC().Add(-time.Hour)
	second := sampleResult("bt-2")
	second.Status = domain.StatusFailed
	second.Err = "feed unavailable"

	if err := store.SaveResult(ctx, first); err != nil {
		t.Fatal(err)
	}
	if err := store.SaveResult(ctx, second); err != nil {
		t.Fatal(err)
	}

	results, err := store.ListResults(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("results = %d", len(results))
	}
	if results[0].ID != "bt-2" {
		t.Errorf("expected newest first, got %s", results[0].ID)
	}
	if results[0].Err != "feed unavailable" {
		t.Errorf("err = %q", results[0].Err)
	}

	limited, err := store.ListResults(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(limited) != 1 {
		t.Fatalf("limited = %d", len(limited))
	}
}
