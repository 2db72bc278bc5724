package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/vitos/options_backtest/internal/domain"
	"github.com/vitos/options_backtest/internal/infrastructure/storage"
)

func main() {
	dbPath := flag.String("db", "backtests.db", "path to results database")
	id := flag.String("id", "", "show one backtest, including its trades")
	limit := flag.Int("limit", 20, "number of recent backtests to list")
	flag.Parse()

	store, err := storage.NewSQLiteStore(*dbPath)
	if err != nil {
		fmt.Printf("Failed to open %s: %v\n", *dbPath, err)
		os.Exit(1)
	}
	defer store.Close()

	ctx := context.Background()

	if *id != "" {
		res, err := store.GetResult(ctx, *id)
		if err != nil {
			fmt.Printf("Failed to load backtest %s: %v\n", *id, err)
			os.Exit(1)
		}
		printResult(res)
		return
	}

	results, err := store.ListResults(ctx, *limit)
	if err != nil {
		fmt.Printf("Failed to list backtests: %v\n", err)
		os.Exit(1)
	}
	if len(results) == 0 {
		fmt.Println("No backtests recorded.")
		return
	}
	for _, res := range results {
		fmt.Printf("%s  %-9s  %s..%s  trades=%-4d  win=%5.1f%%  pnl=%s\n",
			res.ID, res.Status,
			res.Config.StartDate.Format(time.DateOnly), res.Config.EndDate.Format(time.DateOnly),
			res.Performance.TotalTrades, res.Performance.WinRate, res.Performance.TotalPnL)
	}
}

func printResult(res *domain.BacktestResult) {
	p := res.Performance
	fmt.Printf("Backtest %s [%s]\n", res.ID, res.Status)
	if res.Err != "" {
		fmt.Printf("  Error:         %s\n", res.Err)
	}
	fmt.Printf("  Symbols:       %v\n", res.Config.Symbols)
	fmt.Printf("  Capital:       %s\n", res.Config.InitialCapital)
	fmt.Printf("  Trades:        %d (%d W / %d L), win rate %.2f%%\n",
		p.TotalTrades, p.WinningTrades, p.LosingTrades, p.WinRate)
	fmt.Printf("  Profit factor: %.2f   Sharpe: %.2f   Max DD: %.2f%%\n",
		p.ProfitFactor, p.SharpeRatio, p.MaxDrawdown*100)
	fmt.Printf("  Total PnL:     %s\n", p.TotalPnL)

	if len(res.Trades) == 0 {
		return
	}
	fmt.Println("  Trades:")
	for _, t := range res.Trades {
		fmt.Printf("    %s  %s  qty=%-4d  %s -> %s  net=%s (%.2f%%)\n",
			t.ExitTime.Format(time.DateOnly), t.Symbol, t.Quantity,
			t.EntryPrice, t.ExitPrice, t.NetPnL, t.ReturnPercent)
	}
}
