package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/vitos/options_backtest/internal/domain"
)

// SQLiteStore persists run summaries and their trade logs. Decimals are
// stored as strings to keep the exact values; the equity curve is not
// persisted (no storage format is mandated for it).
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		return nil, err
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS backtests (
			id TEXT PRIMARY KEY,
			status TEXT NOT NULL,
			start_date DATETIME NOT NULL,
			end_date DATETIME NOT NULL,
			symbols TEXT NOT NULL,
			initial_capital TEXT NOT NULL,
			total_trades INTEGER NOT NULL,
			winning_trades INTEGER NOT NULL,
			losing_trades INTEGER NOT NULL,
			win_rate REAL NOT NULL,
			profit_factor REAL NOT NULL,
			sharpe_ratio REAL NOT NULL,
			max_drawdown REAL NOT NULL,
			gross_profit TEXT NOT NULL,
			gross_loss TEXT NOT NULL,
			total_pnl TEXT NOT NULL,
			error TEXT,
			started_at DATETIME NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS backtest_trades (
			id TEXT PRIMARY KEY,
			backtest_id TEXT NOT NULL,
			symbol TEXT NOT NULL,
			legs INTEGER NOT NULL,
			quantity INTEGER NOT NULL,
			entry_time DATETIME NOT NULL,
			exit_time DATETIME NOT NULL,
			entry_price TEXT NOT NULL,
			exit_price TEXT NOT NULL,
			gross_pnl TEXT NOT NULL,
			net_pnl TEXT NOT NULL,
			return_pct REAL NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_backtest_trades_backtest_id ON backtest_trades(backtest_id);`,
	}

	for _, q := range queries {
		if _, err := s.db.Exec(q); err != nil {
			return fmt.Errorf("failed to exec query %s: %w", q, err)
		}
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// ResultRepository implementation

func (s *SQLiteStore) SaveResult(ctx context.Context, res *domain.BacktestResult) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `INSERT INTO backtests (id, status, start_date, end_date, symbols, initial_capital,
			  total_trades, winning_trades, losing_trades, win_rate, profit_factor, sharpe_ratio,
			  max_drawdown, gross_profit, gross_loss, total_pnl, error, started_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = tx.ExecContext(ctx, query,
		res.ID, string(res.Status), res.Config.StartDate, res.Config.EndDate,
		strings.Join(res.Config.Symbols, ","), res.Config.InitialCapital.String(),
		res.Performance.TotalTrades, res.Performance.WinningTrades, res.Performance.LosingTrades,
		res.Performance.WinRate, res.Performance.ProfitFactor, res.Performance.SharpeRatio,
		res.Performance.MaxDrawdown, res.Performance.GrossProfit.String(),
		res.Performance.GrossLoss.String(), res.Performance.TotalPnL.String(),
		res.Err, res.StartedAt)
	if err != nil {
		return err
	}

	tradeQuery := `INSERT INTO backtest_trades (id, backtest_id, symbol, legs, quantity, entry_time,
				   exit_time, entry_price, exit_price, gross_pnl, net_pnl, return_pct)
				   VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	for _, t := range res.Trades {
		if _, err := tx.ExecContext(ctx, tradeQuery,
			t.ID, res.ID, t.Symbol, t.Legs, t.Quantity, t.EntryTime, t.ExitTime,
			t.EntryPrice.String(), t.ExitPrice.String(),
			t.GrossPnL.String(), t.NetPnL.String(), t.ReturnPercent); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (s *SQLiteStore) GetResult(ctx context.Context, id string) (*domain.BacktestResult, error) {
	query := `SELECT id, status, start_date, end_date, symbols, initial_capital, total_trades,
			  winning_trades, losing_trades, win_rate, profit_factor, sharpe_ratio, max_drawdown,
			  gross_profit, gross_loss, total_pnl, error, started_at FROM backtests WHERE id = ?`
	res, err := s.scanResult(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, err
	}

	trades, err := s.loadTrades(ctx, id)
	if err != nil {
		return nil, err
	}
	res.Trades = trades
	return res, nil
}

func (s *SQLiteStore) ListResults(ctx context.Context, limit int) ([]*domain.BacktestResult, error) {
	query := `SELECT id, status, start_date, end_date, symbols, initial_capital, total_trades,
			  winning_trades, losing_trades, win_rate, profit_factor, sharpe_ratio, max_drawdown,
			  gross_profit, gross_loss, total_pnl, error, started_at
			  FROM backtests ORDER BY started_at DESC LIMIT ?`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []*domain.BacktestResult
	for rows.Next() {
		res, err := s.scanResult(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return results, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *SQLiteStore) scanResult(row rowScanner) (*domain.BacktestResult, error) {
	var res domain.BacktestResult
	var status, symbols, capitalStr, profitStr, lossStr, pnlStr string
	var errMsg sql.NullString
	err := row.Scan(&res.ID, &status, &res.Config.StartDate, &res.Config.EndDate, &symbols,
		&capitalStr, &res.Performance.TotalTrades, &res.Performance.WinningTrades,
		&res.Performance.LosingTrades, &res.Performance.WinRate, &res.Performance.ProfitFactor,
		&res.Performance.SharpeRatio, &res.Performance.MaxDrawdown,
		&profitStr, &lossStr, &pnlStr, &errMsg, &res.StartedAt)
	if err != nil {
		return nil, err
	}

	res.Status = domain.Status(status)
	res.Config.Symbols = strings.Split(symbols, ",")
	res.Err = errMsg.String
	if res.Config.InitialCapital, err = decimal.NewFromString(capitalStr); err != nil {
		return nil, fmt.Errorf("parse initial_capital: %w", err)
	}
	if res.Performance.GrossProfit, err = decimal.NewFromString(profitStr); err != nil {
		return nil, fmt.Errorf("parse gross_profit: %w", err)
	}
	if res.Performance.GrossLoss, err = decimal.NewFromString(lossStr); err != nil {
		return nil, fmt.Errorf("parse gross_loss: %w", err)
	}
	if res.Performance.TotalPnL, err = decimal.NewFromString(pnlStr); err != nil {
		return nil, fmt.Errorf("parse total_pnl: %w", err)
	}
	return &res, nil
}

func (s *SQLiteStore) loadTrades(ctx context.Context, backtestID string) ([]domain.Trade, error) {
	query := `SELECT id, symbol, legs, quantity, entry_time, exit_time, entry_price, exit_price,
			  gross_pnl, net_pnl, return_pct FROM backtest_trades WHERE backtest_id = ?
			  ORDER BY exit_time`
	rows, err := s.db.QueryContext(ctx, query, backtestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trades []domain.Trade
	for rows.Next() {
		var t domain.Trade
		var entryStr, exitStr, grossStr, netStr string
		if err := rows.Scan(&t.ID, &t.Symbol, &t.Legs, &t.Quantity, &t.EntryTime, &t.ExitTime,
			&entryStr, &exitStr, &grossStr, &netStr, &t.ReturnPercent); err != nil {
			return nil, err
		}
		if t.EntryPrice, err = decimal.NewFromString(entryStr); err != nil {
			return nil, err
		}
		if t.ExitPrice, err = decimal.NewFromString(exitStr); err != nil {
			return nil, err
		}
		if t.GrossPnL, err = decimal.NewFromString(grossStr); err != nil {
			return nil, err
		}
		if t.NetPnL, err = decimal.NewFromString(netStr); err != nil {
			return nil, err
		}
		trades = append(trades, t)
	}
	return trades, rows.Err()
}
