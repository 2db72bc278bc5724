package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/vitos/options_backtest/internal/domain"
	"github.com/vitos/options_backtest/internal/infrastructure/logger"
	"github.com/vitos/options_backtest/internal/infrastructure/marketdata"
	"github.com/vitos/options_backtest/internal/infrastructure/storage"
	"github.com/vitos/options_backtest/internal/usecase"
)

type Config struct {
	Backtest struct {
		InitialCapital  float64  `yaml:"initial_capital"`
		StartDate       string   `yaml:"start_date"`
		EndDate         string   `yaml:"end_date"`
		Symbols         []string `yaml:"symbols"`
		MaxPositionSize int64    `yaml:"max_position_size"`
		MaxPositions    int      `yaml:"max_positions"`
		StepsPerYear    int      `yaml:"steps_per_year"`
	} `yaml:"backtest"`
	Costs struct {
		CommissionPerContract float64 `yaml:"commission_per_contract"`
		SlippagePercent       float64 `yaml:"slippage_percent"`
		SpreadCostPercent     float64 `yaml:"spread_cost_percent"`
	} `yaml:"costs"`
	Market struct {
		Seed          int64   `yaml:"seed"`
		BasePrice     float64 `yaml:"base_price"`
		SpreadPercent float64 `yaml:"spread_percent"`
		Volatility    float64 `yaml:"volatility"`
	} `yaml:"market"`
	Strategy struct {
		Name          string  `yaml:"name"`
		Quantity      int64   `yaml:"quantity"`
		TakeProfitPct float64 `yaml:"take_profit_pct"`
		StopLossPct   float64 `yaml:"stop_loss_pct"`
	} `yaml:"strategy"`
	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`
	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`
}

func loadConfig(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func buildBacktestConfig(cfg *Config) (domain.BacktestConfig, error) {
	start, err := time.Parse(time.DateOnly, cfg.Backtest.StartDate)
	if err != nil {
		return domain.BacktestConfig{}, fmt.Errorf("parse start_date: %w", err)
	}
	end, err := time.Parse(time.DateOnly, cfg.Backtest.EndDate)
	if err != nil {
		return domain.BacktestConfig{}, fmt.Errorf("parse end_date: %w", err)
	}

	return domain.BacktestConfig{
		InitialCapital: decimal.NewFromFloat(cfg.Backtest.InitialCapital),
		StartDate:      start,
		EndDate:        end,
		Symbols:        cfg.Backtest.Symbols,
		Costs: domain.TransactionCostModel{
			CommissionPerContract: decimal.NewFromFloat(cfg.Costs.CommissionPerContract),
			SlippagePercent:       decimal.NewFromFloat(cfg.Costs.SlippagePercent),
			SpreadCostPercent:     decimal.NewFromFloat(cfg.Costs.SpreadCostPercent),
		},
		MaxPositionSize: cfg.Backtest.MaxPositionSize,
		MaxPositions:    cfg.Backtest.MaxPositions,
		StepsPerYear:    cfg.Backtest.StepsPerYear,
	}, nil
}

func buildStrategy(cfg *Config) (domain.Strategy, error) {
	switch cfg.Strategy.Name {
	case "noop":
		return usecase.NoOpStrategy{}, nil
	case "target-exit", "":
		return usecase.NewTargetExitStrategy(
			cfg.Strategy.Quantity,
			decimal.NewFromFloat(cfg.Strategy.TakeProfitPct),
			decimal.NewFromFloat(cfg.Strategy.StopLossPct)), nil
	default:
		return nil, fmt.Errorf("unknown strategy: %s", cfg.Strategy.Name)
	}
}

func printSummary(res *domain.BacktestResult) {
	p := res.Performance
	fmt.Printf("Backtest %s [%s]\n", res.ID, res.Status)
	if res.Err != "" {
		fmt.Printf("  Error:          %s\n", res.Err)
	}
	fmt.Printf("  Period:         %s .. %s\n",
		res.Config.StartDate.Format(time.DateOnly), res.Config.EndDate.Format(time.DateOnly))
	fmt.Printf("  Trades:         %d (%d W / %d L)\n", p.TotalTrades, p.WinningTrades, p.LosingTrades)
	fmt.Printf("  Win rate:       %.2f%%\n", p.WinRate)
	fmt.Printf("  Gross P/L:      +%s / -%s\n", p.GrossProfit, p.GrossLoss)
	fmt.Printf("  Profit factor:  %.2f\n", p.ProfitFactor)
	fmt.Printf("  Sharpe:         %.2f\n", p.SharpeRatio)
	fmt.Printf("  Max drawdown:   %.2f%%\n", p.MaxDrawdown*100)
	fmt.Printf("  Total PnL:      %s\n", p.TotalPnL)
	if n := len(res.EquityCurve); n > 0 {
		fmt.Printf("  Final equity:   %s\n", res.EquityCurve[n-1].Equity)
	}
}

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.NewLogger(cfg.Logging.Level)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	btCfg, err := buildBacktestConfig(cfg)
	if err != nil {
		log.Fatal("Invalid backtest config", zap.Error(err))
	}

	strategy, err := buildStrategy(cfg)
	if err != nil {
		log.Fatal("Invalid strategy config", zap.Error(err))
	}

	var opts []marketdata.Option
	if cfg.Market.BasePrice > 0 {
		opts = append(opts, marketdata.WithBasePrice(cfg.Market.BasePrice))
	}
	if cfg.Market.SpreadPercent > 0 {
		opts = append(opts, marketdata.WithSpreadPercent(cfg.Market.SpreadPercent))
	}
	if cfg.Market.Volatility > 0 {
		opts = append(opts, marketdata.WithVolatility(cfg.Market.Volatility))
	}
	provider := marketdata.NewSimulatedProvider(cfg.Market.Seed, opts...)

	engine, err := usecase.NewBacktestEngine(btCfg, provider, log)
	if err != nil {
		log.Fatal("Failed to init engine", zap.Error(err))
	}

	ctx := context.Background()
	res, runErr := engine.Run(ctx, strategy)
	if res == nil {
		log.Fatal("Backtest produced no result", zap.Error(runErr))
	}

	if cfg.Database.Path != "" {
		store, err := storage.NewSQLiteStore(cfg.Database.Path)
		if err != nil {
			log.Fatal("Failed to init sqlite", zap.Error(err))
		}
		defer store.Close()
		if err := store.SaveResult(ctx, res); err != nil {
			log.Error("Failed to save result", zap.Error(err))
		}
	}

	printSummary(res)
	if runErr != nil {
		os.Exit(1)
	}
}
