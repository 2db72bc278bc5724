package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/vitos/options_backtest/internal/domain"
)

// BacktestEngine replays simulated time against a strategy. All state
// (cash, open positions, trade log, equity curve) is created fresh per
// engine and owned exclusively by one run; run independent engines in
// parallel, never one engine concurrently.
type BacktestEngine struct {
	cfg      domain.BacktestConfig
	provider domain.MarketDataProvider
	executor *OrderExecutor
	perf     *PerformanceCalculator
	log      *zap.Logger

	status    domain.Status
	cash      decimal.Decimal
	positions map[string]*domain.Position
	trades    []domain.Trade
	curve     []domain.EquityCurvePoint
}

func NewBacktestEngine(cfg domain.BacktestConfig, provider domain.MarketDataProvider, log *zap.Logger) (*BacktestEngine, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid backtest config: %w", err)
	}
	if provider == nil {
		return nil, fmt.Errorf("market data provider is required")
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &BacktestEngine{
		cfg:       cfg,
		provider:  provider,
		executor:  NewOrderExecutor(cfg.Costs),
		perf:      NewPerformanceCalculator(cfg.StepsPerYear),
		log:       log,
		status:    domain.StatusInitialized,
		cash:      cfg.InitialCapital,
		positions: make(map[string]*domain.Position),
	}, nil
}

// Run advances the simulated clock one day at a time from StartDate to
// EndDate and returns the final report. A run that aborts mid-way still
// returns the partial result, tagged FAILED, alongside the error.
func (e *BacktestEngine) Run(ctx context.Context, strategy domain.Strategy) (*domain.BacktestResult, error) {
	if e.status != domain.StatusInitialized {
		return nil, fmt.Errorf("engine already ran (status %s); construct a new engine per run", e.status)
	}
	e.status = domain.StatusRunning

	id := uuid.NewString()
	started := time.Now()
	e.log.Info("backtest started",
		zap.String("backtest_id", id),
		zap.String("strategy", strategy.Name()),
		zap.Time("start", e.cfg.StartDate),
		zap.Time("end", e.cfg.EndDate),
		zap.Strings("symbols", e.cfg.Symbols))

	for t := e.cfg.StartDate; !t.After(e.cfg.EndDate); t = t.Add(24 * time.Hour) {
		if err := ctx.Err(); err != nil {
			return e.fail(id, started, fmt.Errorf("run cancelled at %s: %w", t.Format(time.DateOnly), err))
		}
		if err := e.step(ctx, t, strategy); err != nil {
			return e.fail(id, started, fmt.Errorf("step %s: %w", t.Format(time.DateOnly), err))
		}
	}

	e.status = domain.StatusCompleted
	res := e.result(id, started, domain.StatusCompleted, "")
	e.log.Info("backtest completed",
		zap.String("backtest_id", id),
		zap.Int("trades", res.Performance.TotalTrades),
		zap.String("total_pnl", res.Performance.TotalPnL.String()),
		zap.Float64("win_rate", res.Performance.WinRate))
	return res, nil
}

func (e *BacktestEngine) fail(id string, started time.Time, err error) (*domain.BacktestResult, error) {
	e.status = domain.StatusFailed
	e.log.Error("backtest aborted", zap.String("backtest_id", id), zap.Error(err))
	return e.result(id, started, domain.StatusFailed, err.Error()), err
}

func (e *BacktestEngine) step(ctx context.Context, t time.Time, strategy domain.Strategy) error {
	quotes, err := e.provider.GetQuotes(ctx, e.cfg.Symbols, t)
	if err != nil {
		return fmt.Errorf("fetch quotes: %w", err)
	}
	for _, sym := range e.cfg.Symbols {
		q, ok := quotes[sym]
		if !ok || q == nil {
			return fmt.Errorf("no quote for %s", sym)
		}
		if err := q.Validate(); err != nil {
			return err
		}
	}
	snap := &domain.MarketSnapshot{Time: t, Quotes: quotes}

	e.sweepExpired(snap)

	intents, err := strategy.Evaluate(ctx, snap, e.openPositions())
	if err != nil {
		return fmt.Errorf("strategy %s: %w", strategy.Name(), err)
	}
	for _, intent := range intents {
		if err := e.processIntent(snap, intent); err != nil {
			return err
		}
	}

	e.curve = append(e.curve, domain.EquityCurvePoint{
		Timestamp:     t,
		Equity:        e.markToMarket(snap),
		Cash:          e.cash,
		OpenPositions: len(e.positions),
	})
	return nil
}

// sweepExpired force-closes positions whose contract expired before the
// current step, at mid with commission and no slippage charge.
func (e *BacktestEngine) sweepExpired(snap *domain.MarketSnapshot) {
	for _, sym := range e.sortedPositionSymbols() {
		pos := e.positions[sym]
		if !pos.Contract.ExpiredAt(snap.Time) {
			continue
		}
		q, ok := snap.Quotes[sym]
		if !ok {
			continue
		}
		fill := &domain.Fill{
			Price:      q.Mid(),
			Commission: e.cfg.Costs.CommissionPerContract.Mul(decimal.NewFromInt(pos.Quantity)),
			CostPaid:   decimal.Zero,
		}
		e.closePosition(snap.Time, pos, fill)
		e.log.Debug("expired position closed",
			zap.String("symbol", sym),
			zap.Time("expiry", pos.Contract.Expiry))
	}
}

func (e *BacktestEngine) processIntent(snap *domain.MarketSnapshot, intent domain.OrderIntent) error {
	q, ok := snap.Quotes[intent.Symbol]
	if !ok {
		e.log.Debug("intent dropped: unknown symbol", zap.String("symbol", intent.Symbol))
		return nil
	}

	switch intent.Side {
	case domain.SideBuy:
		return e.openIntent(snap.Time, intent, q)
	case domain.SideSell:
		return e.closeIntent(snap.Time, intent, q)
	default:
		e.log.Debug("intent dropped: unknown side", zap.String("side", string(intent.Side)))
		return nil
	}
}

func (e *BacktestEngine) openIntent(t time.Time, intent domain.OrderIntent, q *domain.Quote) error {
	if _, held := e.positions[intent.Symbol]; held {
		e.log.Debug("intent dropped: position already open", zap.String("symbol", intent.Symbol))
		return nil
	}
	if len(e.positions) >= e.cfg.MaxPositions {
		e.log.Debug("intent dropped: max positions reached",
			zap.String("symbol", intent.Symbol),
			zap.Int("max_positions", e.cfg.MaxPositions))
		return nil
	}
	qty := e.sizeIntent(intent, q)
	if qty > e.cfg.MaxPositionSize {
		e.log.Debug("intent dropped: exceeds max position size",
			zap.String("symbol", intent.Symbol),
			zap.Int64("quantity", qty),
			zap.Int64("max_position_size", e.cfg.MaxPositionSize))
		return nil
	}

	fill, err := e.execute(intent, q, qty)
	if err != nil {
		return err
	}
	if fill == nil {
		e.log.Debug("limit order did not cross", zap.String("symbol", intent.Symbol))
		return nil
	}

	notional := domain.Notional(fill.Price, qty)
	e.cash = e.cash.Sub(notional).Sub(fill.Commission).Sub(fill.CostPaid)
	e.positions[intent.Symbol] = &domain.Position{
		Contract:        q.Contract,
		Side:            domain.SideBuy,
		Quantity:        qty,
		EntryPrice:      fill.Price,
		EntryTime:       t,
		CostBasis:       notional.Add(fill.Commission).Add(fill.CostPaid),
		EntryCommission: fill.Commission,
		EntryCost:       fill.CostPaid,
	}
	e.log.Debug("position opened",
		zap.String("symbol", intent.Symbol),
		zap.Int64("quantity", qty),
		zap.String("price", fill.Price.String()))
	return nil
}

func (e *BacktestEngine) closeIntent(t time.Time, intent domain.OrderIntent, q *domain.Quote) error {
	pos, held := e.positions[intent.Symbol]
	if !held {
		e.log.Debug("intent dropped: no open position", zap.String("symbol", intent.Symbol))
		return nil
	}
	fill, err := e.execute(intent, q, pos.Quantity)
	if err != nil {
		return err
	}
	if fill == nil {
		e.log.Debug("limit order did not cross", zap.String("symbol", intent.Symbol))
		return nil
	}
	e.closePosition(t, pos, fill)
	return nil
}

// closePosition settles cash, removes the position, and appends the
// round-trip to the trade log.
func (e *BacktestEngine) closePosition(t time.Time, pos *domain.Position, fill *domain.Fill) {
	notional := domain.Notional(fill.Price, pos.Quantity)
	e.cash = e.cash.Add(notional).Sub(fill.Commission).Sub(fill.CostPaid)

	gross := domain.Notional(fill.Price.Sub(pos.EntryPrice), pos.Quantity)
	commissions := pos.EntryCommission.Add(fill.Commission)
	costs := pos.EntryCost.Add(fill.CostPaid)
	net := ApplyTransactionCosts(gross, commissions, costs)

	var returnPct float64
	if pos.CostBasis.IsPositive() {
		returnPct, _ = net.Div(pos.CostBasis).Mul(hundred).Float64()
	}

	e.trades = append(e.trades, domain.Trade{
		ID:            uuid.NewString(),
		Symbol:        pos.Contract.Symbol,
		Legs:          1,
		Quantity:      pos.Quantity,
		EntryTime:     pos.EntryTime,
		ExitTime:      t,
		EntryPrice:    pos.EntryPrice,
		ExitPrice:     fill.Price,
		GrossPnL:      gross,
		NetPnL:        net,
		ReturnPercent: returnPct,
	})
	delete(e.positions, pos.Contract.Symbol)
	e.log.Debug("position closed",
		zap.String("symbol", pos.Contract.Symbol),
		zap.String("net_pnl", net.String()))
}

func (e *BacktestEngine) execute(intent domain.OrderIntent, q *domain.Quote, qty int64) (*domain.Fill, error) {
	switch intent.Type {
	case domain.OrderLimit:
		return e.executor.ExecuteLimitOrder(q, intent.Side, qty, intent.LimitPrice)
	case domain.OrderMid:
		return e.executor.ExecuteAtMid(q, intent.Side, qty)
	default:
		return e.executor.ExecuteMarketOrder(q, intent.Side, qty)
	}
}

// sizeIntent maps the intent's sizing policy to a contract count. Kelly
// inputs come from the engine's own closed-trade log; with no history
// the edge is zero and the one-contract floor applies.
func (e *BacktestEngine) sizeIntent(intent domain.OrderIntent, q *domain.Quote) int64 {
	switch intent.Sizing.Policy {
	case domain.SizePercentOfCapital:
		return PercentOfCapital(e.cash, intent.Sizing.Percent, q.Mid())
	case domain.SizeKelly:
		winRate, avgWin, avgLoss := e.tradeStats()
		return KellyCriterion(winRate, avgWin, avgLoss, e.cash, q.Mid())
	default:
		return FixedQuantity(intent.Sizing.Quantity)
	}
}

// tradeStats derives Kelly inputs from the closed-trade log.
func (e *BacktestEngine) tradeStats() (winRate float64, avgWin, avgLoss decimal.Decimal) {
	avgWin, avgLoss = decimal.Zero, decimal.Zero
	if len(e.trades) == 0 {
		return 0, avgWin, avgLoss
	}
	var wins, losses int64
	sumWin, sumLoss := decimal.Zero, decimal.Zero
	for _, t := range e.trades {
		switch {
		case t.NetPnL.IsPositive():
			wins++
			sumWin = sumWin.Add(t.NetPnL)
		case t.NetPnL.IsNegative():
			losses++
			sumLoss = sumLoss.Add(t.NetPnL.Abs())
		}
	}
	if wins > 0 {
		avgWin = sumWin.Div(decimal.NewFromInt(wins))
	}
	if losses > 0 {
		avgLoss = sumLoss.Div(decimal.NewFromInt(losses))
	}
	return float64(wins) / float64(len(e.trades)), avgWin, avgLoss
}

func (e *BacktestEngine) markToMarket(snap *domain.MarketSnapshot) decimal.Decimal {
	equity := e.cash
	for sym, pos := range e.positions {
		if q, ok := snap.Quotes[sym]; ok {
			equity = equity.Add(domain.Notional(q.Mid(), pos.Quantity))
		} else {
			equity = equity.Add(domain.Notional(pos.EntryPrice, pos.Quantity))
		}
	}
	return equity
}

// openPositions returns the open set in symbol order so strategy input
// is deterministic.
func (e *BacktestEngine) openPositions() []*domain.Position {
	out := make([]*domain.Position, 0, len(e.positions))
	for _, sym := range e.sortedPositionSymbols() {
		out = append(out, e.positions[sym])
	}
	return out
}

func (e *BacktestEngine) sortedPositionSymbols() []string {
	syms := make([]string, 0, len(e.positions))
	for sym := range e.positions {
		syms = append(syms, sym)
	}
	sort.Strings(syms)
	return syms
}

func (e *BacktestEngine) result(id string, started time.Time, status domain.Status, errMsg string) *domain.BacktestResult {
	trades := make([]domain.Trade, len(e.trades))
	copy(trades, e.trades)
	curve := make([]domain.EquityCurvePoint, len(e.curve))
	copy(curve, e.curve)

	return &domain.BacktestResult{
		ID:          id,
		Status:      status,
		Config:      e.cfg,
		Trades:      trades,
		EquityCurve: curve,
		Performance: e.perf.Calculate(trades, curve),
		StartedAt:   started,
		Err:         errMsg,
	}
}
