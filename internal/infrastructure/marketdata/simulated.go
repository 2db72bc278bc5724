package marketdata

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vitos/options_backtest/internal/domain"
)

const priceFloor = 0.05

// SimulatedProvider generates quotes from a seeded random walk, one walk
// per symbol. The same seed and the same call sequence always produce
// the same quotes, which is what makes backtest runs reproducible.
type SimulatedProvider struct {
	mu         sync.Mutex
	rng        *rand.Rand
	basePrice  float64
	spreadPct  float64 // full spread as a fraction of mid
	volatility float64 // per-step stddev of returns
	expiry     time.Time
	state      map[string]*symbolState
}

type symbolState struct {
	price  float64
	lastAt time.Time
	last   *domain.Quote
}

type Option func(*SimulatedProvider)

func WithBasePrice(p float64) Option {
	return func(s *SimulatedProvider) { s.basePrice = p }
}

func WithSpreadPercent(p float64) Option {
	return func(s *SimulatedProvider) { s.spreadPct = p }
}

func WithVolatility(v float64) Option {
	return func(s *SimulatedProvider) { s.volatility = v }
}

// WithExpiry stamps generated contracts with a fixed expiry so the
// engine's expiry handling can be exercised.
func WithExpiry(t time.Time) Option {
	return func(s *SimulatedProvider) { s.expiry = t }
}

// NewSimulatedProvider requires an explicit seed; there is no ambient
// randomness anywhere in the provider.
func NewSimulatedProvider(seed int64, opts ...Option) *SimulatedProvider {
	p := &SimulatedProvider{
		rng:        rand.New(rand.NewSource(seed)),
		basePrice:  5.0,
		spreadPct:  0.04,
		volatility: 0.03,
		state:      make(map[string]*symbolState),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *SimulatedProvider) GetQuote(_ context.Context, symbol string, at time.Time) (*domain.Quote, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.quoteLocked(symbol, at), nil
}

func (p *SimulatedProvider) GetQuotes(_ context.Context, symbols []string, at time.Time) (map[string]*domain.Quote, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make(map[string]*domain.Quote, len(symbols))
	for _, sym := range symbols {
		out[sym] = p.quoteLocked(sym, at)
	}
	return out, nil
}

// GetOptionsChain synthesizes five strikes per side around the current
// walk price of the underlying.
func (p *SimulatedProvider) GetOptionsChain(_ context.Context, underlying string, expiry, at time.Time) (*domain.OptionsChain, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	base := p.quoteLocked(underlying, at)
	mid, _ := base.Mid().Float64()
	chain := &domain.OptionsChain{Underlying: underlying, Expiry: expiry}

	for i := -2; i <= 2; i++ {
		strike := mid * (1 + 0.05*float64(i))
		chain.Calls = append(chain.Calls, p.contractQuoteLocked(underlying, strike, mid, expiry, at, domain.OptionCall))
		chain.Puts = append(chain.Puts, p.contractQuoteLocked(underlying, strike, mid, expiry, at, domain.OptionPut))
	}
	return chain, nil
}

// quoteLocked advances the symbol's walk once per distinct timestamp and
// caches the result, so repeated fetches within a step are stable.
func (p *SimulatedProvider) quoteLocked(symbol string, at time.Time) *domain.Quote {
	st, ok := p.state[symbol]
	if !ok {
		st = &symbolState{price: p.basePrice}
		p.state[symbol] = st
	}
	if st.last != nil && st.lastAt.Equal(at) {
		return st.last
	}

	st.price *= 1 + p.volatility*p.rng.NormFloat64()
	if st.price < priceFloor {
		st.price = priceFloor
	}

	half := st.price * p.spreadPct / 2
	bid := st.price - half
	if bid < 0 {
		bid = 0
	}
	q := &domain.Quote{
		Contract: domain.OptionContract{
			Symbol:     symbol,
			Underlying: symbol,
			Strike:     round2(st.price),
			Expiry:     p.expiry,
			Type:       domain.OptionCall,
		},
		Bid:               round2(bid),
		Ask:               round2(st.price + half),
		Last:              round2(st.price),
		Volume:            100 + p.rng.Int63n(900),
		OpenInterest:      1000 + p.rng.Int63n(9000),
		ImpliedVolatility: 0.2 + 0.1*p.rng.Float64(),
		Timestamp:         at,
	}
	st.lastAt = at
	st.last = q
	return q
}

func (p *SimulatedProvider) contractQuoteLocked(underlying string, strike, mid float64, expiry, at time.Time, typ domain.OptionType) *domain.Quote {
	// crude premium: intrinsic plus a volatility-scaled time value
	intrinsic := mid - strike
	if typ == domain.OptionPut {
		intrinsic = strike - mid
	}
	intrinsic = math.Max(0, intrinsic)
	premium := intrinsic + mid*0.02*(1+p.rng.Float64())
	half := premium * p.spreadPct / 2

	return &domain.Quote{
		Contract: domain.OptionContract{
			Symbol:     fmt.Sprintf("%s-%s-%.2f-%s", underlying, expiry.Format("20060102"), strike, typ),
			Underlying: underlying,
			Strike:     round2(strike),
			Expiry:     expiry,
			Type:       typ,
		},
		Bid:               round2(math.Max(0, premium-half)),
		Ask:               round2(premium + half),
		Last:              round2(premium),
		Volume:            10 + p.rng.Int63n(490),
		OpenInterest:      100 + p.rng.Int63n(4900),
		ImpliedVolatility: 0.2 + 0.1*p.rng.Float64(),
		Timestamp:         at,
	}
}

func round2(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(2)
}
