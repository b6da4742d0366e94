// Package wallets caches the admin-managed list of payment wallets.
//
// The cache holds one immutable snapshot at a time. Refresh builds a new
// snapshot and swaps it in whole, so readers never observe a partial list.
package wallets

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gnfinvest/gnf/internal/domain"
)

// DefaultTTL is how long a fetched wallet list is trusted.
const DefaultTTL = 60 * time.Second

// Source fetches the current wallet list from the backend.
type Source interface {
	ListWallets(ctx context.Context, cred domain.Credential) ([]domain.Wallet, error)
}

// Store persists the last snapshot so separate processes share one TTL window.
// LoadWallets returns domain.ErrNotFound when nothing has been saved.
type Store interface {
	SaveWallets(ctx context.Context, wallets []domain.Wallet, fetchedAt time.Time) error
	LoadWallets(ctx context.Context) ([]domain.Wallet, time.Time, error)
}

type snapshot struct {
	wallets   []domain.Wallet
	bySymbol  map[string]int
	fetchedAt time.Time
}

func newSnapshot(ws []domain.Wallet, fetchedAt time.Time) *snapshot {
	s := &snapshot{
		wallets:   make([]domain.Wallet, 0, len(ws)),
		bySymbol:  make(map[string]int, len(ws)),
		fetchedAt: fetchedAt,
	}
	for _, w := range ws {
		w.Symbol = domain.NormalizeSymbol(w.Symbol)
		s.wallets = append(s.wallets, w)
		i := len(s.wallets) - 1
		// An active wallet wins over an inactive one with the same symbol.
		if prev, ok := s.bySymbol[w.Symbol]; !ok || (!s.wallets[prev].IsActive && w.IsActive) {
			s.bySymbol[w.Symbol] = i
		}
	}
	return s
}

// Directory is a read-through cache over a Source with a TTL.
type Directory struct {
	source Source
	store  Store
	ttl    time.Duration
	now    func() time.Time

	snap    atomic.Pointer[snapshot]
	refresh sync.Mutex
}

// Option configures a Directory.
type Option func(*Directory)

func WithTTL(ttl time.Duration) Option {
	return func(d *Directory) {
		if ttl > 0 {
			d.ttl = ttl
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(d *Directory) { d.now = now }
}

func WithStore(s Store) Option {
	return func(d *Directory) { d.store = s }
}

// New creates an empty Directory. Nothing is fetched until Refresh or Ensure.
func New(source Source, opts ...Option) *Directory {
	d := &Directory{source: source, ttl: DefaultTTL, now: time.Now}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Refresh fetches the wallet list and replaces the snapshot. On error the
// previous snapshot is kept.
func (d *Directory) Refresh(ctx context.Context, cred domain.Credential) error {
	d.refresh.Lock()
	defer d.refresh.Unlock()
	return d.refreshLocked(ctx, cred)
}

func (d *Directory) refreshLocked(ctx context.Context, cred domain.Credential) error {
	ws, err := d.source.ListWallets(ctx, cred)
	if err != nil {
		return fmt.Errorf("refreshing wallets: %w", err)
	}
	s := newSnapshot(ws, d.now())
	d.snap.Store(s)
	if d.store != nil {
		if err := d.store.SaveWallets(ctx, s.wallets, s.fetchedAt); err != nil {
			return fmt.Errorf("saving wallet snapshot: %w", err)
		}
	}
	return nil
}

// Ensure refreshes only when the snapshot is missing or older than the TTL.
// A persisted snapshot still inside the TTL is loaded instead of fetching.
func (d *Directory) Ensure(ctx context.Context, cred domain.Credential) error {
	if d.fresh(d.snap.Load()) {
		return nil
	}
	d.refresh.Lock()
	defer d.refresh.Unlock()
	if d.fresh(d.snap.Load()) {
		return nil
	}
	if d.store != nil && d.snap.Load() == nil {
		ws, at, err := d.store.LoadWallets(ctx)
		switch {
		case err == nil:
			if s := newSnapshot(ws, at); d.fresh(s) {
				d.snap.Store(s)
				return nil
			}
		case !errors.Is(err, domain.ErrNotFound):
			return fmt.Errorf("loading wallet snapshot: %w", err)
		}
	}
	return d.refreshLocked(ctx, cred)
}

func (d *Directory) fresh(s *snapshot) bool {
	return s != nil && d.now().Sub(s.fetchedAt) < d.ttl
}

// Invalidate forces the next Ensure to fetch. The current snapshot stays
// readable until then.
func (d *Directory) Invalidate() {
	if s := d.snap.Load(); s != nil {
		stale := *s
		stale.fetchedAt = time.Time{}
		d.snap.Store(&stale)
	}
}

// Get returns the cached wallet for symbol, active or not.
func (d *Directory) Get(symbol string) (domain.Wallet, error) {
	s := d.snap.Load()
	if s == nil {
		return domain.Wallet{}, fmt.Errorf("wallet %s: %w", symbol, domain.ErrNotFound)
	}
	i, ok := s.bySymbol[domain.NormalizeSymbol(symbol)]
	if !ok {
		return domain.Wallet{}, fmt.Errorf("wallet %s: %w", symbol, domain.ErrNotFound)
	}
	return s.wallets[i], nil
}

// All returns every cached wallet, including inactive ones.
func (d *Directory) All() []domain.Wallet {
	s := d.snap.Load()
	if s == nil {
		return nil
	}
	out := make([]domain.Wallet, len(s.wallets))
	copy(out, s.wallets)
	return out
}

// Active returns the wallets an investor may pay into.
func (d *Directory) Active() []domain.Wallet {
	s := d.snap.Load()
	if s == nil {
		return nil
	}
	var out []domain.Wallet
	for _, w := range s.wallets {
		if w.IsActive {
			out = append(out, w)
		}
	}
	return out
}

// FetchedAt reports when the current snapshot was fetched; zero if never.
func (d *Directory) FetchedAt() time.Time {
	if s := d.snap.Load(); s != nil {
		return s.fetchedAt
	}
	return time.Time{}
}

// Revalidate refreshes the directory and checks that symbol is still an
// active wallet. It returns domain.ErrStaleWallet otherwise.
func (d *Directory) Revalidate(ctx context.Context, cred domain.Credential, symbol string) (domain.Wallet, error) {
	if err := d.Refresh(ctx, cred); err != nil {
		return domain.Wallet{}, err
	}
	w, err := d.Get(symbol)
	if errors.Is(err, domain.ErrNotFound) || (err == nil && !w.IsActive) {
		return domain.Wallet{}, fmt.Errorf("wallet %s: %w", domain.NormalizeSymbol(symbol), domain.ErrStaleWallet)
	}
	if err != nil {
		return domain.Wallet{}, err
	}
	return w, nil
}
