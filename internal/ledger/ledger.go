// Package ledger projects server transactions into the read-only views shown
// to investors and admins. It never mutates; mutations elsewhere publish an
// event and the next read re-fetches.
package ledger

import (
	"context"
	"fmt"
	"sync"

	"github.com/gnfinvest/gnf/internal/domain"
	"github.com/gnfinvest/gnf/internal/events"
)

// Source is the subset of the REST client the ledger reads from.
type Source interface {
	ListTransactions(ctx context.Context, cred domain.Credential) ([]domain.Transaction, error)
	ListWithdrawals(ctx context.Context, cred domain.Credential) ([]domain.Withdrawal, error)
	AdminListTransactions(ctx context.Context, cred domain.Credential, filter domain.TransactionFilter) ([]domain.Transaction, error)
}

// UserView is what an investor sees: their plan activations and their
// withdrawals, each newest first.
type UserView struct {
	Activations []domain.Transaction
	Withdrawals []domain.Transaction
}

// All merges both lists, newest first.
func (v UserView) All() []domain.Transaction {
	out := make([]domain.Transaction, 0, len(v.Activations)+len(v.Withdrawals))
	out = append(out, v.Activations...)
	out = append(out, v.Withdrawals...)
	domain.SortNewestFirst(out)
	return out
}

type Ledger struct {
	source Source

	mu    sync.Mutex
	cache map[string]UserView
	// gen counts invalidations; a fetch that straddles one is not cached.
	gen uint64
}

func New(source Source) *Ledger {
	return &Ledger{source: source, cache: make(map[string]UserView)}
}

// ForUser returns the investor view for cred. The result is cached per token
// until Invalidate is called.
func (l *Ledger) ForUser(ctx context.Context, cred domain.Credential) (UserView, error) {
	l.mu.Lock()
	view, ok := l.cache[cred.Token]
	gen := l.gen
	l.mu.Unlock()
	if ok {
		return view, nil
	}

	txs, err := l.source.ListTransactions(ctx, cred)
	if err != nil {
		return UserView{}, fmt.Errorf("listing transactions: %w", err)
	}
	ws, err := l.source.ListWithdrawals(ctx, cred)
	if err != nil {
		return UserView{}, fmt.Errorf("listing withdrawals: %w", err)
	}

	view.Activations = domain.TransactionFilter{Type: domain.TxPlanActivation}.Apply(txs)
	view.Withdrawals = make([]domain.Transaction, 0, len(ws))
	for _, w := range ws {
		view.Withdrawals = append(view.Withdrawals, w.AsTransaction())
	}
	domain.SortNewestFirst(view.Withdrawals)

	l.mu.Lock()
	if l.gen == gen {
		l.cache[cred.Token] = view
	}
	l.mu.Unlock()
	return view, nil
}

// ForAdmin always fetches; the admin list is the review surface and must
// reflect the server after every decision.
func (l *Ledger) ForAdmin(ctx context.Context, cred domain.Credential, filter domain.TransactionFilter) ([]domain.Transaction, error) {
	txs, err := l.source.AdminListTransactions(ctx, cred, filter)
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}
	return filter.Apply(txs), nil
}

// Invalidate drops every cached view.
func (l *Ledger) Invalidate() {
	l.mu.Lock()
	clear(l.cache)
	l.gen++
	l.mu.Unlock()
}

// Attach subscribes the ledger to the events that change what it shows.
// The returned func detaches it.
func (l *Ledger) Attach(bus *events.Bus) func() {
	return bus.Subscribe(func(events.Event) { l.Invalidate() },
		events.TransactionDecided, events.PaymentConfirmed, events.WithdrawalRequested)
}
