// Package events carries refresh triggers between the parts of the client
// that change server state and the read models that display it.
package events

import (
	"slices"
	"sync"
	"time"

	"github.com/gnfinvest/gnf/internal/domain"
)

// Kind names what happened.
type Kind string

const (
	// TransactionDecided is published after an admin approve or reject succeeds.
	TransactionDecided Kind = "transaction_decided"
	// PaymentConfirmed is published after an investor confirms a payment.
	PaymentConfirmed Kind = "payment_confirmed"
	// WithdrawalRequested is published after an investor submits a withdrawal.
	WithdrawalRequested Kind = "withdrawal_requested"
	// WalletsChanged is published after an admin edits the wallet list.
	WalletsChanged Kind = "wallets_changed"
)

// Event is a notification that server state changed. It carries identifiers
// only; subscribers re-fetch rather than patch.
type Event struct {
	Kind          Kind
	TransactionID string
	Status        domain.TransactionStatus
	Type          domain.TransactionType
	At            time.Time
}

type subscription struct {
	fn    func(Event)
	kinds map[Kind]bool
}

// Bus delivers events synchronously, in publish order, to every matching
// subscriber. It is safe for concurrent use.
type Bus struct {
	mu   sync.RWMutex
	next int
	subs map[int]subscription
}

func NewBus() *Bus {
	return &Bus{subs: make(map[int]subscription)}
}

// Subscribe registers fn for the given kinds, or for every kind when none are
// given. The returned func removes the subscription.
func (b *Bus) Subscribe(fn func(Event), kinds ...Kind) func() {
	sub := subscription{fn: fn}
	if len(kinds) > 0 {
		sub.kinds = make(map[Kind]bool, len(kinds))
		for _, k := range kinds {
			sub.kinds[k] = true
		}
	}

	b.mu.Lock()
	id := b.next
	b.next++
	b.subs[id] = sub
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
		})
	}
}

// Publish delivers e. Subscribers run on the caller's goroutine, outside the
// bus lock, ordered by subscription.
func (b *Bus) Publish(e Event) {
	if e.At.IsZero() {
		e.At = time.Now()
	}
	b.mu.RLock()
	ids := make([]int, 0, len(b.subs))
	for id := range b.subs {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	matched := make([]func(Event), 0, len(ids))
	for _, id := range ids {
		if s := b.subs[id]; s.kinds == nil || s.kinds[e.Kind] {
			matched = append(matched, s.fn)
		}
	}
	b.mu.RUnlock()

	for _, fn := range matched {
		fn(e)
	}
}
