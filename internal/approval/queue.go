// Package approval is the admin side of the purchase workflow: it lists
// transactions awaiting review and applies one-shot approve/reject decisions.
package approval

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gnfinvest/gnf/internal/domain"
	"github.com/gnfinvest/gnf/internal/events"
)

// Backend is the subset of the REST client the queue needs.
type Backend interface {
	AdminListTransactions(ctx context.Context, cred domain.Credential, filter domain.TransactionFilter) ([]domain.Transaction, error)
	UpdateTransactionStatus(ctx context.Context, cred domain.Credential, id string, status domain.TransactionStatus, txType domain.TransactionType) error
}

// Publisher receives a refresh trigger after every successful decision.
type Publisher interface {
	Publish(events.Event)
}

// Action is something the admin may do to a row.
type Action string

const (
	Approve Action = "approve"
	Reject  Action = "reject"
)

// Queue tracks the last fetched rows, the ids with a decision in flight, and
// the ids this queue has already decided. Rows are never patched locally;
// callers re-list after a decision.
type Queue struct {
	backend Backend
	bus     Publisher
	now     func() time.Time

	mu       sync.Mutex
	rows     map[string]domain.Transaction
	inFlight map[string]bool
	decided  map[string]domain.TransactionStatus
}

// NewQueue creates a Queue. bus may be nil.
func NewQueue(backend Backend, bus Publisher) *Queue {
	return &Queue{
		backend:  backend,
		bus:      bus,
		now:      time.Now,
		rows:     make(map[string]domain.Transaction),
		inFlight: make(map[string]bool),
		decided:  make(map[string]domain.TransactionStatus),
	}
}

// List fetches transactions matching filter, newest first.
func (q *Queue) List(ctx context.Context, cred domain.Credential, filter domain.TransactionFilter) ([]domain.Transaction, error) {
	txs, err := q.backend.AdminListTransactions(ctx, cred, filter)
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}
	txs = filter.Apply(txs)

	q.mu.Lock()
	for _, tx := range txs {
		q.rows[tx.ID] = tx
	}
	q.mu.Unlock()
	return txs, nil
}

// Approve moves a Pending transaction to Completed.
func (q *Queue) Approve(ctx context.Context, cred domain.Credential, id string) error {
	return q.decide(ctx, cred, id, domain.TxCompleted)
}

// Reject moves a Pending transaction to Failed.
func (q *Queue) Reject(ctx context.Context, cred domain.Credential, id string) error {
	return q.decide(ctx, cred, id, domain.TxFailed)
}

func (q *Queue) decide(ctx context.Context, cred domain.Credential, id string, status domain.TransactionStatus) error {
	q.mu.Lock()
	_, known := q.rows[id]
	q.mu.Unlock()
	if !known {
		if _, err := q.List(ctx, cred, domain.TransactionFilter{}); err != nil {
			return err
		}
	}

	q.mu.Lock()
	tx, err := q.claimLocked(id)
	q.mu.Unlock()
	if err != nil {
		return err
	}

	err = q.backend.UpdateTransactionStatus(ctx, cred, id, status, tx.Type)

	q.mu.Lock()
	delete(q.inFlight, id)
	if err == nil {
		q.decided[id] = status
	}
	q.mu.Unlock()

	if err != nil {
		return fmt.Errorf("updating transaction %s: %w", id, err)
	}
	if q.bus != nil {
		q.bus.Publish(events.Event{
			Kind:          events.TransactionDecided,
			TransactionID: id,
			Status:        status,
			Type:          tx.Type,
			At:            q.now(),
		})
	}
	return nil
}

// claimLocked checks that id may be decided and marks it in flight.
func (q *Queue) claimLocked(id string) (domain.Transaction, error) {
	if q.inFlight[id] {
		return domain.Transaction{}, fmt.Errorf("transaction %s: %w", id, domain.ErrBusy)
	}
	if _, done := q.decided[id]; done {
		return domain.Transaction{}, fmt.Errorf("transaction %s: %w", id, domain.ErrAlreadyDecided)
	}
	tx, ok := q.rows[id]
	if !ok {
		return domain.Transaction{}, fmt.Errorf("transaction %s: %w", id, domain.ErrNotFound)
	}
	if tx.Status != domain.TxPending {
		return domain.Transaction{}, fmt.Errorf("transaction %s is %s: %w", id, tx.Status, domain.ErrAlreadyDecided)
	}
	q.inFlight[id] = true
	return tx, nil
}

// Actions returns the actions to offer for tx. Rows that left Pending, were
// decided here, or have a decision in flight get none.
func (q *Queue) Actions(tx domain.Transaction) []Action {
	if tx.Status != domain.TxPending {
		return nil
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.inFlight[tx.ID] {
		return nil
	}
	if _, done := q.decided[tx.ID]; done {
		return nil
	}
	return []Action{Approve, Reject}
}

// InFlight reports whether a decision for id is outstanding.
func (q *Queue) InFlight(id string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.inFlight[id]
}
