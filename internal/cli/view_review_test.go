package cli

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/gnfinvest/gnf/internal/approval"
	"github.com/gnfinvest/gnf/internal/domain"
	"github.com/gnfinvest/gnf/internal/events"
	"github.com/gnfinvest/gnf/internal/teatest"
	"github.com/gnfinvest/gnf/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAdminBackend struct {
	mu      sync.Mutex
	txs     []domain.Transaction
	updates []domain.TransactionStatus
}

func (s *stubAdminBackend) AdminListTransactions(context.Context, domain.Credential, domain.TransactionFilter) ([]domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Transaction(nil), s.txs...), nil
}

func (s *stubAdminBackend) UpdateTransactionStatus(_ context.Context, _ domain.Credential, id string, status domain.TransactionStatus, _ domain.TransactionType) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.txs {
		if s.txs[i].ID == id {
			s.txs[i].Status = status
		}
	}
	s.updates = append(s.updates, status)
	return nil
}

func newReviewFixture(t *testing.T, txs ...domain.Transaction) (*teatest.Driver, *stubAdminBackend, *events.Bus) {
	t.Helper()
	backend := &stubAdminBackend{txs: txs}
	bus := events.NewBus()
	queue := approval.NewQueue(backend, bus)
	adminCred := domain.Credential{Token: "admin-tok", Role: domain.RoleAdmin}
	d := teatest.New(t, newReviewModel(context.Background(), queue, adminCred, func() time.Time { return testutil.Epoch }))
	d.DrainInit()
	return d, backend, bus
}

func TestReviewModel_ListsPendingPlans(t *testing.T) {
	d, _, _ := newReviewFixture(t,
		testutil.NewTestTransaction(500, testutil.WithUser("alice", "alice@example.com")),
		testutil.NewTestTransaction(900, testutil.WithUser("bob", "bob@example.com"), testutil.WithTxType(domain.TxWithdrawal)),
	)

	view := stripANSI(d.View())
	assert.Contains(t, view, "[Pending]")
	assert.Contains(t, view, "alice")
	assert.NotContains(t, view, "bob")

	d.PressKey('t')
	view = stripANSI(d.View())
	assert.Contains(t, view, "Withdrawals")
	assert.Contains(t, view, "bob")
	assert.NotContains(t, view, "alice")
}

func TestReviewModel_ApproveAfterConfirm(t *testing.T) {
	d, backend, bus := newReviewFixture(t,
		testutil.NewTestTransaction(500, testutil.WithUser("alice", "alice@example.com")),
	)
	var published []events.Event
	t.Cleanup(bus.Subscribe(func(e events.Event) { published = append(published, e) }))

	d.PressKey('a')
	assert.Contains(t, stripANSI(d.View()), "Approve Plan Activation of $500.00 by alice?")
	assert.Empty(t, backend.updates, "nothing is sent before y")

	d.PressKey('y')

	require.Equal(t, []domain.TransactionStatus{domain.TxCompleted}, backend.updates)
	require.Len(t, published, 1)
	view := stripANSI(d.View())
	assert.Contains(t, view, "Plan Activation of $500.00 by alice approved.")
	assert.Contains(t, view, "No transactions match this filter.")
}

func TestReviewModel_DeclineConfirmSendsNothing(t *testing.T) {
	d, backend, _ := newReviewFixture(t,
		testutil.NewTestTransaction(500, testutil.WithUser("alice", "alice@example.com")),
	)

	d.PressKey('x')
	d.PressKey('n')

	assert.Empty(t, backend.updates)
	assert.Contains(t, stripANSI(d.View()), "alice")
}

func TestReviewModel_DecidedRowsOfferNoActions(t *testing.T) {
	d, backend, _ := newReviewFixture(t,
		testutil.NewTestTransaction(500, testutil.WithUser("alice", "alice@example.com"), testutil.WithTxStatus(domain.TxCompleted)),
	)

	d.PressTab()
	assert.Contains(t, stripANSI(d.View()), "[Approved]")

	d.PressKey('x')
	d.PressKey('y')

	assert.Empty(t, backend.updates)
	assert.NotContains(t, stripANSI(d.View()), "Reject Plan Activation")
}

func TestReviewModel_Quit(t *testing.T) {
	d, _, _ := newReviewFixture(t)

	assert.Contains(t, stripANSI(d.View()), "No transactions match this filter.")
	d.PressKey('q')
	assert.True(t, d.Quitting)
}
