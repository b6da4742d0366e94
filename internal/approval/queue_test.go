package approval

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gnfinvest/gnf/internal/domain"
	"github.com/gnfinvest/gnf/internal/events"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var admin = domain.Credential{Token: "adm", Role: domain.RoleAdmin}

// fakeServer keeps authoritative rows and enforces the Pending precondition.
type fakeServer struct {
	mu       sync.Mutex
	rows     []domain.Transaction
	gate     chan struct{}
	failNext error
	updates  atomic.Int32
	lists    atomic.Int32
}

func (f *fakeServer) AdminListTransactions(_ context.Context, _ domain.Credential, filter domain.TransactionFilter) ([]domain.Transaction, error) {
	f.lists.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()
	return filter.Apply(append([]domain.Transaction(nil), f.rows...)), nil
}

func (f *fakeServer) UpdateTransactionStatus(_ context.Context, _ domain.Credential, id string, status domain.TransactionStatus, _ domain.TransactionType) error {
	f.updates.Add(1)
	if f.gate != nil {
		<-f.gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failNext != nil {
		err := f.failNext
		f.failNext = nil
		return err
	}
	for i := range f.rows {
		if f.rows[i].ID != id {
			continue
		}
		if f.rows[i].Status != domain.TxPending {
			return &domain.ServerRejection{Status: 400, Message: "Transaction already processed"}
		}
		f.rows[i].Status = status
		return nil
	}
	return &domain.ServerRejection{Status: 404, Message: "Transaction not found"}
}

func newServer() *fakeServer {
	base := time.Date(2025, 5, 10, 9, 0, 0, 0, time.UTC)
	return &fakeServer{rows: []domain.Transaction{
		{ID: "t1", Type: domain.TxPlanActivation, Status: domain.TxPending, Amount: decimal.NewFromInt(500), PlanType: "Crypto", CreatedAt: base},
		{ID: "t2", Type: domain.TxWithdrawal, Status: domain.TxPending, Amount: decimal.NewFromInt(50), CreatedAt: base.Add(time.Hour)},
		{ID: "t3", Type: domain.TxPlanActivation, Status: domain.TxPending, Amount: decimal.NewFromInt(1000), PlanType: "Bonds", CreatedAt: base.Add(2 * time.Hour)},
		{ID: "t4", Type: domain.TxPlanActivation, Status: domain.TxCompleted, Amount: decimal.NewFromInt(3000), CreatedAt: base.Add(3 * time.Hour)},
	}}
}

var (
	pendingPlans   = domain.TransactionFilter{Status: domain.TxPending, Type: domain.TxPlanActivation}
	completedPlans = domain.TransactionFilter{Status: domain.TxCompleted, Type: domain.TxPlanActivation}
	failedPlans    = domain.TransactionFilter{Status: domain.TxFailed, Type: domain.TxPlanActivation}
)

func ids(txs []domain.Transaction) []string {
	out := make([]string, len(txs))
	for i, tx := range txs {
		out[i] = tx.ID
	}
	return out
}

func TestQueue_ListFiltersAndOrders(t *testing.T) {
	q := NewQueue(newServer(), nil)

	txs, err := q.List(context.Background(), admin, pendingPlans)
	require.NoError(t, err)
	assert.Equal(t, []string{"t3", "t1"}, ids(txs))

	txs, err = q.List(context.Background(), admin, domain.TransactionFilter{Type: domain.TxWithdrawal})
	require.NoError(t, err)
	assert.Equal(t, []string{"t2"}, ids(txs))
}

func TestQueue_ApproveThenListMovesRow(t *testing.T) {
	srv := newServer()
	q := NewQueue(srv, nil)

	_, err := q.List(context.Background(), admin, pendingPlans)
	require.NoError(t, err)
	require.NoError(t, q.Approve(context.Background(), admin, "t1"))

	pending, err := q.List(context.Background(), admin, pendingPlans)
	require.NoError(t, err)
	assert.NotContains(t, ids(pending), "t1")

	completed, err := q.List(context.Background(), admin, completedPlans)
	require.NoError(t, err)
	assert.Contains(t, ids(completed), "t1")
}

func TestQueue_RejectMovesRowToFailed(t *testing.T) {
	q := NewQueue(newServer(), nil)
	_, err := q.List(context.Background(), admin, pendingPlans)
	require.NoError(t, err)

	require.NoError(t, q.Reject(context.Background(), admin, "t3"))

	failed, err := q.List(context.Background(), admin, failedPlans)
	require.NoError(t, err)
	assert.Equal(t, []string{"t3"}, ids(failed))
}

func TestQueue_ApproveThenRejectFails(t *testing.T) {
	srv := newServer()
	q := NewQueue(srv, nil)
	_, err := q.List(context.Background(), admin, pendingPlans)
	require.NoError(t, err)

	require.NoError(t, q.Approve(context.Background(), admin, "t1"))
	err = q.Reject(context.Background(), admin, "t1")

	assert.ErrorIs(t, err, domain.ErrAlreadyDecided)
	assert.Equal(t, int32(1), srv.updates.Load())
}

func TestQueue_DecidedOnServerFromFetch(t *testing.T) {
	srv := newServer()
	q := NewQueue(srv, nil)
	_, err := q.List(context.Background(), admin, domain.TransactionFilter{})
	require.NoError(t, err)

	err = q.Approve(context.Background(), admin, "t4")
	assert.ErrorIs(t, err, domain.ErrAlreadyDecided)
	assert.Equal(t, int32(0), srv.updates.Load())
}

func TestQueue_UnknownRowFetchesFirst(t *testing.T) {
	srv := newServer()
	q := NewQueue(srv, nil)

	require.NoError(t, q.Approve(context.Background(), admin, "t2"))
	assert.Equal(t, int32(1), srv.lists.Load())

	err := q.Approve(context.Background(), admin, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestQueue_InFlightLock(t *testing.T) {
	srv := newServer()
	srv.gate = make(chan struct{})
	q := NewQueue(srv, nil)
	_, err := q.List(context.Background(), admin, pendingPlans)
	require.NoError(t, err)

	first := make(chan error, 1)
	go func() { first <- q.Approve(context.Background(), admin, "t1") }()
	require.Eventually(t, func() bool { return q.InFlight("t1") }, time.Second, time.Millisecond)

	tx := domain.Transaction{ID: "t1", Status: domain.TxPending}
	assert.Empty(t, q.Actions(tx))

	assert.ErrorIs(t, q.Reject(context.Background(), admin, "t1"), domain.ErrBusy)
	assert.ErrorIs(t, q.Approve(context.Background(), admin, "t1"), domain.ErrBusy)

	// Other rows are unaffected.
	assert.Equal(t, []Action{Approve, Reject}, q.Actions(domain.Transaction{ID: "t3", Status: domain.TxPending}))

	close(srv.gate)
	require.NoError(t, <-first)
	assert.Equal(t, int32(1), srv.updates.Load())
	assert.Empty(t, q.Actions(tx))
}

func TestQueue_FailureLeavesRowPending(t *testing.T) {
	srv := newServer()
	srv.failNext = &domain.NetworkError{Op: "PUT /admin/transactions/t1", Err: errors.New("timeout")}
	q := NewQueue(srv, nil)
	_, err := q.List(context.Background(), admin, pendingPlans)
	require.NoError(t, err)

	err = q.Approve(context.Background(), admin, "t1")
	assert.ErrorIs(t, err, domain.ErrNetwork)
	assert.False(t, q.InFlight("t1"))
	assert.Equal(t, []Action{Approve, Reject}, q.Actions(domain.Transaction{ID: "t1", Status: domain.TxPending}))

	require.NoError(t, q.Approve(context.Background(), admin, "t1"))
}

func TestQueue_ActionsHiddenOnceNotPending(t *testing.T) {
	q := NewQueue(newServer(), nil)
	assert.Nil(t, q.Actions(domain.Transaction{ID: "t4", Status: domain.TxCompleted}))
	assert.Nil(t, q.Actions(domain.Transaction{ID: "t5", Status: domain.TxFailed}))
}

func TestQueue_PublishesDecision(t *testing.T) {
	bus := events.NewBus()
	var got []events.Event
	bus.Subscribe(func(e events.Event) { got = append(got, e) }, events.TransactionDecided)

	q := NewQueue(newServer(), bus)
	_, err := q.List(context.Background(), admin, pendingPlans)
	require.NoError(t, err)
	require.NoError(t, q.Reject(context.Background(), admin, "t1"))

	require.Len(t, got, 1)
	assert.Equal(t, "t1", got[0].TransactionID)
	assert.Equal(t, domain.TxFailed, got[0].Status)
	assert.Equal(t, domain.TxPlanActivation, got[0].Type)
}

func TestQueue_ConcurrentApproveRejectOneWins(t *testing.T) {
	srv := newServer()
	q := NewQueue(srv, nil)
	_, err := q.List(context.Background(), admin, pendingPlans)
	require.NoError(t, err)

	var wg sync.WaitGroup
	var ok atomic.Int32
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			decide := q.Approve
			if i%2 == 1 {
				decide = q.Reject
			}
			if decide(context.Background(), admin, "t1") == nil {
				ok.Add(1)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), ok.Load())
	assert.Equal(t, int32(1), srv.updates.Load())
}
