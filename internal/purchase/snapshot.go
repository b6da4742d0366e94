package purchase

import (
	"errors"
	"time"

	"github.com/gnfinvest/gnf/internal/domain"
	"github.com/shopspring/decimal"
)

// Snapshot is the persistent form of a Session.
type Snapshot struct {
	ID           string
	State        State
	PlanType     string
	Amount       decimal.Decimal
	ActivationID string
	CreatedAt    time.Time
	ExpiresAt    time.Time
	WalletSymbol string
	LastError    string
	UpdatedAt    time.Time
}

// Snapshot captures the session for storage.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := Snapshot{
		ID:           s.id,
		State:        s.state,
		PlanType:     s.plan.Type,
		Amount:       s.amount,
		ActivationID: s.activation.ID,
		CreatedAt:    s.activation.CreatedAt,
		ExpiresAt:    s.activation.ExpiresAt,
		WalletSymbol: s.wallet,
		UpdatedAt:    s.updatedAt,
	}
	if s.lastErr != nil {
		snap.LastError = domain.UserMessage(s.lastErr, s.lastErr.Error())
	}
	return snap
}

// Restore rebuilds a session from a snapshot. A session saved while a call
// was in flight resumes in the state before that call: AwaitingServerAck
// becomes PlanSelected and PaymentSubmitted becomes AwaitingPayment.
func Restore(snap Snapshot, plan domain.Plan, backend Backend, wallets Wallets, opts ...Option) *Session {
	s := New(backend, wallets, append(opts, WithID(snap.ID))...)

	state := snap.State
	switch state {
	case AwaitingServerAck:
		state = PlanSelected
	case PaymentSubmitted:
		state = AwaitingPayment
	}

	s.state = state
	s.plan = plan
	s.amount = snap.Amount
	s.wallet = snap.WalletSymbol
	s.activation = domain.PlanActivation{
		ID:        snap.ActivationID,
		PlanType:  snap.PlanType,
		Amount:    snap.Amount,
		CreatedAt: snap.CreatedAt,
		ExpiresAt: snap.ExpiresAt,
		Status:    activationStatus(state),
	}
	if snap.LastError != "" {
		s.lastErr = errors.New(snap.LastError)
	}
	if !snap.UpdatedAt.IsZero() {
		s.updatedAt = snap.UpdatedAt
	}
	if state.Terminal() {
		close(s.done)
	}
	return s
}

func activationStatus(st State) domain.ActivationStatus {
	switch st {
	case AwaitingPayment, Expired, Cancelled:
		return domain.ActivationAwaitingPayment
	case Confirmed:
		return domain.ActivationPending
	}
	return ""
}
