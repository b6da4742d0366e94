// Package purchase implements the plan purchase workflow: an investor picks a
// plan, the server opens an activation, the investor pays into an admin wallet
// within a fixed window, and then confirms the payment for admin review.
package purchase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gnfinvest/gnf/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DefaultWindow is the time an investor has to pay after the activation is created.
const DefaultWindow = 30 * time.Minute

// ErrClosed is returned when a backend response arrives after the session
// reached a terminal state. The response is discarded.
var ErrClosed = errors.New("purchase session is closed")

// Backend is the subset of the REST client the session needs.
type Backend interface {
	CreateActivation(ctx context.Context, cred domain.Credential, plan domain.Plan, amount decimal.Decimal) (domain.PlanActivation, error)
	ConfirmPayment(ctx context.Context, cred domain.Credential, activationID string) error
}

// Wallets is the subset of the wallet directory the session needs.
type Wallets interface {
	Ensure(ctx context.Context, cred domain.Credential) error
	Active() []domain.Wallet
	Revalidate(ctx context.Context, cred domain.Credential, symbol string) (domain.Wallet, error)
}

// Session is one investor's attempt to activate a plan. All methods are safe
// for concurrent use; backend calls are made without holding the lock and
// their results are dropped if the session moved on in the meantime.
type Session struct {
	backend Backend
	wallets Wallets
	window  time.Duration
	now     func() time.Time

	mu         sync.Mutex
	id         string
	state      State
	plan       domain.Plan
	amount     decimal.Decimal
	activation domain.PlanActivation
	wallet     string
	lastErr    error
	updatedAt  time.Time

	listeners []func(Transition)
	done      chan struct{}
}

// Option configures a Session.
type Option func(*Session)

// WithWindow sets the payment window. Non-positive values are ignored.
func WithWindow(d time.Duration) Option {
	return func(s *Session) {
		if d > 0 {
			s.window = d
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// WithID sets the local session id instead of generating one.
func WithID(id string) Option {
	return func(s *Session) { s.id = id }
}

// New creates an Idle session.
func New(backend Backend, wallets Wallets, opts ...Option) *Session {
	s := &Session{
		backend: backend,
		wallets: wallets,
		window:  DefaultWindow,
		now:     time.Now,
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.id == "" {
		s.id = uuid.NewString()
	}
	s.updatedAt = s.now()
	return s
}

// OnTransition registers fn to be called after every state change, outside
// the session lock.
func (s *Session) OnTransition(fn func(Transition)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Done is closed when the session reaches a terminal state.
func (s *Session) Done() <-chan struct{} { return s.done }

// setLocked moves to next and returns the transition to publish once the lock
// is released. Callers hold s.mu.
func (s *Session) setLocked(next State, err error) Transition {
	tr := Transition{From: s.state, To: next, Err: err}
	s.state = next
	s.lastErr = err
	s.updatedAt = s.now()
	if next.Terminal() && !tr.From.Terminal() {
		close(s.done)
	}
	return tr
}

func (s *Session) publish(trs ...Transition) {
	s.mu.Lock()
	ls := make([]func(Transition), len(s.listeners))
	copy(ls, s.listeners)
	s.mu.Unlock()
	for _, tr := range trs {
		for _, fn := range ls {
			fn(tr)
		}
	}
}

// SelectPlan captures the investor's intent. It is allowed from Idle and
// from PlanSelected (to change the plan or amount). The amount is checked
// against the plan minimum before anything else happens.
func (s *Session) SelectPlan(plan domain.Plan, amount decimal.Decimal) error {
	if err := plan.ValidateAmount(amount); err != nil {
		return err
	}
	s.mu.Lock()
	if s.state != Idle && s.state != PlanSelected {
		st := s.state
		s.mu.Unlock()
		return fmt.Errorf("select plan in state %s: %w", st, domain.ErrInvalidTransition)
	}
	s.plan = plan
	s.amount = amount
	var trs []Transition
	if s.state == Idle {
		trs = append(trs, s.setLocked(PlanSelected, nil))
	}
	s.mu.Unlock()
	s.publish(trs...)
	return nil
}

// ConfirmSelection asks the server to create the plan activation. On success
// the session waits for payment until now+window. Any failure is terminal.
func (s *Session) ConfirmSelection(ctx context.Context, cred domain.Credential) error {
	s.mu.Lock()
	if s.state != PlanSelected {
		st := s.state
		s.mu.Unlock()
		if st == AwaitingServerAck {
			return domain.ErrBusy
		}
		return fmt.Errorf("confirm selection in state %s: %w", st, domain.ErrInvalidTransition)
	}
	plan, amount := s.plan, s.amount
	tr := s.setLocked(AwaitingServerAck, nil)
	s.mu.Unlock()
	s.publish(tr)

	act, err := s.backend.CreateActivation(ctx, cred, plan, amount)

	s.mu.Lock()
	if s.state != AwaitingServerAck {
		s.mu.Unlock()
		if err != nil {
			return fmt.Errorf("%w: %w", ErrClosed, err)
		}
		return ErrClosed
	}
	if err != nil {
		tr = s.setLocked(Failed, err)
		s.mu.Unlock()
		s.publish(tr)
		return fmt.Errorf("creating plan activation: %w", err)
	}
	now := s.now()
	// The deadline runs on the local clock; the server's createdAt is not
	// comparable with it.
	act.CreatedAt = now
	act.ExpiresAt = now.Add(s.window)
	if act.PlanType == "" {
		act.PlanType = plan.Type
	}
	act.Amount = amount
	act.Status = domain.ActivationAwaitingPayment
	s.activation = act
	tr = s.setLocked(AwaitingPayment, nil)
	s.mu.Unlock()
	s.publish(tr)
	return nil
}

// Tick expires the session once now reaches the payment deadline. It is
// idempotent and never moves a session out of a terminal state.
func (s *Session) Tick(now time.Time) State {
	s.mu.Lock()
	if s.state != AwaitingPayment || now.Before(s.activation.ExpiresAt) {
		st := s.state
		s.mu.Unlock()
		return st
	}
	tr := s.setLocked(Expired, domain.ErrExpiryRace)
	s.mu.Unlock()
	s.publish(tr)
	return Expired
}

// Wallets returns the active payment wallets, fetching them if the
// directory's snapshot is stale.
func (s *Session) Wallets(ctx context.Context, cred domain.Credential) ([]domain.Wallet, error) {
	if err := s.wallets.Ensure(ctx, cred); err != nil {
		return nil, err
	}
	active := s.wallets.Active()
	if len(active) == 0 {
		return nil, domain.ErrNoPaymentOptions
	}
	return active, nil
}

// SelectWallet chooses the wallet the investor will pay into.
func (s *Session) SelectWallet(ctx context.Context, cred domain.Credential, symbol string) error {
	active, err := s.Wallets(ctx, cred)
	if err != nil {
		return err
	}
	sym := domain.NormalizeSymbol(symbol)
	found := false
	for _, w := range active {
		if w.Symbol == sym {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("wallet %s: %w", sym, domain.ErrStaleWallet)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != AwaitingPayment {
		return fmt.Errorf("select wallet in state %s: %w", s.state, domain.ErrInvalidTransition)
	}
	s.wallet = sym
	s.updatedAt = s.now()
	return nil
}

// ConfirmPayment reports the payment to the server. It is single-flight: a
// call made while another is outstanding returns domain.ErrBusy without
// touching the network. The deadline is checked against the clock here, not
// only by Tick. The chosen wallet is re-validated first; if it was
// deactivated the selection is cleared and domain.ErrStaleWallet returned.
// A failed confirmation leaves the session in AwaitingPayment.
func (s *Session) ConfirmPayment(ctx context.Context, cred domain.Credential) error {
	s.mu.Lock()
	switch {
	case s.state == PaymentSubmitted:
		s.mu.Unlock()
		return domain.ErrBusy
	case s.state == Expired:
		s.mu.Unlock()
		return domain.ErrExpiryRace
	case s.state != AwaitingPayment:
		st := s.state
		s.mu.Unlock()
		return fmt.Errorf("confirm payment in state %s: %w", st, domain.ErrInvalidTransition)
	}
	if !s.now().Before(s.activation.ExpiresAt) {
		tr := s.setLocked(Expired, domain.ErrExpiryRace)
		s.mu.Unlock()
		s.publish(tr)
		return domain.ErrExpiryRace
	}
	if s.wallet == "" {
		s.mu.Unlock()
		if _, err := s.Wallets(ctx, cred); err != nil {
			return err
		}
		return &domain.ValidationError{Field: "wallet", Reason: "select a payment wallet first"}
	}
	symbol, activationID := s.wallet, s.activation.ID
	tr := s.setLocked(PaymentSubmitted, nil)
	s.mu.Unlock()
	s.publish(tr)

	_, err := s.wallets.Revalidate(ctx, cred, symbol)
	if err == nil {
		err = s.backend.ConfirmPayment(ctx, cred, activationID)
	}

	s.mu.Lock()
	if s.state != PaymentSubmitted {
		s.mu.Unlock()
		if err != nil {
			return fmt.Errorf("%w: %w", ErrClosed, err)
		}
		return ErrClosed
	}
	if err != nil {
		if errors.Is(err, domain.ErrStaleWallet) {
			s.wallet = ""
		}
		tr = s.setLocked(AwaitingPayment, err)
		s.mu.Unlock()
		s.publish(tr)
		return fmt.Errorf("confirming payment: %w", err)
	}
	s.activation.Status = domain.ActivationPending
	tr = s.setLocked(Confirmed, nil)
	s.mu.Unlock()
	s.publish(tr)
	return nil
}

// Cancel abandons the session locally. The backend is not told; any response
// still in flight is discarded when it arrives.
func (s *Session) Cancel() error {
	s.mu.Lock()
	if s.state.Terminal() {
		st := s.state
		s.mu.Unlock()
		return fmt.Errorf("cancel in state %s: %w", st, domain.ErrInvalidTransition)
	}
	tr := s.setLocked(Cancelled, nil)
	s.mu.Unlock()
	s.publish(tr)
	return nil
}

// ID is the local session id.
func (s *Session) ID() string { return s.id }

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Busy reports whether a backend call is outstanding.
func (s *Session) Busy() bool {
	return s.State().InFlight()
}

// Err returns the error recorded by the last transition, if any.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

func (s *Session) Plan() domain.Plan {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.plan
}

func (s *Session) Amount() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.amount
}

// Activation returns the server activation; zero until ConfirmSelection succeeds.
func (s *Session) Activation() domain.PlanActivation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activation
}

// SelectedWallet returns the chosen wallet symbol, or "".
func (s *Session) SelectedWallet() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.wallet
}

// Remaining returns the time left to pay, clamped at zero. It is zero
// outside AwaitingPayment and PaymentSubmitted.
func (s *Session) Remaining(now time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != AwaitingPayment && s.state != PaymentSubmitted {
		return 0
	}
	d := s.activation.ExpiresAt.Sub(now)
	if d < 0 {
		return 0
	}
	return d
}

// Now returns the session clock's current time.
func (s *Session) Now() time.Time { return s.now() }
