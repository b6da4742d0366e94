package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gnfinvest/gnf/internal/api"
	"github.com/gnfinvest/gnf/internal/db"
	"github.com/gnfinvest/gnf/internal/domain"
	"github.com/gnfinvest/gnf/internal/events"
	"github.com/gnfinvest/gnf/internal/purchase"
	"github.com/gnfinvest/gnf/internal/repository"
	"github.com/shopspring/decimal"
)

// DefaultInFlightTTL is how long a stored in-flight state blocks other
// processes. Older in-flight rows are treated as abandoned.
const DefaultInFlightTTL = time.Minute

// PlanLookup resolves a plan type to its template.
type PlanLookup interface {
	Get(planType string) (domain.Plan, error)
}

// Publisher receives a refresh trigger after a confirmed payment.
type Publisher interface {
	Publish(events.Event)
}

type PurchaseOption func(*purchaseService)

func WithPaymentWindow(d time.Duration) PurchaseOption {
	return func(s *purchaseService) { s.window = d }
}

func WithPurchaseClock(now func() time.Time) PurchaseOption {
	return func(s *purchaseService) { s.now = now }
}

func WithInFlightTTL(d time.Duration) PurchaseOption {
	return func(s *purchaseService) {
		if d > 0 {
			s.inFlightTTL = d
		}
	}
}

func WithPurchaseObserver(obs UseCaseObserver) PurchaseOption {
	return func(s *purchaseService) {
		if obs != nil {
			s.observer = obs
		}
	}
}

type purchaseService struct {
	sessions    repository.PurchaseSessionRepo
	uow         db.UnitOfWork
	plans       PlanLookup
	backend     purchase.Backend
	wallets     purchase.Wallets
	bus         Publisher
	window      time.Duration
	inFlightTTL time.Duration
	now         func() time.Time
	observer    UseCaseObserver
}

// NewPurchaseService wires the purchase state machine to local storage. bus
// may be nil.
func NewPurchaseService(
	sessions repository.PurchaseSessionRepo,
	uow db.UnitOfWork,
	plans PlanLookup,
	backend purchase.Backend,
	wallets purchase.Wallets,
	bus Publisher,
	opts ...PurchaseOption,
) PurchaseService {
	s := &purchaseService{
		sessions:    sessions,
		uow:         uow,
		plans:       plans,
		backend:     backend,
		wallets:     wallets,
		bus:         bus,
		window:      purchase.DefaultWindow,
		inFlightTTL: DefaultInFlightTTL,
		now:         time.Now,
		observer:    NoopUseCaseObserver{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ownerOf keys stored sessions by the token subject so two investors sharing
// a machine do not see each other's purchases.
func ownerOf(cred domain.Credential) string {
	if claims, err := api.InspectToken(cred.Token); err == nil && claims.UserID != "" {
		return claims.UserID
	}
	return "local"
}

func (s *purchaseService) observe(ctx context.Context, name string, startedAt time.Time, err error, fields map[string]any) {
	s.observer.ObserveUseCase(ctx, UseCaseEvent{
		Name:      name,
		StartedAt: startedAt,
		Duration:  s.now().Sub(startedAt),
		Success:   err == nil,
		Err:       err,
		Fields:    fields,
	})
}

func (s *purchaseService) sessionOpts() []purchase.Option {
	return []purchase.Option{purchase.WithWindow(s.window), purchase.WithClock(s.now)}
}

func (s *purchaseService) Start(ctx context.Context, cred domain.Credential, planType string, amount decimal.Decimal) (snap purchase.Snapshot, err error) {
	startedAt := s.now()
	fields := map[string]any{"plan_type": planType, "amount": amount.String()}
	defer func() {
		fields["state"] = snap.State.String()
		s.observe(ctx, "purchase-start", startedAt, err, fields)
	}()

	if err = api.CheckCredential(cred, false, s.now()); err != nil {
		return purchase.Snapshot{}, err
	}
	plan, err := s.plans.Get(planType)
	if err != nil {
		return purchase.Snapshot{}, err
	}
	sess := purchase.New(s.backend, s.wallets, s.sessionOpts()...)
	if err = sess.SelectPlan(plan, amount); err != nil {
		return purchase.Snapshot{}, err
	}
	fields["session_id"] = sess.ID()

	// The row is created already claimed so another process sees the
	// activation request as in flight.
	claim := sess.Snapshot()
	claim.State = purchase.AwaitingServerAck
	if err = s.sessions.Create(ctx, ownerOf(cred), claim); err != nil {
		return purchase.Snapshot{}, err
	}

	opErr := sess.ConfirmSelection(ctx, cred)
	snap, err = s.save(ctx, claim, sess.Snapshot())
	if err != nil {
		return snap, err
	}
	return snap, opErr
}

func (s *purchaseService) SelectWallet(ctx context.Context, cred domain.Credential, id, symbol string) (purchase.Snapshot, error) {
	return s.step(ctx, "purchase-select-wallet", cred, id, stepGuarded, func(ctx context.Context, sess *purchase.Session) error {
		return sess.SelectWallet(ctx, cred, symbol)
	})
}

func (s *purchaseService) Pay(ctx context.Context, cred domain.Credential, id string) (purchase.Snapshot, error) {
	return s.step(ctx, "purchase-pay", cred, id, stepClaim, func(ctx context.Context, sess *purchase.Session) error {
		return sess.ConfirmPayment(ctx, cred)
	})
}

// Cancel works without a valid credential and while another process has a
// call in flight: the backend is not told and the late outcome is discarded.
func (s *purchaseService) Cancel(ctx context.Context, cred domain.Credential, id string) (purchase.Snapshot, error) {
	return s.step(ctx, "purchase-cancel", cred, id, stepAnyState, func(_ context.Context, sess *purchase.Session) error {
		return sess.Cancel()
	})
}

// Status applies the clock to the stored session, saving it if it expired.
func (s *purchaseService) Status(ctx context.Context, cred domain.Credential, id string) (purchase.Snapshot, error) {
	rec, err := s.sessions.Resolve(ctx, ownerOf(cred), id)
	if err != nil {
		return purchase.Snapshot{}, err
	}
	return s.refresh(ctx, rec)
}

func (s *purchaseService) List(ctx context.Context, cred domain.Credential, openOnly bool) ([]purchase.Snapshot, error) {
	var (
		recs []repository.SessionRecord
		err  error
	)
	if openOnly {
		recs, err = s.sessions.ListOpen(ctx, ownerOf(cred))
	} else {
		recs, err = s.sessions.List(ctx, ownerOf(cred))
	}
	if err != nil {
		return nil, err
	}
	out := make([]purchase.Snapshot, 0, len(recs))
	for _, rec := range recs {
		snap, err := s.refresh(ctx, rec)
		if err != nil {
			return nil, err
		}
		if openOnly && snap.State.Terminal() {
			continue
		}
		out = append(out, snap)
	}
	return out, nil
}

func (s *purchaseService) refresh(ctx context.Context, rec repository.SessionRecord) (purchase.Snapshot, error) {
	if rec.Snapshot.State != purchase.AwaitingPayment {
		return rec.Snapshot, nil
	}
	sess, err := s.restore(rec.Snapshot)
	if err != nil {
		return purchase.Snapshot{}, err
	}
	if sess.Tick(s.now()) != purchase.Expired {
		return rec.Snapshot, nil
	}
	return s.save(ctx, rec.Snapshot, sess.Snapshot())
}

func (s *purchaseService) Track(ctx context.Context, cred domain.Credential, sess *purchase.Session) error {
	base := sess.Snapshot()
	if err := s.sessions.Create(ctx, ownerOf(cred), base); err != nil {
		return err
	}
	var mu sync.Mutex
	sess.OnTransition(func(tr purchase.Transition) {
		mu.Lock()
		defer mu.Unlock()
		startedAt := s.now()
		saved, err := s.save(context.WithoutCancel(ctx), base, sess.Snapshot())
		if err == nil {
			base = saved
		}
		s.observe(ctx, "purchase-track", startedAt, err, map[string]any{
			"session_id": sess.ID(),
			"from":       tr.From.String(),
			"to":         tr.To.String(),
		})
	})
	return nil
}

type stepMode int

const (
	// stepGuarded refuses to run while another process has a call in flight.
	stepGuarded stepMode = iota
	// stepClaim is stepGuarded and also stores PaymentSubmitted before op
	// runs, so a second gnf purchase pay sees domain.ErrBusy.
	stepClaim
	// stepAnyState runs regardless of in-flight calls.
	stepAnyState
)

// step restores a stored session, applies op, and saves the outcome.
func (s *purchaseService) step(
	ctx context.Context,
	name string,
	cred domain.Credential,
	id string,
	mode stepMode,
	op func(context.Context, *purchase.Session) error,
) (snap purchase.Snapshot, err error) {
	startedAt := s.now()
	fields := map[string]any{"session_id": id}
	defer func() {
		fields["state"] = snap.State.String()
		s.observe(ctx, name, startedAt, err, fields)
	}()

	owner := ownerOf(cred)
	var base purchase.Snapshot
	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		repo := repository.NewSQLitePurchaseSessionRepo(tx)
		rec, err := repo.Resolve(ctx, owner, id)
		if err != nil {
			return err
		}
		base = rec.Snapshot
		if mode == stepAnyState {
			return nil
		}
		if base.State.InFlight() && s.now().Sub(base.UpdatedAt) < s.inFlightTTL {
			return fmt.Errorf("purchase %s is %s: %w", base.ID, base.State, domain.ErrBusy)
		}
		if mode != stepClaim {
			return nil
		}
		// A PaymentSubmitted row that got this far is an abandoned claim;
		// it is taken over like an AwaitingPayment one.
		if base.State != purchase.AwaitingPayment && base.State != purchase.PaymentSubmitted {
			return nil
		}
		claim := base
		claim.State = purchase.PaymentSubmitted
		claim.UpdatedAt = s.now()
		if err := repo.Update(ctx, claim); err != nil {
			return err
		}
		base = claim
		return nil
	})
	if err != nil {
		return purchase.Snapshot{}, err
	}
	fields["session_id"] = base.ID

	sess, err := s.restore(base)
	if err != nil {
		return purchase.Snapshot{}, err
	}
	opErr := op(ctx, sess)
	snap, err = s.save(ctx, base, sess.Snapshot())
	if err != nil {
		return snap, err
	}
	return snap, opErr
}

func (s *purchaseService) restore(snap purchase.Snapshot) (*purchase.Session, error) {
	plan, err := s.plans.Get(snap.PlanType)
	if err != nil {
		return nil, fmt.Errorf("restoring purchase %s: %w", snap.ID, err)
	}
	return purchase.Restore(snap, plan, s.backend, s.wallets, s.sessionOpts()...), nil
}

// save writes next unless another process moved the stored row to a
// terminal state since base was read; a late outcome never reopens a
// cancelled or expired purchase. It publishes PaymentConfirmed when next
// is the first confirmed save.
func (s *purchaseService) save(ctx context.Context, base, next purchase.Snapshot) (purchase.Snapshot, error) {
	var stored purchase.Snapshot
	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		repo := repository.NewSQLitePurchaseSessionRepo(tx)
		rec, err := repo.Get(ctx, next.ID)
		if err != nil {
			return err
		}
		stored = rec.Snapshot
		if stored.State.Terminal() && (stored.State != base.State || !stored.UpdatedAt.Equal(base.UpdatedAt)) {
			return purchase.ErrClosed
		}
		if stored.State.Terminal() && stored.State == next.State {
			return nil
		}
		if err := repo.Update(ctx, next); err != nil {
			return err
		}
		stored = next
		return nil
	})
	if errors.Is(err, purchase.ErrClosed) {
		return stored, fmt.Errorf("purchase %s is %s: %w", stored.ID, stored.State, purchase.ErrClosed)
	}
	if err != nil {
		return next, err
	}
	if stored.State == purchase.Confirmed && base.State != purchase.Confirmed && s.bus != nil {
		s.bus.Publish(events.Event{
			Kind:          events.PaymentConfirmed,
			TransactionID: stored.ActivationID,
			Status:        domain.TxPending,
			Type:          domain.TxPlanActivation,
		})
	}
	return stored, nil
}
