package testutil

import (
	"time"

	"github.com/gnfinvest/gnf/internal/domain"
	"github.com/gnfinvest/gnf/internal/purchase"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Epoch is the fixed instant fixtures are stamped with.
var Epoch = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

// Plan options
type PlanOption func(*domain.Plan)

func WithMinAmount(v int64) PlanOption {
	return func(p *domain.Plan) {
		p.MinAmount = decimal.NewFromInt(v)
	}
}

func WithROI(pct string) PlanOption {
	return func(p *domain.Plan) {
		p.ROIPercent = decimal.RequireFromString(pct)
	}
}

func NewTestPlan(planType string, opts ...PlanOption) domain.Plan {
	p := domain.Plan{
		Type:             planType,
		MinAmount:        decimal.NewFromInt(500),
		ROIPercent:       decimal.NewFromInt(8),
		WithdrawalPeriod: domain.NewDaysPeriod(10),
		RiskLevel:        domain.RiskMedium,
		Description:      planType + " test plan",
	}
	for _, opt := range opts {
		opt(&p)
	}
	return p
}

// Wallet options
type WalletOption func(*domain.Wallet)

func WithInactive() WalletOption {
	return func(w *domain.Wallet) {
		w.IsActive = false
	}
}

func WithNetwork(n string) WalletOption {
	return func(w *domain.Wallet) {
		w.Network = n
	}
}

func NewTestWallet(symbol string, opts ...WalletOption) domain.Wallet {
	w := domain.Wallet{
		ID:       uuid.New().String(),
		Symbol:   symbol,
		Name:     symbol + " wallet",
		Network:  "mainnet",
		Address:  "addr-" + symbol + "-0000000000",
		IsActive: true,
	}
	for _, opt := range opts {
		opt(&w)
	}
	return w
}

// Transaction options
type TransactionOption func(*domain.Transaction)

func WithTransactionID(id string) TransactionOption {
	return func(t *domain.Transaction) {
		t.ID = id
	}
}

func WithTxStatus(s domain.TransactionStatus) TransactionOption {
	return func(t *domain.Transaction) {
		t.Status = s
	}
}

func WithTxType(tt domain.TransactionType) TransactionOption {
	return func(t *domain.Transaction) {
		t.Type = tt
	}
}

func WithCreatedAt(at time.Time) TransactionOption {
	return func(t *domain.Transaction) {
		t.CreatedAt = at
	}
}

func WithUser(name, email string) TransactionOption {
	return func(t *domain.Transaction) {
		t.UserName = name
		t.UserEmail = email
	}
}

func NewTestTransaction(amount int64, opts ...TransactionOption) domain.Transaction {
	t := domain.Transaction{
		ID:        uuid.New().String(),
		Type:      domain.TxPlanActivation,
		Status:    domain.TxPending,
		Amount:    decimal.NewFromInt(amount),
		PlanType:  "Crypto",
		CreatedAt: Epoch,
	}
	for _, opt := range opts {
		opt(&t)
	}
	return t
}

// Snapshot options
type SnapshotOption func(*purchase.Snapshot)

func WithState(s purchase.State) SnapshotOption {
	return func(snap *purchase.Snapshot) {
		snap.State = s
	}
}

func WithActivation(id string, createdAt time.Time, window time.Duration) SnapshotOption {
	return func(snap *purchase.Snapshot) {
		snap.ActivationID = id
		snap.CreatedAt = createdAt
		snap.ExpiresAt = createdAt.Add(window)
	}
}

func WithWalletSymbol(sym string) SnapshotOption {
	return func(snap *purchase.Snapshot) {
		snap.WalletSymbol = sym
	}
}

func WithLastError(msg string) SnapshotOption {
	return func(snap *purchase.Snapshot) {
		snap.LastError = msg
	}
}

func WithUpdatedAt(at time.Time) SnapshotOption {
	return func(snap *purchase.Snapshot) {
		snap.UpdatedAt = at
	}
}

func NewTestSnapshot(planType string, amount int64, opts ...SnapshotOption) purchase.Snapshot {
	snap := purchase.Snapshot{
		ID:        uuid.New().String(),
		State:     purchase.PlanSelected,
		PlanType:  planType,
		Amount:    decimal.NewFromInt(amount),
		UpdatedAt: Epoch,
	}
	for _, opt := range opts {
		opt(&snap)
	}
	return snap
}
