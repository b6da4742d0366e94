package repository

import (
	"context"
	"time"

	"github.com/gnfinvest/gnf/internal/domain"
	"github.com/gnfinvest/gnf/internal/purchase"
)

// SessionRecord is a stored purchase session and the investor it belongs to.
type SessionRecord struct {
	Owner    string
	Snapshot purchase.Snapshot
}

type PurchaseSessionRepo interface {
	Create(ctx context.Context, owner string, snap purchase.Snapshot) error
	Get(ctx context.Context, id string) (SessionRecord, error)
	// Resolve accepts a full id or a unique prefix of one.
	Resolve(ctx context.Context, owner, idOrPrefix string) (SessionRecord, error)
	Update(ctx context.Context, snap purchase.Snapshot) error
	ListOpen(ctx context.Context, owner string) ([]SessionRecord, error)
	List(ctx context.Context, owner string) ([]SessionRecord, error)
}

// WalletSnapshotRepo replaces and reads the cached wallet list. Callers wrap
// Replace in a unit of work so readers never see a half-written list.
type WalletSnapshotRepo interface {
	Replace(ctx context.Context, wallets []domain.Wallet, fetchedAt time.Time) error
	Load(ctx context.Context) ([]domain.Wallet, time.Time, error)
}

// StoredCredential is a saved login.
type StoredCredential struct {
	Credential domain.Credential
	Username   string
	SavedAt    time.Time
}

type CredentialRepo interface {
	Save(ctx context.Context, c StoredCredential) error
	Get(ctx context.Context, role domain.Role) (StoredCredential, error)
	Delete(ctx context.Context, role domain.Role) error
}
