package service

import (
	"context"
	"time"

	"github.com/gnfinvest/gnf/internal/db"
	"github.com/gnfinvest/gnf/internal/domain"
	"github.com/gnfinvest/gnf/internal/repository"
)

// WalletStore persists the wallet directory's snapshot so separate gnf
// invocations share one TTL window. Each save replaces the stored list in a
// single transaction.
type WalletStore struct {
	uow db.UnitOfWork
}

func NewWalletStore(uow db.UnitOfWork) *WalletStore {
	return &WalletStore{uow: uow}
}

func (s *WalletStore) SaveWallets(ctx context.Context, wallets []domain.Wallet, fetchedAt time.Time) error {
	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		return repository.NewSQLiteWalletSnapshotRepo(tx).Replace(ctx, wallets, fetchedAt)
	})
}

func (s *WalletStore) LoadWallets(ctx context.Context) ([]domain.Wallet, time.Time, error) {
	var (
		wallets   []domain.Wallet
		fetchedAt time.Time
	)
	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		var err error
		wallets, fetchedAt, err = repository.NewSQLiteWalletSnapshotRepo(tx).Load(ctx)
		return err
	})
	return wallets, fetchedAt, err
}
