package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/gnfinvest/gnf/internal/db"
	"github.com/gnfinvest/gnf/internal/domain"
)

// SQLiteWalletSnapshotRepo stores the last fetched wallet list in its
// original order. Rows are replaced whole, never patched.
type SQLiteWalletSnapshotRepo struct {
	db db.DBTX
}

func NewSQLiteWalletSnapshotRepo(conn db.DBTX) *SQLiteWalletSnapshotRepo {
	return &SQLiteWalletSnapshotRepo{db: conn}
}

func (r *SQLiteWalletSnapshotRepo) Replace(ctx context.Context, wallets []domain.Wallet, fetchedAt time.Time) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM wallet_snapshots`); err != nil {
		return fmt.Errorf("clearing wallet snapshot: %w", err)
	}
	query := `INSERT INTO wallet_snapshots (position, wallet_id, symbol, name, network, address,
		contract_address, is_active, icon_url) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	for i, w := range wallets {
		_, err := r.db.ExecContext(ctx, query,
			i,
			w.ID,
			w.Symbol,
			w.Name,
			w.Network,
			w.Address,
			w.ContractAddress,
			boolToInt(w.IsActive),
			w.IconURL,
		)
		if err != nil {
			return fmt.Errorf("inserting wallet %s: %w", w.Symbol, err)
		}
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO wallet_snapshot_meta (id, fetched_at) VALUES (1, ?)`,
		fetchedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("stamping wallet snapshot: %w", err)
	}
	return nil
}

// Load returns the saved wallets and when they were fetched. A snapshot that
// was never saved yields ErrNotFound; a saved empty list does not.
func (r *SQLiteWalletSnapshotRepo) Load(ctx context.Context) ([]domain.Wallet, time.Time, error) {
	var stamp string
	err := r.db.QueryRowContext(ctx, `SELECT fetched_at FROM wallet_snapshot_meta WHERE id = 1`).Scan(&stamp)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, time.Time{}, fmt.Errorf("wallet snapshot: %w", ErrNotFound)
	}
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("reading wallet snapshot time: %w", err)
	}
	fetchedAt, err := time.Parse(time.RFC3339Nano, stamp)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("parsing wallet snapshot time: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `SELECT wallet_id, symbol, name, network, address,
		contract_address, is_active, icon_url FROM wallet_snapshots ORDER BY position`)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("listing wallet snapshot: %w", err)
	}
	defer rows.Close()

	wallets := []domain.Wallet{}
	for rows.Next() {
		var w domain.Wallet
		var active int
		if err := rows.Scan(&w.ID, &w.Symbol, &w.Name, &w.Network, &w.Address,
			&w.ContractAddress, &active, &w.IconURL); err != nil {
			return nil, time.Time{}, fmt.Errorf("scanning wallet: %w", err)
		}
		w.IsActive = intToBool(active)
		wallets = append(wallets, w)
	}
	if err := rows.Err(); err != nil {
		return nil, time.Time{}, fmt.Errorf("iterating wallet snapshot: %w", err)
	}
	return wallets, fetchedAt, nil
}
