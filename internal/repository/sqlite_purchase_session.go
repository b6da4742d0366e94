package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/gnfinvest/gnf/internal/db"
	"github.com/gnfinvest/gnf/internal/purchase"
	"github.com/shopspring/decimal"
)

// SQLitePurchaseSessionRepo implements PurchaseSessionRepo using a SQLite database.
type SQLitePurchaseSessionRepo struct {
	db db.DBTX
}

func NewSQLitePurchaseSessionRepo(conn db.DBTX) *SQLitePurchaseSessionRepo {
	return &SQLitePurchaseSessionRepo{db: conn}
}

const sessionColumns = `owner, id, state, plan_type, amount, activation_id, wallet_symbol,
	created_at, expires_at, last_error, updated_at`

var openStates = []purchase.State{
	purchase.Idle,
	purchase.PlanSelected,
	purchase.AwaitingServerAck,
	purchase.AwaitingPayment,
	purchase.PaymentSubmitted,
}

func (r *SQLitePurchaseSessionRepo) Create(ctx context.Context, owner string, snap purchase.Snapshot) error {
	query := `INSERT INTO purchase_sessions (` + sessionColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		owner,
		snap.ID,
		snap.State.String(),
		snap.PlanType,
		snap.Amount.String(),
		snap.ActivationID,
		snap.WalletSymbol,
		nullableTime(snap.CreatedAt),
		nullableTime(snap.ExpiresAt),
		snap.LastError,
		formatTime(snap.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting purchase session: %w", err)
	}
	return nil
}

func (r *SQLitePurchaseSessionRepo) Get(ctx context.Context, id string) (SessionRecord, error) {
	query := `SELECT ` + sessionColumns + ` FROM purchase_sessions WHERE id = ?`
	rec, err := scanSession(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return SessionRecord{}, fmt.Errorf("purchase session %s: %w", id, ErrNotFound)
	}
	return rec, err
}

func (r *SQLitePurchaseSessionRepo) Resolve(ctx context.Context, owner, idOrPrefix string) (SessionRecord, error) {
	idOrPrefix = strings.TrimSpace(idOrPrefix)
	if stripWildcards(idOrPrefix) == "" {
		return SessionRecord{}, fmt.Errorf("purchase session: %w", ErrNotFound)
	}
	query := `SELECT ` + sessionColumns + ` FROM purchase_sessions
		WHERE owner = ? AND (id = ? OR id LIKE ? || '%') ORDER BY id = ? DESC LIMIT 2`
	rows, err := r.db.QueryContext(ctx, query, owner, idOrPrefix, stripWildcards(idOrPrefix), idOrPrefix)
	if err != nil {
		return SessionRecord{}, fmt.Errorf("resolving purchase session: %w", err)
	}
	defer rows.Close()

	recs, err := scanSessions(rows)
	if err != nil {
		return SessionRecord{}, err
	}
	switch {
	case len(recs) == 0:
		return SessionRecord{}, fmt.Errorf("purchase session %s: %w", idOrPrefix, ErrNotFound)
	case recs[0].Snapshot.ID == idOrPrefix, len(recs) == 1:
		return recs[0], nil
	}
	return SessionRecord{}, fmt.Errorf("purchase session %s: %w", idOrPrefix, ErrAmbiguous)
}

func (r *SQLitePurchaseSessionRepo) Update(ctx context.Context, snap purchase.Snapshot) error {
	query := `UPDATE purchase_sessions SET state = ?, plan_type = ?, amount = ?, activation_id = ?,
		wallet_symbol = ?, created_at = ?, expires_at = ?, last_error = ?, updated_at = ?
		WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query,
		snap.State.String(),
		snap.PlanType,
		snap.Amount.String(),
		snap.ActivationID,
		snap.WalletSymbol,
		nullableTime(snap.CreatedAt),
		nullableTime(snap.ExpiresAt),
		snap.LastError,
		formatTime(snap.UpdatedAt),
		snap.ID,
	)
	if err != nil {
		return fmt.Errorf("updating purchase session: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating purchase session: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("purchase session %s: %w", snap.ID, ErrNotFound)
	}
	return nil
}

// ListOpen returns the owner's sessions that have not reached a terminal
// state, most recently updated first.
func (r *SQLitePurchaseSessionRepo) ListOpen(ctx context.Context, owner string) ([]SessionRecord, error) {
	placeholders := make([]string, len(openStates))
	args := []any{owner}
	for i, st := range openStates {
		placeholders[i] = "?"
		args = append(args, st.String())
	}
	query := `SELECT ` + sessionColumns + ` FROM purchase_sessions
		WHERE owner = ? AND state IN (` + strings.Join(placeholders, ",") + `)
		ORDER BY updated_at DESC, id`
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing open purchase sessions: %w", err)
	}
	defer rows.Close()
	return scanSessions(rows)
}

func (r *SQLitePurchaseSessionRepo) List(ctx context.Context, owner string) ([]SessionRecord, error) {
	query := `SELECT ` + sessionColumns + ` FROM purchase_sessions
		WHERE owner = ? ORDER BY updated_at DESC, id`
	rows, err := r.db.QueryContext(ctx, query, owner)
	if err != nil {
		return nil, fmt.Errorf("listing purchase sessions: %w", err)
	}
	defer rows.Close()
	return scanSessions(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (SessionRecord, error) {
	var (
		rec                   SessionRecord
		state, amount, update string
		createdAt, expiresAt  sql.NullString
	)
	snap := &rec.Snapshot
	err := row.Scan(
		&rec.Owner,
		&snap.ID,
		&state,
		&snap.PlanType,
		&amount,
		&snap.ActivationID,
		&snap.WalletSymbol,
		&createdAt,
		&expiresAt,
		&snap.LastError,
		&update,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return SessionRecord{}, err
		}
		return SessionRecord{}, fmt.Errorf("scanning purchase session: %w", err)
	}

	st, ok := purchase.ParseState(state)
	if !ok {
		return SessionRecord{}, fmt.Errorf("purchase session %s: unknown state %q", snap.ID, state)
	}
	snap.State = st
	if snap.Amount, err = decimal.NewFromString(amount); err != nil {
		return SessionRecord{}, fmt.Errorf("purchase session %s: parsing amount: %w", snap.ID, err)
	}
	snap.CreatedAt = parseNullableTime(createdAt)
	snap.ExpiresAt = parseNullableTime(expiresAt)
	snap.UpdatedAt = parseNullableTime(sql.NullString{String: update, Valid: true})
	return rec, nil
}

func scanSessions(rows *sql.Rows) ([]SessionRecord, error) {
	var out []SessionRecord
	for rows.Next() {
		rec, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating purchase sessions: %w", err)
	}
	return out, nil
}

// stripWildcards keeps a user-typed prefix from acting as a LIKE pattern.
func stripWildcards(s string) string {
	return strings.NewReplacer("%", "", "_", "").Replace(s)
}
