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

// SQLiteCredentialRepo keeps at most one saved login per role.
type SQLiteCredentialRepo struct {
	db db.DBTX
}

func NewSQLiteCredentialRepo(conn db.DBTX) *SQLiteCredentialRepo {
	return &SQLiteCredentialRepo{db: conn}
}

func (r *SQLiteCredentialRepo) Save(ctx context.Context, c StoredCredential) error {
	if c.Credential.Empty() {
		return &domain.ValidationError{Field: "token", Reason: "is required"}
	}
	query := `INSERT INTO credentials (role, token, username, saved_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(role) DO UPDATE SET token = excluded.token, username = excluded.username,
		saved_at = excluded.saved_at`
	_, err := r.db.ExecContext(ctx, query,
		string(c.Credential.Role),
		c.Credential.Token,
		c.Username,
		formatTime(c.SavedAt),
	)
	if err != nil {
		return fmt.Errorf("saving %s credential: %w", c.Credential.Role, err)
	}
	return nil
}

func (r *SQLiteCredentialRepo) Get(ctx context.Context, role domain.Role) (StoredCredential, error) {
	var c StoredCredential
	var savedAt string
	err := r.db.QueryRowContext(ctx,
		`SELECT token, username, saved_at FROM credentials WHERE role = ?`, string(role)).
		Scan(&c.Credential.Token, &c.Username, &savedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return StoredCredential{}, fmt.Errorf("%s credential: %w", role, ErrNotFound)
	}
	if err != nil {
		return StoredCredential{}, fmt.Errorf("reading %s credential: %w", role, err)
	}
	c.Credential.Role = role
	c.SavedAt, _ = time.Parse(time.RFC3339, savedAt)
	return c, nil
}

// Delete is a no-op when nothing is saved for role.
func (r *SQLiteCredentialRepo) Delete(ctx context.Context, role domain.Role) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM credentials WHERE role = ?`, string(role)); err != nil {
		return fmt.Errorf("deleting %s credential: %w", role, err)
	}
	return nil
}
