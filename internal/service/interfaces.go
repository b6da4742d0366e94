package service

import (
	"context"

	"github.com/gnfinvest/gnf/internal/domain"
	"github.com/gnfinvest/gnf/internal/purchase"
	"github.com/gnfinvest/gnf/internal/repository"
	"github.com/shopspring/decimal"
)

// PurchaseService drives persisted purchase sessions one step at a time, so
// separate gnf invocations can continue the same purchase.
type PurchaseService interface {
	Start(ctx context.Context, cred domain.Credential, planType string, amount decimal.Decimal) (purchase.Snapshot, error)
	SelectWallet(ctx context.Context, cred domain.Credential, id, symbol string) (purchase.Snapshot, error)
	Pay(ctx context.Context, cred domain.Credential, id string) (purchase.Snapshot, error)
	Cancel(ctx context.Context, cred domain.Credential, id string) (purchase.Snapshot, error)
	Status(ctx context.Context, cred domain.Credential, id string) (purchase.Snapshot, error)
	List(ctx context.Context, cred domain.Credential, openOnly bool) ([]purchase.Snapshot, error)
	// Track persists an in-memory session (the interactive buy flow) and
	// keeps it saved on every transition.
	Track(ctx context.Context, cred domain.Credential, s *purchase.Session) error
}

// AccountService manages saved logins.
type AccountService interface {
	Login(ctx context.Context, req domain.LoginRequest) (repository.StoredCredential, error)
	AdminLogin(ctx context.Context, req domain.LoginRequest) (repository.StoredCredential, error)
	Signup(ctx context.Context, req domain.SignupRequest) (repository.StoredCredential, error)
	Logout(ctx context.Context, role domain.Role) error
	// Credential returns the saved credential for role, or domain.ErrAuth
	// when there is none or it has expired. An expired credential is still
	// returned alongside the error so local state keyed by its owner stays
	// reachable.
	Credential(ctx context.Context, role domain.Role) (domain.Credential, error)
	Whoami(ctx context.Context) (domain.User, error)
}
