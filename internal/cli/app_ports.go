package cli

import (
	"context"
	"fmt"

	"github.com/gnfinvest/gnf/internal/domain"
	"github.com/gnfinvest/gnf/internal/purchase"
)

// Backend is the part of the REST client that commands call directly, for
// operations that have no local state to keep.
type Backend interface {
	purchase.Backend
	ListActivations(ctx context.Context, cred domain.Credential) ([]domain.PlanActivation, error)
	RequestWithdrawal(ctx context.Context, cred domain.Credential, req domain.WithdrawalRequest) (domain.Withdrawal, error)
	UpdateProfile(ctx context.Context, cred domain.Credential, upd domain.ProfileUpdate) (domain.User, error)
	ChangePassword(ctx context.Context, cred domain.Credential, change domain.PasswordChange) error
	CreateWallet(ctx context.Context, cred domain.Credential, w domain.Wallet) error
	UpdateWallet(ctx context.Context, cred domain.Credential, id string, w domain.Wallet) error
	DeleteWallet(ctx context.Context, cred domain.Credential, id string) error
}

func (a *App) investor(ctx context.Context) (domain.Credential, error) {
	return a.Accounts.Credential(ctx, domain.RoleInvestor)
}

func (a *App) admin(ctx context.Context) (domain.Credential, error) {
	cred, err := a.Accounts.Credential(ctx, domain.RoleAdmin)
	if err != nil {
		return domain.Credential{}, fmt.Errorf("admin: %w", err)
	}
	return cred, nil
}
