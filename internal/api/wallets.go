package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/gnfinvest/gnf/internal/domain"
)

// ListWallets returns every configured payment wallet, active or not.
func (c *Client) ListWallets(ctx context.Context, cred domain.Credential) ([]domain.Wallet, error) {
	var resp []wireWallet
	if err := c.do(ctx, call{method: http.MethodGet, path: "/wallets", auth: authUser, cred: cred}, &resp); err != nil {
		return nil, err
	}
	out := make([]domain.Wallet, 0, len(resp))
	for _, w := range resp {
		out = append(out, w.toDomain())
	}
	return out, nil
}

// CreateWallet adds a payment wallet. Admin only.
func (c *Client) CreateWallet(ctx context.Context, cred domain.Credential, w domain.Wallet) error {
	if err := w.Validate(); err != nil {
		return err
	}
	return c.do(ctx, call{method: http.MethodPost, path: "/wallets", body: walletToWire(w), auth: authAdmin, cred: cred}, nil)
}

// UpdateWallet replaces the wallet with the given id. Admin only.
func (c *Client) UpdateWallet(ctx context.Context, cred domain.Credential, id string, w domain.Wallet) error {
	if id == "" {
		return &domain.ValidationError{Field: "wallet id", Reason: "is required"}
	}
	if err := w.Validate(); err != nil {
		return err
	}
	return c.do(ctx, call{method: http.MethodPut, path: "/wallets/" + url.PathEscape(id), body: walletToWire(w), auth: authAdmin, cred: cred}, nil)
}

// DeleteWallet removes the wallet with the given id. Admin only.
func (c *Client) DeleteWallet(ctx context.Context, cred domain.Credential, id string) error {
	if id == "" {
		return &domain.ValidationError{Field: "wallet id", Reason: "is required"}
	}
	return c.do(ctx, call{method: http.MethodDelete, path: "/wallets/" + url.PathEscape(id), auth: authAdmin, cred: cred}, nil)
}
