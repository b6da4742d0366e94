package api

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/gnfinvest/gnf/internal/domain"
)

// ListTransactions returns the caller's ledger rows as sent by the server.
func (c *Client) ListTransactions(ctx context.Context, cred domain.Credential) ([]domain.Transaction, error) {
	var resp []wireTransaction
	if err := c.do(ctx, call{method: http.MethodGet, path: "/transactions", auth: authUser, cred: cred}, &resp); err != nil {
		return nil, err
	}
	return toTransactions(resp), nil
}

// ListWithdrawals returns the caller's withdrawal requests.
func (c *Client) ListWithdrawals(ctx context.Context, cred domain.Credential) ([]domain.Withdrawal, error) {
	var resp []wireWithdrawal
	if err := c.do(ctx, call{method: http.MethodGet, path: "/withdrawals", auth: authUser, cred: cred}, &resp); err != nil {
		return nil, err
	}
	out := make([]domain.Withdrawal, 0, len(resp))
	for _, w := range resp {
		out = append(out, w.toDomain())
	}
	return out, nil
}

// RequestWithdrawal submits a payout request. It starts in Pending.
func (c *Client) RequestWithdrawal(ctx context.Context, cred domain.Credential, req domain.WithdrawalRequest) (domain.Withdrawal, error) {
	if err := req.Validate(); err != nil {
		return domain.Withdrawal{}, err
	}
	body := withdrawalRequest{
		Amount:         number(req.Amount),
		CryptoCurrency: strings.ToLower(req.CryptoCurrency),
		WalletAddress:  strings.TrimSpace(req.WalletAddress),
	}
	var resp wireWithdrawal
	if err := c.do(ctx, call{method: http.MethodPost, path: "/withdrawals", body: body, auth: authUser, cred: cred}, &resp); err != nil {
		return domain.Withdrawal{}, err
	}
	return resp.toDomain(), nil
}

// AdminListTransactions returns every user's transactions matching filter.
// The filter is sent as query parameters and applied again locally, so the
// result is correct even if the server ignores them.
func (c *Client) AdminListTransactions(ctx context.Context, cred domain.Credential, filter domain.TransactionFilter) ([]domain.Transaction, error) {
	q := url.Values{}
	if s := statusTab(filter.Status); s != "" {
		q.Set("status", s)
	}
	if t := typeTab(filter.Type); t != "" {
		q.Set("type", t)
	}
	var resp []wireTransaction
	if err := c.do(ctx, call{method: http.MethodGet, path: "/admin/transactions", query: q, auth: authAdmin, cred: cred}, &resp); err != nil {
		return nil, err
	}
	return filter.Apply(toTransactions(resp)), nil
}

// UpdateTransactionStatus moves a Pending transaction to Completed or Failed.
func (c *Client) UpdateTransactionStatus(ctx context.Context, cred domain.Credential, id string, status domain.TransactionStatus, txType domain.TransactionType) error {
	if id == "" {
		return &domain.ValidationError{Field: "transaction id", Reason: "is required"}
	}
	if status != domain.TxCompleted && status != domain.TxFailed {
		return &domain.ValidationError{Field: "status", Reason: "must be Completed or Failed"}
	}
	body := map[string]string{
		"status":          string(status),
		"transactionType": string(txType),
	}
	return c.do(ctx, call{method: http.MethodPut, path: "/admin/transactions/" + url.PathEscape(id), body: body, auth: authAdmin, cred: cred}, nil)
}

func toTransactions(ws []wireTransaction) []domain.Transaction {
	out := make([]domain.Transaction, 0, len(ws))
	for _, w := range ws {
		out = append(out, w.toDomain())
	}
	return out
}

// statusTab maps a status onto the admin screen's tab names.
func statusTab(s domain.TransactionStatus) string {
	switch s {
	case domain.TxPending:
		return "pending"
	case domain.TxCompleted:
		return "completed"
	case domain.TxFailed:
		return "rejected"
	}
	return ""
}

func typeTab(t domain.TransactionType) string {
	switch t {
	case domain.TxPlanActivation:
		return "plans"
	case domain.TxWithdrawal:
		return "withdrawals"
	}
	return ""
}
