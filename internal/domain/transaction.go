package domain

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is the read-only ledger row joining an activation or withdrawal
// with display fields.
type Transaction struct {
	ID       string
	Type     TransactionType
	Status   TransactionStatus
	Amount   decimal.Decimal
	PlanType string

	UserID    string
	UserName  string
	UserEmail string

	// Withdrawal-only fields.
	CryptoCurrency string
	WalletAddress  string

	CreatedAt time.Time
}

// UserLabel prefers the username, then the email, then "-".
func (t Transaction) UserLabel() string {
	switch {
	case t.UserName != "":
		return t.UserName
	case t.UserEmail != "":
		return t.UserEmail
	}
	return "-"
}

// TransactionFilter selects ledger rows. Zero values match everything.
type TransactionFilter struct {
	Status TransactionStatus
	Type   TransactionType
}

func (f TransactionFilter) Match(t Transaction) bool {
	if f.Status != "" && t.Status != f.Status {
		return false
	}
	if f.Type != "" && t.Type != f.Type {
		return false
	}
	return true
}

// Apply returns the matching rows ordered newest first. Rows with equal
// timestamps keep their input order.
func (f TransactionFilter) Apply(txs []Transaction) []Transaction {
	out := make([]Transaction, 0, len(txs))
	for _, t := range txs {
		if f.Match(t) {
			out = append(out, t)
		}
	}
	SortNewestFirst(out)
	return out
}

// SortNewestFirst orders by CreatedAt descending, stable.
func SortNewestFirst(txs []Transaction) {
	sort.SliceStable(txs, func(i, j int) bool {
		return txs[i].CreatedAt.After(txs[j].CreatedAt)
	})
}
