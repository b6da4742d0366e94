package cli

import (
	"fmt"
	"strings"

	"github.com/gnfinvest/gnf/internal/domain"
)

// resolveTransaction finds the row whose id is ref or starts with ref.
// Shortened ids shown in tables are prefixes, so both forms are accepted.
func resolveTransaction(txs []domain.Transaction, ref string) (domain.Transaction, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return domain.Transaction{}, &domain.ValidationError{Field: "transaction id", Reason: "is required"}
	}
	var matches []domain.Transaction
	for _, tx := range txs {
		if tx.ID == ref {
			return tx, nil
		}
		if strings.HasPrefix(tx.ID, ref) {
			matches = append(matches, tx)
		}
	}
	switch len(matches) {
	case 0:
		return domain.Transaction{}, fmt.Errorf("transaction %s: %w", ref, domain.ErrNotFound)
	case 1:
		return matches[0], nil
	}
	return domain.Transaction{}, &domain.ValidationError{
		Field:  "transaction id",
		Reason: fmt.Sprintf("%q matches %d transactions; use more characters", ref, len(matches)),
	}
}

// resolveWallet finds a wallet by id, id prefix or symbol.
func resolveWallet(ws []domain.Wallet, ref string) (domain.Wallet, error) {
	ref = strings.TrimSpace(ref)
	sym := domain.NormalizeSymbol(ref)
	var matches []domain.Wallet
	for _, w := range ws {
		if w.ID == ref {
			return w, nil
		}
		if (ref != "" && strings.HasPrefix(w.ID, ref)) || w.Symbol == sym {
			matches = append(matches, w)
		}
	}
	switch len(matches) {
	case 0:
		return domain.Wallet{}, fmt.Errorf("wallet %s: %w", ref, domain.ErrNotFound)
	case 1:
		return matches[0], nil
	}
	return domain.Wallet{}, &domain.ValidationError{
		Field:  "wallet",
		Reason: fmt.Sprintf("%q matches %d wallets; use the wallet id", ref, len(matches)),
	}
}
