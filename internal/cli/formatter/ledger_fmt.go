package formatter

import (
	"strings"
	"time"

	"github.com/gnfinvest/gnf/internal/domain"
	"github.com/gnfinvest/gnf/internal/ledger"
)

// FormatUserLedger renders the investor's history: plan activations, then
// withdrawals, each newest first.
func FormatUserLedger(view ledger.UserView, now time.Time) string {
	var b strings.Builder
	b.WriteString(Header("Plan activations"))
	b.WriteString("\n")
	if len(view.Activations) == 0 {
		b.WriteString(Dim("No plan transactions yet.") + "\n")
	} else {
		rows := make([][]string, 0, len(view.Activations))
		for _, tx := range view.Activations {
			rows = append(rows, []string{
				TruncID(tx.ID), planLabel(tx), Money(tx.Amount), TxStatusPill(tx.Status), HumanTimestamp(tx.CreatedAt, now),
			})
		}
		b.WriteString(RenderTable([]string{"ID", "PLAN", "AMOUNT", "STATUS", "DATE"}, rows, 2))
	}

	b.WriteString("\n")
	b.WriteString(FormatWithdrawals(view.Withdrawals, now))
	return b.String()
}

// FormatWithdrawals renders withdrawal rows.
func FormatWithdrawals(txs []domain.Transaction, now time.Time) string {
	var b strings.Builder
	b.WriteString(Header("Withdrawals"))
	b.WriteString("\n")
	if len(txs) == 0 {
		b.WriteString(Dim("No withdrawals yet.") + "\n")
		return b.String()
	}
	rows := make([][]string, 0, len(txs))
	for _, tx := range txs {
		rows = append(rows, []string{
			TruncID(tx.ID),
			Money(tx.Amount),
			strings.ToUpper(tx.CryptoCurrency),
			domain.MaskAddress(tx.WalletAddress),
			TxStatusPill(tx.Status),
			HumanTimestamp(tx.CreatedAt, now),
		})
	}
	b.WriteString(RenderTable([]string{"ID", "AMOUNT", "CURRENCY", "ADDRESS", "STATUS", "DATE"}, rows, 1))
	return b.String()
}

// FormatAdminTransactions renders the review table.
func FormatAdminTransactions(txs []domain.Transaction, now time.Time) string {
	if len(txs) == 0 {
		return Dim("No transactions match this filter.") + "\n"
	}
	rows := make([][]string, 0, len(txs))
	for _, tx := range txs {
		rows = append(rows, AdminRow(tx, now))
	}
	return RenderTable(AdminHeaders, rows, 3)
}

// AdminHeaders are the review table columns.
var AdminHeaders = []string{"ID", "USER", "TYPE", "AMOUNT", "DETAIL", "STATUS", "DATE"}

// AdminRow renders one review row.
func AdminRow(tx domain.Transaction, now time.Time) []string {
	detail := planLabel(tx)
	if tx.Type == domain.TxWithdrawal {
		detail = strings.ToUpper(tx.CryptoCurrency) + " " + domain.MaskAddress(tx.WalletAddress)
	}
	return []string{
		TruncID(tx.ID),
		tx.UserLabel(),
		string(tx.Type),
		Money(tx.Amount),
		detail,
		TxStatusPill(tx.Status),
		HumanTimestamp(tx.CreatedAt, now),
	}
}

func planLabel(tx domain.Transaction) string {
	if tx.PlanType == "" {
		return "-"
	}
	return tx.PlanType
}
