package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/gnfinvest/gnf/internal/purchase"
)

// FormatSnapshot renders one stored purchase.
func FormatSnapshot(s purchase.Snapshot, now time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Purchase  %s\n", Bold(s.ID))
	fmt.Fprintf(&b, "Plan      %s\n", s.PlanType)
	fmt.Fprintf(&b, "Amount    %s\n", Money(s.Amount))
	fmt.Fprintf(&b, "State     %s\n", StatePill(s.State))
	if s.ActivationID != "" {
		fmt.Fprintf(&b, "Activation %s\n", Dim(s.ActivationID))
	}
	if s.WalletSymbol != "" {
		fmt.Fprintf(&b, "Wallet    %s\n", s.WalletSymbol)
	}
	if s.State == purchase.AwaitingPayment && !s.ExpiresAt.IsZero() {
		fmt.Fprintf(&b, "Time left %s\n", RemainingStyled(s.ExpiresAt.Sub(now)))
	}
	if s.LastError != "" {
		fmt.Fprintf(&b, "%s\n", ErrorLine(s.LastError))
	}
	return b.String()
}

// FormatSnapshots renders stored purchases as a table.
func FormatSnapshots(snaps []purchase.Snapshot, now time.Time) string {
	if len(snaps) == 0 {
		return Dim("No purchases.") + "\n"
	}
	rows := make([][]string, 0, len(snaps))
	for _, s := range snaps {
		left := "-"
		if s.State == purchase.AwaitingPayment && !s.ExpiresAt.IsZero() {
			left = RemainingStyled(s.ExpiresAt.Sub(now))
		}
		wallet := s.WalletSymbol
		if wallet == "" {
			wallet = "-"
		}
		rows = append(rows, []string{TruncID(s.ID), s.PlanType, Money(s.Amount), wallet, StatePill(s.State), left})
	}
	return RenderTable([]string{"ID", "PLAN", "AMOUNT", "WALLET", "STATE", "TIME LEFT"}, rows, 2)
}
