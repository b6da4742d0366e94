package formatter

import (
	"strings"

	"github.com/gnfinvest/gnf/internal/domain"
)

// FormatWallets renders payment wallets. Investors see full addresses so they
// can copy them; the admin table masks them and shows the active flag.
func FormatWallets(ws []domain.Wallet, admin bool) string {
	if len(ws) == 0 {
		if admin {
			return Dim("No wallets configured. Add one with 'gnf admin wallets add'.") + "\n"
		}
		return Dim("No payment options available right now. Please try again later.") + "\n"
	}
	rows := make([][]string, 0, len(ws))
	for _, w := range ws {
		if admin {
			active := StyleGreen.Render("● active")
			if !w.IsActive {
				active = StyleDim.Render("○ inactive")
			}
			rows = append(rows, []string{TruncID(w.ID), Bold(w.Symbol), w.Name, w.Network, w.MaskedAddress(), active})
			continue
		}
		rows = append(rows, []string{Bold(w.Symbol), w.Name, w.Network, w.Address})
	}
	if admin {
		return RenderTable([]string{"ID", "SYMBOL", "NAME", "NETWORK", "ADDRESS", "STATUS"}, rows)
	}
	return RenderTable([]string{"SYMBOL", "NAME", "NETWORK", "ADDRESS"}, rows)
}

// FormatPaymentInstructions tells the investor where to send funds.
func FormatPaymentInstructions(w domain.Wallet, amount string) string {
	var b strings.Builder
	b.WriteString("Send " + Bold(amount) + " worth of " + Bold(w.Symbol))
	if w.Network != "" {
		b.WriteString(" on the " + w.Network + " network")
	}
	b.WriteString(" to:\n\n  " + StyleBlue.Render(w.Address) + "\n")
	if w.ContractAddress != "" {
		b.WriteString(Dim("  contract "+w.ContractAddress) + "\n")
	}
	return b.String()
}
