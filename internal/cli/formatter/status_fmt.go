package formatter

import (
	"github.com/gnfinvest/gnf/internal/domain"
	"github.com/gnfinvest/gnf/internal/purchase"
)

// TxStatusPill returns a colored indicator for a ledger status.
func TxStatusPill(status domain.TransactionStatus) string {
	switch status {
	case domain.TxPending:
		return StyleYellow.Render("○ Pending")
	case domain.TxCompleted:
		return StyleGreen.Render("✔ Completed")
	case domain.TxFailed:
		return StyleRed.Render("✖ Failed")
	default:
		return StyleDim.Render(string(status))
	}
}

// ActivationPill returns a colored indicator for a plan activation.
func ActivationPill(status domain.ActivationStatus) string {
	switch status {
	case domain.ActivationActive, domain.ActivationCompleted:
		return StyleGreen.Render("● " + string(status))
	case domain.ActivationPending:
		return StyleYellow.Render("○ Pending approval")
	case domain.ActivationAwaitingPayment:
		return StyleBlue.Render("◌ Awaiting payment")
	case domain.ActivationFailed:
		return StyleRed.Render("✖ Failed")
	default:
		return StyleDim.Render(string(status))
	}
}

var stateLabels = map[purchase.State]string{
	purchase.Idle:              "Idle",
	purchase.PlanSelected:      "Plan selected",
	purchase.AwaitingServerAck: "Creating activation",
	purchase.AwaitingPayment:   "Awaiting payment",
	purchase.PaymentSubmitted:  "Confirming payment",
	purchase.Confirmed:         "Pending approval",
	purchase.Expired:           "Expired",
	purchase.Cancelled:         "Cancelled",
	purchase.Failed:            "Failed",
}

// StatePill returns a colored indicator for a purchase session state.
func StatePill(st purchase.State) string {
	label, ok := stateLabels[st]
	if !ok {
		label = st.String()
	}
	switch st {
	case purchase.Confirmed:
		return StyleGreen.Render("✔ " + label)
	case purchase.AwaitingPayment:
		return StyleBlue.Render("◌ " + label)
	case purchase.AwaitingServerAck, purchase.PaymentSubmitted:
		return StyleYellow.Render("… " + label)
	case purchase.Expired, purchase.Failed:
		return StyleRed.Render("✖ " + label)
	default:
		return StyleDim.Render("○ " + label)
	}
}
