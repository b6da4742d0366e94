package domain

import "strings"

// RiskLevel is an ordinal; higher values carry more risk.
type RiskLevel int

const (
	RiskLow RiskLevel = iota + 1
	RiskMediumLow
	RiskMedium
	RiskHigh
	RiskVeryHigh
)

var riskLabels = map[RiskLevel]string{
	RiskLow:       "Low",
	RiskMediumLow: "Medium-Low",
	RiskMedium:    "Medium",
	RiskHigh:      "High",
	RiskVeryHigh:  "Very High",
}

func (r RiskLevel) String() string {
	if s, ok := riskLabels[r]; ok {
		return s
	}
	return "Unknown"
}

// ParseRiskLevel accepts the display labels used by the platform ("Medium-Low", "Very High").
func ParseRiskLevel(s string) (RiskLevel, bool) {
	for level, label := range riskLabels {
		if strings.EqualFold(label, strings.TrimSpace(s)) {
			return level, true
		}
	}
	return 0, false
}

// ActivationStatus is the server-side lifecycle of a PlanActivation.
type ActivationStatus string

const (
	ActivationAwaitingPayment ActivationStatus = "AwaitingPayment"
	ActivationPending         ActivationStatus = "Pending"
	ActivationCompleted       ActivationStatus = "Completed"
	ActivationFailed          ActivationStatus = "Failed"
	// ActivationActive is reported by GET /plans for approved, running plans.
	ActivationActive ActivationStatus = "Active"
)

// CanTransition reports whether the lifecycle allows moving from s to next.
// Transitions are one-way; Completed and Failed are final.
func (s ActivationStatus) CanTransition(next ActivationStatus) bool {
	switch s {
	case ActivationAwaitingPayment:
		return next == ActivationPending
	case ActivationPending:
		return next == ActivationCompleted || next == ActivationFailed
	default:
		return false
	}
}

// TransactionStatus is the status shown on ledger rows.
type TransactionStatus string

const (
	TxPending   TransactionStatus = "Pending"
	TxCompleted TransactionStatus = "Completed"
	TxFailed    TransactionStatus = "Failed"
)

// ValidTransactionStatuses is the canonical set of accepted status strings.
var ValidTransactionStatuses = map[TransactionStatus]bool{
	TxPending: true, TxCompleted: true, TxFailed: true,
}

// ParseTransactionStatus accepts both the wire values and the admin tab names
// ("pending", "completed"/"approved", "rejected").
func ParseTransactionStatus(s string) (TransactionStatus, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pending":
		return TxPending, true
	case "completed", "approved":
		return TxCompleted, true
	case "failed", "rejected":
		return TxFailed, true
	}
	return "", false
}

// TransactionType distinguishes plan activations from withdrawals.
type TransactionType string

const (
	TxPlanActivation TransactionType = "Plan Activation"
	TxWithdrawal     TransactionType = "Withdrawal"
)

// ParseTransactionType accepts the wire values and the admin sub-tab names
// ("plans", "withdrawals").
func ParseTransactionType(s string) (TransactionType, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "plan activation", "plans", "plan", "activation":
		return TxPlanActivation, true
	case "withdrawal", "withdrawals":
		return TxWithdrawal, true
	}
	return "", false
}

// WithdrawalPeriod is either Quarterly or a fixed number of days ("10 Days").
type WithdrawalPeriod string

const WithdrawalQuarterly WithdrawalPeriod = "Quarterly"

// Role separates investor credentials from admin credentials.
type Role string

const (
	RoleInvestor Role = "investor"
	RoleAdmin    Role = "admin"
)
