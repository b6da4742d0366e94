package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PlanActivation is a user's investment in a Plan. It is never deleted;
// status only moves forward (see ActivationStatus.CanTransition).
type PlanActivation struct {
	ID        string
	UserID    string
	PlanType  string
	Amount    decimal.Decimal
	ROI       decimal.Decimal
	Status    ActivationStatus
	CreatedAt time.Time
	// ExpiresAt is fixed when the activation is created and never extended.
	ExpiresAt time.Time
}

// Expired reports whether the payment window has closed at now.
func (a *PlanActivation) Expired(now time.Time) bool {
	return !a.ExpiresAt.IsZero() && !now.Before(a.ExpiresAt)
}
