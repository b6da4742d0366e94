package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Plan is an investment package template. Plans are configured at deploy time
// and never mutated by the client.
type Plan struct {
	Type             string
	MinAmount        decimal.Decimal
	ROIPercent       decimal.Decimal
	WithdrawalPeriod WithdrawalPeriod
	RiskLevel        RiskLevel
	Description      string
	Icon             string
}

// ValidateAmount checks a proposed investment against the plan minimum.
// The server stays authoritative; this only catches obvious mistakes early.
func (p Plan) ValidateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return &ValidationError{Field: "amount", Reason: "must be greater than zero"}
	}
	if amount.LessThan(p.MinAmount) {
		return &ValidationError{
			Field:  "amount",
			Reason: fmt.Sprintf("minimum for %s is %s", p.Type, p.MinAmount.StringFixed(2)),
		}
	}
	return nil
}

// ExpectedReturn is the ROI applied to amount, without compounding.
func (p Plan) ExpectedReturn(amount decimal.Decimal) decimal.Decimal {
	return amount.Mul(p.ROIPercent).Div(decimal.NewFromInt(100))
}

// Days returns the number of days in an "N Days" period.
// Quarterly periods report ok=false.
func (w WithdrawalPeriod) Days() (int, bool) {
	fields := strings.Fields(string(w))
	if len(fields) != 2 || !strings.EqualFold(fields[1], "days") {
		return 0, false
	}
	n, err := strconv.Atoi(fields[0])
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// NextWithdrawal returns the first date a withdrawal is allowed for a plan
// activated at start.
func (w WithdrawalPeriod) NextWithdrawal(start time.Time) time.Time {
	if n, ok := w.Days(); ok {
		return start.AddDate(0, 0, n)
	}
	return start.AddDate(0, 3, 0)
}

// NewDaysPeriod builds an "N Days" withdrawal period.
func NewDaysPeriod(n int) WithdrawalPeriod {
	return WithdrawalPeriod(fmt.Sprintf("%d Days", n))
}
