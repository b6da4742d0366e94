package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cryptoPlan() Plan {
	return Plan{
		Type:             "Crypto",
		MinAmount:        decimal.NewFromInt(500),
		ROIPercent:       decimal.NewFromInt(30),
		WithdrawalPeriod: NewDaysPeriod(10),
		RiskLevel:        RiskHigh,
	}
}

func TestValidateAmount_BelowMinimum(t *testing.T) {
	err := cryptoPlan().ValidateAmount(decimal.NewFromInt(499))
	require.Error(t, err)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "amount", verr.Field)
	assert.Contains(t, err.Error(), "500.00")
}

func TestValidateAmount_AtMinimum(t *testing.T) {
	assert.NoError(t, cryptoPlan().ValidateAmount(decimal.NewFromInt(500)))
}

func TestValidateAmount_FractionBelowMinimum(t *testing.T) {
	assert.Error(t, cryptoPlan().ValidateAmount(decimal.RequireFromString("499.99")))
}

func TestValidateAmount_NonPositive(t *testing.T) {
	p := cryptoPlan()
	p.MinAmount = decimal.Zero
	assert.Error(t, p.ValidateAmount(decimal.Zero))
	assert.Error(t, p.ValidateAmount(decimal.NewFromInt(-5)))
}

func TestExpectedReturn(t *testing.T) {
	got := cryptoPlan().ExpectedReturn(decimal.NewFromInt(1000))
	assert.True(t, got.Equal(decimal.NewFromInt(300)), "got %s", got)
}

func TestWithdrawalPeriod_Days(t *testing.T) {
	n, ok := WithdrawalPeriod("45 Days").Days()
	assert.True(t, ok)
	assert.Equal(t, 45, n)

	_, ok = WithdrawalQuarterly.Days()
	assert.False(t, ok)

	_, ok = WithdrawalPeriod("soon Days").Days()
	assert.False(t, ok)
}

func TestWithdrawalPeriod_NextWithdrawal(t *testing.T) {
	start := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, start.AddDate(0, 0, 10), NewDaysPeriod(10).NextWithdrawal(start))
	assert.Equal(t, time.Date(2025, 4, 15, 0, 0, 0, 0, time.UTC), WithdrawalQuarterly.NextWithdrawal(start))
}

func TestRiskLevel_Ordering(t *testing.T) {
	assert.Less(t, int(RiskLow), int(RiskMediumLow))
	assert.Less(t, int(RiskHigh), int(RiskVeryHigh))

	lvl, ok := ParseRiskLevel("medium-low")
	require.True(t, ok)
	assert.Equal(t, RiskMediumLow, lvl)
	assert.Equal(t, "Very High", RiskVeryHigh.String())

	_, ok = ParseRiskLevel("extreme")
	assert.False(t, ok)
}

func TestActivationStatus_OneWay(t *testing.T) {
	assert.True(t, ActivationAwaitingPayment.CanTransition(ActivationPending))
	assert.True(t, ActivationPending.CanTransition(ActivationCompleted))
	assert.True(t, ActivationPending.CanTransition(ActivationFailed))

	assert.False(t, ActivationCompleted.CanTransition(ActivationFailed))
	assert.False(t, ActivationFailed.CanTransition(ActivationCompleted))
	assert.False(t, ActivationCompleted.CanTransition(ActivationPending))
	assert.False(t, ActivationAwaitingPayment.CanTransition(ActivationCompleted))
}

func TestPlanActivation_Expired(t *testing.T) {
	created := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	a := &PlanActivation{CreatedAt: created, ExpiresAt: created.Add(30 * time.Minute)}

	assert.False(t, a.Expired(created.Add(29*time.Minute)))
	assert.True(t, a.Expired(created.Add(30*time.Minute)))
	assert.False(t, (&PlanActivation{}).Expired(created))
}
