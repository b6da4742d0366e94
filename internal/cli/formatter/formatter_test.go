package formatter

import (
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/gnfinvest/gnf/internal/catalog"
	"github.com/gnfinvest/gnf/internal/domain"
	"github.com/gnfinvest/gnf/internal/ledger"
	"github.com/gnfinvest/gnf/internal/purchase"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

func stripANSI(s string) string {
	return ansiPattern.ReplaceAllString(s, "")
}

var now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func TestMoney(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0", "$0.00"},
		{"500", "$500.00"},
		{"1000", "$1,000.00"},
		{"15000", "$15,000.00"},
		{"1234567.891", "$1,234,567.89"},
		{"-2500.5", "-$2,500.50"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Money(decimal.RequireFromString(tt.in)))
		})
	}
}

func TestRemaining(t *testing.T) {
	assert.Equal(t, "30:00", Remaining(30*time.Minute))
	assert.Equal(t, "04:05", Remaining(4*time.Minute+5*time.Second+900*time.Millisecond))
	assert.Equal(t, "1:00:00", Remaining(time.Hour))
	assert.Equal(t, "00:00", Remaining(-time.Second))
}

func TestHumanTimestamp(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
		want string
	}{
		{"zero", time.Time{}, "-"},
		{"seconds", now.Add(-10 * time.Second), "Just now"},
		{"minutes", now.Add(-5 * time.Minute), "5m ago"},
		{"hours", now.Add(-3 * time.Hour), "3h ago"},
		{"yesterday", now.Add(-30 * time.Hour), "Yesterday"},
		{"older", time.Date(2025, 5, 2, 9, 0, 0, 0, time.UTC), "May 2, 2025"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HumanTimestamp(tt.in, now))
		})
	}
}

func TestRenderTable_AlignsColumns(t *testing.T) {
	out := stripANSI(RenderTable([]string{"A", "AMOUNT"}, [][]string{{"long-cell", "$5.00"}, {"x", "$1,000.00"}}, 1))
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")

	assert.Len(t, lines, 4)
	assert.Equal(t, "long-cell      $5.00", lines[2])
	assert.Equal(t, "x          $1,000.00", lines[3])
}

func TestFormatPlans_ListsCatalog(t *testing.T) {
	out := stripANSI(FormatPlans(catalog.Default().List()))

	for _, typ := range []string{"Stocks", "Bonds", "Crypto Compounding", "Real Estate"} {
		assert.Contains(t, out, typ)
	}
	assert.Contains(t, out, "$15,000.00")
	assert.Contains(t, out, "70%")
	assert.Contains(t, out, "45 Days")
	assert.Contains(t, out, "Very High")
}

func TestFormatActivations_NextWithdrawalForActivePlans(t *testing.T) {
	acts := []domain.PlanActivation{
		{ID: "a1", PlanType: "Crypto", Amount: decimal.NewFromInt(500), Status: domain.ActivationActive, CreatedAt: now.AddDate(0, 0, -2)},
		{ID: "a2", PlanType: "Bonds", Amount: decimal.NewFromInt(1000), Status: domain.ActivationPending, CreatedAt: now},
	}
	periods := map[string]domain.WithdrawalPeriod{"crypto": domain.NewDaysPeriod(10), "bonds": domain.WithdrawalQuarterly}

	out := stripANSI(FormatActivations(acts, periods, now))

	assert.Contains(t, out, "Jun 9, 2025")
	assert.Contains(t, out, "Pending approval")
}

func TestFormatUserLedger_Sections(t *testing.T) {
	view := ledger.UserView{
		Activations: []domain.Transaction{{ID: "t1", Type: domain.TxPlanActivation, PlanType: "Crypto", Status: domain.TxCompleted, Amount: decimal.NewFromInt(500), CreatedAt: now}},
	}

	out := stripANSI(FormatUserLedger(view, now))

	assert.Contains(t, out, "PLAN ACTIVATIONS")
	assert.Contains(t, out, "✔ Completed")
	assert.Contains(t, out, "No withdrawals yet.")
}

func TestAdminRow_WithdrawalShowsMaskedAddress(t *testing.T) {
	tx := domain.Transaction{
		ID:             "0123456789abcdef",
		Type:           domain.TxWithdrawal,
		Status:         domain.TxPending,
		Amount:         decimal.NewFromInt(250),
		CryptoCurrency: "usdt",
		WalletAddress:  "TXyz1234567890abcdef",
		UserEmail:      "bob@example.com",
		CreatedAt:      now,
	}

	row := AdminRow(tx, now)

	assert.Equal(t, "01234567", stripANSI(row[0]))
	assert.Equal(t, "bob@example.com", row[1])
	assert.Equal(t, "USDT TXyz12...cdef", row[4])
}

func TestFormatWallets_InvestorSeesFullAddress(t *testing.T) {
	ws := []domain.Wallet{{ID: "w1", Symbol: "BTC", Name: "Bitcoin", Network: "mainnet", Address: "bc1qverylongaddress00000", IsActive: true}}

	investor := stripANSI(FormatWallets(ws, false))
	admin := stripANSI(FormatWallets(ws, true))

	assert.Contains(t, investor, "bc1qverylongaddress00000")
	assert.Contains(t, admin, "bc1qve...0000")
	assert.Contains(t, admin, "active")
	assert.Contains(t, stripANSI(FormatWallets(nil, false)), "No payment options available")
}

func TestFormatSnapshot_ShowsCountdownWhileAwaitingPayment(t *testing.T) {
	snap := purchase.Snapshot{
		ID:        "sess-1",
		State:     purchase.AwaitingPayment,
		PlanType:  "Crypto",
		Amount:    decimal.NewFromInt(750),
		ExpiresAt: now.Add(12*time.Minute + 30*time.Second),
	}

	out := stripANSI(FormatSnapshot(snap, now))

	assert.Contains(t, out, "12:30")
	assert.Contains(t, out, "Awaiting payment")

	snap.State = purchase.Expired
	snap.LastError = "payment window has expired"
	out = stripANSI(FormatSnapshot(snap, now))
	assert.NotContains(t, out, "Time left")
	assert.Contains(t, out, "payment window has expired")
}
