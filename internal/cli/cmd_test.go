package cli

import (
	"bytes"
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/gnfinvest/gnf/internal/api"
	"github.com/gnfinvest/gnf/internal/approval"
	"github.com/gnfinvest/gnf/internal/catalog"
	"github.com/gnfinvest/gnf/internal/domain"
	"github.com/gnfinvest/gnf/internal/events"
	"github.com/gnfinvest/gnf/internal/ledger"
	"github.com/gnfinvest/gnf/internal/purchase"
	"github.com/gnfinvest/gnf/internal/repository"
	"github.com/gnfinvest/gnf/internal/service"
	"github.com/gnfinvest/gnf/internal/testutil"
	"github.com/gnfinvest/gnf/internal/wallets"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	btcAddress  = "bc1qexampleaddress0000"
	usdtAddress = "TExampleAddress000000"
)

// testApp wires a full App against a fake backend and an in-memory DB.
func testApp(t *testing.T) (*App, *testutil.FakeBackend) {
	t.Helper()
	fb := testutil.NewFakeBackend(t)
	fb.AddUser("alice", "alice@example.com", "Secret#123")
	fb.AddWallet("BTC", btcAddress, true)
	fb.AddWallet("USDT", usdtAddress, true)

	database := testutil.NewTestDB(t)
	uow := testutil.NewTestUoW(database)
	client := api.NewClient(api.Config{BaseURL: fb.URL()}, nil)
	bus := events.NewBus()
	led := ledger.New(client)
	t.Cleanup(led.Attach(bus))
	plans := catalog.Default()
	dir := wallets.New(client, wallets.WithStore(service.NewWalletStore(uow)))

	return &App{
		Accounts:      service.NewAccountService(client, repository.NewSQLiteCredentialRepo(database)),
		Purchases:     service.NewPurchaseService(repository.NewSQLitePurchaseSessionRepo(database), uow, plans, client, dir, bus),
		Backend:       client,
		Plans:         plans,
		Wallets:       dir,
		Approvals:     approval.NewQueue(client, bus),
		Ledger:        led,
		Bus:           bus,
		PaymentWindow: purchase.DefaultWindow,
		TickInterval:  time.Second,
		WatchSchedule: "@every 1s",
	}, fb
}

// executeCmd runs a cobra command and captures stdout/stderr.
func executeCmd(t *testing.T, app *App, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd(app)
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return stripANSI(buf.String()), err
}

var ansi = regexp.MustCompile(`\x1b\[[0-9;]*m`)

func stripANSI(s string) string { return ansi.ReplaceAllString(s, "") }

func loginInvestor(t *testing.T, app *App) domain.Credential {
	t.Helper()
	_, err := executeCmd(t, app, "login", "-u", "alice", "-p", "Secret#123")
	require.NoError(t, err)
	cred, err := app.Accounts.Credential(context.Background(), domain.RoleInvestor)
	require.NoError(t, err)
	return cred
}

func loginAdmin(t *testing.T, app *App) {
	t.Helper()
	_, err := executeCmd(t, app, "admin", "login", "-u", "admin", "-p", "Admin#2024")
	require.NoError(t, err)
}

// openPurchase starts a Crypto purchase for $500 and returns its snapshot.
func openPurchase(t *testing.T, app *App) purchase.Snapshot {
	t.Helper()
	_, err := executeCmd(t, app, "purchase", "start", "Crypto", "--amount", "500")
	require.NoError(t, err)
	cred, err := app.Accounts.Credential(context.Background(), domain.RoleInvestor)
	require.NoError(t, err)
	snaps, err := app.Purchases.List(context.Background(), cred, true)
	require.NoError(t, err)
	require.Len(t, snaps, 1)
	return snaps[0]
}

// paidPurchase opens a purchase and confirms payment into BTC.
func paidPurchase(t *testing.T, app *App) purchase.Snapshot {
	t.Helper()
	snap := openPurchase(t, app)
	_, err := executeCmd(t, app, "purchase", "pay", snap.ID[:8], "--wallet", "btc")
	require.NoError(t, err)
	return snap
}

// --- Root ---

func TestRootCmd_NoArgs_ShowsHelp(t *testing.T) {
	app, _ := testApp(t)

	output, err := executeCmd(t, app)
	require.NoError(t, err)
	assert.Contains(t, output, "gnf")
	assert.Contains(t, output, "purchase")
}

func TestErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"server message verbatim", &domain.ServerRejection{Status: 400, Message: "Payment already confirmed"}, "Payment already confirmed"},
		{"auth gets login hint", domain.ErrAuth, "run 'gnf login'"},
		{"network", &domain.NetworkError{Op: "GET /plans", Err: errors.New("connection refused")}, "could not reach"},
		{"validation", &domain.ValidationError{Field: "amount", Reason: "is required"}, "invalid amount: is required"},
		{"nil", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.want == "" {
				assert.Empty(t, ErrorMessage(tt.err))
				return
			}
			assert.Contains(t, ErrorMessage(tt.err), tt.want)
		})
	}
}

// --- Auth ---

func TestLoginCmd_SavesCredential(t *testing.T) {
	app, _ := testApp(t)

	output, err := executeCmd(t, app, "login", "-u", "alice", "-p", "Secret#123")
	require.NoError(t, err)
	assert.Contains(t, output, "Logged in as alice")

	output, err = executeCmd(t, app, "whoami")
	require.NoError(t, err)
	assert.Contains(t, output, "alice@example.com")
}

func TestLoginCmd_MissingPasswordWithoutTerminal(t *testing.T) {
	app, fb := testApp(t)

	_, err := executeCmd(t, app, "login", "-u", "alice")

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "password", verr.Field)
	assert.Zero(t, fb.Calls("POST /auth/login"))
}

func TestLoginCmd_WrongPasswordShowsServerMessage(t *testing.T) {
	app, _ := testApp(t)

	_, err := executeCmd(t, app, "login", "-u", "alice", "-p", "Wrong#123")
	require.Error(t, err)
	assert.Equal(t, "Invalid credentials", ErrorMessage(err))
}

func TestWhoamiCmd_RequiresLogin(t *testing.T) {
	app, _ := testApp(t)

	_, err := executeCmd(t, app, "whoami")
	assert.ErrorIs(t, err, domain.ErrAuth)
}

func TestSignupCmd_LogsIn(t *testing.T) {
	app, _ := testApp(t)

	output, err := executeCmd(t, app, "signup",
		"--username", "bob", "--first-name", "Bob", "--last-name", "Stone",
		"--email", "bob@example.com", "--dob", "1990-04-01", "--address", "1 Main St",
		"--phone", "5551234567", "--country", "US", "--password", "Strong#123")
	require.NoError(t, err)
	assert.Contains(t, output, "Welcome, bob")

	_, err = app.Accounts.Credential(context.Background(), domain.RoleInvestor)
	assert.NoError(t, err)
}

func TestSignupCmd_WeakPasswordNeverReachesServer(t *testing.T) {
	app, fb := testApp(t)

	_, err := executeCmd(t, app, "signup",
		"--username", "bob", "--first-name", "Bob", "--last-name", "Stone",
		"--email", "bob@example.com", "--dob", "1990-04-01", "--address", "1 Main St",
		"--phone", "5551234567", "--country", "US", "--password", "weak")

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Zero(t, fb.Calls("POST /auth/signup"))
}

func TestLogoutCmd(t *testing.T) {
	app, _ := testApp(t)
	loginInvestor(t, app)
	loginAdmin(t, app)
	ctx := context.Background()

	_, err := executeCmd(t, app, "logout")
	require.NoError(t, err)
	_, err = app.Accounts.Credential(ctx, domain.RoleInvestor)
	assert.ErrorIs(t, err, domain.ErrAuth)
	_, err = app.Accounts.Credential(ctx, domain.RoleAdmin)
	assert.NoError(t, err, "admin login survives a plain logout")

	_, err = executeCmd(t, app, "logout", "--all")
	require.NoError(t, err)
	_, err = app.Accounts.Credential(ctx, domain.RoleAdmin)
	assert.ErrorIs(t, err, domain.ErrAuth)
}

// --- Plans ---

func TestPlansCmd_ListsCatalog(t *testing.T) {
	app, _ := testApp(t)

	output, err := executeCmd(t, app, "plans")
	require.NoError(t, err)
	for _, typ := range []string{"Stocks", "Bonds", "Crypto Compounding", "Agriculture", "Real Estate"} {
		assert.Contains(t, output, typ)
	}
	assert.Contains(t, output, "$15,000.00")
}

func TestPlansShowCmd_ExpectedReturn(t *testing.T) {
	app, _ := testApp(t)

	output, err := executeCmd(t, app, "plans", "show", "crypto", "--amount", "$1,000")
	require.NoError(t, err)
	assert.Contains(t, output, "Crypto")
	assert.Contains(t, output, "$1,000.00")
	assert.Contains(t, output, "$300.00")
}

func TestPlansShowCmd_BelowMinimum(t *testing.T) {
	app, _ := testApp(t)

	_, err := executeCmd(t, app, "plans", "show", "Stocks", "--amount", "100")

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Reason, "minimum for Stocks")
}

func TestPlansShowCmd_UnknownPlan(t *testing.T) {
	app, _ := testApp(t)

	_, err := executeCmd(t, app, "plans", "show", "Gold")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPlansShowCmd_BadAmount(t *testing.T) {
	app, _ := testApp(t)

	_, err := executeCmd(t, app, "plans", "show", "Crypto", "--amount", "lots")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid amount")
}

func TestPlansActiveCmd(t *testing.T) {
	app, _ := testApp(t)
	loginInvestor(t, app)
	paidPurchase(t, app)

	output, err := executeCmd(t, app, "plans", "active")
	require.NoError(t, err)
	assert.Contains(t, output, "Crypto")
	assert.Contains(t, output, "$500.00")
	assert.Contains(t, output, "Pending approval")
}

// --- Purchase ---

func TestPurchaseStartCmd_ShowsPaymentOptions(t *testing.T) {
	app, fb := testApp(t)
	loginInvestor(t, app)

	output, err := executeCmd(t, app, "purchase", "start", "Crypto", "--amount", "500")
	require.NoError(t, err)
	assert.Contains(t, output, "Awaiting payment")
	assert.Contains(t, output, btcAddress)
	assert.Contains(t, output, usdtAddress)
	assert.Equal(t, 1, fb.Calls("POST /plans"))
}

func TestPurchaseStartCmd_RequiresAmount(t *testing.T) {
	app, _ := testApp(t)
	loginInvestor(t, app)

	_, err := executeCmd(t, app, "purchase", "start", "Crypto")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "amount")
}

func TestPurchaseStartCmd_BelowMinimumNeverReachesServer(t *testing.T) {
	app, fb := testApp(t)
	loginInvestor(t, app)

	_, err := executeCmd(t, app, "purchase", "start", "Stocks", "--amount", "500")

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Zero(t, fb.Calls("POST /plans"))
}

func TestPurchasePayCmd_ConfirmsPayment(t *testing.T) {
	app, fb := testApp(t)
	loginInvestor(t, app)
	snap := openPurchase(t, app)

	output, err := executeCmd(t, app, "purchase", "pay", snap.ID[:8], "--wallet", "btc")
	require.NoError(t, err)
	assert.Contains(t, output, "pending admin approval")
	assert.Equal(t, "Pending", fb.ActivationStatus(snap.ActivationID))

	output, err = executeCmd(t, app, "purchase", "status", snap.ID[:8])
	require.NoError(t, err)
	assert.Contains(t, output, "Pending approval")
	assert.Contains(t, output, "BTC")
}

func TestPurchasePayCmd_WithoutWallet(t *testing.T) {
	app, fb := testApp(t)
	loginInvestor(t, app)
	snap := openPurchase(t, app)

	_, err := executeCmd(t, app, "purchase", "pay", snap.ID)

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "wallet", verr.Field)
	assert.Zero(t, fb.Calls("POST /plans/confirm-payment/{id}"))
}

func TestPurchasePayCmd_DeactivatedWallet(t *testing.T) {
	app, fb := testApp(t)
	loginInvestor(t, app)
	snap := openPurchase(t, app)
	_, err := app.Purchases.SelectWallet(context.Background(), mustInvestor(t, app), snap.ID, "BTC")
	require.NoError(t, err)
	fb.SetWalletActive("BTC", false)

	_, err = executeCmd(t, app, "purchase", "pay", snap.ID)
	require.ErrorIs(t, err, domain.ErrStaleWallet)
	assert.Contains(t, err.Error(), "gnf wallets")
	assert.Zero(t, fb.Calls("POST /plans/confirm-payment/{id}"))
}

func TestPurchasePayCmd_ServerRejectionKeepsPurchaseOpen(t *testing.T) {
	app, fb := testApp(t)
	loginInvestor(t, app)
	snap := openPurchase(t, app)
	fb.FailNext("POST /plans/confirm-payment/{id}", 500, "Server error")

	_, err := executeCmd(t, app, "purchase", "pay", snap.ID, "--wallet", "USDT")
	require.Error(t, err)
	assert.Equal(t, "Server error", ErrorMessage(err))

	_, err = executeCmd(t, app, "purchase", "pay", snap.ID)
	require.NoError(t, err)
	assert.Equal(t, "Pending", fb.ActivationStatus(snap.ActivationID))
}

func TestPurchaseCancelCmd(t *testing.T) {
	app, _ := testApp(t)
	loginInvestor(t, app)
	snap := openPurchase(t, app)

	output, err := executeCmd(t, app, "purchase", "cancel", snap.ID[:8])
	require.NoError(t, err)
	assert.Contains(t, output, "cancelled")

	output, err = executeCmd(t, app, "purchase", "list")
	require.NoError(t, err)
	assert.Contains(t, output, "No purchases")

	output, err = executeCmd(t, app, "purchase", "list", "--all")
	require.NoError(t, err)
	assert.Contains(t, output, "Cancelled")

	_, err = executeCmd(t, app, "purchase", "pay", snap.ID, "--wallet", "BTC")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestPurchaseStatusCmd_UnknownID(t *testing.T) {
	app, _ := testApp(t)
	loginInvestor(t, app)

	_, err := executeCmd(t, app, "purchase", "status", "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestWalletsCmd_ListsActiveOnly(t *testing.T) {
	app, fb := testApp(t)
	fb.AddWallet("ETH", "0xinactive000000000000", false)
	loginInvestor(t, app)

	output, err := executeCmd(t, app, "wallets")
	require.NoError(t, err)
	assert.Contains(t, output, btcAddress)
	assert.NotContains(t, output, "0xinactive000000000000")
	assert.Equal(t, 1, fb.Calls("GET /wallets"))

	_, err = executeCmd(t, app, "wallets")
	require.NoError(t, err)
	assert.Equal(t, 1, fb.Calls("GET /wallets"), "second listing served from the cached snapshot")

	_, err = executeCmd(t, app, "wallets", "--refresh")
	require.NoError(t, err)
	assert.Equal(t, 2, fb.Calls("GET /wallets"))
}

// --- Buy (non-interactive) ---

func TestBuyCmd_PlainModePrintsInstructions(t *testing.T) {
	app, fb := testApp(t)
	loginInvestor(t, app)

	output, err := executeCmd(t, app, "buy", "crypto", "--amount", "750", "--wallet", "usdt")
	require.NoError(t, err)
	assert.Contains(t, output, "Send $750.00 worth of USDT")
	assert.Contains(t, output, usdtAddress)
	assert.Contains(t, output, "gnf purchase pay")
	assert.Equal(t, 1, fb.Calls("POST /plans"))
	assert.Zero(t, fb.Calls("POST /plans/confirm-payment/{id}"))
}

func TestBuyCmd_PlainModeWithoutWalletListsOptions(t *testing.T) {
	app, _ := testApp(t)
	loginInvestor(t, app)

	output, err := executeCmd(t, app, "buy", "Crypto", "--amount", "500")
	require.NoError(t, err)
	assert.Contains(t, output, "PAYMENT OPTIONS")
	assert.Contains(t, output, btcAddress)
}

func TestBuyCmd_PlainModeRequiresAmount(t *testing.T) {
	app, fb := testApp(t)
	loginInvestor(t, app)

	_, err := executeCmd(t, app, "buy", "Crypto")

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Zero(t, fb.Calls("POST /plans"))
}

func TestBuyCmd_RequiresLogin(t *testing.T) {
	app, _ := testApp(t)

	_, err := executeCmd(t, app, "buy", "Crypto", "--amount", "500")
	require.ErrorIs(t, err, domain.ErrAuth)
	assert.Contains(t, ErrorMessage(err), "gnf login")
}

// --- Ledger ---

func TestTransactionsCmd_ShowsActivation(t *testing.T) {
	app, _ := testApp(t)
	loginInvestor(t, app)
	paidPurchase(t, app)

	output, err := executeCmd(t, app, "transactions")
	require.NoError(t, err)
	assert.Contains(t, output, "Crypto")
	assert.Contains(t, output, "Pending")

	output, err = executeCmd(t, app, "transactions", "--status", "completed")
	require.NoError(t, err)
	assert.Contains(t, output, "No plan transactions yet")
}

func TestTransactionsCmd_BadStatus(t *testing.T) {
	app, _ := testApp(t)
	loginInvestor(t, app)

	_, err := executeCmd(t, app, "transactions", "--status", "weird")

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "status", verr.Field)
}

func TestWithdrawalRequestCmd_RefreshesLedger(t *testing.T) {
	app, fb := testApp(t)
	loginInvestor(t, app)

	output, err := executeCmd(t, app, "withdrawals")
	require.NoError(t, err)
	assert.Contains(t, output, "No withdrawals yet")

	output, err = executeCmd(t, app, "withdrawals", "request", "--amount", "250", "--currency", "BTC", "--address", "bc1qpayout000000000000")
	require.NoError(t, err)
	assert.Contains(t, output, "Withdrawal of $250.00 in BTC requested")

	output, err = executeCmd(t, app, "withdrawals")
	require.NoError(t, err)
	assert.Contains(t, output, "$250.00")
	assert.Equal(t, 2, fb.Calls("GET /withdrawals"), "the request invalidated the cached view")
}

func TestWithdrawalRequestCmd_UnsupportedCurrency(t *testing.T) {
	app, fb := testApp(t)
	loginInvestor(t, app)

	_, err := executeCmd(t, app, "withdrawals", "request", "--amount", "250", "--currency", "doge", "--address", "D000")

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "cryptocurrency", verr.Field)
	assert.Zero(t, fb.Calls("POST /withdrawals"))
}

// --- Profile ---

func TestProfileUpdateCmd(t *testing.T) {
	app, _ := testApp(t)
	loginInvestor(t, app)

	output, err := executeCmd(t, app, "profile", "update", "--first-name", "Alicia")
	require.NoError(t, err)
	assert.Contains(t, output, "Profile updated")

	output, err = executeCmd(t, app, "profile")
	require.NoError(t, err)
	assert.Contains(t, output, "Alicia")
}

func TestProfileUpdateCmd_NothingToUpdate(t *testing.T) {
	app, _ := testApp(t)
	loginInvestor(t, app)

	_, err := executeCmd(t, app, "profile", "update")

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestProfilePasswordCmd(t *testing.T) {
	app, _ := testApp(t)
	loginInvestor(t, app)

	_, err := executeCmd(t, app, "profile", "password", "--current", "Wrong#123", "--new", "Better#456")
	require.Error(t, err)
	assert.Equal(t, "Current password is incorrect", ErrorMessage(err))

	_, err = executeCmd(t, app, "profile", "password", "--current", "Secret#123", "--new", "Better#456")
	require.NoError(t, err)

	_, err = executeCmd(t, app, "login", "-u", "alice", "-p", "Better#456")
	assert.NoError(t, err)
}

// --- Admin ---

func TestAdminCmds_RequireAdminLogin(t *testing.T) {
	app, _ := testApp(t)
	loginInvestor(t, app)

	_, err := executeCmd(t, app, "admin", "transactions")
	require.ErrorIs(t, err, domain.ErrAuth)
	assert.Contains(t, ErrorMessage(err), "gnf admin login")
}

func TestAdminTransactionsCmd_DefaultsToPending(t *testing.T) {
	app, _ := testApp(t)
	loginInvestor(t, app)
	paidPurchase(t, app)
	loginAdmin(t, app)

	output, err := executeCmd(t, app, "admin", "transactions")
	require.NoError(t, err)
	assert.Contains(t, output, "alice")
	assert.Contains(t, output, "Plan Activation")
	assert.Contains(t, output, "$500.00")

	output, err = executeCmd(t, app, "admin", "transactions", "--type", "withdrawals")
	require.NoError(t, err)
	assert.Contains(t, output, "No transactions match")
}

func TestAdminApproveCmd_ByPrefix(t *testing.T) {
	app, fb := testApp(t)
	loginInvestor(t, app)
	snap := paidPurchase(t, app)
	loginAdmin(t, app)
	txID := fb.TransactionFor(snap.ActivationID)
	require.NotEmpty(t, txID)

	output, err := executeCmd(t, app, "admin", "approve", txID[:8])
	require.NoError(t, err)
	assert.Contains(t, output, "approved")
	assert.Equal(t, "Active", fb.ActivationStatus(snap.ActivationID))

	_, err = executeCmd(t, app, "admin", "reject", txID)
	assert.ErrorIs(t, err, domain.ErrAlreadyDecided)
	assert.Equal(t, 1, fb.Calls("PUT /admin/transactions/{id}"))
}

func TestAdminRejectCmd_FailsActivation(t *testing.T) {
	app, fb := testApp(t)
	loginInvestor(t, app)
	snap := paidPurchase(t, app)
	loginAdmin(t, app)

	_, err := executeCmd(t, app, "admin", "reject", fb.TransactionFor(snap.ActivationID))
	require.NoError(t, err)
	assert.Equal(t, "Failed", fb.ActivationStatus(snap.ActivationID))
}

func TestAdminApproveCmd_UnknownID(t *testing.T) {
	app, fb := testApp(t)
	loginAdmin(t, app)

	_, err := executeCmd(t, app, "admin", "approve", "deadbeef")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Zero(t, fb.Calls("PUT /admin/transactions/{id}"))
}

func TestAdminReviewCmd_NeedsTerminal(t *testing.T) {
	app, _ := testApp(t)
	loginAdmin(t, app)

	_, err := executeCmd(t, app, "admin", "review")

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Reason, "gnf admin transactions")
}

func TestAdminWatchCmd_Once(t *testing.T) {
	app, _ := testApp(t)
	loginInvestor(t, app)
	paidPurchase(t, app)
	loginAdmin(t, app)

	output, err := executeCmd(t, app, "admin", "watch", "--once")
	require.NoError(t, err)
	assert.Contains(t, output, "1 new pending")
	assert.Contains(t, output, "alice")
}

func TestAdminWatchCmd_NothingPending(t *testing.T) {
	app, _ := testApp(t)
	loginAdmin(t, app)

	output, err := executeCmd(t, app, "admin", "watch", "--once")
	require.NoError(t, err)
	assert.Contains(t, output, "No pending transactions")
}

func TestAdminWatchCmd_PollsUntilCancelled(t *testing.T) {
	app, _ := testApp(t)
	loginAdmin(t, app)

	ctx, cancel := context.WithTimeout(context.Background(), 2500*time.Millisecond)
	defer cancel()
	root := NewRootCmd(app)
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs([]string{"admin", "watch", "--every", "@every 1s"})

	require.NoError(t, root.ExecuteContext(ctx))
	assert.Contains(t, stripANSI(buf.String()), "Watching (@every 1s)")
}

func TestAdminWatchCmd_InvalidSchedule(t *testing.T) {
	app, _ := testApp(t)
	loginAdmin(t, app)

	_, err := executeCmd(t, app, "admin", "watch", "--every", "sometimes")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pending-transactions")
}

func TestAdminWalletsCmd_AddEditRemove(t *testing.T) {
	app, _ := testApp(t)
	loginAdmin(t, app)
	loginInvestor(t, app)

	changes := 0
	t.Cleanup(app.Bus.Subscribe(func(events.Event) { changes++ }, events.WalletsChanged))

	output, err := executeCmd(t, app, "admin", "wallets", "add",
		"--name", "Solana", "--symbol", "sol", "--network", "Solana", "--address", "So1anaAddress000000000")
	require.NoError(t, err)
	assert.Contains(t, output, "Wallet SOL added")
	assert.Contains(t, output, "SOL")

	output, err = executeCmd(t, app, "wallets")
	require.NoError(t, err)
	assert.Contains(t, output, "So1anaAddress000000000")

	output, err = executeCmd(t, app, "admin", "wallets", "edit", "SOL", "--active=false")
	require.NoError(t, err)
	assert.Contains(t, output, "inactive")

	output, err = executeCmd(t, app, "wallets")
	require.NoError(t, err)
	assert.NotContains(t, output, "So1anaAddress000000000")

	_, err = executeCmd(t, app, "admin", "wallets", "remove", "sol")
	require.NoError(t, err)
	_, err = app.Wallets.Get("SOL")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, 3, changes)
}

func TestAdminWalletsEditCmd_KeepsUnchangedFields(t *testing.T) {
	app, fb := testApp(t)
	loginAdmin(t, app)

	_, err := executeCmd(t, app, "admin", "wallets", "edit", "BTC", "--network", "Lightning")
	require.NoError(t, err)

	w, err := app.Wallets.Get("BTC")
	require.NoError(t, err)
	assert.Equal(t, "Lightning", w.Network)
	assert.Equal(t, btcAddress, w.Address)
	assert.True(t, w.IsActive)
	assert.Equal(t, 1, fb.Calls("PUT /wallets/{id}"))
}

func TestAdminWalletsEditCmd_NoFlags(t *testing.T) {
	app, fb := testApp(t)
	loginAdmin(t, app)

	_, err := executeCmd(t, app, "admin", "wallets", "edit", "BTC")

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Zero(t, fb.Calls("PUT /wallets/{id}"))
}

func TestAdminWalletsAddCmd_Validation(t *testing.T) {
	app, fb := testApp(t)
	loginAdmin(t, app)

	_, err := executeCmd(t, app, "admin", "wallets", "add", "--name", "Solana", "--symbol", "SOL")

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "network", verr.Field)
	assert.Zero(t, fb.Calls("POST /wallets"))
}

// --- Helpers ---

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"1500", "1500", true},
		{"$1,500.50", "1500.5", true},
		{" 20 ", "20", true},
		{"abc", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			d, err := parseAmount(tt.in)
			if !tt.ok {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, d.Equal(decimal.RequireFromString(tt.want)), "got %s", d)
		})
	}
}

func TestResolveTransaction(t *testing.T) {
	txs := []domain.Transaction{
		testutil.NewTestTransaction(100, testutil.WithTransactionID("abc123")),
		testutil.NewTestTransaction(200, testutil.WithTransactionID("abc456")),
		testutil.NewTestTransaction(300, testutil.WithTransactionID("def789")),
	}

	tx, err := resolveTransaction(txs, "def")
	require.NoError(t, err)
	assert.Equal(t, "def789", tx.ID)

	tx, err = resolveTransaction(txs, "abc123")
	require.NoError(t, err)
	assert.Equal(t, "abc123", tx.ID)

	_, err = resolveTransaction(txs, "abc")
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.True(t, strings.Contains(verr.Reason, "matches 2"))

	_, err = resolveTransaction(txs, "zzz")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func mustInvestor(t *testing.T, app *App) domain.Credential {
	t.Helper()
	cred, err := app.Accounts.Credential(context.Background(), domain.RoleInvestor)
	require.NoError(t, err)
	return cred
}

func TestRefreshWallets_PollsUntilStopped(t *testing.T) {
	app, fb := testApp(t)
	cred := loginInvestor(t, app)
	app.WalletRefresh = "@every 1s"

	stop, err := app.refreshWallets(context.Background(), cred)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return fb.Calls("GET /wallets") >= 1 }, 3*time.Second, 50*time.Millisecond)
	stop()

	after := fb.Calls("GET /wallets")
	time.Sleep(1200 * time.Millisecond)
	assert.Equal(t, after, fb.Calls("GET /wallets"), "no refresh after stop")
}

func TestRefreshWallets_DisabledAndInvalid(t *testing.T) {
	app, _ := testApp(t)

	app.WalletRefresh = ""
	stop, err := app.refreshWallets(context.Background(), domain.Credential{})
	require.NoError(t, err)
	stop()

	app.WalletRefresh = "every now and then"
	_, err = app.refreshWallets(context.Background(), domain.Credential{})
	assert.ErrorContains(t, err, "wallet-refresh")
}
