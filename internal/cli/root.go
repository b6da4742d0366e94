package cli

import (
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/gnfinvest/gnf/internal/approval"
	"github.com/gnfinvest/gnf/internal/catalog"
	"github.com/gnfinvest/gnf/internal/domain"
	"github.com/gnfinvest/gnf/internal/events"
	"github.com/gnfinvest/gnf/internal/ledger"
	"github.com/gnfinvest/gnf/internal/service"
	"github.com/gnfinvest/gnf/internal/wallets"
	"github.com/spf13/cobra"
)

// App holds everything the commands need. main wires it once per process.
type App struct {
	Accounts  service.AccountService
	Purchases service.PurchaseService
	Backend   Backend
	Plans     *catalog.Catalog
	Wallets   *wallets.Directory
	Approvals *approval.Queue
	Ledger    *ledger.Ledger
	Bus       *events.Bus
	Logger    *slog.Logger

	PaymentWindow time.Duration
	TickInterval  time.Duration
	WatchSchedule string
	// WalletRefresh is the cron schedule for re-fetching wallets while the
	// interactive buy flow is open. Empty disables it.
	WalletRefresh string

	// Now defaults to time.Now.
	Now func() time.Time
	// IsInteractive reports whether stdin is a terminal; prompts and TUI
	// views are only used when it returns true.
	IsInteractive func() bool
	// In feeds huh forms and bubbletea programs; nil means stdin.
	In io.Reader
}

func (a *App) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}

func (a *App) interactive() bool {
	return a.IsInteractive != nil && a.IsInteractive()
}

func (a *App) logger() *slog.Logger {
	if a.Logger != nil {
		return a.Logger
	}
	return slog.New(slog.DiscardHandler)
}

// NewRootCmd creates the top-level "gnf" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "gnf",
		Short:         "GNF Invest from the terminal",
		Long:          "Browse investment plans, buy and pay for them, and follow your transactions.\nAdmins review payments and withdrawals with 'gnf admin'.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newLoginCmd(app),
		newSignupCmd(app),
		newLogoutCmd(app),
		newWhoamiCmd(app),
		newPlansCmd(app),
		newBuyCmd(app),
		newPurchaseCmd(app),
		newWalletsCmd(app),
		newTransactionsCmd(app),
		newWithdrawalsCmd(app),
		newProfileCmd(app),
		newAdminCmd(app),
	)

	return root
}

// ErrorMessage turns an error from a command into the line main prints.
// Server messages are shown verbatim; auth failures get a login hint.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	msg := domain.UserMessage(err, err.Error())
	if errors.Is(err, domain.ErrAuth) {
		return msg + " (run 'gnf login', or 'gnf admin login' for admin commands)"
	}
	if errors.Is(err, domain.ErrNetwork) {
		return "could not reach the GNF Invest server; check your connection and try again"
	}
	return msg
}
