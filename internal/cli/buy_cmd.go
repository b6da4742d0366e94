package cli

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/gnfinvest/gnf/internal/cli/formatter"
	"github.com/gnfinvest/gnf/internal/domain"
	"github.com/gnfinvest/gnf/internal/poller"
	"github.com/gnfinvest/gnf/internal/purchase"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func newBuyCmd(app *App) *cobra.Command {
	var amount decimal.Decimal
	var wallet string

	cmd := &cobra.Command{
		Use:   "buy PLAN",
		Short: "Buy an investment plan",
		Long: "Buy an investment plan. In a terminal this walks you through payment with a live countdown;\n" +
			"otherwise it opens the activation and prints where to pay.",
		Args:      cobra.ExactArgs(1),
		ValidArgs: app.Plans.Types(),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cred, err := app.investor(ctx)
			if err != nil {
				return err
			}
			plan, err := app.Plans.Get(args[0])
			if err != nil {
				return err
			}

			if !app.interactive() {
				if !cmd.Flags().Changed("amount") {
					return &domain.ValidationError{Field: "amount", Reason: "is required (--amount)"}
				}
				return app.buyPlain(cmd, cred, plan, amount, wallet)
			}

			if !cmd.Flags().Changed("amount") {
				if amount, err = app.promptAmount(cmd, plan); err != nil {
					return err
				}
			}
			sess := purchase.New(app.Backend, app.Wallets,
				purchase.WithWindow(app.PaymentWindow),
				purchase.WithClock(app.now))
			if err := sess.SelectPlan(plan, amount); err != nil {
				return err
			}
			if err := app.Purchases.Track(ctx, cred, sess); err != nil {
				return err
			}

			stopRefresh, err := app.refreshWallets(ctx, cred)
			if err != nil {
				return err
			}
			defer stopRefresh()

			model := newBuyModel(ctx, sess, cred, app.TickInterval)
			defer model.stop()
			_, err = tea.NewProgram(model,
				tea.WithContext(ctx),
				tea.WithInput(app.input(cmd)),
				tea.WithOutput(cmd.OutOrStdout()),
			).Run()
			return err
		},
	}

	amountFlag(cmd.Flags(), &amount, "amount to invest in USD")
	cmd.Flags().StringVarP(&wallet, "wallet", "w", "", "wallet symbol to pay with (non-interactive only)")
	return cmd
}

// buyPlain opens the activation and prints payment instructions, for
// scripts and pipes.
func (a *App) buyPlain(cmd *cobra.Command, cred domain.Credential, plan domain.Plan, amount decimal.Decimal, wallet string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	snap, err := a.Purchases.Start(ctx, cred, plan.Type, amount)
	if err != nil {
		return err
	}
	fmt.Fprint(out, formatter.FormatSnapshot(snap, a.now()))
	fmt.Fprintln(out)

	if wallet == "" {
		a.printPaymentOptions(cmd, cred)
		fmt.Fprintln(out, formatter.Dim(fmt.Sprintf(
			"Pay, then run 'gnf purchase pay %s --wallet SYMBOL' before the window closes.",
			formatter.TruncID(snap.ID))))
		return nil
	}

	snap, err = a.Purchases.SelectWallet(ctx, cred, snap.ID, wallet)
	if err != nil {
		return err
	}
	w, err := a.Wallets.Get(snap.WalletSymbol)
	if err != nil {
		return err
	}
	fmt.Fprint(out, formatter.FormatPaymentInstructions(w, formatter.Money(amount)))
	fmt.Fprintln(out)
	fmt.Fprintln(out, formatter.Dim(fmt.Sprintf(
		"Then run 'gnf purchase pay %s' before the window closes.", formatter.TruncID(snap.ID))))
	return nil
}

// refreshWallets keeps the wallet snapshot fresh in the background so the
// picker never offers a wallet an admin has since disabled.
func (a *App) refreshWallets(ctx context.Context, cred domain.Credential) (stop func(), err error) {
	if a.WalletRefresh == "" {
		return func() {}, nil
	}
	p := poller.New(a.logger())
	err = p.Every("wallet-refresh", a.WalletRefresh, func(ctx context.Context) error {
		return a.Wallets.Refresh(ctx, cred)
	})
	if err != nil {
		return nil, err
	}
	p.Start(ctx)
	return func() { <-p.Stop().Done() }, nil
}

func (a *App) promptAmount(cmd *cobra.Command, plan domain.Plan) (decimal.Decimal, error) {
	raw := plan.MinAmount.String()
	err := a.runForm(cmd, huh.NewGroup(
		huh.NewInput().
			Title("Amount to invest in "+plan.Type).
			Description("Minimum "+formatter.Money(plan.MinAmount)).
			Value(&raw).
			Validate(func(s string) error {
				d, err := parseAmount(s)
				if err != nil {
					return err
				}
				return plan.ValidateAmount(d)
			}),
	))
	if err != nil {
		return decimal.Decimal{}, err
	}
	return parseAmount(raw)
}
