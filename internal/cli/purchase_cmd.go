package cli

import (
	"errors"
	"fmt"

	"github.com/gnfinvest/gnf/internal/cli/formatter"
	"github.com/gnfinvest/gnf/internal/domain"
	"github.com/gnfinvest/gnf/internal/purchase"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

// newPurchaseCmd exposes each step of the purchase workflow as its own
// command. Steps are stored locally, so a purchase started in one shell can
// be paid from another.
func newPurchaseCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "purchase",
		Aliases: []string{"p"},
		Short:   "Step through a plan purchase",
	}

	cmd.AddCommand(
		newPurchaseStartCmd(app),
		newPurchasePayCmd(app),
		newPurchaseCancelCmd(app),
		newPurchaseStatusCmd(app),
		newPurchaseListCmd(app),
	)
	return cmd
}

func newPurchaseStartCmd(app *App) *cobra.Command {
	var amount decimal.Decimal

	cmd := &cobra.Command{
		Use:   "start PLAN",
		Short: "Open a plan activation and start the payment window",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cred, err := app.investor(cmd.Context())
			if err != nil {
				return err
			}
			snap, err := app.Purchases.Start(cmd.Context(), cred, args[0], amount)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprint(out, formatter.FormatSnapshot(snap, app.now()))
			fmt.Fprintln(out)
			app.printPaymentOptions(cmd, cred)
			fmt.Fprintln(out, formatter.Dim(fmt.Sprintf("Pay, then run 'gnf purchase pay %s --wallet SYMBOL' before the window closes.", formatter.TruncID(snap.ID))))
			return nil
		},
	}

	amountFlag(cmd.Flags(), &amount, "amount to invest in USD")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}

// printPaymentOptions lists the active wallets. A failure here is reported
// inline; the purchase itself already succeeded.
func (a *App) printPaymentOptions(cmd *cobra.Command, cred domain.Credential) {
	out := cmd.OutOrStdout()
	if err := a.Wallets.Ensure(cmd.Context(), cred); err != nil {
		fmt.Fprintln(out, formatter.ErrorLine(ErrorMessage(err)))
		return
	}
	fmt.Fprintln(out, formatter.Header("Payment options"))
	fmt.Fprint(out, formatter.FormatWallets(a.Wallets.Active(), false))
}

func newPurchasePayCmd(app *App) *cobra.Command {
	var wallet string

	cmd := &cobra.Command{
		Use:   "pay ID",
		Short: "Confirm that you sent the payment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cred, err := app.investor(cmd.Context())
			if err != nil {
				return err
			}
			id := args[0]
			if wallet != "" {
				if _, err := app.Purchases.SelectWallet(cmd.Context(), cred, id, wallet); err != nil {
					return err
				}
			}
			snap, err := app.Purchases.Pay(cmd.Context(), cred, id)
			if err != nil {
				if errors.Is(err, domain.ErrStaleWallet) {
					return fmt.Errorf("%w; run 'gnf wallets' and pick another with --wallet", err)
				}
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.SuccessLine(fmt.Sprintf(
				"Payment for %s %s confirmed. It is now pending admin approval.",
				snap.PlanType, formatter.Money(snap.Amount))))
			return nil
		},
	}

	cmd.Flags().StringVarP(&wallet, "wallet", "w", "", "symbol of the wallet you paid into (e.g. BTC)")
	return cmd
}

func newPurchaseCancelCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "cancel ID",
		Short: "Abandon a purchase",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// A stale login must not keep a purchase open.
			cred, _ := app.Accounts.Credential(cmd.Context(), domain.RoleInvestor)
			snap, err := app.Purchases.Cancel(cmd.Context(), cred, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.SuccessLine("Purchase "+formatter.TruncID(snap.ID)+" cancelled."))
			return nil
		},
	}
}

func newPurchaseStatusCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "status ID",
		Short: "Show a purchase and the time left to pay",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cred, _ := app.Accounts.Credential(cmd.Context(), domain.RoleInvestor)
			snap, err := app.Purchases.Status(cmd.Context(), cred, args[0])
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatSnapshot(snap, app.now()))
			return nil
		},
	}
}

func newPurchaseListCmd(app *App) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List open purchases",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cred, _ := app.Accounts.Credential(cmd.Context(), domain.RoleInvestor)
			snaps, err := app.Purchases.List(cmd.Context(), cred, !all)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatSnapshots(snaps, app.now()))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&all, "all", "a", false, "include finished purchases")
	return cmd
}

func newWalletsCmd(app *App) *cobra.Command {
	var refresh bool

	cmd := &cobra.Command{
		Use:   "wallets",
		Short: "List the wallets you can pay into",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cred, err := app.investor(cmd.Context())
			if err != nil {
				return err
			}
			if refresh {
				err = app.Wallets.Refresh(cmd.Context(), cred)
			} else {
				err = app.Wallets.Ensure(cmd.Context(), cred)
			}
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatWallets(app.Wallets.Active(), false))
			return nil
		},
	}

	cmd.Flags().BoolVar(&refresh, "refresh", false, "fetch even if the cached list is fresh")
	return cmd
}

// stateHint is the next step to suggest for a purchase in st.
func stateHint(st purchase.State) string {
	switch st {
	case purchase.AwaitingPayment:
		return "Send the payment, then confirm it."
	case purchase.Confirmed:
		return "Your payment is pending admin approval."
	case purchase.Expired:
		return "The payment window closed. Start a new purchase to try again."
	case purchase.Failed:
		return "The purchase could not be completed."
	}
	return ""
}
