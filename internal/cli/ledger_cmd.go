package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/gnfinvest/gnf/internal/cli/formatter"
	"github.com/gnfinvest/gnf/internal/domain"
	"github.com/gnfinvest/gnf/internal/events"
	"github.com/gnfinvest/gnf/internal/ledger"
	"github.com/spf13/cobra"
)

func newTransactionsCmd(app *App) *cobra.Command {
	var status string

	cmd := &cobra.Command{
		Use:     "transactions",
		Aliases: []string{"tx", "history"},
		Short:   "Show your plan activations and withdrawals",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := parseFilter(status, "")
			if err != nil {
				return err
			}
			cred, err := app.investor(cmd.Context())
			if err != nil {
				return err
			}
			view, err := app.Ledger.ForUser(cmd.Context(), cred)
			if err != nil {
				return err
			}
			view = ledger.UserView{
				Activations: filter.Apply(view.Activations),
				Withdrawals: filter.Apply(view.Withdrawals),
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatUserLedger(view, app.now()))
			return nil
		},
	}

	cmd.Flags().StringVarP(&status, "status", "s", "", "only rows with this status (pending, completed, failed)")
	return cmd
}

func newWithdrawalsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "withdrawals",
		Aliases: []string{"withdraw"},
		Short:   "List your withdrawals",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cred, err := app.investor(cmd.Context())
			if err != nil {
				return err
			}
			view, err := app.Ledger.ForUser(cmd.Context(), cred)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatWithdrawals(view.Withdrawals, app.now()))
			return nil
		},
	}

	cmd.AddCommand(newWithdrawalRequestCmd(app))
	return cmd
}

func newWithdrawalRequestCmd(app *App) *cobra.Command {
	var req domain.WithdrawalRequest

	cmd := &cobra.Command{
		Use:   "request",
		Short: "Ask for a payout to your own wallet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cred, err := app.investor(cmd.Context())
			if err != nil {
				return err
			}
			if app.interactive() && !cmd.Flags().Changed("amount") {
				if err := app.promptWithdrawal(cmd, &req); err != nil {
					return err
				}
			}
			req.CryptoCurrency = strings.ToLower(strings.TrimSpace(req.CryptoCurrency))
			if err := req.Validate(); err != nil {
				return err
			}
			wd, err := app.Backend.RequestWithdrawal(cmd.Context(), cred, req)
			if err != nil {
				return err
			}
			if app.Bus != nil {
				app.Bus.Publish(events.Event{
					Kind:          events.WithdrawalRequested,
					TransactionID: wd.ID,
					Status:        domain.TxPending,
					Type:          domain.TxWithdrawal,
					At:            app.now(),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.SuccessLine(fmt.Sprintf(
				"Withdrawal of %s in %s requested. It is pending admin approval.",
				formatter.Money(req.Amount), strings.ToUpper(req.CryptoCurrency))))
			return nil
		},
	}

	f := cmd.Flags()
	amountFlag(f, &req.Amount, "amount to withdraw in USD")
	f.StringVarP(&req.CryptoCurrency, "currency", "c", "", "payout currency (btc, eth, usdt, usdc, bnb)")
	f.StringVar(&req.WalletAddress, "address", "", "your wallet address")
	return cmd
}

func (a *App) promptWithdrawal(cmd *cobra.Command, req *domain.WithdrawalRequest) error {
	var amount string
	if err := a.runForm(cmd,
		huh.NewGroup(
			huh.NewInput().Title("Amount (USD)").Placeholder("1000").Value(&amount).Validate(validateAmount),
			huh.NewSelect[string]().Title("Cryptocurrency").Options(currencyOptions()...).Value(&req.CryptoCurrency),
			requiredInput("Wallet address", "where the payout should go", &req.WalletAddress),
		),
	); err != nil {
		return err
	}
	d, err := parseAmount(amount)
	if err != nil {
		return err
	}
	req.Amount = d
	return nil
}

// parseFilter turns the tab names used on the command line into a filter.
// Empty strings match everything.
func parseFilter(status, txType string) (domain.TransactionFilter, error) {
	var f domain.TransactionFilter
	if status != "" && !strings.EqualFold(status, "all") {
		st, ok := domain.ParseTransactionStatus(status)
		if !ok {
			return f, &domain.ValidationError{Field: "status", Reason: fmt.Sprintf("unknown status %q (pending, completed, rejected)", status)}
		}
		f.Status = st
	}
	if txType != "" && !strings.EqualFold(txType, "all") {
		tt, ok := domain.ParseTransactionType(txType)
		if !ok {
			return f, &domain.ValidationError{Field: "type", Reason: fmt.Sprintf("unknown type %q (plans, withdrawals)", txType)}
		}
		f.Type = tt
	}
	return f, nil
}
