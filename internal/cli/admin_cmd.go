package cli

import (
	"context"
	"fmt"

	"github.com/gnfinvest/gnf/internal/approval"
	"github.com/gnfinvest/gnf/internal/cli/formatter"
	"github.com/gnfinvest/gnf/internal/domain"
	"github.com/gnfinvest/gnf/internal/poller"
	"github.com/spf13/cobra"
)

func newAdminCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Review payments and withdrawals, manage wallets",
	}

	cmd.AddCommand(
		newAdminLoginCmd(app),
		newAdminTransactionsCmd(app),
		newAdminDecisionCmd(app, approval.Approve),
		newAdminDecisionCmd(app, approval.Reject),
		newAdminReviewCmd(app),
		newAdminWatchCmd(app),
		newAdminWalletsCmd(app),
	)
	return cmd
}

func newAdminLoginCmd(app *App) *cobra.Command {
	var req domain.LoginRequest

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to the admin console",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.promptLogin(cmd, &req, "Admin login"); err != nil {
				return err
			}
			saved, err := app.Accounts.AdminLogin(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.SuccessLine("Admin session started for "+formatter.Bold(saved.Username)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&req.EmailOrUsername, "user", "u", "", "admin username")
	cmd.Flags().StringVarP(&req.Password, "password", "p", "", "password (prompted when omitted)")
	return cmd
}

func newAdminTransactionsCmd(app *App) *cobra.Command {
	var status, txType string

	cmd := &cobra.Command{
		Use:     "transactions",
		Aliases: []string{"tx"},
		Short:   "List transactions for review",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := parseFilter(status, txType)
			if err != nil {
				return err
			}
			cred, err := app.admin(cmd.Context())
			if err != nil {
				return err
			}
			txs, err := app.Approvals.List(cmd.Context(), cred, filter)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatAdminTransactions(txs, app.now()))
			return nil
		},
	}

	cmd.Flags().StringVarP(&status, "status", "s", "pending", "pending, completed (approved), rejected, or all")
	cmd.Flags().StringVarP(&txType, "type", "t", "all", "plans, withdrawals, or all")
	return cmd
}

func newAdminDecisionCmd(app *App, action approval.Action) *cobra.Command {
	short, verb := "Approve a pending transaction", "approved"
	if action == approval.Reject {
		short, verb = "Reject a pending transaction", "rejected"
	}

	return &cobra.Command{
		Use:   string(action) + " ID",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cred, err := app.admin(ctx)
			if err != nil {
				return err
			}
			txs, err := app.Approvals.List(ctx, cred, domain.TransactionFilter{})
			if err != nil {
				return err
			}
			tx, err := resolveTransaction(txs, args[0])
			if err != nil {
				return err
			}
			if err := app.decide(ctx, cred, tx.ID, action); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.SuccessLine(fmt.Sprintf(
				"%s %s of %s by %s %s.",
				tx.Type, formatter.TruncID(tx.ID), formatter.Money(tx.Amount), tx.UserLabel(), verb)))
			return nil
		},
	}
}

func (a *App) decide(ctx context.Context, cred domain.Credential, id string, action approval.Action) error {
	if action == approval.Reject {
		return a.Approvals.Reject(ctx, cred, id)
	}
	return a.Approvals.Approve(ctx, cred, id)
}

func newAdminWatchCmd(app *App) *cobra.Command {
	var schedule string
	var once bool

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Print new pending transactions as they arrive",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cred, err := app.admin(ctx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			seen := make(map[string]bool)
			job := func(ctx context.Context) error {
				txs, err := app.Approvals.List(ctx, cred, domain.TransactionFilter{Status: domain.TxPending})
				if err != nil {
					return err
				}
				var fresh []domain.Transaction
				for _, tx := range txs {
					if !seen[tx.ID] {
						seen[tx.ID] = true
						fresh = append(fresh, tx)
					}
				}
				if len(fresh) > 0 {
					fmt.Fprintf(out, "%s  %d new pending\n", formatter.Dim(app.now().Format("15:04:05")), len(fresh))
					fmt.Fprint(out, formatter.FormatAdminTransactions(fresh, app.now()))
				}
				return nil
			}

			if err := job(ctx); err != nil {
				return err
			}
			if len(seen) == 0 {
				fmt.Fprintln(out, formatter.Dim("No pending transactions."))
			}
			if once {
				return nil
			}

			if schedule == "" {
				schedule = app.WatchSchedule
			}
			p := poller.New(app.logger())
			if err := p.Every("pending-transactions", schedule, job); err != nil {
				return err
			}
			fmt.Fprintln(out, formatter.Dim("Watching ("+schedule+"). Press Ctrl+C to stop."))
			p.Start(ctx)
			<-ctx.Done()
			<-p.Stop().Done()
			return nil
		},
	}

	cmd.Flags().StringVar(&schedule, "every", "", "cron schedule for polling (default from config, e.g. \"@every 30s\")")
	cmd.Flags().BoolVar(&once, "once", false, "check once and exit")
	return cmd
}
