package cli

import (
	"fmt"
	"strings"

	"github.com/gnfinvest/gnf/internal/cli/formatter"
	"github.com/gnfinvest/gnf/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func newPlansCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plans",
		Short: "List investment plans",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatPlans(app.Plans.List()))
			return nil
		},
	}

	cmd.AddCommand(
		newPlansShowCmd(app),
		newPlansActiveCmd(app),
	)
	return cmd
}

func newPlansShowCmd(app *App) *cobra.Command {
	var amount decimal.Decimal

	cmd := &cobra.Command{
		Use:       "show TYPE",
		Short:     "Show one plan and the expected return on an amount",
		Args:      cobra.ExactArgs(1),
		ValidArgs: app.Plans.Types(),
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, err := app.Plans.Get(args[0])
			if err != nil {
				return err
			}
			var shown, expected string
			if cmd.Flags().Changed("amount") {
				if err := plan.ValidateAmount(amount); err != nil {
					return err
				}
				shown = formatter.Money(amount)
				expected = formatter.Money(plan.ExpectedReturn(amount))
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatPlanDetail(plan, shown, expected))
			return nil
		},
	}

	amountFlag(cmd.Flags(), &amount, "amount to invest, for the expected return")
	return cmd
}

func newPlansActiveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "active",
		Aliases: []string{"mine"},
		Short:   "List your plan activations",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cred, err := app.investor(cmd.Context())
			if err != nil {
				return err
			}
			acts, err := app.Backend.ListActivations(cmd.Context(), cred)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatActivations(acts, app.withdrawalPeriods(), app.now()))
			return nil
		},
	}
}

func (a *App) withdrawalPeriods() map[string]domain.WithdrawalPeriod {
	plans := a.Plans.List()
	out := make(map[string]domain.WithdrawalPeriod, len(plans))
	for _, p := range plans {
		out[strings.ToLower(p.Type)] = p.WithdrawalPeriod
	}
	return out
}
