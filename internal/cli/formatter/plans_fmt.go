package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/gnfinvest/gnf/internal/domain"
)

// FormatPlans renders the investment packages as a table.
func FormatPlans(plans []domain.Plan) string {
	if len(plans) == 0 {
		return Dim("No investment plans available.") + "\n"
	}
	rows := make([][]string, 0, len(plans))
	for _, p := range plans {
		rows = append(rows, []string{
			p.Icon + " " + Bold(p.Type),
			Money(p.MinAmount),
			StyleGreen.Render(Percent(p.ROIPercent)),
			string(p.WithdrawalPeriod),
			RiskIndicator(p.RiskLevel),
		})
	}
	var b strings.Builder
	b.WriteString(Header("Investment plans"))
	b.WriteString("\n")
	b.WriteString(RenderTable([]string{"PLAN", "MINIMUM", "ROI", "WITHDRAWAL", "RISK"}, rows, 1, 2))
	return b.String()
}

// FormatPlanDetail renders one plan and what amount would return.
func FormatPlanDetail(p domain.Plan, amount, expected string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", p.Icon, Bold(p.Type))
	if p.Description != "" {
		fmt.Fprintf(&b, "%s\n", Dim(p.Description))
	}
	fmt.Fprintf(&b, "\nMinimum     %s\n", Money(p.MinAmount))
	fmt.Fprintf(&b, "ROI         %s\n", Percent(p.ROIPercent))
	fmt.Fprintf(&b, "Withdrawal  %s\n", p.WithdrawalPeriod)
	fmt.Fprintf(&b, "Risk        %s\n", RiskIndicator(p.RiskLevel))
	if amount != "" {
		fmt.Fprintf(&b, "\nInvesting   %s\n", amount)
		fmt.Fprintf(&b, "Expected    %s\n", StyleGreen.Render(expected))
	}
	return b.String()
}

// FormatActivations renders the investor's plan activations, with the next
// withdrawal date for running plans.
func FormatActivations(acts []domain.PlanActivation, periods map[string]domain.WithdrawalPeriod, now time.Time) string {
	if len(acts) == 0 {
		return Dim("You have no plan activations yet. Run 'gnf plans' to get started.") + "\n"
	}
	rows := make([][]string, 0, len(acts))
	for _, a := range acts {
		next := "-"
		if a.Status == domain.ActivationActive {
			if period, ok := periods[strings.ToLower(a.PlanType)]; ok {
				next = period.NextWithdrawal(a.CreatedAt).Format("Jan 2, 2006")
			}
		}
		rows = append(rows, []string{
			TruncID(a.ID),
			a.PlanType,
			Money(a.Amount),
			ActivationPill(a.Status),
			HumanTimestamp(a.CreatedAt, now),
			next,
		})
	}
	return RenderTable([]string{"ID", "PLAN", "AMOUNT", "STATUS", "CREATED", "NEXT WITHDRAWAL"}, rows, 2)
}
