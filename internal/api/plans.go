package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/gnfinvest/gnf/internal/domain"
	"github.com/shopspring/decimal"
)

// CreateActivation asks the server to open a PlanActivation for plan at the
// given amount. The returned activation carries at least the server id.
func (c *Client) CreateActivation(ctx context.Context, cred domain.Credential, plan domain.Plan, amount decimal.Decimal) (domain.PlanActivation, error) {
	body := activationRequest{
		Type:             plan.Type,
		Amount:           number(amount),
		ROI:              number(plan.ROIPercent),
		WithdrawalPeriod: string(plan.WithdrawalPeriod),
		Description:      plan.Description,
		Icon:             plan.Icon,
		RiskLevel:        plan.RiskLevel.String(),
	}
	var resp activationResponse
	if err := c.do(ctx, call{method: http.MethodPost, path: "/plans", body: body, auth: authUser, cred: cred}, &resp); err != nil {
		return domain.PlanActivation{}, err
	}

	w := resp.wireActivation
	if w.ID == "" && resp.Plan != nil {
		w = *resp.Plan
	}
	if w.ID == "" {
		return domain.PlanActivation{}, ErrMissingID
	}
	a := w.toDomain()
	if a.PlanType == "" {
		a.PlanType = plan.Type
	}
	if a.Amount.IsZero() {
		a.Amount = amount
	}
	if a.Status == "" {
		a.Status = domain.ActivationAwaitingPayment
	}
	return a, nil
}

// ConfirmPayment tells the server the investor has sent funds for the activation.
func (c *Client) ConfirmPayment(ctx context.Context, cred domain.Credential, activationID string) error {
	if activationID == "" {
		return &domain.ValidationError{Field: "activation id", Reason: "is required"}
	}
	path := fmt.Sprintf("/plans/confirm-payment/%s", url.PathEscape(activationID))
	return c.do(ctx, call{method: http.MethodPost, path: path, body: struct{}{}, auth: authUser, cred: cred}, nil)
}

// ListActivations returns the caller's plan activations.
func (c *Client) ListActivations(ctx context.Context, cred domain.Credential) ([]domain.PlanActivation, error) {
	var resp []wireActivation
	if err := c.do(ctx, call{method: http.MethodGet, path: "/plans", auth: authUser, cred: cred}, &resp); err != nil {
		return nil, err
	}
	out := make([]domain.PlanActivation, 0, len(resp))
	for _, w := range resp {
		out = append(out, w.toDomain())
	}
	return out, nil
}

// ActiveActivation returns the first activation in Active status, if any.
func ActiveActivation(acts []domain.PlanActivation) (domain.PlanActivation, bool) {
	for _, a := range acts {
		if a.Status == domain.ActivationActive {
			return a, true
		}
	}
	return domain.PlanActivation{}, false
}
