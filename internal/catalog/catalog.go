// Package catalog holds the immutable list of investment packages offered to
// investors.
package catalog

import (
	"fmt"
	"strings"

	"github.com/gnfinvest/gnf/internal/domain"
	"github.com/shopspring/decimal"
)

// Catalog is a read-only set of plans keyed by type. It is safe for
// concurrent use because nothing mutates it after New.
type Catalog struct {
	plans []domain.Plan
	index map[string]int
}

// New builds a catalog. Plan types must be unique (case-insensitive) and
// minimums positive.
func New(plans []domain.Plan) (*Catalog, error) {
	c := &Catalog{
		plans: make([]domain.Plan, 0, len(plans)),
		index: make(map[string]int, len(plans)),
	}
	for _, p := range plans {
		key := normalize(p.Type)
		if key == "" {
			return nil, &domain.ValidationError{Field: "plan type", Reason: "is required"}
		}
		if _, dup := c.index[key]; dup {
			return nil, fmt.Errorf("duplicate plan type %q", p.Type)
		}
		if !p.MinAmount.IsPositive() {
			return nil, &domain.ValidationError{Field: "minimum amount", Reason: fmt.Sprintf("must be positive for %s", p.Type)}
		}
		c.index[key] = len(c.plans)
		c.plans = append(c.plans, p)
	}
	return c, nil
}

// Default returns the packages shown on the investor dashboard.
func Default() *Catalog {
	c, err := New(defaultPlans())
	if err != nil {
		panic(err)
	}
	return c
}

// List returns the plans in display order. The slice is a copy.
func (c *Catalog) List() []domain.Plan {
	out := make([]domain.Plan, len(c.plans))
	copy(out, c.plans)
	return out
}

// Get looks up a plan by type, ignoring case and surrounding space.
func (c *Catalog) Get(planType string) (domain.Plan, error) {
	i, ok := c.index[normalize(planType)]
	if !ok {
		return domain.Plan{}, fmt.Errorf("plan %q: %w", planType, domain.ErrNotFound)
	}
	return c.plans[i], nil
}

// Types returns the plan types in display order.
func (c *Catalog) Types() []string {
	out := make([]string, len(c.plans))
	for i, p := range c.plans {
		out[i] = p.Type
	}
	return out
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func defaultPlans() []domain.Plan {
	plan := func(typ string, min, roi int64, period domain.WithdrawalPeriod, risk domain.RiskLevel, desc, icon string) domain.Plan {
		return domain.Plan{
			Type:             typ,
			MinAmount:        decimal.NewFromInt(min),
			ROIPercent:       decimal.NewFromInt(roi),
			WithdrawalPeriod: period,
			RiskLevel:        risk,
			Description:      desc,
			Icon:             icon,
		}
	}
	return []domain.Plan{
		plan("Stocks", 15000, 40, domain.WithdrawalQuarterly, domain.RiskMedium, "Diversified blue-chip stocks portfolio", "📈"),
		plan("Bonds", 1000, 30, domain.WithdrawalQuarterly, domain.RiskLow, "Government and corporate bonds", "🔒"),
		plan("Crypto", 500, 30, domain.NewDaysPeriod(10), domain.RiskHigh, "Top 10 cryptocurrency allocation", "₿"),
		plan("Crypto Compounding", 500, 70, domain.NewDaysPeriod(45), domain.RiskVeryHigh, "Compound interest crypto strategy", "🚀"),
		plan("Agriculture", 1000, 30, domain.WithdrawalQuarterly, domain.RiskMedium, "Farmland and commodities investment", "🌾"),
		plan("Real Estate", 3000, 30, domain.WithdrawalQuarterly, domain.RiskMediumLow, "Commercial real estate trust", "🏢"),
	}
}
