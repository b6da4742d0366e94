package cli

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/pflag"
)

// decimalValue is a pflag.Value for money amounts. It accepts "1500",
// "1,500.00" and "$1500".
type decimalValue struct {
	d   *decimal.Decimal
	set bool
}

var _ pflag.Value = (*decimalValue)(nil)

func newDecimalValue(p *decimal.Decimal) *decimalValue {
	return &decimalValue{d: p}
}

func (v *decimalValue) String() string {
	if v.d == nil || !v.set {
		return ""
	}
	return v.d.String()
}

func (v *decimalValue) Set(s string) error {
	d, err := parseAmount(s)
	if err != nil {
		return err
	}
	*v.d = d
	v.set = true
	return nil
}

func (v *decimalValue) Type() string { return "amount" }

func parseAmount(s string) (decimal.Decimal, error) {
	clean := strings.TrimPrefix(strings.ReplaceAll(strings.TrimSpace(s), ",", ""), "$")
	d, err := decimal.NewFromString(clean)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("invalid amount %q", s)
	}
	return d, nil
}

func amountFlag(fs *pflag.FlagSet, p *decimal.Decimal, usage string) {
	fs.Var(newDecimalValue(p), "amount", usage)
}
