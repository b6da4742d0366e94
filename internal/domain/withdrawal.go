package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Withdrawal is a payout request made by an investor.
type Withdrawal struct {
	ID             string
	Amount         decimal.Decimal
	CryptoCurrency string
	WalletAddress  string
	Status         TransactionStatus
	CreatedAt      time.Time
}

// AsTransaction projects a withdrawal onto a ledger row.
func (w Withdrawal) AsTransaction() Transaction {
	return Transaction{
		ID:             w.ID,
		Type:           TxWithdrawal,
		Status:         w.Status,
		Amount:         w.Amount,
		CryptoCurrency: w.CryptoCurrency,
		WalletAddress:  w.WalletAddress,
		CreatedAt:      w.CreatedAt,
	}
}

// WithdrawalRequest is the payload of POST /withdrawals.
type WithdrawalRequest struct {
	Amount         decimal.Decimal
	CryptoCurrency string
	WalletAddress  string
}

// WithdrawalCurrencies lists the payout currencies offered to investors.
var WithdrawalCurrencies = []struct {
	ID   string
	Name string
}{
	{"btc", "Bitcoin (BTC)"},
	{"eth", "Ethereum (ETH)"},
	{"usdt", "Tether (USDT)"},
	{"usdc", "USD Coin (USDC)"},
	{"bnb", "Binance Coin (BNB)"},
}

func (r WithdrawalRequest) Validate() error {
	if !r.Amount.IsPositive() {
		return &ValidationError{Field: "amount", Reason: "enter a valid amount"}
	}
	if strings.TrimSpace(r.CryptoCurrency) == "" {
		return &ValidationError{Field: "cryptocurrency", Reason: "please select a cryptocurrency"}
	}
	known := false
	for _, c := range WithdrawalCurrencies {
		if strings.EqualFold(c.ID, r.CryptoCurrency) {
			known = true
			break
		}
	}
	if !known {
		return &ValidationError{Field: "cryptocurrency", Reason: "unsupported currency " + r.CryptoCurrency}
	}
	if strings.TrimSpace(r.WalletAddress) == "" {
		return &ValidationError{Field: "wallet address", Reason: "please enter your wallet address"}
	}
	return nil
}
