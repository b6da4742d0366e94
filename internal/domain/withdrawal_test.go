package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithdrawalRequest_Validate(t *testing.T) {
	valid := WithdrawalRequest{Amount: decimal.NewFromInt(250), CryptoCurrency: "USDT", WalletAddress: "TAddr"}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name  string
		req   WithdrawalRequest
		field string
	}{
		{"zero amount", WithdrawalRequest{CryptoCurrency: "btc", WalletAddress: "a"}, "amount"},
		{"negative amount", WithdrawalRequest{Amount: decimal.NewFromInt(-1), CryptoCurrency: "btc", WalletAddress: "a"}, "amount"},
		{"no currency", WithdrawalRequest{Amount: decimal.NewFromInt(1), WalletAddress: "a"}, "cryptocurrency"},
		{"unknown currency", WithdrawalRequest{Amount: decimal.NewFromInt(1), CryptoCurrency: "doge", WalletAddress: "a"}, "cryptocurrency"},
		{"blank address", WithdrawalRequest{Amount: decimal.NewFromInt(1), CryptoCurrency: "eth", WalletAddress: "  "}, "wallet address"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var verr *ValidationError
			require.ErrorAs(t, tt.req.Validate(), &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestWithdrawal_AsTransaction(t *testing.T) {
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	tx := Withdrawal{ID: "w1", Amount: decimal.NewFromInt(90), CryptoCurrency: "btc", WalletAddress: "bc1q", Status: TxPending, CreatedAt: at}.AsTransaction()

	assert.Equal(t, TxWithdrawal, tx.Type)
	assert.Equal(t, "w1", tx.ID)
	assert.Equal(t, "btc", tx.CryptoCurrency)
	assert.True(t, tx.CreatedAt.Equal(at))
}
