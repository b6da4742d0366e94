package api

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/gnfinvest/gnf/internal/domain"
	"github.com/shopspring/decimal"
)

// ref is a Mongo reference that may arrive either as a bare id string or as a
// populated object.
type ref struct {
	ID       string `json:"_id"`
	Type     string `json:"type"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

func (r *ref) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &r.ID)
	}
	type plain ref
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*r = ref(p)
	return nil
}

type wireTransaction struct {
	ID             string              `json:"_id"`
	Type           string              `json:"type"`
	Status         string              `json:"status"`
	Amount         decimal.NullDecimal `json:"amount"`
	Plan           *ref                `json:"plan"`
	User           *ref                `json:"user"`
	CryptoCurrency string              `json:"cryptoCurrency"`
	WalletAddress  string              `json:"walletAddress"`
	CreatedAt      time.Time           `json:"createdAt"`
}

func (w wireTransaction) toDomain() domain.Transaction {
	tx := domain.Transaction{
		ID:             w.ID,
		Type:           parseType(w.Type),
		Status:         parseStatus(w.Status),
		Amount:         w.Amount.Decimal,
		CryptoCurrency: w.CryptoCurrency,
		WalletAddress:  w.WalletAddress,
		CreatedAt:      w.CreatedAt,
	}
	if w.Plan != nil {
		tx.PlanType = w.Plan.Type
	}
	if w.User != nil {
		tx.UserID = w.User.ID
		tx.UserName = w.User.Username
		tx.UserEmail = w.User.Email
	}
	return tx
}

type wireActivation struct {
	ID        string              `json:"_id"`
	Type      string              `json:"type"`
	Amount    decimal.NullDecimal `json:"amount"`
	ROI       decimal.NullDecimal `json:"roi"`
	Status    string              `json:"status"`
	User      *ref                `json:"user"`
	CreatedAt time.Time           `json:"createdAt"`
	ExpiresAt *time.Time          `json:"expiresAt"`
}

func (w wireActivation) toDomain() domain.PlanActivation {
	a := domain.PlanActivation{
		ID:        w.ID,
		PlanType:  w.Type,
		Amount:    w.Amount.Decimal,
		ROI:       w.ROI.Decimal,
		Status:    domain.ActivationStatus(w.Status),
		CreatedAt: w.CreatedAt,
	}
	if w.User != nil {
		a.UserID = w.User.ID
	}
	if w.ExpiresAt != nil {
		a.ExpiresAt = *w.ExpiresAt
	}
	return a
}

// activationRequest mirrors the package card posted by the dashboard.
type activationRequest struct {
	Type             string      `json:"type"`
	Amount           json.Number `json:"amount"`
	ROI              json.Number `json:"roi"`
	WithdrawalPeriod string      `json:"withdrawalPeriod"`
	Description      string      `json:"description,omitempty"`
	Icon             string      `json:"icon,omitempty"`
	RiskLevel        string      `json:"riskLevel"`
}

// activationResponse accepts both {_id} and {plan: {_id}}.
type activationResponse struct {
	wireActivation
	Plan *wireActivation `json:"plan"`
}

type wireWallet struct {
	ID              string `json:"_id"`
	Name            string `json:"name"`
	Symbol          string `json:"symbol"`
	Network         string `json:"network"`
	ContractAddress string `json:"contractAddress"`
	WalletAddress   string `json:"walletAddress"`
	IsActive        *bool  `json:"isActive"`
	IconURL         string `json:"iconUrl"`
}

func (w wireWallet) toDomain() domain.Wallet {
	active := true
	if w.IsActive != nil {
		active = *w.IsActive
	}
	return domain.Wallet{
		ID:              w.ID,
		Symbol:          domain.NormalizeSymbol(w.Symbol),
		Name:            w.Name,
		Network:         w.Network,
		Address:         w.WalletAddress,
		ContractAddress: w.ContractAddress,
		IsActive:        active,
		IconURL:         w.IconURL,
	}
}

func walletToWire(w domain.Wallet) wireWallet {
	active := w.IsActive
	return wireWallet{
		Name:            strings.TrimSpace(w.Name),
		Symbol:          domain.NormalizeSymbol(w.Symbol),
		Network:         strings.TrimSpace(w.Network),
		ContractAddress: strings.TrimSpace(w.ContractAddress),
		WalletAddress:   strings.TrimSpace(w.Address),
		IsActive:        &active,
		IconURL:         w.Icon(),
	}
}

type wireWithdrawal struct {
	ID             string              `json:"_id"`
	Amount         decimal.NullDecimal `json:"amount"`
	CryptoCurrency string              `json:"cryptoCurrency"`
	WalletAddress  string              `json:"walletAddress"`
	Status         string              `json:"status"`
	CreatedAt      time.Time           `json:"createdAt"`
}

func (w wireWithdrawal) toDomain() domain.Withdrawal {
	return domain.Withdrawal{
		ID:             w.ID,
		Amount:         w.Amount.Decimal,
		CryptoCurrency: w.CryptoCurrency,
		WalletAddress:  w.WalletAddress,
		Status:         parseStatus(w.Status),
		CreatedAt:      w.CreatedAt,
	}
}

type withdrawalRequest struct {
	Amount         json.Number `json:"amount"`
	CryptoCurrency string      `json:"cryptoCurrency"`
	WalletAddress  string      `json:"walletAddress"`
}

type wireUser struct {
	ID        string    `json:"_id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	CreatedAt time.Time `json:"createdAt"`
}

func (w wireUser) toDomain() domain.User {
	return domain.User{
		ID:        w.ID,
		Username:  w.Username,
		Email:     w.Email,
		FirstName: w.FirstName,
		LastName:  w.LastName,
		CreatedAt: w.CreatedAt,
	}
}

type tokenResponse struct {
	Token string    `json:"token"`
	User  *wireUser `json:"user"`
}

func parseStatus(s string) domain.TransactionStatus {
	if st, ok := domain.ParseTransactionStatus(s); ok {
		return st
	}
	return domain.TransactionStatus(s)
}

func parseType(s string) domain.TransactionType {
	if t, ok := domain.ParseTransactionType(s); ok {
		return t
	}
	return domain.TransactionType(s)
}

func number(d decimal.Decimal) json.Number {
	return json.Number(d.String())
}
