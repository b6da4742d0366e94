package domain

import "strings"

// Wallet is an admin-managed payment destination.
type Wallet struct {
	ID              string
	Symbol          string
	Name            string
	Network         string
	Address         string
	ContractAddress string
	IsActive        bool
	IconURL         string
}

const defaultIconURL = "https://www.cryptologos.cc/logos/question-mark-white.png"

var walletIcons = map[string]string{
	"BTC":   "https://www.cryptologos.cc/logos/bitcoin-btc-logo.png",
	"ETH":   "https://www.cryptologos.cc/logos/ethereum-eth-logo.png",
	"USDT":  "https://www.cryptologos.cc/logos/tether-usdt-logo.png",
	"BNB":   "https://www.cryptologos.cc/logos/bnb-bnb-logo.png",
	"USDC":  "https://www.cryptologos.cc/logos/usd-coin-usdc-logo.png",
	"XRP":   "https://www.cryptologos.cc/logos/xrp-xrp-logo.png",
	"ADA":   "https://www.cryptologos.cc/logos/cardano-ada-logo.png",
	"DOGE":  "https://www.cryptologos.cc/logos/dogecoin-doge-logo.png",
	"MATIC": "https://www.cryptologos.cc/logos/polygon-matic-logo.png",
	"SOL":   "https://www.cryptologos.cc/logos/solana-sol-logo.png",
	"DOT":   "https://www.cryptologos.cc/logos/polkadot-new-dot-logo.png",
	"LTC":   "https://www.cryptologos.cc/logos/litecoin-ltc-logo.png",
	"SHIB":  "https://www.cryptologos.cc/logos/shiba-inu-shib-logo.png",
	"AVAX":  "https://www.cryptologos.cc/logos/avalanche-avax-logo.png",
	"LINK":  "https://www.cryptologos.cc/logos/chainlink-link-logo.png",
	"UNI":   "https://www.cryptologos.cc/logos/uniswap-uni-logo.png",
	"BCH":   "https://www.cryptologos.cc/logos/bitcoin-cash-bch-logo.png",
	"XLM":   "https://www.cryptologos.cc/logos/stellar-xlm-logo.png",
	"VET":   "https://www.cryptologos.cc/logos/vechain-vet-logo.png",
}

// NormalizeSymbol upper-cases and trims a currency symbol.
func NormalizeSymbol(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// Icon returns IconURL, or the well-known logo for the symbol when unset.
func (w Wallet) Icon() string {
	if w.IconURL != "" {
		return w.IconURL
	}
	if u, ok := walletIcons[NormalizeSymbol(w.Symbol)]; ok {
		return u
	}
	return defaultIconURL
}

// MaskedAddress shortens the address to its first 6 and last 4 characters.
func (w Wallet) MaskedAddress() string {
	return MaskAddress(w.Address)
}

// MaskAddress shortens a wallet address for table display.
func MaskAddress(addr string) string {
	if len(addr) <= 12 {
		return addr
	}
	return addr[:6] + "..." + addr[len(addr)-4:]
}

// Validate checks the fields an admin must supply when creating or editing a wallet.
func (w Wallet) Validate() error {
	switch {
	case strings.TrimSpace(w.Name) == "":
		return &ValidationError{Field: "name", Reason: "is required"}
	case NormalizeSymbol(w.Symbol) == "":
		return &ValidationError{Field: "symbol", Reason: "is required"}
	case strings.TrimSpace(w.Network) == "":
		return &ValidationError{Field: "network", Reason: "is required"}
	case strings.TrimSpace(w.Address) == "":
		return &ValidationError{Field: "wallet address", Reason: "is required"}
	}
	return nil
}
