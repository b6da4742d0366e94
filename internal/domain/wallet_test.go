package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWallet_IconFallback(t *testing.T) {
	assert.Equal(t, "https://example.com/x.png", Wallet{Symbol: "BTC", IconURL: "https://example.com/x.png"}.Icon())
	assert.Contains(t, Wallet{Symbol: "eth"}.Icon(), "ethereum-eth-logo")
	assert.Equal(t, defaultIconURL, Wallet{Symbol: "ZZZ"}.Icon())
}

func TestMaskAddress(t *testing.T) {
	assert.Equal(t, "bc1qxy...0wlh", MaskAddress("bc1qxy2kgdygjrsqtzq2n0yrf2493p83kkfjhx0wlh"))
	assert.Equal(t, "short", MaskAddress("short"))
}

func TestWallet_Validate(t *testing.T) {
	w := Wallet{Name: "Bitcoin", Symbol: "btc", Network: "Bitcoin", Address: "bc1q"}
	assert.NoError(t, w.Validate())

	w.Network = ""
	assert.ErrorContains(t, w.Validate(), "network")
}
