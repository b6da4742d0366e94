package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates a lookup (plan type, wallet symbol, transaction id) had no match.
	ErrNotFound = errors.New("not found")

	// ErrAuth indicates a missing, expired or rejected bearer token.
	ErrAuth = errors.New("authentication required")

	// ErrNetwork indicates a transport failure; the same operation may be retried.
	ErrNetwork = errors.New("network error")

	// ErrStaleWallet indicates the selected wallet is no longer active.
	ErrStaleWallet = errors.New("selected wallet is no longer available")

	// ErrExpiryRace indicates a payment confirmation after the payment window closed.
	ErrExpiryRace = errors.New("payment window has expired")

	// ErrNoPaymentOptions indicates the wallet directory has no active wallets.
	ErrNoPaymentOptions = errors.New("no payment options available")

	// ErrInvalidTransition indicates an operation is not valid in the current state.
	ErrInvalidTransition = errors.New("invalid state transition")

	// ErrBusy indicates an identical request is already in flight.
	ErrBusy = errors.New("request already in progress")

	// ErrAlreadyDecided indicates a transaction has already left Pending.
	ErrAlreadyDecided = errors.New("transaction already decided")
)

// ValidationError is a local, pre-network rejection. It never reaches the server.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// ServerRejection carries a non-2xx response and its verbatim {message}.
type ServerRejection struct {
	Status  int
	Message string
}

func (e *ServerRejection) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server rejected request (status %d)", e.Status)
	}
	return e.Message
}

// NetworkError wraps a transport failure. errors.Is(err, ErrNetwork) holds.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() []error { return []error{ErrNetwork, e.Err} }

// UserMessage returns text suitable for the person at the terminal: the server
// message verbatim when there is one, otherwise fallback.
func UserMessage(err error, fallback string) string {
	if err == nil {
		return ""
	}
	var rej *ServerRejection
	if errors.As(err, &rej) && rej.Message != "" {
		return rej.Message
	}
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr.Error()
	}
	for _, known := range []error{ErrAuth, ErrStaleWallet, ErrExpiryRace, ErrNoPaymentOptions, ErrBusy, ErrAlreadyDecided} {
		if errors.Is(err, known) {
			return known.Error()
		}
	}
	return fallback
}
