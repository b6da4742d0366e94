package api

import "errors"

var (
	// ErrInvalidResponse indicates a 2xx response whose body could not be decoded.
	ErrInvalidResponse = errors.New("invalid response from server")

	// ErrMissingID indicates a create call succeeded without returning an id.
	ErrMissingID = errors.New("server response carried no id")
)
