package engine

import "errors"

var (
	// ErrUnauthorized is returned when the caller lacks the role a
	// privileged operation requires.
	ErrUnauthorized = errors.New("caller not authorized")

	// ErrDuplicateSymbol is returned when a collector symbol is already registered.
	ErrDuplicateSymbol = errors.New("collector symbol already registered")

	// ErrInvalidDecimals is returned when a collector's precision exceeds
	// the native currency's 18 decimals.
	ErrInvalidDecimals = errors.New("collector decimals above native precision")

	// ErrNotFound is returned by lookups with an out-of-range or unknown key.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyMapped is returned when a direct funding mapping would bind
	// an address or a funder id that is already bound elsewhere.
	ErrAlreadyMapped = errors.New("direct mapping already exists")

	// ErrWindowClosed is returned for native payments outside the sale interval.
	ErrWindowClosed = errors.New("funding window closed")

	// ErrUnauthorizedFunder is returned for native payments from a sender
	// without a direct funding mapping.
	ErrUnauthorizedFunder = errors.New("sender has no direct funding mapping")

	// ErrBelowMinimum is returned for native payments under the minimum contribution.
	ErrBelowMinimum = errors.New("contribution below minimum")

	// ErrInvalidCollector is returned when an order references an unknown collector index.
	ErrInvalidCollector = errors.New("unknown collector index")

	// ErrZeroAmount is returned when an order is submitted with a non-positive amount.
	ErrZeroAmount = errors.New("order amount must be positive")

	// ErrAlreadyResolved rejects a duplicate or replayed quote callback for
	// an order that has already been finalized.
	ErrAlreadyResolved = errors.New("order already resolved")

	// ErrUnknownRequest rejects a quote callback whose request id was never issued.
	ErrUnknownRequest = errors.New("unknown quote request")

	// ErrInvalidQuote rejects a callback carrying a non-positive rate; a
	// zero quote is the pending sentinel and can never mark resolution.
	ErrInvalidQuote = errors.New("quote rate must be positive")
)
