package services

import "errors"

// Error taxonomy for the checkout and payment workflow. Handlers map these
// with errors.Is: validation and conflict surface as 400 with the wrapped
// detail message, not-found as 404, gateway failures as 502.
var (
	// ErrValidation marks malformed or missing input; retrying without
	// changing the input cannot succeed.
	ErrValidation = errors.New("validation failed")

	// ErrConflict marks a request that is well-formed but cannot be
	// satisfied against current state (insufficient stock, invalid
	// variant); the caller must re-choose.
	ErrConflict = errors.New("conflict")

	// ErrNotFound marks a missing record.
	ErrNotFound = errors.New("not found")

	// ErrGateway marks a failure of the external payment processor. The
	// whole checkout is safe to retry explicitly, never silently.
	ErrGateway = errors.New("payment gateway error")

	// ErrBadSignature marks a webhook whose authenticity proof did not
	// verify; no state was changed.
	ErrBadSignature = errors.New("invalid webhook signature")
)
