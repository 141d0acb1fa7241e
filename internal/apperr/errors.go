// Package apperr defines the error taxonomy shared by repositories, services
// and HTTP handlers. Lower layers wrap these sentinels with fmt.Errorf("%w")
// and callers classify with errors.Is; handlers decide the status code per
// endpoint and never echo the wrapped detail back to the client.
package apperr

import "errors"

var (
	// ErrConflict signals a duplicate unique key (e.g. an email already registered).
	ErrConflict = errors.New("conflict")

	// ErrNotFound signals that no matching account exists.
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized signals a credential or token mismatch.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrBadRequest signals malformed input or a wrong verification code.
	ErrBadRequest = errors.New("bad request")

	// ErrGateway signals that the AI backend failed or is unavailable.
	ErrGateway = errors.New("gateway error")

	// ErrGatewayTimeout signals that the AI backend did not answer in time.
	// Callers may retry.
	ErrGatewayTimeout = errors.New("gateway timeout")

	// ErrGatewayUnconfigured signals that no AI credential is configured.
	ErrGatewayUnconfigured = errors.New("gateway unconfigured")

	// ErrInternal covers storage and other unexpected failures.
	ErrInternal = errors.New("internal error")
)

// Retryable reports whether err is worth retrying by the caller.
func Retryable(err error) bool {
	return errors.Is(err, ErrGatewayTimeout)
}
