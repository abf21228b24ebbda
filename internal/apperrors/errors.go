// internal/apperrors/errors.go
package apperrors

import "errors"

// Sentinel errors for the core subsystems. Services wrap these with %w so
// callers can classify failures with errors.Is while keeping the underlying
// detail in the message. Handlers map each kind to a distinct HTTP response.
var (
	// ErrNotFound indicates an unknown record id.
	ErrNotFound = errors.New("record not found")

	// ErrInvalidState indicates a transition or mutation attempted from a
	// terminal or otherwise disallowed lifecycle state.
	ErrInvalidState = errors.New("invalid state for operation")

	// ErrAlreadyDecided indicates the caller lost a concurrent review
	// decision race; the first decision's outcome stands.
	ErrAlreadyDecided = errors.New("product already decided")

	// ErrInvalidAttribution indicates attribution weights that exceed 1.0,
	// are negative, or reference an unknown product.
	ErrInvalidAttribution = errors.New("invalid attribution")

	// ErrStaleWrite indicates a check-in whose timestamp is not strictly
	// greater than the patient's latest existing record.
	ErrStaleWrite = errors.New("stale check-in write")

	// ErrEncodingFailure indicates the seal payload could not be mapped onto
	// the silhouette while staying decodable.
	ErrEncodingFailure = errors.New("seal encoding failure")

	// ErrInvalidCredentials indicates a failed login. The message never
	// distinguishes an unknown email from a wrong password.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrAccountSuspended indicates a login against a suspended account.
	ErrAccountSuspended = errors.New("account is suspended")
)
