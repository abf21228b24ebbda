// internal/i18n/keys.go
package i18n

// Translation keys. The builtin English table in i18n.go must carry every
// key listed here.
const (
	// Auth
	KeyAuthRequired           = "auth.required"
	KeyAuthInvalidToken       = "auth.invalid_token"
	KeyAuthTokenExpired       = "auth.token_expired"
	KeyAuthInvalidCredentials = "auth.invalid_credentials"
	KeyAuthAccountSuspended   = "auth.account_suspended"
	KeyAuthRegistered         = "auth.registered"

	// Validation
	KeyValidationInvalid = "validation.invalid"

	// Admin
	KeyAdminAccessDenied = "admin.access_denied"

	// Products
	KeyProductNotFound    = "product.not_found"
	KeyProductSubmitted   = "product.submitted"
	KeyProductEnriched    = "product.enriched"
	KeyProductDecided     = "product.decided"
	KeyProductSealInvalid = "product.seal_invalid"
	KeyProductSealValid   = "product.seal_valid"

	// Check-ins
	KeyCheckinRecorded     = "checkin.recorded"
	KeyCheckinStale        = "checkin.stale"
	KeyCheckinNoneRecorded = "checkin.none_recorded"
)
