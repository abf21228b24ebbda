// internal/i18n/i18n_test.go
package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func allKeys() []string {
	return []string{
		KeyAuthRequired,
		KeyAuthInvalidToken,
		KeyAuthTokenExpired,
		KeyAuthInvalidCredentials,
		KeyAuthAccountSuspended,
		KeyAuthRegistered,
		KeyValidationInvalid,
		KeyAdminAccessDenied,
		KeyProductNotFound,
		KeyProductSubmitted,
		KeyProductEnriched,
		KeyProductDecided,
		KeyProductSealInvalid,
		KeyProductSealValid,
		KeyCheckinRecorded,
		KeyCheckinStale,
		KeyCheckinNoneRecorded,
	}
}

func TestBuiltinTableCoversEveryKey(t *testing.T) {
	for _, key := range allKeys() {
		text, ok := builtinEN[key]
		require.True(t, ok, "missing builtin translation for %s", key)
		assert.NotEmpty(t, text, "empty builtin translation for %s", key)
	}
	assert.Len(t, builtinEN, len(allKeys()))
}

func TestTranslateFallsBackToDefaultLanguage(t *testing.T) {
	require.NoError(t, Initialize())

	assert.Equal(t, builtinEN[KeyCheckinStale], T("en", KeyCheckinStale))
	// Unknown language falls back to English.
	assert.Equal(t, builtinEN[KeyProductSealInvalid], T("fr", KeyProductSealInvalid))
	// Unknown keys come back verbatim.
	assert.Equal(t, "no.such.key", T("en", "no.such.key"))
}

func TestTranslateFormatsArgs(t *testing.T) {
	require.NoError(t, Initialize())

	assert.Equal(t, "Invalid input", T("en", KeyValidationInvalid, "input"))
}
