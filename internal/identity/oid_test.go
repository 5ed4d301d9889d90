package identity

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOIDGenerator(t *testing.T) {
	testCases := []struct {
		name          string
		salt          string
		maxLength     int
		expectedError error
	}{
		{name: "no truncation", salt: "ldap_test", maxLength: 0},
		{name: "truncated", salt: "ldap_test", maxLength: 30},
		{name: "empty salt", salt: "", expectedError: ErrEmptySalt},
		{name: "length shorter than prefix", salt: "x", maxLength: len(OIDPrefix), expectedError: ErrMaxLengthTooShort},
		{name: "negative length", salt: "x", maxLength: -1, expectedError: ErrMaxLengthTooShort},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewOIDGenerator(tc.salt, tc.maxLength)
			if tc.expectedError != nil {
				require.ErrorIs(t, err, tc.expectedError)
				return
			}

			require.NoError(t, err)
		})
	}
}

func TestOIDIsDeterministic(t *testing.T) {
	gen, err := NewOIDGenerator("ldap_test", 0)
	require.NoError(t, err)

	assert.Equal(t, gen.OID("bar"), gen.OID("bar"))
	assert.Equal(t, "MPASSOID.c38029f36d3aebd850cfbb509e2a3dd29259ef11", gen.OID("bar"))

	// a second generator with the same settings, as after a restart
	again, err := NewOIDGenerator("ldap_test", 0)
	require.NoError(t, err)
	assert.Equal(t, gen.OID("bar"), again.OID("bar"))
}

func TestOIDIsNamespacedBySalt(t *testing.T) {
	ldapGen, err := NewOIDGenerator("ldap_test", 0)
	require.NoError(t, err)

	adGen, err := NewOIDGenerator("ad_oulu", 0)
	require.NoError(t, err)

	assert.NotEqual(t, ldapGen.OID("bar"), adGen.OID("bar"))
	assert.Equal(t, "MPASSOID.24e97e99f8bb614417408a71efbeb7c789b8d17e", adGen.OID("bar"))
}

func TestOIDFormat(t *testing.T) {
	full, err := NewOIDGenerator("dreamschool", 0)
	require.NoError(t, err)

	oid := full.OID("user")
	assert.True(t, strings.HasPrefix(oid, OIDPrefix))
	assert.Len(t, oid, len(OIDPrefix)+40)

	truncated, err := NewOIDGenerator("dreamschool", 30)
	require.NoError(t, err)

	short := truncated.OID("user")
	assert.Len(t, short, 30)
	assert.True(t, strings.HasPrefix(short, OIDPrefix))
	assert.Equal(t, oid[:30], short)
	assert.Equal(t, "dreamschool", truncated.Salt())
}
