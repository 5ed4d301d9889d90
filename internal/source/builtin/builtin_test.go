package builtin_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/authdata/authdata/internal/config"
	"github.com/authdata/authdata/internal/source"
	"github.com/authdata/authdata/internal/source/builtin"
)

func TestRegistry(t *testing.T) {
	r := builtin.Registry()
	assert.Equal(t, []string{"ad_oulu", "dreamschool", "ldap", "ldap_test"}, r.Kinds())
}

func TestSampleConfigBinds(t *testing.T) {
	cfg, err := config.ReadConfig("../../../etc")
	require.NoError(t, err)

	bindings, err := builtin.Registry().Bind(&cfg, source.Env{})
	require.NoError(t, err)

	assert.Equal(t, []string{"ad_oulu", "dreamschool", "ldap_test"}, bindings.Names())
	assert.Equal(t, "ad_oulu", bindings.Kind("ad_oulu"))

	s, err := bindings.ForMunicipality("Oulu")
	require.NoError(t, err)
	assert.Equal(t, "ad_oulu", s.Name())
	source.Close(s)
}
