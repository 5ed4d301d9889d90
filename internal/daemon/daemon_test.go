package daemon

import (
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/authdata/authdata/internal/config"
	"github.com/authdata/authdata/internal/db/dsn"
	"github.com/authdata/authdata/internal/db/models"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()

	return &config.Config{
		Title:     "authdata-test",
		DevMode:   true,
		Webserver: config.Webserver{Port: 8080, URL: "http://localhost", ShutDownTime: 1},
		DB: config.DB{
			GormEngine: dsn.EngineSQLite,
			Name:       filepath.Join(t.TempDir(), "authdata.db"),
		},
		Sources: map[string]config.Source{
			"dreamschool": {
				Kind: "dreamschool",
				HTTP: config.HTTP{APIURL: "https://api.dreamschool.invalid/users/"},
			},
		},
		Bindings: config.Bindings{
			Attributes:     map[string]string{"dreamschool": "dreamschool"},
			Municipalities: map[string]string{"foo": "dreamschool"},
		},
	}
}

func TestNew(t *testing.T) {
	d, err := New(testConfig(t))
	require.NoError(t, err)

	assert.Equal(t, []string{"dreamschool"}, d.Bindings().Names())

	var sources, roles int64
	require.NoError(t, d.db.Model(&models.Source{}).Where("name = ?", models.LocalSourceName).Count(&sources).Error)
	require.NoError(t, d.db.Model(&models.Role{}).Count(&roles).Error)
	assert.Equal(t, int64(1), sources)
	assert.Equal(t, int64(2), roles)

	resp, err := d.webService.App.Test(httptest.NewRequest("GET", "/api/1/query?nobody=1", nil))
	require.NoError(t, err)

	_ = resp.Body.Close()
	assert.Equal(t, 404, resp.StatusCode)
}

func TestSeedIsIdempotent(t *testing.T) {
	cfg := testConfig(t)

	db, err := Open(cfg)
	require.NoError(t, err)

	require.NoError(t, seed(db))
	require.NoError(t, seed(db))

	var roles int64
	require.NoError(t, db.Model(&models.Role{}).Count(&roles).Error)
	assert.Equal(t, int64(2), roles)
}

func TestNewFailsOnBadSource(t *testing.T) {
	cfg := testConfig(t)
	cfg.Sources["broken"] = config.Source{Kind: "no_such_kind"}

	_, err := New(cfg)
	require.Error(t, err)

	_, err = New(nil)
	require.ErrorIs(t, err, ErrConfigNil)
}
