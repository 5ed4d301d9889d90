package config

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func configDir(t *testing.T) string {
	t.Helper()

	// Get the project root by going up from internal/config
	projectRoot, err := filepath.Abs("../../")
	require.NoError(t, err, "failed to get project root")

	return filepath.Join(projectRoot, "etc") + string(filepath.Separator)
}

func TestReadConfig(t *testing.T) {
	cfg, err := ReadConfig(configDir(t))
	require.NoError(t, err)

	assert.NotEmpty(t, cfg.Title)
	assert.NotZero(t, cfg.Webserver.Port)
	assert.NotEmpty(t, cfg.Webserver.URL)
	assert.Equal(t, "sqlite", cfg.DB.GormEngine)

	require.Contains(t, cfg.Sources, "ldap_test")
	assert.Equal(t, "ldap_test", cfg.Sources["ldap_test"].Kind)
	assert.Equal(t, "ou=KuntaYksi,dc=mpass-test,dc=csc,dc=fi", cfg.Sources["ldap_test"].LDAP.BaseDN)

	require.Contains(t, cfg.Sources, "dreamschool")
	orgs := cfg.Sources["dreamschool"].HTTP.OrganisationMap
	require.Contains(t, orgs, "bar")
	assert.Equal(t, 3, orgs["bar"]["school1"])
	assert.Equal(t, 1, orgs["bar"]["äö school"])

	assert.Equal(t, "ad_oulu", cfg.Bindings.Attributes["oulu"])
	assert.Equal(t, "dreamschool", cfg.Bindings.Municipalities["bar"])
	assert.Equal(t, "ldap_test", cfg.Bindings.Municipalities["kuntayksi"])
}

func TestConfigValidation(t *testing.T) {
	webserver := Webserver{Port: 8080, URL: "http://localhost:8080"}

	tests := []struct {
		name    string
		config  Config
		wantErr error
	}{
		{
			name:   "valid config",
			config: Config{Webserver: webserver},
		},
		{
			name:    "missing port",
			config:  Config{Webserver: Webserver{URL: "http://localhost:8080"}},
			wantErr: ErrWebServerPortCanNotBeZero,
		},
		{
			name:    "missing URL",
			config:  Config{Webserver: Webserver{Port: 8080}},
			wantErr: ErrEmptyURL,
		},
		{
			name: "source without kind",
			config: Config{
				Webserver: webserver,
				Sources:   map[string]Source{"x": {}},
			},
			wantErr: ErrSourceKindEmpty,
		},
		{
			name: "attribute bound to unknown source",
			config: Config{
				Webserver: webserver,
				Bindings:  Bindings{Attributes: map[string]string{"uid": "missing"}},
			},
			wantErr: ErrUnknownBindingSource,
		},
		{
			name: "municipality bound to unknown source",
			config: Config{
				Webserver: webserver,
				Sources:   map[string]Source{"ldap": {Kind: "ldap"}},
				Bindings:  Bindings{Municipalities: map[string]string{"Oulu": "other"}},
			},
			wantErr: ErrUnknownBindingSource,
		},
		{
			name: "binding names are case insensitive",
			config: Config{
				Webserver: webserver,
				Sources:   map[string]Source{"LDAP": {Kind: "ldap"}},
				Bindings:  Bindings{Municipalities: map[string]string{"Oulu": "Ldap"}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validate(&tt.config)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, 5, tt.config.Webserver.ShutDownTime)
		})
	}
}

func TestReadConfigWithJSONOverride(t *testing.T) {
	// Set JSON override environment variable
	jsonOverride := `{"Title":"Test Override","Webserver":{"Port":9090},"Bindings":{"Attributes":{"Extra":"DREAMSCHOOL"}}}`
	t.Setenv(EnvConfigJSON, jsonOverride)

	cfg, err := ReadConfig(configDir(t))
	require.NoError(t, err)

	assert.Equal(t, "Test Override", cfg.Title)
	assert.Equal(t, 9090, cfg.Webserver.Port)
	assert.Equal(t, "dreamschool", cfg.Bindings.Attributes["extra"])
	// merged, not replaced
	assert.Equal(t, "ldap_test", cfg.Bindings.Attributes["ldap_test"])
}

func TestReadConfigMissingFile(t *testing.T) {
	_, err := ReadConfig(t.TempDir())
	require.Error(t, err)
}

func TestDumpConfigJSONRedactsPasswords(t *testing.T) {
	cfg := Config{
		Title: "Test",
		DB:    DB{Password: "db-secret"},
		Sources: map[string]Source{
			"ldap": {Kind: "ldap", LDAP: LDAP{Password: "ldap-secret"}},
			"api":  {Kind: "dreamschool", HTTP: HTTP{Password: "api-secret"}},
		},
	}

	jsonStr, err := DumpConfigJSON(&cfg)
	require.NoError(t, err)

	assert.True(t, strings.Contains(jsonStr, "Test"))
	assert.NotContains(t, jsonStr, "secret")
	assert.Contains(t, jsonStr, redacted)

	// the input is left untouched
	assert.Equal(t, "ldap-secret", cfg.Sources["ldap"].LDAP.Password)
}
