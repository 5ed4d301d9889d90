// Package config handles input from etc/*.toml files
package config

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

const (
	// EnvConfigJSON names the environment variable holding a JSON config override.
	EnvConfigJSON = "AUTHDATA_CONFIG_JSON"

	// keyDelimiter replaces viper's "." so school names containing dots stay single keys.
	keyDelimiter = "::"

	redacted = "*****"
)

// ReadConfig from config file.
func ReadConfig(path string) (Config, error) {
	var (
		c             Config
		JSONConfigEnv string
		err           error
	)

	// Read main configuration
	if path == "" {
		path = "./etc/"
	}

	v := viper.NewWithOptions(viper.KeyDelimiter(keyDelimiter))
	v.SetConfigFile(filepath.Join(path, "main.toml"))

	if err = v.ReadInConfig(); err != nil {
		return Config{}, errors.Wrap(err, "failed to read main config file")
	}

	if err = v.Unmarshal(&c); err != nil {
		return Config{}, errors.Wrap(err, "failed to decode main config file")
	}

	// override it from env
	JSONConfigEnv = os.Getenv(EnvConfigJSON)

	if JSONConfigEnv != "" {
		c, err = decodeAndMergeConfig(c, JSONConfigEnv)
		if err != nil {
			return c, err
		}
	}

	return c, validate(&c)
}

func decodeAndMergeConfig(c Config, configAsJSON string) (Config, error) {
	err := json.Unmarshal([]byte(configAsJSON), &c)
	if err != nil {
		return Config{}, errors.Wrap(err, "failed to read json config override")
	}

	return c, nil
}

// DumpConfigJSON config as JSON String. Passwords are redacted.
func DumpConfigJSON(c *Config) (string, error) {
	var buffer bytes.Buffer

	out := *c
	out.DB.Password = redact(out.DB.Password)

	out.Sources = make(map[string]Source, len(c.Sources))
	for name, s := range c.Sources {
		s.LDAP.Password = redact(s.LDAP.Password)
		s.HTTP.Password = redact(s.HTTP.Password)
		out.Sources[name] = s
	}

	j := json.NewEncoder(&buffer)
	j.SetIndent("", "  ")

	if err := j.Encode(out); err != nil {
		return "", err //nolint: wrapcheck
	}

	return buffer.String(), nil
}

func redact(s string) string {
	if s == "" {
		return ""
	}

	return redacted
}

// validate minimal config settings.
// Source specific settings are validated by the source registry.
func validate(c *Config) error {
	// validate webserver listening port
	invalidErrMessage := "invalid config"

	if c.Webserver.Port == 0 {
		return errors.Wrap(ErrWebServerPortCanNotBeZero, invalidErrMessage)
	}

	if c.Webserver.URL == "" {
		return errors.Wrap(ErrEmptyURL, invalidErrMessage)
	}

	if c.Webserver.ShutDownTime == 0 {
		c.Webserver.ShutDownTime = 5 // set default of 5 seconds
	}

	normalize(c)

	for name, s := range c.Sources {
		if s.Kind == "" {
			return errors.Wrapf(ErrSourceKindEmpty, "%s: source %q", invalidErrMessage, name)
		}
	}

	for attribute, binding := range c.Bindings.Attributes {
		if _, ok := c.Sources[binding]; !ok {
			return errors.Wrapf(ErrUnknownBindingSource, "%s: attribute %q -> %q", invalidErrMessage, attribute, binding)
		}
	}

	for municipality, binding := range c.Bindings.Municipalities {
		if _, ok := c.Sources[binding]; !ok {
			return errors.Wrapf(ErrUnknownBindingSource, "%s: municipality %q -> %q", invalidErrMessage, municipality, binding)
		}
	}

	return nil
}

// normalize lower cases binding names and binding keys. The TOML loader
// already does so for keys; the JSON override may not.
func normalize(c *Config) {
	sources := make(map[string]Source, len(c.Sources))
	for name, s := range c.Sources {
		sources[strings.ToLower(name)] = s
	}

	c.Sources = sources
	c.Bindings.Attributes = lowerMap(c.Bindings.Attributes)
	c.Bindings.Municipalities = lowerMap(c.Bindings.Municipalities)
}

func lowerMap(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[strings.ToLower(k)] = strings.ToLower(v)
	}

	return out
}
