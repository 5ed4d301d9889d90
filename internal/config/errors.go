package config

import (
	"errors"
)

var (
	// ErrEmptyURL error if config webserver.URL is empty.
	ErrEmptyURL = errors.New("toml config webserver.url can not be empty")

	// ErrWebServerPortCanNotBeZero error if config webserver listening port is 0.
	ErrWebServerPortCanNotBeZero = errors.New("toml config webserver.port listening port can not be 0")

	// ErrSourceKindEmpty error if a configured source has no kind.
	ErrSourceKindEmpty = errors.New("toml config source kind can not be empty")

	// ErrUnknownBindingSource error if a binding points to a source that is not configured.
	ErrUnknownBindingSource = errors.New("toml config binding points to an unknown source")
)
