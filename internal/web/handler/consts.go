package handler

import "errors"

const (
	// APIPath is the prefix of all API routes.
	APIPath = "/api/1"

	// RouterRootPath is the root path of a route group.
	RouterRootPath = "/"
)

// ErrNilDependency is returned by Init if app, cfg or resolver is nil.
var ErrNilDependency = errors.New("app, cfg or resolver is nil")
