package config

import (
	"github.com/authdata/authdata/internal/logger"
)

// Config overall data structure.
type Config struct {
	DevMode   bool // enable dev mode for development
	DB        DB
	Log       logger.Log
	Title     string
	Webserver Webserver

	// Sources maps a binding name to the external source configured under it.
	Sources map[string]Source
	// Bindings route query attributes and municipalities to sources.
	Bindings Bindings
}

// Webserver implement webserver settings.
type Webserver struct {
	DisableRecover bool   // disable recover middleware
	Domain         string // listen host, empty listens on all interfaces
	Port           int    // listening port for the webserver
	ShutDownTime   int    // wait time for shutdown
	URL            string // base url for the webserver
}

// Bindings associates recognized names with source binding names.
type Bindings struct {
	// Attributes maps a query attribute name to a binding name.
	Attributes map[string]string
	// Municipalities maps a municipality name to a binding name.
	Municipalities map[string]string
}
