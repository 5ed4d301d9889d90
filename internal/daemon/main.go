// Package daemon wires the store, the source registry, the resolver and the web service.
package daemon

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/authdata/authdata/internal/config"
	"github.com/authdata/authdata/internal/db/dsn"
	"github.com/authdata/authdata/internal/db/models"
	"github.com/authdata/authdata/internal/logger/adapter/stdlogger"
	"github.com/authdata/authdata/internal/provision"
	"github.com/authdata/authdata/internal/resolver"
	"github.com/authdata/authdata/internal/source"
	"github.com/authdata/authdata/internal/source/builtin"
	"github.com/authdata/authdata/internal/web"
)

const slowQueryThreshold = 200 * time.Millisecond

// Daemon represents the main application daemon.
type Daemon struct {
	cfg        *config.Config
	db         *gorm.DB
	bindings   *source.Bindings
	webService *web.Service
}

// Start serves the API until the listener stops.
func (d *Daemon) Start() error {
	return d.webService.Start(net.JoinHostPort(d.cfg.Webserver.Domain, strconv.Itoa(d.cfg.Webserver.Port)))
}

// WaitShutdown blocks until the process is signalled and stops the web service.
func (d *Daemon) WaitShutdown() {
	d.webService.WaitShutdown()
}

// Bindings returns the validated source bindings.
func (d *Daemon) Bindings() *source.Bindings {
	return d.bindings
}

// New opens and migrates the store, validates every configured source and
// builds the web service. Nothing is dialed yet.
func New(cfg *config.Config) (*Daemon, error) {
	if cfg == nil {
		return nil, ErrConfigNil
	}

	db, err := Open(cfg)
	if err != nil {
		return nil, err
	}

	if err = seed(db); err != nil {
		return nil, err
	}

	bindings, err := builtin.Registry().Bind(cfg, source.Env{Provisioner: provision.New(db)})
	if err != nil {
		return nil, fmt.Errorf("failed to bind sources: %w", err)
	}

	for _, name := range bindings.Names() {
		log.Info().Str("source", name).Str("kind", bindings.Kind(name)).Msg("source bound")
	}

	return &Daemon{
		cfg:        cfg,
		db:         db,
		bindings:   bindings,
		webService: web.New(cfg, resolver.New(db, bindings)),
	}, nil
}

// Open connects to the configured database and migrates the schema.
func Open(cfg *config.Config) (*gorm.DB, error) {
	dialector, err := dsn.Dialector(cfg)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.New(stdlogger.New().WithComponent("gorm"), gormlogger.Config{
			SlowThreshold:             slowQueryThreshold,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	if err = db.AutoMigrate(models.All()...); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return db, nil
}
