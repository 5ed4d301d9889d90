// Package dsn builds database connection strings and gorm dialectors from the configuration.
package dsn

import (
	"errors"
	"fmt"
	"strings"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/authdata/authdata/internal/config"
)

const (
	// EngineMySQL selects the mysql driver.
	EngineMySQL = "mysql"
	// EnginePostgres selects the postgres driver.
	EnginePostgres = "postgres"
	// EngineSQLite selects the pure go sqlite driver.
	EngineSQLite = "sqlite"
)

// ErrUnsupportedEngine is returned for an unknown DB.GormEngine.
var ErrUnsupportedEngine = errors.New("unsupported gorm engine")

// Create builds the mysql Data Source Name from the configuration.
func Create(cfg *config.Config) string {
	out := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s",
		cfg.DB.User,
		cfg.DB.Password,
		cfg.DB.Host,
		cfg.DB.Port,
		cfg.DB.Name,
	)

	if cfg.DB.Extras != "" {
		out += "?" + cfg.DB.Extras
	}

	return out
}

// Postgres builds a key=value postgres connection string.
func Postgres(cfg *config.Config) string {
	parts := []string{
		"host=" + cfg.DB.Host,
		"user=" + cfg.DB.User,
		"password=" + cfg.DB.Password,
		"dbname=" + cfg.DB.Name,
	}

	if cfg.DB.Port != 0 {
		parts = append(parts, fmt.Sprintf("port=%d", cfg.DB.Port))
	}

	if cfg.DB.Extras != "" {
		parts = append(parts, cfg.DB.Extras)
	}

	return strings.Join(parts, " ")
}

// Dialector returns the gorm dialector for the configured engine.
// An empty engine defaults to mysql.
func Dialector(cfg *config.Config) (gorm.Dialector, error) {
	switch strings.ToLower(cfg.DB.GormEngine) {
	case "", EngineMySQL:
		return mysql.Open(Create(cfg)), nil
	case EnginePostgres:
		return postgres.Open(Postgres(cfg)), nil
	case EngineSQLite:
		return sqlite.Open(cfg.DB.Name), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedEngine, cfg.DB.GormEngine)
	}
}
