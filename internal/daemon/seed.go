package daemon

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/authdata/authdata/internal/db/models"
	"github.com/authdata/authdata/internal/identity"
	"github.com/authdata/authdata/internal/provision"
)

// ErrConfigNil is returned by New without a configuration.
var ErrConfigNil = errors.New("config is nil")

// seed ensures the local data source tag and the two role names exist.
func seed(db *gorm.DB) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if _, err := provision.EnsureSource(tx, models.LocalSourceName); err != nil {
			return err
		}

		for _, name := range []string{identity.RoleTeacher, identity.RoleStudent} {
			var role models.Role
			if err := tx.Where("name = ?", name).FirstOrCreate(&role, models.Role{Name: name}).Error; err != nil {
				return fmt.Errorf("failed to seed role %s: %w", name, err)
			}
		}

		return nil
	})
}
