// Package provision persists identities resolved from external sources into
// the local store so they stay addressable by OID.
package provision

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/authdata/authdata/internal/db/models"
)

var (
	// ErrOIDEmpty is returned when provisioning without an OID.
	ErrOIDEmpty = errors.New("oid cannot be empty")
	// ErrExternalSourceEmpty is returned when provisioning without a source binding name.
	ErrExternalSourceEmpty = errors.New("external source cannot be empty")
)

// Service writes provisioned users. It is the only write path from the
// source adapters into the store.
type Service struct {
	db *gorm.DB
}

// New creates a provisioning service.
func New(db *gorm.DB) *Service {
	return &Service{db: db}
}

// ProvisionUser get-or-creates the user keyed by oid, points it at
// externalSource/externalID (last write wins) and records externalID as the
// active attribute named externalSource, owned by the local source.
// Repeated calls for the same oid never create duplicate rows.
func (s *Service) ProvisionUser(ctx context.Context, oid, externalID, externalSource string) error {
	if oid == "" {
		return ErrOIDEmpty
	}

	if externalSource == "" {
		return ErrExternalSourceEmpty
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user, err := upsertUser(tx, oid, externalID, externalSource)
		if err != nil {
			return err
		}

		local, err := EnsureSource(tx, models.LocalSourceName)
		if err != nil {
			return err
		}

		attribute, err := ensureAttribute(tx, externalSource)
		if err != nil {
			return err
		}

		return upsertUserAttribute(tx, user, attribute, local, externalID)
	})
	if err != nil {
		return fmt.Errorf("failed to provision user %s: %w", oid, err)
	}

	log.Debug().
		Str("oid", oid).
		Str("external_source", externalSource).
		Str("external_id", externalID).
		Msg("user provisioned")

	return nil
}

func upsertUser(tx *gorm.DB, oid, externalID, externalSource string) (*models.User, error) {
	user := models.User{
		Username:       oid,
		ExternalSource: externalSource,
		ExternalID:     externalID,
	}

	err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "username"}},
		DoUpdates: clause.AssignmentColumns([]string{"external_source", "external_id", "updated_at"}),
	}).Create(&user).Error
	if err != nil {
		return nil, fmt.Errorf("failed to upsert user: %w", err)
	}

	// the conflict path does not reliably return the primary key
	if err = tx.Where("username = ?", oid).First(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to reload user: %w", err)
	}

	return &user, nil
}

// EnsureSource get-or-creates the data source tag called name.
func EnsureSource(tx *gorm.DB, name string) (*models.Source, error) {
	source := models.Source{Name: name}

	if err := ensureNamed(tx, &source, name); err != nil {
		return nil, fmt.Errorf("failed to create/get source %s: %w", name, err)
	}

	return &source, nil
}

func ensureAttribute(tx *gorm.DB, name string) (*models.Attribute, error) {
	attribute := models.Attribute{Name: name}

	if err := ensureNamed(tx, &attribute, name); err != nil {
		return nil, fmt.Errorf("failed to create/get attribute %s: %w", name, err)
	}

	return &attribute, nil
}

// ensureNamed inserts row unless a row with the same unique name exists, then
// loads the stored row into it. Concurrent writers inserting the same name
// both end up with the one stored row.
func ensureNamed[T any](tx *gorm.DB, row *T, name string) error {
	err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoNothing: true,
	}).Create(row).Error
	if err != nil {
		return err //nolint:wrapcheck
	}

	var stored T
	if err = tx.Where("name = ?", name).First(&stored).Error; err != nil {
		return err //nolint:wrapcheck
	}

	*row = stored

	return nil
}

func upsertUserAttribute(
	tx *gorm.DB,
	user *models.User,
	attribute *models.Attribute,
	source *models.Source,
	value string,
) error {
	var row models.UserAttribute

	err := tx.Where("user_id = ? AND attribute_id = ? AND disabled_at IS NULL", user.ID, attribute.ID).
		Order("id").
		First(&row).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		row = models.UserAttribute{
			UserID:      user.ID,
			AttributeID: attribute.ID,
			SourceID:    source.ID,
			Value:       value,
		}

		if err = tx.Create(&row).Error; err != nil {
			return fmt.Errorf("failed to create user attribute: %w", err)
		}

		return nil
	}

	if err != nil {
		return fmt.Errorf("failed to query user attribute: %w", err)
	}

	if err = tx.Model(&row).Updates(map[string]any{"value": value, "source_id": source.ID}).Error; err != nil {
		return fmt.Errorf("failed to update user attribute: %w", err)
	}

	return nil
}
