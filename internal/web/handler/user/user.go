// Package user serves the user listing and the user attribute soft delete.
package user

import (
	"strconv"

	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog/log"

	"github.com/authdata/authdata/internal/config"
	"github.com/authdata/authdata/internal/identity"
	"github.com/authdata/authdata/internal/source"
	"github.com/authdata/authdata/internal/web/handler"
)

const (
	// Path is the path of the user listing.
	Path = handler.APIPath + "/user"

	// AttributePath is the path of the user attributes.
	AttributePath = handler.APIPath + "/userattribute"

	idParam = "id"
)

// Service is the user handler service.
type Service struct {
	handler.Service
	resolver handler.Resolver
}

// Init registers the user routes.
func (s *Service) Init(app *fiber.App, cfg *config.Config, resolver handler.Resolver) error {
	if app == nil || cfg == nil || resolver == nil {
		return handler.ErrNilDependency
	}

	s.resolver = resolver

	app.Get(Path, s.List)
	app.Delete(AttributePath+"/:"+idParam, s.DeleteAttribute)

	return nil
}

// List answers /user filtered by municipality, school, group, username and changed_at.
func (s *Service) List(c fiber.Ctx) error {
	list, err := s.resolver.ListUsers(c.Context(), identity.FilterFromQuery(c.Queries()))
	if err != nil {
		return err
	}

	return c.JSON(list)
}

// DeleteAttribute disables a user attribute. The row is kept.
func (s *Service) DeleteAttribute(c fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params(idParam), 10, 64)
	if err != nil {
		return source.ErrNotFound
	}

	if err = s.resolver.DisableAttribute(c.Context(), id); err != nil {
		return err
	}

	log.Info().Uint64("user_attribute", id).Msg("user attribute disabled")

	return c.SendStatus(fiber.StatusNoContent)
}
