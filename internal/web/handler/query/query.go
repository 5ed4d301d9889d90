// Package query serves the single user attribute query endpoints.
package query

import (
	"regexp"

	"github.com/gofiber/fiber/v3"

	"github.com/authdata/authdata/internal/config"
	"github.com/authdata/authdata/internal/source"
	"github.com/authdata/authdata/internal/web/handler"
)

const (
	// Path is the path of the query endpoint.
	Path = handler.APIPath + "/query"

	usernameParam = "username"
)

var parameterName = regexp.MustCompile(`^[a-z_]+$`)

// Service is the query handler service.
type Service struct {
	handler.Service
	resolver handler.Resolver
}

// Init registers the query routes.
func (s *Service) Init(app *fiber.App, cfg *config.Config, resolver handler.Resolver) error {
	if app == nil || cfg == nil || resolver == nil {
		return handler.ErrNilDependency
	}

	s.resolver = resolver

	router := app.Group(Path)
	router.Get(handler.RouterRootPath, s.Get)
	router.Get("/:"+usernameParam, s.GetUsername)

	return nil
}

// Get answers /query?name=value. Exactly one parameter with a lower case
// name is accepted, anything else is not found.
func (s *Service) Get(c fiber.Ctx) error {
	params := c.Queries()
	if len(params) != 1 {
		return source.ErrNotFound
	}

	for name, value := range params {
		if !parameterName.MatchString(name) {
			return source.ErrNotFound
		}

		rec, err := s.resolver.Query(c.Context(), name, value)
		if err != nil {
			return err
		}

		return c.JSON(rec)
	}

	return source.ErrNotFound
}

// GetUsername answers /query/<username>.
func (s *Service) GetUsername(c fiber.Ctx) error {
	rec, err := s.resolver.QueryUsername(c.Context(), c.Params(usernameParam))
	if err != nil {
		return err
	}

	return c.JSON(rec)
}
