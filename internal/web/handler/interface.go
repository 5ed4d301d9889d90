package handler

import (
	"context"

	"github.com/gofiber/fiber/v3"

	"github.com/authdata/authdata/internal/config"
	"github.com/authdata/authdata/internal/identity"
)

// Service is the interface for a web handler service.
type Service interface {
	Init(app *fiber.App, cfg *config.Config, resolver Resolver) error
}

// Resolver answers the identity queries served by the API.
type Resolver interface {
	Query(ctx context.Context, attribute, value string) (*identity.Record, error)
	QueryUsername(ctx context.Context, username string) (*identity.Record, error)
	ListUsers(ctx context.Context, filter identity.Filter) (*identity.UserList, error)
	DisableAttribute(ctx context.Context, id uint64) error
}
