package web

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/requestid"
	"github.com/rs/zerolog/log"

	userctl "github.com/authdata/authdata/internal/db/controller/user"
	"github.com/authdata/authdata/internal/source"
)

const notFoundDetail = "Not found."

// Problem is the JSON error body.
type Problem struct {
	Detail string `json:"detail"`
}

// ErrorHandler maps lookup misses to 404 and everything else to 500.
// Errors raised by fiber itself keep their status.
func ErrorHandler(c fiber.Ctx, err error) error {
	var fe *fiber.Error

	switch {
	case errors.Is(err, source.ErrNotFound), errors.Is(err, userctl.ErrAttributeNotFound):
		return c.Status(fiber.StatusNotFound).JSON(Problem{Detail: notFoundDetail})
	case errors.As(err, &fe):
		if fe.Code == fiber.StatusNotFound {
			return c.Status(fe.Code).JSON(Problem{Detail: notFoundDetail})
		}

		return c.Status(fe.Code).JSON(Problem{Detail: fe.Message})
	}

	log.Error().
		Err(err).
		Str("method", c.Method()).
		Str("path", c.Path()).
		Str("request_id", requestid.FromContext(c)).
		Msg("request failed")

	return c.Status(fiber.StatusInternalServerError).JSON(Problem{Detail: "Internal server error."})
}
