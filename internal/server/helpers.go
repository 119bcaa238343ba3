package server

import (
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"unicode"

	"giftshare/internal/middleware"
	"giftshare/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// errResponseWritten signals that a helper already wrote an error response.
// Handlers receiving it return nil.
var errResponseWritten = errors.New("response already written")

// parseID reads a positive integer route parameter. On failure it writes a
// 400 response and returns errResponseWritten.
func parseID(c *fiber.Ctx, param string) (uint, error) {
	raw := c.Params(param)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid "+humanizeParam(param)))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// parseUUIDParam reads a UUID route parameter, writing a 400 response when it
// is malformed.
func parseUUIDParam(c *fiber.Ctx, param string) (string, error) {
	raw := strings.TrimSpace(c.Params(param))
	if err := uuid.Validate(raw); err != nil {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid "+humanizeParam(param)))
		return "", errResponseWritten
	}
	return raw, nil
}

// bindJSON decodes the request body into dest, writing a 400 response for
// malformed JSON.
func bindJSON(c *fiber.Ctx, dest any) error {
	if err := c.BodyParser(dest); err != nil {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
		return errResponseWritten
	}
	return nil
}

// respondError writes err with the status its code maps to. Internal errors
// are logged with the request context and answered generically.
func (s *Server) respondError(c *fiber.Ctx, err error) error {
	status := models.StatusFor(err)
	if status >= fiber.StatusInternalServerError {
		middleware.Logger.ErrorContext(c.UserContext(), "request failed",
			slog.String("method", c.Method()),
			slog.String("path", c.Path()),
			slog.String("error", err.Error()),
		)
	}
	return models.RespondWithError(c, status, err)
}

// humanizeParam turns a route parameter name into the label used in
// "Invalid ..." messages: "giftId" becomes "gift ID".
func humanizeParam(param string) string {
	if param == "id" {
		return "ID"
	}
	if strings.HasSuffix(param, "Id") {
		words := splitCamel(param[:len(param)-2])
		return strings.ToLower(strings.Join(words, " ")) + " ID"
	}
	return param
}

// splitCamel splits a camelCase string into words.
func splitCamel(s string) []string {
	var words []string
	start := 0
	for i, r := range s {
		if i > 0 && unicode.IsUpper(r) {
			words = append(words, s[start:i])
			start = i
		}
	}
	words = append(words, s[start:])
	return words
}
