package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/lib/pq"

	"github.com/example/storedash/internal/query"
)

// ErrorHandler converts every error escaping a handler into a JSON body with
// the matching status code.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return c.Status(fiberErr.Code).JSON(fiber.Map{"message": fiberErr.Message})
	}

	var invalidQuery *query.InvalidQueryError
	if errors.As(err, &invalidQuery) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": invalidQuery.Message})
	}

	if field, ok := duplicateField(err); ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": humanizeField(field) + " already exists"})
	}

	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"message": "Server error",
		"error":   err.Error(),
	})
}

// duplicateField extracts the offending column from a unique-constraint
// violation. Handles postgres error codes and the sqlite message format used
// in tests.
func duplicateField(err error) (string, bool) {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		constraint := pqErr.Constraint
		if idx := strings.LastIndex(constraint, "_"); idx >= 0 {
			return constraint[idx+1:], true
		}
		return constraint, true
	}

	msg := err.Error()
	if idx := strings.Index(msg, "UNIQUE constraint failed: "); idx >= 0 {
		target := msg[idx+len("UNIQUE constraint failed: "):]
		if dot := strings.Index(target, "."); dot >= 0 {
			return strings.TrimSpace(target[dot+1:]), true
		}
		return strings.TrimSpace(target), true
	}

	if strings.Contains(msg, "duplicate key value") {
		return "value", true
	}

	return "", false
}

func humanizeField(field string) string {
	field = strings.ReplaceAll(field, "_", " ")
	if field == "" {
		return field
	}
	return strings.ToUpper(field[:1]) + field[1:]
}
