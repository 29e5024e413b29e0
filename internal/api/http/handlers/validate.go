package handlers

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	apperrors "github.com/spec-kit/debtor-registry/pkg/util"
)

var validate = validator.New()

// parseBody decodes the JSON body into dst and runs struct validation.
// Field errors are reported per-field in the error details.
func parseBody(c *fiber.Ctx, dst any) error {
	if err := c.BodyParser(dst); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := validate.Struct(dst); err != nil {
		var invalid validator.ValidationErrors
		details := map[string]any{}
		if errors.As(err, &invalid) {
			for _, fe := range invalid {
				details[fieldName(fe)] = ruleMessage(fe)
			}
		}
		return apperrors.NewValidationError("validation failed", details)
	}
	return nil
}

func fieldName(fe validator.FieldError) string {
	// Namespace looks like "CreateRequestRequest.Name", keep the leaf.
	parts := strings.Split(fe.Namespace(), ".")
	return strings.ToLower(parts[len(parts)-1])
}

func ruleMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email"
	case "min":
		return "is too short"
	case "max":
		return "is too long"
	case "gt":
		return "must be greater than " + fe.Param()
	case "eqfield":
		return "does not match"
	case "uuid4":
		return "must be a uuid"
	default:
		return "is invalid"
	}
}
