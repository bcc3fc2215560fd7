package api

import (
	"errors"

	"github.com/Aswath1709/task-manager-app/domain/errs"
	"github.com/gofiber/fiber/v2"
)

// statusFor maps the error taxonomy onto HTTP statuses.
func statusFor(code string) int {
	switch code {
	case errs.CodeNotFound:
		return fiber.StatusNotFound
	case errs.CodeRevisionConflict, errs.CodeDuplicateKey:
		return fiber.StatusConflict
	case errs.CodeValidation:
		return fiber.StatusBadRequest
	case errs.CodeUnauthorized:
		return fiber.StatusUnauthorized
	case errs.CodeStoreUnavailable, errs.CodeIndexUnavailable:
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

func writeError(c *fiber.Ctx, err error) error {
	code := errs.Code(err)
	status := statusFor(code)
	message := err.Error()
	if status == fiber.StatusInternalServerError {
		message = "Internal Server Error"
	}
	return c.Status(status).JSON(ErrorResponse{Error: code, Message: message})
}

// customErrorHandler handles errors that escape the handlers.
func customErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(ErrorResponse{Error: "error", Message: fe.Message})
	}
	return writeError(c, err)
}
