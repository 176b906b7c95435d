package utils

import "github.com/gofiber/fiber/v2"

// APIResponse describes the common structure for successful API responses.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message"`
}

// ErrorResponse is the envelope for every error payload. Details carries
// field-level validation errors; RetryAfterSeconds accompanies 429s.
type ErrorResponse struct {
	Error             string      `json:"error"`
	Details           interface{} `json:"details,omitempty"`
	RetryAfterSeconds *int        `json:"retry_after_seconds,omitempty"`
}

// SendSuccess sends a successful JSON response with a message.
func SendSuccess(c *fiber.Ctx, message string, data interface{}) error {
	return SendSuccessWithStatus(c, fiber.StatusOK, message, data)
}

// SendSuccessWithStatus sends a success payload using the provided HTTP status code.
func SendSuccessWithStatus(c *fiber.Ctx, status int, message string, data interface{}) error {
	if message == "" {
		message = "success"
	}
	if status == 0 {
		status = fiber.StatusOK
	}

	return c.Status(status).JSON(APIResponse{
		Success: true,
		Data:    data,
		Message: message,
	})
}

// SendError sends an error JSON response with the given status code.
func SendError(c *fiber.Ctx, status int, message string) error {
	if message == "" {
		message = "error"
	}

	return c.Status(status).JSON(ErrorResponse{Error: message})
}

// SendValidationError sends a 400 with field-level details.
func SendValidationError(c *fiber.Ctx, message string, details interface{}) error {
	if message == "" {
		message = "validation failed"
	}

	return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
		Error:   message,
		Details: details,
	})
}

// SendRateLimited sends a 429 carrying the cooldown remainder.
func SendRateLimited(c *fiber.Ctx, message string, retryAfterSeconds int) error {
	if message == "" {
		message = "rate limited"
	}

	return c.Status(fiber.StatusTooManyRequests).JSON(ErrorResponse{
		Error:             message,
		RetryAfterSeconds: &retryAfterSeconds,
	})
}
