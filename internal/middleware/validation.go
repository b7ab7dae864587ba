package middleware

import (
	"strings"
	"unicode"

	"github.com/gofiber/fiber/v3"
)

// MaxChannelInputLen bounds the channel id or URL a client may submit.
const MaxChannelInputLen = 256

// ErrorResponse is a helper that returns a standard API error response.
func ErrorResponse(c fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"error": fiber.Map{
			"code":    code,
			"message": message,
		},
	})
}

// ValidateChannelInput checks the raw channel id, handle or URL before it
// reaches the resolver. Host checks happen in the resolver.
func ValidateChannelInput(input string) (string, string) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", "input is required"
	}
	if len(input) > MaxChannelInputLen {
		return "", "input must be at most 256 characters"
	}
	for _, r := range input {
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			return "", "input must not contain whitespace or control characters"
		}
	}
	return input, ""
}
