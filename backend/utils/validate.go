package utils

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

// ParseAndValidate decodes the request body into out and validates its
// `validate` tags. The returned error is already written to c; handlers just
// return it.
func ParseAndValidate(c *fiber.Ctx, out interface{}) (bool, error) {
	if err := c.BodyParser(out); err != nil {
		return false, BadRequest(c, "Cannot parse JSON")
	}
	if err := validate.Struct(out); err != nil {
		return false, ValidationError(c, err)
	}
	return true, nil
}

var dashes = regexp.MustCompile(`-+`)

// GenerateSlug lower-cases s and joins its letter/digit runs with dashes.
func GenerateSlug(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune('-')
		}
	}
	return strings.Trim(dashes.ReplaceAllString(b.String(), "-"), "-")
}
