package utils

import (
	"net/http/httptest"
	"testing"
	"time"

	"elcportal/backend/config"
	"elcportal/backend/session"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{JWTSecret: "test-secret", JWTTTL: time.Hour}
}

func TestTokenRoundTrip(t *testing.T) {
	cfg := testConfig()
	id := uuid.New()

	token, err := GenerateJWTToken(id, "admin", cfg)
	require.NoError(t, err)

	s, err := ParseToken(token, cfg)
	require.NoError(t, err)
	assert.Equal(t, id, s.UserID)
	assert.Equal(t, session.Admin, s.Role)
	assert.True(t, s.IsAdmin())
}

func TestParseTokenRejects(t *testing.T) {
	cfg := testConfig()

	other := &config.Config{JWTSecret: "other", JWTTTL: time.Hour}
	foreign, err := GenerateJWTToken(uuid.New(), "student", other)
	require.NoError(t, err)

	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": uuid.NewString(),
		"role":    "student",
		"exp":     time.Now().Add(-time.Minute).Unix(),
	}).SignedString([]byte(cfg.JWTSecret))
	require.NoError(t, err)

	noUser, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"role": "student",
		"exp":  time.Now().Add(time.Minute).Unix(),
	}).SignedString([]byte(cfg.JWTSecret))
	require.NoError(t, err)

	for name, token := range map[string]string{
		"garbage":      "not-a-token",
		"wrong secret": foreign,
		"expired":      expired,
		"missing user": noUser,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ParseToken(token, cfg)
			var fe *fiber.Error
			require.ErrorAs(t, err, &fe)
			assert.Equal(t, fiber.StatusUnauthorized, fe.Code)
		})
	}
}

func TestExtractSessionFromToken(t *testing.T) {
	cfg := testConfig()
	id := uuid.New()
	token, err := GenerateJWTToken(id, "student", cfg)
	require.NoError(t, err)

	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		s, err := ExtractSessionFromToken(c, cfg)
		if err != nil {
			return err
		}
		return c.SendString(s.UserID.String())
	})

	for _, header := range []string{"Bearer " + token, "bearer " + token, token} {
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set("Authorization", header)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode, header)
	}

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}
