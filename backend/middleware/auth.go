package middleware

import (
	"errors"

	"elcportal/backend/config"
	"elcportal/backend/models"
	"elcportal/backend/session"
	"elcportal/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

var errUnknownUser = errors.New("token user no longer exists")

// AuthMiddleware rejects requests without a valid token and stores the
// caller's session for the handlers. The user is re-read on every request so
// deleted accounts lose access and role changes apply before the token expires.
func AuthMiddleware(cfg *config.Config, db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		s, err := utils.ExtractSessionFromToken(c, cfg)
		if err != nil {
			return utils.Unauthorized(c, "Unauthorized")
		}
		s, err = currentSession(c, db, s)
		if err != nil {
			if errors.Is(err, errUnknownUser) {
				return utils.Unauthorized(c, "Unauthorized")
			}
			return utils.InternalServerError(c, "Failed to load user")
		}
		session.Store(c, s)
		return c.Next()
	}
}

// OptionalAuth stores the session when a valid token for an existing user is
// present and lets every other request through as anonymous.
func OptionalAuth(cfg *config.Config, db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Get(fiber.HeaderAuthorization) == "" {
			return c.Next()
		}
		s, err := utils.ExtractSessionFromToken(c, cfg)
		if err != nil {
			return c.Next()
		}
		s, err = currentSession(c, db, s)
		switch {
		case err == nil:
			session.Store(c, s)
		case !errors.Is(err, errUnknownUser):
			return utils.InternalServerError(c, "Failed to load user")
		}
		return c.Next()
	}
}

// currentSession replaces the token's role with the stored one.
func currentSession(c *fiber.Ctx, db *gorm.DB, s session.Session) (session.Session, error) {
	var user models.User
	err := db.WithContext(c.UserContext()).Select("id", "role").First(&user, "id = ?", s.UserID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return session.Session{}, errUnknownUser
	}
	if err != nil {
		return session.Session{}, err
	}
	return session.Session{UserID: user.ID, Role: session.ParseRole(user.Role)}, nil
}

// AdminMiddleware must run after AuthMiddleware.
func AdminMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		s := session.From(c)
		if !s.IsAuthenticated() {
			return utils.Unauthorized(c, "Unauthorized")
		}
		if !s.IsAdmin() {
			return utils.Forbidden(c, "Forbidden - Admin access required")
		}
		return c.Next()
	}
}
