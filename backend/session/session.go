// Package session carries the caller's identity through a request.
package session

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type Role string

const (
	Anonymous Role = "anonymous"
	Student   Role = "student"
	Admin     Role = "admin"
)

// ParseRole maps a stored user role onto a session role. Unknown values
// become Student so a bad row never grants admin access.
func ParseRole(s string) Role {
	switch Role(s) {
	case Admin:
		return Admin
	case Anonymous:
		return Anonymous
	default:
		return Student
	}
}

type Session struct {
	UserID uuid.UUID
	Role   Role
}

var anonymous = Session{Role: Anonymous}

func (s Session) IsAuthenticated() bool {
	return s.Role != Anonymous && s.UserID != uuid.Nil
}

func (s Session) IsAdmin() bool {
	return s.IsAuthenticated() && s.Role == Admin
}

const localsKey = "session"

func Store(c *fiber.Ctx, s Session) {
	c.Locals(localsKey, s)
}

// From returns the session stored on c, or the anonymous session.
func From(c *fiber.Ctx) Session {
	if s, ok := c.Locals(localsKey).(Session); ok {
		return s
	}
	return anonymous
}
