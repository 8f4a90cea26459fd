package utils

import (
	"strings"
	"time"

	"elcportal/backend/config"
	"elcportal/backend/session"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

func GenerateJWTToken(userID uuid.UUID, role string, cfg *config.Config) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID.String(),
		"role":    role,
		"exp":     time.Now().Add(cfg.JWTTTL).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(cfg.JWTSecret))
}

// ParseToken validates tokenString and returns the session it carries.
func ParseToken(tokenString string, cfg *config.Config) (session.Session, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
		}
		return []byte(cfg.JWTSecret), nil
	})
	if err != nil {
		return session.Session{}, fiber.NewError(fiber.StatusUnauthorized, "Invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return session.Session{}, fiber.NewError(fiber.StatusUnauthorized, "Invalid token claims")
	}

	raw, _ := claims["user_id"].(string)
	userID, err := uuid.Parse(raw)
	if err != nil || userID == uuid.Nil {
		return session.Session{}, fiber.NewError(fiber.StatusUnauthorized, "Invalid user ID in token")
	}
	role, _ := claims["role"].(string)

	return session.Session{UserID: userID, Role: session.ParseRole(role)}, nil
}

// ExtractSessionFromToken reads the Authorization header, with or without
// the "Bearer " prefix.
func ExtractSessionFromToken(c *fiber.Ctx, cfg *config.Config) (session.Session, error) {
	tokenString := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
	if len(tokenString) > 7 && strings.EqualFold(tokenString[:7], "bearer ") {
		tokenString = strings.TrimSpace(tokenString[7:])
	}
	if tokenString == "" {
		return session.Session{}, fiber.NewError(fiber.StatusUnauthorized, "Missing authorization token")
	}
	return ParseToken(tokenString, cfg)
}
