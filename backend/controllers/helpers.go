package controllers

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"elcportal/backend/storage"
	"elcportal/backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func paramUUID(c *fiber.Ctx, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

func queryInt(c *fiber.Ctx, key string, def, max int) int {
	v, err := strconv.Atoi(c.Query(key))
	if err != nil || v <= 0 {
		return def
	}
	if max > 0 && v > max {
		return max
	}
	return v
}

// paging reads ?page= and ?limit= and returns page, limit and offset.
func paging(c *fiber.Ctx) (int, int, int) {
	page := queryInt(c, "page", 1, 0)
	limit := queryInt(c, "limit", 20, 100)
	return page, limit, (page - 1) * limit
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// isUniqueViolation matches duplicate-key errors from PostgreSQL and SQLite.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "unique constraint")
}

func optionalString(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// likePattern builds a substring LIKE pattern matching s literally. Queries
// using it must declare ESCAPE '\'.
func likePattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

// removeImages deletes the uploaded objects of a course that urls point at,
// skipping any URL listed in keep. Failures are logged only; the rows
// referencing the objects are already gone.
func removeImages(ctx context.Context, store storage.ObjectStore, log *utils.Logger, courseID uuid.UUID, urls, keep []string) {
	prefix := courseID.String() + "/"
	skip := make(map[string]bool, len(keep))
	for _, u := range keep {
		skip[u] = true
	}
	for _, u := range urls {
		if skip[u] {
			continue
		}
		skip[u] = true
		p, ok := storage.ObjectPath(store, u)
		if !ok || !strings.HasPrefix(p, prefix) {
			continue
		}
		if err := store.Delete(ctx, p); err != nil {
			log.Warn("course image delete failed", "course_id", courseID, "path", p, "error", err)
		}
	}
}
