package controllers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"

	"elcportal/backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, isUniqueViolation(gorm.ErrDuplicatedKey))
	assert.True(t, isUniqueViolation(errors.New(`ERROR: duplicate key value violates unique constraint "idx_users_email" (SQLSTATE 23505)`)))
	assert.True(t, isUniqueViolation(errors.New("UNIQUE constraint failed: users.email")))
	assert.False(t, isUniqueViolation(errors.New("connection refused")))
	assert.False(t, isUniqueViolation(nil))
}

func TestOptionalString(t *testing.T) {
	blank, value := "  ", " 0300 "
	assert.Nil(t, optionalString(nil))
	assert.Nil(t, optionalString(&blank))
	require.NotNil(t, optionalString(&value))
	assert.Equal(t, "0300", *optionalString(&value))
}

func TestPaging(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		page, limit, offset := paging(c)
		return c.SendString(fmt.Sprintf("%d %d %d", page, limit, offset))
	})

	for query, want := range map[string]string{
		"":                   "1 20 0",
		"?page=3&limit=10":   "3 10 20",
		"?page=-1&limit=abc": "1 20 0",
		"?limit=1000":        "1 100 0",
	} {
		resp, err := app.Test(httptest.NewRequest("GET", "/"+query, nil))
		require.NoError(t, err)
		body, _ := io.ReadAll(resp.Body)
		assert.Equal(t, want, string(body), query)
	}
}

func TestLikePattern(t *testing.T) {
	assert.Equal(t, "%ali%", likePattern("ali"))
	assert.Equal(t, `%a\_b%`, likePattern("a_b"))
	assert.Equal(t, `%100\%%`, likePattern("100%"))
	assert.Equal(t, `%c:\\temp%`, likePattern(`c:\temp`))
}

type deleteLog struct {
	deleted []string
	failErr error
}

func (d *deleteLog) Upload(context.Context, string, string, []byte) (string, error) {
	return "", errors.New("not used")
}

func (d *deleteLog) Delete(_ context.Context, objectPath string) error {
	d.deleted = append(d.deleted, objectPath)
	return d.failErr
}

func (d *deleteLog) PublicURL(objectPath string) string {
	return "https://cdn.test/images/" + objectPath
}

func TestRemoveImages(t *testing.T) {
	store := &deleteLog{}
	course, other := uuid.New(), uuid.New()
	own := store.PublicURL(course.String() + "/1.png")
	shared := store.PublicURL(course.String() + "/2.png")

	removeImages(context.Background(), store, utils.NopLogger(), course, []string{
		own,
		own,
		shared,
		store.PublicURL(other.String() + "/3.png"),
		"https://elsewhere.test/4.png",
	}, []string{shared})

	assert.Equal(t, []string{course.String() + "/1.png"}, store.deleted)
}

func TestRemoveImagesLogsFailures(t *testing.T) {
	store := &deleteLog{failErr: errors.New("bucket gone")}
	course := uuid.New()

	assert.NotPanics(t, func() {
		removeImages(context.Background(), store, utils.NopLogger(), course, []string{store.PublicURL(course.String() + "/1.png")}, nil)
	})
	assert.Len(t, store.deleted, 1)
}
