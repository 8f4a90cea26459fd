package navigation

import (
	"testing"

	"elcportal/backend/session"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func paths(ls []Link) []string {
	out := make([]string, 0, len(ls))
	for _, l := range ls {
		out = append(out, l.Path)
	}
	return out
}

func TestLinksPerRole(t *testing.T) {
	assert.Equal(t, []string{"/", "/about", "/courses", "/contact"}, paths(Links(session.Anonymous)))
	assert.Equal(t, []string{"/dashboard", "/dashboard", "/courses", "/profile"}, paths(Links(session.Student)))
	assert.Equal(t, []string{"/admin", "/dashboard", "/profile"}, paths(Links(session.Admin)))
	assert.Equal(t, Links(session.Anonymous), Links(session.Role("ghost")))
}

func TestLinksReturnsCopy(t *testing.T) {
	l := Links(session.Admin)
	l[0].Label = "changed"
	assert.Equal(t, "Admin Panel", Links(session.Admin)[0].Label)
}

func TestForSession(t *testing.T) {
	assert.Equal(t, Links(session.Anonymous), For(session.Session{Role: session.Admin}))
	assert.Equal(t, Links(session.Admin), For(session.Session{UserID: uuid.New(), Role: session.Admin}))
	assert.Equal(t, "My Courses", For(session.Session{UserID: uuid.New(), Role: session.Student})[1].Label)
}
