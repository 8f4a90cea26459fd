// Package navigation holds the site navigation for each kind of visitor.
package navigation

import "elcportal/backend/session"

type Link struct {
	Label string `json:"label"`
	Path  string `json:"path"`
}

var links = map[session.Role][]Link{
	session.Anonymous: {
		{Label: "Home", Path: "/"},
		{Label: "About", Path: "/about"},
		{Label: "Courses", Path: "/courses"},
		{Label: "Contact", Path: "/contact"},
	},
	session.Student: {
		{Label: "Dashboard", Path: "/dashboard"},
		{Label: "My Courses", Path: "/dashboard"},
		{Label: "Courses", Path: "/courses"},
		{Label: "Profile", Path: "/profile"},
	},
	session.Admin: {
		{Label: "Admin Panel", Path: "/admin"},
		{Label: "Dashboard", Path: "/dashboard"},
		{Label: "Profile", Path: "/profile"},
	},
}

// Links returns a copy of the ordered link list for role. Unknown roles get
// the anonymous list.
func Links(role session.Role) []Link {
	l, ok := links[role]
	if !ok {
		l = links[session.Anonymous]
	}
	return append([]Link(nil), l...)
}

func For(s session.Session) []Link {
	if !s.IsAuthenticated() {
		return Links(session.Anonymous)
	}
	return Links(s.Role)
}
