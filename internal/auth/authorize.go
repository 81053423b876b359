package auth

import (
	"path"
	"strings"

	"asset-angel-api/internal/models"
)

// LoginPath is where anonymous callers are sent
const LoginPath = "/login"

// Verdict is the outcome of an access decision
type Verdict int

const (
	Allow Verdict = iota
	DenyRedirect
	NotFound
)

func (v Verdict) String() string {
	switch v {
	case Allow:
		return "allow"
	case DenyRedirect:
		return "redirect"
	default:
		return "not_found"
	}
}

// Decision is returned by Authorize and RouteTable.Check. To is set for
// DenyRedirect.
type Decision struct {
	Verdict Verdict `json:"-"`
	To      string  `json:"redirect,omitempty"`
}

// Allowed reports whether the decision grants access
func (d Decision) Allowed() bool { return d.Verdict == Allow }

func redirect(to string) Decision { return Decision{Verdict: DenyRedirect, To: to} }

// Authorize allows an authenticated session whose role is in required.
// Anonymous callers are redirected to the login page and everyone else to
// their role's home page. It has no side effects.
func Authorize(required []models.Role, s *Session) Decision {
	if !s.Authenticated() {
		return redirect(LoginPath)
	}
	if s.User.HasRole(required...) {
		return Decision{Verdict: Allow}
	}
	return redirect(s.User.Role.HomePath())
}

// Route is a single view-level path and the roles it admits. A nil Roles
// marks a public route.
type Route struct {
	Path  string
	Roles []models.Role
}

// RouteTable maps view paths to their access rules
type RouteTable struct {
	routes map[string]Route
}

// NewRouteTable builds a table from routes; later entries replace earlier
// ones with the same path.
func NewRouteTable(routes ...Route) *RouteTable {
	t := &RouteTable{routes: make(map[string]Route, len(routes))}
	for _, r := range routes {
		t.routes[cleanPath(r.Path)] = r
	}
	return t
}

// DefaultRoutes returns the dashboard's route table
func DefaultRoutes() *RouteTable {
	admin := []models.Role{models.RoleAdmin}
	employee := []models.Role{models.RoleEmployee}
	return NewRouteTable(
		Route{Path: LoginPath},
		Route{Path: "/admin", Roles: admin},
		Route{Path: "/admin/users", Roles: admin},
		Route{Path: "/admin/assets", Roles: admin},
		Route{Path: "/admin/assignments", Roles: admin},
		Route{Path: "/admin/departments", Roles: admin},
		Route{Path: "/admin/repair-requests", Roles: admin},
		Route{Path: "/employee", Roles: employee},
		Route{Path: "/employee/assets", Roles: employee},
		Route{Path: "/employee/report-issue", Roles: employee},
		Route{Path: "/employee/my-requests", Roles: employee},
		Route{Path: "/employee/profile", Roles: employee},
	)
}

// Check decides whether s may open p. The root path always redirects,
// to the login page or to the caller's home. Unknown paths are NotFound.
func (t *RouteTable) Check(p string, s *Session) Decision {
	p = cleanPath(p)
	if p == "/" {
		if !s.Authenticated() {
			return redirect(LoginPath)
		}
		return redirect(s.User.Role.HomePath())
	}
	r, ok := t.routes[p]
	if !ok {
		return Decision{Verdict: NotFound}
	}
	if r.Roles == nil {
		return Decision{Verdict: Allow}
	}
	return Authorize(r.Roles, s)
}

func cleanPath(p string) string {
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return path.Clean(p)
}
