package auth

import (
	"testing"

	"asset-angel-api/internal/models"

	"github.com/stretchr/testify/assert"
)

func sessionFor(role models.Role) *Session {
	return &Session{ID: "s", State: Authenticated, User: models.User{ID: "u", Role: role}}
}

func TestAuthorize(t *testing.T) {
	admin := []models.Role{models.RoleAdmin}
	both := []models.Role{models.RoleAdmin, models.RoleEmployee}

	tests := []struct {
		name     string
		required []models.Role
		session  *Session
		want     Decision
	}{
		{"admin on admin route", admin, sessionFor(models.RoleAdmin), Decision{Verdict: Allow}},
		{"employee on admin route", admin, sessionFor(models.RoleEmployee), Decision{Verdict: DenyRedirect, To: "/employee"}},
		{"anonymous", admin, nil, Decision{Verdict: DenyRedirect, To: "/login"}},
		{"authenticating", admin, &Session{State: Authenticating, User: models.User{Role: models.RoleAdmin}}, Decision{Verdict: DenyRedirect, To: "/login"}},
		{"either role", both, sessionFor(models.RoleEmployee), Decision{Verdict: Allow}},
		{"no roles admit nobody", nil, sessionFor(models.RoleAdmin), Decision{Verdict: DenyRedirect, To: "/admin"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Authorize(tt.required, tt.session))
		})
	}
}

func TestRouteTableCheck(t *testing.T) {
	routes := DefaultRoutes()
	admin := sessionFor(models.RoleAdmin)
	employee := sessionFor(models.RoleEmployee)

	tests := []struct {
		path    string
		session *Session
		want    Decision
	}{
		{"/", nil, Decision{Verdict: DenyRedirect, To: "/login"}},
		{"/", admin, Decision{Verdict: DenyRedirect, To: "/admin"}},
		{"/", employee, Decision{Verdict: DenyRedirect, To: "/employee"}},
		{"/login", nil, Decision{Verdict: Allow}},
		{"/admin/users", admin, Decision{Verdict: Allow}},
		{"/admin/users/", admin, Decision{Verdict: Allow}},
		{"/admin/users?tab=2", admin, Decision{Verdict: Allow}},
		{"/admin/users", employee, Decision{Verdict: DenyRedirect, To: "/employee"}},
		{"/admin/users", nil, Decision{Verdict: DenyRedirect, To: "/login"}},
		{"/employee/report-issue", employee, Decision{Verdict: Allow}},
		{"/employee/profile", admin, Decision{Verdict: DenyRedirect, To: "/admin"}},
		{"/nowhere", admin, Decision{Verdict: NotFound}},
		{"admin", admin, Decision{Verdict: Allow}},
	}

	for _, tt := range tests {
		name := tt.path
		if tt.session != nil {
			name += " as " + string(tt.session.User.Role)
		}
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.want, routes.Check(tt.path, tt.session))
		})
	}
}

func TestVerdictString(t *testing.T) {
	assert.Equal(t, "allow", Allow.String())
	assert.Equal(t, "redirect", DenyRedirect.String())
	assert.Equal(t, "not_found", NotFound.String())
	assert.True(t, Decision{Verdict: Allow}.Allowed())
	assert.False(t, Decision{Verdict: NotFound}.Allowed())
}
