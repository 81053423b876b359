package internal

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"asset-angel-api/internal/auth"
	"asset-angel-api/internal/logging"
	"asset-angel-api/internal/models"
	"asset-angel-api/internal/store"

	"github.com/go-chi/chi/v5"
)

// loginUser handles user authentication. Both outcomes answer with a
// LoginResponse so the login form can show the error inline.
func (s *Server) loginUser(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	// Validate request
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, models.LoginResponse{Error: "Email and password are required"})
		return
	}

	session, token, err := s.Gate.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		var authErr *auth.AuthError
		switch {
		case errors.As(err, &authErr):
			writeJSON(w, http.StatusUnauthorized, models.LoginResponse{Error: authErr.Error()})
		case errors.Is(err, context.Canceled):
			// Client went away while the attempt was pending
		default:
			logging.FromContext(r.Context()).Error("login failed", "error", err)
			writeJSON(w, http.StatusInternalServerError, models.LoginResponse{Error: "Login failed, please try again"})
		}
		return
	}

	writeJSON(w, http.StatusOK, models.LoginResponse{
		Success: true,
		Token:   token,
		User:    &session.User,
	})
}

// logoutUser ends the caller's session. The token stops working at once.
func (s *Server) logoutUser(w http.ResponseWriter, r *http.Request) {
	if claims := auth.ClaimsFromContext(r.Context()); claims != nil {
		s.Gate.Logout(claims.SessionID())
		logging.FromContext(r.Context()).Info("logout", "user_id", claims.UserID())
	}
	w.WriteHeader(http.StatusNoContent)
}

// accessResponse answers a route check
type accessResponse struct {
	Path          string      `json:"path"`
	Verdict       string      `json:"verdict"`
	Redirect      string      `json:"redirect,omitempty"`
	Authenticated bool        `json:"authenticated"`
	Role          models.Role `json:"role,omitempty"`
}

// checkAccess reports what the dashboard router would do with path for the
// caller's session. The token is optional.
func (s *Server) checkAccess(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		writeError(w, http.StatusBadRequest, "MISSING_PATH", "path query parameter is required")
		return
	}

	session := auth.SessionFromContext(r.Context())
	decision := s.Routes.Check(path, session)
	resp := accessResponse{
		Path:          path,
		Verdict:       decision.Verdict.String(),
		Redirect:      decision.To,
		Authenticated: session.Authenticated(),
	}
	if session.Authenticated() {
		resp.Role = session.User.Role
	}
	writeJSON(w, http.StatusOK, resp)
}

// getUserProfile returns the session principal
func (s *Server) getUserProfile(w http.ResponseWriter, r *http.Request) {
	session := auth.SessionFromContext(r.Context())
	if session == nil {
		writeError(w, http.StatusUnauthorized, "AUTHENTICATION_REQUIRED", "Authentication required")
		return
	}
	writeJSON(w, http.StatusOK, session.User)
}

// updateUserProfile merges the edit into the session principal only
func (s *Server) updateUserProfile(w http.ResponseWriter, r *http.Request) {
	session := auth.SessionFromContext(r.Context())
	if session == nil {
		writeError(w, http.StatusUnauthorized, "AUTHENTICATION_REQUIRED", "Authentication required")
		return
	}

	var req models.ProfileUpdate
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Empty() {
		writeError(w, http.StatusBadRequest, "NO_FIELDS", "No fields to update")
		return
	}
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		writeJSON(w, http.StatusBadRequest, apiError{Error: "name must not be empty", Code: "VALIDATION_FAILED", Field: "name"})
		return
	}

	user, err := s.Gate.UpdateProfile(session.ID, req)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "SESSION_ENDED", "Session has ended, please sign in again")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// listUsers handles user listing with q, role, department and active filters
func (s *Server) listUsers(w http.ResponseWriter, r *http.Request) {
	params := parseListParams(r)
	values := r.URL.Query()

	filter := store.UserFilter{
		Query:      params.q,
		Department: strings.TrimSpace(values.Get("department")),
		ActiveOnly: values.Get("active") == "true",
	}
	if v := values.Get("role"); v != "" {
		role, err := models.ParseRole(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_FILTER", err.Error())
			return
		}
		filter.Role = role
	}

	users := s.Store.ListUsers(filter)
	sortItems(users, params.sort, userSort)
	sendListResponse(w, users, params)
}

func (s *Server) getUser(w http.ResponseWriter, r *http.Request) {
	u, ok := s.Store.GetUser(chi.URLParam(r, "id"))
	if !ok {
		notFound(w, "User")
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (s *Server) createUser(w http.ResponseWriter, r *http.Request) {
	var in models.UserInput
	if !decodeJSON(w, r, &in) {
		return
	}

	u, err := s.Store.CreateUser(in)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	logging.FromContext(r.Context()).Info("user created", "user_id", u.ID, "role", u.Role)
	writeJSON(w, http.StatusCreated, u)
}

func (s *Server) updateUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var in models.UserInput
	if !decodeJSON(w, r, &in) {
		return
	}

	u, err := s.Store.UpdateUser(id, in)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	logging.FromContext(r.Context()).Info("user updated", "user_id", u.ID, "active", u.IsActive)
	writeJSON(w, http.StatusOK, u)
}

func (s *Server) deleteUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.Store.DeleteUser(id); err != nil {
		writeStoreError(w, r, err)
		return
	}
	logging.FromContext(r.Context()).Info("user deleted", "user_id", id)
	w.WriteHeader(http.StatusNoContent)
}
