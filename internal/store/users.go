package store

import (
	"strings"

	"asset-angel-api/internal/models"
)

// UserFilter narrows ListUsers. Zero values match everything.
type UserFilter struct {
	Query      string
	Role       models.Role
	Department string
	ActiveOnly bool
}

func (f UserFilter) match(u models.User) bool {
	if f.Role != "" && u.Role != f.Role {
		return false
	}
	if f.Department != "" && !strings.EqualFold(u.Department, f.Department) {
		return false
	}
	if f.ActiveOnly && !u.IsActive {
		return false
	}
	if f.Query != "" {
		return containsFold(u.Name, f.Query) || containsFold(u.Email, f.Query) || containsFold(u.Department, f.Query)
	}
	return true
}

// ListUsers returns users matching f in insertion order
func (s *Store) ListUsers(f UserFilter) []models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.User{}
	for _, u := range s.users {
		if f.match(u) {
			out = append(out, u)
		}
	}
	return out
}

// GetUser looks up a user by id
func (s *Store) GetUser(id string) (models.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if u := s.lookupUser(id); u != nil {
		return *u, true
	}
	return models.User{}, false
}

// FindUserByEmail looks up a user by case-insensitive email
func (s *Store) FindUserByEmail(email string) (models.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.EmailMatches(email) {
			return u, true
		}
	}
	return models.User{}, false
}

func (s *Store) validateUser(in models.UserInput, selfID string) error {
	if err := required("email", in.Email); err != nil {
		return err
	}
	if !strings.Contains(in.Email, "@") {
		return invalid("email", "must be an email address")
	}
	if err := required("name", in.Name); err != nil {
		return err
	}
	if err := required("role", string(in.Role)); err != nil {
		return err
	}
	if !in.Role.Valid() {
		return invalid("role", "must be one of admin, employee")
	}
	if err := required("department", in.Department); err != nil {
		return err
	}
	for _, u := range s.users {
		if u.ID != selfID && u.EmailMatches(in.Email) {
			return conflict("user with email %s already exists", strings.TrimSpace(in.Email))
		}
	}
	return nil
}

// CreateUser validates in and appends a new active user
func (s *Store) CreateUser(in models.UserInput) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.validateUser(in, ""); err != nil {
		return models.User{}, err
	}

	now := s.now().UTC()
	u := models.User{
		ID:         s.newUserID(),
		Email:      strings.TrimSpace(in.Email),
		Name:       strings.TrimSpace(in.Name),
		Role:       in.Role,
		Department: strings.TrimSpace(in.Department),
		Phone:      in.Phone,
		Avatar:     in.Avatar,
		IsActive:   in.IsActive == nil || *in.IsActive,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	s.users = append(s.users, u)
	return u, nil
}

// UpdateUser replaces the user's editable fields and refreshes UpdatedAt
func (s *Store) UpdateUser(id string, in models.UserInput) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.userIndex(id)
	if i < 0 {
		return models.User{}, &NotFoundError{Entity: "user", ID: id}
	}
	if err := s.validateUser(in, id); err != nil {
		return models.User{}, err
	}

	u := s.users[i]
	u.Email = strings.TrimSpace(in.Email)
	u.Name = strings.TrimSpace(in.Name)
	u.Role = in.Role
	u.Department = strings.TrimSpace(in.Department)
	u.Phone = in.Phone
	u.Avatar = in.Avatar
	if in.IsActive != nil {
		u.IsActive = *in.IsActive
	}
	u.UpdatedAt = s.stamp(u.UpdatedAt)
	s.users[i] = u
	return u, nil
}

// DeleteUser removes a user holding no assets. Historical assignments and
// repair requests keep the dangling reference.
func (s *Store) DeleteUser(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.userIndex(id)
	if i < 0 {
		return &NotFoundError{Entity: "user", ID: id}
	}
	for _, a := range s.assignments {
		if a.UserID == id && a.IsActive() {
			return conflict("user %s still holds asset %s", id, a.AssetID)
		}
	}
	s.users = append(s.users[:i], s.users[i+1:]...)
	return nil
}
