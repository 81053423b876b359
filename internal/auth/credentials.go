package auth

import (
	"fmt"

	"asset-angel-api/internal/models"

	"golang.org/x/crypto/bcrypt"
)

// Credentials is the role-keyed password table. Every user of a role shares
// the role's password; only bcrypt hashes are kept in memory.
type Credentials struct {
	hashes map[models.Role][]byte
}

// NewCredentials hashes one password per role at the given bcrypt cost.
// A cost of 0 selects bcrypt.DefaultCost.
func NewCredentials(passwords map[models.Role]string, cost int) (*Credentials, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	c := &Credentials{hashes: make(map[models.Role][]byte, len(passwords))}
	for role, pw := range passwords {
		if !role.Valid() {
			return nil, fmt.Errorf("credentials: unknown role %q", role)
		}
		if pw == "" {
			return nil, fmt.Errorf("credentials: empty password for role %s", role)
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(pw), cost)
		if err != nil {
			return nil, fmt.Errorf("credentials: hash %s password: %w", role, err)
		}
		c.hashes[role] = hash
	}
	return c, nil
}

// Check reports whether password is the password of role
func (c *Credentials) Check(role models.Role, password string) bool {
	hash, ok := c.hashes[role]
	if !ok {
		return false
	}
	return bcrypt.CompareHashAndPassword(hash, []byte(password)) == nil
}
