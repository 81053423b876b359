package store

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"

	"asset-angel-api/internal/models"

	"gopkg.in/yaml.v3"
)

//go:embed seed.yaml
var defaultSeed []byte

// Seed is the serialisable form of the whole store
type Seed struct {
	Users          []models.User          `yaml:"users"`
	Assets         []models.Asset         `yaml:"assets"`
	Assignments    []models.Assignment    `yaml:"assignments"`
	RepairRequests []models.RepairRequest `yaml:"repairRequests"`
}

// LoadSeed decodes a YAML seed document
func LoadSeed(r io.Reader) (*Seed, error) {
	var seed Seed
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&seed); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decode seed: %w", err)
	}
	return &seed, nil
}

// DefaultSeed returns the built-in demo dataset
func DefaultSeed() (*Seed, error) {
	return LoadSeed(bytes.NewReader(defaultSeed))
}

// LoadSeedFile reads a seed from path, or the built-in dataset when path is empty
func LoadSeedFile(path string) (*Seed, error) {
	if path == "" {
		return DefaultSeed()
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open seed: %w", err)
	}
	defer f.Close()
	return LoadSeed(f)
}

// NewFromSeed builds a store holding the seed's records. Asset statuses are
// reconciled with the active assignments: held assets become assigned and
// assigned assets without a holder become available.
func NewFromSeed(seed *Seed, opts ...Option) (*Store, error) {
	s := New(opts...)
	if seed == nil {
		return s, nil
	}

	seen := map[string]bool{}
	for _, u := range seed.Users {
		if u.ID == "" {
			u.ID = s.newUserID()
		}
		if seen["user:"+u.ID] {
			return nil, fmt.Errorf("seed: duplicate user id %s", u.ID)
		}
		if !u.Role.Valid() {
			return nil, fmt.Errorf("seed: user %s: %w", u.ID, &models.EnumError{Type: "role", Value: string(u.Role)})
		}
		for _, other := range s.users {
			if other.EmailMatches(u.Email) {
				return nil, fmt.Errorf("seed: duplicate email %s", u.Email)
			}
		}
		seen["user:"+u.ID] = true
		s.users = append(s.users, u)
	}

	for _, a := range seed.Assets {
		if seen["asset:"+a.ID] || a.ID == "" {
			return nil, fmt.Errorf("seed: missing or duplicate asset id %q", a.ID)
		}
		if !a.Category.Valid() || !a.Condition.Valid() || !a.Status.Valid() {
			return nil, fmt.Errorf("seed: asset %s has an invalid category, condition or status", a.ID)
		}
		seen["asset:"+a.ID] = true
		s.observeID(a.ID)
		s.assets = append(s.assets, a)
	}

	held := map[string]string{}
	for _, a := range seed.Assignments {
		if seen["assignment:"+a.ID] || a.ID == "" {
			return nil, fmt.Errorf("seed: missing or duplicate assignment id %q", a.ID)
		}
		if a.IsActive() {
			if other, ok := held[a.AssetID]; ok {
				return nil, fmt.Errorf("seed: asset %s has two active assignments (%s, %s)", a.AssetID, other, a.ID)
			}
			held[a.AssetID] = a.ID
		}
		seen["assignment:"+a.ID] = true
		s.observeID(a.ID)
		s.assignments = append(s.assignments, a)
	}

	for _, r := range seed.RepairRequests {
		if seen["repair:"+r.ID] || r.ID == "" {
			return nil, fmt.Errorf("seed: missing or duplicate repair request id %q", r.ID)
		}
		if !r.IssueType.Valid() || !r.Priority.Valid() || !r.Status.Valid() {
			return nil, fmt.Errorf("seed: repair request %s has an invalid issue type, priority or status", r.ID)
		}
		seen["repair:"+r.ID] = true
		s.observeID(r.ID)
		s.repairs = append(s.repairs, r)
	}

	for i := range s.assets {
		_, ok := held[s.assets[i].ID]
		switch {
		case ok:
			s.assets[i].Status = models.StatusAssigned
		case s.assets[i].Status == models.StatusAssigned:
			s.assets[i].Status = models.StatusAvailable
		}
	}
	return s, nil
}

// Snapshot copies the current collections into seed form
func (s *Store) Snapshot() *Seed {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return &Seed{
		Users:          append([]models.User{}, s.users...),
		Assets:         append([]models.Asset{}, s.assets...),
		Assignments:    append([]models.Assignment{}, s.assignments...),
		RepairRequests: append([]models.RepairRequest{}, s.repairs...),
	}
}

// WriteSeed encodes the current collections as a YAML seed document
func (s *Store) WriteSeed(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(s.Snapshot()); err != nil {
		return fmt.Errorf("encode seed: %w", err)
	}
	return enc.Close()
}
