// Package store holds the in-memory collections of users, assets,
// assignments and repair requests, and derives the joined views the
// dashboard reads. Views are recomputed on every call.
package store

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"asset-angel-api/internal/models"

	"github.com/google/uuid"
)

// Id prefixes for sequence-allocated entities
const (
	AssetPrefix      = "AST"
	AssignmentPrefix = "ASGN"
	RepairPrefix     = "REQ"
)

// Store is safe for concurrent use. Collections keep insertion order.
type Store struct {
	mu          sync.RWMutex
	users       []models.User
	assets      []models.Asset
	assignments []models.Assignment
	repairs     []models.RepairRequest

	seq       map[string]int
	now       func() time.Time
	newUserID func() string
}

// Option configures a Store
type Option func(*Store)

// WithClock replaces time.Now as the source of timestamps
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithUserIDs replaces the random UUID user id generator
func WithUserIDs(gen func() string) Option {
	return func(s *Store) {
		if gen != nil {
			s.newUserID = gen
		}
	}
}

// New returns an empty store
func New(opts ...Option) *Store {
	s := &Store{
		seq:       make(map[string]int),
		now:       time.Now,
		newUserID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// nextID allocates the next "PREFIX-NNN" id. Numbers are never reused.
func (s *Store) nextID(prefix string) string {
	s.seq[prefix]++
	return fmt.Sprintf("%s-%03d", prefix, s.seq[prefix])
}

// observeID advances the sequence past an existing id so allocation cannot
// collide with seeded records. Ids outside the PREFIX-NNN pattern are ignored.
func (s *Store) observeID(id string) {
	prefix, num, ok := strings.Cut(id, "-")
	if !ok {
		return
	}
	n, err := strconv.Atoi(num)
	if err != nil {
		return
	}
	if n > s.seq[prefix] {
		s.seq[prefix] = n
	}
}

// stamp returns the current time, strictly after prev
func (s *Store) stamp(prev time.Time) time.Time {
	t := s.now().UTC()
	if !t.After(prev) {
		t = prev.Add(time.Nanosecond)
	}
	return t
}

func (s *Store) userIndex(id string) int {
	for i := range s.users {
		if s.users[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) assetIndex(id string) int {
	for i := range s.assets {
		if s.assets[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) assignmentIndex(id string) int {
	for i := range s.assignments {
		if s.assignments[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) repairIndex(id string) int {
	for i := range s.repairs {
		if s.repairs[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) lookupUser(id string) *models.User {
	if i := s.userIndex(id); i >= 0 {
		u := s.users[i]
		return &u
	}
	return nil
}

func (s *Store) lookupAsset(id string) *models.Asset {
	if i := s.assetIndex(id); i >= 0 {
		a := s.assets[i]
		return &a
	}
	return nil
}

// activeAssignmentFor returns the index of the asset's active assignment, or -1
func (s *Store) activeAssignmentFor(assetID string) int {
	for i := range s.assignments {
		if s.assignments[i].AssetID == assetID && s.assignments[i].IsActive() {
			return i
		}
	}
	return -1
}

// setAssetStatus moves an asset between available and assigned as its
// assignments change. Maintenance and retired assets are left alone.
func (s *Store) setAssetStatus(assetID string, status models.AssetStatus) {
	i := s.assetIndex(assetID)
	if i < 0 || s.assets[i].Status == status {
		return
	}
	from := s.assets[i].Status
	if from != models.StatusAvailable && from != models.StatusAssigned {
		return
	}
	s.assets[i].Status = status
	s.assets[i].UpdatedAt = s.stamp(s.assets[i].UpdatedAt)
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
