package store

import (
	"time"

	"asset-angel-api/internal/models"
)

// AssignmentFilter narrows assignment listings. Query matches the asset
// name, the asset serial number or the user name.
type AssignmentFilter struct {
	Query  string
	UserID string
}

func (f AssignmentFilter) match(v models.AssignmentView) bool {
	if f.UserID != "" && v.UserID != f.UserID {
		return false
	}
	if f.Query == "" {
		return true
	}
	if v.Asset != nil && (containsFold(v.Asset.Name, f.Query) || containsFold(v.Asset.SerialNumber, f.Query)) {
		return true
	}
	return v.User != nil && containsFold(v.User.Name, f.Query)
}

func (s *Store) enrichAssignment(a models.Assignment) models.AssignmentView {
	return models.AssignmentView{
		Assignment: a,
		Asset:      s.lookupAsset(a.AssetID),
		User:       s.lookupUser(a.UserID),
	}
}

func (s *Store) listAssignments(f AssignmentFilter, activeOnly bool) []models.AssignmentView {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.AssignmentView{}
	for _, a := range s.assignments {
		if activeOnly && !a.IsActive() {
			continue
		}
		if v := s.enrichAssignment(a); f.match(v) {
			out = append(out, v)
		}
	}
	return out
}

// ListAssignments returns the active assignments with asset and user resolved
func (s *Store) ListAssignments(f AssignmentFilter) []models.AssignmentView {
	return s.listAssignments(f, true)
}

// ListAssignmentHistory returns every assignment, active and returned
func (s *Store) ListAssignmentHistory(f AssignmentFilter) []models.AssignmentView {
	return s.listAssignments(f, false)
}

// GetAssignment looks up an assignment by id, enriched
func (s *Store) GetAssignment(id string) (models.AssignmentView, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i := s.assignmentIndex(id); i >= 0 {
		return s.enrichAssignment(s.assignments[i]), true
	}
	return models.AssignmentView{}, false
}

// ListUserActiveAssets returns the assets the user currently holds. An
// assignment whose asset no longer exists is skipped.
func (s *Store) ListUserActiveAssets(userID string) []models.Asset {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.userActiveAssets(userID)
}

func (s *Store) userActiveAssets(userID string) []models.Asset {
	out := []models.Asset{}
	for _, a := range s.assignments {
		if a.UserID != userID || !a.IsActive() {
			continue
		}
		if asset := s.lookupAsset(a.AssetID); asset != nil {
			out = append(out, *asset)
		}
	}
	return out
}

// checkAssignable verifies that assetID may be handed to userID.
// skip is the assignment being edited, ignored when looking for holders.
func (s *Store) checkAssignable(assetID, userID, skip string) error {
	if err := required("assetId", assetID); err != nil {
		return err
	}
	if err := required("userId", userID); err != nil {
		return err
	}
	asset := s.lookupAsset(assetID)
	if asset == nil {
		return &NotFoundError{Entity: "asset", ID: assetID}
	}
	user := s.lookupUser(userID)
	if user == nil {
		return &NotFoundError{Entity: "user", ID: userID}
	}
	if !user.IsActive {
		return invalid("userId", "user %s is deactivated", userID)
	}
	if j := s.activeAssignmentFor(assetID); j >= 0 && s.assignments[j].ID != skip {
		return conflict("asset %s is already assigned under %s", assetID, s.assignments[j].ID)
	}
	if asset.Status == models.StatusMaintenance || asset.Status == models.StatusRetired {
		return conflict("asset %s is %s and cannot be assigned", assetID, asset.Status)
	}
	return nil
}

// checkHistoryRefs validates the references of a returned assignment. A
// reference that changes must resolve; an unchanged one may stay dangling.
func (s *Store) checkHistoryRefs(current models.Assignment, assetID, userID string) error {
	if err := required("assetId", assetID); err != nil {
		return err
	}
	if err := required("userId", userID); err != nil {
		return err
	}
	if assetID != current.AssetID && s.lookupAsset(assetID) == nil {
		return &NotFoundError{Entity: "asset", ID: assetID}
	}
	if userID != current.UserID && s.lookupUser(userID) == nil {
		return &NotFoundError{Entity: "user", ID: userID}
	}
	return nil
}

// CreateAssignment hands an asset to a user and marks the asset assigned
func (s *Store) CreateAssignment(in models.AssignmentInput) (models.AssignmentView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkAssignable(in.AssetID, in.UserID, ""); err != nil {
		return models.AssignmentView{}, err
	}

	a := models.Assignment{
		ID:         s.nextID(AssignmentPrefix),
		AssetID:    in.AssetID,
		UserID:     in.UserID,
		AssignedAt: s.now().UTC(),
		Notes:      in.Notes,
	}
	s.assignments = append(s.assignments, a)
	s.setAssetStatus(a.AssetID, models.StatusAssigned)
	return s.enrichAssignment(a), nil
}

// UpdateAssignment replaces the asset, user and notes of an assignment.
// Moving an active assignment to another asset frees the previous one.
func (s *Store) UpdateAssignment(id string, in models.AssignmentInput) (models.AssignmentView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.assignmentIndex(id)
	if i < 0 {
		return models.AssignmentView{}, &NotFoundError{Entity: "assignment", ID: id}
	}
	a := s.assignments[i]

	if a.IsActive() {
		if err := s.checkAssignable(in.AssetID, in.UserID, id); err != nil {
			return models.AssignmentView{}, err
		}
	} else if err := s.checkHistoryRefs(a, in.AssetID, in.UserID); err != nil {
		return models.AssignmentView{}, err
	}

	previous := a.AssetID
	a.AssetID = in.AssetID
	a.UserID = in.UserID
	a.Notes = in.Notes
	s.assignments[i] = a

	if a.IsActive() && previous != a.AssetID {
		s.setAssetStatus(previous, models.StatusAvailable)
		s.setAssetStatus(a.AssetID, models.StatusAssigned)
	}
	return s.enrichAssignment(a), nil
}

// ReturnAssignment closes an active assignment at the given time (now when
// zero) and makes the asset available again.
func (s *Store) ReturnAssignment(id string, at time.Time, notes *string) (models.AssignmentView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.assignmentIndex(id)
	if i < 0 {
		return models.AssignmentView{}, &NotFoundError{Entity: "assignment", ID: id}
	}
	a := s.assignments[i]
	if !a.IsActive() {
		return models.AssignmentView{}, conflict("assignment %s was already returned", id)
	}
	if at.IsZero() {
		at = s.now()
	}
	at = at.UTC()
	if at.Before(a.AssignedAt) {
		return models.AssignmentView{}, invalid("returnedAt", "must not be before assignedAt")
	}
	a.ReturnedAt = &at
	if notes != nil {
		a.Notes = notes
	}
	s.assignments[i] = a
	s.setAssetStatus(a.AssetID, models.StatusAvailable)
	return s.enrichAssignment(a), nil
}

// DeleteAssignment removes an assignment. Deleting an active one frees the asset.
func (s *Store) DeleteAssignment(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.assignmentIndex(id)
	if i < 0 {
		return &NotFoundError{Entity: "assignment", ID: id}
	}
	a := s.assignments[i]
	s.assignments = append(s.assignments[:i], s.assignments[i+1:]...)
	if a.IsActive() {
		s.setAssetStatus(a.AssetID, models.StatusAvailable)
	}
	return nil
}
