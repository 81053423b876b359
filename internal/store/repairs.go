package store

import (
	"strings"
	"unicode/utf8"

	"asset-angel-api/internal/models"
)

// RepairFilter narrows ListAllRepairRequests. Department compares against
// the requesting user's current department.
type RepairFilter struct {
	Status     models.IssueStatus
	Department string
}

func (f RepairFilter) match(v models.RepairRequestView) bool {
	if f.Status != "" && v.Status != f.Status {
		return false
	}
	if f.Department != "" && (v.User == nil || !strings.EqualFold(v.User.Department, f.Department)) {
		return false
	}
	return true
}

func (s *Store) enrichRepair(r models.RepairRequest) models.RepairRequestView {
	return models.RepairRequestView{
		RepairRequest: r,
		Asset:         s.lookupAsset(r.AssetID),
		User:          s.lookupUser(r.UserID),
	}
}

// ListAllRepairRequests returns every repair request matching f, enriched
func (s *Store) ListAllRepairRequests(f RepairFilter) []models.RepairRequestView {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.RepairRequestView{}
	for _, r := range s.repairs {
		if v := s.enrichRepair(r); f.match(v) {
			out = append(out, v)
		}
	}
	return out
}

// ListRepairRequestsForUser returns the requests raised by userID, enriched
func (s *Store) ListRepairRequestsForUser(userID string) []models.RepairRequestView {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.RepairRequestView{}
	for _, r := range s.repairs {
		if r.UserID == userID {
			out = append(out, s.enrichRepair(r))
		}
	}
	return out
}

// GetRepairRequest looks up a repair request by id, enriched
func (s *Store) GetRepairRequest(id string) (models.RepairRequestView, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i := s.repairIndex(id); i >= 0 {
		return s.enrichRepair(s.repairs[i]), true
	}
	return models.RepairRequestView{}, false
}

// CreateRepairRequest files a pending request from userID against an asset
// the user currently holds.
func (s *Store) CreateRepairRequest(userID string, in models.RepairRequestInput) (models.RepairRequestView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := required("userId", userID); err != nil {
		return models.RepairRequestView{}, err
	}
	if s.lookupUser(userID) == nil {
		return models.RepairRequestView{}, &NotFoundError{Entity: "user", ID: userID}
	}
	if err := required("assetId", in.AssetID); err != nil {
		return models.RepairRequestView{}, err
	}
	if s.lookupAsset(in.AssetID) == nil {
		return models.RepairRequestView{}, &NotFoundError{Entity: "asset", ID: in.AssetID}
	}
	if j := s.activeAssignmentFor(in.AssetID); j < 0 || s.assignments[j].UserID != userID {
		return models.RepairRequestView{}, invalid("assetId", "asset %s is not assigned to you", in.AssetID)
	}
	if err := required("issueType", string(in.IssueType)); err != nil {
		return models.RepairRequestView{}, err
	}
	if !in.IssueType.Valid() {
		return models.RepairRequestView{}, invalid("issueType", "%q is not a known issue type", in.IssueType)
	}
	if err := required("description", in.Description); err != nil {
		return models.RepairRequestView{}, err
	}
	if utf8.RuneCountInString(in.Description) > models.MaxDescriptionLength {
		return models.RepairRequestView{}, invalid("description", "must be at most %d characters", models.MaxDescriptionLength)
	}
	if err := required("priority", string(in.Priority)); err != nil {
		return models.RepairRequestView{}, err
	}
	if !in.Priority.Valid() {
		return models.RepairRequestView{}, invalid("priority", "%q is not a known priority", in.Priority)
	}

	now := s.now().UTC()
	r := models.RepairRequest{
		ID:          s.nextID(RepairPrefix),
		AssetID:     in.AssetID,
		UserID:      userID,
		IssueType:   in.IssueType,
		Description: strings.TrimSpace(in.Description),
		Priority:    in.Priority,
		Status:      models.IssuePending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.repairs = append(s.repairs, r)
	return s.enrichRepair(r), nil
}

// UpdateRepairRequestStatus records the admin's status and remarks. A nil
// AdminRemarks keeps the existing remarks; an empty one clears them.
func (s *Store) UpdateRepairRequestStatus(id string, upd models.RepairStatusUpdate) (models.RepairRequestView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.repairIndex(id)
	if i < 0 {
		return models.RepairRequestView{}, &NotFoundError{Entity: "repair request", ID: id}
	}
	if err := required("status", string(upd.Status)); err != nil {
		return models.RepairRequestView{}, err
	}
	if !upd.Status.Valid() {
		return models.RepairRequestView{}, invalid("status", "%q is not a known status", upd.Status)
	}

	r := s.repairs[i]
	r.Status = upd.Status
	if upd.AdminRemarks != nil {
		if strings.TrimSpace(*upd.AdminRemarks) == "" {
			r.AdminRemarks = nil
		} else {
			remarks := strings.TrimSpace(*upd.AdminRemarks)
			r.AdminRemarks = &remarks
		}
	}
	r.UpdatedAt = s.stamp(r.UpdatedAt)
	s.repairs[i] = r
	return s.enrichRepair(r), nil
}
