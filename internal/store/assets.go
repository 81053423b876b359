package store

import (
	"strings"

	"asset-angel-api/internal/models"
)

// AssetFilter narrows ListAssets. Zero values match everything.
type AssetFilter struct {
	Query    string
	Status   models.AssetStatus
	Category models.AssetCategory
}

func (f AssetFilter) match(a models.Asset) bool {
	if f.Status != "" && a.Status != f.Status {
		return false
	}
	if f.Category != "" && a.Category != f.Category {
		return false
	}
	if f.Query != "" {
		return containsFold(a.Name, f.Query) || containsFold(a.SerialNumber, f.Query)
	}
	return true
}

// ListAssets returns assets matching f in insertion order
func (s *Store) ListAssets(f AssetFilter) []models.Asset {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.Asset{}
	for _, a := range s.assets {
		if f.match(a) {
			out = append(out, a)
		}
	}
	return out
}

// GetAsset looks up an asset by id
func (s *Store) GetAsset(id string) (models.Asset, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if a := s.lookupAsset(id); a != nil {
		return *a, true
	}
	return models.Asset{}, false
}

// FindAssetBySerial looks up an asset by case-insensitive serial number
func (s *Store) FindAssetBySerial(serial string) (models.Asset, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, a := range s.assets {
		if strings.EqualFold(a.SerialNumber, strings.TrimSpace(serial)) {
			return a, true
		}
	}
	return models.Asset{}, false
}

// AvailableAssets lists assets that can be handed out, plus the asset held
// by exceptAssignmentID so an edit form can keep its current selection.
func (s *Store) AvailableAssets(exceptAssignmentID string) []models.Asset {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keep := ""
	if i := s.assignmentIndex(exceptAssignmentID); i >= 0 {
		keep = s.assignments[i].AssetID
	}
	out := []models.Asset{}
	for _, a := range s.assets {
		if a.Status == models.StatusAvailable || (keep != "" && a.ID == keep) {
			out = append(out, a)
		}
	}
	return out
}

// validateAsset checks in and returns the status the asset should
// carry given whether it currently has an active assignment.
func (s *Store) validateAsset(in models.AssetInput, selfID string, held bool) (models.AssetStatus, error) {
	if err := required("name", in.Name); err != nil {
		return "", err
	}
	if err := required("category", string(in.Category)); err != nil {
		return "", err
	}
	if !in.Category.Valid() {
		return "", invalid("category", "%q is not a known category", in.Category)
	}
	if err := required("serialNumber", in.SerialNumber); err != nil {
		return "", err
	}
	if err := required("condition", string(in.Condition)); err != nil {
		return "", err
	}
	if !in.Condition.Valid() {
		return "", invalid("condition", "%q is not a known condition", in.Condition)
	}
	if in.PurchaseDate.IsZero() {
		return "", invalid("purchaseDate", "is required")
	}
	if in.PurchasePrice < 0 {
		return "", invalid("purchasePrice", "must not be negative")
	}

	status := in.Status
	switch {
	case status == "" && held:
		status = models.StatusAssigned
	case status == "":
		status = models.StatusAvailable
	case !status.Valid():
		return "", invalid("status", "%q is not a known status", status)
	case status == models.StatusAssigned && !held:
		return "", invalid("status", "is set to assigned by creating an assignment")
	case status != models.StatusAssigned && held:
		return "", invalid("status", "cannot change while the asset is assigned; return it first")
	}

	for _, a := range s.assets {
		if a.ID != selfID && strings.EqualFold(a.SerialNumber, strings.TrimSpace(in.SerialNumber)) {
			return "", conflict("asset with serial number %s already exists", a.SerialNumber)
		}
	}
	return status, nil
}

// CreateAsset validates in and appends a new asset with a fresh AST id
func (s *Store) CreateAsset(in models.AssetInput) (models.Asset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	status, err := s.validateAsset(in, "", false)
	if err != nil {
		return models.Asset{}, err
	}

	now := s.now().UTC()
	a := models.Asset{
		ID:             s.nextID(AssetPrefix),
		Name:           strings.TrimSpace(in.Name),
		Category:       in.Category,
		SerialNumber:   strings.TrimSpace(in.SerialNumber),
		Condition:      in.Condition,
		Status:         status,
		PurchaseDate:   in.PurchaseDate,
		PurchasePrice:  in.PurchasePrice,
		WarrantyExpiry: in.WarrantyExpiry,
		Notes:          in.Notes,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	s.assets = append(s.assets, a)
	return a, nil
}

// UpdateAsset replaces the asset's editable fields and refreshes UpdatedAt
func (s *Store) UpdateAsset(id string, in models.AssetInput) (models.Asset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.assetIndex(id)
	if i < 0 {
		return models.Asset{}, &NotFoundError{Entity: "asset", ID: id}
	}
	status, err := s.validateAsset(in, id, s.activeAssignmentFor(id) >= 0)
	if err != nil {
		return models.Asset{}, err
	}

	a := s.assets[i]
	a.Name = strings.TrimSpace(in.Name)
	a.Category = in.Category
	a.SerialNumber = strings.TrimSpace(in.SerialNumber)
	a.Condition = in.Condition
	a.Status = status
	a.PurchaseDate = in.PurchaseDate
	a.PurchasePrice = in.PurchasePrice
	a.WarrantyExpiry = in.WarrantyExpiry
	a.Notes = in.Notes
	a.UpdatedAt = s.stamp(a.UpdatedAt)
	s.assets[i] = a
	return a, nil
}

// ValidateAsset runs the checks CreateAsset (empty id) or UpdateAsset would
// apply to in, without writing anything.
func (s *Store) ValidateAsset(id string, in models.AssetInput) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	held := false
	if id != "" {
		if s.assetIndex(id) < 0 {
			return &NotFoundError{Entity: "asset", ID: id}
		}
		held = s.activeAssignmentFor(id) >= 0
	}
	_, err := s.validateAsset(in, id, held)
	return err
}

// DeleteAsset removes an asset that is not currently assigned
func (s *Store) DeleteAsset(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.assetIndex(id)
	if i < 0 {
		return &NotFoundError{Entity: "asset", ID: id}
	}
	if j := s.activeAssignmentFor(id); j >= 0 {
		return conflict("asset %s is assigned under %s", id, s.assignments[j].ID)
	}
	s.assets = append(s.assets[:i], s.assets[i+1:]...)
	return nil
}
