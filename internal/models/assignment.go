package models

import "time"

// Assignment links an asset to the user holding it. A nil ReturnedAt marks
// the assignment as active.
type Assignment struct {
	ID         string     `json:"id" yaml:"id"`
	AssetID    string     `json:"assetId" yaml:"assetId"`
	UserID     string     `json:"userId" yaml:"userId"`
	AssignedAt time.Time  `json:"assignedAt" yaml:"assignedAt"`
	ReturnedAt *time.Time `json:"returnedAt,omitempty" yaml:"returnedAt,omitempty"`
	Notes      *string    `json:"notes,omitempty" yaml:"notes,omitempty"`
}

// IsActive reports whether the asset is still held
func (a Assignment) IsActive() bool {
	return a.ReturnedAt == nil
}

// AssignmentView is an assignment with its asset and user resolved.
// Either side is nil when the reference no longer resolves.
type AssignmentView struct {
	Assignment
	Asset *Asset `json:"asset,omitempty"`
	User  *User  `json:"user,omitempty"`
}

// AssignmentInput represents the request body for creating or editing an assignment
type AssignmentInput struct {
	AssetID string  `json:"assetId"`
	UserID  string  `json:"userId"`
	Notes   *string `json:"notes,omitempty"`
}

// ReturnRequest is the optional body of the return endpoint
type ReturnRequest struct {
	ReturnedAt *time.Time `json:"returnedAt,omitempty"`
	Notes      *string    `json:"notes,omitempty"`
}
