package models

import (
	"slices"
	"strings"
	"time"
)

// MaxDescriptionLength caps the free-text issue description
const MaxDescriptionLength = 1000

type IssueType string

const (
	IssueDamaged    IssueType = "damaged"
	IssueNotWorking IssueType = "not_working"
	IssueSoftware   IssueType = "software_issue"
	IssueHardware   IssueType = "hardware_issue"
	IssueOther      IssueType = "other"
)

var IssueTypes = []IssueType{IssueDamaged, IssueNotWorking, IssueSoftware, IssueHardware, IssueOther}

func (t IssueType) Valid() bool { return slices.Contains(IssueTypes, t) }

type IssuePriority string

const (
	PriorityLow    IssuePriority = "low"
	PriorityMedium IssuePriority = "medium"
	PriorityHigh   IssuePriority = "high"
)

var IssuePriorities = []IssuePriority{PriorityLow, PriorityMedium, PriorityHigh}

func (p IssuePriority) Valid() bool { return slices.Contains(IssuePriorities, p) }

type IssueStatus string

const (
	IssuePending    IssueStatus = "pending"
	IssueInProgress IssueStatus = "in_progress"
	IssueResolved   IssueStatus = "resolved"
	IssueRejected   IssueStatus = "rejected"
)

var IssueStatuses = []IssueStatus{IssuePending, IssueInProgress, IssueResolved, IssueRejected}

func (s IssueStatus) Valid() bool { return slices.Contains(IssueStatuses, s) }

// Open reports whether the request still needs attention
func (s IssueStatus) Open() bool {
	return s == IssuePending || s == IssueInProgress
}

// ParseIssueStatus parses a repair status from a query string
func ParseIssueStatus(s string) (IssueStatus, error) {
	st := IssueStatus(strings.ToLower(strings.TrimSpace(s)))
	if !st.Valid() {
		return "", &EnumError{Type: "issue status", Value: s}
	}
	return st, nil
}

// RepairRequest is an issue an employee raised against an asset they hold
type RepairRequest struct {
	ID           string        `json:"id" yaml:"id"`
	AssetID      string        `json:"assetId" yaml:"assetId"`
	UserID       string        `json:"userId" yaml:"userId"`
	IssueType    IssueType     `json:"issueType" yaml:"issueType"`
	Description  string        `json:"description" yaml:"description"`
	Priority     IssuePriority `json:"priority" yaml:"priority"`
	Status       IssueStatus   `json:"status" yaml:"status"`
	AdminRemarks *string       `json:"adminRemarks,omitempty" yaml:"adminRemarks,omitempty"`
	CreatedAt    time.Time     `json:"createdAt" yaml:"createdAt"`
	UpdatedAt    time.Time     `json:"updatedAt" yaml:"updatedAt"`
}

// RepairRequestView is a repair request with its asset and user resolved
type RepairRequestView struct {
	RepairRequest
	Asset *Asset `json:"asset,omitempty"`
	User  *User  `json:"user,omitempty"`
}

// RepairRequestInput represents the body an employee submits
type RepairRequestInput struct {
	AssetID     string        `json:"assetId"`
	IssueType   IssueType     `json:"issueType"`
	Description string        `json:"description"`
	Priority    IssuePriority `json:"priority"`
}

// RepairStatusUpdate represents the admin's triage of a request
type RepairStatusUpdate struct {
	Status       IssueStatus `json:"status"`
	AdminRemarks *string     `json:"adminRemarks,omitempty"`
}
