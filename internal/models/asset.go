package models

import (
	"slices"
	"strings"
	"time"
)

// AssetCategory is the closed set of hardware categories
type AssetCategory string

const (
	CategoryLaptop   AssetCategory = "laptop"
	CategoryDesktop  AssetCategory = "desktop"
	CategoryMonitor  AssetCategory = "monitor"
	CategoryKeyboard AssetCategory = "keyboard"
	CategoryMouse    AssetCategory = "mouse"
	CategoryPhone    AssetCategory = "phone"
	CategoryTablet   AssetCategory = "tablet"
	CategoryPrinter  AssetCategory = "printer"
	CategoryOther    AssetCategory = "other"
)

var AssetCategories = []AssetCategory{
	CategoryLaptop, CategoryDesktop, CategoryMonitor, CategoryKeyboard, CategoryMouse,
	CategoryPhone, CategoryTablet, CategoryPrinter, CategoryOther,
}

func (c AssetCategory) Valid() bool { return slices.Contains(AssetCategories, c) }

// AssetCondition describes the physical state of an asset
type AssetCondition string

const (
	ConditionExcellent AssetCondition = "excellent"
	ConditionGood      AssetCondition = "good"
	ConditionFair      AssetCondition = "fair"
	ConditionPoor      AssetCondition = "poor"
)

var AssetConditions = []AssetCondition{ConditionExcellent, ConditionGood, ConditionFair, ConditionPoor}

func (c AssetCondition) Valid() bool { return slices.Contains(AssetConditions, c) }

// AssetStatus is the lifecycle state of an asset. StatusAssigned is owned by
// the assignment workflow and cannot be set directly.
type AssetStatus string

const (
	StatusAvailable   AssetStatus = "available"
	StatusAssigned    AssetStatus = "assigned"
	StatusMaintenance AssetStatus = "maintenance"
	StatusRetired     AssetStatus = "retired"
)

var AssetStatuses = []AssetStatus{StatusAvailable, StatusAssigned, StatusMaintenance, StatusRetired}

func (s AssetStatus) Valid() bool { return slices.Contains(AssetStatuses, s) }

// ParseAssetCategory parses a category name from a query string or spreadsheet cell
func ParseAssetCategory(s string) (AssetCategory, error) {
	c := AssetCategory(strings.ToLower(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", &EnumError{Type: "category", Value: s}
	}
	return c, nil
}

// ParseAssetCondition parses a condition name
func ParseAssetCondition(s string) (AssetCondition, error) {
	c := AssetCondition(strings.ToLower(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", &EnumError{Type: "condition", Value: s}
	}
	return c, nil
}

// ParseAssetStatus parses a status name
func ParseAssetStatus(s string) (AssetStatus, error) {
	st := AssetStatus(strings.ToLower(strings.TrimSpace(s)))
	if !st.Valid() {
		return "", &EnumError{Type: "status", Value: s}
	}
	return st, nil
}

// Asset represents a tracked piece of company hardware
type Asset struct {
	ID             string         `json:"id" yaml:"id"`
	Name           string         `json:"name" yaml:"name"`
	Category       AssetCategory  `json:"category" yaml:"category"`
	SerialNumber   string         `json:"serialNumber" yaml:"serialNumber"`
	Condition      AssetCondition `json:"condition" yaml:"condition"`
	Status         AssetStatus    `json:"status" yaml:"status"`
	PurchaseDate   Date           `json:"purchaseDate" yaml:"purchaseDate"`
	PurchasePrice  float64        `json:"purchasePrice" yaml:"purchasePrice"`
	WarrantyExpiry *Date          `json:"warrantyExpiry,omitempty" yaml:"warrantyExpiry,omitempty"`
	Notes          *string        `json:"notes,omitempty" yaml:"notes,omitempty"`
	CreatedAt      time.Time      `json:"createdAt" yaml:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt" yaml:"updatedAt"`
}

// AssetInput represents the request body for creating or replacing an asset.
// An empty Status defaults to available.
type AssetInput struct {
	Name           string         `json:"name"`
	Category       AssetCategory  `json:"category"`
	SerialNumber   string         `json:"serialNumber"`
	Condition      AssetCondition `json:"condition"`
	Status         AssetStatus    `json:"status,omitempty"`
	PurchaseDate   Date           `json:"purchaseDate"`
	PurchasePrice  float64        `json:"purchasePrice"`
	WarrantyExpiry *Date          `json:"warrantyExpiry,omitempty"`
	Notes          *string        `json:"notes,omitempty"`
}

// InputFrom returns the input that would reproduce a's editable fields
func InputFrom(a Asset) AssetInput {
	return AssetInput{
		Name:           a.Name,
		Category:       a.Category,
		SerialNumber:   a.SerialNumber,
		Condition:      a.Condition,
		Status:         a.Status,
		PurchaseDate:   a.PurchaseDate,
		PurchasePrice:  a.PurchasePrice,
		WarrantyExpiry: a.WarrantyExpiry,
		Notes:          a.Notes,
	}
}
