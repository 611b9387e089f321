package model

import (
	"encoding/json"
	"time"
)

// LifecycleStatus tracks asset types and form definitions.
type LifecycleStatus string

const (
	LifecycleActive     LifecycleStatus = "Active"
	LifecycleDraft      LifecycleStatus = "Draft"
	LifecycleDeprecated LifecycleStatus = "Deprecated"
)

// HierarchyLevel places an asset in the equipment hierarchy.
type HierarchyLevel string

const (
	HierarchyEnterprise HierarchyLevel = "Enterprise"
	HierarchySite       HierarchyLevel = "Site"
	HierarchyArea       HierarchyLevel = "Area"
	HierarchySystem     HierarchyLevel = "System"
	HierarchyUnit       HierarchyLevel = "Unit"
	HierarchySubunit    HierarchyLevel = "Subunit"
	HierarchyComponent  HierarchyLevel = "Component"
	HierarchyPart       HierarchyLevel = "Part"
	HierarchySensor     HierarchyLevel = "Sensor"
)

// HierarchyLevels lists the levels from the top of the hierarchy down.
var HierarchyLevels = []HierarchyLevel{
	HierarchyEnterprise, HierarchySite, HierarchyArea, HierarchySystem,
	HierarchyUnit, HierarchySubunit, HierarchyComponent, HierarchyPart, HierarchySensor,
}

// AssetStatus is the operational state of an asset.
type AssetStatus string

const (
	AssetActive      AssetStatus = "Active"
	AssetMaintenance AssetStatus = "Maintenance"
	AssetInactive    AssetStatus = "Inactive"
)

// AssetStatuses lists the asset statuses in display order.
var AssetStatuses = []AssetStatus{AssetActive, AssetMaintenance, AssetInactive}

// CriticalityLevel ranks how critical an asset is.
type CriticalityLevel string

const (
	CriticalityHigh   CriticalityLevel = "High"
	CriticalityMedium CriticalityLevel = "Medium"
	CriticalityLow    CriticalityLevel = "Low"
)

// CriticalityLevels lists the criticality levels from most to least critical.
var CriticalityLevels = []CriticalityLevel{CriticalityHigh, CriticalityMedium, CriticalityLow}

// AssetType is a named equipment category owning the core field set.
type AssetType struct {
	ID          string          `json:"id" yaml:"id"`
	Name        string          `json:"name" yaml:"name"`
	Description string          `json:"description,omitempty" yaml:"description,omitempty"`
	Icon        string          `json:"icon,omitempty" yaml:"icon,omitempty"`
	Status      LifecycleStatus `json:"status" yaml:"status"`
}

// FormDefinition is a versioned template of custom fields, optionally scoped
// to one asset type.
type FormDefinition struct {
	ID          string          `json:"id" yaml:"id"`
	Name        string          `json:"name" yaml:"name"`
	Description string          `json:"description,omitempty" yaml:"description,omitempty"`
	AssetTypeID string          `json:"asset_type_id,omitempty" yaml:"asset_type_id,omitempty"`
	Version     int             `json:"version" yaml:"version"`
	IsPublished bool            `json:"is_published" yaml:"is_published"`
	Status      LifecycleStatus `json:"status" yaml:"status"`
}

// FormRule is a designer-authored show/hide/require rule. Conditions and
// actions are stored and displayed only; nothing in this module evaluates
// them.
type FormRule struct {
	ID          string          `json:"id" yaml:"id"`
	FormID      string          `json:"form_id,omitempty" yaml:"form_id,omitempty"`
	Name        string          `json:"name" yaml:"name"`
	Description string          `json:"description,omitempty" yaml:"description,omitempty"`
	Conditions  json.RawMessage `json:"conditions,omitempty" yaml:"-"`
	Actions     json.RawMessage `json:"actions,omitempty" yaml:"-"`
	IsEnabled   bool            `json:"is_enabled" yaml:"is_enabled"`
}

// Asset is a physical asset record. Data carries the merged core and custom
// field values.
type Asset struct {
	ID             string           `json:"id"`
	Name           string           `json:"name"`
	AssetTypeID    string           `json:"asset_type_id,omitempty"`
	ParentID       string           `json:"parent_id,omitempty"`
	HierarchyLevel HierarchyLevel   `json:"hierarchy_level"`
	Status         AssetStatus      `json:"status"`
	Criticality    CriticalityLevel `json:"criticality"`
	Location       string           `json:"location,omitempty"`
	Data           FormValue        `json:"data"`
	CreatedAt      time.Time        `json:"created_at,omitempty"`
	UpdatedAt      time.Time        `json:"updated_at,omitempty"`
}

// Valid reports whether l is one of HierarchyLevels.
func (l HierarchyLevel) Valid() bool {
	for _, level := range HierarchyLevels {
		if level == l {
			return true
		}
	}
	return false
}

// Valid reports whether s is a known asset status.
func (s AssetStatus) Valid() bool {
	switch s {
	case AssetActive, AssetMaintenance, AssetInactive:
		return true
	default:
		return false
	}
}

// Valid reports whether c is a known criticality level.
func (c CriticalityLevel) Valid() bool {
	switch c {
	case CriticalityHigh, CriticalityMedium, CriticalityLow:
		return true
	default:
		return false
	}
}
