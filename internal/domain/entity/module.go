package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ModuleStatus represents the publication state of an assessment module
type ModuleStatus string

const (
	ModuleStatusDraft    ModuleStatus = "DRAFT"
	ModuleStatusActive   ModuleStatus = "ACTIVE"
	ModuleStatusArchived ModuleStatus = "ARCHIVED"
)

// IsValid reports whether s is one of the known statuses
func (s ModuleStatus) IsValid() bool {
	switch s {
	case ModuleStatusDraft, ModuleStatusActive, ModuleStatusArchived:
		return true
	}
	return false
}

// Module is an admin-authored assessment template
type Module struct {
	ID           uuid.UUID                    `gorm:"type:uuid;primaryKey" json:"id"`
	Name         string                       `gorm:"type:varchar(150);not null" json:"name"`
	Description  string                       `gorm:"type:text" json:"description"`
	Icon         string                       `gorm:"type:varchar(100)" json:"icon"`
	Status       ModuleStatus                 `gorm:"type:varchar(10);not null;default:'DRAFT';index" json:"status"`
	AllowedRoles datatypes.JSONType[[]string] `json:"allowed_roles"`
	MenuCategory string                       `gorm:"type:varchar(100)" json:"menu_category"`
	CreatedBy    *uuid.UUID                   `gorm:"type:uuid" json:"created_by,omitempty"`
	CreatedAt    time.Time                    `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time                    `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Sections []ModuleSection `gorm:"foreignKey:ModuleID;constraint:OnDelete:CASCADE" json:"sections,omitempty"`
}

func (Module) TableName() string {
	return "modules"
}

func (m *Module) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// AllowsRole reports whether a role name may open the module.
// An empty allow-list is open to every role.
func (m *Module) AllowsRole(roleName string) bool {
	roles := m.AllowedRoles.Data()
	if len(roles) == 0 {
		return true
	}
	for _, r := range roles {
		if r == roleName {
			return true
		}
	}
	return false
}

// ModuleSection is a named, ordered grouping of fields
type ModuleSection struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ModuleID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_module_section_name" json:"module_id"`
	Name      string    `gorm:"type:varchar(150);not null;uniqueIndex:idx_module_section_name" json:"name"`
	Position  int       `gorm:"not null;default:0" json:"position"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`

	// Relationships
	Fields []ModuleField `gorm:"foreignKey:SectionID;constraint:OnDelete:CASCADE" json:"fields,omitempty"`
}

func (ModuleSection) TableName() string {
	return "module_sections"
}

func (s *ModuleSection) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// FieldOption is one choice of a selection-type field
type FieldOption struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// ModuleField is one input slot in a module form
type ModuleField struct {
	ID           uuid.UUID                         `gorm:"type:uuid;primaryKey" json:"id"`
	ModuleID     uuid.UUID                         `gorm:"type:uuid;not null;uniqueIndex:idx_module_field_name" json:"module_id"`
	SectionID    uuid.UUID                         `gorm:"type:uuid;not null;index" json:"section_id"`
	FieldName    string                            `gorm:"type:varchar(100);not null;uniqueIndex:idx_module_field_name" json:"field_name"`
	FieldType    FieldType                         `gorm:"type:varchar(30);not null" json:"field_type"`
	Label        string                            `gorm:"type:varchar(255);not null" json:"label"`
	Placeholder  string                            `gorm:"type:varchar(255)" json:"placeholder"`
	IsRequired   bool                              `gorm:"not null;default:false" json:"is_required"`
	IsScored     bool                              `gorm:"not null;default:false" json:"is_scored"`
	MaxScore     *int                              `json:"max_score,omitempty"`
	FeedbackGood string                            `gorm:"type:text" json:"feedback_good"`
	FeedbackBad  string                            `gorm:"type:text" json:"feedback_bad"`
	HelpText     string                            `gorm:"type:text" json:"help_text"`
	Options      datatypes.JSONType[[]FieldOption] `json:"options"`
	Position     int                               `gorm:"not null;default:0" json:"position"`
	CreatedAt    time.Time                         `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time                         `gorm:"autoUpdateTime" json:"updated_at"`
}

func (ModuleField) TableName() string {
	return "module_fields"
}

func (f *ModuleField) BeforeCreate(tx *gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}
