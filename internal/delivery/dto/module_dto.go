package dto

import (
	"time"

	"csystem-sip/internal/domain/entity"

	"github.com/google/uuid"
)

// Request DTOs

type CreateModuleRequest struct {
	Name         string   `json:"name" validate:"required,max=150"`
	Description  string   `json:"description" validate:"omitempty"`
	Icon         string   `json:"icon" validate:"omitempty,max=100"`
	AllowedRoles []string `json:"allowed_roles" validate:"omitempty,dive,required"`
	MenuCategory string   `json:"menu_category" validate:"omitempty,max=100"`
}

type UpdateModuleRequest struct {
	Name         string   `json:"name" validate:"required,max=150"`
	Description  string   `json:"description" validate:"omitempty"`
	Icon         string   `json:"icon" validate:"omitempty,max=100"`
	Status       string   `json:"status" validate:"omitempty,module_status"`
	AllowedRoles []string `json:"allowed_roles" validate:"omitempty,dive,required"`
	MenuCategory string   `json:"menu_category" validate:"omitempty,max=100"`
}

type CreateSectionRequest struct {
	Name string `json:"name" validate:"required,max=150"`
}

type FieldOptionRequest struct {
	Label string `json:"label" validate:"required"`
	Value string `json:"value" validate:"required"`
}

// FieldRequest creates or replaces a field definition
type FieldRequest struct {
	SectionName  string               `json:"section_name" validate:"required,max=150"`
	FieldName    string               `json:"field_name" validate:"required,max=100"`
	FieldType    string               `json:"field_type" validate:"required,field_type"`
	Label        string               `json:"label" validate:"required,max=255"`
	Placeholder  string               `json:"placeholder" validate:"omitempty,max=255"`
	IsRequired   bool                 `json:"is_required"`
	IsScored     bool                 `json:"is_scored"`
	MaxScore     *int                 `json:"max_score" validate:"omitempty,min=0"`
	FeedbackGood string               `json:"feedback_good"`
	FeedbackBad  string               `json:"feedback_bad"`
	HelpText     string               `json:"help_text"`
	Options      []FieldOptionRequest `json:"options" validate:"omitempty,dive"`
	Position     *int                 `json:"position" validate:"omitempty,min=0"`
}

// Response DTOs

type FieldOptionResponse struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

type FieldResponse struct {
	ID           uuid.UUID             `json:"id"`
	SectionID    uuid.UUID             `json:"section_id"`
	FieldName    string                `json:"field_name"`
	FieldType    string                `json:"field_type"`
	Category     string                `json:"category"`
	Label        string                `json:"label"`
	Placeholder  string                `json:"placeholder,omitempty"`
	IsRequired   bool                  `json:"is_required"`
	IsScored     bool                  `json:"is_scored"`
	MaxScore     *int                  `json:"max_score,omitempty"`
	FeedbackGood string                `json:"feedback_good,omitempty"`
	FeedbackBad  string                `json:"feedback_bad,omitempty"`
	HelpText     string                `json:"help_text,omitempty"`
	Options      []FieldOptionResponse `json:"options"`
	Position     int                   `json:"position"`
}

type SectionResponse struct {
	ID       uuid.UUID       `json:"id"`
	Name     string          `json:"name"`
	Position int             `json:"position"`
	Fields   []FieldResponse `json:"fields"`
}

type ModuleResponse struct {
	ID              uuid.UUID         `json:"id"`
	Name            string            `json:"name"`
	Description     string            `json:"description"`
	DescriptionHTML string            `json:"description_html,omitempty"`
	Icon            string            `json:"icon"`
	Status          string            `json:"status"`
	AllowedRoles    []string          `json:"allowed_roles"`
	MenuCategory    string            `json:"menu_category"`
	Sections        []SectionResponse `json:"sections,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

type ModuleListResponse struct {
	Modules []ModuleResponse `json:"modules"`
	Total   int              `json:"total"`
}

type FieldTypeGroupResponse struct {
	Category string                 `json:"category"`
	Types    []entity.FieldTypeInfo `json:"types"`
}

type FieldTypeCatalogResponse struct {
	Categories []FieldTypeGroupResponse `json:"categories"`
}
