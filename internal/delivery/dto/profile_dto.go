package dto

import (
	"time"

	"csystem-sip/internal/domain/rules"

	"github.com/google/uuid"
)

// Request DTOs

// UpdateProfileRequest carries the root identity and the caller's role section.
// It is checked by the profile rules engine rather than struct tags.
type UpdateProfileRequest = rules.ProfileInput

type LinkChildRequest struct {
	ChildCoreID string `json:"child_core_id" validate:"required,max=20"`
}

type RespondIntegrationRequest struct {
	LinkID uuid.UUID `json:"link_id" validate:"required"`
	Accept *bool     `json:"accept" validate:"required"`
}

// Response DTOs

type ProfileResponse struct {
	ID          uuid.UUID `json:"id"`
	CoreID      string    `json:"core_id"`
	Email       string    `json:"email"`
	Role        string    `json:"role"`
	Name        string    `json:"name"`
	Phone       string    `json:"phone,omitempty"`
	Whatsapp    string    `json:"whatsapp,omitempty"`
	NIK         string    `json:"nik,omitempty"`
	NIKVerified bool      `json:"nik_verified"`
	DateOfBirth string    `json:"date_of_birth,omitempty"`
	Age         *int      `json:"age,omitempty"`
	Gender      string    `json:"gender,omitempty"`
	ProvinceID  string    `json:"province_id,omitempty"`
	CityID      string    `json:"city_id,omitempty"`
	IsStudent   bool      `json:"is_student"`
	Occupation  string    `json:"occupation,omitempty"`
	AvatarURL   string    `json:"avatar_url,omitempty"`

	Athlete *rules.AthleteSection `json:"athlete,omitempty"`
	Club    *rules.ClubSection    `json:"club,omitempty"`
	School  *rules.SchoolSection  `json:"school,omitempty"`
	Coach   *rules.CoachSection   `json:"coach,omitempty"`
	Judge   *rules.JudgeSection   `json:"judge,omitempty"`

	Completeness rules.Completeness `json:"completeness"`
	UpdatedAt    time.Time          `json:"updated_at"`
}

type AvatarResponse struct {
	AvatarURL string `json:"avatar_url"`
}

type ParentLinkResponse struct {
	ID          uuid.UUID  `json:"id"`
	ParentID    uuid.UUID  `json:"parent_id"`
	ParentName  string     `json:"parent_name,omitempty"`
	ChildID     uuid.UUID  `json:"child_id"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	RespondedAt *time.Time `json:"responded_at,omitempty"`
}

type ChildResponse struct {
	LinkID      uuid.UUID `json:"link_id"`
	ID          uuid.UUID `json:"id"`
	CoreID      string    `json:"core_id"`
	Name        string    `json:"name"`
	DateOfBirth string    `json:"date_of_birth,omitempty"`
	IsMinor     bool      `json:"is_minor"`
}

type ChildListResponse struct {
	Children []ChildResponse `json:"children"`
	Total    int             `json:"total"`
}

type ReferralResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}
