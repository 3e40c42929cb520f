package dto

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs

// JoinClubRequest asks to join a club. A parent names the child in AthleteID.
type JoinClubRequest struct {
	ClubID    uuid.UUID  `json:"club_id" validate:"required"`
	AthleteID *uuid.UUID `json:"athlete_id" validate:"omitempty"`
}

type LeaveClubRequest struct {
	AthleteID *uuid.UUID `json:"athlete_id" validate:"omitempty"`
}

// Response DTOs

type ClubStatusResponse struct {
	AthleteID   uuid.UUID  `json:"athlete_id"`
	AthleteName string     `json:"athlete_name"`
	IsMinor     bool       `json:"is_minor"`
	Status      string     `json:"status"`
	ClubID      *uuid.UUID `json:"club_id,omitempty"`
	ClubName    string     `json:"club_name,omitempty"`
	RequestID   *uuid.UUID `json:"request_id,omitempty"`
	RequestedAt *time.Time `json:"requested_at,omitempty"`
	DecidedAt   *time.Time `json:"decided_at,omitempty"`
}

type ClubStatusListResponse struct {
	Statuses []ClubStatusResponse `json:"statuses"`
}

type ClubRequestResponse struct {
	ID            uuid.UUID  `json:"id"`
	AthleteID     uuid.UUID  `json:"athlete_id"`
	AthleteCoreID string     `json:"athlete_core_id"`
	AthleteName   string     `json:"athlete_name"`
	ClubID        uuid.UUID  `json:"club_id"`
	ClubName      string     `json:"club_name"`
	Status        string     `json:"status"`
	RequestedAt   time.Time  `json:"requested_at"`
	DecidedAt     *time.Time `json:"decided_at,omitempty"`
}

type ClubRequestListResponse struct {
	Requests []ClubRequestResponse `json:"requests"`
	Total    int                   `json:"total"`
}

// JoinClubResponse carries the persisted request and, for minors, the WhatsApp
// link that asks the guardian to confirm.
type JoinClubResponse struct {
	Request      ClubRequestResponse `json:"request"`
	ApprovalLink string              `json:"approval_link,omitempty"`
}

type ClubSummaryResponse struct {
	ID              uuid.UUID `json:"id"`
	CoreID          string    `json:"core_id"`
	Name            string    `json:"name"`
	ProvinceID      string    `json:"province_id,omitempty"`
	CityID          string    `json:"city_id,omitempty"`
	Hotline         string    `json:"hotline,omitempty"`
	IsPerpaniMember bool      `json:"is_perpani_member"`
}

type ClubDirectoryResponse struct {
	Clubs []ClubSummaryResponse `json:"clubs"`
	Total int                   `json:"total"`
}
