package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AffiliationStatus represents the club-join lifecycle of an athlete
type AffiliationStatus string

const (
	AffiliationNone    AffiliationStatus = "NONE"
	AffiliationPending AffiliationStatus = "PENDING"
	AffiliationMember  AffiliationStatus = "MEMBER"
	AffiliationLeft    AffiliationStatus = "LEFT"
)

// ClubAffiliation is one join request between an athlete and a club.
// At most one PENDING or MEMBER row exists per athlete.
type ClubAffiliation struct {
	ID          uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	AthleteID   uuid.UUID         `gorm:"type:uuid;not null;index" json:"athlete_id"`
	ClubID      uuid.UUID         `gorm:"type:uuid;not null;index" json:"club_id"`
	RequestedBy uuid.UUID         `gorm:"type:uuid;not null" json:"requested_by"`
	Status      AffiliationStatus `gorm:"type:varchar(10);not null;default:'PENDING';index" json:"status"`
	RequestedAt time.Time         `gorm:"not null" json:"requested_at"`
	DecidedAt   *time.Time        `json:"decided_at,omitempty"`
	DeletedAt   gorm.DeletedAt    `gorm:"index" json:"-"`

	// Relationships
	Athlete User `gorm:"foreignKey:AthleteID" json:"athlete,omitempty"`
	Club    User `gorm:"foreignKey:ClubID" json:"club,omitempty"`
}

func (ClubAffiliation) TableName() string {
	return "club_affiliations"
}

func (a *ClubAffiliation) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// IsActive reports whether the affiliation is non-terminal
func (a *ClubAffiliation) IsActive() bool {
	return a.Status == AffiliationPending || a.Status == AffiliationMember
}

// Approve marks a pending request as accepted membership
func (a *ClubAffiliation) Approve(at time.Time) {
	a.Status = AffiliationMember
	a.DecidedAt = &at
}

// Leave terminates membership (or withdraws a request)
func (a *ClubAffiliation) Leave(at time.Time) {
	a.Status = AffiliationLeft
	a.DecidedAt = &at
}
