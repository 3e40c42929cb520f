package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AthleteProfile holds athlete-specific profile data
type AthleteProfile struct {
	UserID      uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	Division    *string   `gorm:"type:varchar(50)" json:"division,omitempty"`
	SchoolID    *string   `gorm:"type:varchar(40)" json:"school_id,omitempty"`
	NISN        *string   `gorm:"column:nisn;type:varchar(20)" json:"nisn,omitempty"`
	ParentName  *string   `gorm:"type:varchar(255)" json:"parent_name,omitempty"`
	ParentPhone *string   `gorm:"type:varchar(20)" json:"parent_phone,omitempty"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (AthleteProfile) TableName() string {
	return "athlete_profiles"
}

// ClubProfile holds club-specific profile data
type ClubProfile struct {
	UserID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	Address         *string   `gorm:"type:text" json:"address,omitempty"`
	Hotline         *string   `gorm:"type:varchar(20)" json:"hotline,omitempty"`
	IsPerpaniMember bool      `gorm:"not null;default:false" json:"is_perpani_member"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (ClubProfile) TableName() string {
	return "club_profiles"
}

// SchoolProfile holds school-specific profile data
type SchoolProfile struct {
	UserID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	NPSN          *string   `gorm:"column:npsn;type:varchar(20)" json:"npsn,omitempty"`
	Address       *string   `gorm:"type:text" json:"address,omitempty"`
	PrincipalName *string   `gorm:"type:varchar(255)" json:"principal_name,omitempty"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (SchoolProfile) TableName() string {
	return "school_profiles"
}

// CoachProfile holds coach-specific profile data
type CoachProfile struct {
	UserID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	CertificationLevel *string   `gorm:"type:varchar(50)" json:"certification_level,omitempty"`
	ClubID             *string   `gorm:"type:varchar(40)" json:"club_id,omitempty"`
	UpdatedAt          time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (CoachProfile) TableName() string {
	return "coach_profiles"
}

// JudgeProfile holds judge-specific profile data
type JudgeProfile struct {
	UserID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	LicenseNumber *string   `gorm:"type:varchar(50)" json:"license_number,omitempty"`
	LicenseLevel  *string   `gorm:"type:varchar(50)" json:"license_level,omitempty"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (JudgeProfile) TableName() string {
	return "judge_profiles"
}

// ParentLinkStatus is the state of a parent-child integration request
type ParentLinkStatus string

const (
	ParentLinkPending  ParentLinkStatus = "PENDING"
	ParentLinkAccepted ParentLinkStatus = "ACCEPTED"
	ParentLinkRejected ParentLinkStatus = "REJECTED"
)

// ParentLink connects a PARENT user to a child person record
type ParentLink struct {
	ID          uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	ParentID    uuid.UUID        `gorm:"type:uuid;not null;index" json:"parent_id"`
	ChildID     uuid.UUID        `gorm:"type:uuid;not null;index" json:"child_id"`
	Status      ParentLinkStatus `gorm:"type:varchar(10);not null;default:'PENDING';index" json:"status"`
	CreatedAt   time.Time        `gorm:"autoCreateTime" json:"created_at"`
	RespondedAt *time.Time       `json:"responded_at,omitempty"`

	// Relationships
	Parent User `gorm:"foreignKey:ParentID" json:"parent,omitempty"`
	Child  User `gorm:"foreignKey:ChildID" json:"child,omitempty"`
}

func (ParentLink) TableName() string {
	return "parent_links"
}

// IsAccepted checks if the link grants the parent guardian rights
func (l *ParentLink) IsAccepted() bool {
	return l.Status == ParentLinkAccepted
}

func (l *ParentLink) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
