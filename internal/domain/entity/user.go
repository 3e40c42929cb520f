package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Gender of a person
type Gender string

const (
	GenderMale   Gender = "MALE"
	GenderFemale Gender = "FEMALE"
)

// User is the root identity of a person, shared by every role
type User struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	RoleID      int        `gorm:"not null;index" json:"role_id"`
	CoreID      string     `gorm:"column:core_id;type:varchar(20);uniqueIndex;not null" json:"core_id"`
	Email       string     `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Password    string     `gorm:"type:text;not null" json:"-"`
	Name        string     `gorm:"type:varchar(255);not null" json:"name"`
	Phone       *string    `gorm:"type:varchar(20)" json:"phone,omitempty"`
	Whatsapp    *string    `gorm:"type:varchar(20)" json:"whatsapp,omitempty"`
	NIK         *string    `gorm:"column:nik;type:char(16)" json:"nik,omitempty"`
	NIKVerified bool       `gorm:"column:nik_verified;not null;default:false" json:"nik_verified"`
	DateOfBirth *time.Time `gorm:"type:date" json:"date_of_birth,omitempty"`
	Gender      *Gender    `gorm:"type:varchar(10)" json:"gender,omitempty"`
	ProvinceID  *string    `gorm:"type:varchar(10)" json:"province_id,omitempty"`
	CityID      *string    `gorm:"type:varchar(10)" json:"city_id,omitempty"`
	IsStudent   bool       `gorm:"not null;default:false" json:"is_student"`
	Occupation  *string    `gorm:"type:varchar(100)" json:"occupation,omitempty"`
	AvatarURL   *string    `gorm:"type:text" json:"avatar_url,omitempty"`
	IsActive    bool       `gorm:"not null;default:true;index" json:"is_active"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Role    Role            `gorm:"foreignKey:RoleID" json:"role,omitempty"`
	Athlete *AthleteProfile `gorm:"foreignKey:UserID" json:"athlete,omitempty"`
	Club    *ClubProfile    `gorm:"foreignKey:UserID" json:"club,omitempty"`
	School  *SchoolProfile  `gorm:"foreignKey:UserID" json:"school,omitempty"`
	Coach   *CoachProfile   `gorm:"foreignKey:UserID" json:"coach,omitempty"`
	Judge   *JudgeProfile   `gorm:"foreignKey:UserID" json:"judge,omitempty"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
