package dto

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs

// RegisterRequest is the onboarding signup form
type RegisterRequest struct {
	RoleCode        string `json:"role_code" validate:"required,len=2,numeric"`
	Name            string `json:"name" validate:"required,min=2,max=255"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=8"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
	ProvinceID      string `json:"province_id" validate:"required"`
	CityID          string `json:"city_id" validate:"required"`
	Whatsapp        string `json:"whatsapp" validate:"required,wa_phone"`
	AgreeTerms      bool   `json:"agree_terms" validate:"required"`
	AgreePrivacy    bool   `json:"agree_privacy" validate:"required"`
	ReferralToken   string `json:"referral_token" validate:"omitempty,alphanum"`
}

type CheckEmailRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// VerifyExistingRequest confirms ownership of an existing account before adding a role
type VerifyExistingRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// Response DTOs

type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	CoreID    string    `json:"core_id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	RoleCode  string    `json:"role_code"`
	AvatarURL string    `json:"avatar_url,omitempty"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type RegisterResponse struct {
	User  *UserResponse  `json:"user"`
	Token *TokenResponse `json:"token"`
}

type CheckEmailResponse struct {
	Exists bool `json:"exists"`
}

type VerifyExistingResponse struct {
	Redirect string        `json:"redirect"`
	User     *UserResponse `json:"user"`
}

// RoleResponse is one signup role card
type RoleResponse struct {
	ID    int    `json:"id"`
	Code  string `json:"code"`
	Name  string `json:"name"`
	Label string `json:"label"`
}
