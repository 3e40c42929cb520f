package repository

import (
	"context"

	"csystem-sip/internal/domain/entity"

	"gorm.io/gorm"
)

// RoleProfileRepository persists the role-specific profile extensions. Every
// Save* call creates the row on first use.
type RoleProfileRepository interface {
	SaveAthlete(ctx context.Context, db *gorm.DB, profile *entity.AthleteProfile) error
	SaveClub(ctx context.Context, db *gorm.DB, profile *entity.ClubProfile) error
	SaveSchool(ctx context.Context, db *gorm.DB, profile *entity.SchoolProfile) error
	SaveCoach(ctx context.Context, db *gorm.DB, profile *entity.CoachProfile) error
	SaveJudge(ctx context.Context, db *gorm.DB, profile *entity.JudgeProfile) error
}
