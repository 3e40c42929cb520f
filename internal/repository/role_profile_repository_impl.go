package repository

import (
	"context"

	"csystem-sip/internal/domain/entity"
	domainRepo "csystem-sip/internal/domain/repository"

	"gorm.io/gorm"
)

type roleProfileRepository struct{}

func NewRoleProfileRepository() domainRepo.RoleProfileRepository {
	return &roleProfileRepository{}
}

// Save on a keyed row updates it, or inserts it when nothing was updated.

func (r *roleProfileRepository) SaveAthlete(ctx context.Context, db *gorm.DB, profile *entity.AthleteProfile) error {
	return db.WithContext(ctx).Save(profile).Error
}

func (r *roleProfileRepository) SaveClub(ctx context.Context, db *gorm.DB, profile *entity.ClubProfile) error {
	return db.WithContext(ctx).Save(profile).Error
}

func (r *roleProfileRepository) SaveSchool(ctx context.Context, db *gorm.DB, profile *entity.SchoolProfile) error {
	return db.WithContext(ctx).Save(profile).Error
}

func (r *roleProfileRepository) SaveCoach(ctx context.Context, db *gorm.DB, profile *entity.CoachProfile) error {
	return db.WithContext(ctx).Save(profile).Error
}

func (r *roleProfileRepository) SaveJudge(ctx context.Context, db *gorm.DB, profile *entity.JudgeProfile) error {
	return db.WithContext(ctx).Save(profile).Error
}
