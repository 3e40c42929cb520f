package repository

import (
	"context"

	"csystem-sip/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ClubAffiliationRepository interface {
	Create(ctx context.Context, db *gorm.DB, affiliation *entity.ClubAffiliation) error
	FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.ClubAffiliation, error)
	FindActiveByAthlete(ctx context.Context, db *gorm.DB, athleteID uuid.UUID) (*entity.ClubAffiliation, error)
	FindLatestByAthlete(ctx context.Context, db *gorm.DB, athleteID uuid.UUID) (*entity.ClubAffiliation, error)
	FindPending(ctx context.Context, db *gorm.DB, clubID *uuid.UUID) ([]entity.ClubAffiliation, error)
	Update(ctx context.Context, db *gorm.DB, affiliation *entity.ClubAffiliation) error
	Delete(ctx context.Context, db *gorm.DB, id uuid.UUID) error
}
