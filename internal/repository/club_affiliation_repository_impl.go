package repository

import (
	"context"
	"errors"

	"csystem-sip/internal/domain/entity"
	domainRepo "csystem-sip/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type clubAffiliationRepository struct{}

func NewClubAffiliationRepository() domainRepo.ClubAffiliationRepository {
	return &clubAffiliationRepository{}
}

func (r *clubAffiliationRepository) Create(ctx context.Context, db *gorm.DB, affiliation *entity.ClubAffiliation) error {
	return db.WithContext(ctx).Omit(clause.Associations).Create(affiliation).Error
}

func (r *clubAffiliationRepository) FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.ClubAffiliation, error) {
	return r.first(db.WithContext(ctx).
		Preload("Athlete").
		Preload("Club.Club").
		Where("id = ?", id))
}

// FindActiveByAthlete returns the PENDING or MEMBER row of an athlete, if any.
func (r *clubAffiliationRepository) FindActiveByAthlete(ctx context.Context, db *gorm.DB, athleteID uuid.UUID) (*entity.ClubAffiliation, error) {
	return r.first(db.WithContext(ctx).
		Preload("Club.Club").
		Where("athlete_id = ? AND status IN ?", athleteID,
			[]entity.AffiliationStatus{entity.AffiliationPending, entity.AffiliationMember}))
}

// FindLatestByAthlete returns the most recent non-deleted row, including LEFT ones.
func (r *clubAffiliationRepository) FindLatestByAthlete(ctx context.Context, db *gorm.DB, athleteID uuid.UUID) (*entity.ClubAffiliation, error) {
	return r.first(db.WithContext(ctx).
		Preload("Club.Club").
		Where("athlete_id = ?", athleteID).
		Order("requested_at DESC"))
}

func (r *clubAffiliationRepository) FindPending(ctx context.Context, db *gorm.DB, clubID *uuid.UUID) ([]entity.ClubAffiliation, error) {
	query := db.WithContext(ctx).
		Preload("Athlete").
		Preload("Club").
		Where("status = ?", entity.AffiliationPending)
	if clubID != nil {
		query = query.Where("club_id = ?", *clubID)
	}

	var affiliations []entity.ClubAffiliation
	if err := query.Order("requested_at ASC").Find(&affiliations).Error; err != nil {
		return nil, err
	}
	return affiliations, nil
}

func (r *clubAffiliationRepository) Update(ctx context.Context, db *gorm.DB, affiliation *entity.ClubAffiliation) error {
	return db.WithContext(ctx).Omit(clause.Associations).Save(affiliation).Error
}

// Delete soft-deletes the row so the athlete's derived status falls back.
func (r *clubAffiliationRepository) Delete(ctx context.Context, db *gorm.DB, id uuid.UUID) error {
	return db.WithContext(ctx).Where("id = ?", id).Delete(&entity.ClubAffiliation{}).Error
}

func (r *clubAffiliationRepository) first(query *gorm.DB) (*entity.ClubAffiliation, error) {
	var affiliation entity.ClubAffiliation
	if err := query.First(&affiliation).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &affiliation, nil
}
