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

type userRepository struct{}

func NewUserRepository() domainRepo.UserRepository {
	return &userRepository{}
}

func (r *userRepository) Create(ctx context.Context, db *gorm.DB, user *entity.User) error {
	return db.WithContext(ctx).Omit(clause.Associations).Create(user).Error
}

func (r *userRepository) FindByEmail(ctx context.Context, db *gorm.DB, email string) (*entity.User, error) {
	return r.findOne(ctx, db.Preload("Role"), "email = ?", email)
}

// FindByID loads the person with its role and every role extension.
func (r *userRepository) FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.User, error) {
	return r.findOne(ctx, withExtensions(db), "id = ?", id)
}

func (r *userRepository) FindByCoreID(ctx context.Context, db *gorm.DB, coreID string) (*entity.User, error) {
	return r.findOne(ctx, withExtensions(db), "core_id = ?", coreID)
}

func (r *userRepository) ExistsByEmail(ctx context.Context, db *gorm.DB, email string) (bool, error) {
	var count int64
	err := db.WithContext(ctx).Model(&entity.User{}).Where("email = ?", email).Count(&count).Error
	return count > 0, err
}

func (r *userRepository) ExistsByCoreID(ctx context.Context, db *gorm.DB, coreID string) (bool, error) {
	var count int64
	err := db.WithContext(ctx).Model(&entity.User{}).Where("core_id = ?", coreID).Count(&count).Error
	return count > 0, err
}

// Update writes the root identity columns only. Role extensions have their own repository.
func (r *userRepository) Update(ctx context.Context, db *gorm.DB, user *entity.User) error {
	return db.WithContext(ctx).Omit(clause.Associations).Save(user).Error
}

func (r *userRepository) FindActiveClubs(ctx context.Context, db *gorm.DB) ([]entity.User, error) {
	var clubs []entity.User
	err := db.WithContext(ctx).
		Preload("Club").
		Where("role_id = ? AND is_active = ?", entity.RoleIDClub, true).
		Order("name ASC").
		Find(&clubs).Error
	if err != nil {
		return nil, err
	}
	return clubs, nil
}

func (r *userRepository) findOne(ctx context.Context, db *gorm.DB, query string, arg interface{}) (*entity.User, error) {
	var user entity.User
	err := db.WithContext(ctx).Where(query, arg).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func withExtensions(db *gorm.DB) *gorm.DB {
	return db.Preload("Role").
		Preload("Athlete").
		Preload("Club").
		Preload("School").
		Preload("Coach").
		Preload("Judge")
}
