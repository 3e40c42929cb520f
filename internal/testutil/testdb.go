// Package testutil builds in-memory infrastructure for package tests.
package testutil

import (
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	"csystem-sip/internal/domain/entity"

	"github.com/alicebob/miniredis/v2"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB opens a private in-memory SQLite database with the full schema and the
// role catalog seeded.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_pragma=foreign_keys(0)", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := db.AutoMigrate(
		&entity.Role{},
		&entity.User{},
		&entity.AthleteProfile{},
		&entity.ClubProfile{},
		&entity.SchoolProfile{},
		&entity.CoachProfile{},
		&entity.JudgeProfile{},
		&entity.ParentLink{},
		&entity.ClubAffiliation{},
		&entity.Module{},
		&entity.ModuleSection{},
		&entity.ModuleField{},
		&entity.Document{},
		&entity.Order{},
		&entity.OrderItem{},
		&entity.OrderCourier{},
		&entity.AuditLog{},
	); err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}

	for _, card := range entity.RoleCatalog {
		role := entity.Role{ID: card.ID, Code: card.Code, RoleName: card.Name, Selectable: card.Selectable}
		if err := db.Create(&role).Error; err != nil {
			t.Fatalf("failed to seed role %s: %v", card.Name, err)
		}
	}

	return db
}

// NewRedis starts an in-process redis server and returns a client bound to it
func NewRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Fatalf("failed to ping miniredis: %v", err)
	}
	return client, mr
}

// NewLogger returns a logger that discards output
func NewLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// Clock returns a fixed time source
func Clock(now time.Time) func() time.Time {
	return func() time.Time { return now }
}

// CreateUser inserts a person with the given role and returns it
func CreateUser(t *testing.T, db *gorm.DB, roleID int, name string, mutate ...func(*entity.User)) *entity.User {
	t.Helper()

	id := uuid.New()
	u := &entity.User{
		ID:       id,
		RoleID:   roleID,
		CoreID:   fmt.Sprintf("T%s", id.String()[:12]),
		Email:    fmt.Sprintf("%s@example.com", id.String()[:8]),
		Password: "$2a$10$invalidhashfortests",
		Name:     name,
		IsActive: true,
	}
	for _, m := range mutate {
		m(u)
	}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("failed to create user %s: %v", name, err)
	}
	return u
}

// BornYearsAgo sets the date of birth so the user is exactly years old at now
func BornYearsAgo(now time.Time, years int) func(*entity.User) {
	return func(u *entity.User) {
		dob := time.Date(now.Year()-years, now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		u.DateOfBirth = &dob
	}
}
