package repository

import (
	"context"
	"testing"

	"csystem-sip/internal/domain/entity"
	"csystem-sip/internal/testutil"
)

func TestUserRepositoryLoadsExtensions(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	users := NewUserRepository()
	profiles := NewRoleProfileRepository()

	athlete := testutil.CreateUser(t, db, entity.RoleIDAthlete, "Dimas")

	parent := "Sari"
	if err := profiles.SaveAthlete(ctx, db, &entity.AthleteProfile{UserID: athlete.ID, ParentName: &parent}); err != nil {
		t.Fatalf("first save: %v", err)
	}
	phone := "081298765432"
	if err := profiles.SaveAthlete(ctx, db, &entity.AthleteProfile{UserID: athlete.ID, ParentName: &parent, ParentPhone: &phone}); err != nil {
		t.Fatalf("second save: %v", err)
	}

	got, err := users.FindByCoreID(ctx, db, athlete.CoreID)
	if err != nil || got == nil {
		t.Fatalf("FindByCoreID() = %v, %v", got, err)
	}
	if got.Role.RoleName != entity.RoleAthlete {
		t.Errorf("role = %q, want %q", got.Role.RoleName, entity.RoleAthlete)
	}
	if got.Athlete == nil || got.Athlete.ParentPhone == nil || *got.Athlete.ParentPhone != phone {
		t.Errorf("athlete extension not updated: %+v", got.Athlete)
	}
	if got.Club != nil {
		t.Errorf("unexpected club extension on athlete")
	}
}

func TestUserRepositoryExistsAndMissing(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	users := NewUserRepository()

	u := testutil.CreateUser(t, db, entity.RoleIDCoach, "Rina")

	if ok, err := users.ExistsByEmail(ctx, db, u.Email); err != nil || !ok {
		t.Errorf("ExistsByEmail() = %v, %v", ok, err)
	}
	if ok, err := users.ExistsByCoreID(ctx, db, "0526000000"); err != nil || ok {
		t.Errorf("ExistsByCoreID() = %v, %v", ok, err)
	}
	if got, err := users.FindByEmail(ctx, db, "nobody@example.com"); err != nil || got != nil {
		t.Errorf("FindByEmail() = %v, %v, want nil, nil", got, err)
	}
}

func TestUserRepositoryFindActiveClubs(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	users := NewUserRepository()

	testutil.CreateUser(t, db, entity.RoleIDClub, "Zeta Archery")
	testutil.CreateUser(t, db, entity.RoleIDClub, "Alpha Archery")
	inactive := testutil.CreateUser(t, db, entity.RoleIDClub, "Closed Club")
	if err := db.Model(inactive).Update("is_active", false).Error; err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	testutil.CreateUser(t, db, entity.RoleIDAthlete, "Not A Club")

	clubs, err := users.FindActiveClubs(ctx, db)
	if err != nil {
		t.Fatalf("FindActiveClubs() error = %v", err)
	}
	if len(clubs) != 2 || clubs[0].Name != "Alpha Archery" {
		t.Errorf("clubs = %+v", clubs)
	}
}
