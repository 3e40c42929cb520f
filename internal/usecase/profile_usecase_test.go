package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"csystem-sip/internal/delivery/dto"
	"csystem-sip/internal/domain/entity"
	"csystem-sip/internal/domain/rules"
	"csystem-sip/internal/testutil"

	"github.com/spf13/afero"
)

func athleteRequest(dob string) *dto.UpdateProfileRequest {
	return &dto.UpdateProfileRequest{
		Name:        "Dimas Pratama",
		Whatsapp:    "0812-3456-7890",
		DateOfBirth: dob,
		Gender:      string(entity.GenderMale),
		ProvinceID:  "32",
		CityID:      "3273",
		Athlete:     &rules.AthleteSection{Division: "RECURVE"},
	}
}

func TestUpdateProfileRejectsMinorAthleteWithoutGuardian(t *testing.T) {
	f := newFixture(t)
	uc := f.profileUsecase()
	now := time.Now()
	athlete := testutil.CreateUser(t, f.db, entity.RoleIDAthlete, "Dimas")

	_, err := uc.UpdateProfile(context.Background(), sessionOf(athlete), athlete.ID,
		athleteRequest(now.AddDate(-16, 0, 0).Format(rules.DateLayout)))

	var fieldErrs rules.FieldErrors
	if !errors.As(err, &fieldErrs) {
		t.Fatalf("expected field errors, got %v", err)
	}
	if len(fieldErrs) != 2 || fieldErrs[rules.FieldParentName] == "" || fieldErrs[rules.FieldParentPhone] == "" {
		t.Errorf("unexpected field errors: %v", fieldErrs)
	}

	stored, _ := f.userRepo.FindByID(context.Background(), f.db, athlete.ID)
	if stored.Name != "Dimas" || stored.Athlete != nil {
		t.Errorf("rejected update must not persist anything: %+v", stored)
	}
}

func TestUpdateProfileStoresNormalisedValues(t *testing.T) {
	f := newFixture(t)
	uc := f.profileUsecase()
	now := time.Now()
	athlete := testutil.CreateUser(t, f.db, entity.RoleIDAthlete, "Dimas")

	req := athleteRequest(now.AddDate(-16, 0, 0).Format(rules.DateLayout))
	req.Athlete.ParentName = "Sari Pratama"
	req.Athlete.ParentPhone = "0812 9876 5432"
	req.Occupation = "   "

	profile, err := uc.UpdateProfile(context.Background(), sessionOf(athlete), athlete.ID, req)
	if err != nil {
		t.Fatalf("UpdateProfile() error = %v", err)
	}
	if !profile.Completeness.Complete {
		t.Errorf("expected a complete profile, got %v", profile.Completeness.Errors)
	}
	if profile.Age == nil || *profile.Age != 16 {
		t.Errorf("Age = %v, want 16", profile.Age)
	}

	stored, _ := f.userRepo.FindByID(context.Background(), f.db, athlete.ID)
	if stored.Whatsapp == nil || *stored.Whatsapp != "081234567890" {
		t.Errorf("whatsapp = %v", stored.Whatsapp)
	}
	if stored.Occupation != nil {
		t.Errorf("blank occupation must be stored as NULL, got %q", *stored.Occupation)
	}
	if stored.NIK != nil {
		t.Errorf("NIK must stay empty for a 16 year old, got %q", *stored.NIK)
	}
	if stored.Athlete == nil || stored.Athlete.ParentPhone == nil || *stored.Athlete.ParentPhone != "081298765432" {
		t.Errorf("athlete section not stored: %+v", stored.Athlete)
	}
	if f.countAudit(t, entity.AuditActionProfileUpdate) != 1 {
		t.Error("expected one profile update audit entry")
	}
}

func TestUpdateProfileResetsNIKVerification(t *testing.T) {
	f := newFixture(t)
	uc := f.profileUsecase()
	now := time.Now()
	coach := testutil.CreateUser(t, f.db, entity.RoleIDCoach, "Rina", testutil.BornYearsAgo(now, 30), func(u *entity.User) {
		nik := "3201123456789012"
		u.NIK = &nik
		u.NIKVerified = true
	})

	req := &dto.UpdateProfileRequest{
		Name:        "Rina Kusuma",
		Whatsapp:    "081234567890",
		NIK:         "3201123456789012",
		DateOfBirth: coach.DateOfBirth.Format(rules.DateLayout),
		Gender:      string(entity.GenderFemale),
		ProvinceID:  "32",
		CityID:      "3201",
		Coach:       &rules.CoachSection{CertificationLevel: "LEVEL_1"},
	}
	if _, err := uc.UpdateProfile(context.Background(), sessionOf(coach), coach.ID, req); err != nil {
		t.Fatalf("UpdateProfile() error = %v", err)
	}
	stored, _ := f.userRepo.FindByID(context.Background(), f.db, coach.ID)
	if !stored.NIKVerified {
		t.Error("unchanged NIK must keep its verification")
	}

	req.NIK = "3201123456789099"
	if _, err := uc.UpdateProfile(context.Background(), sessionOf(coach), coach.ID, req); err != nil {
		t.Fatalf("UpdateProfile() error = %v", err)
	}
	stored, _ = f.userRepo.FindByID(context.Background(), f.db, coach.ID)
	if stored.NIKVerified {
		t.Error("changed NIK must lose its verification")
	}
	if stored.Coach == nil || stored.Coach.CertificationLevel == nil {
		t.Errorf("coach section not stored: %+v", stored.Coach)
	}
}

func TestProfileAccess(t *testing.T) {
	f := newFixture(t)
	uc := f.profileUsecase()
	ctx := context.Background()

	child := testutil.CreateUser(t, f.db, entity.RoleIDAthlete, "Anak")
	parent := testutil.CreateUser(t, f.db, entity.RoleIDParent, "Orang Tua")
	stranger := testutil.CreateUser(t, f.db, entity.RoleIDCoach, "Orang Lain")
	f.linkAccepted(t, parent, child)

	if _, err := uc.GetProfile(ctx, sessionOf(parent), child.ID); err != nil {
		t.Errorf("guardian GetProfile() error = %v", err)
	}
	if _, err := uc.GetProfile(ctx, adminSession(t, f), child.ID); err != nil {
		t.Errorf("admin GetProfile() error = %v", err)
	}
	if _, err := uc.GetProfile(ctx, sessionOf(stranger), child.ID); !errors.Is(err, ErrForbidden) {
		t.Errorf("stranger GetProfile() error = %v, want ErrForbidden", err)
	}
}

func TestUploadAvatar(t *testing.T) {
	f := newFixture(t)
	uc := f.profileUsecase()
	ctx := context.Background()
	user := testutil.CreateUser(t, f.db, entity.RoleIDCoach, "Rina")

	first, err := uc.UploadAvatar(ctx, sessionOf(user), pngImage(t, 1024, 768))
	if err != nil {
		t.Fatalf("UploadAvatar() error = %v", err)
	}
	if !strings.HasPrefix(first.AvatarURL, testUploadsURL+"avatars/") {
		t.Errorf("unexpected avatar url %q", first.AvatarURL)
	}
	firstKey := strings.TrimPrefix(first.AvatarURL, testUploadsURL)
	if ok, _ := afero.Exists(f.fs, firstKey); !ok {
		t.Fatalf("avatar %s not written", firstKey)
	}

	second, err := uc.UploadAvatar(ctx, sessionOf(user), pngImage(t, 64, 64))
	if err != nil {
		t.Fatalf("UploadAvatar() error = %v", err)
	}
	if ok, _ := afero.Exists(f.fs, firstKey); ok {
		t.Error("previous avatar must be removed")
	}

	_, err = uc.UploadAvatar(ctx, sessionOf(user), strings.NewReader("definitely not an image"))
	if !errors.Is(err, ErrInvalidAvatar) {
		t.Fatalf("UploadAvatar(garbage) error = %v, want ErrInvalidAvatar", err)
	}
	stored, _ := f.userRepo.FindByID(ctx, f.db, user.ID)
	if stored.AvatarURL == nil || *stored.AvatarURL != second.AvatarURL {
		t.Errorf("rejected upload must keep the current avatar, got %v", stored.AvatarURL)
	}
}

func TestParentIntegrationFlow(t *testing.T) {
	f := newFixture(t)
	uc := f.profileUsecase()
	ctx := context.Background()
	now := time.Now()

	parent := testutil.CreateUser(t, f.db, entity.RoleIDParent, "Sari")
	child := testutil.CreateUser(t, f.db, entity.RoleIDAthlete, "Dimas", testutil.BornYearsAgo(now, 12))

	link, err := uc.LinkChild(ctx, sessionOf(parent), &dto.LinkChildRequest{ChildCoreID: child.CoreID})
	if err != nil {
		t.Fatalf("LinkChild() error = %v", err)
	}
	if link.Status != string(entity.ParentLinkPending) {
		t.Errorf("Status = %s, want PENDING", link.Status)
	}

	if _, err := uc.LinkChild(ctx, sessionOf(parent), &dto.LinkChildRequest{ChildCoreID: child.CoreID}); !errors.Is(err, ErrLinkExists) {
		t.Errorf("duplicate LinkChild() error = %v, want ErrLinkExists", err)
	}
	if _, err := uc.LinkChild(ctx, sessionOf(parent), &dto.LinkChildRequest{ChildCoreID: "0126999999"}); !errors.Is(err, ErrChildNotFound) {
		t.Errorf("unknown LinkChild() error = %v, want ErrChildNotFound", err)
	}
	if _, err := uc.LinkChild(ctx, sessionOf(child), &dto.LinkChildRequest{ChildCoreID: parent.CoreID}); !errors.Is(err, ErrParentRoleOnly) {
		t.Errorf("non-parent LinkChild() error = %v, want ErrParentRoleOnly", err)
	}

	pending, err := uc.GetIntegrationRequests(ctx, sessionOf(child))
	if err != nil || len(pending) != 1 || pending[0].ParentName != "Sari" {
		t.Fatalf("GetIntegrationRequests() = %+v, %v", pending, err)
	}

	if _, err := uc.RespondIntegration(ctx, sessionOf(parent), &dto.RespondIntegrationRequest{LinkID: link.ID, Accept: withPtr(true)}); !errors.Is(err, ErrForbidden) {
		t.Errorf("parent answering own request error = %v, want ErrForbidden", err)
	}

	accepted, err := uc.RespondIntegration(ctx, sessionOf(child), &dto.RespondIntegrationRequest{LinkID: link.ID, Accept: withPtr(true)})
	if err != nil {
		t.Fatalf("RespondIntegration() error = %v", err)
	}
	if accepted.Status != string(entity.ParentLinkAccepted) || accepted.RespondedAt == nil {
		t.Errorf("unexpected response %+v", accepted)
	}

	if _, err := uc.RespondIntegration(ctx, sessionOf(child), &dto.RespondIntegrationRequest{LinkID: link.ID, Accept: withPtr(false)}); !errors.Is(err, ErrLinkResolved) {
		t.Errorf("second answer error = %v, want ErrLinkResolved", err)
	}

	children, err := uc.GetChildren(ctx, sessionOf(parent))
	if err != nil {
		t.Fatalf("GetChildren() error = %v", err)
	}
	if children.Total != 1 || children.Children[0].ID != child.ID || !children.Children[0].IsMinor {
		t.Errorf("unexpected children %+v", children)
	}
}

func TestCreateReferral(t *testing.T) {
	f := newFixture(t)
	uc := f.profileUsecase()
	ctx := context.Background()
	parent := testutil.CreateUser(t, f.db, entity.RoleIDParent, "Sari")

	ref, err := uc.CreateReferral(ctx, sessionOf(parent))
	if err != nil {
		t.Fatalf("CreateReferral() error = %v", err)
	}
	owner, err := f.referrals.Peek(ctx, ref.Token)
	if err != nil || owner != parent.ID {
		t.Errorf("Peek() = %v, %v", owner, err)
	}

	coach := testutil.CreateUser(t, f.db, entity.RoleIDCoach, "Rina")
	if _, err := uc.CreateReferral(ctx, sessionOf(coach)); !errors.Is(err, ErrParentRoleOnly) {
		t.Errorf("CreateReferral(coach) error = %v, want ErrParentRoleOnly", err)
	}
}
