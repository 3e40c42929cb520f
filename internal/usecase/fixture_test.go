package usecase

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"
	"time"

	"csystem-sip/config"
	"csystem-sip/internal/domain/entity"
	domainRepo "csystem-sip/internal/domain/repository"
	"csystem-sip/internal/infrastructure/storage"
	"csystem-sip/internal/repository"
	"csystem-sip/internal/service"
	"csystem-sip/internal/session"
	"csystem-sip/internal/testutil"
	"csystem-sip/pkg/jwt"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"gorm.io/gorm"
)

const testUploadsURL = "https://files.example.com/uploads/"

// fixture wires every usecase against in-memory infrastructure
type fixture struct {
	db    *gorm.DB
	redis *redis.Client
	mr    *miniredis.Miniredis
	fs    afero.Fs
	log   *logrus.Logger

	userRepo        domainRepo.UserRepository
	roleRepo        domainRepo.RoleRepository
	roleProfileRepo domainRepo.RoleProfileRepository
	parentLinkRepo  domainRepo.ParentLinkRepository
	clubRepo        domainRepo.ClubAffiliationRepository
	moduleRepo      domainRepo.ModuleRepository
	documentRepo    domainRepo.DocumentRepository
	orderRepo       domainRepo.OrderRepository
	auditRepo       domainRepo.AuditLogRepository

	audit     service.AuditService
	referrals *service.ReferralService
	clubs     *service.ClubDirectoryService
	files     *storage.FileStorage
	jwt       *jwt.JWTService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := testutil.NewDB(t)
	rdb, mr := testutil.NewRedis(t)
	log := testutil.NewLogger()
	fs := afero.NewMemMapFs()

	f := &fixture{
		db:              db,
		redis:           rdb,
		mr:              mr,
		fs:              fs,
		log:             log,
		userRepo:        repository.NewUserRepository(),
		roleRepo:        repository.NewRoleRepository(),
		roleProfileRepo: repository.NewRoleProfileRepository(),
		parentLinkRepo:  repository.NewParentLinkRepository(),
		clubRepo:        repository.NewClubAffiliationRepository(),
		moduleRepo:      repository.NewModuleRepository(),
		documentRepo:    repository.NewDocumentRepository(),
		orderRepo:       repository.NewOrderRepository(),
		auditRepo:       repository.NewAuditLogRepository(),
		files:           storage.NewFileStorage(fs, testUploadsURL, 1<<20),
		jwt: jwt.NewJWTService(config.JWTConfig{
			Secret:        "test-secret",
			AccessExpiry:  15 * time.Minute,
			RefreshExpiry: 24 * time.Hour,
		}),
	}
	f.audit = service.NewAuditService(log, f.auditRepo)
	f.referrals = service.NewReferralService(rdb, log, time.Hour)
	f.clubs = service.NewClubDirectoryService(db, rdb, log, f.userRepo, time.Hour)
	t.Cleanup(f.clubs.Stop)

	return f
}

func (f *fixture) authUsecase() AuthUsecase {
	return NewAuthUsecase(f.db, f.log, f.userRepo, f.roleRepo, f.parentLinkRepo, f.audit, f.referrals, f.jwt, f.redis)
}

func (f *fixture) profileUsecase() ProfileUsecase {
	return NewProfileUsecase(f.db, f.log, f.userRepo, f.roleProfileRepo, f.parentLinkRepo, f.audit,
		service.NewAvatarProcessor(), f.referrals, f.clubs, f.files)
}

func (f *fixture) clubUsecase() ClubUsecase {
	return NewClubUsecase(f.db, f.log, f.userRepo, f.clubRepo, f.parentLinkRepo, f.audit, f.clubs)
}

func (f *fixture) moduleUsecase() ModuleUsecase {
	return NewModuleUsecase(f.db, f.log, f.moduleRepo, f.audit)
}

func (f *fixture) documentUsecase() DocumentUsecase {
	return NewDocumentUsecase(f.db, f.log, f.documentRepo, f.userRepo, f.parentLinkRepo, f.audit, f.files)
}

func (f *fixture) orderUsecase() OrderUsecase {
	return NewOrderUsecase(f.db, f.log, f.orderRepo, f.audit)
}

func (f *fixture) auditLogUsecase() AuditLogUsecase {
	return NewAuditLogUsecase(f.db, f.log, f.auditRepo)
}

// linkAccepted stores an accepted guardian link between parent and child
func (f *fixture) linkAccepted(t *testing.T, parent, child *entity.User) *entity.ParentLink {
	t.Helper()
	now := time.Now()
	link := &entity.ParentLink{ParentID: parent.ID, ChildID: child.ID, Status: entity.ParentLinkAccepted, RespondedAt: &now}
	if err := f.db.Create(link).Error; err != nil {
		t.Fatalf("failed to create parent link: %v", err)
	}
	return link
}

func (f *fixture) countAudit(t *testing.T, action string) int64 {
	t.Helper()
	var count int64
	if err := f.db.Model(&entity.AuditLog{}).Where("action = ?", action).Count(&count).Error; err != nil {
		t.Fatalf("failed to count audit logs: %v", err)
	}
	return count
}

func sessionOf(u *entity.User) session.Session {
	return session.Session{UserID: u.ID, Email: u.Email, RoleID: u.RoleID, TokenID: "test-token"}
}

func adminSession(t *testing.T, f *fixture) session.Session {
	t.Helper()
	return sessionOf(testutil.CreateUser(t, f.db, entity.RoleIDSuperAdmin, "Admin Pusat"))
}

func pngImage(t *testing.T, w, h int) *bytes.Buffer {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.RGBA{R: 200, A: 255})
	}
	buf := &bytes.Buffer{}
	if err := png.Encode(buf, img); err != nil {
		t.Fatalf("failed to encode png: %v", err)
	}
	return buf
}

func withPtr[T any](v T) *T {
	return &v
}
