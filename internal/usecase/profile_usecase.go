package usecase

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"csystem-sip/internal/converter"
	"csystem-sip/internal/delivery/dto"
	"csystem-sip/internal/domain/entity"
	"csystem-sip/internal/domain/repository"
	"csystem-sip/internal/domain/rules"
	"csystem-sip/internal/infrastructure/storage"
	"csystem-sip/internal/service"
	"csystem-sip/internal/session"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrInvalidAvatar   = errors.New("avatar must be a JPEG, PNG, GIF, BMP or TIFF image")
	ErrChildNotFound   = errors.New("no person with that core id")
	ErrCannotLinkSelf  = errors.New("cannot link yourself as a child")
	ErrLinkExists      = errors.New("a link with this person already exists")
	ErrLinkNotFound    = errors.New("integration request not found")
	ErrLinkResolved    = errors.New("integration request was already answered")
	ErrParentRoleOnly  = errors.New("only parents can perform this action")
	ErrProfileNotFound = errors.New("profile not found")
)

type ProfileUsecase interface {
	GetProfile(ctx context.Context, sess session.Session, userID uuid.UUID) (*dto.ProfileResponse, error)
	UpdateProfile(ctx context.Context, sess session.Session, userID uuid.UUID, req *dto.UpdateProfileRequest) (*dto.ProfileResponse, error)
	UploadAvatar(ctx context.Context, sess session.Session, file io.Reader) (*dto.AvatarResponse, error)
	LinkChild(ctx context.Context, sess session.Session, req *dto.LinkChildRequest) (*dto.ParentLinkResponse, error)
	RespondIntegration(ctx context.Context, sess session.Session, req *dto.RespondIntegrationRequest) (*dto.ParentLinkResponse, error)
	GetIntegrationRequests(ctx context.Context, sess session.Session) ([]dto.ParentLinkResponse, error)
	GetChildren(ctx context.Context, sess session.Session) (*dto.ChildListResponse, error)
	CreateReferral(ctx context.Context, sess session.Session) (*dto.ReferralResponse, error)
}

type profileUsecase struct {
	db              *gorm.DB
	log             *logrus.Logger
	userRepo        repository.UserRepository
	roleProfileRepo repository.RoleProfileRepository
	parentLinkRepo  repository.ParentLinkRepository
	auditService    service.AuditService
	avatarProcessor *service.AvatarProcessor
	referralService *service.ReferralService
	clubDirectory   *service.ClubDirectoryService
	fileStorage     *storage.FileStorage
	access          personAccess
}

func NewProfileUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	userRepo repository.UserRepository,
	roleProfileRepo repository.RoleProfileRepository,
	parentLinkRepo repository.ParentLinkRepository,
	auditService service.AuditService,
	avatarProcessor *service.AvatarProcessor,
	referralService *service.ReferralService,
	clubDirectory *service.ClubDirectoryService,
	fileStorage *storage.FileStorage,
) ProfileUsecase {
	return &profileUsecase{
		db:              db,
		log:             log,
		userRepo:        userRepo,
		roleProfileRepo: roleProfileRepo,
		parentLinkRepo:  parentLinkRepo,
		auditService:    auditService,
		avatarProcessor: avatarProcessor,
		referralService: referralService,
		clubDirectory:   clubDirectory,
		fileStorage:     fileStorage,
		access:          personAccess{parentLinkRepo: parentLinkRepo},
	}
}

func (u *profileUsecase) GetProfile(ctx context.Context, sess session.Session, userID uuid.UUID) (*dto.ProfileResponse, error) {
	user, err := u.loadEditable(ctx, sess, userID)
	if err != nil {
		return nil, err
	}
	return converter.ProfileToResponse(user, time.Now()), nil
}

// UpdateProfile validates the candidate values with the rules engine for the
// target's role and age, then stores them with blank optionals as NULL.
func (u *profileUsecase) UpdateProfile(ctx context.Context, sess session.Session, userID uuid.UUID, req *dto.UpdateProfileRequest) (*dto.ProfileResponse, error) {
	user, err := u.loadEditable(ctx, sess, userID)
	if err != nil {
		return nil, err
	}

	before := rules.InputFromUser(user)
	in := *req
	in.Role = before.Role

	now := time.Now()
	if errs := rules.Validate(in, now); !errs.Valid() {
		return nil, errs
	}

	applyRootIdentity(user, in)

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	if err := u.userRepo.Update(ctx, tx, user); err != nil {
		u.log.Warnf("Failed to update user: %+v", err)
		return nil, err
	}

	if err := u.saveRoleSection(ctx, tx, user, in); err != nil {
		u.log.Warnf("Failed to save role profile: %+v", err)
		return nil, err
	}

	if err := u.auditService.LogUpdate(ctx, tx, &sess.UserID, entity.AuditActionProfileUpdate, "user", user.ID.String(), before, in); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	u.log.WithFields(logrus.Fields{
		"user_id":   user.ID,
		"editor_id": sess.UserID,
	}).Info("Profile updated")

	if user.RoleID == entity.RoleIDClub && u.clubDirectory != nil {
		_ = u.clubDirectory.Invalidate(ctx)
	}

	updated, err := u.userRepo.FindByID(ctx, u.db, user.ID)
	if err != nil {
		u.log.Warnf("Failed to reload profile: %+v", err)
		return nil, err
	}
	return converter.ProfileToResponse(updated, now), nil
}

// UploadAvatar normalises the image before anything is stored; a rejected upload
// leaves the profile untouched.
func (u *profileUsecase) UploadAvatar(ctx context.Context, sess session.Session, file io.Reader) (*dto.AvatarResponse, error) {
	user, err := u.userRepo.FindByID(ctx, u.db, sess.UserID)
	if err != nil {
		u.log.Warnf("Failed to find user by ID: %+v", err)
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	img, err := u.avatarProcessor.Process(file)
	if err != nil {
		if errors.Is(err, service.ErrInvalidImage) {
			return nil, ErrInvalidAvatar
		}
		u.log.Warnf("Failed to process avatar: %+v", err)
		return nil, err
	}

	stored, err := u.fileStorage.Save("avatars", "avatar.jpg", img)
	if err != nil {
		u.log.Warnf("Failed to store avatar: %+v", err)
		return nil, err
	}

	previous := user.AvatarURL
	user.AvatarURL = &stored.URL

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	if err := u.userRepo.Update(ctx, tx, user); err != nil {
		_ = u.fileStorage.Delete(stored.Key)
		u.log.Warnf("Failed to update avatar url: %+v", err)
		return nil, err
	}

	if err := u.auditService.LogUpdate(ctx, tx, &sess.UserID, entity.AuditActionAvatarUpdate, "user", user.ID.String(), previous, stored.URL); err != nil {
		_ = u.fileStorage.Delete(stored.Key)
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		_ = u.fileStorage.Delete(stored.Key)
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	if previous != nil {
		if key, ok := u.fileStorage.KeyFromURL(*previous); ok {
			if err := u.fileStorage.Delete(key); err != nil {
				u.log.Warnf("Failed to remove previous avatar %s: %+v", key, err)
			}
		}
	}

	return &dto.AvatarResponse{AvatarURL: stored.URL}, nil
}

func (u *profileUsecase) LinkChild(ctx context.Context, sess session.Session, req *dto.LinkChildRequest) (*dto.ParentLinkResponse, error) {
	if sess.RoleID != entity.RoleIDParent {
		return nil, ErrParentRoleOnly
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	child, err := u.userRepo.FindByCoreID(ctx, tx, req.ChildCoreID)
	if err != nil {
		u.log.Warnf("Failed to find child by core id: %+v", err)
		return nil, err
	}
	if child == nil {
		return nil, ErrChildNotFound
	}
	if child.ID == sess.UserID {
		return nil, ErrCannotLinkSelf
	}

	existing, err := u.parentLinkRepo.FindOpen(ctx, tx, sess.UserID, child.ID)
	if err != nil {
		u.log.Warnf("Failed to find parent link: %+v", err)
		return nil, err
	}
	if existing != nil {
		return nil, ErrLinkExists
	}

	link := &entity.ParentLink{
		ParentID: sess.UserID,
		ChildID:  child.ID,
		Status:   entity.ParentLinkPending,
	}
	if err := u.parentLinkRepo.Create(ctx, tx, link); err != nil {
		u.log.Warnf("Failed to create parent link: %+v", err)
		return nil, err
	}

	if err := u.auditService.LogCreate(ctx, tx, &sess.UserID, entity.AuditActionParentLink, "parent_link", link.ID.String(), link); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	return converter.ParentLinkToResponse(link), nil
}

func (u *profileUsecase) RespondIntegration(ctx context.Context, sess session.Session, req *dto.RespondIntegrationRequest) (*dto.ParentLinkResponse, error) {
	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	link, err := u.parentLinkRepo.FindByID(ctx, tx, req.LinkID)
	if err != nil {
		u.log.Warnf("Failed to find parent link: %+v", err)
		return nil, err
	}
	if link == nil {
		return nil, ErrLinkNotFound
	}
	if link.ChildID != sess.UserID && !sess.IsAdmin() {
		return nil, ErrForbidden
	}
	if link.Status != entity.ParentLinkPending {
		return nil, ErrLinkResolved
	}

	now := time.Now()
	link.RespondedAt = &now
	link.Status = entity.ParentLinkRejected
	if *req.Accept {
		link.Status = entity.ParentLinkAccepted
	}

	if err := u.parentLinkRepo.Update(ctx, tx, link); err != nil {
		u.log.Warnf("Failed to update parent link: %+v", err)
		return nil, err
	}

	if err := u.auditService.LogUpdate(ctx, tx, &sess.UserID, entity.AuditActionParentRespond, "parent_link", link.ID.String(),
		entity.ParentLinkPending, link.Status); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	return converter.ParentLinkToResponse(link), nil
}

func (u *profileUsecase) GetIntegrationRequests(ctx context.Context, sess session.Session) ([]dto.ParentLinkResponse, error) {
	links, err := u.parentLinkRepo.FindPendingByChild(ctx, u.db, sess.UserID)
	if err != nil {
		u.log.Warnf("Failed to find integration requests: %+v", err)
		return nil, err
	}

	responses := make([]dto.ParentLinkResponse, len(links))
	for i := range links {
		responses[i] = *converter.ParentLinkToResponse(&links[i])
	}
	return responses, nil
}

func (u *profileUsecase) GetChildren(ctx context.Context, sess session.Session) (*dto.ChildListResponse, error) {
	if sess.RoleID != entity.RoleIDParent {
		return nil, ErrParentRoleOnly
	}

	links, err := u.parentLinkRepo.FindAcceptedByParent(ctx, u.db, sess.UserID)
	if err != nil {
		u.log.Warnf("Failed to find children: %+v", err)
		return nil, err
	}

	children := converter.ChildrenToResponses(links, time.Now())
	return &dto.ChildListResponse{
		Children: children,
		Total:    len(children),
	}, nil
}

func (u *profileUsecase) CreateReferral(ctx context.Context, sess session.Session) (*dto.ReferralResponse, error) {
	if sess.RoleID != entity.RoleIDParent {
		return nil, ErrParentRoleOnly
	}

	token, expiresAt, err := u.referralService.Issue(ctx, sess.UserID)
	if err != nil {
		return nil, err
	}
	return &dto.ReferralResponse{Token: token, ExpiresAt: expiresAt}, nil
}

// loadEditable returns the person if the session may act on it
func (u *profileUsecase) loadEditable(ctx context.Context, sess session.Session, userID uuid.UUID) (*entity.User, error) {
	allowed, err := u.access.canActOn(ctx, u.db, sess, userID)
	if err != nil {
		u.log.Warnf("Failed to check profile access: %+v", err)
		return nil, err
	}
	if !allowed {
		return nil, ErrForbidden
	}

	user, err := u.userRepo.FindByID(ctx, u.db, userID)
	if err != nil {
		u.log.Warnf("Failed to find user by ID: %+v", err)
		return nil, err
	}
	if user == nil {
		return nil, ErrProfileNotFound
	}
	return user, nil
}

func (u *profileUsecase) saveRoleSection(ctx context.Context, tx *gorm.DB, user *entity.User, in rules.ProfileInput) error {
	switch user.RoleID {
	case entity.RoleIDAthlete:
		if in.Athlete == nil {
			return nil
		}
		a := *in.Athlete
		parentPhone := rules.Optional(rules.NormalizePhone(a.ParentPhone))
		return u.roleProfileRepo.SaveAthlete(ctx, tx, &entity.AthleteProfile{
			UserID:      user.ID,
			Division:    rules.Optional(a.Division),
			SchoolID:    rules.Optional(a.SchoolID),
			NISN:        rules.Optional(a.NISN),
			ParentName:  rules.Optional(a.ParentName),
			ParentPhone: parentPhone,
		})
	case entity.RoleIDClub:
		if in.Club == nil {
			return nil
		}
		return u.roleProfileRepo.SaveClub(ctx, tx, &entity.ClubProfile{
			UserID:          user.ID,
			Address:         rules.Optional(in.Club.Address),
			Hotline:         rules.Optional(rules.NormalizePhone(in.Club.Hotline)),
			IsPerpaniMember: in.Club.IsPerpaniMember,
		})
	case entity.RoleIDSchool:
		if in.School == nil {
			return nil
		}
		return u.roleProfileRepo.SaveSchool(ctx, tx, &entity.SchoolProfile{
			UserID:        user.ID,
			NPSN:          rules.Optional(in.School.NPSN),
			Address:       rules.Optional(in.School.Address),
			PrincipalName: rules.Optional(in.School.PrincipalName),
		})
	case entity.RoleIDCoach:
		if in.Coach == nil {
			return nil
		}
		return u.roleProfileRepo.SaveCoach(ctx, tx, &entity.CoachProfile{
			UserID:             user.ID,
			CertificationLevel: rules.Optional(in.Coach.CertificationLevel),
			ClubID:             rules.Optional(in.Coach.ClubID),
		})
	case entity.RoleIDJudge:
		if in.Judge == nil {
			return nil
		}
		return u.roleProfileRepo.SaveJudge(ctx, tx, &entity.JudgeProfile{
			UserID:        user.ID,
			LicenseNumber: rules.Optional(in.Judge.LicenseNumber),
			LicenseLevel:  rules.Optional(in.Judge.LicenseLevel),
		})
	}
	return nil
}

// applyRootIdentity copies validated form values onto the person. Blank optional
// values become NULL; a changed NIK loses its verification.
func applyRootIdentity(user *entity.User, in rules.ProfileInput) {
	nik := rules.Optional(in.NIK)
	if !sameOptional(user.NIK, nik) {
		user.NIKVerified = false
	}

	user.Name = strings.TrimSpace(in.Name)
	user.Phone = rules.Optional(rules.NormalizePhone(in.Phone))
	user.Whatsapp = rules.Optional(rules.NormalizePhone(in.Whatsapp))
	user.NIK = nik
	user.ProvinceID = rules.Optional(in.ProvinceID)
	user.CityID = rules.Optional(in.CityID)
	user.IsStudent = in.IsStudent
	user.Occupation = rules.Optional(in.Occupation)

	if dob, ok := rules.ParseDate(in.DateOfBirth); ok {
		user.DateOfBirth = &dob
	}
	if g := rules.Optional(in.Gender); g != nil {
		gender := entity.Gender(*g)
		user.Gender = &gender
	}
}

func sameOptional(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
