package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"csystem-sip/internal/converter"
	"csystem-sip/internal/delivery/dto"
	"csystem-sip/internal/domain/entity"
	"csystem-sip/internal/domain/repository"
	"csystem-sip/internal/domain/rules"
	"csystem-sip/internal/service"
	"csystem-sip/internal/session"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrAthleteNotFound      = errors.New("athlete not found")
	ErrClubNotFound         = errors.New("club not found")
	ErrNotAnAthlete         = errors.New("only athletes can join a club")
	ErrGuardianRequired     = errors.New("athletes under 18 must be joined by a linked parent")
	ErrAlreadyPending       = errors.New("a join request is already pending")
	ErrAlreadyMember        = errors.New("athlete is already a club member")
	ErrNotInClub            = errors.New("athlete has no active club membership")
	ErrClubRequestNotFound  = errors.New("join request not found")
	ErrClubRequestDecided   = errors.New("join request was already decided")
	ErrClubStatusNotAllowed = errors.New("club status is available to athletes and parents only")
)

const whatsappBaseURL = "https://wa.me/"

type ClubUsecase interface {
	ListClubs(ctx context.Context) (*dto.ClubDirectoryResponse, error)
	GetStatus(ctx context.Context, sess session.Session) (*dto.ClubStatusListResponse, error)
	Join(ctx context.Context, sess session.Session, req *dto.JoinClubRequest) (*dto.JoinClubResponse, error)
	Leave(ctx context.Context, sess session.Session, req *dto.LeaveClubRequest) (*dto.ClubStatusResponse, error)
	ListRequests(ctx context.Context, sess session.Session) (*dto.ClubRequestListResponse, error)
	Approve(ctx context.Context, sess session.Session, requestID uuid.UUID) (*dto.ClubRequestResponse, error)
	Reject(ctx context.Context, sess session.Session, requestID uuid.UUID) error
}

type clubUsecase struct {
	db             *gorm.DB
	log            *logrus.Logger
	userRepo       repository.UserRepository
	clubRepo       repository.ClubAffiliationRepository
	parentLinkRepo repository.ParentLinkRepository
	auditService   service.AuditService
	clubDirectory  *service.ClubDirectoryService
	access         personAccess
}

func NewClubUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	userRepo repository.UserRepository,
	clubRepo repository.ClubAffiliationRepository,
	parentLinkRepo repository.ParentLinkRepository,
	auditService service.AuditService,
	clubDirectory *service.ClubDirectoryService,
) ClubUsecase {
	return &clubUsecase{
		db:             db,
		log:            log,
		userRepo:       userRepo,
		clubRepo:       clubRepo,
		parentLinkRepo: parentLinkRepo,
		auditService:   auditService,
		clubDirectory:  clubDirectory,
		access:         personAccess{parentLinkRepo: parentLinkRepo},
	}
}

func (u *clubUsecase) ListClubs(ctx context.Context) (*dto.ClubDirectoryResponse, error) {
	clubs, err := u.clubDirectory.List(ctx)
	if err != nil {
		u.log.Warnf("Failed to list clubs: %+v", err)
		return nil, err
	}
	return converter.ClubDirectoryToResponse(clubs), nil
}

// GetStatus returns the caller's own status for an athlete, and one entry per
// accepted child for a parent.
func (u *clubUsecase) GetStatus(ctx context.Context, sess session.Session) (*dto.ClubStatusListResponse, error) {
	var athletes []entity.User

	switch sess.RoleID {
	case entity.RoleIDAthlete:
		user, err := u.userRepo.FindByID(ctx, u.db, sess.UserID)
		if err != nil {
			u.log.Warnf("Failed to find athlete: %+v", err)
			return nil, err
		}
		if user == nil {
			return nil, ErrAthleteNotFound
		}
		athletes = append(athletes, *user)
	case entity.RoleIDParent:
		links, err := u.parentLinkRepo.FindAcceptedByParent(ctx, u.db, sess.UserID)
		if err != nil {
			u.log.Warnf("Failed to find children: %+v", err)
			return nil, err
		}
		for _, link := range links {
			if link.Child.RoleID == entity.RoleIDAthlete {
				athletes = append(athletes, link.Child)
			}
		}
	default:
		return nil, ErrClubStatusNotAllowed
	}

	now := time.Now()
	statuses := make([]dto.ClubStatusResponse, 0, len(athletes))
	for i := range athletes {
		athlete := &athletes[i]
		latest, err := u.clubRepo.FindLatestByAthlete(ctx, u.db, athlete.ID)
		if err != nil {
			u.log.Warnf("Failed to find club affiliation: %+v", err)
			return nil, err
		}
		statuses = append(statuses, converter.ClubStatusToResponse(athlete, isGuardianMinor(athlete, now), latest))
	}

	return &dto.ClubStatusListResponse{Statuses: statuses}, nil
}

// Join files a PENDING request. A minor's request must come from an accepted
// guardian, and the response then carries a WhatsApp link for the guardian.
func (u *clubUsecase) Join(ctx context.Context, sess session.Session, req *dto.JoinClubRequest) (*dto.JoinClubResponse, error) {
	athleteID := sess.UserID
	if req.AthleteID != nil {
		athleteID = *req.AthleteID
	}

	athlete, err := u.authorizeAthlete(ctx, sess, athleteID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	minor := isGuardianMinor(athlete, now)
	if minor && athlete.ID == sess.UserID {
		return nil, ErrGuardianRequired
	}

	club, err := u.userRepo.FindByID(ctx, u.db, req.ClubID)
	if err != nil {
		u.log.Warnf("Failed to find club: %+v", err)
		return nil, err
	}
	if club == nil || club.RoleID != entity.RoleIDClub || !club.IsActive {
		return nil, ErrClubNotFound
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	active, err := u.clubRepo.FindActiveByAthlete(ctx, tx, athlete.ID)
	if err != nil {
		u.log.Warnf("Failed to find active affiliation: %+v", err)
		return nil, err
	}
	if active != nil {
		if active.Status == entity.AffiliationMember {
			return nil, ErrAlreadyMember
		}
		return nil, ErrAlreadyPending
	}

	affiliation := &entity.ClubAffiliation{
		AthleteID:   athlete.ID,
		ClubID:      club.ID,
		RequestedBy: sess.UserID,
		Status:      entity.AffiliationPending,
		RequestedAt: now,
	}
	if err := u.clubRepo.Create(ctx, tx, affiliation); err != nil {
		if isDuplicateKeyError(err, "active_athlete") {
			return nil, ErrAlreadyPending
		}
		u.log.Warnf("Failed to create club affiliation: %+v", err)
		return nil, err
	}

	if err := u.auditService.LogCreate(ctx, tx, &sess.UserID, entity.AuditActionClubJoin, "club_affiliation", affiliation.ID.String(), map[string]interface{}{
		"athlete_id": athlete.ID,
		"club_id":    club.ID,
	}); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	u.log.WithFields(logrus.Fields{
		"athlete_id": athlete.ID,
		"club_id":    club.ID,
		"by":         sess.UserID,
	}).Info("Club join requested")

	affiliation.Athlete = *athlete
	affiliation.Club = *club
	response := &dto.JoinClubResponse{Request: *converter.ClubRequestToResponse(affiliation)}

	if minor {
		response.ApprovalLink = u.approvalLink(ctx, sess, athlete, club, affiliation)
	}

	return response, nil
}

func (u *clubUsecase) Leave(ctx context.Context, sess session.Session, req *dto.LeaveClubRequest) (*dto.ClubStatusResponse, error) {
	athleteID := sess.UserID
	if req.AthleteID != nil {
		athleteID = *req.AthleteID
	}

	athlete, err := u.authorizeAthlete(ctx, sess, athleteID)
	if err != nil {
		return nil, err
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	active, err := u.clubRepo.FindActiveByAthlete(ctx, tx, athlete.ID)
	if err != nil {
		u.log.Warnf("Failed to find active affiliation: %+v", err)
		return nil, err
	}
	if active == nil {
		return nil, ErrNotInClub
	}

	previous := active.Status
	now := time.Now()
	active.Leave(now)
	if err := u.clubRepo.Update(ctx, tx, active); err != nil {
		u.log.Warnf("Failed to update club affiliation: %+v", err)
		return nil, err
	}

	if err := u.auditService.LogUpdate(ctx, tx, &sess.UserID, entity.AuditActionClubLeave, "club_affiliation", active.ID.String(), previous, active.Status); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	status := converter.ClubStatusToResponse(athlete, isGuardianMinor(athlete, now), active)
	return &status, nil
}

// ListRequests lists pending requests addressed to the calling club, or every
// pending request for an admin.
func (u *clubUsecase) ListRequests(ctx context.Context, sess session.Session) (*dto.ClubRequestListResponse, error) {
	var clubID *uuid.UUID
	switch {
	case sess.IsAdmin():
	case sess.RoleID == entity.RoleIDClub:
		clubID = &sess.UserID
	default:
		return nil, ErrForbidden
	}

	requests, err := u.clubRepo.FindPending(ctx, u.db, clubID)
	if err != nil {
		u.log.Warnf("Failed to find pending requests: %+v", err)
		return nil, err
	}

	return &dto.ClubRequestListResponse{
		Requests: converter.ClubRequestsToResponses(requests),
		Total:    len(requests),
	}, nil
}

func (u *clubUsecase) Approve(ctx context.Context, sess session.Session, requestID uuid.UUID) (*dto.ClubRequestResponse, error) {
	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	request, err := u.pendingRequest(ctx, tx, sess, requestID)
	if err != nil {
		return nil, err
	}

	request.Approve(time.Now())
	if err := u.clubRepo.Update(ctx, tx, request); err != nil {
		u.log.Warnf("Failed to approve club request: %+v", err)
		return nil, err
	}

	if err := u.auditService.LogUpdate(ctx, tx, &sess.UserID, entity.AuditActionClubApprove, "club_affiliation", request.ID.String(),
		entity.AffiliationPending, request.Status); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	return converter.ClubRequestToResponse(request), nil
}

// Reject withdraws the request entirely, so the athlete falls back to the status
// derived from earlier rows.
func (u *clubUsecase) Reject(ctx context.Context, sess session.Session, requestID uuid.UUID) error {
	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	request, err := u.pendingRequest(ctx, tx, sess, requestID)
	if err != nil {
		return err
	}

	if err := u.clubRepo.Delete(ctx, tx, request.ID); err != nil {
		u.log.Warnf("Failed to reject club request: %+v", err)
		return err
	}

	if err := u.auditService.LogDelete(ctx, tx, &sess.UserID, entity.AuditActionClubReject, "club_affiliation", request.ID.String(), map[string]interface{}{
		"athlete_id": request.AthleteID,
		"club_id":    request.ClubID,
	}); err != nil {
		return err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return err
	}

	return nil
}

func (u *clubUsecase) pendingRequest(ctx context.Context, tx *gorm.DB, sess session.Session, requestID uuid.UUID) (*entity.ClubAffiliation, error) {
	request, err := u.clubRepo.FindByID(ctx, tx, requestID)
	if err != nil {
		u.log.Warnf("Failed to find club request: %+v", err)
		return nil, err
	}
	if request == nil {
		return nil, ErrClubRequestNotFound
	}
	if request.ClubID != sess.UserID && !sess.IsAdmin() {
		return nil, ErrForbidden
	}
	if request.Status != entity.AffiliationPending {
		return nil, ErrClubRequestDecided
	}
	return request, nil
}

// authorizeAthlete loads an athlete the session may act for
func (u *clubUsecase) authorizeAthlete(ctx context.Context, sess session.Session, athleteID uuid.UUID) (*entity.User, error) {
	allowed, err := u.access.canActOn(ctx, u.db, sess, athleteID)
	if err != nil {
		u.log.Warnf("Failed to check guardian link: %+v", err)
		return nil, err
	}
	if !allowed {
		return nil, ErrForbidden
	}

	athlete, err := u.userRepo.FindByID(ctx, u.db, athleteID)
	if err != nil {
		u.log.Warnf("Failed to find athlete: %+v", err)
		return nil, err
	}
	if athlete == nil {
		return nil, ErrAthleteNotFound
	}
	if athlete.RoleID != entity.RoleIDAthlete {
		return nil, ErrNotAnAthlete
	}
	return athlete, nil
}

// approvalLink builds the wa.me link asking the guardian to confirm a minor's
// request. It prefers the guardian phone on the athlete profile, then the
// submitting parent's own number.
func (u *clubUsecase) approvalLink(ctx context.Context, sess session.Session, athlete, club *entity.User, request *entity.ClubAffiliation) string {
	var phone string
	if athlete.Athlete != nil && athlete.Athlete.ParentPhone != nil {
		phone = *athlete.Athlete.ParentPhone
	}
	if phone == "" {
		parent, err := u.userRepo.FindByID(ctx, u.db, sess.UserID)
		if err != nil {
			u.log.Warnf("Failed to find parent for approval link: %+v", err)
		}
		if parent != nil && parent.Whatsapp != nil {
			phone = *parent.Whatsapp
		}
	}
	if phone == "" {
		return ""
	}

	text := fmt.Sprintf("Persetujuan orang tua: %s (%s) mengajukan bergabung dengan klub %s. Nomor permintaan: %s",
		athlete.Name, athlete.CoreID, club.Name, request.ID)
	return whatsappBaseURL + InternationalPhone(phone) + "?text=" + url.QueryEscape(text)
}

// InternationalPhone rewrites an Indonesian number into the digits-only 62... form
// expected by wa.me.
func InternationalPhone(phone string) string {
	phone = strings.TrimPrefix(rules.NormalizePhone(phone), "+")
	if strings.HasPrefix(phone, "0") {
		phone = "62" + phone[1:]
	}
	return phone
}

func isGuardianMinor(u *entity.User, now time.Time) bool {
	if u.DateOfBirth == nil {
		return false
	}
	return rules.IsAthleteGuardianMinor(rules.CalendarAge(*u.DateOfBirth, now))
}
