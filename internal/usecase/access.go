package usecase

import (
	"context"
	"errors"

	"csystem-sip/internal/domain/repository"
	"csystem-sip/internal/session"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrForbidden = errors.New("not allowed to act on this person")

// personAccess decides who may act on a person record: the person, an admin, or
// a parent whose link to the person was accepted.
type personAccess struct {
	parentLinkRepo repository.ParentLinkRepository
}

func (a personAccess) canActOn(ctx context.Context, db *gorm.DB, sess session.Session, personID uuid.UUID) (bool, error) {
	if sess.UserID == personID || sess.IsAdmin() {
		return true, nil
	}
	return a.isGuardian(ctx, db, sess.UserID, personID)
}

func (a personAccess) isGuardian(ctx context.Context, db *gorm.DB, parentID, childID uuid.UUID) (bool, error) {
	link, err := a.parentLinkRepo.FindOpen(ctx, db, parentID, childID)
	if err != nil {
		return false, err
	}
	return link != nil && link.IsAccepted(), nil
}
