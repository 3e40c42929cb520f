// Package clubstatus tracks the club affiliation of the athletes a user acts for.
// A join is applied locally as PENDING at once and then reconciled with the
// server's view.
package clubstatus

import (
	"context"
	"errors"
	"fmt"

	"csystem-sip/internal/delivery/dto"
	"csystem-sip/internal/domain/entity"
	"csystem-sip/pkg/sipclient"

	"github.com/google/uuid"
)

var (
	ErrBusy             = errors.New("a join request is already being sent")
	ErrUnknownAthlete   = errors.New("athlete is not tracked")
	ErrAlreadyActive    = errors.New("athlete already has a pending or active club")
	ErrGuardianRequired = errors.New("athletes under 18 must ask a guardian to join a club")
	ErrJoinRejected     = errors.New("join request rejected")
)

type Service interface {
	ClubStatus(ctx context.Context, creds sipclient.Credentials) (*dto.ClubStatusListResponse, error)
	JoinClub(ctx context.Context, creds sipclient.Credentials, req *dto.JoinClubRequest) (*dto.JoinClubResponse, error)
}

type Tracker struct {
	service Service
	creds   sipclient.Credentials
	actorID uuid.UUID

	statuses []dto.ClubStatusResponse
	loading  bool
	joining  bool
	banner   string
}

// New tracks affiliations for actorID, the signed in user
func New(service Service, creds sipclient.Credentials, actorID uuid.UUID) *Tracker {
	return &Tracker{
		service: service,
		creds:   creds,
		actorID: actorID,
	}
}

// Refresh replaces the local statuses with the server's. A failure keeps the
// previous statuses.
func (t *Tracker) Refresh(ctx context.Context) error {
	t.loading = true
	defer func() { t.loading = false }()

	res, err := t.service.ClubStatus(ctx, t.creds)
	if err != nil {
		t.banner = "Failed to load club status"
		return err
	}
	t.statuses = append([]dto.ClubStatusResponse(nil), res.Statuses...)
	t.banner = ""
	return nil
}

func (t *Tracker) Loading() bool {
	return t.loading
}

func (t *Tracker) Joining() bool {
	return t.joining
}

func (t *Tracker) Banner() string {
	return t.banner
}

func (t *Tracker) Statuses() []dto.ClubStatusResponse {
	return append([]dto.ClubStatusResponse(nil), t.statuses...)
}

func (t *Tracker) Status(athleteID uuid.UUID) (dto.ClubStatusResponse, bool) {
	i := t.index(athleteID)
	if i < 0 {
		return dto.ClubStatusResponse{}, false
	}
	return t.statuses[i], true
}

// CanSelfJoin reports whether the join action is offered for the athlete.
// Minors cannot join on their own behalf; their guardian joins for them.
func (t *Tracker) CanSelfJoin(athleteID uuid.UUID) bool {
	return t.checkJoin(athleteID) == nil
}

// Join asks to join club for the athlete and returns the guardian approval
// link the server issued, if any.
func (t *Tracker) Join(ctx context.Context, athleteID uuid.UUID, club dto.ClubSummaryResponse) (string, error) {
	if t.joining {
		return "", ErrBusy
	}
	if err := t.checkJoin(athleteID); err != nil {
		return "", err
	}

	t.joining = true
	defer func() { t.joining = false }()

	req := &dto.JoinClubRequest{ClubID: club.ID}
	if athleteID != t.actorID {
		req.AthleteID = &athleteID
	}

	res, err := t.service.JoinClub(ctx, t.creds, req)
	if err != nil {
		if apiErr, ok := sipclient.AsAPIError(err); ok && (apiErr.IsConflict() || apiErr.IsForbidden()) {
			return "", fmt.Errorf("%w: %s", ErrJoinRejected, apiErr.Message)
		}
		t.banner = "Failed to send join request"
		return "", err
	}

	i := t.index(athleteID)
	clubID := club.ID
	requestID := res.Request.ID
	requestedAt := res.Request.RequestedAt
	t.statuses[i].Status = string(entity.AffiliationPending)
	t.statuses[i].ClubID = &clubID
	t.statuses[i].ClubName = club.Name
	t.statuses[i].RequestID = &requestID
	t.statuses[i].RequestedAt = &requestedAt
	t.statuses[i].DecidedAt = nil

	// the optimistic entry stays if the re-fetch fails
	_ = t.Refresh(ctx)

	return res.ApprovalLink, nil
}

func (t *Tracker) checkJoin(athleteID uuid.UUID) error {
	st, ok := t.Status(athleteID)
	if !ok {
		return ErrUnknownAthlete
	}
	switch entity.AffiliationStatus(st.Status) {
	case entity.AffiliationPending, entity.AffiliationMember:
		return ErrAlreadyActive
	}
	if st.IsMinor && athleteID == t.actorID {
		return ErrGuardianRequired
	}
	return nil
}

func (t *Tracker) index(athleteID uuid.UUID) int {
	for i := range t.statuses {
		if t.statuses[i].AthleteID == athleteID {
			return i
		}
	}
	return -1
}
