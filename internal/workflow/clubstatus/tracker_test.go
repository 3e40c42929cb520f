package clubstatus

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"csystem-sip/internal/delivery/dto"
	"csystem-sip/pkg/sipclient"

	"github.com/google/uuid"
)

type fakeService struct {
	// responses are served in order; the last one repeats
	responses []*dto.ClubStatusListResponse
	statusErr error
	joinErr   error
	link      string
	onStatus  func()

	statusCalls int
	joins       []*dto.JoinClubRequest
}

func (f *fakeService) ClubStatus(ctx context.Context, creds sipclient.Credentials) (*dto.ClubStatusListResponse, error) {
	f.statusCalls++
	if f.onStatus != nil {
		f.onStatus()
	}
	if f.statusErr != nil {
		return nil, f.statusErr
	}
	i := f.statusCalls - 1
	if i >= len(f.responses) {
		i = len(f.responses) - 1
	}
	return f.responses[i], nil
}

func (f *fakeService) JoinClub(ctx context.Context, creds sipclient.Credentials, req *dto.JoinClubRequest) (*dto.JoinClubResponse, error) {
	f.joins = append(f.joins, req)
	if f.joinErr != nil {
		return nil, f.joinErr
	}
	return &dto.JoinClubResponse{
		Request: dto.ClubRequestResponse{
			ID:          uuid.New(),
			ClubID:      req.ClubID,
			Status:      "PENDING",
			RequestedAt: time.Now(),
		},
		ApprovalLink: f.link,
	}, nil
}

func statusList(items ...dto.ClubStatusResponse) *dto.ClubStatusListResponse {
	return &dto.ClubStatusListResponse{Statuses: items}
}

var garuda = dto.ClubSummaryResponse{ID: uuid.New(), Name: "Klub Panahan Garuda"}

func TestMinorCannotSelfJoin(t *testing.T) {
	parent, child, adult := uuid.New(), uuid.New(), uuid.New()
	svc := &fakeService{responses: []*dto.ClubStatusListResponse{statusList(
		dto.ClubStatusResponse{AthleteID: child, IsMinor: true, Status: "NONE"},
		dto.ClubStatusResponse{AthleteID: adult, Status: "LEFT"},
	)}}

	asChild := New(svc, sipclient.Credentials{AccessToken: "child"}, child)
	if err := asChild.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	if asChild.CanSelfJoin(child) {
		t.Error("minor may join on their own")
	}
	if _, err := asChild.Join(context.Background(), child, garuda); !errors.Is(err, ErrGuardianRequired) {
		t.Errorf("Join() error = %v, want ErrGuardianRequired", err)
	}

	asParent := New(svc, sipclient.Credentials{AccessToken: "parent"}, parent)
	if err := asParent.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	if !asParent.CanSelfJoin(child) {
		t.Error("guardian may not join for the minor")
	}
	if !asParent.CanSelfJoin(adult) {
		t.Error("LEFT athlete may not rejoin")
	}
	if asParent.CanSelfJoin(uuid.New()) {
		t.Error("untracked athlete offered a join")
	}
	if len(svc.joins) != 0 {
		t.Errorf("join calls = %d, want 0", len(svc.joins))
	}
}

func TestJoinAppliesPendingThenReconciles(t *testing.T) {
	parent, child := uuid.New(), uuid.New()
	requestedAt := time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)
	svc := &fakeService{
		link: "https://wa.me/6281311112222?text=approve",
		responses: []*dto.ClubStatusListResponse{
			statusList(dto.ClubStatusResponse{AthleteID: child, IsMinor: true, Status: "NONE"}),
			statusList(dto.ClubStatusResponse{
				AthleteID: child, IsMinor: true, Status: "MEMBER",
				ClubID: &garuda.ID, ClubName: "Garuda Archery Club", RequestedAt: &requestedAt,
			}),
		},
	}
	tr := New(svc, sipclient.Credentials{AccessToken: "parent"}, parent)
	if err := tr.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}

	var seen dto.ClubStatusResponse
	svc.onStatus = func() { seen, _ = tr.Status(child) }

	link, err := tr.Join(context.Background(), child, garuda)
	if err != nil {
		t.Fatalf("Join() error = %v", err)
	}
	if link != svc.link {
		t.Errorf("link = %q", link)
	}
	if req := svc.joins[0]; req.AthleteID == nil || *req.AthleteID != child || req.ClubID != garuda.ID {
		t.Errorf("join request = %+v", req)
	}

	if seen.Status != "PENDING" || seen.ClubName != garuda.Name {
		t.Errorf("optimistic status = %+v, want PENDING at %s", seen, garuda.Name)
	}
	got, _ := tr.Status(child)
	if got.Status != "MEMBER" || got.ClubName != "Garuda Archery Club" {
		t.Errorf("reconciled status = %+v, want server MEMBER", got)
	}
	if tr.Joining() {
		t.Error("joining flag left set")
	}
}

func TestJoinKeepsOptimisticStateWhenRefreshFails(t *testing.T) {
	athlete := uuid.New()
	svc := &fakeService{responses: []*dto.ClubStatusListResponse{
		statusList(dto.ClubStatusResponse{AthleteID: athlete, Status: "NONE"}),
	}}
	tr := New(svc, sipclient.Credentials{AccessToken: "tok"}, athlete)
	if err := tr.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}

	svc.statusErr = errors.New("timeout")
	if _, err := tr.Join(context.Background(), athlete, garuda); err != nil {
		t.Fatalf("Join() error = %v", err)
	}
	if svc.joins[0].AthleteID != nil {
		t.Errorf("self join named an athlete: %v", svc.joins[0].AthleteID)
	}
	got, _ := tr.Status(athlete)
	if got.Status != "PENDING" || got.ClubID == nil || *got.ClubID != garuda.ID || got.RequestID == nil {
		t.Errorf("status = %+v, want optimistic PENDING", got)
	}
	if tr.CanSelfJoin(athlete) {
		t.Error("pending athlete offered another join")
	}
	if _, err := tr.Join(context.Background(), athlete, garuda); !errors.Is(err, ErrAlreadyActive) {
		t.Errorf("second Join() error = %v, want ErrAlreadyActive", err)
	}
	if len(svc.joins) != 1 {
		t.Errorf("join calls = %d, want 1", len(svc.joins))
	}
}

func TestJoinFailures(t *testing.T) {
	tests := []struct {
		name       string
		joinErr    error
		wantErr    error
		wantBanner bool
	}{
		{
			name:    "conflict is a rejection",
			joinErr: &sipclient.APIError{StatusCode: http.StatusConflict, Message: "athlete already has an active club request"},
			wantErr: ErrJoinRejected,
		},
		{
			name:       "transport error",
			joinErr:    errors.New("connection refused"),
			wantBanner: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			athlete := uuid.New()
			svc := &fakeService{
				joinErr:   tt.joinErr,
				responses: []*dto.ClubStatusListResponse{statusList(dto.ClubStatusResponse{AthleteID: athlete, Status: "NONE"})},
			}
			tr := New(svc, sipclient.Credentials{AccessToken: "tok"}, athlete)
			if err := tr.Refresh(context.Background()); err != nil {
				t.Fatal(err)
			}

			_, err := tr.Join(context.Background(), athlete, garuda)
			want := tt.wantErr
			if want == nil {
				want = tt.joinErr
			}
			if !errors.Is(err, want) {
				t.Fatalf("Join() error = %v, want %v", err, want)
			}
			if got, _ := tr.Status(athlete); got.Status != "NONE" {
				t.Errorf("status = %s, want NONE left intact", got.Status)
			}
			if (tr.Banner() != "") != tt.wantBanner {
				t.Errorf("banner = %q", tr.Banner())
			}
			if svc.statusCalls != 1 {
				t.Errorf("status calls = %d, want no re-fetch", svc.statusCalls)
			}
		})
	}
}
