package sipclient

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"csystem-sip/internal/delivery/dto"
	"csystem-sip/pkg/response"

	"github.com/google/uuid"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(srv.URL+"/api/v1/", WithRetryDelay(time.Millisecond))
}

func TestGetProfileSendsBearerAndDecodesData(t *testing.T) {
	userID := uuid.New()
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/profile/"+userID.String() {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("Authorization = %q", got)
		}
		response.Success(w, http.StatusOK, "ok", dto.ProfileResponse{ID: userID, CoreID: "0125000001", Name: "Rani"})
	})

	p, err := c.GetProfile(context.Background(), Credentials{AccessToken: "tok"}, &userID)
	if err != nil {
		t.Fatalf("GetProfile() error = %v", err)
	}
	if p.CoreID != "0125000001" || p.Name != "Rani" {
		t.Errorf("profile = %+v", p)
	}
}

func TestValidationErrorCarriesFields(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		response.ValidationError(w, map[string]string{"nik": "NIK must be 16 digits"})
	})

	_, err := c.UpdateProfile(context.Background(), Credentials{AccessToken: "tok"}, nil, &dto.UpdateProfileRequest{Name: "x"})
	apiErr, ok := AsAPIError(err)
	if !ok {
		t.Fatalf("error = %v, want *APIError", err)
	}
	if !apiErr.IsValidation() || apiErr.Fields["nik"] != "NIK must be 16 digits" {
		t.Errorf("api error = %+v", apiErr)
	}
	if apiErr.IsConflict() {
		t.Error("validation error reported as conflict")
	}
}

func TestConflict(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		response.Conflict(w, "athlete already has an active club request")
	})

	_, err := c.JoinClub(context.Background(), Credentials{AccessToken: "tok"}, &dto.JoinClubRequest{ClubID: uuid.New()})
	apiErr, ok := AsAPIError(err)
	if !ok || !apiErr.IsConflict() {
		t.Fatalf("error = %v, want conflict", err)
	}
	if !strings.Contains(apiErr.Error(), "active club request") {
		t.Errorf("message = %q", apiErr.Error())
	}
}

func TestReadsRetryServerErrors(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			response.InternalServerError(w, "")
			return
		}
		response.Success(w, http.StatusOK, "ok", dto.ClubStatusListResponse{
			Statuses: []dto.ClubStatusResponse{{Status: "MEMBER"}},
		})
	})

	res, err := c.ClubStatus(context.Background(), Credentials{AccessToken: "tok"})
	if err != nil {
		t.Fatalf("ClubStatus() error = %v", err)
	}
	if len(res.Statuses) != 1 || res.Statuses[0].Status != "MEMBER" {
		t.Errorf("statuses = %+v", res.Statuses)
	}
	if atomic.LoadInt32(&calls) != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
}

func TestClientErrorsAndWritesAreNotRetried(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		if r.Method == http.MethodGet {
			response.NotFound(w, "module not found")
			return
		}
		response.InternalServerError(w, "")
	})
	creds := Credentials{AccessToken: "tok"}

	_, err := c.GetModule(context.Background(), creds, uuid.New())
	if apiErr, ok := AsAPIError(err); !ok || !apiErr.IsNotFound() {
		t.Fatalf("GetModule() error = %v, want not found", err)
	}
	if atomic.LoadInt32(&calls) != 1 {
		t.Errorf("GET calls = %d, want 1", calls)
	}

	atomic.StoreInt32(&calls, 0)
	_, err = c.CreateField(context.Background(), creds, uuid.New(), &dto.FieldRequest{FieldName: "stance"})
	if apiErr, ok := AsAPIError(err); !ok || apiErr.StatusCode != http.StatusInternalServerError {
		t.Fatalf("CreateField() error = %v, want 500", err)
	}
	if atomic.LoadInt32(&calls) != 1 {
		t.Errorf("POST calls = %d, want 1", calls)
	}
}

func TestTransportErrorIsWrapped(t *testing.T) {
	c := New("http://127.0.0.1:1", WithRetryDelay(time.Millisecond))
	_, err := c.Login(context.Background(), "a@example.com", "secret123")
	if err == nil {
		t.Fatal("Login() error = nil")
	}
	if _, ok := AsAPIError(err); ok {
		t.Errorf("transport failure reported as api error: %v", err)
	}
}

func TestUploadDocumentSendsMultipart(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Errorf("FormFile() error = %v", err)
			return
		}
		defer file.Close()
		body, _ := io.ReadAll(file)
		if header.Filename != "kk.pdf" || string(body) != "%PDF" {
			t.Errorf("file = %s %q", header.Filename, body)
		}
		if r.FormValue("owner_core_id") != "0125000001" || r.FormValue("category") != "IDENTITY" {
			t.Errorf("form = %v", r.Form)
		}
		response.Success(w, http.StatusCreated, "ok", dto.DocumentResponse{Title: r.FormValue("title")})
	})

	doc, err := c.UploadDocument(context.Background(), Credentials{AccessToken: "tok"}, &dto.UploadDocumentRequest{
		OwnerCoreID: "0125000001",
		Title:       "Kartu Keluarga",
		Category:    "IDENTITY",
	}, "kk.pdf", bytes.NewBufferString("%PDF"))
	if err != nil {
		t.Fatalf("UploadDocument() error = %v", err)
	}
	if doc.Title != "Kartu Keluarga" {
		t.Errorf("title = %q", doc.Title)
	}
}
