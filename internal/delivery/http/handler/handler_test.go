package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"csystem-sip/internal/delivery/dto"
	"csystem-sip/internal/domain/entity"
	"csystem-sip/internal/domain/rules"
	"csystem-sip/internal/infrastructure/storage"
	"csystem-sip/internal/session"
	"csystem-sip/internal/usecase"
	"csystem-sip/pkg/validator"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type envelope struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Data    json.RawMessage   `json:"data"`
	Error   map[string]string `json:"error"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("invalid response body %q: %v", rec.Body.String(), err)
	}
	return env
}

func authed(r *http.Request, roleID int) *http.Request {
	sess := session.Session{UserID: uuid.New(), Email: "member@example.com", RoleID: roleID, TokenID: "tid"}
	return r.WithContext(session.WithSession(r.Context(), sess))
}

type fakeProfileUsecase struct {
	usecase.ProfileUsecase
	update func(sess session.Session, userID uuid.UUID, req *dto.UpdateProfileRequest) (*dto.ProfileResponse, error)
	avatar func(file io.Reader) (*dto.AvatarResponse, error)
	link   func(req *dto.LinkChildRequest) (*dto.ParentLinkResponse, error)
}

func (f *fakeProfileUsecase) UpdateProfile(_ context.Context, sess session.Session, userID uuid.UUID, req *dto.UpdateProfileRequest) (*dto.ProfileResponse, error) {
	return f.update(sess, userID, req)
}

func (f *fakeProfileUsecase) UploadAvatar(_ context.Context, _ session.Session, file io.Reader) (*dto.AvatarResponse, error) {
	return f.avatar(file)
}

func (f *fakeProfileUsecase) LinkChild(_ context.Context, _ session.Session, req *dto.LinkChildRequest) (*dto.ParentLinkResponse, error) {
	return f.link(req)
}

func TestUpdateProfileReturnsFieldMap(t *testing.T) {
	fake := &fakeProfileUsecase{
		update: func(_ session.Session, _ uuid.UUID, _ *dto.UpdateProfileRequest) (*dto.ProfileResponse, error) {
			return nil, rules.FieldErrors{
				rules.FieldParentName:  "Parent/guardian name is required for athletes under 18",
				rules.FieldParentPhone: "Parent/guardian phone is required for athletes under 18",
			}
		},
	}
	h := NewProfileHandler(fake, validator.NewValidator(), 1<<20)

	req := authed(httptest.NewRequest(http.MethodPut, "/api/v1/profile", strings.NewReader(`{"name":"Dimas"}`)), entity.RoleIDAthlete)
	rec := httptest.NewRecorder()
	h.UpdateMyProfile(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	env := decodeEnvelope(t, rec)
	if len(env.Error) != 2 || env.Error[rules.FieldParentName] == "" || env.Error[rules.FieldParentPhone] == "" {
		t.Errorf("error map = %v, want parent_name and parent_phone", env.Error)
	}
}

func TestUpdateProfileUsesPathUserAndSession(t *testing.T) {
	target := uuid.New()
	var gotUser uuid.UUID
	var gotName string
	fake := &fakeProfileUsecase{
		update: func(_ session.Session, userID uuid.UUID, req *dto.UpdateProfileRequest) (*dto.ProfileResponse, error) {
			gotUser, gotName = userID, req.Name
			return &dto.ProfileResponse{ID: userID, Name: req.Name}, nil
		},
	}
	h := NewProfileHandler(fake, validator.NewValidator(), 1<<20)

	req := httptest.NewRequest(http.MethodPut, "/api/v1/profile/"+target.String(), strings.NewReader(`{"name":"Sari"}`))
	req = mux.SetURLVars(authed(req, entity.RoleIDParent), map[string]string{"userId": target.String()})
	rec := httptest.NewRecorder()
	h.UpdateProfile(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if gotUser != target || gotName != "Sari" {
		t.Errorf("usecase got (%s, %q), want (%s, Sari)", gotUser, gotName, target)
	}
}

func TestProfileHandlerErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"forbidden", usecase.ErrForbidden, http.StatusForbidden},
		{"not found", usecase.ErrProfileNotFound, http.StatusNotFound},
		{"internal", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeProfileUsecase{
				update: func(session.Session, uuid.UUID, *dto.UpdateProfileRequest) (*dto.ProfileResponse, error) {
					return nil, tt.err
				},
			}
			h := NewProfileHandler(fake, validator.NewValidator(), 1<<20)
			rec := httptest.NewRecorder()
			h.UpdateMyProfile(rec, authed(httptest.NewRequest(http.MethodPut, "/api/v1/profile", strings.NewReader(`{}`)), entity.RoleIDCoach))
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestProfileHandlerRequiresSession(t *testing.T) {
	h := NewProfileHandler(&fakeProfileUsecase{}, validator.NewValidator(), 1<<20)
	rec := httptest.NewRecorder()
	h.UpdateMyProfile(rec, httptest.NewRequest(http.MethodPut, "/api/v1/profile", strings.NewReader(`{}`)))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestLinkChildValidatesBody(t *testing.T) {
	called := false
	fake := &fakeProfileUsecase{
		link: func(*dto.LinkChildRequest) (*dto.ParentLinkResponse, error) {
			called = true
			return nil, usecase.ErrLinkExists
		},
	}
	h := NewProfileHandler(fake, validator.NewValidator(), 1<<20)

	rec := httptest.NewRecorder()
	h.LinkChild(rec, authed(httptest.NewRequest(http.MethodPost, "/api/v1/profile/link-child", strings.NewReader(`{}`)), entity.RoleIDParent))
	if rec.Code != http.StatusBadRequest || called {
		t.Fatalf("missing core id: status = %d, called = %v", rec.Code, called)
	}
	if env := decodeEnvelope(t, rec); env.Error["child_core_id"] == "" {
		t.Errorf("error map = %v, want child_core_id", env.Error)
	}

	rec = httptest.NewRecorder()
	h.LinkChild(rec, authed(httptest.NewRequest(http.MethodPost, "/api/v1/profile/link-child", strings.NewReader(`{"child_core_id":"0126123456"}`)), entity.RoleIDParent))
	if rec.Code != http.StatusConflict {
		t.Errorf("existing link status = %d, want 409", rec.Code)
	}
}

func multipartBody(t *testing.T, field, filename string, content []byte, values map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	for k, v := range values {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("WriteField() error = %v", err)
		}
	}
	if field != "" {
		part, err := mw.CreateFormFile(field, filename)
		if err != nil {
			t.Fatalf("CreateFormFile() error = %v", err)
		}
		part.Write(content)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	return body, mw.FormDataContentType()
}

func TestUploadAvatar(t *testing.T) {
	var received []byte
	fake := &fakeProfileUsecase{
		avatar: func(file io.Reader) (*dto.AvatarResponse, error) {
			received, _ = io.ReadAll(file)
			if string(received) == "not an image" {
				return nil, usecase.ErrInvalidAvatar
			}
			return &dto.AvatarResponse{AvatarURL: "/uploads/avatars/a.jpg"}, nil
		},
	}
	h := NewProfileHandler(fake, validator.NewValidator(), 1<<20)

	body, contentType := multipartBody(t, "avatar", "me.png", []byte("png bytes"), nil)
	req := authed(httptest.NewRequest(http.MethodPost, "/api/v1/profile/avatar", body), entity.RoleIDAthlete)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	h.UploadAvatar(rec, req)
	if rec.Code != http.StatusOK || string(received) != "png bytes" {
		t.Fatalf("status = %d, received %q", rec.Code, received)
	}

	body, contentType = multipartBody(t, "avatar", "me.txt", []byte("not an image"), nil)
	req = authed(httptest.NewRequest(http.MethodPost, "/api/v1/profile/avatar", body), entity.RoleIDAthlete)
	req.Header.Set("Content-Type", contentType)
	rec = httptest.NewRecorder()
	h.UploadAvatar(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("garbage avatar status = %d, want 400", rec.Code)
	}

	body, contentType = multipartBody(t, "", "", nil, map[string]string{"note": "no file"})
	req = authed(httptest.NewRequest(http.MethodPost, "/api/v1/profile/avatar", body), entity.RoleIDAthlete)
	req.Header.Set("Content-Type", contentType)
	rec = httptest.NewRecorder()
	h.UploadAvatar(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing file status = %d, want 400", rec.Code)
	}
}

type fakeClubUsecase struct {
	usecase.ClubUsecase
	join    func(req *dto.JoinClubRequest) (*dto.JoinClubResponse, error)
	approve func(id uuid.UUID) (*dto.ClubRequestResponse, error)
}

func (f *fakeClubUsecase) Join(_ context.Context, _ session.Session, req *dto.JoinClubRequest) (*dto.JoinClubResponse, error) {
	return f.join(req)
}

func (f *fakeClubUsecase) Approve(_ context.Context, _ session.Session, id uuid.UUID) (*dto.ClubRequestResponse, error) {
	return f.approve(id)
}

func TestJoinClubStatusMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"created", nil, http.StatusCreated},
		{"already pending", usecase.ErrAlreadyPending, http.StatusConflict},
		{"already member", usecase.ErrAlreadyMember, http.StatusConflict},
		{"guardian required", usecase.ErrGuardianRequired, http.StatusForbidden},
		{"club missing", usecase.ErrClubNotFound, http.StatusNotFound},
		{"not an athlete", usecase.ErrNotAnAthlete, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clubID := uuid.New()
			fake := &fakeClubUsecase{
				join: func(req *dto.JoinClubRequest) (*dto.JoinClubResponse, error) {
					if req.ClubID != clubID {
						t.Errorf("club id = %s, want %s", req.ClubID, clubID)
					}
					if tt.err != nil {
						return nil, tt.err
					}
					return &dto.JoinClubResponse{Request: dto.ClubRequestResponse{ClubID: clubID, Status: "PENDING"}}, nil
				},
			}
			h := NewClubHandler(fake, validator.NewValidator())

			body := `{"club_id":"` + clubID.String() + `"}`
			rec := httptest.NewRecorder()
			h.Join(rec, authed(httptest.NewRequest(http.MethodPost, "/api/v1/clubs/join", strings.NewReader(body)), entity.RoleIDAthlete))
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d: %s", rec.Code, tt.want, rec.Body.String())
			}
		})
	}
}

func TestApproveRejectsMalformedID(t *testing.T) {
	called := false
	fake := &fakeClubUsecase{
		approve: func(uuid.UUID) (*dto.ClubRequestResponse, error) {
			called = true
			return nil, nil
		},
	}
	h := NewClubHandler(fake, validator.NewValidator())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/clubs/requests/abc/approve", nil)
	req = mux.SetURLVars(authed(req, entity.RoleIDClub), map[string]string{"id": "abc"})
	rec := httptest.NewRecorder()
	h.Approve(rec, req)

	if rec.Code != http.StatusBadRequest || called {
		t.Errorf("status = %d, called = %v; want 400 without reaching the usecase", rec.Code, called)
	}
}

type fakeModuleUsecase struct {
	usecase.ModuleUsecase
	createField func(moduleID uuid.UUID, req *dto.FieldRequest) (*dto.FieldResponse, error)
}

func (f *fakeModuleUsecase) CreateField(_ context.Context, _ session.Session, moduleID uuid.UUID, req *dto.FieldRequest) (*dto.FieldResponse, error) {
	return f.createField(moduleID, req)
}

func TestCreateFieldRejectsTypesOutsideCatalog(t *testing.T) {
	moduleID := uuid.New()
	fake := &fakeModuleUsecase{
		createField: func(id uuid.UUID, req *dto.FieldRequest) (*dto.FieldResponse, error) {
			if req.FieldName == "stance" {
				return nil, usecase.ErrFieldNameExists
			}
			return &dto.FieldResponse{FieldName: req.FieldName, FieldType: req.FieldType}, nil
		},
	}
	h := NewModuleHandler(fake, validator.NewValidator())

	tests := []struct {
		name string
		body string
		want int
	}{
		{"unknown type", `{"section_name":"Posture","field_name":"grip","field_type":"slider3d","label":"Grip"}`, http.StatusBadRequest},
		{"duplicate name", `{"section_name":"Posture","field_name":"stance","field_type":"text","label":"Stance"}`, http.StatusConflict},
		{"valid", `{"section_name":"Posture","field_name":"anchor","field_type":"rating","label":"Anchor"}`, http.StatusCreated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/modules/"+moduleID.String()+"/fields", strings.NewReader(tt.body))
			req = mux.SetURLVars(authed(req, entity.RoleIDSuperAdmin), map[string]string{"id": moduleID.String()})
			rec := httptest.NewRecorder()
			h.CreateField(rec, req)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d: %s", rec.Code, tt.want, rec.Body.String())
			}
		})
	}
}

type fakeDocumentUsecase struct {
	usecase.DocumentUsecase
	upload func(req *dto.UploadDocumentRequest, file usecase.UploadedFile) (*dto.DocumentResponse, error)
}

func (f *fakeDocumentUsecase) Upload(_ context.Context, _ session.Session, req *dto.UploadDocumentRequest, file usecase.UploadedFile) (*dto.DocumentResponse, error) {
	return f.upload(req, file)
}

func TestDocumentUpload(t *testing.T) {
	fake := &fakeDocumentUsecase{
		upload: func(req *dto.UploadDocumentRequest, file usecase.UploadedFile) (*dto.DocumentResponse, error) {
			if req.Title == "huge" {
				return nil, storage.ErrFileTooLarge
			}
			content, _ := io.ReadAll(file.Content)
			return &dto.DocumentResponse{Title: req.Title, FileName: file.Name, FileSize: int64(len(content))}, nil
		},
	}
	h := NewDocumentHandler(fake, validator.NewValidator(), 1<<20)

	send := func(values map[string]string) *httptest.ResponseRecorder {
		body, contentType := multipartBody(t, "file", "kk.pdf", []byte("%PDF-1.4"), values)
		req := authed(httptest.NewRequest(http.MethodPost, "/api/v1/documents", body), entity.RoleIDAthlete)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		h.Upload(rec, req)
		return rec
	}

	rec := send(map[string]string{"owner_core_id": "0126123456", "title": "Kartu Keluarga", "category": "IDENTITY"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}
	var doc dto.DocumentResponse
	if err := json.Unmarshal(decodeEnvelope(t, rec).Data, &doc); err != nil {
		t.Fatalf("invalid data: %v", err)
	}
	if doc.FileName != "kk.pdf" || doc.FileSize != 8 {
		t.Errorf("document = %+v, want kk.pdf of 8 bytes", doc)
	}

	if rec := send(map[string]string{"owner_core_id": "0126123456", "title": "Kartu", "category": "SELFIE"}); rec.Code != http.StatusBadRequest {
		t.Errorf("bad category status = %d, want 400", rec.Code)
	}
	if rec := send(map[string]string{"owner_core_id": "0126123456", "title": "huge", "category": "OTHER"}); rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("too large status = %d, want 413", rec.Code)
	}
}

type fakeOrderUsecase struct {
	usecase.OrderUsecase
	list func(supplierID *uuid.UUID, status string, page, limit int) (*dto.OrderListResponse, error)
}

func (f *fakeOrderUsecase) ListOrders(_ context.Context, _ session.Session, supplierID *uuid.UUID, status string, page, limit int) (*dto.OrderListResponse, error) {
	return f.list(supplierID, status, page, limit)
}

func TestListOrdersQuery(t *testing.T) {
	supplier := uuid.New()
	fake := &fakeOrderUsecase{
		list: func(supplierID *uuid.UUID, status string, page, limit int) (*dto.OrderListResponse, error) {
			if supplierID == nil || *supplierID != supplier {
				return nil, usecase.ErrForbidden
			}
			if status != "PAID" || page != 2 || limit != 100 {
				t.Errorf("query = (%s, %d, %d), want (PAID, 2, 100)", status, page, limit)
			}
			return &dto.OrderListResponse{Total: 250}, nil
		},
	}
	h := NewOrderHandler(fake, validator.NewValidator())

	rec := httptest.NewRecorder()
	h.ListOrders(rec, authed(httptest.NewRequest(http.MethodGet, "/api/v1/orders?supplierId="+supplier.String()+"&status=PAID&page=2&limit=500", nil), entity.RoleIDSuperAdmin))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	var meta struct {
		Meta struct {
			TotalPages int `json:"total_pages"`
		} `json:"meta"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &meta); err != nil || meta.Meta.TotalPages != 3 {
		t.Errorf("total pages = %d (%v), want 3", meta.Meta.TotalPages, err)
	}

	rec = httptest.NewRecorder()
	h.ListOrders(rec, authed(httptest.NewRequest(http.MethodGet, "/api/v1/orders?supplierId=nope", nil), entity.RoleIDSuperAdmin))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("malformed supplier status = %d, want 400", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ListOrders(rec, authed(httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil), entity.RoleIDSupplier))
	if rec.Code != http.StatusForbidden {
		t.Errorf("forbidden status = %d, want 403", rec.Code)
	}
}
