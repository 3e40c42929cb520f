package sipclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"

	"csystem-sip/internal/delivery/dto"

	"github.com/google/uuid"
)

// Auth

func (c *Client) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.RegisterResponse, error) {
	var res dto.RegisterResponse
	if err := c.do(ctx, http.MethodPost, "/auth/register", nil, req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) CheckEmail(ctx context.Context, email string) (bool, error) {
	var res dto.CheckEmailResponse
	if err := c.do(ctx, http.MethodPost, "/auth/check-email", nil, &dto.CheckEmailRequest{Email: email}, &res); err != nil {
		return false, err
	}
	return res.Exists, nil
}

func (c *Client) VerifyExisting(ctx context.Context, email, password string) (*dto.VerifyExistingResponse, error) {
	var res dto.VerifyExistingResponse
	req := &dto.VerifyExistingRequest{Email: email, Password: password}
	if err := c.do(ctx, http.MethodPost, "/auth/verify-existing", nil, req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) Login(ctx context.Context, email, password string) (*dto.TokenResponse, error) {
	var res dto.TokenResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", nil, &dto.LoginRequest{Email: email, Password: password}, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) Roles(ctx context.Context) ([]dto.RoleResponse, error) {
	var res []dto.RoleResponse
	if err := c.get(ctx, "/auth/roles", nil, &res); err != nil {
		return nil, err
	}
	return res, nil
}

func (c *Client) Clubs(ctx context.Context) (*dto.ClubDirectoryResponse, error) {
	var res dto.ClubDirectoryResponse
	if err := c.get(ctx, "/auth/clubs", nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Profile

// GetProfile loads the caller's profile, or another person's when userID is set
func (c *Client) GetProfile(ctx context.Context, creds Credentials, userID *uuid.UUID) (*dto.ProfileResponse, error) {
	var res dto.ProfileResponse
	if err := c.get(ctx, profilePath(userID), &creds, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// UpdateProfile saves the caller's profile, or another person's when userID is set
func (c *Client) UpdateProfile(ctx context.Context, creds Credentials, userID *uuid.UUID, in *dto.UpdateProfileRequest) (*dto.ProfileResponse, error) {
	var res dto.ProfileResponse
	if err := c.do(ctx, http.MethodPut, profilePath(userID), &creds, in, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) UploadAvatar(ctx context.Context, creds Credentials, filename string, content io.Reader) (*dto.AvatarResponse, error) {
	var res dto.AvatarResponse
	if err := c.upload(ctx, "/profile/avatar", creds, "avatar", filename, content, nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) Children(ctx context.Context, creds Credentials) (*dto.ChildListResponse, error) {
	var res dto.ChildListResponse
	if err := c.get(ctx, "/profile/children", &creds, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func profilePath(userID *uuid.UUID) string {
	if userID == nil {
		return "/profile"
	}
	return "/profile/" + userID.String()
}

// Clubs

func (c *Client) ClubStatus(ctx context.Context, creds Credentials) (*dto.ClubStatusListResponse, error) {
	var res dto.ClubStatusListResponse
	if err := c.get(ctx, "/clubs/status", &creds, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) JoinClub(ctx context.Context, creds Credentials, req *dto.JoinClubRequest) (*dto.JoinClubResponse, error) {
	var res dto.JoinClubResponse
	if err := c.do(ctx, http.MethodPost, "/clubs/join", &creds, req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) LeaveClub(ctx context.Context, creds Credentials, req *dto.LeaveClubRequest) (*dto.ClubStatusResponse, error) {
	var res dto.ClubStatusResponse
	if err := c.do(ctx, http.MethodPost, "/clubs/leave", &creds, req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Modules

func (c *Client) GetModule(ctx context.Context, creds Credentials, moduleID uuid.UUID) (*dto.ModuleResponse, error) {
	var res dto.ModuleResponse
	if err := c.get(ctx, "/modules/"+moduleID.String(), &creds, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) CreateModule(ctx context.Context, creds Credentials, req *dto.CreateModuleRequest) (*dto.ModuleResponse, error) {
	var res dto.ModuleResponse
	if err := c.do(ctx, http.MethodPost, "/modules", &creds, req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) CreateSection(ctx context.Context, creds Credentials, moduleID uuid.UUID, name string) (*dto.SectionResponse, error) {
	var res dto.SectionResponse
	path := fmt.Sprintf("/modules/%s/sections", moduleID)
	if err := c.do(ctx, http.MethodPost, path, &creds, &dto.CreateSectionRequest{Name: name}, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) CreateField(ctx context.Context, creds Credentials, moduleID uuid.UUID, req *dto.FieldRequest) (*dto.FieldResponse, error) {
	var res dto.FieldResponse
	path := fmt.Sprintf("/modules/%s/fields", moduleID)
	if err := c.do(ctx, http.MethodPost, path, &creds, req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) UpdateField(ctx context.Context, creds Credentials, moduleID, fieldID uuid.UUID, req *dto.FieldRequest) (*dto.FieldResponse, error) {
	var res dto.FieldResponse
	path := fmt.Sprintf("/modules/%s/fields/%s", moduleID, fieldID)
	if err := c.do(ctx, http.MethodPut, path, &creds, req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) DeleteField(ctx context.Context, creds Credentials, moduleID, fieldID uuid.UUID) error {
	path := fmt.Sprintf("/modules/%s/fields/%s", moduleID, fieldID)
	return c.do(ctx, http.MethodDelete, path, &creds, nil, nil)
}

// Documents

func (c *Client) UploadDocument(ctx context.Context, creds Credentials, req *dto.UploadDocumentRequest, filename string, content io.Reader) (*dto.DocumentResponse, error) {
	var res dto.DocumentResponse
	fields := map[string]string{
		"owner_core_id": req.OwnerCoreID,
		"title":         req.Title,
		"category":      req.Category,
	}
	if err := c.upload(ctx, "/documents", creds, "file", filename, content, fields, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) ListDocuments(ctx context.Context, creds Credentials, coreID string) (*dto.DocumentListResponse, error) {
	var res dto.DocumentListResponse
	if err := c.get(ctx, "/documents?coreId="+url.QueryEscape(coreID), &creds, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Orders

func (c *Client) ListOrders(ctx context.Context, creds Credentials, status string, page, limit int) (*dto.OrderListResponse, error) {
	q := url.Values{}
	if status != "" {
		q.Set("status", status)
	}
	if page > 0 {
		q.Set("page", fmt.Sprint(page))
	}
	if limit > 0 {
		q.Set("limit", fmt.Sprint(limit))
	}
	path := "/orders"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var res dto.OrderListResponse
	if err := c.get(ctx, path, &creds, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) UpsertCourier(ctx context.Context, creds Credentials, orderID uuid.UUID, req *dto.UpsertCourierRequest) (*dto.OrderResponse, error) {
	var res dto.OrderResponse
	if err := c.do(ctx, http.MethodPut, "/orders/"+orderID.String()+"/courier", &creds, req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) upload(ctx context.Context, path string, creds Credentials, field, filename string, content io.Reader, values map[string]string, out interface{}) error {
	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)
	for k, v := range values {
		if err := mw.WriteField(k, v); err != nil {
			return fmt.Errorf("encode %s: %w", path, err)
		}
	}
	part, err := mw.CreateFormFile(field, filename)
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, buf)
	if err != nil {
		return fmt.Errorf("build POST %s: %w", path, err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return c.send(req, &creds, out)
}
