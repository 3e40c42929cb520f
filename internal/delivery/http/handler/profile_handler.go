package handler

import (
	"errors"
	"net/http"

	"csystem-sip/internal/delivery/dto"
	"csystem-sip/internal/domain/rules"
	"csystem-sip/internal/infrastructure/storage"
	"csystem-sip/internal/session"
	"csystem-sip/internal/usecase"
	"csystem-sip/pkg/response"
	"csystem-sip/pkg/validator"

	"github.com/google/uuid"
)

type ProfileHandler struct {
	profileUsecase usecase.ProfileUsecase
	validator      *validator.CustomValidator
	maxUploadSize  int64
}

func NewProfileHandler(profileUsecase usecase.ProfileUsecase, validator *validator.CustomValidator, maxUploadSize int64) *ProfileHandler {
	return &ProfileHandler{
		profileUsecase: profileUsecase,
		validator:      validator,
		maxUploadSize:  maxUploadSize,
	}
}

// GetMyProfile returns the caller's profile with its completeness
// @Summary Get own profile
// @Tags Profile
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.Response
// @Router /profile [get]
func (h *ProfileHandler) GetMyProfile(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}
	h.getProfile(w, r, sess, sess.UserID)
}

// GetProfile returns another person's profile to an admin or linked parent
// @Summary Get profile by user
// @Tags Profile
// @Security BearerAuth
// @Produce json
// @Param userId path string true "User ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /profile/{userId} [get]
func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}
	userID, ok := pathUUID(w, r, "userId", "Invalid user ID")
	if !ok {
		return
	}
	h.getProfile(w, r, sess, userID)
}

func (h *ProfileHandler) getProfile(w http.ResponseWriter, r *http.Request, sess session.Session, userID uuid.UUID) {
	profile, err := h.profileUsecase.GetProfile(r.Context(), sess, userID)
	if err != nil {
		writeProfileError(w, err, "Failed to get profile")
		return
	}

	response.Success(w, http.StatusOK, "Profile retrieved successfully", profile)
}

// UpdateMyProfile saves the caller's root identity and role section
// @Summary Update own profile
// @Tags Profile
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.UpdateProfileRequest true "Profile"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /profile [put]
func (h *ProfileHandler) UpdateMyProfile(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}
	h.updateProfile(w, r, sess, sess.UserID)
}

// UpdateProfile saves a managed person's profile
// @Summary Update profile by user
// @Tags Profile
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param userId path string true "User ID"
// @Param request body dto.UpdateProfileRequest true "Profile"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /profile/{userId} [put]
func (h *ProfileHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}
	userID, ok := pathUUID(w, r, "userId", "Invalid user ID")
	if !ok {
		return
	}
	h.updateProfile(w, r, sess, userID)
}

func (h *ProfileHandler) updateProfile(w http.ResponseWriter, r *http.Request, sess session.Session, userID uuid.UUID) {
	var req dto.UpdateProfileRequest
	if err := response.Decode(r.Body, &req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	profile, err := h.profileUsecase.UpdateProfile(r.Context(), sess, userID, &req)
	if err != nil {
		var fieldErrs rules.FieldErrors
		if errors.As(err, &fieldErrs) {
			response.ValidationError(w, fieldErrs)
			return
		}
		writeProfileError(w, err, "Failed to update profile")
		return
	}

	response.Success(w, http.StatusOK, "Profile updated successfully", profile)
}

// UploadAvatar replaces the caller's avatar
// @Summary Upload avatar
// @Tags Profile
// @Security BearerAuth
// @Accept multipart/form-data
// @Produce json
// @Param avatar formData file true "Avatar image"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 413 {object} response.Response
// @Router /profile/avatar [post]
func (h *ProfileHandler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize+1<<20)
	file, _, err := r.FormFile("avatar")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Error(w, http.StatusRequestEntityTooLarge, storage.ErrFileTooLarge.Error(), nil)
			return
		}
		response.Error(w, http.StatusBadRequest, "Avatar file is required", nil)
		return
	}
	defer file.Close()

	avatar, err := h.profileUsecase.UploadAvatar(r.Context(), sess, file)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrInvalidAvatar):
			response.Error(w, http.StatusBadRequest, err.Error(), nil)
		case errors.Is(err, storage.ErrFileTooLarge):
			response.Error(w, http.StatusRequestEntityTooLarge, err.Error(), nil)
		case errors.Is(err, usecase.ErrUserNotFound):
			response.NotFound(w, "User not found")
		default:
			response.InternalServerError(w, "Failed to upload avatar")
		}
		return
	}

	response.Success(w, http.StatusOK, "Avatar updated successfully", avatar)
}

// LinkChild sends an integration request from a parent to a child account
// @Summary Link child
// @Tags Profile
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.LinkChildRequest true "Link Child Request"
// @Success 201 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /profile/link-child [post]
func (h *ProfileHandler) LinkChild(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}

	var req dto.LinkChildRequest
	if err := response.Decode(r.Body, &req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	link, err := h.profileUsecase.LinkChild(r.Context(), sess, &req)
	if err != nil {
		writeProfileError(w, err, "Failed to link child")
		return
	}

	response.Success(w, http.StatusCreated, "Integration request sent", link)
}

// RespondIntegration lets a child accept or reject a parent's request
// @Summary Respond to integration request
// @Tags Profile
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.RespondIntegrationRequest true "Respond Integration Request"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /profile/respond-integration [post]
func (h *ProfileHandler) RespondIntegration(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}

	var req dto.RespondIntegrationRequest
	if err := response.Decode(r.Body, &req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	link, err := h.profileUsecase.RespondIntegration(r.Context(), sess, &req)
	if err != nil {
		writeProfileError(w, err, "Failed to respond to integration request")
		return
	}

	response.Success(w, http.StatusOK, "Integration request answered", link)
}

// GetIntegrationRequests lists the pending parent requests addressed to the caller
// @Summary List integration requests
// @Tags Profile
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.Response
// @Router /profile/integrations [get]
func (h *ProfileHandler) GetIntegrationRequests(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}

	requests, err := h.profileUsecase.GetIntegrationRequests(r.Context(), sess)
	if err != nil {
		writeProfileError(w, err, "Failed to get integration requests")
		return
	}

	response.Success(w, http.StatusOK, "Integration requests retrieved successfully", requests)
}

// GetChildren lists the children linked to a parent
// @Summary List children
// @Tags Profile
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.Response
// @Router /profile/children [get]
func (h *ProfileHandler) GetChildren(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}

	children, err := h.profileUsecase.GetChildren(r.Context(), sess)
	if err != nil {
		writeProfileError(w, err, "Failed to get children")
		return
	}

	response.Success(w, http.StatusOK, "Children retrieved successfully", children)
}

// CreateReferral issues a one-time signup link for a child
// @Summary Create referral
// @Tags Profile
// @Security BearerAuth
// @Produce json
// @Success 201 {object} response.Response
// @Router /profile/referral [post]
func (h *ProfileHandler) CreateReferral(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}

	referral, err := h.profileUsecase.CreateReferral(r.Context(), sess)
	if err != nil {
		writeProfileError(w, err, "Failed to create referral")
		return
	}

	response.Success(w, http.StatusCreated, "Referral created successfully", referral)
}

func writeProfileError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, usecase.ErrForbidden), errors.Is(err, usecase.ErrParentRoleOnly):
		response.Forbidden(w, err.Error())
	case errors.Is(err, usecase.ErrProfileNotFound), errors.Is(err, usecase.ErrUserNotFound):
		response.NotFound(w, "Profile not found")
	case errors.Is(err, usecase.ErrChildNotFound), errors.Is(err, usecase.ErrLinkNotFound):
		response.NotFound(w, err.Error())
	case errors.Is(err, usecase.ErrLinkExists), errors.Is(err, usecase.ErrLinkResolved):
		response.Conflict(w, err.Error())
	case errors.Is(err, usecase.ErrCannotLinkSelf):
		response.Error(w, http.StatusBadRequest, err.Error(), nil)
	default:
		response.InternalServerError(w, fallback)
	}
}
