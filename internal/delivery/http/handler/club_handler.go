package handler

import (
	"errors"
	"net/http"

	"csystem-sip/internal/delivery/dto"
	"csystem-sip/internal/usecase"
	"csystem-sip/pkg/response"
	"csystem-sip/pkg/validator"
)

type ClubHandler struct {
	clubUsecase usecase.ClubUsecase
	validator   *validator.CustomValidator
}

func NewClubHandler(clubUsecase usecase.ClubUsecase, validator *validator.CustomValidator) *ClubHandler {
	return &ClubHandler{
		clubUsecase: clubUsecase,
		validator:   validator,
	}
}

// GetStatus returns the club status of the caller, or of each linked child for a parent
// @Summary Club status
// @Tags Club
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.Response
// @Router /clubs/status [get]
func (h *ClubHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}

	status, err := h.clubUsecase.GetStatus(r.Context(), sess)
	if err != nil {
		writeClubError(w, err, "Failed to get club status")
		return
	}

	response.Success(w, http.StatusOK, "Club status retrieved successfully", status)
}

// Join submits a join request
// @Summary Join club
// @Tags Club
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.JoinClubRequest true "Join Club Request"
// @Success 201 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /clubs/join [post]
func (h *ClubHandler) Join(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}

	var req dto.JoinClubRequest
	if err := response.Decode(r.Body, &req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	res, err := h.clubUsecase.Join(r.Context(), sess, &req)
	if err != nil {
		writeClubError(w, err, "Failed to join club")
		return
	}

	response.Success(w, http.StatusCreated, "Join request submitted", res)
}

// Leave ends the membership or withdraws the pending request
// @Summary Leave club
// @Tags Club
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.LeaveClubRequest false "Leave Club Request"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /clubs/leave [post]
func (h *ClubHandler) Leave(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}

	// Body is optional; an athlete leaving for themselves may send nothing
	var req dto.LeaveClubRequest
	if r.ContentLength != 0 {
		if err := response.Decode(r.Body, &req); err != nil {
			response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
			return
		}
	}

	status, err := h.clubUsecase.Leave(r.Context(), sess, &req)
	if err != nil {
		writeClubError(w, err, "Failed to leave club")
		return
	}

	response.Success(w, http.StatusOK, "Left club successfully", status)
}

// ListRequests shows pending join requests to a club or an admin
// @Summary List join requests
// @Tags Club
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.Response
// @Router /clubs/requests [get]
func (h *ClubHandler) ListRequests(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}

	requests, err := h.clubUsecase.ListRequests(r.Context(), sess)
	if err != nil {
		writeClubError(w, err, "Failed to get join requests")
		return
	}

	response.Success(w, http.StatusOK, "Join requests retrieved successfully", requests)
}

// Approve accepts a pending join request
// @Summary Approve join request
// @Tags Club
// @Security BearerAuth
// @Produce json
// @Param id path string true "Request ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /clubs/requests/{id}/approve [post]
func (h *ClubHandler) Approve(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}
	requestID, ok := pathUUID(w, r, "id", "Invalid request ID")
	if !ok {
		return
	}

	res, err := h.clubUsecase.Approve(r.Context(), sess, requestID)
	if err != nil {
		writeClubError(w, err, "Failed to approve join request")
		return
	}

	response.Success(w, http.StatusOK, "Join request approved", res)
}

// Reject declines a pending join request
// @Summary Reject join request
// @Tags Club
// @Security BearerAuth
// @Produce json
// @Param id path string true "Request ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /clubs/requests/{id}/reject [post]
func (h *ClubHandler) Reject(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}
	requestID, ok := pathUUID(w, r, "id", "Invalid request ID")
	if !ok {
		return
	}

	if err := h.clubUsecase.Reject(r.Context(), sess, requestID); err != nil {
		writeClubError(w, err, "Failed to reject join request")
		return
	}

	response.Success(w, http.StatusOK, "Join request rejected", nil)
}

func writeClubError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, usecase.ErrForbidden),
		errors.Is(err, usecase.ErrGuardianRequired),
		errors.Is(err, usecase.ErrClubStatusNotAllowed):
		response.Forbidden(w, err.Error())
	case errors.Is(err, usecase.ErrAthleteNotFound),
		errors.Is(err, usecase.ErrClubNotFound),
		errors.Is(err, usecase.ErrClubRequestNotFound),
		errors.Is(err, usecase.ErrNotInClub):
		response.NotFound(w, err.Error())
	case errors.Is(err, usecase.ErrAlreadyPending),
		errors.Is(err, usecase.ErrAlreadyMember),
		errors.Is(err, usecase.ErrClubRequestDecided):
		response.Conflict(w, err.Error())
	case errors.Is(err, usecase.ErrNotAnAthlete):
		response.Error(w, http.StatusBadRequest, err.Error(), nil)
	default:
		response.InternalServerError(w, fallback)
	}
}
