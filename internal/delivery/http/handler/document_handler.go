package handler

import (
	"errors"
	"net/http"

	"csystem-sip/internal/delivery/dto"
	"csystem-sip/internal/infrastructure/storage"
	"csystem-sip/internal/usecase"
	"csystem-sip/pkg/response"
	"csystem-sip/pkg/validator"
)

type DocumentHandler struct {
	documentUsecase usecase.DocumentUsecase
	validator       *validator.CustomValidator
	maxUploadSize   int64
}

func NewDocumentHandler(documentUsecase usecase.DocumentUsecase, validator *validator.CustomValidator, maxUploadSize int64) *DocumentHandler {
	return &DocumentHandler{
		documentUsecase: documentUsecase,
		validator:       validator,
		maxUploadSize:   maxUploadSize,
	}
}

// Upload stores a document for a person identified by core id
// @Summary Upload document
// @Tags Document
// @Security BearerAuth
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Document"
// @Param owner_core_id formData string true "Owner core ID"
// @Param title formData string true "Title"
// @Param category formData string true "IDENTITY, CERTIFICATE, HEALTH or OTHER"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 413 {object} response.Response
// @Router /documents [post]
func (h *DocumentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize+1<<20)
	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Error(w, http.StatusRequestEntityTooLarge, storage.ErrFileTooLarge.Error(), nil)
			return
		}
		response.Error(w, http.StatusBadRequest, "Document file is required", nil)
		return
	}
	defer file.Close()

	req := dto.UploadDocumentRequest{
		OwnerCoreID: r.FormValue("owner_core_id"),
		Title:       r.FormValue("title"),
		Category:    r.FormValue("category"),
	}
	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	doc, err := h.documentUsecase.Upload(r.Context(), sess, &req, usecase.UploadedFile{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Content:     file,
	})
	if err != nil {
		writeDocumentError(w, err, "Failed to upload document")
		return
	}

	response.Success(w, http.StatusCreated, "Document uploaded successfully", doc)
}

// ListByCoreID lists the documents of a person
// @Summary List documents
// @Tags Document
// @Security BearerAuth
// @Produce json
// @Param coreId query string true "Owner core ID"
// @Success 200 {object} response.Response
// @Router /documents [get]
func (h *DocumentHandler) ListByCoreID(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}

	coreID := r.URL.Query().Get("coreId")
	if coreID == "" {
		response.Error(w, http.StatusBadRequest, "coreId query parameter is required", nil)
		return
	}

	docs, err := h.documentUsecase.ListByCoreID(r.Context(), sess, coreID)
	if err != nil {
		writeDocumentError(w, err, "Failed to get documents")
		return
	}

	response.Success(w, http.StatusOK, "Documents retrieved successfully", docs)
}

// Delete removes a document
// @Summary Delete document
// @Tags Document
// @Security BearerAuth
// @Produce json
// @Param id path string true "Document ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /documents/{id} [delete]
func (h *DocumentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}
	documentID, ok := pathUUID(w, r, "id", "Invalid document ID")
	if !ok {
		return
	}

	if err := h.documentUsecase.Delete(r.Context(), sess, documentID); err != nil {
		writeDocumentError(w, err, "Failed to delete document")
		return
	}

	response.Success(w, http.StatusOK, "Document deleted successfully", nil)
}

func writeDocumentError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, usecase.ErrForbidden):
		response.Forbidden(w, err.Error())
	case errors.Is(err, usecase.ErrOwnerNotFound), errors.Is(err, usecase.ErrDocumentNotFound), errors.Is(err, usecase.ErrUserNotFound):
		response.NotFound(w, err.Error())
	case errors.Is(err, storage.ErrFileTooLarge):
		response.Error(w, http.StatusRequestEntityTooLarge, err.Error(), nil)
	default:
		response.InternalServerError(w, fallback)
	}
}
