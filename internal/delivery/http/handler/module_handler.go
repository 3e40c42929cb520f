package handler

import (
	"errors"
	"net/http"

	"csystem-sip/internal/delivery/dto"
	"csystem-sip/internal/usecase"
	"csystem-sip/pkg/response"
	"csystem-sip/pkg/validator"
)

type ModuleHandler struct {
	moduleUsecase usecase.ModuleUsecase
	validator     *validator.CustomValidator
}

func NewModuleHandler(moduleUsecase usecase.ModuleUsecase, validator *validator.CustomValidator) *ModuleHandler {
	return &ModuleHandler{
		moduleUsecase: moduleUsecase,
		validator:     validator,
	}
}

// ListModules lists the modules visible to the caller
// @Summary List modules
// @Tags Module
// @Security BearerAuth
// @Produce json
// @Param status query string false "DRAFT, ACTIVE or ARCHIVED (admin only)"
// @Success 200 {object} response.Response
// @Router /modules [get]
func (h *ModuleHandler) ListModules(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}

	modules, err := h.moduleUsecase.ListModules(r.Context(), sess, r.URL.Query().Get("status"))
	if err != nil {
		writeModuleError(w, err, "Failed to get modules")
		return
	}

	response.Success(w, http.StatusOK, "Modules retrieved successfully", modules)
}

// GetModule returns a module with its sections and fields
// @Summary Get module
// @Tags Module
// @Security BearerAuth
// @Produce json
// @Param id path string true "Module ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /modules/{id} [get]
func (h *ModuleHandler) GetModule(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}
	moduleID, ok := pathUUID(w, r, "id", "Invalid module ID")
	if !ok {
		return
	}

	module, err := h.moduleUsecase.GetModule(r.Context(), sess, moduleID)
	if err != nil {
		writeModuleError(w, err, "Failed to get module")
		return
	}

	response.Success(w, http.StatusOK, "Module retrieved successfully", module)
}

// CreateModule creates a draft module
// @Summary Create module
// @Tags Module
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.CreateModuleRequest true "Create Module Request"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /modules [post]
func (h *ModuleHandler) CreateModule(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}

	var req dto.CreateModuleRequest
	if err := response.Decode(r.Body, &req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	module, err := h.moduleUsecase.CreateModule(r.Context(), sess, &req)
	if err != nil {
		writeModuleError(w, err, "Failed to create module")
		return
	}

	response.Success(w, http.StatusCreated, "Module created successfully", module)
}

// UpdateModule replaces module metadata
// @Summary Update module
// @Tags Module
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Module ID"
// @Param request body dto.UpdateModuleRequest true "Update Module Request"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /modules/{id} [put]
func (h *ModuleHandler) UpdateModule(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}
	moduleID, ok := pathUUID(w, r, "id", "Invalid module ID")
	if !ok {
		return
	}

	var req dto.UpdateModuleRequest
	if err := response.Decode(r.Body, &req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	module, err := h.moduleUsecase.UpdateModule(r.Context(), sess, moduleID, &req)
	if err != nil {
		writeModuleError(w, err, "Failed to update module")
		return
	}

	response.Success(w, http.StatusOK, "Module updated successfully", module)
}

// DeleteModule removes a module with its sections and fields
// @Summary Delete module
// @Tags Module
// @Security BearerAuth
// @Produce json
// @Param id path string true "Module ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /modules/{id} [delete]
func (h *ModuleHandler) DeleteModule(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}
	moduleID, ok := pathUUID(w, r, "id", "Invalid module ID")
	if !ok {
		return
	}

	if err := h.moduleUsecase.DeleteModule(r.Context(), sess, moduleID); err != nil {
		writeModuleError(w, err, "Failed to delete module")
		return
	}

	response.Success(w, http.StatusOK, "Module deleted successfully", nil)
}

// CreateSection adds a named section, returning the existing one when the name is taken
// @Summary Create section
// @Tags Module
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Module ID"
// @Param request body dto.CreateSectionRequest true "Create Section Request"
// @Success 200 {object} response.Response
// @Router /modules/{id}/sections [post]
func (h *ModuleHandler) CreateSection(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}
	moduleID, ok := pathUUID(w, r, "id", "Invalid module ID")
	if !ok {
		return
	}

	var req dto.CreateSectionRequest
	if err := response.Decode(r.Body, &req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	section, err := h.moduleUsecase.CreateSection(r.Context(), sess, moduleID, &req)
	if err != nil {
		writeModuleError(w, err, "Failed to create section")
		return
	}

	response.Success(w, http.StatusOK, "Section saved successfully", section)
}

// CreateField adds a field to a module
// @Summary Create field
// @Tags Module
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Module ID"
// @Param request body dto.FieldRequest true "Field Request"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /modules/{id}/fields [post]
func (h *ModuleHandler) CreateField(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}
	moduleID, ok := pathUUID(w, r, "id", "Invalid module ID")
	if !ok {
		return
	}

	var req dto.FieldRequest
	if err := response.Decode(r.Body, &req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	field, err := h.moduleUsecase.CreateField(r.Context(), sess, moduleID, &req)
	if err != nil {
		writeModuleError(w, err, "Failed to create field")
		return
	}

	response.Success(w, http.StatusCreated, "Field created successfully", field)
}

// UpdateField replaces a field definition
// @Summary Update field
// @Tags Module
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Module ID"
// @Param fieldId path string true "Field ID"
// @Param request body dto.FieldRequest true "Field Request"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /modules/{id}/fields/{fieldId} [put]
func (h *ModuleHandler) UpdateField(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}
	moduleID, ok := pathUUID(w, r, "id", "Invalid module ID")
	if !ok {
		return
	}
	fieldID, ok := pathUUID(w, r, "fieldId", "Invalid field ID")
	if !ok {
		return
	}

	var req dto.FieldRequest
	if err := response.Decode(r.Body, &req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	field, err := h.moduleUsecase.UpdateField(r.Context(), sess, moduleID, fieldID, &req)
	if err != nil {
		writeModuleError(w, err, "Failed to update field")
		return
	}

	response.Success(w, http.StatusOK, "Field updated successfully", field)
}

// DeleteField removes a field
// @Summary Delete field
// @Tags Module
// @Security BearerAuth
// @Produce json
// @Param id path string true "Module ID"
// @Param fieldId path string true "Field ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /modules/{id}/fields/{fieldId} [delete]
func (h *ModuleHandler) DeleteField(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}
	moduleID, ok := pathUUID(w, r, "id", "Invalid module ID")
	if !ok {
		return
	}
	fieldID, ok := pathUUID(w, r, "fieldId", "Invalid field ID")
	if !ok {
		return
	}

	if err := h.moduleUsecase.DeleteField(r.Context(), sess, moduleID, fieldID); err != nil {
		writeModuleError(w, err, "Failed to delete field")
		return
	}

	response.Success(w, http.StatusOK, "Field deleted successfully", nil)
}

// GetFieldTypes returns the closed field type catalog grouped by category
// @Summary Field type catalog
// @Tags Module
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.Response
// @Router /modules/field-types [get]
func (h *ModuleHandler) GetFieldTypes(w http.ResponseWriter, r *http.Request) {
	response.Success(w, http.StatusOK, "Field types retrieved successfully", h.moduleUsecase.GetFieldTypes(r.Context()))
}

func writeModuleError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, usecase.ErrForbidden):
		response.Forbidden(w, "You don't have access to this module")
	case errors.Is(err, usecase.ErrModuleNotFound), errors.Is(err, usecase.ErrFieldNotFound):
		response.NotFound(w, err.Error())
	case errors.Is(err, usecase.ErrFieldNameExists):
		response.Conflict(w, err.Error())
	case errors.Is(err, usecase.ErrOptionsRequired),
		errors.Is(err, usecase.ErrUnknownRole),
		errors.Is(err, usecase.ErrInvalidFieldType),
		errors.Is(err, usecase.ErrInvalidModuleState):
		response.Error(w, http.StatusBadRequest, err.Error(), nil)
	default:
		response.InternalServerError(w, fallback)
	}
}
