package usecase

import (
	"context"
	"errors"
	"strings"

	"csystem-sip/internal/converter"
	"csystem-sip/internal/delivery/dto"
	"csystem-sip/internal/domain/entity"
	"csystem-sip/internal/domain/repository"
	"csystem-sip/internal/service"
	"csystem-sip/internal/session"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrModuleNotFound     = errors.New("module not found")
	ErrFieldNotFound      = errors.New("field not found")
	ErrFieldNameExists    = errors.New("field name already exists in this module")
	ErrOptionsRequired    = errors.New("selection fields need at least one option")
	ErrUnknownRole        = errors.New("unknown role in allowed roles")
	ErrInvalidFieldType   = errors.New("field type is not in the catalog")
	ErrInvalidModuleState = errors.New("unknown module status")
)

type ModuleUsecase interface {
	ListModules(ctx context.Context, sess session.Session, status string) (*dto.ModuleListResponse, error)
	GetModule(ctx context.Context, sess session.Session, id uuid.UUID) (*dto.ModuleResponse, error)
	CreateModule(ctx context.Context, sess session.Session, req *dto.CreateModuleRequest) (*dto.ModuleResponse, error)
	UpdateModule(ctx context.Context, sess session.Session, id uuid.UUID, req *dto.UpdateModuleRequest) (*dto.ModuleResponse, error)
	DeleteModule(ctx context.Context, sess session.Session, id uuid.UUID) error
	CreateSection(ctx context.Context, sess session.Session, moduleID uuid.UUID, req *dto.CreateSectionRequest) (*dto.SectionResponse, error)
	CreateField(ctx context.Context, sess session.Session, moduleID uuid.UUID, req *dto.FieldRequest) (*dto.FieldResponse, error)
	UpdateField(ctx context.Context, sess session.Session, moduleID, fieldID uuid.UUID, req *dto.FieldRequest) (*dto.FieldResponse, error)
	DeleteField(ctx context.Context, sess session.Session, moduleID, fieldID uuid.UUID) error
	GetFieldTypes(ctx context.Context) *dto.FieldTypeCatalogResponse
}

type moduleUsecase struct {
	db           *gorm.DB
	log          *logrus.Logger
	moduleRepo   repository.ModuleRepository
	auditService service.AuditService
}

func NewModuleUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	moduleRepo repository.ModuleRepository,
	auditService service.AuditService,
) ModuleUsecase {
	return &moduleUsecase{
		db:           db,
		log:          log,
		moduleRepo:   moduleRepo,
		auditService: auditService,
	}
}

// ListModules returns every module to admins. Other roles only see ACTIVE modules
// that allow their role.
func (u *moduleUsecase) ListModules(ctx context.Context, sess session.Session, status string) (*dto.ModuleListResponse, error) {
	filter := entity.ModuleStatus(strings.ToUpper(status))
	if filter != "" && !filter.IsValid() {
		return nil, ErrInvalidModuleState
	}
	if !sess.IsAdmin() {
		filter = entity.ModuleStatusActive
	}

	modules, err := u.moduleRepo.FindAll(ctx, u.db, filter)
	if err != nil {
		u.log.Warnf("Failed to find modules: %+v", err)
		return nil, err
	}

	if !sess.IsAdmin() {
		roleName := roleNameOf(sess)
		visible := modules[:0]
		for _, m := range modules {
			if m.AllowsRole(roleName) {
				visible = append(visible, m)
			}
		}
		modules = visible
	}

	return &dto.ModuleListResponse{
		Modules: converter.ModulesToResponses(modules),
		Total:   len(modules),
	}, nil
}

func (u *moduleUsecase) GetModule(ctx context.Context, sess session.Session, id uuid.UUID) (*dto.ModuleResponse, error) {
	module, err := u.moduleRepo.FindByID(ctx, u.db, id)
	if err != nil {
		u.log.Warnf("Failed to find module by ID: %+v", err)
		return nil, err
	}
	if module == nil {
		return nil, ErrModuleNotFound
	}

	if !sess.IsAdmin() {
		if module.Status != entity.ModuleStatusActive {
			return nil, ErrModuleNotFound
		}
		if !module.AllowsRole(roleNameOf(sess)) {
			return nil, ErrForbidden
		}
	}

	return converter.ModuleToResponse(module), nil
}

// CreateModule stores a new module in DRAFT status
func (u *moduleUsecase) CreateModule(ctx context.Context, sess session.Session, req *dto.CreateModuleRequest) (*dto.ModuleResponse, error) {
	roles, err := normalizeRoles(req.AllowedRoles)
	if err != nil {
		return nil, err
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	module := &entity.Module{
		Name:         strings.TrimSpace(req.Name),
		Description:  req.Description,
		Icon:         req.Icon,
		Status:       entity.ModuleStatusDraft,
		AllowedRoles: datatypes.NewJSONType(roles),
		MenuCategory: req.MenuCategory,
		CreatedBy:    &sess.UserID,
	}

	if err := u.moduleRepo.Create(ctx, tx, module); err != nil {
		u.log.Warnf("Failed to create module: %+v", err)
		return nil, err
	}

	if err := u.auditService.LogCreate(ctx, tx, &sess.UserID, entity.AuditActionModuleCreate, "module", module.ID.String(), module); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	u.log.WithFields(logrus.Fields{
		"module_id": module.ID,
		"name":      module.Name,
	}).Info("Module created")

	return converter.ModuleToResponse(module), nil
}

// UpdateModule replaces the module header. Any status may be set directly.
func (u *moduleUsecase) UpdateModule(ctx context.Context, sess session.Session, id uuid.UUID, req *dto.UpdateModuleRequest) (*dto.ModuleResponse, error) {
	roles, err := normalizeRoles(req.AllowedRoles)
	if err != nil {
		return nil, err
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	module, err := u.moduleRepo.FindByID(ctx, tx, id)
	if err != nil {
		u.log.Warnf("Failed to find module by ID: %+v", err)
		return nil, err
	}
	if module == nil {
		return nil, ErrModuleNotFound
	}

	before := converter.ModuleToResponse(module)

	module.Name = strings.TrimSpace(req.Name)
	module.Description = req.Description
	module.Icon = req.Icon
	module.AllowedRoles = datatypes.NewJSONType(roles)
	module.MenuCategory = req.MenuCategory
	if req.Status != "" {
		status := entity.ModuleStatus(strings.ToUpper(req.Status))
		if !status.IsValid() {
			return nil, ErrInvalidModuleState
		}
		module.Status = status
	}

	if err := u.moduleRepo.Update(ctx, tx, module); err != nil {
		u.log.Warnf("Failed to update module: %+v", err)
		return nil, err
	}

	if err := u.auditService.LogUpdate(ctx, tx, &sess.UserID, entity.AuditActionModuleUpdate, "module", module.ID.String(), before, converter.ModuleToResponse(module)); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	return converter.ModuleToResponse(module), nil
}

func (u *moduleUsecase) DeleteModule(ctx context.Context, sess session.Session, id uuid.UUID) error {
	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	module, err := u.moduleRepo.FindByID(ctx, tx, id)
	if err != nil {
		u.log.Warnf("Failed to find module by ID: %+v", err)
		return err
	}
	if module == nil {
		return ErrModuleNotFound
	}

	if err := u.moduleRepo.Delete(ctx, tx, id); err != nil {
		u.log.Warnf("Failed to delete module: %+v", err)
		return err
	}

	if err := u.auditService.LogDelete(ctx, tx, &sess.UserID, entity.AuditActionModuleDelete, "module", id.String(), converter.ModuleToResponse(module)); err != nil {
		return err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return err
	}

	return nil
}

// CreateSection is idempotent by name: an existing section is returned as is.
func (u *moduleUsecase) CreateSection(ctx context.Context, sess session.Session, moduleID uuid.UUID, req *dto.CreateSectionRequest) (*dto.SectionResponse, error) {
	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	if err := u.requireModule(ctx, tx, moduleID); err != nil {
		return nil, err
	}

	section, err := u.sectionByName(ctx, tx, moduleID, req.Name)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	return &dto.SectionResponse{
		ID:       section.ID,
		Name:     section.Name,
		Position: section.Position,
		Fields:   []dto.FieldResponse{},
	}, nil
}

func (u *moduleUsecase) CreateField(ctx context.Context, sess session.Session, moduleID uuid.UUID, req *dto.FieldRequest) (*dto.FieldResponse, error) {
	fieldType, err := checkFieldRequest(req)
	if err != nil {
		return nil, err
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	if err := u.requireModule(ctx, tx, moduleID); err != nil {
		return nil, err
	}

	fieldName := strings.TrimSpace(req.FieldName)
	existing, err := u.moduleRepo.FindFieldByName(ctx, tx, moduleID, fieldName)
	if err != nil {
		u.log.Warnf("Failed to find field by name: %+v", err)
		return nil, err
	}
	if existing != nil {
		return nil, ErrFieldNameExists
	}

	section, err := u.sectionByName(ctx, tx, moduleID, req.SectionName)
	if err != nil {
		return nil, err
	}

	field := &entity.ModuleField{ModuleID: moduleID}
	if err := u.positionField(ctx, tx, field, section, req.Position); err != nil {
		return nil, err
	}
	applyFieldRequest(field, req, fieldName, fieldType)

	if err := u.moduleRepo.CreateField(ctx, tx, field); err != nil {
		if isDuplicateKeyError(err, "field_name") {
			return nil, ErrFieldNameExists
		}
		u.log.Warnf("Failed to create field: %+v", err)
		return nil, err
	}

	if err := u.auditService.LogCreate(ctx, tx, &sess.UserID, entity.AuditActionFieldCreate, "module_field", field.ID.String(), converter.FieldToResponse(field)); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	return converter.FieldToResponse(field), nil
}

// UpdateField replaces a persisted field. Renaming into another field's name is a
// conflict; a new section name moves the field.
func (u *moduleUsecase) UpdateField(ctx context.Context, sess session.Session, moduleID, fieldID uuid.UUID, req *dto.FieldRequest) (*dto.FieldResponse, error) {
	fieldType, err := checkFieldRequest(req)
	if err != nil {
		return nil, err
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	field, err := u.moduleRepo.FindFieldByID(ctx, tx, moduleID, fieldID)
	if err != nil {
		u.log.Warnf("Failed to find field by ID: %+v", err)
		return nil, err
	}
	if field == nil {
		return nil, ErrFieldNotFound
	}
	before := converter.FieldToResponse(field)

	fieldName := strings.TrimSpace(req.FieldName)
	if fieldName != field.FieldName {
		clash, err := u.moduleRepo.FindFieldByName(ctx, tx, moduleID, fieldName)
		if err != nil {
			u.log.Warnf("Failed to find field by name: %+v", err)
			return nil, err
		}
		if clash != nil {
			return nil, ErrFieldNameExists
		}
	}

	section, err := u.sectionByName(ctx, tx, moduleID, req.SectionName)
	if err != nil {
		return nil, err
	}
	if section.ID != field.SectionID || req.Position != nil {
		if err := u.positionField(ctx, tx, field, section, req.Position); err != nil {
			return nil, err
		}
	}
	applyFieldRequest(field, req, fieldName, fieldType)

	if err := u.moduleRepo.UpdateField(ctx, tx, field); err != nil {
		if isDuplicateKeyError(err, "field_name") {
			return nil, ErrFieldNameExists
		}
		u.log.Warnf("Failed to update field: %+v", err)
		return nil, err
	}

	if err := u.auditService.LogUpdate(ctx, tx, &sess.UserID, entity.AuditActionFieldUpdate, "module_field", field.ID.String(), before, converter.FieldToResponse(field)); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	return converter.FieldToResponse(field), nil
}

func (u *moduleUsecase) DeleteField(ctx context.Context, sess session.Session, moduleID, fieldID uuid.UUID) error {
	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	field, err := u.moduleRepo.FindFieldByID(ctx, tx, moduleID, fieldID)
	if err != nil {
		u.log.Warnf("Failed to find field by ID: %+v", err)
		return err
	}
	if field == nil {
		return ErrFieldNotFound
	}

	if _, err := u.moduleRepo.DeleteField(ctx, tx, field.ID); err != nil {
		u.log.Warnf("Failed to delete field: %+v", err)
		return err
	}

	if err := u.auditService.LogDelete(ctx, tx, &sess.UserID, entity.AuditActionFieldDelete, "module_field", field.ID.String(), converter.FieldToResponse(field)); err != nil {
		return err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return err
	}

	return nil
}

func (u *moduleUsecase) GetFieldTypes(ctx context.Context) *dto.FieldTypeCatalogResponse {
	return converter.FieldTypeCatalogToResponse()
}

func (u *moduleUsecase) requireModule(ctx context.Context, tx *gorm.DB, moduleID uuid.UUID) error {
	module, err := u.moduleRepo.FindByID(ctx, tx, moduleID)
	if err != nil {
		u.log.Warnf("Failed to find module by ID: %+v", err)
		return err
	}
	if module == nil {
		return ErrModuleNotFound
	}
	return nil
}

// sectionByName returns the named section, appending it to the module if missing
func (u *moduleUsecase) sectionByName(ctx context.Context, tx *gorm.DB, moduleID uuid.UUID, name string) (*entity.ModuleSection, error) {
	name = strings.TrimSpace(name)
	section, err := u.moduleRepo.FindSectionByName(ctx, tx, moduleID, name)
	if err != nil {
		u.log.Warnf("Failed to find section: %+v", err)
		return nil, err
	}
	if section != nil {
		return section, nil
	}

	count, err := u.moduleRepo.CountSections(ctx, tx, moduleID)
	if err != nil {
		u.log.Warnf("Failed to count sections: %+v", err)
		return nil, err
	}

	section = &entity.ModuleSection{
		ModuleID: moduleID,
		Name:     name,
		Position: int(count),
	}
	if err := u.moduleRepo.CreateSection(ctx, tx, section); err != nil {
		u.log.Warnf("Failed to create section: %+v", err)
		return nil, err
	}
	return section, nil
}

// positionField places the field in section, at the end unless a position is given
func (u *moduleUsecase) positionField(ctx context.Context, tx *gorm.DB, field *entity.ModuleField, section *entity.ModuleSection, position *int) error {
	field.SectionID = section.ID
	if position != nil {
		field.Position = *position
		return nil
	}

	count, err := u.moduleRepo.CountFieldsInSection(ctx, tx, section.ID)
	if err != nil {
		u.log.Warnf("Failed to count fields: %+v", err)
		return err
	}
	field.Position = int(count)
	return nil
}

// checkFieldRequest translates the field type through the closed catalog and
// enforces the options rule for selection types.
func checkFieldRequest(req *dto.FieldRequest) (entity.FieldType, error) {
	fieldType, err := entity.ParseFieldType(req.FieldType)
	if err != nil {
		return "", ErrInvalidFieldType
	}
	if fieldType.RequiresOptions() && len(req.Options) == 0 {
		return "", ErrOptionsRequired
	}
	return fieldType, nil
}

func applyFieldRequest(field *entity.ModuleField, req *dto.FieldRequest, fieldName string, fieldType entity.FieldType) {
	field.FieldName = fieldName
	field.FieldType = fieldType
	field.Label = req.Label
	field.Placeholder = req.Placeholder
	field.IsRequired = req.IsRequired
	field.IsScored = req.IsScored
	field.MaxScore = nil
	if req.IsScored {
		field.MaxScore = req.MaxScore
	}
	field.FeedbackGood = req.FeedbackGood
	field.FeedbackBad = req.FeedbackBad
	field.HelpText = req.HelpText

	var options []entity.FieldOption
	if fieldType.RequiresOptions() {
		options = make([]entity.FieldOption, len(req.Options))
		for i, o := range req.Options {
			options[i] = entity.FieldOption{Label: o.Label, Value: o.Value}
		}
	}
	field.Options = datatypes.NewJSONType(options)
}

// normalizeRoles upper-cases role names and rejects names outside the catalog
func normalizeRoles(names []string) ([]string, error) {
	roles := make([]string, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		name = strings.ToUpper(strings.TrimSpace(name))
		if _, ok := entity.RoleByName(name); !ok {
			return nil, ErrUnknownRole
		}
		if !seen[name] {
			seen[name] = true
			roles = append(roles, name)
		}
	}
	return roles, nil
}

func roleNameOf(sess session.Session) string {
	card, _ := entity.RoleByID(sess.RoleID)
	return card.Name
}
