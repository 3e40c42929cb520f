// Package modulebuilder edits the sections and fields of a module locally and
// saves them in one pass.
package modulebuilder

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"csystem-sip/internal/delivery/dto"
	"csystem-sip/internal/domain/entity"
	"csystem-sip/pkg/sipclient"

	"github.com/google/uuid"
)

// provisional ids mark fields the server has not seen yet
const provisionalPrefix = "tmp-"

var (
	ErrBusy            = errors.New("module is already being saved")
	ErrSectionRequired = errors.New("section name is required")
	ErrFieldNotFound   = errors.New("field not found")
	ErrFieldNameExists = errors.New("field name already used in this module")
	ErrNoOptions       = errors.New("field type has no options")
	ErrOptionInvalid   = errors.New("option label and value are required")
	ErrOptionExists    = errors.New("option value already listed")
	ErrEditorClosed    = errors.New("options editor is closed")
)

type Service interface {
	GetModule(ctx context.Context, creds sipclient.Credentials, moduleID uuid.UUID) (*dto.ModuleResponse, error)
	CreateSection(ctx context.Context, creds sipclient.Credentials, moduleID uuid.UUID, name string) (*dto.SectionResponse, error)
	CreateField(ctx context.Context, creds sipclient.Credentials, moduleID uuid.UUID, req *dto.FieldRequest) (*dto.FieldResponse, error)
	UpdateField(ctx context.Context, creds sipclient.Credentials, moduleID, fieldID uuid.UUID, req *dto.FieldRequest) (*dto.FieldResponse, error)
	DeleteField(ctx context.Context, creds sipclient.Credentials, moduleID, fieldID uuid.UUID) error
}

// Field is one field definition in the editor
type Field struct {
	ID   string
	Type entity.FieldType
	Def  dto.FieldRequest
}

// Provisional reports whether the field exists only in the editor
func (f Field) Provisional() bool {
	return strings.HasPrefix(f.ID, provisionalPrefix)
}

type Section struct {
	ID     *uuid.UUID
	Name   string
	Fields []Field
}

type Editor struct {
	service  Service
	creds    sipclient.Credentials
	moduleID uuid.UUID

	module   *dto.ModuleResponse
	sections []*section
	seq      int
	saving   bool
	banner   string
}

type section struct {
	id     *uuid.UUID
	name   string
	fields []*Field
}

func New(service Service, creds sipclient.Credentials, moduleID uuid.UUID) *Editor {
	return &Editor{
		service:  service,
		creds:    creds,
		moduleID: moduleID,
	}
}

// Load replaces the local state with the stored module
func (e *Editor) Load(ctx context.Context) error {
	module, err := e.service.GetModule(ctx, e.creds, e.moduleID)
	if err != nil {
		e.banner = "Failed to load module"
		return err
	}

	sections := make([]*section, 0, len(module.Sections))
	for _, s := range module.Sections {
		id := s.ID
		sec := &section{id: &id, name: s.Name}
		for _, f := range s.Fields {
			sec.fields = append(sec.fields, fieldFromResponse(s.Name, f))
		}
		sections = append(sections, sec)
	}

	e.module = module
	e.sections = sections
	e.banner = ""
	return nil
}

// Module is the module as last loaded
func (e *Editor) Module() *dto.ModuleResponse {
	return e.module
}

func (e *Editor) Saving() bool {
	return e.saving
}

func (e *Editor) Banner() string {
	return e.banner
}

// Sections returns a snapshot of the local state
func (e *Editor) Sections() []Section {
	out := make([]Section, 0, len(e.sections))
	for _, s := range e.sections {
		snap := Section{ID: s.id, Name: s.name, Fields: make([]Field, 0, len(s.fields))}
		for _, f := range s.fields {
			snap.Fields = append(snap.Fields, *f)
		}
		out = append(out, snap)
	}
	return out
}

// AddSection adds an empty section. An existing name is left as is.
func (e *Editor) AddSection(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrSectionRequired
	}
	e.section(name)
	return nil
}

// AddField adds a provisional field to the named section and returns its id
func (e *Editor) AddField(sectionName string, def dto.FieldRequest) (string, error) {
	sectionName = strings.TrimSpace(sectionName)
	if sectionName == "" {
		return "", ErrSectionRequired
	}
	ft, err := entity.ParseFieldType(def.FieldType)
	if err != nil {
		return "", err
	}
	def.FieldName = strings.TrimSpace(def.FieldName)
	if e.nameTaken(def.FieldName, "") {
		return "", fmt.Errorf("%w: %s", ErrFieldNameExists, def.FieldName)
	}

	e.seq++
	def.SectionName = sectionName
	def.Options = cloneOptions(def.Options)
	f := &Field{
		ID:   fmt.Sprintf("%s%d", provisionalPrefix, e.seq),
		Type: ft,
		Def:  def,
	}
	sec := e.section(sectionName)
	sec.fields = append(sec.fields, f)
	return f.ID, nil
}

// UpdateField replaces a field definition locally. Nothing is sent until SaveAll.
func (e *Editor) UpdateField(id string, def dto.FieldRequest) error {
	sec, i := e.find(id)
	if sec == nil {
		return ErrFieldNotFound
	}
	ft, err := entity.ParseFieldType(def.FieldType)
	if err != nil {
		return err
	}
	def.FieldName = strings.TrimSpace(def.FieldName)
	if e.nameTaken(def.FieldName, id) {
		return fmt.Errorf("%w: %s", ErrFieldNameExists, def.FieldName)
	}

	f := sec.fields[i]
	def.SectionName = sec.name
	def.Options = cloneOptions(def.Options)
	f.Type = ft
	f.Def = def
	return nil
}

func (e *Editor) Field(id string) (Field, bool) {
	sec, i := e.find(id)
	if sec == nil {
		return Field{}, false
	}
	return *sec.fields[i], true
}

// DeleteField removes a field. Provisional fields are dropped locally; stored
// fields are deleted on the server first.
func (e *Editor) DeleteField(ctx context.Context, id string) error {
	sec, i := e.find(id)
	if sec == nil {
		return ErrFieldNotFound
	}

	if !sec.fields[i].Provisional() {
		fieldID, err := uuid.Parse(id)
		if err != nil {
			return fmt.Errorf("%w: %s", ErrFieldNotFound, id)
		}
		if err := e.service.DeleteField(ctx, e.creds, e.moduleID, fieldID); err != nil {
			e.banner = "Failed to delete field"
			return err
		}
		// the slice may have moved while the request was out
		if sec, i = e.find(id); sec == nil {
			return nil
		}
	}

	sec.fields = append(sec.fields[:i], sec.fields[i+1:]...)
	return nil
}

// SaveAll sends every section and field, creating provisional ones and
// updating the rest, then reloads the module. It stops at the first failure;
// fields saved before it keep their server ids.
func (e *Editor) SaveAll(ctx context.Context) error {
	if e.saving {
		return ErrBusy
	}
	e.saving = true
	defer func() { e.saving = false }()

	for _, sec := range e.sections {
		if sec.id == nil {
			res, err := e.service.CreateSection(ctx, e.creds, e.moduleID, sec.name)
			if err != nil {
				e.banner = "Failed to save module"
				return fmt.Errorf("save section %q: %w", sec.name, err)
			}
			id := res.ID
			sec.id = &id
		}

		for pos, f := range sec.fields {
			def := f.Def
			def.SectionName = sec.name
			position := pos
			def.Position = &position

			if err := e.saveField(ctx, f, &def); err != nil {
				e.banner = "Failed to save module"
				return fmt.Errorf("save field %q: %w", def.FieldName, err)
			}
		}
	}

	// the stored module wins over the local copy
	if err := e.Load(ctx); err != nil {
		e.banner = "Saved, but failed to reload module"
	}
	return nil
}

func (e *Editor) saveField(ctx context.Context, f *Field, def *dto.FieldRequest) error {
	if f.Provisional() {
		res, err := e.service.CreateField(ctx, e.creds, e.moduleID, def)
		if err != nil {
			return err
		}
		f.ID = res.ID.String()
		return nil
	}

	fieldID, err := uuid.Parse(f.ID)
	if err != nil {
		return err
	}
	_, err = e.service.UpdateField(ctx, e.creds, e.moduleID, fieldID, def)
	return err
}

// EditOptions opens a staging buffer over the options of a selection field
func (e *Editor) EditOptions(id string) (*OptionsEditor, error) {
	sec, i := e.find(id)
	if sec == nil {
		return nil, ErrFieldNotFound
	}
	f := sec.fields[i]
	if !f.Type.RequiresOptions() {
		return nil, fmt.Errorf("%w: %s", ErrNoOptions, f.Type)
	}
	return &OptionsEditor{field: f, buffer: cloneOptions(f.Def.Options)}, nil
}

func (e *Editor) section(name string) *section {
	for _, s := range e.sections {
		if s.name == name {
			return s
		}
	}
	s := &section{name: name}
	e.sections = append(e.sections, s)
	return s
}

func (e *Editor) find(id string) (*section, int) {
	for _, s := range e.sections {
		for i, f := range s.fields {
			if f.ID == id {
				return s, i
			}
		}
	}
	return nil, -1
}

func (e *Editor) nameTaken(name, exceptID string) bool {
	for _, s := range e.sections {
		for _, f := range s.fields {
			if f.ID != exceptID && f.Def.FieldName == name {
				return true
			}
		}
	}
	return false
}

func fieldFromResponse(sectionName string, f dto.FieldResponse) *Field {
	position := f.Position
	def := dto.FieldRequest{
		SectionName:  sectionName,
		FieldName:    f.FieldName,
		FieldType:    f.FieldType,
		Label:        f.Label,
		Placeholder:  f.Placeholder,
		IsRequired:   f.IsRequired,
		IsScored:     f.IsScored,
		MaxScore:     f.MaxScore,
		FeedbackGood: f.FeedbackGood,
		FeedbackBad:  f.FeedbackBad,
		HelpText:     f.HelpText,
		Position:     &position,
	}
	for _, o := range f.Options {
		def.Options = append(def.Options, dto.FieldOptionRequest{Label: o.Label, Value: o.Value})
	}
	return &Field{
		ID:   f.ID.String(),
		Type: entity.FieldType(f.FieldType),
		Def:  def,
	}
}

func cloneOptions(in []dto.FieldOptionRequest) []dto.FieldOptionRequest {
	if in == nil {
		return nil
	}
	return append([]dto.FieldOptionRequest(nil), in...)
}
