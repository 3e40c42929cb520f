package converter

import (
	"bytes"

	"csystem-sip/internal/delivery/dto"
	"csystem-sip/internal/domain/entity"

	"github.com/yuin/goldmark"
)

var markdown = goldmark.New()

// RenderMarkdown converts a module description to HTML. Raw HTML in the source is
// dropped by the default renderer.
func RenderMarkdown(src string) string {
	if src == "" {
		return ""
	}
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(src), &buf); err != nil {
		return ""
	}
	return buf.String()
}

// ModuleToResponse converts a Module entity to ModuleResponse DTO, including
// sections and fields when they are loaded
func ModuleToResponse(m *entity.Module) *dto.ModuleResponse {
	if m == nil {
		return nil
	}

	roles := m.AllowedRoles.Data()
	if roles == nil {
		roles = []string{}
	}

	response := &dto.ModuleResponse{
		ID:              m.ID,
		Name:            m.Name,
		Description:     m.Description,
		DescriptionHTML: RenderMarkdown(m.Description),
		Icon:            m.Icon,
		Status:          string(m.Status),
		AllowedRoles:    roles,
		MenuCategory:    m.MenuCategory,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}

	for _, s := range m.Sections {
		section := dto.SectionResponse{
			ID:       s.ID,
			Name:     s.Name,
			Position: s.Position,
			Fields:   make([]dto.FieldResponse, 0, len(s.Fields)),
		}
		for i := range s.Fields {
			section.Fields = append(section.Fields, *FieldToResponse(&s.Fields[i]))
		}
		response.Sections = append(response.Sections, section)
	}

	return response
}

// ModulesToResponses converts modules without their section tree
func ModulesToResponses(modules []entity.Module) []dto.ModuleResponse {
	responses := make([]dto.ModuleResponse, len(modules))
	for i := range modules {
		responses[i] = *ModuleToResponse(&modules[i])
	}
	return responses
}

// FieldToResponse converts a ModuleField entity to FieldResponse DTO
func FieldToResponse(f *entity.ModuleField) *dto.FieldResponse {
	if f == nil {
		return nil
	}

	response := &dto.FieldResponse{
		ID:           f.ID,
		SectionID:    f.SectionID,
		FieldName:    f.FieldName,
		FieldType:    string(f.FieldType),
		Label:        f.Label,
		Placeholder:  f.Placeholder,
		IsRequired:   f.IsRequired,
		IsScored:     f.IsScored,
		MaxScore:     f.MaxScore,
		FeedbackGood: f.FeedbackGood,
		FeedbackBad:  f.FeedbackBad,
		HelpText:     f.HelpText,
		Options:      []dto.FieldOptionResponse{},
		Position:     f.Position,
	}
	if info, ok := f.FieldType.Info(); ok {
		response.Category = string(info.Category)
	}
	for _, o := range f.Options.Data() {
		response.Options = append(response.Options, dto.FieldOptionResponse{Label: o.Label, Value: o.Value})
	}

	return response
}

// FieldTypeCatalogToResponse groups the closed field-type catalog by category,
// keeping catalog order
func FieldTypeCatalogToResponse() *dto.FieldTypeCatalogResponse {
	response := &dto.FieldTypeCatalogResponse{}
	index := map[entity.FieldCategory]int{}

	for _, info := range entity.FieldTypeCatalog {
		i, ok := index[info.Category]
		if !ok {
			i = len(response.Categories)
			index[info.Category] = i
			response.Categories = append(response.Categories, dto.FieldTypeGroupResponse{Category: string(info.Category)})
		}
		response.Categories[i].Types = append(response.Categories[i].Types, info)
	}

	return response
}
