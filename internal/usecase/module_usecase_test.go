package usecase

import (
	"context"
	"errors"
	"testing"

	"csystem-sip/internal/delivery/dto"
	"csystem-sip/internal/domain/entity"
	"csystem-sip/internal/testutil"
)

func TestPostureCheckModuleRoundTrip(t *testing.T) {
	f := newFixture(t)
	uc := f.moduleUsecase()
	ctx := context.Background()
	admin := adminSession(t, f)

	module, err := uc.CreateModule(ctx, admin, &dto.CreateModuleRequest{
		Name:         "Posture Check",
		Description:  "Checks **stance** and draw",
		AllowedRoles: []string{"coach", "ATHLETE"},
	})
	if err != nil {
		t.Fatalf("CreateModule() error = %v", err)
	}
	if module.Status != string(entity.ModuleStatusDraft) {
		t.Errorf("Status = %s, want DRAFT", module.Status)
	}
	if module.DescriptionHTML != "<p>Checks <strong>stance</strong> and draw</p>\n" {
		t.Errorf("DescriptionHTML = %q", module.DescriptionHTML)
	}

	if _, err := uc.CreateSection(ctx, admin, module.ID, &dto.CreateSectionRequest{Name: "Stance"}); err != nil {
		t.Fatalf("CreateSection() error = %v", err)
	}

	_, err = uc.CreateField(ctx, admin, module.ID, &dto.FieldRequest{
		SectionName: "Stance",
		FieldName:   "foot_position",
		FieldType:   "checkbox",
		Label:       "Foot position",
		IsScored:    true,
		MaxScore:    withPtr(25),
		Options:     []dto.FieldOptionRequest{{Label: "Open", Value: "open"}, {Label: "Square", Value: "square"}},
	})
	if err != nil {
		t.Fatalf("CreateField() error = %v", err)
	}

	reloaded, err := uc.GetModule(ctx, admin, module.ID)
	if err != nil {
		t.Fatalf("GetModule() error = %v", err)
	}
	if len(reloaded.Sections) != 1 || reloaded.Sections[0].Name != "Stance" {
		t.Fatalf("unexpected sections %+v", reloaded.Sections)
	}
	fields := reloaded.Sections[0].Fields
	if len(fields) != 1 {
		t.Fatalf("Stance has %d fields, want 1", len(fields))
	}
	if fields[0].MaxScore == nil || *fields[0].MaxScore != 25 || fields[0].Category != string(entity.CategorySelect) {
		t.Errorf("unexpected field %+v", fields[0])
	}
	if len(fields[0].Options) != 2 || fields[0].Options[0].Value != "open" || fields[0].Options[1].Label != "Square" {
		t.Errorf("options not preserved: %+v", fields[0].Options)
	}
}

func TestCreateSectionIsIdempotent(t *testing.T) {
	f := newFixture(t)
	uc := f.moduleUsecase()
	ctx := context.Background()
	admin := adminSession(t, f)

	module, _ := uc.CreateModule(ctx, admin, &dto.CreateModuleRequest{Name: "Draw Cycle"})
	first, err := uc.CreateSection(ctx, admin, module.ID, &dto.CreateSectionRequest{Name: "Anchor"})
	if err != nil {
		t.Fatalf("CreateSection() error = %v", err)
	}
	second, err := uc.CreateSection(ctx, admin, module.ID, &dto.CreateSectionRequest{Name: " Anchor "})
	if err != nil {
		t.Fatalf("CreateSection() error = %v", err)
	}
	if first.ID != second.ID {
		t.Errorf("section created twice: %s, %s", first.ID, second.ID)
	}
}

func TestFieldRules(t *testing.T) {
	f := newFixture(t)
	uc := f.moduleUsecase()
	ctx := context.Background()
	admin := adminSession(t, f)
	module, _ := uc.CreateModule(ctx, admin, &dto.CreateModuleRequest{Name: "Stance Review"})

	stance := &dto.FieldRequest{SectionName: "Stance", FieldName: "stance", FieldType: "text", Label: "Stance", MaxScore: withPtr(10)}
	created, err := uc.CreateField(ctx, admin, module.ID, stance)
	if err != nil {
		t.Fatalf("CreateField() error = %v", err)
	}
	if created.MaxScore != nil {
		t.Errorf("MaxScore must be dropped for unscored fields, got %d", *created.MaxScore)
	}

	if _, err := uc.CreateField(ctx, admin, module.ID, &dto.FieldRequest{SectionName: "Other", FieldName: "stance", FieldType: "number", Label: "Again"}); !errors.Is(err, ErrFieldNameExists) {
		t.Errorf("duplicate fieldName error = %v, want ErrFieldNameExists", err)
	}
	if _, err := uc.CreateField(ctx, admin, module.ID, &dto.FieldRequest{SectionName: "Stance", FieldName: "grip", FieldType: "select", Label: "Grip"}); !errors.Is(err, ErrOptionsRequired) {
		t.Errorf("select without options error = %v, want ErrOptionsRequired", err)
	}
	if _, err := uc.CreateField(ctx, admin, module.ID, &dto.FieldRequest{SectionName: "Stance", FieldName: "grip", FieldType: "hologram", Label: "Grip"}); !errors.Is(err, ErrInvalidFieldType) {
		t.Errorf("unknown type error = %v, want ErrInvalidFieldType", err)
	}

	var count int64
	f.db.Model(&entity.ModuleField{}).Where("module_id = ? AND field_name = ?", module.ID, "stance").Count(&count)
	if count != 1 {
		t.Errorf("fields named stance = %d, want 1", count)
	}

	other, _ := uc.CreateField(ctx, admin, module.ID, &dto.FieldRequest{SectionName: "Stance", FieldName: "release", FieldType: "rating", Label: "Release"})
	if other.Position != 1 {
		t.Errorf("second field position = %d, want 1", other.Position)
	}

	rename := *stance
	rename.FieldName = "release"
	if _, err := uc.UpdateField(ctx, admin, module.ID, created.ID, &rename); !errors.Is(err, ErrFieldNameExists) {
		t.Errorf("rename into existing name error = %v, want ErrFieldNameExists", err)
	}

	moved := *stance
	moved.SectionName = "Follow Through"
	moved.IsScored = true
	updated, err := uc.UpdateField(ctx, admin, module.ID, created.ID, &moved)
	if err != nil {
		t.Fatalf("UpdateField() error = %v", err)
	}
	if updated.SectionID == created.SectionID || updated.MaxScore == nil || *updated.MaxScore != 10 {
		t.Errorf("unexpected updated field %+v", updated)
	}

	if err := uc.DeleteField(ctx, admin, module.ID, created.ID); err != nil {
		t.Fatalf("DeleteField() error = %v", err)
	}
	if err := uc.DeleteField(ctx, admin, module.ID, created.ID); !errors.Is(err, ErrFieldNotFound) {
		t.Errorf("second DeleteField() error = %v, want ErrFieldNotFound", err)
	}
}

func TestModuleVisibilityByRole(t *testing.T) {
	f := newFixture(t)
	uc := f.moduleUsecase()
	ctx := context.Background()
	admin := adminSession(t, f)
	coach := sessionOf(testutil.CreateUser(t, f.db, entity.RoleIDCoach, "Pelatih"))
	athlete := sessionOf(testutil.CreateUser(t, f.db, entity.RoleIDAthlete, "Atlet"))

	coachOnly, _ := uc.CreateModule(ctx, admin, &dto.CreateModuleRequest{Name: "Coach Review", AllowedRoles: []string{"COACH"}})
	open, _ := uc.CreateModule(ctx, admin, &dto.CreateModuleRequest{Name: "Open Survey"})
	draft, _ := uc.CreateModule(ctx, admin, &dto.CreateModuleRequest{Name: "Unreleased"})

	for _, m := range []*dto.ModuleResponse{coachOnly, open} {
		if _, err := uc.UpdateModule(ctx, admin, m.ID, &dto.UpdateModuleRequest{Name: m.Name, Status: "active", AllowedRoles: m.AllowedRoles}); err != nil {
			t.Fatalf("UpdateModule() error = %v", err)
		}
	}

	list, err := uc.ListModules(ctx, athlete, "")
	if err != nil {
		t.Fatalf("ListModules() error = %v", err)
	}
	if list.Total != 1 || list.Modules[0].ID != open.ID {
		t.Errorf("athlete sees %+v", list.Modules)
	}

	if _, err := uc.GetModule(ctx, athlete, coachOnly.ID); !errors.Is(err, ErrForbidden) {
		t.Errorf("athlete GetModule(coach only) error = %v, want ErrForbidden", err)
	}
	if _, err := uc.GetModule(ctx, coach, coachOnly.ID); err != nil {
		t.Errorf("coach GetModule() error = %v", err)
	}
	if _, err := uc.GetModule(ctx, coach, draft.ID); !errors.Is(err, ErrModuleNotFound) {
		t.Errorf("coach GetModule(draft) error = %v, want ErrModuleNotFound", err)
	}

	all, _ := uc.ListModules(ctx, admin, "")
	if all.Total != 3 {
		t.Errorf("admin sees %d modules, want 3", all.Total)
	}

	if _, err := uc.CreateModule(ctx, admin, &dto.CreateModuleRequest{Name: "Bad", AllowedRoles: []string{"ARCHER"}}); !errors.Is(err, ErrUnknownRole) {
		t.Errorf("unknown role error = %v, want ErrUnknownRole", err)
	}
}

func TestDeleteModuleRemovesTree(t *testing.T) {
	f := newFixture(t)
	uc := f.moduleUsecase()
	ctx := context.Background()
	admin := adminSession(t, f)

	module, _ := uc.CreateModule(ctx, admin, &dto.CreateModuleRequest{Name: "Temporary"})
	if _, err := uc.CreateField(ctx, admin, module.ID, &dto.FieldRequest{SectionName: "A", FieldName: "a", FieldType: "text", Label: "A"}); err != nil {
		t.Fatalf("CreateField() error = %v", err)
	}

	if err := uc.DeleteModule(ctx, admin, module.ID); err != nil {
		t.Fatalf("DeleteModule() error = %v", err)
	}
	if _, err := uc.GetModule(ctx, admin, module.ID); !errors.Is(err, ErrModuleNotFound) {
		t.Errorf("GetModule() after delete error = %v", err)
	}
	var fields int64
	f.db.Model(&entity.ModuleField{}).Count(&fields)
	if fields != 0 {
		t.Errorf("%d fields left behind", fields)
	}
	if f.countAudit(t, entity.AuditActionModuleDelete) != 1 {
		t.Error("expected one module delete audit entry")
	}
}

func TestGetFieldTypesGroupsSevenCategories(t *testing.T) {
	catalog := newFixture(t).moduleUsecase().GetFieldTypes(context.Background())
	if len(catalog.Categories) != 7 {
		t.Fatalf("categories = %d, want 7", len(catalog.Categories))
	}
	total := 0
	for _, c := range catalog.Categories {
		total += len(c.Types)
	}
	if total != len(entity.FieldTypeCatalog) {
		t.Errorf("catalog entries = %d, want %d", total, len(entity.FieldTypeCatalog))
	}
}
