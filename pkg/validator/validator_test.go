package validator

import "testing"

type signupSample struct {
	Name      string `json:"name" validate:"required"`
	Whatsapp  string `json:"whatsapp" validate:"required,wa_phone"`
	NIK       string `json:"nik" validate:"omitempty,nik"`
	FieldType string `json:"field_type" validate:"required,field_type"`
}

func TestCustomTags(t *testing.T) {
	v := NewValidator()

	tests := []struct {
		name      string
		sample    signupSample
		wantField string
	}{
		{"valid", signupSample{Name: "Budi", Whatsapp: "081234567890", FieldType: "checkbox"}, ""},
		{"bad whatsapp", signupSample{Name: "Budi", Whatsapp: "12345", FieldType: "text"}, "whatsapp"},
		{"bad nik", signupSample{Name: "Budi", Whatsapp: "081234567890", NIK: "123", FieldType: "text"}, "nik"},
		{"unknown field type", signupSample{Name: "Budi", Whatsapp: "081234567890", FieldType: "spreadsheet"}, "field_type"},
		{"missing name", signupSample{Whatsapp: "081234567890", FieldType: "text"}, "name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(&tt.sample)
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v", err)
				}
				return
			}
			errs := v.FormatValidationErrors(err)
			if _, ok := errs[tt.wantField]; !ok {
				t.Errorf("expected error on %s, got %v", tt.wantField, errs)
			}
		})
	}
}
