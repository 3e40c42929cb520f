package validator

import (
	"errors"
	"reflect"
	"strings"

	"csystem-sip/internal/domain/entity"
	"csystem-sip/internal/domain/rules"

	"github.com/go-playground/validator/v10"
)

type CustomValidator struct {
	validator *validator.Validate
}

func NewValidator() *CustomValidator {
	v := validator.New()

	// Report json names so error keys match request payloads
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	_ = v.RegisterValidation("wa_phone", func(fl validator.FieldLevel) bool {
		return rules.IsValidWhatsapp(fl.Field().String())
	})
	_ = v.RegisterValidation("nik", func(fl validator.FieldLevel) bool {
		return rules.IsValidNIK(fl.Field().String())
	})
	_ = v.RegisterValidation("field_type", func(fl validator.FieldLevel) bool {
		_, err := entity.ParseFieldType(fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("module_status", func(fl validator.FieldLevel) bool {
		return entity.ModuleStatus(fl.Field().String()).IsValid()
	})

	return &CustomValidator{
		validator: v,
	}
}

func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

func (cv *CustomValidator) FormatValidationErrors(err error) map[string]string {
	errs := make(map[string]string)

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		for _, e := range validationErrors {
			field := e.Field()
			switch e.Tag() {
			case "required":
				errs[field] = field + " is required"
			case "email":
				errs[field] = field + " must be a valid email address"
			case "min":
				errs[field] = field + " must be at least " + e.Param() + " characters"
			case "max":
				errs[field] = field + " must be at most " + e.Param() + " characters"
			case "gte":
				errs[field] = field + " must be greater than or equal to " + e.Param()
			case "lte":
				errs[field] = field + " must be less than or equal to " + e.Param()
			case "eqfield":
				errs[field] = field + " must match " + e.Param()
			case "wa_phone":
				errs[field] = field + " must be a valid Indonesian WhatsApp number"
			case "nik":
				errs[field] = field + " must be exactly 16 digits"
			case "field_type":
				errs[field] = field + " is not a supported field type"
			case "module_status":
				errs[field] = field + " must be DRAFT, ACTIVE or ARCHIVED"
			case "oneof":
				errs[field] = field + " must be one of " + e.Param()
			default:
				errs[field] = field + " is invalid"
			}
		}
	}

	return errs
}
