package entity

import (
	"errors"
	"fmt"
)

// FieldType is the closed set of input kinds a module field may take
type FieldType string

// FieldCategory groups field types for the builder palette
type FieldCategory string

const (
	CategoryText     FieldCategory = "Text-based"
	CategoryNumeric  FieldCategory = "Numeric"
	CategorySelect   FieldCategory = "Selection"
	CategoryBoolean  FieldCategory = "Boolean"
	CategoryDateTime FieldCategory = "Date & Time"
	CategoryMedia    FieldCategory = "File & Media"
	CategorySpecial  FieldCategory = "Special/Advanced"
)

const (
	FieldText     FieldType = "text"
	FieldTextarea FieldType = "textarea"
	FieldEmail    FieldType = "email"
	FieldURL      FieldType = "url"
	FieldPhone    FieldType = "phone"
	FieldPassword FieldType = "password"
	FieldRichText FieldType = "richtext"

	FieldNumber     FieldType = "number"
	FieldDecimal    FieldType = "decimal"
	FieldCurrency   FieldType = "currency"
	FieldPercentage FieldType = "percentage"
	FieldRange      FieldType = "range"
	FieldRating     FieldType = "rating"

	FieldSelect       FieldType = "select"
	FieldMultiSelect  FieldType = "multiselect"
	FieldRadio        FieldType = "radio"
	FieldCheckbox     FieldType = "checkbox"
	FieldAutocomplete FieldType = "autocomplete"

	FieldBoolean FieldType = "boolean"
	FieldToggle  FieldType = "toggle"
	FieldYesNo   FieldType = "yes_no"

	FieldDate      FieldType = "date"
	FieldTime      FieldType = "time"
	FieldDateTime  FieldType = "datetime"
	FieldDateRange FieldType = "daterange"
	FieldMonth     FieldType = "month"
	FieldYear      FieldType = "year"

	FieldFile      FieldType = "file"
	FieldImage     FieldType = "image"
	FieldVideo     FieldType = "video"
	FieldAudio     FieldType = "audio"
	FieldSignature FieldType = "signature"

	FieldColor      FieldType = "color"
	FieldLocation   FieldType = "location"
	FieldScore      FieldType = "score"
	FieldCalculated FieldType = "calculated"
	FieldHidden     FieldType = "hidden"
)

// FieldTypeInfo describes a field type for builder guidance
type FieldTypeInfo struct {
	Type     FieldType     `json:"type"`
	Category FieldCategory `json:"category"`
	Label    string        `json:"label"`
	Example  string        `json:"example"`
}

var ErrUnknownFieldType = errors.New("unknown field type")

// FieldTypeCatalog is ordered by category, then by palette position.
var FieldTypeCatalog = []FieldTypeInfo{
	{FieldText, CategoryText, "Short Text", "Budi Santoso"},
	{FieldTextarea, CategoryText, "Long Text", "Catatan evaluasi latihan"},
	{FieldEmail, CategoryText, "Email", "atlet@perpani.or.id"},
	{FieldURL, CategoryText, "URL", "https://perpani.or.id"},
	{FieldPhone, CategoryText, "Phone", "081234567890"},
	{FieldPassword, CategoryText, "Password", "********"},
	{FieldRichText, CategoryText, "Rich Text", "<b>Bold</b> notes"},

	{FieldNumber, CategoryNumeric, "Number", "42"},
	{FieldDecimal, CategoryNumeric, "Decimal", "9.75"},
	{FieldCurrency, CategoryNumeric, "Currency", "Rp 150.000"},
	{FieldPercentage, CategoryNumeric, "Percentage", "85%"},
	{FieldRange, CategoryNumeric, "Slider", "0-100"},
	{FieldRating, CategoryNumeric, "Rating", "4 of 5"},

	{FieldSelect, CategorySelect, "Dropdown", "Recurve"},
	{FieldMultiSelect, CategorySelect, "Multi Select", "Recurve, Compound"},
	{FieldRadio, CategorySelect, "Radio", "Male"},
	{FieldCheckbox, CategorySelect, "Checkbox", "Open stance"},
	{FieldAutocomplete, CategorySelect, "Autocomplete", "Jawa Barat"},

	{FieldBoolean, CategoryBoolean, "Boolean", "true"},
	{FieldToggle, CategoryBoolean, "Toggle", "On"},
	{FieldYesNo, CategoryBoolean, "Yes / No", "Yes"},

	{FieldDate, CategoryDateTime, "Date", "2026-08-17"},
	{FieldTime, CategoryDateTime, "Time", "08:30"},
	{FieldDateTime, CategoryDateTime, "Date & Time", "2026-08-17 08:30"},
	{FieldDateRange, CategoryDateTime, "Date Range", "2026-08-17 - 2026-08-20"},
	{FieldMonth, CategoryDateTime, "Month", "2026-08"},
	{FieldYear, CategoryDateTime, "Year", "2026"},

	{FieldFile, CategoryMedia, "File Upload", "sertifikat.pdf"},
	{FieldImage, CategoryMedia, "Image Upload", "stance.jpg"},
	{FieldVideo, CategoryMedia, "Video Upload", "release.mp4"},
	{FieldAudio, CategoryMedia, "Audio Upload", "briefing.m4a"},
	{FieldSignature, CategoryMedia, "Signature", "(drawn signature)"},

	{FieldColor, CategorySpecial, "Color", "#B22222"},
	{FieldLocation, CategorySpecial, "Location", "-6.2, 106.8"},
	{FieldScore, CategorySpecial, "Score", "25 / 30"},
	{FieldCalculated, CategorySpecial, "Calculated", "sum(section)"},
	{FieldHidden, CategorySpecial, "Hidden", "module_version=3"},
}

var fieldTypeIndex = func() map[FieldType]FieldTypeInfo {
	idx := make(map[FieldType]FieldTypeInfo, len(FieldTypeCatalog))
	for _, info := range FieldTypeCatalog {
		idx[info.Type] = info
	}
	return idx
}()

// ParseFieldType translates a stored or submitted string into a catalog type,
// rejecting anything outside the catalog.
func ParseFieldType(s string) (FieldType, error) {
	ft := FieldType(s)
	if _, ok := fieldTypeIndex[ft]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownFieldType, s)
	}
	return ft, nil
}

// Info returns the catalog entry of a known type
func (t FieldType) Info() (FieldTypeInfo, bool) {
	info, ok := fieldTypeIndex[t]
	return info, ok
}

// RequiresOptions reports whether the type needs a non-empty options list
func (t FieldType) RequiresOptions() bool {
	switch t {
	case FieldSelect, FieldMultiSelect, FieldRadio, FieldCheckbox, FieldAutocomplete:
		return true
	}
	return false
}
