// Package rules holds the role and age-bracket aware profile validation engine.
// Everything here is pure: callers pass the form values and the current date, and
// get back a field -> message map. An empty map means the profile is valid.
package rules

import (
	"regexp"
	"sort"
	"strings"
	"time"

	"csystem-sip/internal/domain/entity"
)

// Two distinct minor thresholds. The root identity uses 17 for the NIK requirement,
// the athlete section uses 18 for the guardian requirement.
const (
	RootIdentityMinorAgeThreshold    = 17
	AthleteGuardianMinorAgeThreshold = 18
)

const DateLayout = "2006-01-02"

// Field keys used in error maps
const (
	FieldName        = "name"
	FieldWhatsapp    = "whatsapp"
	FieldNIK         = "nik"
	FieldProvinceID  = "province_id"
	FieldCityID      = "city_id"
	FieldDateOfBirth = "date_of_birth"
	FieldGender      = "gender"
	FieldParentName  = "parent_name"
	FieldParentPhone = "parent_phone"
	FieldNISN        = "nisn"
	FieldHotline     = "hotline"
	FieldNPSN        = "npsn"
)

var (
	whatsappPattern = regexp.MustCompile(`^(\+62|62|0)[0-9]{9,13}$`)
	nikPattern      = regexp.MustCompile(`^[0-9]{16}$`)
	nisnPattern     = regexp.MustCompile(`^[0-9]{10}$`)
	npsnPattern     = regexp.MustCompile(`^[0-9]{8}$`)
	phoneSeparators = strings.NewReplacer(" ", "", "-", "", ".", "")
)

// FieldErrors maps a field key to a human readable message
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Valid reports whether there are no errors
func (e FieldErrors) Valid() bool {
	return len(e) == 0
}

// AthleteSection carries the athlete extension values of a profile form
type AthleteSection struct {
	Division    string `json:"division"`
	SchoolID    string `json:"school_id"`
	NISN        string `json:"nisn"`
	ParentName  string `json:"parent_name"`
	ParentPhone string `json:"parent_phone"`
}

// ClubSection carries the club extension values of a profile form
type ClubSection struct {
	Address         string `json:"address"`
	Hotline         string `json:"hotline"`
	IsPerpaniMember bool   `json:"is_perpani_member"`
}

// SchoolSection carries the school extension values of a profile form
type SchoolSection struct {
	NPSN          string `json:"npsn"`
	Address       string `json:"address"`
	PrincipalName string `json:"principal_name"`
}

// CoachSection carries the coach extension values of a profile form
type CoachSection struct {
	CertificationLevel string `json:"certification_level"`
	ClubID             string `json:"club_id"`
}

// JudgeSection carries the judge extension values of a profile form
type JudgeSection struct {
	LicenseNumber string `json:"license_number"`
	LicenseLevel  string `json:"license_level"`
}

// ProfileInput is the candidate state of a profile form.
type ProfileInput struct {
	Role        string `json:"-"`
	Name        string `json:"name"`
	Phone       string `json:"phone"`
	Whatsapp    string `json:"whatsapp"`
	NIK         string `json:"nik"`
	DateOfBirth string `json:"date_of_birth"`
	Gender      string `json:"gender"`
	ProvinceID  string `json:"province_id"`
	CityID      string `json:"city_id"`
	IsStudent   bool   `json:"is_student"`
	Occupation  string `json:"occupation"`

	Athlete *AthleteSection `json:"athlete,omitempty"`
	Club    *ClubSection    `json:"club,omitempty"`
	School  *SchoolSection  `json:"school,omitempty"`
	Coach   *CoachSection   `json:"coach,omitempty"`
	Judge   *JudgeSection   `json:"judge,omitempty"`
}

// CalendarAge returns the age in whole years on the calendar date of today.
func CalendarAge(dob, today time.Time) int {
	age := today.Year() - dob.Year()
	if today.Month() < dob.Month() || (today.Month() == dob.Month() && today.Day() < dob.Day()) {
		age--
	}
	return age
}

// IsRootIdentityMinor applies the NIK threshold (strictly below 17)
func IsRootIdentityMinor(age int) bool {
	return age < RootIdentityMinorAgeThreshold
}

// IsAthleteGuardianMinor applies the guardian threshold (strictly below 18)
func IsAthleteGuardianMinor(age int) bool {
	return age < AthleteGuardianMinorAgeThreshold
}

// NormalizePhone strips common separators from a phone number
func NormalizePhone(s string) string {
	return phoneSeparators.Replace(strings.TrimSpace(s))
}

// IsValidWhatsapp reports whether s is an Indonesian mobile number
func IsValidWhatsapp(s string) bool {
	return whatsappPattern.MatchString(NormalizePhone(s))
}

// IsValidNIK reports whether s is exactly 16 digits
func IsValidNIK(s string) bool {
	return nikPattern.MatchString(s)
}

// ParseDate parses a YYYY-MM-DD date, returning ok=false when blank or malformed
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// AgeOf returns the calendar age for a form date of birth, ok=false when unknown
func AgeOf(dateOfBirth string, today time.Time) (int, bool) {
	dob, ok := ParseDate(dateOfBirth)
	if !ok {
		return 0, false
	}
	return CalendarAge(dob, today), true
}

// Validate computes every field error for the given input. It never fails; an
// empty result means the profile may be saved.
func Validate(in ProfileInput, today time.Time) FieldErrors {
	errs := FieldErrors{}
	age, ageKnown := AgeOf(in.DateOfBirth, today)

	validateRootIdentity(in, age, ageKnown, errs)

	switch in.Role {
	case entity.RoleAthlete:
		validateAthlete(in.Athlete, age, ageKnown, errs)
	case entity.RoleClub:
		if in.Club != nil && blankToEmpty(in.Club.Hotline) != "" && !IsValidWhatsapp(in.Club.Hotline) {
			errs[FieldHotline] = "Hotline must be a valid Indonesian phone number"
		}
	case entity.RoleSchool:
		if in.School != nil && blankToEmpty(in.School.NPSN) != "" && !npsnPattern.MatchString(strings.TrimSpace(in.School.NPSN)) {
			errs[FieldNPSN] = "NPSN must be exactly 8 digits"
		}
	}

	return errs
}

func validateRootIdentity(in ProfileInput, age int, ageKnown bool, errs FieldErrors) {
	if blankToEmpty(in.Name) == "" {
		errs[FieldName] = "Name is required"
	}

	switch {
	case blankToEmpty(in.Whatsapp) == "":
		errs[FieldWhatsapp] = "WhatsApp number is required"
	case !IsValidWhatsapp(in.Whatsapp):
		errs[FieldWhatsapp] = "WhatsApp number must start with +62, 62 or 0 followed by 9-13 digits"
	}

	nik := blankToEmpty(in.NIK)
	switch {
	case nik == "" && ageKnown && !IsRootIdentityMinor(age):
		errs[FieldNIK] = "NIK is required for members aged 17 and above"
	case nik != "" && !IsValidNIK(nik):
		errs[FieldNIK] = "NIK must be exactly 16 digits"
	}

	if blankToEmpty(in.ProvinceID) == "" {
		errs[FieldProvinceID] = "Province is required"
	}
	if blankToEmpty(in.CityID) == "" {
		errs[FieldCityID] = "City is required"
	}

	switch {
	case blankToEmpty(in.DateOfBirth) == "":
		errs[FieldDateOfBirth] = "Date of birth is required"
	case !ageKnown:
		errs[FieldDateOfBirth] = "Date of birth must use the YYYY-MM-DD format"
	}

	switch blankToEmpty(in.Gender) {
	case "":
		errs[FieldGender] = "Gender is required"
	case string(entity.GenderMale), string(entity.GenderFemale):
	default:
		errs[FieldGender] = "Gender must be MALE or FEMALE"
	}
}

func validateAthlete(a *AthleteSection, age int, ageKnown bool, errs FieldErrors) {
	section := AthleteSection{}
	if a != nil {
		section = *a
	}

	if ageKnown && IsAthleteGuardianMinor(age) {
		if len(blankToEmpty(section.ParentName)) == 0 {
			errs[FieldParentName] = "Parent/guardian name is required for athletes under 18"
		}
		switch {
		case blankToEmpty(section.ParentPhone) == "":
			errs[FieldParentPhone] = "Parent/guardian phone is required for athletes under 18"
		case !IsValidWhatsapp(section.ParentPhone):
			errs[FieldParentPhone] = "Parent/guardian phone must be a valid Indonesian mobile number"
		}
	} else if p := blankToEmpty(section.ParentPhone); p != "" && !IsValidWhatsapp(p) {
		errs[FieldParentPhone] = "Parent/guardian phone must be a valid Indonesian mobile number"
	}

	if n := blankToEmpty(section.NISN); n != "" && !nisnPattern.MatchString(n) {
		errs[FieldNISN] = "NISN must be exactly 10 digits"
	}
}

func blankToEmpty(s string) string {
	return strings.TrimSpace(s)
}

// Optional converts a form string into a stored value: blank becomes absent.
func Optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// Completeness is the derived completeness of a stored profile
type Completeness struct {
	Complete bool        `json:"complete"`
	Errors   FieldErrors `json:"errors,omitempty"`
}

// Evaluate runs the engine against a stored person record
func Evaluate(u *entity.User, today time.Time) Completeness {
	errs := Validate(InputFromUser(u), today)
	return Completeness{Complete: errs.Valid(), Errors: errs}
}

// InputFromUser projects a stored person (and its role extension) back into form values
func InputFromUser(u *entity.User) ProfileInput {
	in := ProfileInput{
		Name:       u.Name,
		Phone:      deref(u.Phone),
		Whatsapp:   deref(u.Whatsapp),
		NIK:        deref(u.NIK),
		ProvinceID: deref(u.ProvinceID),
		CityID:     deref(u.CityID),
		IsStudent:  u.IsStudent,
		Occupation: deref(u.Occupation),
	}
	if card, ok := entity.RoleByID(u.RoleID); ok {
		in.Role = card.Name
	}
	if u.DateOfBirth != nil {
		in.DateOfBirth = u.DateOfBirth.Format(DateLayout)
	}
	if u.Gender != nil {
		in.Gender = string(*u.Gender)
	}
	if a := u.Athlete; a != nil {
		in.Athlete = &AthleteSection{
			Division:    deref(a.Division),
			SchoolID:    deref(a.SchoolID),
			NISN:        deref(a.NISN),
			ParentName:  deref(a.ParentName),
			ParentPhone: deref(a.ParentPhone),
		}
	}
	if c := u.Club; c != nil {
		in.Club = &ClubSection{Address: deref(c.Address), Hotline: deref(c.Hotline), IsPerpaniMember: c.IsPerpaniMember}
	}
	if s := u.School; s != nil {
		in.School = &SchoolSection{NPSN: deref(s.NPSN), Address: deref(s.Address), PrincipalName: deref(s.PrincipalName)}
	}
	if c := u.Coach; c != nil {
		in.Coach = &CoachSection{CertificationLevel: deref(c.CertificationLevel), ClubID: deref(c.ClubID)}
	}
	if j := u.Judge; j != nil {
		in.Judge = &JudgeSection{LicenseNumber: deref(j.LicenseNumber), LicenseLevel: deref(j.LicenseLevel)}
	}
	return in
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
