// Package profileform holds the editable state of a profile form: the values,
// their computed errors and whether those errors are shown yet.
package profileform

import (
	"context"
	"errors"
	"strings"
	"time"

	"csystem-sip/internal/delivery/dto"
	"csystem-sip/internal/domain/rules"
	"csystem-sip/pkg/sipclient"

	"github.com/google/uuid"
)

var ErrBusy = errors.New("profile is already being saved")

const saveFailedMessage = "Failed to save profile, please try again"

type Service interface {
	GetProfile(ctx context.Context, creds sipclient.Credentials, userID *uuid.UUID) (*dto.ProfileResponse, error)
	UpdateProfile(ctx context.Context, creds sipclient.Credentials, userID *uuid.UUID, in *dto.UpdateProfileRequest) (*dto.ProfileResponse, error)
}

type Form struct {
	service Service
	creds   sipclient.Credentials
	target  *uuid.UUID
	now     func() time.Time

	// Values is bound to the inputs
	Values rules.ProfileInput

	profile      *dto.ProfileResponse
	showErrors   bool
	saving       bool
	serverErrors rules.FieldErrors
	banner       string
}

type Option func(*Form)

// ForPerson edits another person's profile, as an admin or guardian
func ForPerson(userID uuid.UUID) Option {
	return func(f *Form) {
		f.target = &userID
	}
}

func WithClock(now func() time.Time) Option {
	return func(f *Form) {
		f.now = now
	}
}

func New(service Service, creds sipclient.Credentials, opts ...Option) *Form {
	f := &Form{
		service: service,
		creds:   creds,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Load replaces the values with the stored profile
func (f *Form) Load(ctx context.Context) error {
	profile, err := f.service.GetProfile(ctx, f.creds, f.target)
	if err != nil {
		f.banner = "Failed to load profile"
		return err
	}
	f.reset(profile)
	return nil
}

// Profile is the last profile read from or written to the server
func (f *Form) Profile() *dto.ProfileResponse {
	return f.profile
}

// Errors is the current validity of the values, shown or not
func (f *Form) Errors() rules.FieldErrors {
	return rules.Validate(f.Values, f.now())
}

// VisibleErrors is what the form displays. It stays empty until the first
// save attempt.
func (f *Form) VisibleErrors() rules.FieldErrors {
	if !f.showErrors {
		return rules.FieldErrors{}
	}
	errs := f.Errors()
	for field, msg := range f.serverErrors {
		if _, ok := errs[field]; !ok {
			errs[field] = msg
		}
	}
	return errs
}

func (f *Form) ShowErrors() bool {
	return f.showErrors
}

func (f *Form) Saving() bool {
	return f.saving
}

// Banner is the last transport failure message
func (f *Form) Banner() string {
	return f.banner
}

// Submit saves the values when they are valid. Invalid values return the
// field errors without a request. On failure the values are left as typed.
func (f *Form) Submit(ctx context.Context) (*dto.ProfileResponse, error) {
	if f.saving {
		return nil, ErrBusy
	}

	f.showErrors = true
	f.serverErrors = nil
	if errs := f.Errors(); !errs.Valid() {
		return nil, errs
	}

	f.saving = true
	defer func() { f.saving = false }()

	payload := Normalize(f.Values)
	profile, err := f.service.UpdateProfile(ctx, f.creds, f.target, &payload)
	if err != nil {
		if apiErr, ok := sipclient.AsAPIError(err); ok && apiErr.IsValidation() {
			f.serverErrors = rules.FieldErrors(apiErr.Fields)
			return nil, f.serverErrors
		}
		f.banner = saveFailedMessage
		return nil, err
	}

	f.reset(profile)
	return profile, nil
}

func (f *Form) reset(profile *dto.ProfileResponse) {
	f.profile = profile
	f.Values = InputFromProfile(profile)
	f.showErrors = false
	f.serverErrors = nil
	f.banner = ""
}

// Normalize trims every value and drops role sections left entirely blank
func Normalize(in rules.ProfileInput) rules.ProfileInput {
	out := in
	out.Name = strings.TrimSpace(in.Name)
	out.Phone = rules.NormalizePhone(in.Phone)
	out.Whatsapp = rules.NormalizePhone(in.Whatsapp)
	out.NIK = strings.TrimSpace(in.NIK)
	out.DateOfBirth = strings.TrimSpace(in.DateOfBirth)
	out.Gender = strings.ToUpper(strings.TrimSpace(in.Gender))
	out.ProvinceID = strings.TrimSpace(in.ProvinceID)
	out.CityID = strings.TrimSpace(in.CityID)
	out.Occupation = strings.TrimSpace(in.Occupation)

	if in.Athlete != nil {
		a := rules.AthleteSection{
			Division:    strings.TrimSpace(in.Athlete.Division),
			SchoolID:    strings.TrimSpace(in.Athlete.SchoolID),
			NISN:        strings.TrimSpace(in.Athlete.NISN),
			ParentName:  strings.TrimSpace(in.Athlete.ParentName),
			ParentPhone: rules.NormalizePhone(in.Athlete.ParentPhone),
		}
		out.Athlete = nonBlank(a)
	}
	if in.Club != nil {
		c := rules.ClubSection{
			Address:         strings.TrimSpace(in.Club.Address),
			Hotline:         rules.NormalizePhone(in.Club.Hotline),
			IsPerpaniMember: in.Club.IsPerpaniMember,
		}
		out.Club = nonBlank(c)
	}
	if in.School != nil {
		s := rules.SchoolSection{
			NPSN:          strings.TrimSpace(in.School.NPSN),
			Address:       strings.TrimSpace(in.School.Address),
			PrincipalName: strings.TrimSpace(in.School.PrincipalName),
		}
		out.School = nonBlank(s)
	}
	if in.Coach != nil {
		c := rules.CoachSection{
			CertificationLevel: strings.TrimSpace(in.Coach.CertificationLevel),
			ClubID:             strings.TrimSpace(in.Coach.ClubID),
		}
		out.Coach = nonBlank(c)
	}
	if in.Judge != nil {
		j := rules.JudgeSection{
			LicenseNumber: strings.TrimSpace(in.Judge.LicenseNumber),
			LicenseLevel:  strings.TrimSpace(in.Judge.LicenseLevel),
		}
		out.Judge = nonBlank(j)
	}
	return out
}

func nonBlank[T comparable](section T) *T {
	var zero T
	if section == zero {
		return nil
	}
	return &section
}

// InputFromProfile turns a profile read from the server into form values
func InputFromProfile(p *dto.ProfileResponse) rules.ProfileInput {
	in := rules.ProfileInput{
		Role:        p.Role,
		Name:        p.Name,
		Phone:       p.Phone,
		Whatsapp:    p.Whatsapp,
		NIK:         p.NIK,
		DateOfBirth: p.DateOfBirth,
		Gender:      p.Gender,
		ProvinceID:  p.ProvinceID,
		CityID:      p.CityID,
		IsStudent:   p.IsStudent,
		Occupation:  p.Occupation,
	}
	if p.Athlete != nil {
		a := *p.Athlete
		in.Athlete = &a
	}
	if p.Club != nil {
		c := *p.Club
		in.Club = &c
	}
	if p.School != nil {
		s := *p.School
		in.School = &s
	}
	if p.Coach != nil {
		c := *p.Coach
		in.Coach = &c
	}
	if p.Judge != nil {
		j := *p.Judge
		in.Judge = &j
	}
	return in
}
