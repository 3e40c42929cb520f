// Package onboarding drives the signup dialog: greeting, role choice, the
// signup form and the core ID reveal.
package onboarding

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode"

	"csystem-sip/internal/delivery/dto"
	"csystem-sip/internal/domain/entity"
	"csystem-sip/pkg/sipclient"

	"github.com/go-playground/validator/v10"
)

type Step string

const (
	StepGreeting Step = "greeting"
	StepRole     Step = "role"
	StepSignup   Step = "signup"
	StepReveal   Step = "reveal"
)

// RevealDuration is how long the reveal screen shows the new core ID
const RevealDuration = 3 * time.Second

const minPasswordLength = 8
const minWhatsappDigits = 10

var (
	ErrWrongStep         = errors.New("action not available at this step")
	ErrRoleNotSelectable = errors.New("role is not selectable")
	ErrBusy              = errors.New("signup is already being submitted")
	ErrNoExistingAccount = errors.New("no existing account to verify")
	ErrPasswordRequired  = errors.New("password is required")
)

// Registrar is the part of the API the signup dialog talks to
type Registrar interface {
	CheckEmail(ctx context.Context, email string) (bool, error)
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.RegisterResponse, error)
	VerifyExisting(ctx context.Context, email, password string) (*dto.VerifyExistingResponse, error)
}

// Entry is the navigation context the dialog opens with
type Entry struct {
	RoleCode      string
	ReferralToken string
	RevealCoreID  string
}

// Form holds the signup inputs
type Form struct {
	Name            string
	Email           string
	Password        string
	PasswordConfirm string
	ProvinceID      string
	CityID          string
	Whatsapp        string
	AgreeTerms      bool
	AgreePrivacy    bool
}

// FieldError is one invalid signup input
type FieldError struct {
	Field   string
	Message string
}

type Outcome int

const (
	// OutcomeInvalid keeps the dialog on signup with the first error surfaced
	OutcomeInvalid Outcome = iota
	// OutcomeExistingEmail opens the existing account sub-dialog
	OutcomeExistingEmail
	// OutcomeRegistered leaves the dialog for the dashboard
	OutcomeRegistered
)

// Result reports what a submission did
type Result struct {
	Outcome    Outcome
	FirstError *FieldError
	Account    *dto.RegisterResponse
}

type Flow struct {
	registrar Registrar
	validate  *validator.Validate

	step          Step
	role          *entity.RoleCard
	referralToken string
	revealCoreID  string

	submitting    bool
	existingEmail string
	credentials   *sipclient.Credentials
}

// New opens the dialog. A role code or referral token jumps straight to
// signup and a reveal core ID jumps to the reveal screen.
func New(registrar Registrar, entry Entry) *Flow {
	f := &Flow{
		registrar: registrar,
		validate:  validator.New(),
		step:      StepGreeting,
	}

	switch {
	case entry.RevealCoreID != "":
		f.step = StepReveal
		f.revealCoreID = entry.RevealCoreID
	case entry.ReferralToken != "":
		f.referralToken = entry.ReferralToken
		code := entry.RoleCode
		if code == "" {
			code = athleteCode()
		}
		if card, ok := selectable(code); ok {
			f.role = &card
			f.step = StepSignup
		}
	case entry.RoleCode != "":
		if card, ok := selectable(entry.RoleCode); ok {
			f.role = &card
			f.step = StepSignup
		}
	}
	return f
}

func (f *Flow) Step() Step {
	return f.step
}

// Role returns the chosen role card, if any
func (f *Flow) Role() (entity.RoleCard, bool) {
	if f.role == nil {
		return entity.RoleCard{}, false
	}
	return *f.role, true
}

// Roles lists the cards offered on the role step
func (f *Flow) Roles() []entity.RoleCard {
	return entity.SelectableRoles()
}

// Start leaves the greeting
func (f *Flow) Start() error {
	if f.step != StepGreeting {
		return ErrWrongStep
	}
	f.step = StepRole
	return nil
}

func (f *Flow) SelectRole(code string) error {
	if f.step != StepRole {
		return ErrWrongStep
	}
	card, ok := selectable(code)
	if !ok {
		return ErrRoleNotSelectable
	}
	f.role = &card
	f.step = StepSignup
	return nil
}

// Back returns to the previous step. Nothing is sent to the server.
func (f *Flow) Back() error {
	switch f.step {
	case StepSignup:
		if f.submitting {
			return ErrBusy
		}
		f.step = StepRole
		f.existingEmail = ""
	case StepRole:
		f.step = StepGreeting
	default:
		return ErrWrongStep
	}
	return nil
}

// Validate checks the form in display order
func (f *Flow) Validate(form Form) []FieldError {
	var errs []FieldError
	add := func(field, msg string) {
		errs = append(errs, FieldError{Field: field, Message: msg})
	}

	if strings.TrimSpace(form.Name) == "" {
		add("name", "Name is required")
	}
	if f.validate.Var(strings.TrimSpace(form.Email), "required,email") != nil {
		add("email", "Email format is invalid")
	}
	if len(form.Password) < minPasswordLength {
		add("password", "Password must be at least 8 characters")
	} else if form.Password != form.PasswordConfirm {
		add("password_confirm", "Password confirmation does not match")
	}
	if strings.TrimSpace(form.ProvinceID) == "" {
		add("province_id", "Province is required")
	}
	if strings.TrimSpace(form.CityID) == "" {
		add("city_id", "City is required")
	}
	if countDigits(form.Whatsapp) < minWhatsappDigits {
		add("whatsapp", "WhatsApp number must have at least 10 digits")
	}
	if !form.AgreeTerms {
		add("agree_terms", "You must accept the terms")
	}
	if !form.AgreePrivacy {
		add("agree_privacy", "You must accept the privacy policy")
	}
	return errs
}

// Submit validates the form, probes the email and registers. Transport
// failures are returned with the dialog left on signup.
func (f *Flow) Submit(ctx context.Context, form Form) (*Result, error) {
	if f.step != StepSignup || f.role == nil {
		return nil, ErrWrongStep
	}
	if f.submitting {
		return nil, ErrBusy
	}

	if errs := f.Validate(form); len(errs) > 0 {
		return &Result{Outcome: OutcomeInvalid, FirstError: &errs[0]}, nil
	}

	f.submitting = true
	defer func() { f.submitting = false }()

	email := strings.ToLower(strings.TrimSpace(form.Email))
	exists, err := f.registrar.CheckEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		f.existingEmail = email
		return &Result{Outcome: OutcomeExistingEmail}, nil
	}

	res, err := f.registrar.Register(ctx, &dto.RegisterRequest{
		RoleCode:        f.role.Code,
		Name:            strings.TrimSpace(form.Name),
		Email:           email,
		Password:        form.Password,
		PasswordConfirm: form.PasswordConfirm,
		ProvinceID:      form.ProvinceID,
		CityID:          form.CityID,
		Whatsapp:        strings.TrimSpace(form.Whatsapp),
		AgreeTerms:      form.AgreeTerms,
		AgreePrivacy:    form.AgreePrivacy,
		ReferralToken:   f.referralToken,
	})
	if err != nil {
		// the email was taken between the probe and the submit
		if apiErr, ok := sipclient.AsAPIError(err); ok && apiErr.IsConflict() {
			f.existingEmail = email
			return &Result{Outcome: OutcomeExistingEmail}, nil
		}
		return nil, err
	}

	if res.Token != nil {
		f.credentials = &sipclient.Credentials{AccessToken: res.Token.AccessToken}
	}
	return &Result{Outcome: OutcomeRegistered, Account: res}, nil
}

// ExistingEmail is the address the existing account sub-dialog is asking about
func (f *Flow) ExistingEmail() (string, bool) {
	return f.existingEmail, f.existingEmail != ""
}

// DismissExisting closes the existing account sub-dialog
func (f *Flow) DismissExisting() {
	f.existingEmail = ""
}

// VerifyExisting confirms the password of the existing account and returns
// the add-role redirect.
func (f *Flow) VerifyExisting(ctx context.Context, password string) (string, error) {
	if f.existingEmail == "" {
		return "", ErrNoExistingAccount
	}
	if password == "" {
		return "", ErrPasswordRequired
	}
	if f.submitting {
		return "", ErrBusy
	}

	f.submitting = true
	defer func() { f.submitting = false }()

	res, err := f.registrar.VerifyExisting(ctx, f.existingEmail, password)
	if err != nil {
		return "", err
	}
	return res.Redirect, nil
}

// Credentials returns the session issued by a successful registration
func (f *Flow) Credentials() (sipclient.Credentials, bool) {
	if f.credentials == nil {
		return sipclient.Credentials{}, false
	}
	return *f.credentials, true
}

// RevealCoreID is the core ID shown on the reveal screen
func (f *Flow) RevealCoreID() (string, bool) {
	return f.revealCoreID, f.step == StepReveal
}

func selectable(code string) (entity.RoleCard, bool) {
	card, ok := entity.RoleByCode(code)
	if !ok || !card.Selectable {
		return entity.RoleCard{}, false
	}
	return card, true
}

func athleteCode() string {
	card, _ := entity.RoleByID(entity.RoleIDAthlete)
	return card.Code
}

func countDigits(s string) int {
	n := 0
	for _, r := range s {
		if unicode.IsDigit(r) {
			n++
		}
	}
	return n
}
