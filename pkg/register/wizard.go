// Package register drives the two-step OTP registration:
// EmailEntry -> CodeAndProfileEntry -> Registered.
package register

import (
	"context"
	"strings"
	"sync"

	clierrors "github.com/William2207/uteshop/cli/pkg/errors"
	"github.com/William2207/uteshop/cli/pkg/logger"
	"github.com/William2207/uteshop/cli/pkg/models"
	"github.com/William2207/uteshop/cli/pkg/validate"
)

// Step is the wizard position
type Step int

const (
	EmailEntry Step = iota
	CodeAndProfileEntry
	Registered
)

func (s Step) String() string {
	switch s {
	case EmailEntry:
		return "email"
	case CodeAndProfileEntry:
		return "code"
	case Registered:
		return "registered"
	default:
		return "unknown"
	}
}

// API is the part of the storefront API registration needs
type API interface {
	RequestRegisterOTP(ctx context.Context, email string) (string, error)
	VerifyRegisterOTP(ctx context.Context, req models.VerifyRegisterRequest) (string, error)
}

// Form is the wizard's field values and position. Error holds the message
// of the last failure, empty after a success.
type Form struct {
	Step     Step
	Email    string
	Code     string
	Name     string
	Password string
	Error    string
	Message  string
}

// Wizard holds one registration attempt
type Wizard struct {
	api API

	mu   sync.Mutex
	form Form
}

// NewWizard starts a wizard at EmailEntry
func NewWizard(api API) *Wizard {
	return &Wizard{api: api}
}

// Form returns a copy of the current form
func (w *Wizard) Form() Form {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.form
}

// RequestOTP validates email and asks the server to send a code. On success
// the wizard moves to CodeAndProfileEntry; on failure it stays on
// EmailEntry with the email kept.
func (w *Wizard) RequestOTP(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)

	w.mu.Lock()
	if w.form.Step != EmailEntry {
		w.mu.Unlock()
		return clierrors.NewCLIError(clierrors.ErrorTypeValidation, "A code has already been requested", nil)
	}
	w.form.Email = email
	w.mu.Unlock()

	if err := validate.Var("email", email, "required,email"); err != nil {
		w.setError(err)
		return err
	}

	msg, err := w.api.RequestRegisterOTP(ctx, email)
	if err != nil {
		logger.Debug("Registration code request failed", "email", email, "error", err)
		w.setError(err)
		return err
	}

	w.mu.Lock()
	w.form.Step = CodeAndProfileEntry
	w.form.Error = ""
	w.form.Message = msg
	w.mu.Unlock()
	return nil
}

// Verify submits the code together with the profile. On success the wizard
// is Registered. On any failure it stays on CodeAndProfileEntry keeping name
// and password, and the code is cleared so it must be entered again.
func (w *Wizard) Verify(ctx context.Context, code, name, password string) error {
	w.mu.Lock()
	if w.form.Step != CodeAndProfileEntry {
		w.mu.Unlock()
		return clierrors.NewCLIError(clierrors.ErrorTypeValidation, "Request a registration code first", nil)
	}
	w.form.Code = strings.TrimSpace(code)
	w.form.Name = strings.TrimSpace(name)
	w.form.Password = password
	req := models.VerifyRegisterRequest{
		Email:    w.form.Email,
		Code:     w.form.Code,
		Name:     w.form.Name,
		Password: w.form.Password,
	}
	w.mu.Unlock()

	if err := validate.Struct(req); err != nil {
		w.failVerify(err)
		return err
	}

	msg, err := w.api.VerifyRegisterOTP(ctx, req)
	if err != nil {
		logger.Debug("Registration verification failed", "email", req.Email, "error", err)
		w.failVerify(err)
		return err
	}

	w.mu.Lock()
	w.form.Step = Registered
	w.form.Code = ""
	w.form.Password = ""
	w.form.Error = ""
	w.form.Message = msg
	w.mu.Unlock()

	logger.Info("Registered", "email", req.Email)
	return nil
}

// Back returns from CodeAndProfileEntry to EmailEntry keeping the email
func (w *Wizard) Back() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.form.Step != CodeAndProfileEntry {
		return
	}
	w.form.Step = EmailEntry
	w.form.Code = ""
	w.form.Error = ""
	w.form.Message = ""
}

// Reset restarts the wizard with empty fields
func (w *Wizard) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.form = Form{}
}

func (w *Wizard) setError(err error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.form.Error = clierrors.CategorizeError(err).Message
	w.form.Message = ""
}

func (w *Wizard) failVerify(err error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.form.Code = ""
	w.form.Error = clierrors.CategorizeError(err).Message
	w.form.Message = ""
}
