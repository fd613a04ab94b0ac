package service

import (
	"context"
	"strings"

	clierrors "github.com/William2207/uteshop/cli/pkg/errors"
	"github.com/William2207/uteshop/cli/pkg/formatter"
	"github.com/William2207/uteshop/cli/pkg/models"
	"github.com/William2207/uteshop/cli/pkg/output"
	"github.com/William2207/uteshop/cli/pkg/register"
	"github.com/William2207/uteshop/cli/pkg/validate"
)

// maxCodeAttempts bounds how often register re-prompts for a rejected code.
const maxCodeAttempts = 3

type AuthService struct {
	rt *Runtime
}

// NewAuthService creates a new auth service
func NewAuthService(rt *Runtime) *AuthService {
	return &AuthService{rt: rt}
}

// Login prompts for missing credentials and starts a session
func (s *AuthService) Login(ctx context.Context, email, password string) error {
	p := s.rt.Prompter

	if st := s.rt.Session.State(); st.LoggedIn() {
		output.PrintWarning("Already logged in as %s", st.User.Email)
		confirm, err := p.Confirm("Continue with new login?")
		if err != nil {
			return err
		}
		if !confirm {
			return nil
		}
	}

	var err error
	if email == "" {
		if email, err = p.String("Email: "); err != nil {
			return err
		}
	}
	if password == "" {
		if password, err = p.Password("Password: "); err != nil {
			return err
		}
	}

	output.PrintInfo("Authenticating...")
	if err := s.rt.Session.Login(ctx, email, password); err != nil {
		return err
	}

	user := s.rt.Session.State().User
	output.PrintSuccess("✓ Login successful!")
	if user.IsAdmin() {
		output.PrintInfo("Logged in as %s (ADMIN)", formatter.Bold.Sprint(user.Name))
	} else {
		output.PrintInfo("Logged in as %s", formatter.Bold.Sprint(user.Name))
	}
	return nil
}

// Logout ends the session
func (s *AuthService) Logout(ctx context.Context) error {
	if !s.rt.Session.State().LoggedIn() {
		output.PrintWarning("Not logged in")
		return nil
	}

	s.rt.Session.Logout()
	output.PrintSuccess("✓ Logged out successfully")
	return nil
}

// Me fetches and shows the current user
func (s *AuthService) Me(ctx context.Context) error {
	if err := s.rt.RequireLogin(ctx); err != nil {
		return err
	}

	user, err := s.rt.Session.Me(ctx)
	if err != nil {
		return err
	}
	return printUser(user)
}

// Refresh exchanges the refresh token for a new pair now
func (s *AuthService) Refresh(ctx context.Context) error {
	if !s.rt.Session.State().LoggedIn() {
		return clierrors.AuthError("Not logged in")
	}
	if _, err := s.rt.Session.RefreshSession(ctx); err != nil {
		return err
	}
	output.PrintSuccess("✓ Token refreshed")
	return nil
}

// Register runs the OTP registration wizard interactively. A rejected code
// is asked for again, the other fields are kept.
func (s *AuthService) Register(ctx context.Context, email string) error {
	p := s.rt.Prompter
	w := register.NewWizard(s.rt.API)

	var err error
	if email == "" {
		if email, err = p.String("Email: "); err != nil {
			return err
		}
	}

	output.PrintInfo("Requesting a registration code...")
	if err := w.RequestOTP(ctx, email); err != nil {
		return err
	}
	output.PrintSuccess("✓ %s", orDefault(w.Form().Message, "Code sent to "+email))

	name, err := p.String("Name: ")
	if err != nil {
		return err
	}
	if err := validate.Var("name", strings.TrimSpace(name), "required"); err != nil {
		return err
	}
	password, err := p.Password("Password: ")
	if err != nil {
		return err
	}
	if err := validate.Var("password", password, "required,min=6"); err != nil {
		return err
	}

	for attempt := 1; ; attempt++ {
		code, err := p.String("Code from email: ")
		if err != nil {
			return err
		}

		err = w.Verify(ctx, code, name, password)
		if err == nil {
			break
		}

		form := w.Form()
		if attempt >= maxCodeAttempts || form.Step != register.CodeAndProfileEntry {
			return err
		}
		output.PrintError("%s", form.Error)
	}

	output.PrintSuccess("✓ %s", orDefault(w.Form().Message, "Registered"))
	output.PrintInfo("Log in with 'uteshop auth login --email %s'", email)
	return nil
}

// ForgotPassword asks the server to mail a reset code
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	var err error
	if email == "" {
		if email, err = s.rt.Prompter.String("Email: "); err != nil {
			return err
		}
	}
	if err := validate.Var("email", email, "required,email"); err != nil {
		return err
	}

	msg, err := s.rt.API.ForgotPassword(ctx, email)
	if err != nil {
		return err
	}
	output.PrintSuccess("✓ %s", orDefault(msg, "Reset code sent"))
	return nil
}

// ResetPassword sets a new password with a mailed code
func (s *AuthService) ResetPassword(ctx context.Context, email, code string) error {
	p := s.rt.Prompter

	var err error
	if email == "" {
		if email, err = p.String("Email: "); err != nil {
			return err
		}
	}
	if code == "" {
		if code, err = p.String("Code: "); err != nil {
			return err
		}
	}
	newPassword, err := p.Password("New password: ")
	if err != nil {
		return err
	}

	req := models.ResetPasswordRequest{Email: email, Code: code, NewPassword: newPassword}
	if err := validate.Struct(req); err != nil {
		return err
	}

	msg, err := s.rt.API.ResetPassword(ctx, req)
	if err != nil {
		return err
	}
	output.PrintSuccess("✓ %s", orDefault(msg, "Password reset"))
	return nil
}

func printUser(u *models.User) error {
	fields := []output.Field{
		{Key: "ID", Value: u.ID},
		{Key: "Name", Value: u.Name},
		{Key: "Email", Value: u.Email},
		{Key: "Phone", Value: u.Phone},
		{Key: "Address", Value: u.Address},
		{Key: "Points", Value: u.Points},
	}
	if u.IsAdmin() {
		fields = append(fields, output.Field{Key: "Role", Value: "admin"})
	}
	if created := formatter.Date(u.CreatedAt); created != "" {
		fields = append(fields, output.Field{Key: "Member since", Value: created})
	}
	return output.PrintRecord("", fields, u)
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func pluralize(count int) string {
	if count == 1 {
		return ""
	}
	return "s"
}

func requireArg(name, value string) error {
	if value == "" {
		return clierrors.ValidationError(name, "is required")
	}
	return nil
}
