package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	clierrors "github.com/William2207/uteshop/cli/pkg/errors"
	"github.com/William2207/uteshop/cli/pkg/logger"
	"github.com/William2207/uteshop/cli/pkg/models"
	"github.com/William2207/uteshop/cli/pkg/output"
	"github.com/William2207/uteshop/cli/pkg/validate"
)

// maxAvatarSize mirrors the server's upload limit.
const maxAvatarSize = 5 << 20

// ProfileService manages the signed-in user's profile and addresses
type ProfileService struct {
	rt *Runtime
}

// NewProfileService creates a new profile service
func NewProfileService(rt *Runtime) *ProfileService {
	return &ProfileService{rt: rt}
}

// Show prints the server's copy of the profile and refreshes the session user
func (s *ProfileService) Show(ctx context.Context) error {
	if err := s.rt.RequireLogin(ctx); err != nil {
		return err
	}
	user, err := s.rt.API.GetProfile(ctx)
	if err != nil {
		return err
	}
	s.rt.Session.SetUser(user)
	return printUser(user)
}

// Edit prompts for each editable field, keeping the current value on an
// empty answer.
func (s *ProfileService) Edit(ctx context.Context) error {
	if err := s.rt.RequireLogin(ctx); err != nil {
		return err
	}
	current, err := s.rt.API.GetProfile(ctx)
	if err != nil {
		return err
	}

	p := s.rt.Prompter
	var req models.UpdateProfileRequest
	if req.Name, err = p.StringDefault("Name ", current.Name); err != nil {
		return err
	}
	if req.Phone, err = p.StringDefault("Phone ", current.Phone); err != nil {
		return err
	}
	if req.Address, err = p.StringDefault("Address ", current.Address); err != nil {
		return err
	}
	if err := validate.Struct(req); err != nil {
		return err
	}

	user, err := s.rt.API.UpdateProfile(ctx, req)
	if err != nil {
		return err
	}
	s.rt.Session.SetUser(user)
	output.PrintSuccess("✓ Profile updated")
	return nil
}

// Password changes the account password
func (s *ProfileService) Password(ctx context.Context) error {
	if err := s.rt.RequireLogin(ctx); err != nil {
		return err
	}

	p := s.rt.Prompter
	current, err := p.Password("Current password: ")
	if err != nil {
		return err
	}
	next, err := p.Password("New password: ")
	if err != nil {
		return err
	}
	again, err := p.Password("Repeat new password: ")
	if err != nil {
		return err
	}
	if next != again {
		return clierrors.ValidationError("password", "does not match")
	}

	req := models.ChangePasswordRequest{CurrentPassword: current, NewPassword: next}
	if err := validate.Struct(req); err != nil {
		return err
	}
	msg, err := s.rt.API.ChangePassword(ctx, req)
	if err != nil {
		return err
	}
	output.PrintSuccess("✓ %s", orDefault(msg, "Password changed"))
	return nil
}

// Avatar uploads an image file as the profile picture
func (s *ProfileService) Avatar(ctx context.Context, path string) error {
	if err := requireArg("file", path); err != nil {
		return err
	}
	if err := s.rt.RequireLogin(ctx); err != nil {
		return err
	}

	info, err := os.Stat(path)
	if err != nil {
		return clierrors.NewCLIError(clierrors.ErrorTypeValidation, "Cannot read avatar file", err)
	}
	if info.Size() > maxAvatarSize {
		return clierrors.ValidationError("file", fmt.Sprintf("exceeds %d MB", maxAvatarSize>>20))
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg", ".png", ".webp", ".gif":
	default:
		return clierrors.ValidationError("file", "must be a jpg, png, webp or gif image")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return clierrors.NewCLIError(clierrors.ErrorTypeValidation, "Cannot read avatar file", err)
	}

	logger.Debug("Uploading avatar", "file", path, "bytes", len(data))
	user, err := s.rt.API.UploadAvatar(ctx, filepath.Base(path), data)
	if err != nil {
		return err
	}
	s.rt.Session.SetUser(user)
	output.PrintSuccess("✓ Avatar updated")
	return nil
}

// Addresses lists saved shipping addresses
func (s *ProfileService) Addresses(ctx context.Context) error {
	if err := s.rt.RequireLogin(ctx); err != nil {
		return err
	}
	addrs, err := s.rt.API.ListAddresses(ctx)
	if err != nil {
		return err
	}
	if len(addrs) == 0 {
		output.PrintInfo("No saved addresses. Add one with 'uteshop profile address add'")
		return nil
	}

	headers := []string{"ID", "Name", "Phone", "Address", "Default"}
	rows := make([][]string, 0, len(addrs))
	for _, a := range addrs {
		def := ""
		if a.IsDefault {
			def = "✓"
		}
		rows = append(rows, []string{a.ID, a.FullName, a.Phone, formatAddress(a), def})
	}
	return output.PrintTable(headers, rows, addrs)
}

// AddAddress prompts for and saves a new address
func (s *ProfileService) AddAddress(ctx context.Context) error {
	if err := s.rt.RequireLogin(ctx); err != nil {
		return err
	}
	addr, err := s.promptAddress(models.Address{})
	if err != nil {
		return err
	}
	created, err := s.rt.API.CreateAddress(ctx, addr)
	if err != nil {
		return err
	}
	output.PrintSuccess("✓ Address %s saved", created.ID)
	return nil
}

// EditAddress prompts over an existing address
func (s *ProfileService) EditAddress(ctx context.Context, id string) error {
	if err := requireArg("address id", id); err != nil {
		return err
	}
	if err := s.rt.RequireLogin(ctx); err != nil {
		return err
	}

	addrs, err := s.rt.API.ListAddresses(ctx)
	if err != nil {
		return err
	}
	var current *models.Address
	for i := range addrs {
		if addrs[i].ID == id {
			current = &addrs[i]
			break
		}
	}
	if current == nil {
		return clierrors.NotFoundError("address " + id)
	}

	addr, err := s.promptAddress(*current)
	if err != nil {
		return err
	}
	if _, err := s.rt.API.UpdateAddress(ctx, id, addr); err != nil {
		return err
	}
	output.PrintSuccess("✓ Address updated")
	return nil
}

// DeleteAddress removes an address
func (s *ProfileService) DeleteAddress(ctx context.Context, id string) error {
	if err := requireArg("address id", id); err != nil {
		return err
	}
	if err := s.rt.RequireLogin(ctx); err != nil {
		return err
	}
	if err := s.rt.API.DeleteAddress(ctx, id); err != nil {
		return err
	}
	output.PrintSuccess("✓ Address deleted")
	return nil
}

// SetDefaultAddress marks an address as the default
func (s *ProfileService) SetDefaultAddress(ctx context.Context, id string) error {
	if err := requireArg("address id", id); err != nil {
		return err
	}
	if err := s.rt.RequireLogin(ctx); err != nil {
		return err
	}
	msg, err := s.rt.API.SetDefaultAddress(ctx, id)
	if err != nil {
		return err
	}
	output.PrintSuccess("✓ %s", orDefault(msg, "Default address set"))
	return nil
}

func (s *ProfileService) promptAddress(a models.Address) (models.Address, error) {
	p := s.rt.Prompter
	prompts := []struct {
		label string
		value *string
	}{
		{"Full name ", &a.FullName},
		{"Phone ", &a.Phone},
		{"Street ", &a.Street},
		{"Ward ", &a.Ward},
		{"District ", &a.District},
		{"City ", &a.City},
	}
	for _, pr := range prompts {
		v, err := p.StringDefault(pr.label, *pr.value)
		if err != nil {
			return a, err
		}
		*pr.value = v
	}
	if !a.IsDefault {
		def, err := p.Confirm("Use as default address?")
		if err != nil {
			return a, err
		}
		a.IsDefault = def
	}
	return a, validate.Struct(a)
}

func formatAddress(a models.Address) string {
	parts := []string{a.Street}
	for _, s := range []string{a.Ward, a.District, a.City} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, ", ")
}
