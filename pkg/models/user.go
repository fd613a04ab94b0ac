package models

import "time"

// Roles returned by the API on the user record.
const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

// User is the account record owned by the session. It is replaced wholesale
// whenever the server returns a newer copy.
type User struct {
	ID        string     `json:"_id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Phone     string     `json:"phone,omitempty"`
	Address   string     `json:"address,omitempty"`
	AvatarURL string     `json:"avatarUrl,omitempty"`
	Role      string     `json:"role,omitempty"`
	Points    int        `json:"loyaltyPoints,omitempty"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
}

// IsAdmin reports whether the user can use the admin console.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse is returned by login.
type AuthResponse struct {
	User         *User  `json:"user"`
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
	Message      string `json:"message,omitempty"`
}

// TokenPair is returned by the refresh endpoint. RefreshToken may be empty
// when the server does not rotate it.
type TokenPair struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken,omitempty"`
}

// RefreshRequest is the body of POST /api/auth/refresh.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// VerifyRegisterRequest is the second step of OTP registration.
type VerifyRegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Code     string `json:"code" validate:"required,len=6,numeric"`
	Name     string `json:"name" validate:"required"`
	Password string `json:"password" validate:"required,min=6"`
}

// ResetPasswordRequest completes a forgotten-password flow.
type ResetPasswordRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Code        string `json:"code" validate:"required,len=6,numeric"`
	NewPassword string `json:"newPassword" validate:"required,min=6"`
}

// UpdateProfileRequest carries profile fields the user may edit.
type UpdateProfileRequest struct {
	Name    string `json:"name,omitempty"`
	Phone   string `json:"phone,omitempty" validate:"omitempty,numeric,min=9,max=11"`
	Address string `json:"address,omitempty"`
}

// ChangePasswordRequest is the body of PUT /api/user/password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=6"`
}

// Address is a saved shipping address.
type Address struct {
	ID        string `json:"_id,omitempty"`
	FullName  string `json:"fullName" validate:"required"`
	Phone     string `json:"phone" validate:"required,numeric,min=9,max=11"`
	Street    string `json:"street" validate:"required"`
	Ward      string `json:"ward,omitempty"`
	District  string `json:"district,omitempty"`
	City      string `json:"city" validate:"required"`
	IsDefault bool   `json:"isDefault"`
}

// ClaimRewardRequest converts a review reward into points or a voucher.
type ClaimRewardRequest struct {
	RewardType  string `json:"rewardType"`
	VoucherCode string `json:"voucherCode,omitempty"`
	Value       int    `json:"value,omitempty"`
}
