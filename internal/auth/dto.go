package auth

import (
	"github.com/00anuyh/souvenir-backend/internal/users"
)

// RegisterRequest captures the signup form payload.
type RegisterRequest struct {
	Username        string  `json:"username" validate:"required,min=3,max=64"`
	Password        string  `json:"password" validate:"required,min=8"`
	ConfirmPassword string  `json:"confirm_password" validate:"required,eqfield=Password"`
	Email           *string `json:"email,omitempty" validate:"omitempty,email"`
	DisplayName     string  `json:"display_name,omitempty"`
}

// RegisterResponse reports the created user and whether the signup bonus was
// granted on this call.
type RegisterResponse struct {
	User         *users.UserDTO `json:"user"`
	BonusGranted bool           `json:"bonus_granted"`
}

// LoginRequest captures the user credentials sent to the login endpoint.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse contains the tokens and user produced by a successful login.
type LoginResponse struct {
	AccessToken  string         `json:"access_token"`
	RefreshToken string         `json:"refresh_token"`
	User         *users.UserDTO `json:"user"`
}

// RefreshRequest carries the expired access token and its refresh credential.
type RefreshRequest struct {
	AccessToken  string `json:"access_token" validate:"required"`
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// RefreshResponse returns the rotated token pair.
type RefreshResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}
