package dto

import "github.com/nitn/phd-admission/internal/app/models"

// RegisterRequest represents an applicant registration
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email" example:"alice@x.com"`
	FullName string `json:"fullName" validate:"required,min=2,max=100" example:"Alice Doe"`
	Password string `json:"password" validate:"required,strong_password" example:"Secret#123"`
}

// LoginRequest represents login credentials
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email" example:"alice@x.com"`
	Password string `json:"password" validate:"required" example:"Secret#123"`
}

// RefreshTokenRequest carries a refresh token when no cookie is sent
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// AuthResponse is returned by register and login
type AuthResponse struct {
	User         *models.User `json:"user"`
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
	TokenType    string       `json:"tokenType" example:"Bearer"`
	ExpiresIn    int64        `json:"expiresIn" example:"3600"`
}

// RefreshResponse is returned by refresh-token
type RefreshResponse struct {
	AccessToken string `json:"accessToken"`
	TokenType   string `json:"tokenType" example:"Bearer"`
	ExpiresIn   int64  `json:"expiresIn" example:"3600"`
}
