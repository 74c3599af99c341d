package handler

import "github.com/videotube/videotube-api/internal/core/domain"

// Emptiness is checked by the services so the messages stay uniform; tags
// here only constrain the shape of present values.

type registerForm struct {
	FullName string `form:"fullName" validate:"max=100"`
	Email    string `form:"email"    validate:"omitempty,email"`
	Username string `form:"username" validate:"max=30"`
	Password string `form:"password" validate:"maxbytes=72"`
}

type loginRequest struct {
	Username string `json:"username" form:"username"`
	Email    string `json:"email"    form:"email"`
	Password string `json:"password" form:"password" validate:"maxbytes=72"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken" form:"refreshToken"`
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword" form:"oldPassword"`
	NewPassword string `json:"newPassword" form:"newPassword" validate:"maxbytes=72"`
}

type updateDetailsRequest struct {
	FullName string `json:"fullName" form:"fullName" validate:"max=100"`
	Email    string `json:"email"    form:"email"    validate:"omitempty,email"`
}

type loginResponse struct {
	User         *domain.User `json:"user"`
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
}

type tokensResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type subscriptionResponse struct {
	Subscribed bool `json:"subscribed"`
}
