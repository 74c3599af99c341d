package domain

import "errors"

// Input validation.
var (
	ErrMissingFields           = errors.New("all fields are required")
	ErrUsernameOrEmailRequired = errors.New("username or email is required")
	ErrAvatarRequired          = errors.New("avatar file is required")
	ErrCoverImageRequired      = errors.New("cover image file is required")
	ErrUsernameMissing         = errors.New("username is missing")
	ErrInvalidOldPassword      = errors.New("invalid old password")
	ErrPasswordTooLong         = errors.New("password must be at most 72 bytes")
)

// Identity and session.
var (
	ErrUserExists          = errors.New("user with email or username already exists")
	ErrUserNotFound        = errors.New("user does not exist")
	ErrChannelNotFound     = errors.New("channel does not exist")
	ErrInvalidCredentials  = errors.New("invalid user credentials")
	ErrUnauthorized        = errors.New("unauthorized request")
	ErrInvalidAccessToken  = errors.New("invalid access token")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	ErrRefreshTokenExpired = errors.New("refresh token is expired or used")
	ErrTooManyRequests     = errors.New("too many requests")
)

// Collaborator failures.
var (
	ErrTokenGeneration = errors.New("something went wrong while generating tokens")
	ErrMediaUpload     = errors.New("error while uploading media")
)
