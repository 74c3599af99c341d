package domain

import "time"

// AccessClaims is the identity carried by a verified access token.
type AccessClaims struct {
	UserID    string
	Username  string
	Email     string
	FullName  string
	TokenID   string
	ExpiresAt time.Time
}

// TokenPair is an access token together with the refresh token that renews it.
type TokenPair struct {
	AccessToken      string
	AccessExpiresAt  time.Time
	RefreshToken     string
	RefreshExpiresAt time.Time
}

// Session is the outcome of a successful login.
type Session struct {
	User   *User
	Tokens TokenPair
}
