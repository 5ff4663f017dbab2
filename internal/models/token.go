package models

import (
	"time"
)

type IssuedToken struct {
	Value     string
	ExpiresAt time.Time
}

// Token pair issues by TokenManager, AuthService
type TokenPair struct {
	Access  IssuedToken
	Refresh IssuedToken
}

// Authenticated session: the user and freshly issued tokens
type Session struct {
	User   PublicUser
	Tokens TokenPair
}
