package auth

import (
	"time"
)

const (
	CodeLifetime         = 10 * time.Minute
	AccessTokenLifetime  = time.Hour
	RefreshTokenLifetime = 30 * 24 * time.Hour
)

const (
	GrantTypeAuthorizationCode = "authorization_code"
	GrantTypeRefresh           = "refresh_token"

	ResponseTypeCode = "code"
	TokenTypeBearer  = "Bearer"
)

// AuthorizationCode is single use and short lived
type AuthorizationCode struct {
	Code        string    `json:"code"`
	ClientID    string    `json:"client_id"`
	RedirectURI string    `json:"redirect_uri"`
	Scope       string    `json:"scope"`
	IssuedAt    time.Time `json:"issued_at"`
	ExpiresAt   time.Time `json:"expires_at"`
	Consumed    bool      `json:"consumed"`
}

type AccessToken struct {
	Token     string    `json:"token"`
	ID        string    `json:"id"`
	ClientID  string    `json:"client_id"`
	Scope     string    `json:"scope"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// RefreshToken mints new access tokens but never authorizes a resource request itself
type RefreshToken struct {
	Token     string    `json:"token"`
	ClientID  string    `json:"client_id"`
	Scope     string    `json:"scope"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (c AuthorizationCode) Expired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}

func (t AccessToken) Expired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}

func (t RefreshToken) Expired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}

// ExpiresIn is the remaining lifetime in whole seconds
func (t AccessToken) ExpiresIn(now time.Time) int {
	remaining := t.ExpiresAt.Sub(now)
	if remaining < 0 {
		return 0
	}
	return int(remaining.Round(time.Second) / time.Second)
}

type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	RefreshToken string `json:"refresh_token,omitempty"`
	Scope        string `json:"scope,omitempty"`
}

// TokenRequest carries the form fields accepted by the token endpoint
type TokenRequest struct {
	GrantType    string
	Code         string
	RedirectURI  string
	RefreshToken string
	ClientID     string
	ClientSecret string
}

// AuthorizeRequest carries the query parameters of the authorization endpoint
type AuthorizeRequest struct {
	ResponseType string
	ClientID     string
	RedirectURI  string
	Scope        string
	State        string
}
