package oauth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/Josh-Mantel/MCP-F1/internal/auth"
	"github.com/Josh-Mantel/MCP-F1/internal/config"
)

// secretHashCost is lowered in tests
var secretHashCost = bcrypt.DefaultCost

// Service implements the authorization and token endpoints and validates
// bearer tokens against the token store.
type Service struct {
	store      *auth.TokenStore
	client     config.ClientConfig
	secretHash []byte
	issuer     string
	now        func() time.Time
}

func NewService(store *auth.TokenStore, client config.ClientConfig) (*Service, error) {
	if store == nil {
		return nil, errors.New("oauth: token store is required")
	}
	if client.ID == "" || client.Secret == "" {
		return nil, errors.New("oauth: client id and secret are required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(client.Secret), secretHashCost)
	if err != nil {
		return nil, fmt.Errorf("oauth: failed to hash client secret: %w", err)
	}
	client.Secret = ""

	return &Service{
		store:      store,
		client:     client,
		secretHash: hash,
		issuer:     config.GetJWTIssuer(),
		now:        time.Now,
	}, nil
}

// WithClock replaces the service's time source
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Client returns the registered client without its secret
func (s *Service) Client() config.ClientConfig {
	return s.client
}

func (s *Service) Stats() auth.StoreStats {
	return s.store.Stats()
}

// Authorize validates an authorization request and issues a code. It returns
// the URL the user agent should be redirected to. Errors that may safely be
// reported to the redirect URI come back as *RedirectError.
func (s *Service) Authorize(req auth.AuthorizeRequest) (string, error) {
	if req.ClientID == "" {
		return "", fmt.Errorf("%w: client_id is required", ErrInvalidRequest)
	}

	redirectURI := req.RedirectURI
	if redirectURI == "" {
		redirectURI = s.client.RedirectURI
	}
	if !constantTimeEqual(req.ClientID, s.client.ID) || redirectURI != s.client.RedirectURI {
		log.Warn().Str("client_id", req.ClientID).Str("redirect_uri", req.RedirectURI).Msg("Authorization request for unknown client or redirect URI")
		return "", fmt.Errorf("%w: unknown client or redirect_uri", ErrInvalidClient)
	}

	if req.ResponseType != auth.ResponseTypeCode {
		return "", &RedirectError{Err: ErrUnsupportedResponseType, RedirectURI: redirectURI, State: req.State}
	}

	scope, err := s.resolveScope(req.Scope)
	if err != nil {
		return "", &RedirectError{Err: err, RedirectURI: redirectURI, State: req.State}
	}

	code, err := generateCode()
	if err != nil {
		return "", err
	}

	now := s.now()
	s.store.SaveCode(auth.AuthorizationCode{
		Code:        code,
		ClientID:    s.client.ID,
		RedirectURI: redirectURI,
		Scope:       scope,
		IssuedAt:    now,
		ExpiresAt:   now.Add(auth.CodeLifetime),
	})

	log.Info().Str("client_id", s.client.ID).Str("scope", scope).Msg("Issued authorization code")

	return buildRedirect(redirectURI, url.Values{"code": {code}}, req.State)
}

// RedirectURL renders a RedirectError as the URL carrying error and state
func (e *RedirectError) RedirectURL() (string, error) {
	_, code := ErrorStatus(e.Err)
	params := url.Values{"error": {code}}
	if desc := ErrorDescription(e.Err); desc != "" {
		params.Set("error_description", desc)
	}
	return buildRedirect(e.RedirectURI, params, e.State)
}

// Token dispatches a token request on its grant type
func (s *Service) Token(req auth.TokenRequest) (auth.TokenResponse, error) {
	switch req.GrantType {
	case auth.GrantTypeAuthorizationCode:
		return s.ExchangeCode(req)
	case auth.GrantTypeRefresh:
		return s.Refresh(req)
	case "":
		return auth.TokenResponse{}, fmt.Errorf("%w: grant_type is required", ErrInvalidRequest)
	default:
		return auth.TokenResponse{}, fmt.Errorf("%w: %s", ErrUnsupportedGrantType, req.GrantType)
	}
}

// ExchangeCode redeems an authorization code for an access and refresh token
func (s *Service) ExchangeCode(req auth.TokenRequest) (auth.TokenResponse, error) {
	if err := s.authenticateClient(req.ClientID, req.ClientSecret); err != nil {
		return auth.TokenResponse{}, err
	}
	if req.Code == "" {
		return auth.TokenResponse{}, fmt.Errorf("%w: code is required", ErrInvalidRequest)
	}

	now := s.now()
	code, err := s.store.ConsumeCode(req.Code, now, func(c auth.AuthorizationCode) error {
		if c.ClientID != req.ClientID {
			return fmt.Errorf("%w: code was issued to another client", ErrInvalidGrant)
		}
		if req.RedirectURI != "" && req.RedirectURI != c.RedirectURI {
			return fmt.Errorf("%w: redirect_uri does not match", ErrInvalidGrant)
		}
		return nil
	})
	if err != nil {
		log.Warn().Err(err).Str("client_id", req.ClientID).Msg("Authorization code rejected")
		return auth.TokenResponse{}, grantError(err, "authorization code")
	}

	access, err := s.issueAccessToken(code.ClientID, code.Scope, now)
	if err != nil {
		return auth.TokenResponse{}, err
	}

	refresh := auth.RefreshToken{
		Token:     uuid.New().String(),
		ClientID:  code.ClientID,
		Scope:     code.Scope,
		IssuedAt:  now,
		ExpiresAt: now.Add(auth.RefreshTokenLifetime),
	}
	s.store.SaveRefreshToken(refresh)

	log.Info().Str("client_id", code.ClientID).Str("token_id", access.ID).Msg("Exchanged authorization code for tokens")

	return auth.TokenResponse{
		AccessToken:  access.Token,
		TokenType:    auth.TokenTypeBearer,
		ExpiresIn:    access.ExpiresIn(access.IssuedAt),
		RefreshToken: refresh.Token,
		Scope:        access.Scope,
	}, nil
}

// Refresh mints a new access token. The refresh token is not rotated.
func (s *Service) Refresh(req auth.TokenRequest) (auth.TokenResponse, error) {
	if err := s.authenticateClient(req.ClientID, req.ClientSecret); err != nil {
		return auth.TokenResponse{}, err
	}
	if req.RefreshToken == "" {
		return auth.TokenResponse{}, fmt.Errorf("%w: refresh_token is required", ErrInvalidRequest)
	}

	now := s.now()
	refresh, err := s.store.LookupRefreshToken(req.RefreshToken, now)
	if err != nil {
		log.Warn().Err(err).Str("client_id", req.ClientID).Msg("Refresh token rejected")
		return auth.TokenResponse{}, grantError(err, "refresh token")
	}
	if refresh.ClientID != req.ClientID {
		return auth.TokenResponse{}, fmt.Errorf("%w: refresh token was issued to another client", ErrInvalidGrant)
	}

	access, err := s.issueAccessToken(refresh.ClientID, refresh.Scope, now)
	if err != nil {
		return auth.TokenResponse{}, err
	}

	log.Info().Str("client_id", refresh.ClientID).Str("token_id", access.ID).Msg("Refreshed access token")

	return auth.TokenResponse{
		AccessToken:  access.Token,
		TokenType:    auth.TokenTypeBearer,
		ExpiresIn:    access.ExpiresIn(access.IssuedAt),
		RefreshToken: refresh.Token,
		Scope:        access.Scope,
	}, nil
}

// ValidateAccessToken checks a bearer token's signature and expiry and that
// the store still knows it.
func (s *Service) ValidateAccessToken(tokenString string) (*TokenValidationResult, error) {
	if tokenString == "" {
		return nil, ErrUnauthorized
	}

	now := s.now()
	token, err := jwt.ParseWithClaims(tokenString, &CustomClaims{}, func(token *jwt.Token) (interface{}, error) {
		return config.GetJWTSecret(), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: access token expired", ErrTokenExpired)
		}
		log.Debug().Err(err).Msg("Failed to parse access token")
		return nil, fmt.Errorf("%w: unknown access token", ErrTokenExpired)
	}

	claims, ok := token.Claims.(*CustomClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%w: invalid token claims", ErrTokenExpired)
	}

	stored, err := s.store.LookupAccessToken(tokenString, now)
	if err != nil {
		if errors.Is(err, auth.ErrExpired) {
			return nil, fmt.Errorf("%w: access token expired", ErrTokenExpired)
		}
		return nil, fmt.Errorf("%w: unknown access token", ErrTokenExpired)
	}
	if stored.ClientID != claims.Subject {
		return nil, fmt.Errorf("%w: token subject mismatch", ErrTokenExpired)
	}

	return &TokenValidationResult{
		Valid:     true,
		TokenID:   stored.ID,
		ClientID:  stored.ClientID,
		ExpiresAt: stored.ExpiresAt,
		Scopes:    ParseScope(stored.Scope),
	}, nil
}

// issueAccessToken works in whole seconds so the JWT exp claim and the
// stored expiry agree.
func (s *Service) issueAccessToken(clientID, scope string, now time.Time) (auth.AccessToken, error) {
	now = now.Truncate(time.Second)
	access := auth.AccessToken{
		ID:        uuid.New().String(),
		ClientID:  clientID,
		Scope:     scope,
		IssuedAt:  now,
		ExpiresAt: now.Add(auth.AccessTokenLifetime),
	}

	claims := CustomClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        access.ID,
			Subject:   clientID,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(access.IssuedAt),
			ExpiresAt: jwt.NewNumericDate(access.ExpiresAt),
		},
		Scope: scope,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(config.GetJWTSecret())
	if err != nil {
		return auth.AccessToken{}, fmt.Errorf("failed to sign access token: %w", err)
	}
	access.Token = signed

	s.store.SaveAccessToken(access)
	return access, nil
}

func (s *Service) authenticateClient(clientID, clientSecret string) error {
	if clientID == "" || clientSecret == "" {
		return fmt.Errorf("%w: client credentials are required", ErrInvalidClient)
	}
	if !constantTimeEqual(clientID, s.client.ID) {
		return fmt.Errorf("%w: unknown client", ErrInvalidClient)
	}
	if err := bcrypt.CompareHashAndPassword(s.secretHash, []byte(clientSecret)); err != nil {
		log.Warn().Str("client_id", clientID).Msg("Client secret mismatch")
		return fmt.Errorf("%w: client secret mismatch", ErrInvalidClient)
	}
	return nil
}

func (s *Service) resolveScope(requested string) (string, error) {
	scopes := ParseScope(requested)
	if len(scopes) == 0 {
		return strings.Join(s.client.Scopes, " "), nil
	}

	for _, scope := range scopes {
		if !s.client.HasScope(scope) {
			return "", fmt.Errorf("%w: %s", ErrInvalidScope, scope)
		}
	}
	return strings.Join(scopes, " "), nil
}

func grantError(err error, subject string) error {
	switch {
	case errors.Is(err, ErrInvalidGrant):
		return err
	case errors.Is(err, auth.ErrExpired):
		return fmt.Errorf("%w: %s expired", ErrInvalidGrant, subject)
	case errors.Is(err, auth.ErrConsumed):
		return fmt.Errorf("%w: %s already used", ErrInvalidGrant, subject)
	default:
		return fmt.Errorf("%w: invalid %s", ErrInvalidGrant, subject)
	}
}

func generateCode() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate authorization code: %w", err)
	}
	return hex.EncodeToString(b), nil
}

func buildRedirect(redirectURI string, params url.Values, state string) (string, error) {
	u, err := url.Parse(redirectURI)
	if err != nil {
		return "", fmt.Errorf("invalid redirect_uri: %w", err)
	}

	q := u.Query()
	for k, v := range params {
		q[k] = v
	}
	if state != "" {
		q.Set("state", state)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func constantTimeEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
