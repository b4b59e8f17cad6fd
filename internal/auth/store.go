package auth

import (
	"errors"
	"sync"
	"time"
)

var (
	ErrNotFound = errors.New("auth: not found")
	ErrExpired  = errors.New("auth: expired")
	ErrConsumed = errors.New("auth: code already consumed")
)

// TokenStore holds issued codes and tokens in memory. Every operation runs
// under a single lock, and entries are only ever invalidated by comparing
// their expiry with the caller supplied time. Expired entries stay in place
// and keep failing with ErrExpired.
type TokenStore struct {
	mu            sync.Mutex
	codes         map[string]AuthorizationCode
	accessTokens  map[string]AccessToken
	refreshTokens map[string]RefreshToken
}

type StoreStats struct {
	Codes         int `json:"codes"`
	AccessTokens  int `json:"access_tokens"`
	RefreshTokens int `json:"refresh_tokens"`
}

func NewTokenStore() *TokenStore {
	return &TokenStore{
		codes:         make(map[string]AuthorizationCode),
		accessTokens:  make(map[string]AccessToken),
		refreshTokens: make(map[string]RefreshToken),
	}
}

func (s *TokenStore) SaveCode(code AuthorizationCode) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.codes[code.Code] = code
}

// ConsumeCode redeems a code. verify, when non-nil, runs inside the same
// critical section before the code is marked consumed; an error from it leaves
// the code redeemable.
func (s *TokenStore) ConsumeCode(code string, now time.Time, verify func(AuthorizationCode) error) (AuthorizationCode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, exists := s.codes[code]
	if !exists {
		return AuthorizationCode{}, ErrNotFound
	}
	if stored.Consumed {
		return AuthorizationCode{}, ErrConsumed
	}
	if stored.Expired(now) {
		return AuthorizationCode{}, ErrExpired
	}

	if verify != nil {
		if err := verify(stored); err != nil {
			return AuthorizationCode{}, err
		}
	}

	stored.Consumed = true
	s.codes[code] = stored
	return stored, nil
}

func (s *TokenStore) SaveAccessToken(token AccessToken) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.accessTokens[token.Token] = token
}

func (s *TokenStore) LookupAccessToken(token string, now time.Time) (AccessToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, exists := s.accessTokens[token]
	if !exists {
		return AccessToken{}, ErrNotFound
	}
	if stored.Expired(now) {
		return AccessToken{}, ErrExpired
	}
	return stored, nil
}

func (s *TokenStore) SaveRefreshToken(token RefreshToken) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.refreshTokens[token.Token] = token
}

func (s *TokenStore) LookupRefreshToken(token string, now time.Time) (RefreshToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, exists := s.refreshTokens[token]
	if !exists {
		return RefreshToken{}, ErrNotFound
	}
	if stored.Expired(now) {
		return RefreshToken{}, ErrExpired
	}
	return stored, nil
}

func (s *TokenStore) Stats() StoreStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	return StoreStats{
		Codes:         len(s.codes),
		AccessTokens:  len(s.accessTokens),
		RefreshTokens: len(s.refreshTokens),
	}
}
