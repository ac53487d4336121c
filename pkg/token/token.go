// Package token issues and verifies the access/refresh JWT pair.
//
// Access and refresh tokens are signed with independent secrets, so a leaked
// access secret cannot mint refresh tokens and the other way round.
package token

import (
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/fastygo/tasktracker/domain"
)

// Kind selects which secret and lifetime a token uses.
type Kind string

const (
	Access  Kind = "access"
	Refresh Kind = "refresh"
)

const (
	DefaultAccessTTL  = 15 * time.Minute
	DefaultRefreshTTL = 7 * 24 * time.Hour
)

// Claims is the payload carried by both token kinds.
type Claims struct {
	UserID string `json:"userId"`
	Type   Kind   `json:"typ"`
	jwt.RegisteredClaims
}

// Config holds the signing material.
type Config struct {
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	Issuer        string
	// Clock stamps iat/exp on issued tokens; nil means time.Now.
	Clock func() time.Time
}

// Pair is an access token together with its refresh token.
type Pair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Service issues and verifies tokens.
type Service struct {
	secrets map[Kind][]byte
	ttls    map[Kind]time.Duration
	issuer  string
	now     func() time.Time
}

// NewService builds a Service; zero TTLs use the 15 minute / 7 day defaults.
func NewService(cfg Config) *Service {
	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = DefaultAccessTTL
	}
	if cfg.RefreshTTL <= 0 {
		cfg.RefreshTTL = DefaultRefreshTTL
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	return &Service{
		secrets: map[Kind][]byte{
			Access:  []byte(cfg.AccessSecret),
			Refresh: []byte(cfg.RefreshSecret),
		},
		ttls: map[Kind]time.Duration{
			Access:  cfg.AccessTTL,
			Refresh: cfg.RefreshTTL,
		},
		issuer: cfg.Issuer,
		now:    cfg.Clock,
	}
}

// IssueAccessToken signs a short-lived token asserting userID.
func (s *Service) IssueAccessToken(userID string) (string, error) {
	return s.issue(userID, Access)
}

// IssueRefreshToken signs a long-lived token asserting userID.
func (s *Service) IssueRefreshToken(userID string) (string, error) {
	return s.issue(userID, Refresh)
}

// IssuePair signs both tokens for userID.
func (s *Service) IssuePair(userID string) (Pair, error) {
	access, err := s.IssueAccessToken(userID)
	if err != nil {
		return Pair{}, err
	}
	refresh, err := s.IssueRefreshToken(userID)
	if err != nil {
		return Pair{}, err
	}
	return Pair{AccessToken: access, RefreshToken: refresh}, nil
}

// Verify checks signature, expiry and kind. Every failure is reported as
// domain.ErrInvalidToken so callers cannot tell the causes apart.
func (s *Service) Verify(tokenString string, kind Kind) (*Claims, error) {
	secret, ok := s.secrets[kind]
	if !ok || tokenString == "" {
		return nil, domain.ErrInvalidToken
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !parsed.Valid {
		return nil, domain.ErrInvalidToken
	}
	if claims.Type != kind || claims.UserID == "" {
		return nil, domain.ErrInvalidToken
	}
	return claims, nil
}

func (s *Service) issue(userID string, kind Kind) (string, error) {
	now := s.now()
	claims := Claims{
		UserID: userID,
		Type:   kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttls[kind])),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secrets[kind])
}
