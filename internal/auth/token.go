package auth

import (
	"strconv"
	"time"

	"github.com/ManishSRawat/e-sell/internal/config"
	"github.com/ManishSRawat/e-sell/internal/domain"
	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
)

const (
	KindAccess  = "access"
	KindRefresh = "refresh"
)

type Claims struct {
	Kind string      `json:"kind"`
	Role domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// TokenManager issues and verifies HS256 tokens.
type TokenManager struct {
	secret     []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewTokenManager(cfg config.AuthConfig, issuer string) *TokenManager {
	return &TokenManager{
		secret:     []byte(cfg.JWTSecret),
		issuer:     issuer,
		accessTTL:  cfg.AccessTTL,
		refreshTTL: cfg.RefreshTTL,
		now:        time.Now,
	}
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

func (m *TokenManager) Issue(u *domain.User) (*TokenPair, error) {
	access, err := m.sign(u, KindAccess, m.accessTTL)
	if err != nil {
		return nil, err
	}
	refresh, err := m.sign(u, KindRefresh, m.refreshTTL)
	if err != nil {
		return nil, err
	}
	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(m.accessTTL.Seconds()),
	}, nil
}

func (m *TokenManager) IssueAccess(u *domain.User) (string, error) {
	return m.sign(u, KindAccess, m.accessTTL)
}

func (m *TokenManager) sign(u *domain.User, kind string, ttl time.Duration) (string, error) {
	now := m.now()
	claims := Claims{
		Kind: kind,
		Role: u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(u.ID, 10),
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	return s, errors.Wrap(err, "sign token")
}

// Parse verifies raw and returns the user id it was issued for. The token
// must be of the given kind.
func (m *TokenManager) Parse(raw, kind string) (int64, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(m.issuer),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return 0, errors.WithMessage(domain.ErrUnauthenticated, "invalid token")
	}
	if claims.Kind != kind {
		return 0, errors.WithMessagef(domain.ErrUnauthenticated, "expected %s token", kind)
	}
	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return 0, errors.WithMessage(domain.ErrUnauthenticated, "invalid token subject")
	}
	return id, nil
}
