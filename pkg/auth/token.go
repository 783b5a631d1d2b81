package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenType distinguishes the two token kinds carried in the "type" claim
type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

// Token verification failures. Verify always returns exactly one of these.
var (
	ErrTokenMalformed    = errors.New("token is malformed")
	ErrTokenBadSignature = errors.New("token signature is invalid")
	ErrTokenExpired      = errors.New("token is expired")
	ErrTokenWrongType    = errors.New("token type does not match required type")
)

// Claims is the signed claim set of an EdgeChat token
type Claims struct {
	TokenType TokenType `json:"type"`
	jwt.RegisteredClaims
}

// SubjectID returns the numeric subject of the token
func (c *Claims) SubjectID() (int64, error) {
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid subject claim %q: %w", c.Subject, err)
	}
	return id, nil
}

// TokenPair is an access token and its companion refresh token
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// TokenService signs, verifies and rotates identity tokens with a shared
// HS256 secret. It holds no per-token state.
type TokenService struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// NewTokenService creates a token service. The secret is process-wide and
// read-only after construction.
func NewTokenService(secret string, accessTTL, refreshTTL time.Duration) *TokenService {
	return &TokenService{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

// WithClock overrides the service clock. Tests only.
func (s *TokenService) WithClock(now func() time.Time) *TokenService {
	s.now = now
	return s
}

// IssueAccessToken issues a short-lived access token for subjectID
func (s *TokenService) IssueAccessToken(subjectID int64) (string, error) {
	return s.issue(subjectID, TokenTypeAccess, s.accessTTL)
}

// IssueRefreshToken issues a long-lived refresh token for subjectID
func (s *TokenService) IssueRefreshToken(subjectID int64) (string, error) {
	return s.issue(subjectID, TokenTypeRefresh, s.refreshTTL)
}

// IssuePair issues a new access+refresh pair for subjectID
func (s *TokenService) IssuePair(subjectID int64) (TokenPair, error) {
	access, err := s.IssueAccessToken(subjectID)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := s.IssueRefreshToken(subjectID)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *TokenService) issue(subjectID int64, tokenType TokenType, ttl time.Duration) (string, error) {
	now := s.now()
	claims := Claims{
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(subjectID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			// Unique ID so two tokens issued in the same second still differ;
			// rotation must never hand back the input token verbatim.
			ID: uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("signing %s token: %w", tokenType, err)
	}
	return signed, nil
}

// Verify parses and validates tokenString, requiring the given token type.
// A token is valid only if the signature verifies, it has not expired, and
// its "type" claim matches requiredType.
func (s *TokenService) Verify(tokenString string, requiredType TokenType) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(
		tokenString,
		claims,
		func(token *jwt.Token) (interface{}, error) {
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, fmt.Errorf("%w: %v", ErrTokenMalformed, err)
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, fmt.Errorf("%w: %v", ErrTokenBadSignature, err)
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, fmt.Errorf("%w: %v", ErrTokenExpired, err)
		default:
			return nil, fmt.Errorf("%w: %v", ErrTokenMalformed, err)
		}
	}

	if claims.TokenType != requiredType {
		return nil, fmt.Errorf("%w: got %q, need %q", ErrTokenWrongType, claims.TokenType, requiredType)
	}

	return claims, nil
}

// Refresh verifies refreshToken as type refresh and issues a new
// access+refresh pair. Both tokens rotate; the input refresh token is not
// invalidated and remains usable until its own expiry.
func (s *TokenService) Refresh(refreshToken string) (TokenPair, error) {
	claims, err := s.Verify(refreshToken, TokenTypeRefresh)
	if err != nil {
		return TokenPair{}, err
	}
	subjectID, err := claims.SubjectID()
	if err != nil {
		return TokenPair{}, fmt.Errorf("%w: %v", ErrTokenMalformed, err)
	}
	return s.IssuePair(subjectID)
}
