package authn

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// IssuedToken is the response body for a successful token issue.
type IssuedToken struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresIn   int64     `json:"expires_in"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Service signs and verifies HS256 tokens.
type Service struct {
	config *Config
}

// NewService creates a token service over cfg.
func NewService(cfg *Config) *Service {
	return &Service{config: cfg}
}

// Issue signs a token for subject. Custom claims are merged in before the
// registered claims, so they cannot override sub, iss, iat, exp or jti.
func (s *Service) Issue(subject string, customClaims map[string]any) (*IssuedToken, error) {
	if subject == "" {
		return nil, ErrSubjectRequired
	}

	now := time.Now()
	expiresAt := now.Add(s.config.Expiration)

	claims := jwt.MapClaims{}
	for key, value := range customClaims {
		claims[key] = value
	}
	claims["sub"] = subject
	claims["iat"] = now.Unix()
	claims["exp"] = expiresAt.Unix()
	claims["jti"] = uuid.NewString()
	if s.config.Issuer != "" {
		claims["iss"] = s.config.Issuer
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.config.Secret))
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	return &IssuedToken{
		AccessToken: signed,
		TokenType:   "Bearer",
		ExpiresIn:   int64(s.config.Expiration.Seconds()),
		ExpiresAt:   expiresAt,
	}, nil
}

// Verify parses and validates a token and returns its claims.
func (s *Service) Verify(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("%w: %v", ErrUnexpectedSigningMethod, token.Header["alg"])
		}
		return []byte(s.config.Secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}
	if !token.Valid {
		return nil, ErrTokenInvalid
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrTokenInvalid
	}
	if s.config.Issuer != "" {
		issuer, _ := claims["iss"].(string)
		if issuer != s.config.Issuer {
			return nil, ErrTokenInvalid
		}
	}
	return claims, nil
}
