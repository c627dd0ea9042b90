package auth

import (
	"context"
	"errors"

	"github.com/golang-jwt/jwt/v4"

	"github.com/skout-hq/skout/internal/utils"
)

// AudienceAuthenticated is the audience of access tokens issued to signed-in users.
const AudienceAuthenticated = "authenticated"

// ErrInvalidSigningMethod is returned for tokens not signed with HMAC.
var ErrInvalidSigningMethod = errors.New("invalid signing method")

// Claims are the claims of a hosted auth access token.
type Claims struct {
	Email     string `json:"email"`
	Role      string `json:"role"`
	SessionID string `json:"session_id"`
	jwt.RegisteredClaims
}

// TokenValidator checks hosted auth access tokens locally with the project's
// HS256 JWT secret.
type TokenValidator struct {
	secret []byte
}

// NewTokenValidator creates a validator for tokens signed with secret.
func NewTokenValidator(secret string) *TokenValidator {
	return &TokenValidator{secret: []byte(secret)}
}

// Validate parses tokenString and returns its claims. Expired tokens give an
// expired-token AppError, everything else an invalid-token AppError.
func (v *TokenValidator) Validate(tokenString string) (*Claims, error) {
	if len(v.secret) == 0 {
		return nil, utils.NewInvalidTokenError()
	}

	parser := jwt.Parser{ValidMethods: []string{jwt.SigningMethodHS256.Alg()}}
	claims := &Claims{}
	token, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidSigningMethod
		}
		return v.secret, nil
	})
	if err != nil {
		var ve *jwt.ValidationError
		if errors.As(err, &ve) && ve.Errors&jwt.ValidationErrorExpired != 0 {
			return nil, utils.NewExpiredTokenError()
		}
		return nil, utils.NewInvalidTokenError()
	}
	if !token.Valid {
		return nil, utils.NewInvalidTokenError()
	}

	if claims.Subject == "" || claims.ExpiresAt == nil {
		return nil, utils.NewInvalidTokenError()
	}
	if !claims.VerifyAudience(AudienceAuthenticated, true) {
		return nil, utils.NewInvalidTokenError()
	}
	return claims, nil
}

// Verify implements TokenVerifier.
func (v *TokenValidator) Verify(_ context.Context, tokenString string) (*Claims, error) {
	return v.Validate(tokenString)
}
