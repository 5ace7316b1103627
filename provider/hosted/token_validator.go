package hosted

import (
	"fmt"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-recipes"
)

// ValidatorConfig holds JWKS validation options
type ValidatorConfig struct {
	// JWKSURL is the provider's key set endpoint,
	// e.g. {base}/.well-known/jwks.json
	JWKSURL string
	// SharedSecret validates HS256 tokens for deployments that sign with
	// a symmetric key instead of publishing a JWKS.
	SharedSecret    []byte
	Issuer          string
	Audience        []string
	RefreshInterval time.Duration
}

// TokenValidator validates provider-issued access tokens against the
// provider's published signing keys. It satisfies recipes.TokenValidator
// so it can slot into the authenticator and the token middleware alike.
type TokenValidator struct {
	keyFunc jwt.Keyfunc
	jwks    *keyfunc.JWKS
	config  ValidatorConfig
}

var _ recipes.TokenValidator = (*TokenValidator)(nil)

// NewTokenValidator builds a validator from a JWKS URL or shared secret
func NewTokenValidator(cfg ValidatorConfig) (*TokenValidator, error) {
	v := &TokenValidator{config: cfg}

	switch {
	case cfg.JWKSURL != "":
		refresh := cfg.RefreshInterval
		if refresh <= 0 {
			refresh = time.Hour
		}

		jwks, err := keyfunc.Get(cfg.JWKSURL, keyfunc.Options{
			RefreshInterval:   refresh,
			RefreshRateLimit:  time.Minute * 5,
			RefreshTimeout:    time.Second * 10,
			RefreshUnknownKID: true,
		})
		if err != nil {
			return nil, errors.Wrap(err, errors.CategoryExternal, "failed to fetch provider JWK set")
		}
		v.jwks = jwks
		v.keyFunc = jwks.Keyfunc
	case len(cfg.SharedSecret) > 0:
		v.keyFunc = func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return cfg.SharedSecret, nil
		}
	default:
		return nil, errors.New("token validator requires a JWKS URL or shared secret", errors.CategoryInternal)
	}

	return v, nil
}

// Validate parses and verifies a provider-issued token
func (v *TokenValidator) Validate(tokenString string) (recipes.AuthClaims, error) {
	parserOptions := make([]jwt.ParserOption, 0, 2)
	if v.config.Issuer != "" {
		parserOptions = append(parserOptions, jwt.WithIssuer(v.config.Issuer))
	}
	if len(v.config.Audience) > 0 {
		parserOptions = append(parserOptions, jwt.WithAudience(v.config.Audience...))
	}

	token, err := jwt.ParseWithClaims(tokenString, &recipes.JWTClaims{}, v.keyFunc, parserOptions...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, recipes.ErrTokenExpired
		}
		return nil, errors.Wrap(err, recipes.ErrTokenMalformed.Category, recipes.ErrTokenMalformed.Message).
			WithTextCode(recipes.ErrTokenMalformed.TextCode)
	}

	claims, ok := token.Claims.(*recipes.JWTClaims)
	if !ok || !token.Valid {
		return nil, recipes.ErrUnableToDecodeSession
	}

	return claims, nil
}

// Close stops the background JWKS refresh
func (v *TokenValidator) Close() {
	if v.jwks != nil {
		v.jwks.EndBackground()
	}
}
