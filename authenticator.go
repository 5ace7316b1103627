package recipes

import (
	"context"
	"reflect"
	"time"
)

var _ Authenticator = &Auther{}

// Auther orchestrates credential verification and token issuance. It
// never reports to callers whether an identifier exists; unknown
// identifiers and bad passwords produce the same rejection.
type Auther struct {
	provider         IdentityProvider
	tokenService     TokenService
	tokenValidator   TokenValidator
	extendedDuration int
	logger           Logger
	lgr              LoggerProvider
}

// NewAuthenticator returns a new Authenticator. It fails when the signing
// key is missing so a misconfigured service cannot boot.
func NewAuthenticator(provider IdentityProvider, opts Config) (*Auther, error) {
	lgr, logger := ResolveLogger("auth", nil, nil)

	tokenService, err := NewTokenService(
		[]byte(opts.GetSigningKey()),
		opts.GetTokenExpiration(),
		opts.GetIssuer(),
		opts.GetAudience(),
		logger,
	)
	if err != nil {
		return nil, err
	}

	return &Auther{
		provider:         provider,
		tokenService:     tokenService,
		extendedDuration: opts.GetExtendedTokenDuration(),
		logger:           logger,
		lgr:              lgr,
	}, nil
}

func (s *Auther) WithLogger(logger Logger) *Auther {
	s.lgr, s.logger = ResolveLogger("auth", s.lgr, logger)
	return s
}

func (s *Auther) WithLoggerProvider(provider LoggerProvider) *Auther {
	s.lgr, s.logger = ResolveLogger("auth", provider, nil)
	return s
}

// WithTokenValidator sets a custom token validator for externally issued tokens.
func (s *Auther) WithTokenValidator(validator TokenValidator) *Auther {
	s.tokenValidator = validator
	return s
}

// TokenService returns the TokenService instance used by this Authenticator
func (s *Auther) TokenService() TokenService {
	return s.tokenService
}

// Login verifies the credentials and returns a signed session token
func (s *Auther) Login(ctx context.Context, identifier, password string) (string, error) {
	identity, err := s.verify(ctx, identifier, password)
	if err != nil {
		return "", err
	}

	return s.tokenService.Generate(identity)
}

// LoginWithPayload behaves like Login but honors the payload's extended
// session flag, minting a longer lived token when requested.
func (s *Auther) LoginWithPayload(ctx context.Context, payload LoginPayload) (string, error) {
	if payload == nil {
		return "", ErrUnableToParseData
	}

	identity, err := s.verify(ctx, payload.GetIdentifier(), payload.GetPassword())
	if err != nil {
		return "", err
	}

	if payload.GetExtendedSession() && s.extendedDuration > 0 {
		return s.tokenService.Generate(identity, time.Duration(s.extendedDuration)*time.Hour)
	}

	return s.tokenService.Generate(identity)
}

func (s *Auther) verify(ctx context.Context, identifier, password string) (Identity, error) {
	identity, err := s.provider.VerifyIdentity(ctx, identifier, password)
	if err != nil {
		s.logger.Error("Login verify identity error", "error", err)
		return nil, err
	}

	if identity == nil || reflect.ValueOf(identity).IsZero() {
		s.logger.Error("Login identity is nil or zero value")
		return nil, ErrMismatchedHashAndPassword
	}

	return identity, nil
}

// SessionFromToken validates a raw token and decodes it into a session
func (s Auther) SessionFromToken(raw string) (Session, error) {
	validator := s.tokenValidator
	if validator == nil {
		validator = s.tokenService
	}

	claims, err := validator.Validate(raw)
	if err != nil {
		s.logger.Error("SessionFromToken validation failed", "error", err)
		return nil, err
	}

	session, err := sessionFromAuthClaims(claims)
	if err != nil {
		s.logger.Error("SessionFromToken failed to create session from claims", "error", err)
		return nil, err
	}

	return session, nil
}

// IdentityFromSession resolves the full identity behind a session
func (s *Auther) IdentityFromSession(ctx context.Context, session Session) (Identity, error) {
	identity, err := s.provider.FindIdentityByIdentifier(ctx, session.GetUserID())
	if err != nil {
		s.logger.Error("IdentityFromSession find identity by identifier failed", "error", err)
		return nil, err
	}

	return identity, nil
}
