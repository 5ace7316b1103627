package recipes_test

import (
	"context"
	"testing"

	"github.com/goliatone/go-recipes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newTestIdentity(id, email, role string) *MockIdentity {
	identity := &MockIdentity{}
	identity.On("ID").Return(id)
	identity.On("Email").Return(email)
	identity.On("Role").Return(role)
	return identity
}

func TestNewAuthenticator(t *testing.T) {
	provider := &MockIdentityProvider{}

	t.Run("fails without a signing key", func(t *testing.T) {
		auther, err := recipes.NewAuthenticator(provider, testConfig{})

		assert.Error(t, err)
		assert.Nil(t, auther)
		assert.ErrorIs(t, err, recipes.ErrMissingSigningKey)
	})

	t.Run("creates authenticator with valid config", func(t *testing.T) {
		auther, err := recipes.NewAuthenticator(provider, testConfig{
			signingKey:      "test-signing-key",
			tokenExpiration: 2,
			issuer:          "recipes",
		})

		assert.NoError(t, err)
		assert.NotNil(t, auther)
		assert.NotNil(t, auther.TokenService())
	})
}

func TestAuther_Login(t *testing.T) {
	cfg := testConfig{
		signingKey:       "test-signing-key",
		tokenExpiration:  2,
		extendedDuration: 72,
		issuer:           "recipes",
	}

	t.Run("returns a verifiable token for valid credentials", func(t *testing.T) {
		provider := &MockIdentityProvider{}
		identity := newTestIdentity("user-123", "alice@example.com", "member")
		provider.On("VerifyIdentity", mock.Anything, "alice@example.com", "secret").
			Return(identity, nil)

		auther, err := recipes.NewAuthenticator(provider, cfg)
		assert.NoError(t, err)

		token, err := auther.Login(context.Background(), "alice@example.com", "secret")

		assert.NoError(t, err)
		assert.NotEmpty(t, token)

		session, err := auther.SessionFromToken(token)
		assert.NoError(t, err)
		assert.Equal(t, "user-123", session.GetUserID())
		assert.Equal(t, "alice@example.com", session.GetEmail())

		provider.AssertExpectations(t)
	})

	t.Run("propagates the credential mismatch without detail", func(t *testing.T) {
		provider := &MockIdentityProvider{}
		provider.On("VerifyIdentity", mock.Anything, "nobody@example.com", "whatever").
			Return(nil, recipes.ErrMismatchedHashAndPassword)

		auther, err := recipes.NewAuthenticator(provider, cfg)
		assert.NoError(t, err)

		token, err := auther.Login(context.Background(), "nobody@example.com", "whatever")

		assert.Error(t, err)
		assert.Empty(t, token)
		assert.Equal(t, recipes.ErrMismatchedHashAndPassword, err)

		provider.AssertExpectations(t)
	})

	t.Run("maps a nil identity to a credential mismatch", func(t *testing.T) {
		provider := &MockIdentityProvider{}
		provider.On("VerifyIdentity", mock.Anything, "ghost@example.com", "pwd").
			Return(nil, nil)

		auther, err := recipes.NewAuthenticator(provider, cfg)
		assert.NoError(t, err)

		token, err := auther.Login(context.Background(), "ghost@example.com", "pwd")

		assert.Error(t, err)
		assert.Empty(t, token)
		assert.Equal(t, recipes.ErrMismatchedHashAndPassword, err)
	})
}

type loginForm struct {
	identifier string
	password   string
	extended   bool
}

func (f loginForm) GetIdentifier() string    { return f.identifier }
func (f loginForm) GetPassword() string      { return f.password }
func (f loginForm) GetExtendedSession() bool { return f.extended }

func TestAuther_LoginWithPayload(t *testing.T) {
	cfg := testConfig{
		signingKey:       "test-signing-key",
		tokenExpiration:  2,
		extendedDuration: 72,
		issuer:           "recipes",
	}

	provider := &MockIdentityProvider{}
	identity := newTestIdentity("user-123", "alice@example.com", "member")
	provider.On("VerifyIdentity", mock.Anything, "alice@example.com", "secret").
		Return(identity, nil)

	auther, err := recipes.NewAuthenticator(provider, cfg)
	assert.NoError(t, err)

	t.Run("extended session mints a longer lived token", func(t *testing.T) {
		short, err := auther.LoginWithPayload(context.Background(), loginForm{
			identifier: "alice@example.com",
			password:   "secret",
		})
		assert.NoError(t, err)

		long, err := auther.LoginWithPayload(context.Background(), loginForm{
			identifier: "alice@example.com",
			password:   "secret",
			extended:   true,
		})
		assert.NoError(t, err)

		shortSession, err := auther.SessionFromToken(short)
		assert.NoError(t, err)
		longSession, err := auther.SessionFromToken(long)
		assert.NoError(t, err)

		shortObj := shortSession.(*recipes.SessionObject)
		longObj := longSession.(*recipes.SessionObject)
		assert.True(t, longObj.ExpirationDate.After(*shortObj.ExpirationDate))
	})

	t.Run("rejects a nil payload", func(t *testing.T) {
		token, err := auther.LoginWithPayload(context.Background(), nil)
		assert.Error(t, err)
		assert.Empty(t, token)
	})
}

func TestAuther_SessionFromToken(t *testing.T) {
	cfg := testConfig{
		signingKey:      "test-signing-key",
		tokenExpiration: 2,
		issuer:          "recipes",
	}

	provider := &MockIdentityProvider{}
	auther, err := recipes.NewAuthenticator(provider, cfg)
	assert.NoError(t, err)

	t.Run("rejects garbage tokens", func(t *testing.T) {
		session, err := auther.SessionFromToken("garbage")
		assert.Error(t, err)
		assert.Nil(t, session)
		assert.True(t, recipes.IsMalformedError(err))
	})

	t.Run("uses a custom validator when configured", func(t *testing.T) {
		called := false
		auther.WithTokenValidator(recipes.TokenValidatorFunc(func(tokenString string) (recipes.AuthClaims, error) {
			called = true
			return nil, recipes.ErrTokenMalformed
		}))

		_, err := auther.SessionFromToken("anything")
		assert.Error(t, err)
		assert.True(t, called)
	})
}

func TestAuther_IdentityFromSession(t *testing.T) {
	cfg := testConfig{
		signingKey:      "test-signing-key",
		tokenExpiration: 2,
		issuer:          "recipes",
	}

	provider := &MockIdentityProvider{}
	identity := newTestIdentity("user-123", "alice@example.com", "member")
	provider.On("FindIdentityByIdentifier", mock.Anything, "user-123").
		Return(identity, nil)

	auther, err := recipes.NewAuthenticator(provider, cfg)
	assert.NoError(t, err)

	session := &recipes.SessionObject{UserID: "user-123"}

	resolved, err := auther.IdentityFromSession(context.Background(), session)
	assert.NoError(t, err)
	assert.Equal(t, "user-123", resolved.ID())

	provider.AssertExpectations(t)
}
