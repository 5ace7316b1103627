package recipes_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-recipes"
	"github.com/goliatone/go-router"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

// stubRepoManager satisfies recipes.RepositoryManager for controller tests
// that never reach the persistence layer.
type stubRepoManager struct{}

func (stubRepoManager) Validate() error { return nil }
func (stubRepoManager) MustValidate()   {}
func (stubRepoManager) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	return nil
}
func (stubRepoManager) Users() recipes.Users { return nil }

func newTestAuthController(auther recipes.HTTPAuthenticator) *recipes.AuthController {
	return recipes.NewAuthController(func(c *recipes.AuthController) *recipes.AuthController {
		c.Auther = auther
		c.Repo = stubRepoManager{}
		return c
	})
}

func newTestHTTPAuthenticator(t *testing.T, mockAuth recipes.Authenticator) *recipes.RouteAuthenticator {
	t.Helper()

	httpAuth, err := recipes.NewHTTPAuthenticator(mockAuth, testConfig{
		signingKey:       "test-secret",
		tokenExpiration:  2,
		extendedDuration: 48,
	})
	require.NoError(t, err)
	return httpAuth
}

func TestAuthController_LoginShow(t *testing.T) {
	ctrl := newTestAuthController(newTestHTTPAuthenticator(t, new(MockAuthenticator)))

	ctx := router.NewMockContext()
	ctx.On("Render", "login", mock.Anything).Return(nil)

	err := ctrl.LoginShow(ctx)
	require.NoError(t, err)
	ctx.AssertExpectations(t)
}

func TestAuthController_LoginPost_MissingFields(t *testing.T) {
	cases := []struct {
		name       string
		identifier string
		password   string
		field      string
	}{
		{"empty email", "", "some-password", "Identifier"},
		{"invalid email", "not-an-email", "some-password", "Identifier"},
		{"empty password", "alice@example.com", "", "Password"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := newTestAuthController(newTestHTTPAuthenticator(t, new(MockAuthenticator)))

			ctx := router.NewMockContext()
			ctx.On("Bind", mock.Anything).Run(func(args mock.Arguments) {
				payload := args.Get(0).(*recipes.LoginRequest)
				payload.Identifier = tc.identifier
				payload.Password = tc.password
			}).Return(nil)

			ctx.On("Status", fiber.StatusBadRequest).Return(ctx)

			var rendered router.ViewContext
			ctx.On("Render", "login", mock.Anything).Run(func(args mock.Arguments) {
				rendered = args.Get(1).(router.ViewContext)
			}).Return(nil)

			err := ctrl.LoginPost(ctx)
			require.NoError(t, err)

			validation, ok := rendered["validation"].(map[string]string)
			require.True(t, ok, "expected a validation map in the view context")
			assert.NotEmpty(t, validation[tc.field])

			ctx.AssertExpectations(t)
		})
	}
}

func TestAuthController_LoginPost_InvalidCredentials(t *testing.T) {
	mockAuth := new(MockAuthenticator)
	mockAuth.On("Login", mock.Anything, "alice@example.com", "wrong-password").
		Return("", recipes.ErrMismatchedHashAndPassword)

	ctrl := newTestAuthController(newTestHTTPAuthenticator(t, mockAuth))

	ctx := router.NewMockContext()
	ctx.On("Context").Return(context.Background())
	ctx.On("Bind", mock.Anything).Run(func(args mock.Arguments) {
		payload := args.Get(0).(*recipes.LoginRequest)
		payload.Identifier = "alice@example.com"
		payload.Password = "wrong-password"
	}).Return(nil)

	ctx.On("Status", fiber.StatusBadRequest).Return(ctx)

	var rendered router.ViewContext
	ctx.On("Render", "login", mock.Anything).Run(func(args mock.Arguments) {
		rendered = args.Get(1).(router.ViewContext)
	}).Return(nil)

	err := ctrl.LoginPost(ctx)
	require.NoError(t, err)

	errs, ok := rendered["errors"].(map[string]string)
	require.True(t, ok)
	assert.Equal(t, "Invalid credentials", errs["authentication"])

	mockAuth.AssertExpectations(t)
	ctx.AssertExpectations(t)
}

func TestAuthController_LoginPost_Success(t *testing.T) {
	mockAuth := new(MockAuthenticator)
	mockAuth.On("Login", mock.Anything, "alice@example.com", "correct-password").
		Return("valid.jwt.token", nil)

	ctrl := newTestAuthController(newTestHTTPAuthenticator(t, mockAuth))

	ctx := router.NewMockContext()
	ctx.On("Context").Return(context.Background())
	ctx.On("Bind", mock.Anything).Run(func(args mock.Arguments) {
		payload := args.Get(0).(*recipes.LoginRequest)
		payload.Identifier = "alice@example.com"
		payload.Password = "correct-password"
	}).Return(nil)

	ctx.On("Cookie", mock.MatchedBy(func(c *router.Cookie) bool {
		return c.Name == "user" && c.Value == "valid.jwt.token"
	})).Return()

	ctx.On("Redirect", "/search-recipe", []int{router.StatusSeeOther}).Return(nil)

	err := ctrl.LoginPost(ctx)
	require.NoError(t, err)

	mockAuth.AssertExpectations(t)
	ctx.AssertExpectations(t)
}

func TestAuthController_LoginPost_ProviderOutage(t *testing.T) {
	outage := errors.New("identity provider returned non success status", errors.CategoryExternal)

	mockAuth := new(MockAuthenticator)
	mockAuth.On("Login", mock.Anything, "alice@example.com", "correct-password").
		Return("", outage)

	ctrl := newTestAuthController(newTestHTTPAuthenticator(t, mockAuth))

	var handled error
	ctrl.ErrorHandler = func(c router.Context, err error) error {
		handled = err
		return nil
	}

	ctx := router.NewMockContext()
	ctx.On("Context").Return(context.Background())
	ctx.On("Bind", mock.Anything).Run(func(args mock.Arguments) {
		payload := args.Get(0).(*recipes.LoginRequest)
		payload.Identifier = "alice@example.com"
		payload.Password = "correct-password"
	}).Return(nil)

	err := ctrl.LoginPost(ctx)
	require.NoError(t, err)

	// an upstream outage is a server problem, never an "invalid
	// credentials" response
	require.Error(t, handled)

	var richErr *errors.Error
	require.True(t, errors.As(handled, &richErr))
	assert.Equal(t, errors.CategoryExternal, richErr.Category)

	mockAuth.AssertExpectations(t)
}

// outageTracker is a credential store whose lookups fail the way a
// downed database does.
type outageTracker struct {
	err error
}

func (o outageTracker) GetByIdentifier(ctx context.Context, identifier string) (*recipes.User, error) {
	return nil, o.err
}

func (o outageTracker) TrackAttemptedLogin(ctx context.Context, user *recipes.User) error {
	return nil
}

func (o outageTracker) TrackSucccessfulLogin(ctx context.Context, user *recipes.User) error {
	return nil
}

func TestAuthController_LoginPost_StoreOutage(t *testing.T) {
	cfg := testConfig{
		signingKey:       "test-secret",
		tokenExpiration:  2,
		extendedDuration: 48,
	}

	provider := recipes.NewUserProvider(outageTracker{err: sql.ErrConnDone})

	auth, err := recipes.NewAuthenticator(provider, cfg)
	require.NoError(t, err)

	httpAuth, err := recipes.NewHTTPAuthenticator(auth, cfg)
	require.NoError(t, err)

	ctrl := newTestAuthController(httpAuth)

	var handled error
	ctrl.ErrorHandler = func(c router.Context, err error) error {
		handled = err
		return nil
	}

	ctx := router.NewMockContext()
	ctx.On("Context").Return(context.Background())
	ctx.On("Bind", mock.Anything).Run(func(args mock.Arguments) {
		payload := args.Get(0).(*recipes.LoginRequest)
		payload.Identifier = "alice@example.com"
		payload.Password = "correct-password"
	}).Return(nil)

	err = ctrl.LoginPost(ctx)
	require.NoError(t, err)

	// a store we cannot reach is a server problem, never an "invalid
	// credentials" response
	require.Error(t, handled)

	var richErr *errors.Error
	require.True(t, errors.As(handled, &richErr))
	assert.Equal(t, errors.CategoryInternal, richErr.Category)
}

func TestAuthController_LogOut(t *testing.T) {
	ctrl := newTestAuthController(newTestHTTPAuthenticator(t, new(MockAuthenticator)))

	ctx := router.NewMockContext()
	ctx.On("Cookie", mock.MatchedBy(func(c *router.Cookie) bool {
		return c.Name == "user" && c.Value == ""
	})).Return()
	ctx.On("Redirect", "/", []int{router.StatusTemporaryRedirect}).Return(nil)

	err := ctrl.LogOut(ctx)
	require.NoError(t, err)
	ctx.AssertExpectations(t)
}

func TestLoginRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		payload recipes.LoginRequest
		wantErr bool
	}{
		{
			name: "valid payload",
			payload: recipes.LoginRequest{
				Identifier: "alice@example.com",
				Password:   "some-password",
			},
		},
		{
			name: "missing identifier",
			payload: recipes.LoginRequest{
				Password: "some-password",
			},
			wantErr: true,
		},
		{
			name: "identifier is not an email",
			payload: recipes.LoginRequest{
				Identifier: "alice",
				Password:   "some-password",
			},
			wantErr: true,
		},
		{
			name: "missing password",
			payload: recipes.LoginRequest{
				Identifier: "alice@example.com",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.payload.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRegistrationCreatePayload_Validate(t *testing.T) {
	valid := recipes.RegistrationCreatePayload{
		Username:        "alice",
		Email:           "alice@example.com",
		Password:        "long-enough-password",
		ConfirmPassword: "long-enough-password",
	}

	t.Run("valid payload", func(t *testing.T) {
		assert.NoError(t, valid.Validate())
	})

	t.Run("password mismatch", func(t *testing.T) {
		payload := valid
		payload.ConfirmPassword = "something-different"
		assert.Error(t, payload.Validate())
	})

	t.Run("short password", func(t *testing.T) {
		payload := valid
		payload.Password = "short"
		payload.ConfirmPassword = "short"
		assert.Error(t, payload.Validate())
	})
}
