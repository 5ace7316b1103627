package hosted

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-logger/glog"
	"github.com/goliatone/go-recipes"
)

const (
	defaultRequestTimeout = 30 * time.Second
	maxResponseBodyBytes  = 1 << 20
)

// HTTPDoer lets tests swap the transport
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Config holds the hosted provider options
type Config struct {
	// BaseURL is the auth service root, e.g. https://xyz.supabase.co/auth/v1
	BaseURL string
	// APIKey is sent on every request in the apikey header
	APIKey string
	// ServiceKey authorizes admin user lookups. Falls back to APIKey.
	ServiceKey     string
	RequestTimeout time.Duration
	HTTPClient     HTTPDoer
	Logger         glog.Logger
}

// IdentityProvider implements recipes.IdentityProvider against a hosted
// auth service password-grant endpoint.
type IdentityProvider struct {
	config     Config
	httpClient HTTPDoer
	logger     glog.Logger
}

var _ recipes.IdentityProvider = (*IdentityProvider)(nil)

// NewIdentityProvider creates a hosted identity provider
func NewIdentityProvider(cfg Config) (*IdentityProvider, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, errors.New("hosted provider base URL is required", errors.CategoryInternal)
	}

	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("hosted provider api key is required", errors.CategoryInternal)
	}

	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = defaultRequestTimeout
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.RequestTimeout}
	}

	logger := cfg.Logger
	if logger == nil {
		_, logger = glog.Resolve("hosted", nil, nil)
	}

	return &IdentityProvider{
		config:     cfg,
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

type grantResponse struct {
	AccessToken string     `json:"access_token"`
	TokenType   string     `json:"token_type"`
	ExpiresIn   int        `json:"expires_in"`
	User        hostedUser `json:"user"`
}

type hostedUser struct {
	ID           string         `json:"id"`
	Email        string         `json:"email"`
	Role         string         `json:"role"`
	UserMetadata map[string]any `json:"user_metadata"`
}

// VerifyIdentity exchanges the credentials for an access token. Every
// provider-side rejection collapses into the uniform credential mismatch
// so callers cannot learn whether the account exists upstream.
func (p *IdentityProvider) VerifyIdentity(ctx context.Context, identifier, password string) (recipes.Identity, error) {
	endpoint := fmt.Sprintf("%s/token?grant_type=password", p.config.BaseURL)

	payload, err := json.Marshal(map[string]string{
		"email":    identifier,
		"password": password,
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to encode grant request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to build grant request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("apikey", p.config.APIKey)

	res, err := p.httpClient.Do(req)
	if err != nil {
		p.logger.Error("hosted grant request failed", "error", err)
		return nil, errors.Wrap(err, errors.CategoryExternal, "identity provider request failed")
	}
	defer res.Body.Close()

	body, err := io.ReadAll(io.LimitReader(res.Body, maxResponseBodyBytes))
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryExternal, "failed to read grant response")
	}

	if res.StatusCode == http.StatusBadRequest ||
		res.StatusCode == http.StatusUnauthorized ||
		res.StatusCode == http.StatusUnprocessableEntity ||
		res.StatusCode == http.StatusNotFound {
		return nil, recipes.ErrMismatchedHashAndPassword
	}

	if res.StatusCode < http.StatusOK || res.StatusCode >= http.StatusMultipleChoices {
		p.logger.Error("hosted grant returned non success status", "status", res.StatusCode)
		return nil, errors.New("identity provider returned non success status", errors.CategoryExternal).
			WithMetadata(map[string]any{"status": res.StatusCode})
	}

	grant := grantResponse{}
	if err := json.Unmarshal(body, &grant); err != nil {
		return nil, errors.Wrap(err, errors.CategoryExternal, "failed to decode grant response")
	}

	if grant.AccessToken == "" || grant.User.ID == "" {
		return nil, errors.New("grant response missing access token or user", errors.CategoryExternal)
	}

	return identityFromHostedUser(grant.User, grant.AccessToken), nil
}

// FindIdentityByIdentifier resolves a user through the admin endpoint
func (p *IdentityProvider) FindIdentityByIdentifier(ctx context.Context, identifier string) (recipes.Identity, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return nil, recipes.ErrIdentityNotFound
	}

	endpoint := fmt.Sprintf("%s/admin/users/%s", p.config.BaseURL, url.PathEscape(identifier))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to build user lookup request")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("apikey", p.config.APIKey)
	req.Header.Set("Authorization", "Bearer "+p.serviceKey())

	res, err := p.httpClient.Do(req)
	if err != nil {
		p.logger.Error("hosted user lookup failed", "error", err)
		return nil, errors.Wrap(err, errors.CategoryExternal, "identity provider request failed")
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return nil, recipes.ErrIdentityNotFound
	}

	if res.StatusCode < http.StatusOK || res.StatusCode >= http.StatusMultipleChoices {
		return nil, errors.New("identity provider returned non success status", errors.CategoryExternal).
			WithMetadata(map[string]any{"status": res.StatusCode})
	}

	body, err := io.ReadAll(io.LimitReader(res.Body, maxResponseBodyBytes))
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryExternal, "failed to read user lookup response")
	}

	user := hostedUser{}
	if err := json.Unmarshal(body, &user); err != nil {
		return nil, errors.Wrap(err, errors.CategoryExternal, "failed to decode user lookup response")
	}

	if user.ID == "" {
		return nil, recipes.ErrIdentityNotFound
	}

	return identityFromHostedUser(user, ""), nil
}

func (p *IdentityProvider) serviceKey() string {
	if p.config.ServiceKey != "" {
		return p.config.ServiceKey
	}
	return p.config.APIKey
}

func identityFromHostedUser(user hostedUser, accessToken string) *Identity {
	role := user.Role
	if raw, ok := user.UserMetadata["role"]; ok {
		if s, ok := raw.(string); ok && s != "" {
			role = s
		}
	}

	username := ""
	if user.Email != "" {
		username = strings.SplitN(user.Email, "@", 2)[0]
	}

	return &Identity{
		id:          user.ID,
		email:       user.Email,
		username:    username,
		role:        role,
		accessToken: accessToken,
	}
}

// Identity is a hosted auth user implementing recipes.Identity
type Identity struct {
	id          string
	email       string
	username    string
	role        string
	accessToken string
}

var _ recipes.Identity = (*Identity)(nil)

func (u *Identity) ID() string       { return u.id }
func (u *Identity) Username() string { return u.username }
func (u *Identity) Email() string    { return u.email }
func (u *Identity) Role() string     { return u.role }

// AccessToken is the provider-issued token from the last grant, empty
// for identities resolved through the admin lookup.
func (u *Identity) AccessToken() string { return u.accessToken }
