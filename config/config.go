package config

import (
	"fmt"
	"time"

	"github.com/goliatone/go-errors"
)

// BaseConfig is the application configuration tree. The zero value is
// usable for local development except for the auth signing key, which
// Validate requires.
type BaseConfig struct {
	App         App         `json:"app" koanf:"app"`
	Server      Server      `json:"server" koanf:"server"`
	Auth        Auth        `json:"auth" koanf:"auth"`
	Persistence Persistence `json:"persistence" koanf:"persistence"`
	MealDB      MealDB      `json:"mealdb" koanf:"mealdb"`
}

func (c *BaseConfig) Validate() error {
	if c.Auth.SigningKey == "" {
		return errors.New("auth.signing_key is required", errors.CategoryValidation)
	}

	if c.MealDB.GetBaseURL() == "" {
		return errors.New("mealdb.base_url is required", errors.CategoryValidation)
	}

	return nil
}

func (c *BaseConfig) GetApp() App                 { return c.App }
func (c *BaseConfig) GetServer() Server           { return c.Server }
func (c *BaseConfig) GetAuth() Auth               { return c.Auth }
func (c *BaseConfig) GetPersistence() Persistence { return c.Persistence }
func (c *BaseConfig) GetMealDB() MealDB           { return c.MealDB }

// App identifies the running service
type App struct {
	Name string `json:"name" koanf:"name"`
	Env  string `json:"env" koanf:"env"`
}

func (a App) GetName() string {
	if a.Name == "" {
		return "go-recipes"
	}
	return a.Name
}

func (a App) GetEnv() string {
	if a.Env == "" {
		return "development"
	}
	return a.Env
}

// Server holds the HTTP listener options
type Server struct {
	Port int `json:"port" koanf:"port"`
}

func (s Server) GetPort() int {
	if s.Port == 0 {
		return 2400
	}
	return s.Port
}

func (s Server) GetAddress() string {
	return fmt.Sprintf(":%d", s.GetPort())
}

// Auth implements the auth package Config interface
type Auth struct {
	SigningKey            string   `json:"signing_key" koanf:"signing_key"`
	SigningMethod         string   `json:"signing_method" koanf:"signing_method"`
	ContextKey            string   `json:"context_key" koanf:"context_key"`
	TokenExpiration       int      `json:"token_expiration" koanf:"token_expiration"`
	ExtendedTokenDuration int      `json:"extended_token_duration" koanf:"extended_token_duration"`
	TokenLookup           string   `json:"token_lookup" koanf:"token_lookup"`
	AuthScheme            string   `json:"auth_scheme" koanf:"auth_scheme"`
	Issuer                string   `json:"issuer" koanf:"issuer"`
	Audience              []string `json:"audience" koanf:"audience"`
	RejectedRouteKey      string   `json:"rejected_route_key" koanf:"rejected_route_key"`
	RejectedRouteDefault  string   `json:"rejected_route_default" koanf:"rejected_route_default"`
}

func (a Auth) GetSigningKey() string {
	return a.SigningKey
}

func (a Auth) GetSigningMethod() string {
	if a.SigningMethod == "" {
		return "HS256"
	}
	return a.SigningMethod
}

func (a Auth) GetContextKey() string {
	if a.ContextKey == "" {
		return "user"
	}
	return a.ContextKey
}

func (a Auth) GetTokenExpiration() int {
	if a.TokenExpiration == 0 {
		return 2
	}
	return a.TokenExpiration
}

func (a Auth) GetExtendedTokenDuration() int {
	if a.ExtendedTokenDuration == 0 {
		return 168
	}
	return a.ExtendedTokenDuration
}

func (a Auth) GetTokenLookup() string {
	if a.TokenLookup == "" {
		return fmt.Sprintf("header:Authorization,cookie:%s", a.GetContextKey())
	}
	return a.TokenLookup
}

func (a Auth) GetAuthScheme() string {
	if a.AuthScheme == "" {
		return "Bearer"
	}
	return a.AuthScheme
}

func (a Auth) GetIssuer() string {
	if a.Issuer == "" {
		return "go-recipes"
	}
	return a.Issuer
}

func (a Auth) GetAudience() []string {
	if len(a.Audience) == 0 {
		return []string{"go-recipes"}
	}
	return a.Audience
}

func (a Auth) GetRejectedRouteKey() string {
	if a.RejectedRouteKey == "" {
		return "rejected_route"
	}
	return a.RejectedRouteKey
}

func (a Auth) GetRejectedRouteDefault() string {
	if a.RejectedRouteDefault == "" {
		return "/search-recipe"
	}
	return a.RejectedRouteDefault
}

// Persistence implements the go-persistence-bun Config interface
type Persistence struct {
	Debug                 bool   `json:"debug" koanf:"debug"`
	Driver                string `json:"driver" koanf:"driver"`
	Server                string `json:"server" koanf:"server"`
	PingTimeoutExpression string `json:"ping_timeout" koanf:"ping_timeout"`
	OtelIdentifier        string `json:"otel_identifier" koanf:"otel_identifier"`
}

func (p Persistence) GetDebug() bool {
	return p.Debug
}

func (p Persistence) GetDriver() string {
	if p.Driver == "" {
		return "sqlite3"
	}
	return p.Driver
}

func (p Persistence) GetServer() string {
	return p.GetDSN()
}

func (p Persistence) GetDSN() string {
	if p.Server == "" {
		return "file:recipes.db?cache=shared&_pragma=foreign_keys(1)"
	}
	return p.Server
}

func (p Persistence) GetPingTimeout() time.Duration {
	if p.PingTimeoutExpression == "" {
		return 5 * time.Second
	}
	dur, err := time.ParseDuration(p.PingTimeoutExpression)
	if err != nil {
		panic(
			fmt.Sprintf("unable to parse time: expr %s", p.PingTimeoutExpression),
		)
	}
	return dur
}

func (p Persistence) GetOtelIdentifier() string {
	if p.OtelIdentifier == "" {
		return "go-recipes"
	}
	return p.OtelIdentifier
}

// MealDB holds the recipe catalog client options
type MealDB struct {
	BaseURL                  string `json:"base_url" koanf:"base_url"`
	RequestTimeoutExpression string `json:"request_timeout" koanf:"request_timeout"`
}

func (m MealDB) GetBaseURL() string {
	if m.BaseURL == "" {
		return "https://www.themealdb.com/api/json/v1/1"
	}
	return m.BaseURL
}

func (m MealDB) GetRequestTimeout() time.Duration {
	if m.RequestTimeoutExpression == "" {
		return 30 * time.Second
	}
	dur, err := time.ParseDuration(m.RequestTimeoutExpression)
	if err != nil {
		panic(
			fmt.Sprintf("unable to parse time: expr %s", m.RequestTimeoutExpression),
		)
	}
	return dur
}
