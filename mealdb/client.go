// Package mealdb is a small client for TheMealDB recipe search API.
package mealdb

import (
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
)

const (
	// DefaultBaseURL is the public v1 API endpoint
	DefaultBaseURL = "https://www.themealdb.com/api/json/v1/1"

	defaultRequestTimeout = 30 * time.Second
	maxResponseBodyBytes  = 1 << 20
)

// ErrNoRecipes means the search succeeded but matched nothing. The API
// reports this as "meals": null, which is a valid empty result, not an
// upstream failure.
var ErrNoRecipes = errors.New("no recipes found", errors.CategoryNotFound).
	WithTextCode("NO_RECIPES")

// HTTPDoer lets tests swap the transport
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Meal is the subset of the API payload we render
type Meal struct {
	ID           string `json:"idMeal"`
	Name         string `json:"strMeal"`
	Category     string `json:"strCategory"`
	Area         string `json:"strArea"`
	Instructions string `json:"strInstructions"`
	Thumbnail    string `json:"strMealThumb"`
	YouTube      string `json:"strYoutube"`
}

type searchResponse struct {
	Meals []Meal `json:"meals"`
}

// Config holds client options
type Config struct {
	BaseURL        string
	RequestTimeout time.Duration
	HTTPClient     HTTPDoer
	Logger         glog.Logger
}

// Client talks to the recipe API
type Client struct {
	baseURL    string
	httpClient HTTPDoer
	logger     glog.Logger
}

// NewClient creates a recipe API client
func NewClient(cfg Config) *Client {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}

	logger := cfg.Logger
	if logger == nil {
		_, logger = glog.Resolve("mealdb", nil, nil)
	}

	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     logger,
	}
}

// Search looks up recipes by name. It returns ErrNoRecipes when the API
// has no match and a CategoryExternal error for transport or server
// failures; callers should never surface the latter's detail to users.
func (c *Client) Search(ctx context.Context, name string) ([]Meal, error) {
	if strings.TrimSpace(name) == "" {
		return nil, errors.New("recipe name must not be empty", errors.CategoryBadInput).
			WithCode(errors.CodeBadRequest)
	}

	endpoint := fmt.Sprintf("%s/search.php?s=%s", c.baseURL, url.QueryEscape(name))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to build recipe search request")
	}
	req.Header.Set("Accept", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("recipe search request failed", "error", err, "query", name)
		return nil, errors.Wrap(err, errors.CategoryExternal, "recipe search request failed")
	}
	defer res.Body.Close()

	if res.StatusCode < http.StatusOK || res.StatusCode >= http.StatusMultipleChoices {
		c.logger.Error("recipe search returned non success status", "status", res.StatusCode, "query", name)
		return nil, errors.New("recipe search returned non success status", errors.CategoryExternal).
			WithMetadata(map[string]any{"status": res.StatusCode})
	}

	body, err := io.ReadAll(io.LimitReader(res.Body, maxResponseBodyBytes+1))
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryExternal, "failed to read recipe search response")
	}

	if int64(len(body)) > maxResponseBodyBytes {
		return nil, errors.New("recipe search response too large", errors.CategoryExternal)
	}

	payload := searchResponse{}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, errors.Wrap(err, errors.CategoryExternal, "failed to decode recipe search response")
	}

	// "meals": null decodes to an empty slice
	if len(payload.Meals) == 0 {
		return nil, ErrNoRecipes
	}

	return payload.Meals, nil
}

// IsNoRecipes reports whether err means an empty search result
func IsNoRecipes(err error) bool {
	return err != nil && errors.Is(err, ErrNoRecipes)
}
