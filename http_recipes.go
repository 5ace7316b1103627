package recipes

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-recipes/mealdb"
	"github.com/goliatone/go-router"
)

// RecipeSearcher finds recipes by name in an upstream catalog
type RecipeSearcher interface {
	Search(ctx context.Context, name string) ([]mealdb.Meal, error)
}

// RegisterRecipeRoutes mounts the recipe search and fetch routes behind
// the given auth middleware.
func RegisterRecipeRoutes[T any](app router.Router[T], protected router.MiddlewareFunc, opts ...RecipeControllerOption) {

	controller := NewRecipeController(opts...)

	app.Get(controller.Routes.Search, controller.SearchShow, protected).
		SetName("recipe-search.get")

	app.Get(controller.Routes.Fetch, controller.RecipeFetch, protected).
		SetName("recipe-fetch.get")
}

type RecipeControllerRoutes struct {
	Search string
	Fetch  string
}

type RecipeControllerViews struct {
	Search string
	Recipe string
}

type RecipeController struct {
	Logger       Logger
	Searcher     RecipeSearcher
	Routes       *RecipeControllerRoutes
	Views        *RecipeControllerViews
	ErrorHandler router.ErrorHandler
	// ContextKey is where the auth middleware stashes validated claims
	ContextKey string
}

type RecipeControllerOption func(*RecipeController) *RecipeController

func NewRecipeController(opts ...RecipeControllerOption) *RecipeController {
	c := &RecipeController{
		Logger:       defaultLogger(),
		ErrorHandler: defaultErrHandler,
		ContextKey:   "user",
		Routes: &RecipeControllerRoutes{
			Search: "/search-recipe",
			Fetch:  "/fetch-recipe",
		},
		Views: &RecipeControllerViews{
			Search: "search",
			Recipe: "recipe",
		},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Searcher == nil {
		panic("Missing RecipeSearcher in recipe controller...")
	}

	return c
}

// WithLogger replaces the default logger
func (r *RecipeController) WithLogger(logger Logger) *RecipeController {
	if logger != nil {
		r.Logger = logger
	}
	return r
}

func (r *RecipeController) SearchShow(ctx router.Context) error {
	data := router.ViewContext{
		"errors": nil,
	}

	if session, err := GetRouterSession(ctx, r.ContextKey); err == nil {
		data["email"] = session.GetEmail()
	}

	return ctx.Render(r.Views.Search, data)
}

func (r *RecipeController) RecipeFetch(ctx router.Context) error {
	name := strings.TrimSpace(ctx.Query("recipeName", ""))

	if name == "" {
		return ctx.Status(fiber.StatusBadRequest).Render(r.Views.Search, router.ViewContext{
			"errors": map[string]string{
				"recipeName": "Recipe name is required",
			},
		})
	}

	meals, err := r.Searcher.Search(ctx.Context(), name)
	if err != nil {
		if mealdb.IsNoRecipes(err) {
			return ctx.Render(r.Views.Recipe, router.ViewContext{
				"query": name,
				"meals": nil,
			})
		}

		r.Logger.Error("recipe search failed", "error", err, "query", name)
		return r.ErrorHandler(ctx, errors.Wrap(err, errors.CategoryExternal, "recipe catalog unavailable").
			WithCode(errors.CodeInternal))
	}

	return ctx.Render(r.Views.Recipe, router.ViewContext{
		"query": name,
		"meals": meals,
	})
}
