package recipes_test

import (
	"context"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-recipes"
	"github.com/goliatone/go-recipes/mealdb"
	"github.com/goliatone/go-router"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type stubSearcher struct {
	meals []mealdb.Meal
	err   error
	query string
}

func (s *stubSearcher) Search(ctx context.Context, name string) ([]mealdb.Meal, error) {
	s.query = name
	return s.meals, s.err
}

func newTestRecipeController(searcher recipes.RecipeSearcher) *recipes.RecipeController {
	return recipes.NewRecipeController(func(c *recipes.RecipeController) *recipes.RecipeController {
		c.Searcher = searcher
		return c
	})
}

func TestRecipeController_SearchShow(t *testing.T) {
	ctrl := newTestRecipeController(&stubSearcher{})

	svc, err := recipes.NewTokenService([]byte("test-secret"), 1, "test-app", nil, nil)
	require.NoError(t, err)

	identity := new(MockIdentity)
	identity.On("ID").Return("user-123")
	identity.On("Username").Return("alice")
	identity.On("Email").Return("alice@example.com")
	identity.On("Role").Return("member")

	token, err := svc.Generate(identity)
	require.NoError(t, err)

	claims, err := svc.Validate(token)
	require.NoError(t, err)

	ctx := router.NewMockContext()
	ctx.LocalsMock["user"] = claims

	var rendered router.ViewContext
	ctx.On("Render", "search", mock.Anything).Run(func(args mock.Arguments) {
		rendered = args.Get(1).(router.ViewContext)
	}).Return(nil)

	err = ctrl.SearchShow(ctx)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", rendered["email"])

	ctx.AssertExpectations(t)
}

func TestRecipeController_RecipeFetch(t *testing.T) {
	t.Run("missing recipe name", func(t *testing.T) {
		searcher := &stubSearcher{}
		ctrl := newTestRecipeController(searcher)

		ctx := router.NewMockContext()
		ctx.On("Status", fiber.StatusBadRequest).Return(ctx)

		var rendered router.ViewContext
		ctx.On("Render", "search", mock.Anything).Run(func(args mock.Arguments) {
			rendered = args.Get(1).(router.ViewContext)
		}).Return(nil)

		err := ctrl.RecipeFetch(ctx)
		require.NoError(t, err)

		errs, ok := rendered["errors"].(map[string]string)
		require.True(t, ok)
		assert.NotEmpty(t, errs["recipeName"])
		assert.Empty(t, searcher.query, "upstream should not be called without a name")

		ctx.AssertExpectations(t)
	})

	t.Run("renders matching recipes", func(t *testing.T) {
		searcher := &stubSearcher{
			meals: []mealdb.Meal{
				{
					ID:           "52771",
					Name:         "Spicy Arrabiata Penne",
					Category:     "Vegetarian",
					Area:         "Italian",
					Instructions: "Bring a large pot of water to a boil.",
					Thumbnail:    "https://www.themealdb.com/images/media/meals/arrabiata.jpg",
				},
			},
		}
		ctrl := newTestRecipeController(searcher)

		ctx := router.NewMockContext()
		ctx.QueriesM["recipeName"] = "Arrabiata"
		ctx.On("Context").Return(context.Background())

		var rendered router.ViewContext
		ctx.On("Render", "recipe", mock.Anything).Run(func(args mock.Arguments) {
			rendered = args.Get(1).(router.ViewContext)
		}).Return(nil)

		err := ctrl.RecipeFetch(ctx)
		require.NoError(t, err)

		assert.Equal(t, "Arrabiata", searcher.query)
		assert.Equal(t, "Arrabiata", rendered["query"])

		meals, ok := rendered["meals"].([]mealdb.Meal)
		require.True(t, ok)
		require.Len(t, meals, 1)
		assert.Equal(t, "Spicy Arrabiata Penne", meals[0].Name)

		ctx.AssertExpectations(t)
	})

	t.Run("no recipes renders an empty result page", func(t *testing.T) {
		searcher := &stubSearcher{err: mealdb.ErrNoRecipes}
		ctrl := newTestRecipeController(searcher)

		ctx := router.NewMockContext()
		ctx.QueriesM["recipeName"] = "xyzzy"
		ctx.On("Context").Return(context.Background())

		var rendered router.ViewContext
		ctx.On("Render", "recipe", mock.Anything).Run(func(args mock.Arguments) {
			rendered = args.Get(1).(router.ViewContext)
		}).Return(nil)

		err := ctrl.RecipeFetch(ctx)
		require.NoError(t, err)

		assert.Equal(t, "xyzzy", rendered["query"])
		assert.Nil(t, rendered["meals"])

		ctx.AssertExpectations(t)
	})

	t.Run("upstream failure goes through the error handler", func(t *testing.T) {
		searcher := &stubSearcher{
			err: errors.New("recipe search returned non success status", errors.CategoryExternal),
		}
		ctrl := newTestRecipeController(searcher)

		var handled error
		ctrl.ErrorHandler = func(c router.Context, err error) error {
			handled = err
			return nil
		}

		ctx := router.NewMockContext()
		ctx.QueriesM["recipeName"] = "Arrabiata"
		ctx.On("Context").Return(context.Background())

		err := ctrl.RecipeFetch(ctx)
		require.NoError(t, err)

		require.Error(t, handled)

		var richErr *errors.Error
		require.True(t, errors.As(handled, &richErr))
		assert.Equal(t, errors.CategoryExternal, richErr.Category)
	})
}
