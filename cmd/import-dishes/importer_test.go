package main

import (
	"context"
	"errors"
	"testing"

	"cookbook/internal/microservices/http-api/dto"
	"cookbook/internal/microservices/http-api/models"
	"cookbook/internal/microservices/http-api/repository"
	"cookbook/internal/microservices/http-api/service"
	"cookbook/internal/storage"
	"cookbook/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const sample = `
dishes:
  - name: Pancakes
    description: Sunday breakfast
    prep_time: 10
    cook_time: 15
    ingredients:
      - {name: Flour, quantity: 200, unit: grams}
      - {name: Eggs, quantity: 2, unit: pieces}
    steps:
      - Whisk everything
      - Fry in butter
  - name: ""
    cook_time: 5
  - name: Crepes
    prep_time: 5
    cook_time: 20
    ingredients:
      - {name: flour, quantity: 125, unit: gram}
      - {name: Milk, quantity: 250, unit: ml}
    steps: [Rest the batter, Cook thin]
`

func TestParseRecipes(t *testing.T) {
	recipes, err := parseRecipes([]byte(sample))
	require.NoError(t, err)
	require.Len(t, recipes, 3)

	in := recipes[0].input()
	assert.Equal(t, "Pancakes", *in.Name)
	assert.Equal(t, 10, *in.PrepTime)
	require.Len(t, in.Ingredients, 2)
	assert.Equal(t, "grams", in.Ingredients[0].UnitName)
	assert.Equal(t, 2.0, in.Ingredients[1].Quantity)
	assert.Equal(t, []dto.StepInput{
		{StepNumber: 1, Instruction: "Whisk everything"},
		{StepNumber: 2, Instruction: "Fry in butter"},
	}, in.Steps)

	_, err = parseRecipes([]byte("dishes: [unclosed"))
	assert.Error(t, err)
}

func TestImporterRun(t *testing.T) {
	db := testutil.NewDB(t)
	store, err := storage.NewLocalStore(t.TempDir(), "/media/")
	require.NoError(t, err)
	dishes := service.NewDishService(db, service.NewResolver(nil),
		service.NewImageService(store, zap.NewNop(), 0), nil, zap.NewNop())

	recipes, err := parseRecipes([]byte(sample))
	require.NoError(t, err)

	im := &importer{dishes: dishes, log: zap.NewNop()}
	res, err := im.Run(t.Context(), recipes)
	require.NoError(t, err)
	assert.Equal(t, importResult{Imported: 2, Skipped: 1}, res)

	list, err := dishes.List(t.Context(), repository.DishFilter{Search: "pancake"})
	require.NoError(t, err)
	require.Len(t, list, 1)

	d, err := dishes.Get(t.Context(), list[0].ID)
	require.NoError(t, err)
	assert.Equal(t, 25, d.TotalTime())
	require.Len(t, d.Ingredients, 2)
	require.Len(t, d.Steps, 2)

	// crepes reuse the flour and gram rows created for pancakes
	var ingredients, units int64
	require.NoError(t, db.Model(&models.Ingredient{}).Count(&ingredients).Error)
	require.NoError(t, db.Model(&models.Unit{}).Count(&units).Error)
	assert.EqualValues(t, 3, ingredients)
	assert.EqualValues(t, 3, units)
}

type failingDishes struct {
	service.DishService
	mock.Mock
}

func (f *failingDishes) Create(ctx context.Context, in dto.DishInput, uploads *service.DishImages) (*models.Dish, error) {
	args := f.Called(*in.Name)
	return nil, args.Error(0)
}

func TestImporterRun_StopsOnStoreFailure(t *testing.T) {
	boom := errors.New("connection reset")
	dishes := &failingDishes{}
	dishes.On("Create", "Pancakes").Return(boom).Once()

	recipes, err := parseRecipes([]byte(sample))
	require.NoError(t, err)

	im := &importer{dishes: dishes, log: zap.NewNop()}
	res, err := im.Run(t.Context(), recipes)

	assert.ErrorIs(t, err, boom)
	assert.Zero(t, res.Imported)
	dishes.AssertExpectations(t)
}

func TestReuse_PointsLineAtExistingRow(t *testing.T) {
	lines := []dto.IngredientLineInput{
		{IngredientName: "Flour", UnitName: "grams", Quantity: 100},
		{IngredientName: "Salt", UnitName: "pinch", Quantity: 1},
	}

	ok := reuse(lines, &service.ConflictError{Entity: "ingredient", Field: "ingredients[0].ingredient_name", ID: 7})
	require.True(t, ok)
	assert.Equal(t, int64(7), *lines[0].IngredientID)
	assert.Empty(t, lines[0].IngredientName)
	assert.Equal(t, "grams", lines[0].UnitName)

	ok = reuse(lines, &service.ConflictError{Entity: "unit", Field: "ingredients[1].unit_name", ID: 3})
	require.True(t, ok)
	assert.Equal(t, int64(3), *lines[1].UnitID)
	assert.Empty(t, lines[1].UnitName)

	// already pointed at a row, or not a line at all
	assert.False(t, reuse(lines, &service.ConflictError{Entity: "ingredient", Field: "ingredients[0].ingredient_name", ID: 9}))
	assert.False(t, reuse(lines, &service.ConflictError{Entity: "dish", Field: "name", ID: 1}))
}
