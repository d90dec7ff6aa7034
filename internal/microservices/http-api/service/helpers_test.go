package service

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"io/fs"
	"path/filepath"
	"testing"

	"cookbook/internal/microservices/http-api/dto"
	"cookbook/internal/storage"
	"cookbook/internal/testutil"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type testEnv struct {
	db          *gorm.DB
	store       *storage.LocalStore
	resolver    *Resolver
	images      *ImageService
	dishes      DishService
	ingredients IngredientService
	units       UnitService
	lines       DishIngredientService
	groceries   GroceryService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := testutil.NewDB(t)
	store, err := storage.NewLocalStore(t.TempDir(), "/media/")
	require.NoError(t, err)

	resolver := NewResolver(nil)
	images := NewImageService(store, nil, 0)
	return &testEnv{
		db:          db,
		store:       store,
		resolver:    resolver,
		images:      images,
		dishes:      NewDishService(db, resolver, images, nil, nil),
		ingredients: NewIngredientService(db, resolver, nil, nil),
		units:       NewUnitService(db, resolver, nil, nil),
		lines:       NewDishIngredientService(db, resolver, nil, nil),
		groceries:   NewGroceryService(db, nil),
	}
}

func ptr[T any](v T) *T { return &v }

func pngBytes(t testing.TB, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{R: 200, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func pngUpload(t testing.TB, name string) *Upload {
	data := pngBytes(t, 4, 4)
	return &Upload{Filename: name, ContentType: "image/png", Size: int64(len(data)), Data: data}
}

func (e *testEnv) exists(t *testing.T, key string) bool {
	t.Helper()
	ok, err := e.store.Exists(t.Context(), key)
	require.NoError(t, err)
	return ok
}

// walkKeys collects the key of every file in the store.
func walkKeys(e *testEnv, keys *[]string) error {
	root := e.store.Root()
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		*keys = append(*keys, filepath.ToSlash(rel))
		return nil
	})
}

// basicDish is a valid payload with one new ingredient, one new unit and
// two steps.
func basicDish(name string) dto.DishInput {
	return dto.DishInput{
		Name:        ptr(name),
		Description: ptr("A test dish"),
		PrepTime:    ptr(10),
		CookTime:    ptr(20),
		Ingredients: []dto.IngredientLineInput{
			{IngredientName: "Flour", UnitName: "grams", Quantity: 250},
		},
		Steps: []dto.StepInput{
			{StepNumber: 1, Instruction: "Mix"},
			{StepNumber: 2, Instruction: "Bake"},
		},
	}
}

func requireValidation(t *testing.T, err error) *ValidationError {
	t.Helper()
	var v *ValidationError
	require.ErrorAs(t, err, &v)
	return v
}

func requireConflict(t *testing.T, err error) *ConflictError {
	t.Helper()
	var c *ConflictError
	require.ErrorAs(t, err, &c)
	return c
}
