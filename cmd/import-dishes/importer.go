package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cookbook/internal/microservices/http-api/dto"
	"cookbook/internal/microservices/http-api/models"
	"cookbook/internal/microservices/http-api/service"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// recipeFile is the layout of an import file.
type recipeFile struct {
	Dishes []recipe `yaml:"dishes"`
}

type recipe struct {
	Name        string       `yaml:"name"`
	Description string       `yaml:"description"`
	PrepTime    int          `yaml:"prep_time"`
	CookTime    int          `yaml:"cook_time"`
	Ingredients []recipeLine `yaml:"ingredients"`
	Steps       []string     `yaml:"steps"`
}

type recipeLine struct {
	Name     string  `yaml:"name"`
	Quantity float64 `yaml:"quantity"`
	Unit     string  `yaml:"unit"`
}

type importResult struct {
	Imported int
	Skipped  int
}

type importer struct {
	dishes service.DishService
	log    *zap.Logger
}

func parseRecipes(data []byte) ([]recipe, error) {
	var f recipeFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse recipes: %w", err)
	}
	return f.Dishes, nil
}

func (r recipe) input() dto.DishInput {
	name, desc := r.Name, r.Description
	prep, cook := r.PrepTime, r.CookTime
	in := dto.DishInput{
		Name:        &name,
		Description: &desc,
		PrepTime:    &prep,
		CookTime:    &cook,
		Ingredients: make([]dto.IngredientLineInput, 0, len(r.Ingredients)),
		Steps:       make([]dto.StepInput, 0, len(r.Steps)),
	}
	for _, l := range r.Ingredients {
		in.Ingredients = append(in.Ingredients, dto.IngredientLineInput{
			IngredientName: l.Name,
			UnitName:       l.Unit,
			Quantity:       l.Quantity,
		})
	}
	for i, s := range r.Steps {
		in.Steps = append(in.Steps, dto.StepInput{StepNumber: i + 1, Instruction: s})
	}
	return in
}

// Run creates each recipe as its own dish. Recipes that fail validation or
// clash with an existing dish are skipped; any other error stops the run.
func (im *importer) Run(ctx context.Context, recipes []recipe) (importResult, error) {
	var res importResult
	for i, r := range recipes {
		d, err := im.create(ctx, r.input())
		if err != nil {
			var verr *service.ValidationError
			var cerr *service.ConflictError
			if errors.As(err, &verr) || errors.As(err, &cerr) {
				im.log.Warn("skipping dish",
					zap.Int("index", i),
					zap.String("name", r.Name),
					zap.Error(err),
				)
				res.Skipped++
				continue
			}
			return res, fmt.Errorf("import %q: %w", r.Name, err)
		}
		im.log.Info("imported dish", zap.Int64("id", d.ID), zap.String("name", d.Name))
		res.Imported++
	}
	return res, nil
}

// create retries in after pointing every line whose name clashes with an
// existing ingredient or unit at that row.
func (im *importer) create(ctx context.Context, in dto.DishInput) (*models.Dish, error) {
	for range 2*len(in.Ingredients) + 1 {
		d, err := im.dishes.Create(ctx, in, nil)
		var conflict *service.ConflictError
		if err == nil || !errors.As(err, &conflict) || !reuse(in.Ingredients, conflict) {
			return d, err
		}
	}
	return nil, fmt.Errorf("could not resolve ingredient lines of %q", *in.Name)
}

func reuse(lines []dto.IngredientLineInput, c *service.ConflictError) bool {
	var i int
	var field string
	if _, err := fmt.Sscanf(c.Field, "ingredients[%d].%s", &i, &field); err != nil || i < 0 || i >= len(lines) {
		return false
	}
	id := c.ID
	switch {
	case c.Entity == "ingredient" && strings.HasPrefix(field, "ingredient") && lines[i].IngredientID == nil:
		lines[i].IngredientID = &id
		lines[i].IngredientName = ""
	case c.Entity == "unit" && strings.HasPrefix(field, "unit") && lines[i].UnitID == nil:
		lines[i].UnitID = &id
		lines[i].UnitName = ""
	default:
		return false
	}
	return true
}
