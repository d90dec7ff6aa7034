package service

import (
	"context"
	"errors"
	"unicode/utf8"

	"cookbook/internal/microservices/http-api/dto"
	"cookbook/internal/microservices/http-api/models"
	"cookbook/internal/microservices/http-api/repository"
	"cookbook/internal/normalize"

	"gorm.io/gorm"
)

// Resolver detects ingredient and unit names that duplicate an existing
// record through case, plural or synonym forms, and creates new records
// when nothing collides. A duplicate is always rejected with a
// ConflictError naming the record to reference instead.
type Resolver struct {
	synonyms *normalize.Table
}

func NewResolver(synonyms *normalize.Table) *Resolver {
	if synonyms == nil {
		synonyms = normalize.DefaultTable()
	}
	return &Resolver{synonyms: synonyms}
}

// IngredientConflict returns the first ingredient, by id, that name would
// duplicate. name must already be normalized.
func (r *Resolver) IngredientConflict(ctx context.Context, db *gorm.DB, name string, excludeID int64) (*ConflictError, error) {
	terms := r.synonyms.IngredientTerms(name)
	found, err := repository.NewIngredientRepo(db).FindFirstByTerms(ctx, terms, excludeID)
	if err != nil || found == nil {
		return nil, err
	}
	return &ConflictError{Entity: "ingredient", Field: "name", ID: found.ID, Name: found.Name, Terms: terms}, nil
}

// UnitConflict checks a normalized unit name or abbreviation against both
// columns of every other unit.
func (r *Resolver) UnitConflict(ctx context.Context, db *gorm.DB, term, field string, excludeID int64) (*ConflictError, error) {
	terms := r.synonyms.UnitTerms(term)
	found, err := repository.NewUnitRepo(db).FindFirstByTerms(ctx, terms, excludeID)
	if err != nil || found == nil {
		return nil, err
	}
	return &ConflictError{Entity: "unit", Field: field, ID: found.ID, Name: found.Name, Terms: terms}, nil
}

// CreateIngredient inserts a new ingredient inside tx unless its name
// duplicates an existing one.
func (r *Resolver) CreateIngredient(ctx context.Context, tx *gorm.DB, name string) (*models.Ingredient, error) {
	name = normalize.Ingredient(name)
	if err := repository.LockNames(ctx, tx, "ingredient"); err != nil {
		return nil, err
	}
	conflict, err := r.IngredientConflict(ctx, tx, name, 0)
	if err != nil {
		return nil, err
	}
	if conflict != nil {
		return nil, conflict
	}
	ing := &models.Ingredient{Name: name}
	if err := repository.NewIngredientRepo(tx).Create(ctx, ing); err != nil {
		return nil, uniqueConflict(err, "ingredient", "name", name)
	}
	return ing, nil
}

// CreateUnit inserts a new unit inside tx. With derive set and no
// abbreviation given, one is taken from the synonym table or the first
// letters of the name, and silently dropped if it would collide.
func (r *Resolver) CreateUnit(ctx context.Context, tx *gorm.DB, name, abbreviation string, derive bool) (*models.Unit, error) {
	name = normalize.Unit(name)
	abbr := normalize.Abbreviation(abbreviation)
	if err := repository.LockNames(ctx, tx, "unit"); err != nil {
		return nil, err
	}

	conflict, err := r.UnitConflict(ctx, tx, name, "name", 0)
	if err != nil {
		return nil, err
	}
	if conflict != nil {
		return nil, conflict
	}

	if abbr == "" && derive {
		abbr = r.DeriveAbbreviation(name)
		if abbr != "" {
			if conflict, err = r.UnitConflict(ctx, tx, abbr, "abbreviation", 0); err != nil {
				return nil, err
			}
			if conflict != nil {
				abbr = ""
			}
		}
	} else if abbr != "" {
		if conflict, err = r.UnitConflict(ctx, tx, abbr, "abbreviation", 0); err != nil {
			return nil, err
		}
		if conflict != nil {
			return nil, conflict
		}
	}

	u := &models.Unit{Name: name, Abbreviation: abbr}
	if err := repository.NewUnitRepo(tx).Create(ctx, u); err != nil {
		return nil, uniqueConflict(err, "unit", "name", name)
	}
	return u, nil
}

// DeriveAbbreviation picks an abbreviation for a unit created without one.
func (r *Resolver) DeriveAbbreviation(name string) string {
	name = normalize.Unit(name)
	if canonical, ok := r.synonyms.Canonical(name); ok {
		if abbr := r.synonyms.Abbreviation(canonical); abbr != name {
			return abbr
		}
		return ""
	}
	if utf8.RuneCountInString(name) <= 3 {
		return ""
	}
	return string([]rune(name)[:3])
}

// lineResolver turns recipe lines into ingredient and unit ids inside one
// transaction, reusing records it created earlier in the same request.
type lineResolver struct {
	r           *Resolver
	tx          *gorm.DB
	ingredients map[string]int64
	units       map[string]int64
}

func (r *Resolver) lines(tx *gorm.DB) *lineResolver {
	return &lineResolver{
		r:           r,
		tx:          tx,
		ingredients: make(map[string]int64),
		units:       make(map[string]int64),
	}
}

func (lr *lineResolver) ingredient(ctx context.Context, i int, l dto.IngredientLineInput, field func(int, string) string) (int64, error) {
	if l.IngredientID != nil {
		if _, err := repository.NewIngredientRepo(lr.tx).GetByID(ctx, *l.IngredientID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return 0, &ReferenceError{Entity: "ingredient", ID: *l.IngredientID, Field: field(i, "ingredient_id")}
			}
			return 0, err
		}
		return *l.IngredientID, nil
	}

	key := normalize.Ingredient(l.IngredientName)
	if id, ok := lr.ingredients[key]; ok {
		return id, nil
	}
	ing, err := lr.r.CreateIngredient(ctx, lr.tx, l.IngredientName)
	if err != nil {
		var conflict *ConflictError
		if errors.As(err, &conflict) {
			conflict.Field = field(i, "ingredient_name")
		}
		return 0, err
	}
	lr.ingredients[key] = ing.ID
	return ing.ID, nil
}

func (lr *lineResolver) unit(ctx context.Context, i int, l dto.IngredientLineInput, field func(int, string) string) (int64, error) {
	if l.UnitID != nil {
		if _, err := repository.NewUnitRepo(lr.tx).GetByID(ctx, *l.UnitID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return 0, &ReferenceError{Entity: "unit", ID: *l.UnitID, Field: field(i, "unit_id")}
			}
			return 0, err
		}
		return *l.UnitID, nil
	}

	key := normalize.Unit(l.UnitName)
	if canonical, ok := lr.r.synonyms.Canonical(key); ok {
		key = canonical
	}
	if id, ok := lr.units[key]; ok {
		return id, nil
	}
	u, err := lr.r.CreateUnit(ctx, lr.tx, l.UnitName, "", true)
	if err != nil {
		var conflict *ConflictError
		if errors.As(err, &conflict) {
			conflict.Field = field(i, "unit_name")
		}
		return 0, err
	}
	lr.units[key] = u.ID
	return u.ID, nil
}
