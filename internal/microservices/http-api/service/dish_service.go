package service

import (
	"context"
	"fmt"
	"strings"

	"cookbook/internal/cache"
	"cookbook/internal/microservices/http-api/dto"
	"cookbook/internal/microservices/http-api/models"
	"cookbook/internal/microservices/http-api/repository"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DishImages are the files uploaded alongside a dish payload. Steps is
// keyed by step number.
type DishImages struct {
	Dish  *Upload
	Steps map[int]*Upload
}

func (u *DishImages) empty() bool {
	return u == nil || (u.Dish == nil && len(u.Steps) == 0)
}

type DishService interface {
	List(ctx context.Context, f repository.DishFilter) ([]models.Dish, error)
	Get(ctx context.Context, id int64) (*models.Dish, error)
	// Create writes the dish, its recipe lines and its steps in one
	// transaction. Nothing is persisted when any part fails.
	Create(ctx context.Context, in dto.DishInput, uploads *DishImages) (*models.Dish, error)
	// Update applies in to the dish. full requires every scalar field, as
	// a PUT does; otherwise only the given fields change.
	Update(ctx context.Context, id int64, in dto.DishInput, uploads *DishImages, full bool) (*models.Dish, error)
	Delete(ctx context.Context, id int64) error
	BulkDelete(ctx context.Context, ids []int64) (int64, error)
	SetImage(ctx context.Context, id int64, u *Upload) (*models.Dish, error)
	RemoveImage(ctx context.Context, id int64) (*models.Dish, error)
	SetStepImage(ctx context.Context, dishID int64, stepNumber int, u *Upload) (*models.CookingStep, error)
	ImageURL(key string) string
}

type dishService struct {
	db       *gorm.DB
	dishes   *repository.DishRepo
	resolver *Resolver
	images   *ImageService
	cache    *cache.DishCache
	log      *zap.Logger
}

func NewDishService(db *gorm.DB, resolver *Resolver, images *ImageService, dishCache *cache.DishCache, log *zap.Logger) DishService {
	if log == nil {
		log = zap.NewNop()
	}
	return &dishService{
		db:       db,
		dishes:   repository.NewDishRepo(db),
		resolver: resolver,
		images:   images,
		cache:    dishCache,
		log:      log.Named("dishes"),
	}
}

func (s *dishService) List(ctx context.Context, f repository.DishFilter) ([]models.Dish, error) {
	f.Search = strings.ToLower(strings.TrimSpace(f.Search))
	return s.dishes.List(ctx, f)
}

func (s *dishService) Get(ctx context.Context, id int64) (*models.Dish, error) {
	var cached models.Dish
	hit, err := s.cache.Get(ctx, id, &cached)
	if err != nil {
		s.log.Warn("dish cache read failed", zap.Int64("dish_id", id), zap.Error(err))
	}
	if hit {
		return &cached, nil
	}

	d, err := s.dishes.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	if err := s.cache.Set(ctx, id, d); err != nil {
		s.log.Warn("dish cache write failed", zap.Int64("dish_id", id), zap.Error(err))
	}
	return d, nil
}

func (s *dishService) ImageURL(key string) string {
	return s.images.URL(key)
}

func (s *dishService) Create(ctx context.Context, in dto.DishInput, uploads *DishImages) (*models.Dish, error) {
	v := ValidateDish(in, nil, true)
	validateUploads(v, in.Steps, uploads, nil)
	if err := v.Err(); err != nil {
		return nil, err
	}

	stored, err := s.storeUploads(ctx, uploads)
	if err != nil {
		return nil, err
	}

	var id int64
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dishes := s.dishes.WithTx(tx)
		name := strings.TrimSpace(*in.Name)
		if err := checkDishName(ctx, dishes, name, 0); err != nil {
			return err
		}

		d := &models.Dish{
			Name:     name,
			PrepTime: *in.PrepTime,
			CookTime: *in.CookTime,
			Image:    stored.dish,
		}
		if in.Description != nil {
			d.Description = strings.TrimSpace(*in.Description)
		}
		if err := dishes.Create(ctx, d); err != nil {
			return dishNameTaken(err)
		}

		if err := s.writeLines(ctx, tx, d.ID, in.Ingredients); err != nil {
			return err
		}
		if err := writeSteps(ctx, tx, d.ID, in.Steps, stepImageKeys(in.Steps, stored.steps)); err != nil {
			return err
		}
		id = d.ID
		return nil
	})
	if err != nil {
		s.images.Discard(ctx, stored.keys()...)
		return nil, err
	}

	return s.Get(ctx, id)
}

func (s *dishService) Update(ctx context.Context, id int64, in dto.DishInput, uploads *DishImages, full bool) (*models.Dish, error) {
	current, err := s.dishes.GetForUpdate(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}

	v := ValidateDish(in, current, full)
	validateUploads(v, in.Steps, uploads, current.Steps)
	if err := v.Err(); err != nil {
		return nil, err
	}

	stored, err := s.storeUploads(ctx, uploads)
	if err != nil {
		return nil, err
	}

	var released []string
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dishes := s.dishes.WithTx(tx)
		cur, err := dishes.GetForUpdate(ctx, id)
		if err != nil {
			return notFound(err)
		}

		fields := map[string]any{}
		if in.Name != nil {
			name := strings.TrimSpace(*in.Name)
			if err := checkDishName(ctx, dishes, name, id); err != nil {
				return err
			}
			fields["name"] = name
		}
		if in.Description != nil {
			fields["description"] = strings.TrimSpace(*in.Description)
		}
		prep, cook := cur.PrepTime, cur.CookTime
		if in.PrepTime != nil {
			prep = *in.PrepTime
			fields["prep_time"] = prep
		}
		if in.CookTime != nil {
			cook = *in.CookTime
			fields["cook_time"] = cook
		}
		if prep+cook > models.MaxTotalTime {
			return fieldError("cook_time", fmt.Sprintf("Total cooking time exceeds 4 hours (%d minutes): %d minutes given.", models.MaxTotalTime, prep+cook))
		}

		switch {
		case stored.dish != "":
			fields["image"] = stored.dish
			released = appendKey(released, cur.Image)
		case in.RemoveImage && cur.Image != "":
			fields["image"] = ""
			released = appendKey(released, cur.Image)
		}

		if err := dishes.UpdateFields(ctx, id, fields); err != nil {
			return dishNameTaken(err)
		}

		if in.Ingredients != nil {
			if err := repository.NewDishIngredientRepo(tx).DeleteByDish(ctx, id); err != nil {
				return err
			}
			if err := s.writeLines(ctx, tx, id, in.Ingredients); err != nil {
				return err
			}
		}

		steps := repository.NewCookingStepRepo(tx)
		if in.Steps != nil {
			images := stepImageKeys(in.Steps, stored.steps)
			kept := make(map[string]bool, len(images))
			for _, key := range images {
				kept[key] = true
			}
			for _, old := range cur.Steps {
				if old.Image != "" && !kept[old.Image] {
					released = append(released, old.Image)
				}
			}
			if err := steps.DeleteByDish(ctx, id); err != nil {
				return err
			}
			return writeSteps(ctx, tx, id, in.Steps, images)
		}

		// steps untouched: uploads replace the images of existing steps
		for _, old := range cur.Steps {
			key, ok := stored.steps[old.StepNumber]
			if !ok {
				continue
			}
			if err := steps.SetImage(ctx, old.ID, key); err != nil {
				return err
			}
			released = appendKey(released, old.Image)
		}
		return nil
	})
	if err != nil {
		s.images.Discard(ctx, stored.keys()...)
		return nil, err
	}

	s.images.Discard(ctx, released...)
	s.invalidate(ctx, id)
	return s.Get(ctx, id)
}

func (s *dishService) Delete(ctx context.Context, id int64) error {
	n, err := s.BulkDelete(ctx, []int64{id})
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// BulkDelete removes the existing dishes among ids along with their lines,
// steps and images. Unknown ids are skipped.
func (s *dishService) BulkDelete(ctx context.Context, ids []int64) (int64, error) {
	var (
		released []string
		deleted  int64
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dishes := s.dishes.WithTx(tx)
		found, err := dishes.FindByIDs(ctx, ids)
		if err != nil {
			return err
		}
		if len(found) == 0 {
			return nil
		}
		foundIDs := make([]int64, 0, len(found))
		for _, d := range found {
			foundIDs = append(foundIDs, d.ID)
			released = append(released, d.ImageKeys()...)
		}
		deleted, err = dishes.Delete(ctx, foundIDs...)
		return err
	})
	if err != nil {
		return 0, err
	}

	s.images.Discard(ctx, released...)
	s.invalidate(ctx, ids...)
	if deleted > 0 {
		s.log.Info("deleted dishes", zap.Int64s("requested", ids), zap.Int64("deleted", deleted))
	}
	return deleted, nil
}

func (s *dishService) SetImage(ctx context.Context, id int64, u *Upload) (*models.Dish, error) {
	v := &ValidationError{}
	ValidateImage(v, "image", u)
	if err := v.Err(); err != nil {
		return nil, err
	}
	key, err := s.images.Store(ctx, DishImagePrefix, u)
	if err != nil {
		return nil, err
	}

	var old string
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dishes := s.dishes.WithTx(tx)
		cur, err := dishes.GetForUpdate(ctx, id)
		if err != nil {
			return notFound(err)
		}
		old = cur.Image
		return dishes.UpdateFields(ctx, id, map[string]any{"image": key})
	})
	if err != nil {
		s.images.Discard(ctx, key)
		return nil, err
	}

	s.images.Discard(ctx, old)
	s.invalidate(ctx, id)
	return s.Get(ctx, id)
}

func (s *dishService) RemoveImage(ctx context.Context, id int64) (*models.Dish, error) {
	var old string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dishes := s.dishes.WithTx(tx)
		cur, err := dishes.GetForUpdate(ctx, id)
		if err != nil {
			return notFound(err)
		}
		if cur.Image == "" {
			return nil
		}
		old = cur.Image
		return dishes.UpdateFields(ctx, id, map[string]any{"image": ""})
	})
	if err != nil {
		return nil, err
	}

	s.images.Discard(ctx, old)
	s.invalidate(ctx, id)
	return s.Get(ctx, id)
}

func (s *dishService) SetStepImage(ctx context.Context, dishID int64, stepNumber int, u *Upload) (*models.CookingStep, error) {
	v := &ValidationError{}
	ValidateImage(v, "image", u)
	if err := v.Err(); err != nil {
		return nil, err
	}
	key, err := s.images.Store(ctx, StepImagePrefix, u)
	if err != nil {
		return nil, err
	}

	var (
		step *models.CookingStep
		old  string
	)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		steps := repository.NewCookingStepRepo(tx)
		var err error
		step, err = steps.GetByNumber(ctx, dishID, stepNumber)
		if err != nil {
			return notFound(err)
		}
		old = step.Image
		if err := steps.SetImage(ctx, step.ID, key); err != nil {
			return err
		}
		step.Image = key
		return nil
	})
	if err != nil {
		s.images.Discard(ctx, key)
		return nil, err
	}

	s.images.Discard(ctx, old)
	s.invalidate(ctx, dishID)
	return step, nil
}

func (s *dishService) invalidate(ctx context.Context, ids ...int64) {
	if err := s.cache.Invalidate(ctx, ids...); err != nil {
		s.log.Warn("dish cache invalidation failed", zap.Int64s("dish_ids", ids), zap.Error(err))
	}
}

// writeLines resolves and inserts the recipe lines of a dish.
func (s *dishService) writeLines(ctx context.Context, tx *gorm.DB, dishID int64, in []dto.IngredientLineInput) error {
	lr := s.resolver.lines(tx)
	repo := repository.NewDishIngredientRepo(tx)
	seen := make(map[int64]int, len(in))
	v := &ValidationError{}

	for i, l := range in {
		ingredientID, err := lr.ingredient(ctx, i, l, lineField)
		if err != nil {
			return err
		}
		unitID, err := lr.unit(ctx, i, l, lineField)
		if err != nil {
			return err
		}
		if first, dup := seen[ingredientID]; dup {
			v.Addf(lineField(i, "ingredient"), "This ingredient is already listed on line %d.", first+1)
			continue
		}
		seen[ingredientID] = i

		line := &models.DishIngredient{
			DishID:       dishID,
			IngredientID: ingredientID,
			Quantity:     roundQuantity(l.Quantity),
			UnitID:       unitID,
		}
		if err := repo.Create(ctx, line); err != nil {
			if repository.IsUniqueViolation(err) {
				v.Add(lineField(i, "ingredient"), "This ingredient is already listed for the dish.")
				continue
			}
			return err
		}
	}
	return v.Err()
}

func writeSteps(ctx context.Context, tx *gorm.DB, dishID int64, in []dto.StepInput, images map[int]string) error {
	repo := repository.NewCookingStepRepo(tx)
	for i, st := range in {
		step := &models.CookingStep{
			DishID:      dishID,
			StepNumber:  st.StepNumber,
			Instruction: strings.TrimSpace(st.Instruction),
			Image:       images[st.StepNumber],
		}
		if err := repo.Create(ctx, step); err != nil {
			if repository.IsUniqueViolation(err) {
				return fieldError(fmt.Sprintf("steps[%d].step_number", i), "Step numbers must be unique within a dish.")
			}
			return err
		}
	}
	return nil
}

// validateUploads checks uploaded files and the image keys steps ask to
// keep. existing holds the dish's current steps on update.
func validateUploads(v *ValidationError, steps []dto.StepInput, uploads *DishImages, existing []models.CookingStep) {
	known := make(map[string]bool, len(existing))
	numbers := make(map[int]bool, len(existing))
	for _, st := range existing {
		if st.Image != "" {
			known[st.Image] = true
		}
		numbers[st.StepNumber] = true
	}
	if steps != nil {
		numbers = make(map[int]bool, len(steps))
		for i, st := range steps {
			numbers[st.StepNumber] = true
			if st.ImageKey != "" && !known[st.ImageKey] {
				v.Add(fmt.Sprintf("steps[%d].image_key", i), "Unknown image for this dish.")
			}
		}
	}

	if uploads == nil {
		return
	}
	if uploads.Dish != nil {
		ValidateImage(v, "image", uploads.Dish)
	}
	for n, u := range uploads.Steps {
		field := fmt.Sprintf("step_image_%d", n)
		if !numbers[n] {
			v.Add(field, "No step with this number.")
			continue
		}
		ValidateImage(v, field, u)
	}
}

type storedUploads struct {
	dish  string
	steps map[int]string
}

func (s storedUploads) keys() []string {
	keys := make([]string, 0, len(s.steps)+1)
	keys = appendKey(keys, s.dish)
	for _, k := range s.steps {
		keys = append(keys, k)
	}
	return keys
}

// storeUploads writes every upload before the transaction opens. On error
// the files already written are removed.
func (s *dishService) storeUploads(ctx context.Context, uploads *DishImages) (storedUploads, error) {
	out := storedUploads{steps: map[int]string{}}
	if uploads.empty() {
		return out, nil
	}
	if uploads.Dish != nil {
		key, err := s.images.Store(ctx, DishImagePrefix, uploads.Dish)
		if err != nil {
			return out, err
		}
		out.dish = key
	}
	for n, u := range uploads.Steps {
		key, err := s.images.Store(ctx, StepImagePrefix, u)
		if err != nil {
			s.images.Discard(ctx, out.keys()...)
			return storedUploads{}, err
		}
		out.steps[n] = key
	}
	return out, nil
}

// stepImageKeys picks each step's image: a fresh upload wins over a kept
// key.
func stepImageKeys(steps []dto.StepInput, uploaded map[int]string) map[int]string {
	images := make(map[int]string, len(steps))
	for _, st := range steps {
		if key, ok := uploaded[st.StepNumber]; ok {
			images[st.StepNumber] = key
		} else if st.ImageKey != "" {
			images[st.StepNumber] = st.ImageKey
		}
	}
	return images
}

func checkDishName(ctx context.Context, dishes *repository.DishRepo, name string, excludeID int64) error {
	taken, err := dishes.NameTaken(ctx, name, excludeID)
	if err != nil {
		return err
	}
	if taken {
		return fieldError("name", "A dish with this name already exists.")
	}
	return nil
}

func dishNameTaken(err error) error {
	if repository.IsUniqueViolation(err) {
		return fieldError("name", "A dish with this name already exists.")
	}
	return notFound(err)
}

func appendKey(keys []string, key string) []string {
	if key == "" {
		return keys
	}
	return append(keys, key)
}
