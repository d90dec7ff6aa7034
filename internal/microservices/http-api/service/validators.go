package service

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"path/filepath"
	"slices"
	"strings"
	"unicode/utf8"

	_ "golang.org/x/image/webp"

	"cookbook/internal/microservices/http-api/dto"
	"cookbook/internal/microservices/http-api/models"
	"cookbook/internal/normalize"
)

const (
	MaxImageBytes = 5 << 20
	MaxImageSide  = 3000

	maxDishName       = 100
	maxIngredientName = 100
	maxGroceryName    = 100
	maxUnitName       = 20
	maxAbbreviation   = 10
	maxMinutes        = 1440

	// decimal(10,2) holds at most eight integer digits
	maxQuantity = 1e8
)

var allowedImageExt = []string{"jpg", "jpeg", "png", "webp"}

const msgRequired = "This field is required."

// Upload is an image file received with a request.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Data        []byte
}

// ValidateImage checks extension, size and pixel dimensions, reporting
// each violation separately under field.
func ValidateImage(v *ValidationError, field string, u *Upload) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(u.Filename), "."))
	if !slices.Contains(allowedImageExt, ext) {
		v.Addf(field, "File extension %q is not allowed. Allowed extensions are: %s.", ext, strings.Join(allowedImageExt, ", "))
	}

	size := u.Size
	if size == 0 {
		size = int64(len(u.Data))
	}
	if size > MaxImageBytes {
		v.Addf(field, "Max image size is %dMB. Your file is %.1fMB.", MaxImageBytes>>20, float64(size)/(1<<20))
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(u.Data))
	if err != nil {
		v.Add(field, "Upload a valid image. The file you uploaded was either not an image or a corrupted image.")
		return
	}
	if cfg.Width > MaxImageSide || cfg.Height > MaxImageSide {
		v.Addf(field, "Max resolution is %dx%dpx. Your image is %dx%dpx.", MaxImageSide, MaxImageSide, cfg.Width, cfg.Height)
	}
}

// ValidateDish checks a dish payload. current is the stored dish on
// update and nil on create; full requires every scalar field.
func ValidateDish(in dto.DishInput, current *models.Dish, full bool) *ValidationError {
	v := &ValidationError{}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		switch {
		case name == "":
			v.Add("name", msgRequired)
		case utf8.RuneCountInString(name) > maxDishName:
			v.Addf("name", "Ensure this field has no more than %d characters.", maxDishName)
		}
	} else if full {
		v.Add("name", msgRequired)
	}

	if in.PrepTime != nil {
		if *in.PrepTime < 1 {
			v.Add("prep_time", "Prep time must be at least 1 minute.")
		} else if *in.PrepTime > maxMinutes {
			v.Add("prep_time", "Prep time cannot exceed 24 hours.")
		}
	} else if full {
		v.Add("prep_time", "Prep time is required.")
	}

	if in.CookTime != nil {
		if *in.CookTime < 0 {
			v.Add("cook_time", "Cook time cannot be negative.")
		} else if *in.CookTime > maxMinutes {
			v.Add("cook_time", "Cook time cannot exceed 24 hours.")
		}
	} else if full {
		v.Add("cook_time", "Cook time is required.")
	}

	prep, cook := in.PrepTime, in.CookTime
	if current != nil {
		if prep == nil {
			prep = &current.PrepTime
		}
		if cook == nil {
			cook = &current.CookTime
		}
	}
	if prep != nil && cook != nil && *prep+*cook > models.MaxTotalTime {
		v.Addf("cook_time", "Total cooking time exceeds 4 hours (%d minutes): %d minutes given.", models.MaxTotalTime, *prep+*cook)
	}

	validateLines(v, in.Ingredients)
	validateSteps(v, in.Steps)
	return v
}

func lineField(i int, name string) string {
	return fmt.Sprintf("ingredients[%d].%s", i, name)
}

func validateLines(v *ValidationError, lines []dto.IngredientLineInput) {
	seen := make(map[string]int, len(lines))
	for i, l := range lines {
		validateLine(v, func(name string) string { return lineField(i, name) }, l)

		var key string
		if l.IngredientID != nil {
			key = fmt.Sprintf("id:%d", *l.IngredientID)
		} else if name := normalize.Ingredient(l.IngredientName); name != "" {
			key = "name:" + name
		}
		if key == "" {
			continue
		}
		if first, dup := seen[key]; dup {
			v.Addf(lineField(i, "ingredient"), "This ingredient is already listed on line %d.", first+1)
			continue
		}
		seen[key] = i
	}
}

func validateLine(v *ValidationError, field func(string) string, l dto.IngredientLineInput) {
	name := strings.TrimSpace(l.IngredientName)
	switch {
	case l.IngredientID == nil && name == "":
		v.Add(field("ingredient"), "Provide ingredient_id or ingredient_name.")
	case l.IngredientID != nil && name != "":
		v.Add(field("ingredient"), "Provide either ingredient_id or ingredient_name, not both.")
	case utf8.RuneCountInString(name) > maxIngredientName:
		v.Addf(field("ingredient_name"), "Ensure this field has no more than %d characters.", maxIngredientName)
	}

	unit := strings.TrimSpace(l.UnitName)
	switch {
	case l.UnitID == nil && unit == "":
		v.Add(field("unit"), "Provide unit_id or unit_name.")
	case l.UnitID != nil && unit != "":
		v.Add(field("unit"), "Provide either unit_id or unit_name, not both.")
	case utf8.RuneCountInString(unit) > maxUnitName:
		v.Addf(field("unit_name"), "Ensure this field has no more than %d characters.", maxUnitName)
	}

	validateQuantity(v, field("quantity"), l.Quantity)
}

func validateQuantity(v *ValidationError, field string, q float64) {
	switch {
	case math.IsNaN(q) || math.IsInf(q, 0):
		v.Add(field, "A valid number is required.")
	case roundQuantity(q) <= 0:
		v.Add(field, "Quantity must be greater than 0.")
	case q >= maxQuantity:
		v.Add(field, "Ensure that there are no more than 10 digits in total.")
	}
}

func roundQuantity(q float64) float64 {
	return math.Round(q*100) / 100
}

func validateSteps(v *ValidationError, steps []dto.StepInput) {
	seen := make(map[int]bool, len(steps))
	for i, s := range steps {
		field := func(name string) string { return fmt.Sprintf("steps[%d].%s", i, name) }
		if s.StepNumber < 1 {
			v.Add(field("step_number"), "Ensure this value is greater than or equal to 1.")
		} else if seen[s.StepNumber] {
			v.Add(field("step_number"), "Step numbers must be unique within a dish.")
		}
		seen[s.StepNumber] = true
		if strings.TrimSpace(s.Instruction) == "" {
			v.Add(field("instruction"), msgRequired)
		}
	}
}

// validateName checks a required free-text name against a length limit.
func validateName(v *ValidationError, field, name string, limit int) {
	name = strings.TrimSpace(name)
	switch {
	case name == "":
		v.Add(field, msgRequired)
	case utf8.RuneCountInString(name) > limit:
		v.Addf(field, "Ensure this field has no more than %d characters.", limit)
	}
}
