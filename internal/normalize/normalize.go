// Package normalize folds free-text ingredient and unit names into the
// canonical form used for storage and duplicate detection.
package normalize

import (
	"strings"

	"github.com/jinzhu/inflection"
	"golang.org/x/text/unicode/norm"
)

// singularization is applied until the name stops changing; no rule chain
// in the table below is longer than this.
const maxSingularPasses = 4

func init() {
	// culinary words the default rule set gets wrong
	inflection.AddUncountable("hummus", "couscous", "asparagus", "molasses", "swiss", "hibiscus", "citrus", "watercress")
	inflection.AddIrregular("leaf", "leaves")
	inflection.AddIrregular("loaf", "loaves")
	inflection.AddIrregular("clove", "cloves")
	inflection.AddIrregular("olive", "olives")
}

// Name trims, composes and lower-cases s.
func Name(s string) string {
	return strings.ToLower(strings.TrimSpace(norm.NFC.String(s)))
}

// Ingredient returns the singular, lower-case form of an ingredient name.
func Ingredient(s string) string {
	name := Name(s)
	for i := 0; i < maxSingularPasses; i++ {
		next := inflection.Singular(name)
		if next == name || next == "" {
			break
		}
		name = next
	}
	return name
}

// Unit lower-cases a unit name and drops one trailing "s".
func Unit(s string) string {
	name := Name(s)
	if len(name) > 1 && strings.HasSuffix(name, "s") {
		return name[:len(name)-1]
	}
	return name
}

// Abbreviation lower-cases a unit abbreviation. Abbreviations keep their
// letters ("tbs", "lbs") so they still hit the synonym table.
func Abbreviation(s string) string {
	return Name(s)
}

// IngredientPlural is the plural of an already normalized ingredient name.
func IngredientPlural(name string) string {
	return inflection.Plural(name)
}
