package normalize

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTable(t *testing.T) {
	table := DefaultTable()
	assert.Equal(t, 10, table.Len())

	c, ok := table.Canonical("TBSP")
	require.True(t, ok)
	assert.Equal(t, "tablespoon", c)
	assert.Equal(t, "tbsp", table.Abbreviation("tablespoon"))
	assert.Equal(t, []string{"tablespoon", "tablespoons", "tbs", "tbsp"}, table.Group("tbs"))

	_, ok = table.Canonical("pinch")
	assert.False(t, ok)
	assert.Nil(t, table.Group("pinch"))
}

func TestTable_GroupReturnsCopy(t *testing.T) {
	table := DefaultTable()
	g := table.Group("cup")
	g[0] = "mutated"
	assert.NotContains(t, table.Group("cup"), "mutated")
}

func TestTable_UnitTerms(t *testing.T) {
	table := DefaultTable()

	assert.Equal(t, []string{"tablespoon", "tablespoons", "tbs", "tbsp"}, table.UnitTerms("Tablespoons"))
	// "tbs" normalizes to "tb" but its plural spelling still hits the group
	assert.Contains(t, table.UnitTerms("tbs"), "tablespoon")
	assert.Contains(t, table.UnitTerms("ts"), "teaspoon")
	assert.Equal(t, []string{"pinch", "pinchs"}, table.UnitTerms("pinch"))
	assert.Nil(t, table.UnitTerms("   "))
}

func TestTable_IngredientTerms(t *testing.T) {
	table := DefaultTable()
	assert.Equal(t, []string{"tomato", "tomatoes"}, table.IngredientTerms("Tomatoes"))
}

func TestParseTable_RejectsSharedForm(t *testing.T) {
	_, err := ParseTable([]byte(`
groups:
  cup:
    forms: [c]
  centiliter:
    abbreviation: c
`))
	assert.ErrorContains(t, err, `"c"`)
}

func TestLoadTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "units.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
groups:
  Pinch:
    abbreviation: PN
    forms: [pinches]
`), 0o600))

	table, err := LoadTable(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"pinch", "pinches", "pn"}, table.Group("PINCHES"))
	assert.Equal(t, "pn", table.Abbreviation("pinch"))

	_, err = LoadTable(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
