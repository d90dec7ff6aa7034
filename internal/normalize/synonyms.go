package normalize

import (
	_ "embed"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

//go:embed synonyms.yaml
var defaultSynonyms []byte

type groupSpec struct {
	Abbreviation string   `yaml:"abbreviation"`
	Forms        []string `yaml:"forms"`
}

type tableFile struct {
	Groups map[string]groupSpec `yaml:"groups"`
}

// Table maps every known spelling of a unit to its synonym group. A Table
// is read-only after construction and safe for concurrent use.
type Table struct {
	members       map[string][]string // canonical -> sorted members
	canonical     map[string]string   // any member -> canonical
	abbreviations map[string]string   // canonical -> abbreviation
}

// DefaultTable returns the built-in synonym groups.
func DefaultTable() *Table {
	t, err := ParseTable(defaultSynonyms)
	if err != nil {
		panic(fmt.Sprintf("normalize: embedded synonyms: %v", err))
	}
	return t
}

// LoadTable reads synonym groups from a YAML file.
func LoadTable(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read synonyms: %w", err)
	}
	return ParseTable(data)
}

func ParseTable(data []byte) (*Table, error) {
	var f tableFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse synonyms: %w", err)
	}

	t := &Table{
		members:       make(map[string][]string, len(f.Groups)),
		canonical:     make(map[string]string),
		abbreviations: make(map[string]string, len(f.Groups)),
	}
	for rawKey, spec := range f.Groups {
		key := Name(rawKey)
		if key == "" {
			return nil, fmt.Errorf("parse synonyms: empty group name")
		}
		forms := append([]string{key, spec.Abbreviation}, spec.Forms...)
		seen := make(map[string]bool, len(forms))
		for _, raw := range forms {
			form := Name(raw)
			if form == "" || seen[form] {
				continue
			}
			if owner, ok := t.canonical[form]; ok && owner != key {
				return nil, fmt.Errorf("parse synonyms: %q belongs to both %q and %q", form, owner, key)
			}
			seen[form] = true
			t.canonical[form] = key
			t.members[key] = append(t.members[key], form)
		}
		sort.Strings(t.members[key])
		if abbr := Name(spec.Abbreviation); abbr != "" {
			t.abbreviations[key] = abbr
		}
	}
	return t, nil
}

// Canonical reports the group a term belongs to.
func (t *Table) Canonical(term string) (string, bool) {
	c, ok := t.canonical[Name(term)]
	return c, ok
}

// Group returns every member of term's group, or nil when term is unknown.
func (t *Table) Group(term string) []string {
	c, ok := t.Canonical(term)
	if !ok {
		return nil
	}
	out := make([]string, len(t.members[c]))
	copy(out, t.members[c])
	return out
}

// Abbreviation returns the preferred abbreviation of a canonical unit.
func (t *Table) Abbreviation(canonical string) string {
	return t.abbreviations[Name(canonical)]
}

// Expand returns the terms plus all of their synonyms, deduplicated and sorted.
func (t *Table) Expand(terms ...string) []string {
	set := make(map[string]struct{}, len(terms))
	for _, term := range terms {
		term = Name(term)
		if term == "" {
			continue
		}
		set[term] = struct{}{}
		for _, m := range t.Group(term) {
			set[m] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for term := range set {
		out = append(out, term)
	}
	sort.Strings(out)
	return out
}

// Len is the number of groups.
func (t *Table) Len() int {
	return len(t.members)
}

// IngredientTerms lists the spellings that collide with an ingredient name.
func (t *Table) IngredientTerms(name string) []string {
	name = Ingredient(name)
	return t.Expand(name, IngredientPlural(name))
}

// UnitTerms lists the spellings that collide with a unit name or
// abbreviation, across both columns.
func (t *Table) UnitTerms(term string) []string {
	term = Name(term)
	if term == "" {
		return nil
	}
	unit := Unit(term)
	return t.Expand(term, unit, unit+"s")
}
