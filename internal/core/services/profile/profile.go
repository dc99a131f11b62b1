// Package profile holds the compression parameters for every
// (category, level) pair.
package profile

import (
	"fmt"

	"github.com/iamNilotpal/epubpress/internal/core/domain"
)

type key struct {
	category domain.Category
	level    domain.Level
}

// Table is an immutable lookup of profiles. It is safe for concurrent use.
type Table struct {
	profiles map[key]domain.Profile
}

// Creates a table from the given profiles and checks that every category
// resolves at every level with the options its optimizer needs.
func NewTable(profiles []domain.Profile) (*Table, error) {
	t := &Table{profiles: make(map[key]domain.Profile, len(profiles))}

	for _, p := range profiles {
		k := key{p.Category, p.Level}
		if _, dup := t.profiles[k]; dup {
			return nil, fmt.Errorf("duplicate profile for %s/%s", p.Category, p.Level)
		}
		if err := validate(p); err != nil {
			return nil, err
		}
		t.profiles[k] = p
	}

	for _, c := range domain.Categories {
		for _, l := range domain.Levels {
			if _, ok := t.profiles[key{c, l}]; !ok {
				return nil, fmt.Errorf("missing profile for %s/%s", c, l)
			}
		}
	}

	return t, nil
}

// Default returns the table built from Defaults. The defaults are complete,
// so construction cannot fail.
func Default() *Table {
	t, err := NewTable(Defaults())
	if err != nil {
		panic(err)
	}
	return t
}

// Lookup returns the profile for the pair.
func (t *Table) Lookup(category domain.Category, level domain.Level) (domain.Profile, error) {
	p, ok := t.profiles[key{category, level}]
	if !ok {
		return domain.Profile{}, fmt.Errorf("profile not found for %s/%s", category, level)
	}
	return p, nil
}

func validate(p domain.Profile) error {
	if !p.Level.Valid() {
		return fmt.Errorf("profile %s: invalid level %q", p.Category, p.Level)
	}
	if p.DeflateLevel < 0 || p.DeflateLevel > 9 {
		return fmt.Errorf("profile %s/%s: deflate level must be between 0 and 9, got %d", p.Category, p.Level, p.DeflateLevel)
	}

	switch p.Category {
	case domain.CategoryText:
		if p.Text == nil {
			return fmt.Errorf("profile %s/%s: text options required", p.Category, p.Level)
		}
	case domain.CategoryImage:
		if p.Image == nil {
			return fmt.Errorf("profile %s/%s: image options required", p.Category, p.Level)
		}
		if p.Image.Quality < 1 || p.Image.Quality > 100 {
			return fmt.Errorf("profile %s/%s: quality must be between 1 and 100, got %d", p.Category, p.Level, p.Image.Quality)
		}
		if p.Image.MaxWidth < 0 || p.Image.MaxHeight < 0 {
			return fmt.Errorf("profile %s/%s: negative resize bounds", p.Category, p.Level)
		}
	case domain.CategoryFont:
		if p.Font == nil {
			return fmt.Errorf("profile %s/%s: font options required", p.Category, p.Level)
		}
	}

	return nil
}
