// Package catalog holds the fixed set of colours rounds are built from.
package catalog

import "github.com/mcoot/stroopgame/internal/model"

// Catalog is an immutable, ordered set of colours
type Catalog struct {
	colors []model.Color
	byID   map[model.ColorID]model.Color
}

// Default returns the standard five-colour catalog
func Default() *Catalog {
	return New([]model.Color{
		{ID: 1, Name: "White", Hex: "#FFFFFF"},
		{ID: 2, Name: "Black", Hex: "#000000"},
		{ID: 3, Name: "Red", Hex: "#FF0000"},
		{ID: 4, Name: "Green", Hex: "#00FF00"},
		{ID: 5, Name: "Blue", Hex: "#0000FF"},
	})
}

// New creates a catalog from the given colours. Later duplicates of an ID are ignored.
func New(colors []model.Color) *Catalog {
	c := &Catalog{byID: make(map[model.ColorID]model.Color, len(colors))}
	for _, color := range colors {
		if _, ok := c.byID[color.ID]; ok {
			continue
		}
		c.byID[color.ID] = color
		c.colors = append(c.colors, color)
	}
	return c
}

// All returns the colours in catalog order
func (c *Catalog) All() []model.Color {
	out := make([]model.Color, len(c.colors))
	copy(out, c.colors)
	return out
}

// Len returns the number of colours
func (c *Catalog) Len() int {
	return len(c.colors)
}

// At returns the colour at the given position in catalog order
func (c *Catalog) At(i int) model.Color {
	return c.colors[i]
}

// Get returns the colour with the given ID
func (c *Catalog) Get(id model.ColorID) (model.Color, bool) {
	color, ok := c.byID[id]
	return color, ok
}
