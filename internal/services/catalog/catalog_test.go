package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/stroopgame/internal/model"
)

func TestDefaultCatalog(t *testing.T) {
	c := Default()

	require.Equal(t, 5, c.Len())
	red, ok := c.Get(3)
	require.True(t, ok)
	assert.Equal(t, "Red", red.Name)
	assert.Equal(t, "#FF0000", red.Hex)

	_, ok = c.Get(99)
	assert.False(t, ok)
}

func TestNewIgnoresDuplicateIDs(t *testing.T) {
	c := New([]model.Color{
		{ID: 1, Name: "White", Hex: "#FFFFFF"},
		{ID: 1, Name: "Other", Hex: "#123456"},
		{ID: 2, Name: "Black", Hex: "#000000"},
	})

	assert.Equal(t, 2, c.Len())
	white, _ := c.Get(1)
	assert.Equal(t, "White", white.Name)
}

func TestAllReturnsCopy(t *testing.T) {
	c := Default()
	all := c.All()
	all[0].Name = "changed"

	assert.Equal(t, "White", c.At(0).Name)
}
