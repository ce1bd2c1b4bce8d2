package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookup(t *testing.T) {
	c := Default()

	p, ok := c.Lookup(1)
	require.True(t, ok)
	assert.Equal(t, "Laptop", p.Name)
	assert.Equal(t, int64(999), p.Price)

	_, ok = c.Lookup(999)
	assert.False(t, ok)
}

func TestListIsACopy(t *testing.T) {
	c := Default()

	got := c.List()
	require.Len(t, got, 4)
	got[0].Name = "mutated"

	again := c.List()
	assert.Equal(t, "Laptop", again[0].Name)
}
