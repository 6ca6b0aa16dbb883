package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog(t *testing.T) {
	c := Default()
	require.Equal(t, 8, c.Len())

	videos := c.Videos()
	for i, v := range videos {
		assert.Equal(t, string(rune('1'+i)), v.ID)
	}
	assert.Equal(t, "Customer Service Basics", videos[0].Title)
	assert.Equal(t, "Warehouse Organization", videos[7].Title)
}

func TestResolveKeepsCatalogOrder(t *testing.T) {
	c := Default()

	got := c.Resolve([]string{"4", "42", "1", "4"})
	require.Len(t, got, 2)
	assert.Equal(t, "1", got[0].ID)
	assert.Equal(t, "4", got[1].ID)

	assert.Empty(t, c.Resolve(nil))
}

func TestCatalogIsReadOnly(t *testing.T) {
	c := Default()

	v, ok := c.Find("1")
	require.True(t, ok)
	v.SkillsGained[0] = "mutated"
	v.Title = "mutated"

	again, _ := c.Find("1")
	assert.Equal(t, "communication", again.SkillsGained[0])
	assert.Equal(t, "Customer Service Basics", again.Title)

	_, ok = c.Find("9")
	assert.False(t, ok)
}

func TestNewSkipsDuplicateIDs(t *testing.T) {
	c := New(Video{ID: "a", Title: "first"}, Video{ID: "a", Title: "second"})
	require.Equal(t, 1, c.Len())
	v, _ := c.Find("a")
	assert.Equal(t, "first", v.Title)
}
