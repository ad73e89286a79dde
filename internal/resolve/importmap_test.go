package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestImportMap_AddRemove(t *testing.T) {
	t.Parallel()

	im := NewImportMap()
	assert.True(t, im.Add("dplyr", "filter"))
	assert.False(t, im.Add("dplyr", "filter"))
	assert.True(t, im.Add("dplyr", "mutate"))
	assert.True(t, im.Add("base", "print"))
	assert.False(t, im.Add("", "x"))
	assert.False(t, im.Add("x", ""))

	assert.Equal(t, []string{"base", "dplyr"}, im.Packages())
	assert.Equal(t, []string{"filter", "mutate"}, im.Functions("dplyr"))
	assert.Equal(t, 3, im.Len())
	assert.True(t, im.Has("base", "print"))
	assert.False(t, im.Has("stats", "print"))

	assert.True(t, im.Remove("base", "print"))
	assert.False(t, im.Remove("base", "print"))
	assert.Equal(t, []string{"dplyr"}, im.Packages(), "empty package is dropped")
}

func TestImportMap_PackagesOf(t *testing.T) {
	t.Parallel()

	im := NewImportMap()
	im.Add("stats", "filter")
	im.Add("dplyr", "filter")
	im.Add("dplyr", "mutate")

	assert.Equal(t, []string{"dplyr", "stats"}, im.PackagesOf("filter"))
	assert.Nil(t, im.PackagesOf("select"))
	assert.Equal(t, map[string][]string{
		"dplyr": {"filter", "mutate"},
		"stats": {"filter"},
	}, im.Map())
}
