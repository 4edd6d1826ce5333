package node

import (
	"testing"

	"github.com/stretchr/testify/assert"

	wfmodel "github.com/hapava-angel/artworks-fond-Sirius/internal/workflow/model"
)

func TestBuildRouteBlock(t *testing.T) {
	got := BuildRouteBlock([]wfmodel.RouteArtwork{
		{ID: "a", Text: " Лодки на Неве "},
		{ID: "b", Text: ""},
		{ID: "c", Text: "Портрет"},
	})
	assert.Equal(t, "1. Лодки на Неве\n\n3. Портрет", got)
	assert.Empty(t, BuildRouteBlock(nil))
}

func TestTruncateByRunes(t *testing.T) {
	assert.Equal(t, "Лодка", TruncateByRunes("Лодка", 5))
	assert.Equal(t, "Лод…", TruncateByRunes("Лодка", 3))
	assert.Equal(t, "ab…", TruncateByRunes("ab cd", 3))
	assert.Empty(t, TruncateByRunes("abc", 0))
}

func TestOrPlaceholder(t *testing.T) {
	assert.Equal(t, "x", OrPlaceholder(" x ", "-"))
	assert.Equal(t, "-", OrPlaceholder("  ", "-"))
}
