package tour

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hapava-angel/artworks-fond-Sirius/internal/domain/entity"
)

func TestLengthSampler_StaysInRange(t *testing.T) {
	short := LengthRange{Min: 2, Max: 5}
	medium := LengthRange{Min: 8, Max: 12}
	long := LengthRange{Min: 13, Max: 20}

	for _, src := range []rand.Source{nil, rand.NewPCG(7, 11)} {
		s, err := NewLengthSampler(short, medium, long, src)
		require.NoError(t, err)

		for _, tag := range []entity.ButtonTag{entity.TagShort, entity.TagMedium, entity.TagLong} {
			r, ok := s.Range(tag)
			require.True(t, ok)
			for range 200 {
				n, err := s.Sample(tag)
				require.NoError(t, err)
				assert.GreaterOrEqual(t, n, r.Min)
				assert.LessOrEqual(t, n, r.Max)
			}
		}
	}
}

func TestLengthSampler_DeterministicWithSeed(t *testing.T) {
	r := LengthRange{Min: 1, Max: 100}
	a, err := NewLengthSampler(r, r, r, rand.NewPCG(1, 2))
	require.NoError(t, err)
	b, err := NewLengthSampler(r, r, r, rand.NewPCG(1, 2))
	require.NoError(t, err)

	for range 20 {
		x, _ := a.Sample(entity.TagMedium)
		y, _ := b.Sample(entity.TagMedium)
		assert.Equal(t, x, y)
	}
}

func TestLengthSampler_Errors(t *testing.T) {
	ok := LengthRange{Min: 1, Max: 2}

	_, err := NewLengthSampler(LengthRange{Min: 0, Max: 2}, ok, ok, nil)
	assert.Error(t, err)

	_, err = NewLengthSampler(ok, LengthRange{Min: 5, Max: 4}, ok, nil)
	assert.Error(t, err)

	s, err := NewLengthSampler(ok, ok, ok, nil)
	require.NoError(t, err)
	_, err = s.Sample(entity.TagNextArtwork)
	assert.Error(t, err)
}
