package entity

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTourSessionAdvanceIsMonotonic(t *testing.T) {
	s := NewTourSession("u1", time.Unix(0, 0))
	require.NoError(t, s.PlanRoute([]string{"a", "b", "c"}))
	assert.Equal(t, Touring{}, s.Stage)

	for want := 0; want < 3; want++ {
		id, ok := s.NextArtworkID()
		require.True(t, ok)
		assert.Equal(t, []string{"a", "b", "c"}[want], id)

		idx, err := s.AdvanceCursor()
		require.NoError(t, err)
		assert.Equal(t, want, idx)
		assert.Equal(t, Questioning{Artwork: want}, s.Stage)
		assert.Equal(t, want+1, s.Cursor)

		shown, ok := s.LastShownIndex()
		require.True(t, ok)
		assert.Equal(t, s.Cursor-1, shown)
	}

	assert.True(t, s.IsLastShown())
	_, err := s.AdvanceCursor()
	assert.ErrorIs(t, err, ErrRouteExhausted)
	assert.Equal(t, 3, s.Cursor)
}

func TestTourSessionRouteIsSetOnce(t *testing.T) {
	s := NewTourSession("u1", time.Now())
	assert.ErrorIs(t, s.PlanRoute(nil), ErrEmptyRoute)
	assert.False(t, s.RoutePlanned)

	require.NoError(t, s.PlanRoute([]string{"a"}))
	assert.ErrorIs(t, s.PlanRoute([]string{"b"}), ErrRouteAlreadyPlanned)
	assert.Equal(t, []string{"a"}, s.Route)
}

func TestTourSessionCloneIsIndependent(t *testing.T) {
	s := NewTourSession("u1", time.Now())
	require.NoError(t, s.PlanRoute([]string{"a", "b"}))

	c := s.Clone()
	_, err := c.AdvanceCursor()
	require.NoError(t, err)
	c.Route[0] = "changed"

	assert.Equal(t, 0, s.Cursor)
	assert.Equal(t, Touring{}, s.Stage)
	assert.Equal(t, "a", s.Route[0])
}

func TestTourSessionJSONKeepsStagePayload(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	s := NewTourSession("u42", now)
	s.Profile = "люблю импрессионистов"
	require.NoError(t, s.PlanRoute([]string{"a", "b"}))
	_, err := s.AdvanceCursor()
	require.NoError(t, err)

	data, err := json.Marshal(s)
	require.NoError(t, err)

	var decoded TourSession
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, *s, decoded)

	planning := NewTourSession("u43", now)
	planning.Stage = PlanningRoute{TourSize: 7}
	data, err = json.Marshal(planning)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, PlanningRoute{TourSize: 7}, decoded.Stage)
}

func TestUnmarshalStageRejectsUnknownKind(t *testing.T) {
	_, err := UnmarshalStage([]byte(`{"kind":"dancing"}`))
	assert.Error(t, err)
}

func TestCurrentArtworkID(t *testing.T) {
	s := NewTourSession("u1", time.Now())
	_, ok := s.CurrentArtworkID()
	assert.False(t, ok)

	require.NoError(t, s.PlanRoute([]string{"a", "b"}))
	_, err := s.AdvanceCursor()
	require.NoError(t, err)
	_, err = s.AdvanceCursor()
	require.NoError(t, err)

	id, ok := s.CurrentArtworkID()
	require.True(t, ok)
	assert.Equal(t, "b", id)
}
