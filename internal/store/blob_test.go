package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlobStoreRoundTripAcrossReopen(t *testing.T) {
	dir := t.TempDir()

	s, err := NewBlobStore(dir)
	require.NoError(t, err)

	_, ok, err := s.Get("movieFavourites")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set("movieFavourites", []byte("[1,2,3]")))
	require.NoError(t, s.Close())

	reopened, err := NewBlobStore(dir)
	require.NoError(t, err)
	defer reopened.Close()

	data, ok, err := reopened.Get("movieFavourites")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "[1,2,3]", string(data))
}

func TestBlobStoreMemoryOnly(t *testing.T) {
	s, err := NewBlobStore("")
	require.NoError(t, err)

	require.NoError(t, s.Set("recentMovies", []byte("[9]")))
	data, ok, err := s.Get("recentMovies")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "[9]", string(data))

	// Returned slices are copies
	data[0] = 'x'
	again, _, _ := s.Get("recentMovies")
	assert.Equal(t, "[9]", string(again))

	assert.NoError(t, s.Close())
}
