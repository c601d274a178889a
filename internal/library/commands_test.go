package library

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/mmcdole/reel/internal/domain"
	"github.com/mmcdole/reel/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSource is an in-memory CatalogSource.
type fakeSource struct {
	mu         sync.Mutex
	categories []domain.Category
	movies     map[string][]domain.RemoteMovie
	listErr    error
	failing    map[string]error
	calls      []string

	// entered/release let a test hold ListCategories open
	entered chan struct{}
	release chan struct{}
}

func (f *fakeSource) ListCategories(ctx context.Context) ([]domain.Category, error) {
	if f.entered != nil {
		close(f.entered)
		<-f.release
	}
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.categories, nil
}

func (f *fakeSource) ListMovies(ctx context.Context, categoryID string) ([]domain.RemoteMovie, error) {
	f.mu.Lock()
	f.calls = append(f.calls, categoryID)
	f.mu.Unlock()
	if err := f.failing[categoryID]; err != nil {
		return nil, err
	}
	return f.movies[categoryID], nil
}

func five(v float64) *float64 { return &v }

func newFakeSource() *fakeSource {
	return &fakeSource{
		categories: []domain.Category{
			{ID: "1", Name: "EN - Action"},
			{ID: "2", Name: "FR - Action"},
			{ID: "3", Name: "EN - Comedy"},
			{ID: "4", Name: "soccer replays"},
			{ID: "5", Name: "EN - Drama"},
		},
		movies: map[string][]domain.RemoteMovie{
			"1": {
				{Num: 1, StreamID: 101, Name: "Heat", StreamType: "movie", Rating: "8.3", Rating5Based: five(4.2), TMDB: "949", CategoryID: "1", ContainerExtension: "mkv", DirectSource: "http://x"},
				{Num: 2, StreamID: 102, Name: "Ronin", StreamType: "movie", StreamIcon: "http://img/ronin.jpg", CategoryID: "1", IsAdult: false},
			},
			"2": {{StreamID: 201, Name: "Le Samourai"}},
			"3": {{StreamID: 301, Name: "Airplane!", Added: "1600000000", CategoryID: "3"}},
			"5": {{StreamID: 501, Name: "Magnolia", CategoryID: "5"}},
		},
	}
}

func setupCommands(t *testing.T, src domain.CatalogSource) (*Commands, *store.CatalogStore, *State) {
	t.Helper()
	s, err := store.OpenCatalogStore(filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	state := NewState()
	cmds := NewCommands(src, s, state, nil)
	return cmds, s, state
}

func TestSyncFiltersBlockedCategories(t *testing.T) {
	src := newFakeSource()
	cmds, s, state := setupCommands(t, src)

	require.NoError(t, cmds.Sync(context.Background()))

	snap, err := s.LoadAll(context.Background())
	require.NoError(t, err)

	var names []string
	for _, c := range snap.Categories {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"EN - Action", "EN - Comedy", "EN - Drama"}, names)
	assert.NotContains(t, src.calls, "2")
	assert.NotContains(t, src.calls, "4")

	assert.Len(t, state.Categories(), 3)
	assert.False(t, state.IsSyncing())
	assert.Empty(t, state.SyncError())
	require.NotNil(t, state.LastSync())
}

func TestSyncSlimsMovies(t *testing.T) {
	cmds, s, _ := setupCommands(t, newFakeSource())
	require.NoError(t, cmds.Sync(context.Background()))

	movies, err := s.MoviesByCategory(context.Background(), "1")
	require.NoError(t, err)
	require.Len(t, movies, 2)
	assert.Equal(t, domain.Movie{
		StreamID:           101,
		Name:               "Heat",
		StreamType:         "movie",
		Rating:             "8.3",
		Rating5Based:       five(4.2),
		CategoryID:         "1",
		ContainerExtension: "mkv",
	}, movies[0])
}

func TestSyncIsolatesCategoryFailures(t *testing.T) {
	src := newFakeSource()
	src.failing = map[string]error{"3": errors.New("timeout")}

	var progress []domain.SyncProgress
	cmds, s, state := setupCommands(t, src)
	cmds.SetObserver(domain.ObserverFunc(func(p domain.SyncProgress) { progress = append(progress, p) }))

	require.NoError(t, cmds.Sync(context.Background()))

	snap, err := s.LoadAll(context.Background())
	require.NoError(t, err)
	require.Len(t, snap.Categories, 3)
	assert.Equal(t, "3", snap.Categories[1].ID)

	var ids []int64
	for _, row := range snap.Rows {
		for _, m := range row.Movies {
			ids = append(ids, m.StreamID)
		}
	}
	assert.ElementsMatch(t, []int64{101, 102, 501}, ids)
	assert.Empty(t, snap.Rows[1].Movies)

	// Every allowed category was attempted in order
	assert.Equal(t, []string{"1", "3", "5"}, src.calls)

	require.Len(t, progress, 3)
	assert.True(t, progress[1].Skipped())
	assert.Equal(t, 3, progress[2].Loaded)
	assert.Equal(t, 3, progress[2].Total)

	// In-memory rows mirror what was persisted
	require.Len(t, state.Rows(), 3)
	assert.Empty(t, state.Rows()[1].Movies)
	assert.Empty(t, state.SyncError())
}

func TestSyncIsIdempotent(t *testing.T) {
	cmds, s, _ := setupCommands(t, newFakeSource())
	ctx := context.Background()

	cmds.now = func() time.Time { return time.UnixMilli(1000) }
	require.NoError(t, cmds.Sync(ctx))
	first, err := s.LoadAll(ctx)
	require.NoError(t, err)

	cmds.now = func() time.Time { return time.UnixMilli(2000) }
	require.NoError(t, cmds.Sync(ctx))
	second, err := s.LoadAll(ctx)
	require.NoError(t, err)

	assert.Equal(t, first.Categories, second.Categories)
	assert.Equal(t, first.Rows, second.Rows)
	assert.Equal(t, int64(1000), *first.LastSync)
	assert.Equal(t, int64(2000), *second.LastSync)
}

func TestSyncListFailurePreservesSnapshot(t *testing.T) {
	src := newFakeSource()
	cmds, s, state := setupCommands(t, src)
	ctx := context.Background()

	require.NoError(t, cmds.Sync(ctx))
	before, err := s.LoadAll(ctx)
	require.NoError(t, err)

	src.listErr = domain.ErrServerOffline
	err = cmds.Sync(ctx)
	require.ErrorIs(t, err, domain.ErrServerOffline)

	after, err := s.LoadAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, after)

	assert.False(t, state.IsSyncing())
	assert.Equal(t, "Could not reach the catalog server.", state.SyncError())
	assert.Len(t, state.Rows(), 3)

	// The error slot is cleared by the next attempt
	src.listErr = nil
	require.NoError(t, cmds.Sync(ctx))
	assert.Empty(t, state.SyncError())
}

func TestSyncAllCategoriesBlocked(t *testing.T) {
	src := &fakeSource{categories: []domain.Category{{ID: "9", Name: "DE - Krimi"}}}
	cmds, s, state := setupCommands(t, src)
	cmds.now = func() time.Time { return time.UnixMilli(77) }

	require.NoError(t, cmds.Sync(context.Background()))

	snap, err := s.LoadAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, snap.Rows)
	require.NotNil(t, snap.LastSync)
	assert.Equal(t, int64(77), *snap.LastSync)
	assert.Equal(t, int64(77), *state.LastSync())
}

func TestSyncRejectsReentry(t *testing.T) {
	src := newFakeSource()
	src.entered = make(chan struct{})
	src.release = make(chan struct{})
	cmds, _, state := setupCommands(t, src)

	done := make(chan error, 1)
	go func() { done <- cmds.Sync(context.Background()) }()

	<-src.entered
	assert.True(t, state.IsSyncing())
	assert.ErrorIs(t, cmds.Sync(context.Background()), domain.ErrSyncInProgress)

	close(src.release)
	require.NoError(t, <-done)
	assert.False(t, state.IsSyncing())
}

func TestSyncMemoryOnly(t *testing.T) {
	state := NewState()
	cmds := NewCommands(newFakeSource(), nil, state, nil)

	require.NoError(t, cmds.Sync(context.Background()))
	assert.Len(t, state.Rows(), 3)

	m, cat, ok := state.FindMovie(301)
	require.True(t, ok)
	assert.Equal(t, "Airplane!", m.Name)
	assert.Equal(t, "EN - Comedy", cat.Name)
}

func TestSyncCanceled(t *testing.T) {
	cmds, s, state := setupCommands(t, newFakeSource())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.ErrorIs(t, cmds.Sync(ctx), context.Canceled)
	assert.NotEmpty(t, state.SyncError())

	ts, err := s.LastSync(context.Background())
	require.NoError(t, err)
	assert.Nil(t, ts)
}
