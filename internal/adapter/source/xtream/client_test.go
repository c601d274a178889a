package xtream

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/mmcdole/reel/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Config{
		URL:               srv.URL + "/",
		Username:          "alice",
		Password:          "s3cret",
		RequestsPerSecond: 1000,
	}, nil)
}

func TestListCategories(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/player_api.php", r.URL.Path)
		assert.Equal(t, "alice", r.URL.Query().Get("username"))
		assert.Equal(t, "s3cret", r.URL.Query().Get("password"))
		assert.Equal(t, "get_vod_categories", r.URL.Query().Get("action"))
		_, _ = w.Write([]byte(`[
			{"category_id":"1","category_name":"EN - Action","parent_id":0},
			{"category_id":22,"category_name":"FR - Drame","parent_id":"0"},
			{"category_id":"","category_name":"broken"}
		]`))
	})

	cats, err := client.ListCategories(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []domain.Category{
		{ID: "1", Name: "EN - Action"},
		{ID: "22", Name: "FR - Drame"},
	}, cats)
}

func TestListMoviesTolerantDecode(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "get_vod_streams", r.URL.Query().Get("action"))
		assert.Equal(t, "7", r.URL.Query().Get("category_id"))
		_, _ = w.Write([]byte(`[
			{"num":1,"name":"Heat","stream_type":"movie","stream_id":"101","stream_icon":"http://img/101.jpg",
			 "rating":"8.3","rating_5based":4.15,"added":"1700000000","is_adult":"0","category_id":"7",
			 "container_extension":"mkv","custom_sid":null,"direct_source":""},
			{"num":"2","name":"Ronin","stream_id":102,"rating":7,"rating_5based":"","is_adult":1,"tmdb":8195},
			{"name":"no id"}
		]`))
	})

	movies, err := client.ListMovies(context.Background(), "7")
	require.NoError(t, err)
	require.Len(t, movies, 2)

	heat := movies[0]
	assert.Equal(t, int64(101), heat.StreamID)
	assert.Equal(t, "8.3", heat.Rating)
	require.NotNil(t, heat.Rating5Based)
	assert.InDelta(t, 4.15, *heat.Rating5Based, 1e-9)
	assert.Equal(t, "mkv", heat.ContainerExtension)
	assert.False(t, heat.IsAdult)
	assert.Empty(t, heat.CustomSID)

	ronin := movies[1]
	assert.Equal(t, 2, ronin.Num)
	assert.Equal(t, int64(102), ronin.StreamID)
	assert.Equal(t, "7", ronin.Rating)
	assert.Nil(t, ronin.Rating5Based)
	assert.True(t, ronin.IsAdult)
	assert.Equal(t, "8195", ronin.TMDB)
}

func TestEmptyCategoryAsObject(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	})

	movies, err := client.ListMovies(context.Background(), "1")
	require.NoError(t, err)
	assert.Empty(t, movies)
}

func TestAuthFailures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"unauthorized", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}},
		{"forbidden", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		}},
		{"auth zero body", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"user_info":{"auth":0}}`))
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, tt.handler)
			_, err := client.ListCategories(context.Background())
			assert.ErrorIs(t, err, domain.ErrAuthFailed)
		})
	}
}

func TestServerErrorsTripBreaker(t *testing.T) {
	var hits atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	})

	for range breakerTrip {
		_, err := client.ListCategories(context.Background())
		assert.ErrorIs(t, err, domain.ErrServerOffline)
	}

	_, err := client.ListCategories(context.Background())
	assert.ErrorIs(t, err, domain.ErrServerOffline)
	assert.Equal(t, int32(breakerTrip), hits.Load(), "open breaker should not reach the server")
}

func TestUnreachableServer(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	client := NewClient(Config{URL: srv.URL, Username: "alice", Password: "hunter2"}, nil)
	_, err := client.ListCategories(context.Background())
	require.ErrorIs(t, err, domain.ErrServerOffline)
	assert.NotContains(t, err.Error(), "hunter2")
}

func TestMissingCredentials(t *testing.T) {
	client := NewClient(Config{URL: "http://example.invalid"}, nil)
	_, err := client.ListCategories(context.Background())
	assert.ErrorIs(t, err, domain.ErrNotConfigured)
}

func TestAccount(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.URL.Query().Get("action"))
		_, _ = w.Write([]byte(`{"user_info":{"username":"alice","auth":1,"status":"Active","exp_date":"1900000000"},
			"server_info":{"url":"panel.example","port":"80","server_protocol":"http"}}`))
	})

	acct, err := client.Account(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Active", string(acct.UserInfo.Status))
	assert.Equal(t, "panel.example", string(acct.ServerInfo.URL))
}

func TestStreamURL(t *testing.T) {
	client := NewClient(Config{URL: "http://panel.example:8080//", Username: "al ice", Password: "p/w"}, nil)

	assert.Equal(t, "http://panel.example:8080/movie/al%20ice/p%2Fw/42.mkv",
		client.StreamURL(domain.Movie{StreamID: 42, ContainerExtension: "mkv"}))
	assert.Equal(t, "http://panel.example:8080/movie/al%20ice/p%2Fw/43.mp4",
		client.StreamURL(domain.Movie{StreamID: 43}))
}
