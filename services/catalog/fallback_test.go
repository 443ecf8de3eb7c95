package catalog

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFallbackClient_PaginatedListShape(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/list", r.URL.Path)
		fmt.Fprint(w, `{"list":[
			{"id":9,"title":"替身新娘","cover_url":"http://img/9.jpg",
			 "updated_at":"2024-05-02 08:00:00","rating":"7.2","total_episodes":24,"intro":"简介"}],
			"currentPage":1,"totalPages":3}`)
	}))
	t.Cleanup(srv.Close)

	client := NewFallbackClient(srv.Client(), srv.URL)
	res, err := client.FetchPage(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, res.Items, 1)

	item := res.Items[0]
	assert.Equal(t, "9", item.ID)
	assert.Equal(t, "替身新娘", item.Name)
	assert.Equal(t, 7.2, item.Score)
	assert.Equal(t, 24, item.EpisodeCount)
	assert.Equal(t, SourceTagFallback, item.SourceTag)
	assert.True(t, res.HasMore)
}

func TestFallbackClient_BareItemsShape(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"items":[{"id":"77","title":"无分页剧"}]}`)
	}))
	t.Cleanup(srv.Close)

	client := NewFallbackClient(srv.Client(), srv.URL)
	res, err := client.FetchPage(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "无分页剧", res.Items[0].Name)
	assert.False(t, res.HasMore) // bare items carry no pagination
	assert.Equal(t, 1, res.Items[0].EpisodeCount)
}

func TestFallbackClient_SearchPath(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "战神", r.URL.Query().Get("keyword"))
		fmt.Fprint(w, `{"list":[],"currentPage":1,"totalPages":1}`)
	}))
	t.Cleanup(srv.Close)

	client := NewFallbackClient(srv.Client(), srv.URL)
	res, err := client.Search(context.Background(), "战神", 1)
	require.NoError(t, err)
	assert.Empty(t, res.Items)
}

func TestFallbackClient_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(srv.Close)

	client := NewFallbackClient(srv.Client(), srv.URL)
	_, err := client.FetchPage(context.Background(), 1)
	require.Error(t, err)
}
