package steamnews

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLatestPublished(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/ISteamNews/GetNewsForApp/v0002/", r.URL.Path)
		assert.Equal(t, "730", r.URL.Query().Get("appid"))
		assert.Equal(t, "1", r.URL.Query().Get("count"))
		assert.Equal(t, "secret", r.URL.Query().Get("key"))
		w.Write([]byte(`{"appnews":{"appid":730,"newsitems":[
			{"gid":"1","title":"Counter-Strike 2 Update","date":1718000000},
			{"gid":"0","title":"older","date":1700000000}
		]}}`))
	}))
	defer srv.Close()

	c := New("secret", CS2AppID)
	c.BaseURL = srv.URL
	ts, err := c.LatestPublished(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1718000000), ts)
}

func TestLatestPublished_Empty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"appnews":{"appid":730,"newsitems":[]}}`))
	}))
	defer srv.Close()

	c := New("", CS2AppID)
	c.BaseURL = srv.URL
	_, err := c.LatestPublished(context.Background())
	require.ErrorIs(t, err, ErrNoNews)
}

func TestLatestPublished_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	c := New("bad", CS2AppID)
	c.BaseURL = srv.URL
	_, err := c.LatestPublished(context.Background())
	require.Error(t, err)
}
