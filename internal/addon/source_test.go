package addon

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gamekeeper/internal/fetch"
)

func TestGitHubSource_Latest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/roflmuffin/CounterStrikeSharp/releases/latest", r.URL.Path)
		json.NewEncoder(w).Encode(ReleaseInfo{
			TagName: "v300",
			Assets: []ReleaseAsset{
				{Name: "counterstrikesharp-build-300-linux-abc.zip", BrowserDownloadURL: "https://dl/plain.zip"},
				{Name: "counterstrikesharp-with-runtime-build-300-windows-abc.zip", BrowserDownloadURL: "https://dl/win.zip"},
				{Name: "counterstrikesharp-with-runtime-build-300-linux-abc.zip", BrowserDownloadURL: "https://dl/linux.zip"},
			},
		})
	}))
	defer srv.Close()

	target := CounterStrikeSharpTarget("", srv.URL)
	rel, err := target.Source.Latest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Release{Version: "v300", URL: "https://dl/linux.zip", Kind: fetch.Zip}, rel)
}

func TestGitHubSource_NoMatchingAsset(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(ReleaseInfo{TagName: "v301"})
	}))
	defer srv.Close()

	rel, err := CounterStrikeSharpTarget("", srv.URL).Source.Latest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "v301", rel.Version)
	assert.Empty(t, rel.URL)
}

func TestGitHubSource_MetadataFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := CounterStrikeSharpTarget("", srv.URL).Source.Latest(context.Background())
	require.ErrorIs(t, err, ErrReleaseUnavailable)
	assert.NotErrorIs(t, err, ErrNoMatchingAsset)
}

const mmsIndex = `<html><body><h1>Index of /mmsdrop/2.0</h1><pre>
<a href="../">../</a>
<a href="mmsource-2.0.0-git1144-linux.tar.gz">mmsource-2.0.0-git1144-linux.tar.gz</a>
<a href="mmsource-2.0.0-git1145-linux.tar.gz">mmsource-2.0.0-git1145-linux.tar.gz</a>
<a href="mmsource-2.0.0-git1145-windows.zip">mmsource-2.0.0-git1145-windows.zip</a>
<a href="mmsource-latest-linux">mmsource-latest-linux</a>
</pre></body></html>`

func TestScrapeSource_Latest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(mmsIndex))
	}))
	defer srv.Close()

	target := MetamodTarget(srv.URL + "/mmsdrop/2.0/")
	rel, err := target.Source.Latest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "git1145", rel.Version)
	assert.Equal(t, srv.URL+"/mmsdrop/2.0/mmsource-2.0.0-git1145-linux.tar.gz", rel.URL)
	assert.Equal(t, fetch.TarGz, rel.Kind)
}

func TestScrapeSource_NoMatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<a href="readme.txt">readme</a>`))
	}))
	defer srv.Close()

	_, err := MetamodTarget(srv.URL+"/").Source.Latest(context.Background())
	require.ErrorIs(t, err, ErrNoMatchingAsset)
}

func TestScrapeSource_UnparseableVersion(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<a href="mmsource-2.0.0-dev-linux.tar.gz">x</a>`))
	}))
	defer srv.Close()

	_, err := MetamodTarget(srv.URL+"/").Source.Latest(context.Background())
	require.ErrorIs(t, err, ErrVersionUnparseable)
}

func TestScrapeSource_IndexDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := MetamodTarget(srv.URL+"/").Source.Latest(context.Background())
	require.ErrorIs(t, err, ErrReleaseUnavailable)
}
