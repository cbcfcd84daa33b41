package collector

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPFetcher_Fetch(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte("<html>ok</html>"))
	}))
	defer srv.Close()

	f := NewHTTPFetcher(5*time.Second, "", "", 0)
	body, err := f.Fetch(context.Background(), srv.URL+"/page")
	require.NoError(t, err)
	assert.Equal(t, "<html>ok</html>", body)
	assert.Equal(t, defaultUserAgent, gotUA)

	_, err = f.Fetch(context.Background(), srv.URL+"/missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
}

func TestHTTPFetcher_CustomUserAgent(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
	}))
	defer srv.Close()

	_, err := NewHTTPFetcher(time.Second, "", "screener-test", 0).Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "screener-test", gotUA)
}

func TestHTTPFetcher_RateLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	f := NewHTTPFetcher(time.Second, "", "", 20)
	start := time.Now()
	for i := 0; i < 3; i++ {
		_, err := f.Fetch(context.Background(), srv.URL)
		require.NoError(t, err)
	}
	// burst of one: the second and third requests each wait ~50ms
	assert.GreaterOrEqual(t, time.Since(start), 90*time.Millisecond)
}

func TestHTTPFetcher_CancelledWhileLimited(t *testing.T) {
	f := NewHTTPFetcher(time.Second, "", "", 0.1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.Fetch(ctx, "http://127.0.0.1:1/")
	assert.Error(t, err)
}
