package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPClient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok":
			assert.Equal(t, "test-agent", r.Header.Get("User-Agent"))
			w.Write([]byte("<table></table>"))
		case "/slow":
			time.Sleep(200 * time.Millisecond)
			w.Write([]byte("late"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := NewHTTPClient("test-agent", 5*time.Second)

	body, err := c.Fetch(context.Background(), srv.URL+"/ok")
	require.NoError(t, err)
	assert.Equal(t, "<table></table>", string(body))

	_, err = c.Fetch(context.Background(), srv.URL+"/missing")
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusNotFound, se.StatusCode)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = c.Fetch(ctx, srv.URL+"/slow")
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestHTTPClientRejectsOversizedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(strings.Repeat("x", 16)))
	}))
	defer srv.Close()

	c := NewHTTPClient("test-agent", 5*time.Second)

	c.maxBody = 16
	body, err := c.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Len(t, body, 16)

	c.maxBody = 15
	body, err = c.Fetch(context.Background(), srv.URL)
	require.ErrorIs(t, err, ErrBodyTooLarge)
	assert.Nil(t, body)
}

func TestFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "djia.txt"), []byte("MMM\nAXP\n"), 0o644))

	f := File{Dir: dir}
	for _, loc := range []string{"djia.txt", "file://" + filepath.Join(dir, "djia.txt")} {
		data, err := f.Fetch(context.Background(), loc)
		require.NoError(t, err, loc)
		assert.Equal(t, "MMM\nAXP\n", string(data))
	}

	_, err := f.Fetch(context.Background(), "nope.txt")
	require.ErrorIs(t, err, os.ErrNotExist)
}

type stubFetcher string

func (s stubFetcher) Fetch(context.Context, string) ([]byte, error) {
	return []byte(s), nil
}

func TestRouter(t *testing.T) {
	r := Router{Web: stubFetcher("web"), Local: stubFetcher("local")}

	tests := map[string]string{
		"https://en.wikipedia.org/wiki/Nasdaq-100": "web",
		"HTTP://example.com":                       "web",
		"file:///tmp/x.csv":                        "local",
		"data/symbols_djia.csv":                    "local",
	}
	for loc, want := range tests {
		got, err := r.Fetch(context.Background(), loc)
		require.NoError(t, err)
		assert.Equal(t, want, string(got), loc)
	}

	_, err := Router{}.Fetch(context.Background(), "https://x")
	require.Error(t, err)
}
