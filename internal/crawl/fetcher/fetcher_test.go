package fetcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Timeout = 2 * time.Second
	cfg.MaxRetries = 1
	return cfg
}

func TestFetcher_FetchText_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("hello world"))
	}))
	defer srv.Close()

	f := New(testConfig(), nil)
	got := f.FetchText(context.Background(), srv.URL)
	assert.Equal(t, "hello world", got)
}

func TestFetcher_FetchText_PermanentFailureReturnsEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	f := New(testConfig(), nil)
	got := f.FetchText(context.Background(), srv.URL)
	assert.Equal(t, "", got)
}

func TestFetcher_FetchJSON_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id": 42, "title": "test"}`))
	}))
	defer srv.Close()

	var out struct {
		ID    int    `json:"id"`
		Title string `json:"title"`
	}
	f := New(testConfig(), nil)
	ok := f.FetchJSON(context.Background(), srv.URL, &out)
	assert.True(t, ok)
	assert.Equal(t, 42, out.ID)
	assert.Equal(t, "test", out.Title)
}

func TestFetcher_FetchJSON_MalformedReturnsFalse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	var out map[string]interface{}
	f := New(testConfig(), nil)
	ok := f.FetchJSON(context.Background(), srv.URL, &out)
	assert.False(t, ok)
}

func TestFetcher_RetriesOnTransientFailure(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 2 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("recovered"))
	}))
	defer srv.Close()

	f := New(testConfig(), nil)
	got := f.FetchText(context.Background(), srv.URL)
	assert.Equal(t, "recovered", got)
	assert.GreaterOrEqual(t, attempts, 2)
}
