package relay

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/katalux/roofers-landing/internal/leads"
	"github.com/katalux/roofers-landing/pkg/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSubmission() leads.Submission {
	return leads.Submission{
		Name:      "Jane Roofer",
		Company:   "Acme Roofing",
		Phone:     "(555) 123-4567",
		Email:     "jane@acme.com",
		Timestamp: time.Date(2026, 10, 19, 14, 30, 0, 0, time.UTC),
	}
}

func newTestClient(t *testing.T, url string, cfg Config) *Client {
	t.Helper()
	cfg.Endpoint = url
	if cfg.Logger == nil {
		cfg.Logger = logging.Discard()
	}
	client, err := New(cfg)
	require.NoError(t, err)
	return client
}

func TestSubmitPostsJSON(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		var got map[string]string
		require.NoError(t, json.Unmarshal(body, &got))
		assert.Equal(t, "Jane Roofer", got["name"])
		assert.Equal(t, "Acme Roofing", got["company"])
		assert.Equal(t, "(555) 123-4567", got["phone"])
		assert.Equal(t, "jane@acme.com", got["email"])
		assert.Equal(t, "New roofing lead: Acme Roofing", got["_subject"])
		assert.Equal(t, "jane@acme.com", got["_replyto"])
		assert.Equal(t, "2026-10-19T14:30:00.000Z", got["timestamp"])

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, Config{})
	require.NoError(t, client.Submit(context.Background(), testSubmission()))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestSubmitAcceptsAny2xx(t *testing.T) {
	for _, status := range []int{http.StatusOK, http.StatusCreated, http.StatusAccepted, http.StatusNoContent} {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		}))
		client := newTestClient(t, server.URL, Config{})
		assert.NoError(t, client.Submit(context.Background(), testSubmission()), "status %d", status)
		server.Close()
	}
}

func TestSubmitNonOKIsSubmissionError(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, "form not found", http.StatusNotFound)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, Config{})
	err := client.Submit(context.Background(), testSubmission())

	var serr *leads.SubmissionError
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, http.StatusNotFound, serr.StatusCode)
	assert.Contains(t, serr.Error(), "form not found")
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "no retries")
}

func TestSubmitTransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client := newTestClient(t, url, Config{})
	err := client.Submit(context.Background(), testSubmission())

	var serr *leads.SubmissionError
	require.True(t, errors.As(err, &serr))
	assert.Zero(t, serr.StatusCode)
	assert.Error(t, serr.Unwrap())
}

func TestSubmitTimeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	client := newTestClient(t, server.URL, Config{Timeout: 50 * time.Millisecond})
	err := client.Submit(context.Background(), testSubmission())

	var serr *leads.SubmissionError
	require.True(t, errors.As(err, &serr))
	assert.Zero(t, serr.StatusCode)
}

func TestNewDefaults(t *testing.T) {
	_, err := New(Config{Endpoint: "  "})
	assert.ErrorIs(t, err, ErrEndpointRequired)

	client, err := New(Config{Endpoint: "https://formspree.io/f/abc"})
	require.NoError(t, err)
	assert.Equal(t, defaultTimeout, client.httpClient.Timeout)
	assert.Equal(t, defaultUserAgent, client.userAgent)

	unbounded, err := New(Config{Endpoint: "https://formspree.io/f/abc", Timeout: -1})
	require.NoError(t, err)
	assert.Zero(t, unbounded.httpClient.Timeout)
}
