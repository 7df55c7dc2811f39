package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opencouncil/meeting-ingest/internal/types"
)

func testOptions() *Options {
	return &Options{
		Timeout:     5 * time.Second,
		UserAgent:   DefaultUserAgent,
		MaxAttempts: 3,
		BackoffBase: time.Millisecond,
		RateLimit:   0, // no throttling in tests
	}
}

func TestGet_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html><body>meetings</body></html>"))
	}))
	defer server.Close()

	f := NewFetcher(testOptions())
	result, err := f.Get(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, result.StatusCode)
	assert.Contains(t, string(result.Body), "meetings")
	assert.Equal(t, "text/html", result.ContentType)
}

func TestGet_InvalidURL(t *testing.T) {
	f := NewFetcher(testOptions())
	_, err := f.Get(context.Background(), "not-a-valid-url")
	require.Error(t, err)

	var fetchErr *Error
	assert.ErrorAs(t, err, &fetchErr)
	assert.False(t, fetchErr.Retryable)
}

func TestGet_PermanentFailureNotRetried(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	f := NewFetcher(testOptions())
	result, err := f.Get(context.Background(), server.URL)
	require.Error(t, err)
	assert.NotNil(t, result) // result is returned even on error
	assert.Equal(t, http.StatusNotFound, result.StatusCode)
	assert.Equal(t, int32(1), calls.Load())

	var fetchErr *Error
	assert.ErrorAs(t, err, &fetchErr)
	assert.False(t, fetchErr.Retryable)
}

func TestGet_TransientFailureRetried(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("recovered"))
	}))
	defer server.Close()

	f := NewFetcher(testOptions())
	result, err := f.Get(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
	assert.Contains(t, string(result.Body), "recovered")
}

func TestGet_RetryBudgetExhausted(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	f := NewFetcher(testOptions())
	_, err := f.Get(context.Background(), server.URL)
	require.Error(t, err)
	assert.Equal(t, int32(3), calls.Load())

	var fetchErr *Error
	assert.ErrorAs(t, err, &fetchErr)
	assert.True(t, fetchErr.Retryable)
	assert.Contains(t, err.Error(), "500")
}

func TestHash_Deterministic(t *testing.T) {
	a := Hash([]byte("agenda content"))
	b := Hash([]byte("agenda content"))
	c := Hash([]byte("different content"))
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 64)
}

func TestDocuments_PartialFailureIsolated(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/minutes.pdf" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte("agenda bytes"))
	}))
	defer server.Close()

	f := NewFetcher(testOptions())
	ref := types.MeetingRef{
		ExternalID: "2025-01-15",
		AgendaURL:  server.URL + "/agenda.pdf",
		MinutesURL: server.URL + "/minutes.pdf",
	}

	docs, errs := f.Documents(context.Background(), ref)
	require.Len(t, docs, 2)
	require.Len(t, errs, 2)

	assert.NoError(t, errs[0])
	assert.Equal(t, types.DocAgenda, docs[0].Kind)
	assert.NotEmpty(t, docs[0].ContentHash)

	assert.Error(t, errs[1])
}

func TestShouldUseBrowser(t *testing.T) {
	assert.True(t, ShouldUseBrowser("<html></html>"))
	assert.False(t, ShouldUseBrowser(string(make([]byte, MinListingLength+1))))
}
