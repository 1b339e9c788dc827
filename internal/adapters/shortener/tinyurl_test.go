// Copyright (c) 2026 Lerian Studio. All rights reserved.
// Use of this source code is governed by the Elastic License 2.0
// that can be found in the LICENSE file.

package shortener

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/LerianStudio/lib-commons/v3/commons/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTinyURLShortenerShorten(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

		var req createRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "https://cdn.example.com/pages/u1/20260101120000_index.html", req.URL)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"tiny_url":"https://tinyurl.com/abc123"}}`))
	}))
	defer srv.Close()

	ts := NewTinyURLShortener(srv.URL, "test-token", &log.NoneLogger{})

	shortURL, err := ts.Shorten(context.Background(), "https://cdn.example.com/pages/u1/20260101120000_index.html")
	require.NoError(t, err)
	assert.Equal(t, "https://tinyurl.com/abc123", shortURL)
}

func TestTinyURLShortenerShortenProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	ts := NewTinyURLShortener(srv.URL, "test-token", &log.NoneLogger{})

	shortURL, err := ts.Shorten(context.Background(), "https://cdn.example.com/pages/u1/page.html")
	assert.Error(t, err)
	assert.Empty(t, shortURL)
}

func TestTinyURLShortenerShortenEmptyResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{}}`))
	}))
	defer srv.Close()

	ts := NewTinyURLShortener(srv.URL, "test-token", &log.NoneLogger{})

	shortURL, err := ts.Shorten(context.Background(), "https://cdn.example.com/pages/u1/page.html")
	assert.Error(t, err)
	assert.Empty(t, shortURL)
}

func TestTinyURLShortenerBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	calls := 0

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	ts := NewTinyURLShortener(srv.URL, "test-token", &log.NoneLogger{})

	for i := 0; i < 10; i++ {
		_, err := ts.Shorten(context.Background(), "https://cdn.example.com/pages/u1/page.html")
		assert.Error(t, err)
	}

	// Once open, the breaker rejects without reaching the provider.
	assert.Less(t, calls, 10)
}
