// Copyright (c) 2026 Lerian Studio. All rights reserved.
// Use of this source code is governed by the Elastic License 2.0
// that can be found in the LICENSE file.

package in

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newThrottleTestApp(cfg ThrottleConfig) *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	app.Use(ThrottleMiddleware(cfg))
	app.Get("/v1/users/:user_id/artifacts", func(c *fiber.Ctx) error {
		return c.SendStatus(http.StatusOK)
	})
	app.Post("/v1/users/:user_id/artifacts", func(c *fiber.Ctx) error {
		return c.SendStatus(http.StatusCreated)
	})
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.SendStatus(http.StatusOK)
	})

	return app
}

func TestThrottleMiddleware_DisabledPassthrough(t *testing.T) {
	t.Parallel()

	app := newThrottleTestApp(ThrottleConfig{
		Enabled:   false,
		GlobalMax: 1,
		UploadMax: 1,
		Window:    time.Minute,
	})

	for i := 0; i < 10; i++ {
		req := httptest.NewRequest(http.MethodGet, "/v1/users/u1/artifacts", nil)
		resp, err := app.Test(req)

		require.NoError(t, err)
		resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode,
			"Request %d should pass through when throttling is disabled", i+1)
	}
}

func TestThrottleMiddleware_UploadTierIsPerUser(t *testing.T) {
	t.Parallel()

	app := newThrottleTestApp(ThrottleConfig{
		Enabled:   true,
		GlobalMax: 100,
		UploadMax: 2,
		Window:    time.Minute,
	})

	// Exhaust u1's upload tier.
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/v1/users/u1/artifacts", nil)
		resp, err := app.Test(req)

		require.NoError(t, err)
		resp.Body.Close()

		assert.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	req := httptest.NewRequest(http.MethodPost, "/v1/users/u1/artifacts", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)

	defer resp.Body.Close()

	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("Retry-After"))

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var envelope throttleErrorResponse
	require.NoError(t, json.Unmarshal(body, &envelope))
	assert.Equal(t, "PGH-0429", envelope.Code)
	assert.Equal(t, "Too Many Requests", envelope.Title)

	// Another user still has a fresh counter.
	other := httptest.NewRequest(http.MethodPost, "/v1/users/u2/artifacts", nil)
	otherResp, err := app.Test(other)
	require.NoError(t, err)
	otherResp.Body.Close()

	assert.Equal(t, http.StatusCreated, otherResp.StatusCode)
}

func TestThrottleMiddleware_TiersAreIndependent(t *testing.T) {
	t.Parallel()

	app := newThrottleTestApp(ThrottleConfig{
		Enabled:   true,
		GlobalMax: 100,
		UploadMax: 1,
		Window:    time.Minute,
	})

	// Exhaust the upload tier for u1.
	first := httptest.NewRequest(http.MethodPost, "/v1/users/u1/artifacts", nil)
	firstResp, err := app.Test(first)
	require.NoError(t, err)
	firstResp.Body.Close()

	blocked := httptest.NewRequest(http.MethodPost, "/v1/users/u1/artifacts", nil)
	blockedResp, err := app.Test(blocked)
	require.NoError(t, err)
	blockedResp.Body.Close()
	require.Equal(t, http.StatusTooManyRequests, blockedResp.StatusCode)

	// Reads for the same user run against the global tier and still pass.
	read := httptest.NewRequest(http.MethodGet, "/v1/users/u1/artifacts", nil)
	readResp, err := app.Test(read)
	require.NoError(t, err)
	readResp.Body.Close()

	assert.Equal(t, http.StatusOK, readResp.StatusCode)
}

func TestThrottleMiddleware_HealthPathsBypass(t *testing.T) {
	t.Parallel()

	app := newThrottleTestApp(ThrottleConfig{
		Enabled:   true,
		GlobalMax: 1,
		UploadMax: 1,
		Window:    time.Minute,
	})

	for i := 0; i < 10; i++ {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		resp, err := app.Test(req)

		require.NoError(t, err)
		resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode,
			"Health check %d must never be throttled", i+1)
	}
}
