// Copyright (c) 2026 Lerian Studio. All rights reserved.
// Use of this source code is governed by the Elastic License 2.0
// that can be found in the LICENSE file.

package in

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

// ThrottleConfig holds the configuration for the two-tier upload throttle.
//   - Enabled: feature toggle; when false, the middleware is a passthrough
//   - GlobalMax: catch-all per-IP limit for general API requests
//   - UploadMax: per-user limit for the upload admission pipeline
//   - Window: sliding window both tiers count within
//   - Storage: optional fiber.Storage backend (e.g. Redis) for distributed counting
type ThrottleConfig struct {
	Enabled   bool
	GlobalMax int
	UploadMax int
	Window    time.Duration
	Storage   ThrottleStorage
}

// healthPaths lists endpoints excluded from throttling.
// These paths must always remain accessible for orchestration and monitoring.
var healthPaths = map[string]bool{
	"/health":  true,
	"/ready":   true,
	"/version": true,
}

func isHealthPath(path string) bool {
	return healthPaths[path]
}

// isUploadRequest returns true for the upload admission routes, which carry
// the per-user throttle tier.
func isUploadRequest(c *fiber.Ctx) bool {
	return c.Method() == fiber.MethodPost && c.Params("user_id") != ""
}

// ThrottleMiddleware returns a Fiber handler enforcing two independent rate
// limit tiers. Upload admission counts per user so one noisy user cannot
// starve the rest; everything else counts per IP. Each tier maintains its own
// counter, so exhausting one does not affect the other.
//
// When cfg.Enabled is false, returns a passthrough handler that calls c.Next().
//
// Throttled responses return HTTP 429 with a structured JSON body and a
// Retry-After header indicating when the client may retry.
func ThrottleMiddleware(cfg ThrottleConfig) fiber.Handler {
	if !cfg.Enabled {
		return func(c *fiber.Ctx) error {
			return c.Next()
		}
	}

	limitReached := newLimitReachedHandler(cfg.Window)

	globalLimiter := limiter.New(limiter.Config{
		Max:        cfg.GlobalMax,
		Expiration: cfg.Window,
		Storage:    cfg.Storage,
		KeyGenerator: func(c *fiber.Ctx) string {
			return "global:" + c.IP()
		},
		LimitReached: limitReached,
	})

	uploadLimiter := limiter.New(limiter.Config{
		Max:        cfg.UploadMax,
		Expiration: cfg.Window,
		Storage:    cfg.Storage,
		KeyGenerator: func(c *fiber.Ctx) string {
			return "upload:" + c.Params("user_id")
		},
		LimitReached: limitReached,
	})

	return func(c *fiber.Ctx) error {
		if isHealthPath(c.Path()) {
			return c.Next()
		}

		if isUploadRequest(c) {
			return uploadLimiter(c)
		}

		return globalLimiter(c)
	}
}

// throttleErrorResponse is the structured JSON body returned when a throttle
// tier is exhausted. It follows the project's standard error envelope.
type throttleErrorResponse struct {
	Code    string `json:"code"`
	Title   string `json:"title"`
	Message string `json:"message"`
}

// newLimitReachedHandler returns a handler that is called when a throttle tier
// is exhausted. It sets the Retry-After header using the configured window
// duration (in seconds) and returns HTTP 429 with a structured JSON body.
func newLimitReachedHandler(window time.Duration) fiber.Handler {
	retryAfterSeconds := fmt.Sprintf("%d", int(window.Seconds()))

	return func(c *fiber.Ctx) error {
		retryAfter := c.GetRespHeader("Retry-After")
		if retryAfter == "" {
			c.Set("Retry-After", retryAfterSeconds)
		}

		return c.Status(fiber.StatusTooManyRequests).JSON(throttleErrorResponse{
			Code:    "PGH-0429",
			Title:   "Too Many Requests",
			Message: "Rate limit exceeded. Please retry after " + retryAfterSeconds + " seconds.",
		})
	}
}
