// Copyright (c) 2026 Lerian Studio. All rights reserved.
// Use of this source code is governed by the Elastic License 2.0
// that can be found in the LICENSE file.

package shortener

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/LerianStudio/pagehost/pkg/constant"

	libCommons "github.com/LerianStudio/lib-commons/v3/commons"
	libLog "github.com/LerianStudio/lib-commons/v3/commons/log"
	"github.com/sony/gobreaker"
)

// Shortener turns a long public URL into a short one. Implementations are
// best-effort: callers fall back to the long URL on any error.
//
//go:generate mockgen --destination=tinyurl.mock.go --package=shortener . Shortener
type Shortener interface {
	Shorten(ctx context.Context, longURL string) (string, error)
}

// TinyURLShortener shortens URLs through the TinyURL create API, guarded by a
// circuit breaker so a degraded provider stops being called for a while
// instead of slowing every upload down.
type TinyURLShortener struct {
	endpoint   string
	token      string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
}

type createRequest struct {
	URL string `json:"url"`
}

type createResponse struct {
	Data struct {
		TinyURL string `json:"tiny_url"`
	} `json:"data"`
}

// NewTinyURLShortener creates a TinyURLShortener for the given API endpoint and bearer token.
func NewTinyURLShortener(endpoint, token string, logger libLog.Logger) *TinyURLShortener {
	settings := gobreaker.Settings{
		Name:        "tinyurl",
		MaxRequests: constant.ShortenerBreakerMaxRequests,
		Interval:    constant.ShortenerBreakerInterval,
		Timeout:     constant.ShortenerBreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= constant.ShortenerBreakerThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warnf("Shortener circuit breaker %s: %s -> %s", name, from.String(), to.String())
		},
	}

	return &TinyURLShortener{
		endpoint: endpoint,
		token:    token,
		httpClient: &http.Client{
			Timeout: constant.ShortenerRequestTimeout,
		},
		breaker: gobreaker.NewCircuitBreaker(settings),
	}
}

// Shorten posts the long URL to the provider and returns the short form.
// Returns an error when the provider fails or the breaker is open; the caller
// keeps the long URL in that case.
func (ts *TinyURLShortener) Shorten(ctx context.Context, longURL string) (string, error) {
	logger := libCommons.NewLoggerFromContext(ctx)

	result, err := ts.breaker.Execute(func() (any, error) {
		return ts.shorten(ctx, longURL)
	})
	if err != nil {
		logger.Warnf("URL shortening failed: %v", err)

		return "", err
	}

	shortURL, ok := result.(string)
	if !ok || shortURL == "" {
		return "", fmt.Errorf("shortener returned an empty URL")
	}

	return shortURL, nil
}

func (ts *TinyURLShortener) shorten(ctx context.Context, longURL string) (string, error) {
	body, err := json.Marshal(createRequest{URL: longURL})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, ts.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}

	req.Header.Set("Authorization", "Bearer "+ts.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := ts.httpClient.Do(req)
	if err != nil {
		return "", err
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("shortener responded with status %d", resp.StatusCode)
	}

	var decoded createResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", err
	}

	if decoded.Data.TinyURL == "" {
		return "", fmt.Errorf("shortener response missing tiny_url")
	}

	return decoded.Data.TinyURL, nil
}
