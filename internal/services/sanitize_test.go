// Copyright (c) 2026 Lerian Studio. All rights reserved.
// Use of this source code is governed by the Elastic License 2.0
// that can be found in the LICENSE file.

package services

import (
	"context"
	"testing"

	"github.com/LerianStudio/pagehost/pkg/constant"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestSanitizeDropsScriptSubtree(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	uc, _ := newTestUseCase(t, ctrl)

	out, err := uc.sanitize(context.Background(), []byte(`<html><body><p>keep</p><script>alert("x")</script></body></html>`))
	require.NoError(t, err)

	assert.Contains(t, string(out), "<p>keep</p>")
	assert.NotContains(t, string(out), "script")
	assert.NotContains(t, string(out), "alert")
}

func TestSanitizeStripsEventHandlersAndScriptURLs(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	uc, _ := newTestUseCase(t, ctrl)

	out, err := uc.sanitize(context.Background(), []byte(`<body><a href="javascript:alert(1)" onclick="x()" title="ok">link</a><img src="pic.png" onerror="y()"></body>`))
	require.NoError(t, err)

	result := string(out)
	assert.NotContains(t, result, "onclick")
	assert.NotContains(t, result, "onerror")
	assert.NotContains(t, result, "javascript:")
	assert.Contains(t, result, `title="ok"`)
	assert.Contains(t, result, `src="pic.png"`)
}

func TestSanitizeDropsDisallowedTagKeepsText(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	uc, _ := newTestUseCase(t, ctrl)

	out, err := uc.sanitize(context.Background(), []byte(`<body><form action="/steal"><p>inner text</p></form></body>`))
	require.NoError(t, err)

	result := string(out)
	assert.NotContains(t, result, "form")
	assert.Contains(t, result, "inner text")
}

func TestSanitizeToleratesMalformedMarkup(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	uc, _ := newTestUseCase(t, ctrl)

	out, err := uc.sanitize(context.Background(), []byte(`<html><body><p>unclosed<div><span>deep`))
	require.NoError(t, err)
	assert.Contains(t, string(out), "unclosed")
	assert.Contains(t, string(out), "deep")
}

func TestSanitizeRejectsNonUTF8Content(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	uc, _ := newTestUseCase(t, ctrl)

	_, err := uc.sanitize(context.Background(), []byte{0xff, 0xfe, 0xfd})
	assert.Equal(t, constant.ErrSanitizationFailed.Error(), businessErrorCode(t, err))
}
