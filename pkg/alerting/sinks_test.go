/*
 * Copyright 2025 BizSync Contributors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package alerting

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/siva-sub/bizsync/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testAlert(level models.AlertLevel, message string) *models.Alert {
	return &models.Alert{
		AlertID:   "test-alert-id",
		Level:     level,
		Message:   message,
		Timestamp: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestLogSinkAppendsOneJSONLinePerAlert(t *testing.T) {
	path := filepath.Join(t.TempDir(), "alerts.log")
	sink := NewLogSink(path)

	ctx := context.Background()

	require.NoError(t, sink.Notify(ctx, testAlert(models.Warning, "first")))
	require.NoError(t, sink.Notify(ctx, testAlert(models.Critical, "second")))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)

	var first models.Alert
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.Equal(t, models.Warning, first.Level)
	assert.Equal(t, "first", first.Message)
	assert.Equal(t, "test-alert-id", first.AlertID)

	var second models.Alert
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &second))
	assert.Equal(t, models.Critical, second.Level)
}

func TestLogSinkUnwritablePathReturnsError(t *testing.T) {
	sink := NewLogSink(filepath.Join(t.TempDir(), "missing-dir", "alerts.log"))

	err := sink.Notify(context.Background(), testAlert(models.Warning, "boom"))
	require.Error(t, err)
}

func TestWebhookSinkDeliversWarningAndAbove(t *testing.T) {
	var received webhookPayload

	calls := 0

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++

		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))

		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	sink := NewWebhookSink(server.URL, time.Second)
	ctx := context.Background()

	require.NoError(t, sink.Notify(ctx, testAlert(models.Critical, "integrity gone")))
	require.Equal(t, 1, calls)
	assert.Equal(t, "critical", received.Level)
	assert.Equal(t, "BizSync Database Alert: integrity gone", received.Text)
	assert.Equal(t, "test-alert-id", received.AlertID)
}

func TestWebhookSinkSkipsInfoAlerts(t *testing.T) {
	calls := 0

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	sink := NewWebhookSink(server.URL, time.Second)

	require.NoError(t, sink.Notify(context.Background(), testAlert(models.Info, "large WAL")))
	assert.Zero(t, calls)
}

func TestWebhookSinkNon2xxIsAnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	sink := NewWebhookSink(server.URL, time.Second)

	err := sink.Notify(context.Background(), testAlert(models.Warning, "slow"))
	require.ErrorIs(t, err, errWebhookResponse)
}

func TestWebhookSinkUnreachableEndpointIsAnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	server.Close() // refuse connections

	sink := NewWebhookSink(server.URL, time.Second)

	err := sink.Notify(context.Background(), testAlert(models.Warning, "slow"))
	require.ErrorIs(t, err, errWebhookRequest)
}
