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

package history

import (
	"testing"
	"time"

	"github.com/siva-sub/bizsync/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	metricsRetention = 7 * 24 * time.Hour
	alertsRetention  = 30 * 24 * time.Hour
)

func metricsAt(ts time.Time) *models.Metrics {
	return &models.Metrics{
		Timestamp:   ts,
		PageCount:   100,
		PageSize:    4096,
		IntegrityOK: true,
	}
}

func alertAt(ts time.Time) *models.Alert {
	return &models.Alert{
		Level:     models.Warning,
		Message:   "test",
		Timestamp: ts,
	}
}

func TestLatestAndPrevious(t *testing.T) {
	h := New(metricsRetention, alertsRetention)

	assert.Nil(t, h.Latest())
	assert.Nil(t, h.Previous())

	now := time.Now()

	first := metricsAt(now.Add(-time.Minute))
	second := metricsAt(now)

	h.AddMetrics(first)

	require.NotNil(t, h.Latest())
	assert.Equal(t, first.Timestamp, h.Latest().Timestamp)
	assert.Nil(t, h.Previous())

	h.AddMetrics(second)

	assert.Equal(t, second.Timestamp, h.Latest().Timestamp)
	assert.Equal(t, first.Timestamp, h.Previous().Timestamp)
}

func TestPruneDropsOnlyEntriesOlderThanCutoff(t *testing.T) {
	h := New(metricsRetention, alertsRetention)
	now := time.Now()

	h.AddMetrics(metricsAt(now.Add(-8 * 24 * time.Hour))) // older than cutoff
	h.AddMetrics(metricsAt(now.Add(-metricsRetention)))   // exactly at cutoff
	h.AddMetrics(metricsAt(now))                          // fresh

	h.AddAlert(alertAt(now.Add(-31 * 24 * time.Hour))) // older than cutoff
	h.AddAlert(alertAt(now.Add(-alertsRetention)))     // exactly at cutoff
	h.AddAlert(alertAt(now))                           // fresh

	metricsDropped, alertsDropped := h.Prune(now)

	// Strictly-older-than-cutoff is dropped; equal-to-cutoff is kept.
	assert.Equal(t, 1, metricsDropped)
	assert.Equal(t, 1, alertsDropped)
	assert.Equal(t, 2, h.MetricsCount())
	assert.Equal(t, 2, h.AlertsCount())
}

func TestPruneIsIdempotent(t *testing.T) {
	h := New(metricsRetention, alertsRetention)
	now := time.Now()

	for i := 0; i < 5; i++ {
		h.AddMetrics(metricsAt(now.Add(-time.Duration(i) * 3 * 24 * time.Hour)))
		h.AddAlert(alertAt(now.Add(-time.Duration(i) * 10 * 24 * time.Hour)))
	}

	firstMetrics, firstAlerts := h.Prune(now)
	metricsAfterFirst := h.MetricsCount()
	alertsAfterFirst := h.AlertsCount()

	secondMetrics, secondAlerts := h.Prune(now)

	assert.Positive(t, firstMetrics)
	assert.Positive(t, firstAlerts)
	assert.Zero(t, secondMetrics)
	assert.Zero(t, secondAlerts)
	assert.Equal(t, metricsAfterFirst, h.MetricsCount())
	assert.Equal(t, alertsAfterFirst, h.AlertsCount())
}

func TestPruneOnEmptyHistory(t *testing.T) {
	h := New(metricsRetention, alertsRetention)

	metricsDropped, alertsDropped := h.Prune(time.Now())

	assert.Zero(t, metricsDropped)
	assert.Zero(t, alertsDropped)
}

func TestAlertsSince(t *testing.T) {
	h := New(metricsRetention, alertsRetention)
	now := time.Now()

	h.AddAlert(alertAt(now.Add(-25 * time.Hour)))
	h.AddAlert(alertAt(now.Add(-24 * time.Hour))) // boundary, kept
	h.AddAlert(alertAt(now.Add(-time.Hour)))

	recent := h.AlertsSince(now.Add(-24 * time.Hour))

	require.Len(t, recent, 2)
}

func TestLatestReturnsACopy(t *testing.T) {
	h := New(metricsRetention, alertsRetention)
	now := time.Now()

	h.AddMetrics(metricsAt(now))

	got := h.Latest()
	got.PageCount = 9999

	assert.Equal(t, int64(100), h.Latest().PageCount)
}
