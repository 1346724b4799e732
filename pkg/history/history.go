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

// Package history keeps the bounded, time-ordered record of past metrics
// and alerts.
package history

import (
	"sync"
	"time"

	"github.com/siva-sub/bizsync/pkg/models"
)

// History holds two append-only, time-ordered series. Entries arrive in
// collection order, so each series is monotonically increasing by
// timestamp. The scheduler is the only writer; the read lock exists so a
// report can be generated concurrently with the loop.
type History struct {
	mu               sync.RWMutex
	metrics          []models.Metrics
	alerts           []models.Alert
	metricsRetention time.Duration
	alertsRetention  time.Duration
}

// New creates an empty history with the given retention windows.
func New(metricsRetention, alertsRetention time.Duration) *History {
	return &History{
		metricsRetention: metricsRetention,
		alertsRetention:  alertsRetention,
	}
}

// AddMetrics appends one snapshot.
func (h *History) AddMetrics(m *models.Metrics) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.metrics = append(h.metrics, *m)
}

// AddAlert appends one alert.
func (h *History) AddAlert(a *models.Alert) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.alerts = append(h.alerts, *a)
}

// Prune drops entries strictly older than the retention cutoff for each
// series. An entry exactly at the cutoff is kept. Pruning is idempotent:
// applying it twice with the same now yields the same history.
func (h *History) Prune(now time.Time) (metricsDropped, alertsDropped int) {
	h.mu.Lock()
	defer h.mu.Unlock()

	metricsCutoff := now.Add(-h.metricsRetention)
	alertsCutoff := now.Add(-h.alertsRetention)

	kept := h.metrics[:0]

	for _, m := range h.metrics {
		if !m.Timestamp.Before(metricsCutoff) {
			kept = append(kept, m)
		}
	}

	metricsDropped = len(h.metrics) - len(kept)
	h.metrics = kept

	keptAlerts := h.alerts[:0]

	for _, a := range h.alerts {
		if !a.Timestamp.Before(alertsCutoff) {
			keptAlerts = append(keptAlerts, a)
		}
	}

	alertsDropped = len(h.alerts) - len(keptAlerts)
	h.alerts = keptAlerts

	return metricsDropped, alertsDropped
}

// Latest returns a copy of the most recent snapshot, or nil when none has
// been collected yet.
func (h *History) Latest() *models.Metrics {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if len(h.metrics) == 0 {
		return nil
	}

	m := h.metrics[len(h.metrics)-1]

	return &m
}

// Previous returns a copy of the second most recent snapshot, or nil when
// fewer than two exist.
func (h *History) Previous() *models.Metrics {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if len(h.metrics) < 2 {
		return nil
	}

	m := h.metrics[len(h.metrics)-2]

	return &m
}

// MetricsCount returns the number of retained snapshots.
func (h *History) MetricsCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.metrics)
}

// AlertsCount returns the number of retained alerts.
func (h *History) AlertsCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.alerts)
}

// AlertsSince returns copies of all alerts with a timestamp at or after t.
func (h *History) AlertsSince(t time.Time) []models.Alert {
	h.mu.RLock()
	defer h.mu.RUnlock()

	var out []models.Alert

	for _, a := range h.alerts {
		if !a.Timestamp.Before(t) {
			out = append(out, a)
		}
	}

	return out
}
