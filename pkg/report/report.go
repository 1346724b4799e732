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

// Package report derives point-in-time status summaries from history.
package report

import (
	"time"

	"github.com/siva-sub/bizsync/pkg/history"
	"github.com/siva-sub/bizsync/pkg/models"
)

const (
	statusHealthy   = "healthy"
	statusUnhealthy = "unhealthy"

	recentAlertsWindow = 24 * time.Hour
	secondsPerHour     = 3600
)

// Generator renders status reports from a history owned by the scheduler.
type Generator struct {
	history  *history.History
	interval time.Duration
}

// NewGenerator creates a generator. The collection interval is used for the
// uptime estimate.
func NewGenerator(h *history.History, interval time.Duration) *Generator {
	return &Generator{
		history:  h,
		interval: interval,
	}
}

// Generate builds a report as of now. An empty history is an explicit
// no-data condition, not an error.
func (g *Generator) Generate(now time.Time) *models.Report {
	latest := g.history.Latest()
	metricsCount := g.history.MetricsCount()

	status := statusUnhealthy
	if latest != nil && latest.IntegrityOK {
		status = statusHealthy
	}

	recentAlerts := g.history.AlertsSince(now.Add(-recentAlertsWindow))
	if recentAlerts == nil {
		recentAlerts = []models.Alert{}
	}

	return &models.Report{
		Timestamp:      now,
		DatabaseStatus: status,
		NoData:         latest == nil,
		CurrentMetrics: latest,
		RecentAlerts:   recentAlerts,
		Trends:         g.trends(latest),
		Statistics: models.Statistics{
			TotalMetricsCollected: metricsCount,
			TotalAlerts:           g.history.AlertsCount(),
			UptimeHours:           float64(metricsCount) * g.interval.Seconds() / secondsPerHour,
		},
	}
}

// trends computes (most recent - second most recent) deltas, or nil when
// fewer than two snapshots exist.
func (g *Generator) trends(latest *models.Metrics) *models.Trends {
	previous := g.history.Previous()
	if latest == nil || previous == nil {
		return nil
	}

	return &models.Trends{
		ResponseTimeTrend:  latest.ResponseTimeMS - previous.ResponseTimeMS,
		SizeTrend:          latest.DatabaseSize - previous.DatabaseSize,
		FragmentationTrend: latest.FragmentationPercent - previous.FragmentationPercent,
	}
}
