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

// Package models defines the shared data types for the database monitor.
package models

import "time"

const bytesPerMB = 1024 * 1024

// Metrics is one immutable snapshot of the monitored database, produced by
// a single collection cycle.
type Metrics struct {
	Timestamp            time.Time `json:"timestamp"`
	DatabaseSize         int64     `json:"database_size"` // bytes
	PageCount            int64     `json:"page_count"`
	PageSize             int64     `json:"page_size"`
	FragmentationPercent float64   `json:"fragmentation_percent"`
	ConnectionCount      int       `json:"connection_count"`
	IntegrityOK          bool      `json:"integrity_ok"`
	WALSize              int64     `json:"wal_size"` // bytes, 0 when no -wal file exists
	ResponseTimeMS       float64   `json:"response_time_ms"`
}

// DatabaseSizeMB returns the main database file size in megabytes.
func (m *Metrics) DatabaseSizeMB() float64 {
	return float64(m.DatabaseSize) / bytesPerMB
}

// WALSizeMB returns the write-ahead-log file size in megabytes.
func (m *Metrics) WALSizeMB() float64 {
	return float64(m.WALSize) / bytesPerMB
}

// Report is a point-in-time status summary derived from history.
type Report struct {
	Timestamp      time.Time  `json:"timestamp"`
	DatabaseStatus string     `json:"database_status"` // "healthy" or "unhealthy"
	NoData         bool       `json:"no_data,omitempty"`
	CurrentMetrics *Metrics   `json:"current_metrics"`
	RecentAlerts   []Alert    `json:"recent_alerts"` // trailing 24h window
	Trends         *Trends    `json:"trends,omitempty"`
	Statistics     Statistics `json:"statistics"`
}

// Trends holds deltas between the two most recent snapshots.
type Trends struct {
	ResponseTimeTrend  float64 `json:"response_time_trend"`
	SizeTrend          int64   `json:"size_trend"`
	FragmentationTrend float64 `json:"fragmentation_trend"`
}

// Statistics holds aggregate counters over the full retained history.
type Statistics struct {
	TotalMetricsCollected int     `json:"total_metrics_collected"`
	TotalAlerts           int     `json:"total_alerts"`
	UptimeHours           float64 `json:"uptime_hours"`
}
