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

// Package config resolves the monitor configuration. User overrides are
// merged onto built-in defaults once at startup; the resolved Config is
// read-only thereafter.
package config

import (
	"errors"
	"time"

	"github.com/siva-sub/bizsync/pkg/logger"
	"github.com/siva-sub/bizsync/pkg/models"
)

const (
	defaultIntervalSeconds         = 60
	defaultMaxResponseTimeMS       = 1000
	defaultMaxFragmentationPercent = 20
	defaultMaxDatabaseSizeMB       = 500
	defaultMetricsRetentionDays    = 7
	defaultAlertsRetentionDays     = 30
	defaultBackupRetentionDays     = 90
	defaultAlertLogFile            = "database_alerts.log"
	defaultWebhookTimeout          = 10 * time.Second

	hoursPerDay = 24
)

var (
	errNoDatabasePaths  = errors.New("at least one database path is required")
	errInvalidInterval  = errors.New("monitoring interval must be positive")
	errInvalidRetention = errors.New("retention windows must be positive")
)

// MonitoringConfig holds the collection interval and alert thresholds.
type MonitoringConfig struct {
	IntervalSeconds         int     `json:"interval_seconds"`
	EnableAlerts            bool    `json:"enable_alerts"`
	MaxResponseTimeMS       float64 `json:"max_response_time_ms"`
	MaxFragmentationPercent float64 `json:"max_fragmentation_percent"`
	MaxDatabaseSizeMB       float64 `json:"max_database_size_mb"`
}

// RetentionConfig holds the history retention windows in days.
type RetentionConfig struct {
	MetricsDays int `json:"metrics_days"`
	AlertsDays  int `json:"alerts_days"`
	BackupDays  int `json:"backup_days"` // reserved, not used by the monitoring loop
}

// AlertsConfig holds the alert sink targets.
type AlertsConfig struct {
	LogFile        string          `json:"log_file"`
	WebhookURL     string          `json:"webhook_url,omitempty"`
	WebhookTimeout models.Duration `json:"webhook_timeout,omitempty"`
}

// Config is the fully resolved monitor configuration.
type Config struct {
	DatabasePaths []string         `json:"database_paths"`
	Monitoring    MonitoringConfig `json:"monitoring"`
	Retention     RetentionConfig  `json:"retention"`
	Alerts        AlertsConfig     `json:"alerts"`
	Logging       *logger.Config   `json:"logging,omitempty"`
}

// Default returns the built-in configuration used when no config file is
// given or the file cannot be read.
func Default() *Config {
	return &Config{
		DatabasePaths: []string{
			"~/Documents/bizsync.db",
			"~/.local/share/bizsync/bizsync.db",
			"/tmp/bizsync_test/bizsync.db",
		},
		Monitoring: MonitoringConfig{
			IntervalSeconds:         defaultIntervalSeconds,
			EnableAlerts:            true,
			MaxResponseTimeMS:       defaultMaxResponseTimeMS,
			MaxFragmentationPercent: defaultMaxFragmentationPercent,
			MaxDatabaseSizeMB:       defaultMaxDatabaseSizeMB,
		},
		Retention: RetentionConfig{
			MetricsDays: defaultMetricsRetentionDays,
			AlertsDays:  defaultAlertsRetentionDays,
			BackupDays:  defaultBackupRetentionDays,
		},
		Alerts: AlertsConfig{
			LogFile:        defaultAlertLogFile,
			WebhookTimeout: models.Duration(defaultWebhookTimeout),
		},
	}
}

// Validate implements the Validator interface.
func (c *Config) Validate() error {
	if len(c.DatabasePaths) == 0 {
		return errNoDatabasePaths
	}

	if c.Monitoring.IntervalSeconds <= 0 {
		return errInvalidInterval
	}

	if c.Retention.MetricsDays <= 0 || c.Retention.AlertsDays <= 0 {
		return errInvalidRetention
	}

	return nil
}

// Interval returns the collection interval as a duration.
func (c *Config) Interval() time.Duration {
	return time.Duration(c.Monitoring.IntervalSeconds) * time.Second
}

// MetricsRetention returns the metrics retention window as a duration.
func (c *Config) MetricsRetention() time.Duration {
	return time.Duration(c.Retention.MetricsDays) * hoursPerDay * time.Hour
}

// AlertsRetention returns the alerts retention window as a duration.
func (c *Config) AlertsRetention() time.Duration {
	return time.Duration(c.Retention.AlertsDays) * hoursPerDay * time.Hour
}
