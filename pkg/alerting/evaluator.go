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

// Package alerting evaluates metric snapshots against thresholds and
// dispatches the resulting alerts to the configured sinks.
package alerting

import (
	"fmt"
	"time"

	"github.com/siva-sub/bizsync/pkg/models"
)

// MaxWALSizeMB is the WAL-file size above which a checkpoint is suggested.
// Fixed policy, not user-configurable.
const MaxWALSizeMB = 50

// Thresholds are the configurable limits the evaluator checks a snapshot
// against.
type Thresholds struct {
	MaxResponseTimeMS       float64
	MaxFragmentationPercent float64
	MaxDatabaseSizeMB       float64
}

// Evaluate maps one snapshot to zero or more alerts. The rules run in a
// fixed order and are independent: a snapshot violating several thresholds
// produces one alert per violated rule. Every alert shares the same
// timestamp and references the triggering snapshot. Evaluate is pure; there
// is no deduplication or suppression across cycles.
func Evaluate(m *models.Metrics, t Thresholds, now time.Time) []*models.Alert {
	var alerts []*models.Alert

	raise := func(level models.AlertLevel, message string) {
		alerts = append(alerts, &models.Alert{
			Level:     level,
			Message:   message,
			Timestamp: now,
			Metrics:   m,
		})
	}

	if m.ResponseTimeMS > t.MaxResponseTimeMS {
		raise(models.Warning, fmt.Sprintf("High response time: %.2fms (threshold: %.0fms)",
			m.ResponseTimeMS, t.MaxResponseTimeMS))
	}

	if m.FragmentationPercent > t.MaxFragmentationPercent {
		raise(models.Warning, fmt.Sprintf("High fragmentation: %.2f%% (threshold: %.0f%%)",
			m.FragmentationPercent, t.MaxFragmentationPercent))
	}

	if sizeMB := m.DatabaseSizeMB(); sizeMB > t.MaxDatabaseSizeMB {
		raise(models.Warning, fmt.Sprintf("Large database size: %.2fMB (threshold: %.0fMB)",
			sizeMB, t.MaxDatabaseSizeMB))
	}

	if !m.IntegrityOK {
		raise(models.Critical, "Database integrity check failed")
	}

	if walMB := m.WALSizeMB(); walMB > MaxWALSizeMB {
		raise(models.Info, fmt.Sprintf("Large WAL file: %.2fMB (consider checkpoint)", walMB))
	}

	return alerts
}
