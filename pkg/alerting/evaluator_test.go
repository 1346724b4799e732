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
	"testing"
	"time"

	"github.com/siva-sub/bizsync/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultThresholds() Thresholds {
	return Thresholds{
		MaxResponseTimeMS:       1000,
		MaxFragmentationPercent: 20,
		MaxDatabaseSizeMB:       500,
	}
}

func healthyMetrics(now time.Time) *models.Metrics {
	return &models.Metrics{
		Timestamp:            now,
		DatabaseSize:         10 * 1024 * 1024,
		PageCount:            1000,
		PageSize:             4096,
		FragmentationPercent: 5,
		ConnectionCount:      1,
		IntegrityOK:          true,
		WALSize:              0,
		ResponseTimeMS:       50,
	}
}

func TestEvaluateHealthySnapshotProducesNoAlerts(t *testing.T) {
	now := time.Now()

	alerts := Evaluate(healthyMetrics(now), defaultThresholds(), now)

	assert.Empty(t, alerts)
}

func TestEvaluateRuleOrderAndIndependence(t *testing.T) {
	now := time.Now()

	// Violates all five rules at once.
	m := &models.Metrics{
		Timestamp:            now,
		DatabaseSize:         600 * 1024 * 1024,
		PageCount:            1000,
		PageSize:             4096,
		FragmentationPercent: 35,
		ConnectionCount:      1,
		IntegrityOK:          false,
		WALSize:              60 * 1024 * 1024,
		ResponseTimeMS:       1500,
	}

	alerts := Evaluate(m, defaultThresholds(), now)
	require.Len(t, alerts, 5)

	assert.Equal(t, models.Warning, alerts[0].Level)
	assert.Contains(t, alerts[0].Message, "High response time")
	assert.Equal(t, models.Warning, alerts[1].Level)
	assert.Contains(t, alerts[1].Message, "High fragmentation")
	assert.Equal(t, models.Warning, alerts[2].Level)
	assert.Contains(t, alerts[2].Message, "Large database size")
	assert.Equal(t, models.Critical, alerts[3].Level)
	assert.Equal(t, "Database integrity check failed", alerts[3].Message)
	assert.Equal(t, models.Info, alerts[4].Level)
	assert.Contains(t, alerts[4].Message, "Large WAL file")

	for _, a := range alerts {
		assert.Equal(t, now, a.Timestamp)
		assert.Same(t, m, a.Metrics)
	}
}

func TestEvaluateIsDeterministic(t *testing.T) {
	now := time.Now()

	m := healthyMetrics(now)
	m.FragmentationPercent = 42
	m.ResponseTimeMS = 2000

	first := Evaluate(m, defaultThresholds(), now)
	second := Evaluate(m, defaultThresholds(), now)

	require.Equal(t, first, second)
}

func TestEvaluateSingleRuleViolations(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name      string
		mutate    func(*models.Metrics)
		wantLevel models.AlertLevel
		wantIn    string
	}{
		{
			name:      "high response time",
			mutate:    func(m *models.Metrics) { m.ResponseTimeMS = 1500 },
			wantLevel: models.Warning,
			wantIn:    "High response time: 1500.00ms (threshold: 1000ms)",
		},
		{
			name:      "high fragmentation",
			mutate:    func(m *models.Metrics) { m.FragmentationPercent = 25 },
			wantLevel: models.Warning,
			wantIn:    "High fragmentation: 25.00% (threshold: 20%)",
		},
		{
			name:      "large database",
			mutate:    func(m *models.Metrics) { m.DatabaseSize = 600 * 1024 * 1024 },
			wantLevel: models.Warning,
			wantIn:    "Large database size: 600.00MB (threshold: 500MB)",
		},
		{
			name:      "integrity failure",
			mutate:    func(m *models.Metrics) { m.IntegrityOK = false },
			wantLevel: models.Critical,
			wantIn:    "Database integrity check failed",
		},
		{
			name:      "large WAL",
			mutate:    func(m *models.Metrics) { m.WALSize = 51 * 1024 * 1024 },
			wantLevel: models.Info,
			wantIn:    "Large WAL file: 51.00MB (consider checkpoint)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := healthyMetrics(now)
			tt.mutate(m)

			alerts := Evaluate(m, defaultThresholds(), now)
			require.Len(t, alerts, 1)
			assert.Equal(t, tt.wantLevel, alerts[0].Level)
			assert.Contains(t, alerts[0].Message, tt.wantIn)
		})
	}
}

func TestEvaluateFragmentationAtQuarterOfPages(t *testing.T) {
	// pageCount=1000, freelistCount=250 yields exactly 25 percent, which
	// crosses the default 20 percent threshold and nothing else.
	now := time.Now()

	m := healthyMetrics(now)
	m.FragmentationPercent = float64(250) / float64(1000) * 100

	alerts := Evaluate(m, defaultThresholds(), now)
	require.Len(t, alerts, 1)
	assert.Equal(t, models.Warning, alerts[0].Level)
	assert.Contains(t, alerts[0].Message, "High fragmentation: 25.00%")
}

func TestEvaluateThresholdBoundaryIsExclusive(t *testing.T) {
	now := time.Now()

	m := healthyMetrics(now)
	m.ResponseTimeMS = 1000
	m.FragmentationPercent = 20
	m.DatabaseSize = 500 * 1024 * 1024
	m.WALSize = MaxWALSizeMB * 1024 * 1024

	// Values exactly at a threshold do not fire.
	assert.Empty(t, Evaluate(m, defaultThresholds(), now))
}

func TestEvaluateFragmentationAboveHundredIsReported(t *testing.T) {
	now := time.Now()

	m := healthyMetrics(now)
	m.FragmentationPercent = 120

	alerts := Evaluate(m, defaultThresholds(), now)
	require.Len(t, alerts, 1)
	assert.Contains(t, alerts[0].Message, "120.00%")
}
