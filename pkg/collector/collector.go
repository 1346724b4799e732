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

// Package collector samples structural and performance metrics from a local
// SQLite database file.
package collector

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/siva-sub/bizsync/pkg/logger"
	"github.com/siva-sub/bizsync/pkg/models"
)

const (
	defaultCollectTimeout = 10 * time.Second
	busyTimeoutMS         = 10000
	walSuffix             = "-wal"
	percentScale          = 100

	// The probe connection is the only one this process holds. SQLite
	// exposes no cross-process connection count, so this stays a
	// placeholder estimate.
	connectionCountEstimate = 1
)

var (
	// ErrDatabaseNotFound is returned when none of the configured paths
	// reference an existing file.
	ErrDatabaseNotFound = errors.New("database file not found")

	errOpenDatabase   = errors.New("failed to open database")
	errLivenessProbe  = errors.New("liveness probe failed")
	errPageStats      = errors.New("failed to read page statistics")
	errIntegrityProbe = errors.New("integrity probe failed")
	errFileStats      = errors.New("failed to stat database file")
)

// SQLiteCollector produces one Metrics snapshot per Collect call by opening
// a short-lived read-only connection to the store.
type SQLiteCollector struct {
	timeout time.Duration
	logger  logger.Logger
}

// New creates a collector with the default probe timeout.
func New(log logger.Logger) *SQLiteCollector {
	return &SQLiteCollector{
		timeout: defaultCollectTimeout,
		logger:  log,
	}
}

// NewWithTimeout creates a collector with a caller-supplied probe timeout.
func NewWithTimeout(timeout time.Duration, log logger.Logger) *SQLiteCollector {
	return &SQLiteCollector{
		timeout: timeout,
		logger:  log,
	}
}

// FindDatabase returns the first configured path that references an
// existing file. Paths are re-resolved on every call so the target may be
// swapped between cycles.
func FindDatabase(paths []string) (string, error) {
	for _, p := range paths {
		resolved := expandPath(p)
		if _, err := os.Stat(resolved); err == nil {
			return resolved, nil
		}
	}

	return "", ErrDatabaseNotFound
}

// expandPath resolves a leading ~ against the current user's home directory.
func expandPath(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}

	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// Collect runs the fixed probe battery against the database at path and
// assembles an immutable Metrics snapshot. Any probe failure aborts the
// whole collection; the caller treats that as "no metrics this cycle".
func (c *SQLiteCollector) Collect(ctx context.Context, dbPath string) (*models.Metrics, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	dsn := fmt.Sprintf("file:%s?mode=ro&_busy_timeout=%d", dbPath, busyTimeoutMS)

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errOpenDatabase, err)
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			c.logger.Error().Err(closeErr).Msg("Error closing probe connection")
		}
	}()

	// SQLite works best with a single connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	responseTime, err := c.probeLiveness(ctx, db)
	if err != nil {
		return nil, err
	}

	pageCount, pageSize, freelistCount, err := c.readPageStats(ctx, db)
	if err != nil {
		return nil, err
	}

	fragmentation := fragmentationPercent(freelistCount, pageCount)

	dbSize, walSize, err := fileSizes(dbPath)
	if err != nil {
		return nil, err
	}

	integrityOK, err := c.probeIntegrity(ctx, db)
	if err != nil {
		return nil, err
	}

	metrics := &models.Metrics{
		Timestamp:            time.Now(),
		DatabaseSize:         dbSize,
		PageCount:            pageCount,
		PageSize:             pageSize,
		FragmentationPercent: fragmentation,
		ConnectionCount:      connectionCountEstimate,
		IntegrityOK:          integrityOK,
		WALSize:              walSize,
		ResponseTimeMS:       responseTime,
	}

	c.logger.Debug().
		Str("database", dbPath).
		Float64("response_time_ms", responseTime).
		Int64("page_count", pageCount).
		Float64("fragmentation_percent", fragmentation).
		Bool("integrity_ok", integrityOK).
		Msg("Collected database metrics")

	return metrics, nil
}

// probeLiveness measures the round-trip latency of a trivial query in
// milliseconds. The first query also forces the lazy connection open, so
// the measurement covers connection acquisition.
func (c *SQLiteCollector) probeLiveness(ctx context.Context, db *sql.DB) (float64, error) {
	start := time.Now()

	var one int
	if err := db.QueryRowContext(ctx, "SELECT 1").Scan(&one); err != nil {
		return 0, fmt.Errorf("%w: %w", errLivenessProbe, err)
	}

	return float64(time.Since(start).Microseconds()) / 1000.0, nil
}

func (c *SQLiteCollector) readPageStats(ctx context.Context, db *sql.DB) (pageCount, pageSize, freelistCount int64, err error) {
	pragmas := []struct {
		query string
		dst   *int64
	}{
		{"PRAGMA page_count", &pageCount},
		{"PRAGMA page_size", &pageSize},
		{"PRAGMA freelist_count", &freelistCount},
	}

	for _, p := range pragmas {
		if err := db.QueryRowContext(ctx, p.query).Scan(p.dst); err != nil {
			return 0, 0, 0, fmt.Errorf("%w: %s: %w", errPageStats, p.query, err)
		}
	}

	return pageCount, pageSize, freelistCount, nil
}

// probeIntegrity runs the bounded quick check rather than a full structural
// audit. Any result other than the single row "ok" counts as a failure.
func (c *SQLiteCollector) probeIntegrity(ctx context.Context, db *sql.DB) (bool, error) {
	var result string
	if err := db.QueryRowContext(ctx, "PRAGMA quick_check").Scan(&result); err != nil {
		return false, fmt.Errorf("%w: %w", errIntegrityProbe, err)
	}

	return result == "ok", nil
}

// fragmentationPercent is the ratio of free pages to total pages. A
// freelist transiently larger than the page count yields a value above 100;
// that is reported as-is, not clamped.
func fragmentationPercent(freelistCount, pageCount int64) float64 {
	if pageCount <= 0 {
		return 0
	}

	return float64(freelistCount) / float64(pageCount) * percentScale
}

func fileSizes(dbPath string) (dbSize, walSize int64, err error) {
	info, err := os.Stat(dbPath)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %w", errFileStats, err)
	}

	dbSize = info.Size()

	if walInfo, walErr := os.Stat(dbPath + walSuffix); walErr == nil {
		walSize = walInfo.Size()
	}

	return dbSize, walSize, nil
}
