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

// Package monitor drives the collect, evaluate, dispatch loop on a fixed
// interval.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/siva-sub/bizsync/pkg/alerting"
	"github.com/siva-sub/bizsync/pkg/collector"
	"github.com/siva-sub/bizsync/pkg/history"
	"github.com/siva-sub/bizsync/pkg/logger"
)

const defaultPruneEveryNCycles = 100

var (
	errCollectionFailed = errors.New("metrics collection failed")
	errFatalLoop        = errors.New("fatal error in monitoring loop")
)

// Config holds the scheduler settings, resolved once at startup.
type Config struct {
	DatabasePaths     []string
	Interval          time.Duration
	EnableAlerts      bool
	Thresholds        alerting.Thresholds
	PruneEveryNCycles int
}

// Scheduler runs one collect, evaluate, dispatch cycle per tick. Ticks run
// sequentially; at most one cycle is in flight at any time. The scheduler
// owns the history it appends to.
type Scheduler struct {
	config     Config
	collector  MetricsCollector
	dispatcher *alerting.Dispatcher
	history    *history.History
	clock      Clock
	logger     logger.Logger

	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup

	// Touched only by the single loop goroutine.
	cycleCount    int
	failureStreak int
}

// New creates a scheduler. A nil clock defaults to the real clock.
func New(
	cfg Config, mc MetricsCollector, d *alerting.Dispatcher, h *history.History, clock Clock, log logger.Logger,
) *Scheduler {
	if clock == nil {
		clock = realClock{}
	}

	if cfg.PruneEveryNCycles <= 0 {
		cfg.PruneEveryNCycles = defaultPruneEveryNCycles
	}

	return &Scheduler{
		config:     cfg,
		collector:  mc,
		dispatcher: d,
		history:    h,
		clock:      clock,
		logger:     log,
		done:       make(chan struct{}),
	}
}

// History returns the history owned by this scheduler.
func (s *Scheduler) History() *history.History {
	return s.history
}

// Start implements the lifecycle.Service interface. It runs an immediate
// first tick, then one tick per interval until the context is canceled or
// Stop is called. A failed cycle is logged and the loop continues; a panic
// inside the loop stops it and is surfaced as an error.
func (s *Scheduler) Start(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", errFatalLoop, r)
			s.logger.Error().Interface("panic", r).Msg("Monitoring loop stopped on fatal error")
		}
	}()

	ticker := s.clock.Ticker(s.config.Interval)
	defer ticker.Stop()

	s.logger.Info().
		Dur("interval", s.config.Interval).
		Strs("database_paths", s.config.DatabasePaths).
		Msg("Starting database monitoring")

	s.wg.Add(1)
	defer s.wg.Done()

	s.tick(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.done:
			return nil
		case <-ticker.Chan():
			// Inline, not in a goroutine: ticks must never overlap.
			s.tick(ctx)
		}
	}
}

// Stop implements the lifecycle.Service interface. It waits for the
// in-flight tick to complete, bounded by the context.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.closeOnce.Do(func() {
		close(s.done)
	})

	stopped := make(chan struct{})

	go func() {
		s.wg.Wait()
		close(stopped)
	}()

	select {
	case <-stopped:
		s.logger.Info().Msg("Database monitoring stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// tick attempts one full cycle, tracks the consecutive-failure streak so
// persistent unreachability is distinguishable from a single bad cycle, and
// prunes history every Nth cycle.
func (s *Scheduler) tick(ctx context.Context) {
	s.cycleCount++

	if err := s.RunOnce(ctx); err != nil {
		s.failureStreak++
		s.logger.Warn().
			Err(err).
			Int("consecutive_failures", s.failureStreak).
			Msg("Monitoring cycle failed")
	} else {
		s.failureStreak = 0
	}

	if s.cycleCount%s.config.PruneEveryNCycles == 0 {
		metricsDropped, alertsDropped := s.history.Prune(s.clock.Now())
		s.logger.Debug().
			Int("metrics_dropped", metricsDropped).
			Int("alerts_dropped", alertsDropped).
			Msg("Pruned history")
	}
}

// RunOnce performs a single collect, evaluate, dispatch cycle. The database
// path is re-resolved on every call so operators may swap files between
// ticks. A collection failure is returned, not fatal: the caller decides
// whether to retry on the next tick or exit.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	dbPath, err := collector.FindDatabase(s.config.DatabasePaths)
	if err != nil {
		return err
	}

	s.logger.Debug().Str("database", dbPath).Msg("Monitoring database")

	metrics, err := s.collector.Collect(ctx, dbPath)
	if err != nil {
		return fmt.Errorf("%w: %w", errCollectionFailed, err)
	}

	s.history.AddMetrics(metrics)

	if !s.config.EnableAlerts {
		return nil
	}

	alerts := alerting.Evaluate(metrics, s.config.Thresholds, s.clock.Now())
	if len(alerts) == 0 {
		return nil
	}

	s.dispatcher.Dispatch(ctx, alerts)

	for _, a := range alerts {
		s.history.AddAlert(a)
	}

	return nil
}
