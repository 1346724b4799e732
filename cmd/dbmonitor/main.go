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

package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/siva-sub/bizsync/pkg/alerting"
	"github.com/siva-sub/bizsync/pkg/collector"
	"github.com/siva-sub/bizsync/pkg/config"
	"github.com/siva-sub/bizsync/pkg/history"
	"github.com/siva-sub/bizsync/pkg/lifecycle"
	"github.com/siva-sub/bizsync/pkg/logger"
	"github.com/siva-sub/bizsync/pkg/monitor"
	"github.com/siva-sub/bizsync/pkg/report"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	configPath := flag.String("config", "", "Path to config file")
	once := flag.Bool("once", false, "Run one monitoring cycle and exit")
	showReport := flag.Bool("report", false, "Print the current status report and exit")
	flag.Parse()

	ctx := context.Background()

	bootLogger, err := lifecycle.CreateLogger(nil)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	cfg := config.Load(ctx, *configPath, bootLogger)

	logConfig := cfg.Logging
	if logConfig == nil {
		logConfig = logger.DefaultConfig()
	}

	monLogger, err := lifecycle.CreateComponentLogger("monitor", logConfig)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	sched := buildScheduler(cfg, monLogger)

	if *showReport {
		return printReport(sched, cfg)
	}

	if *once {
		return sched.RunOnce(ctx)
	}

	return lifecycle.Run(ctx, sched, monLogger)
}

func buildScheduler(cfg *config.Config, monLogger logger.Logger) *monitor.Scheduler {
	sinks := []alerting.Sink{alerting.NewLogSink(cfg.Alerts.LogFile)}

	if cfg.Alerts.WebhookURL != "" {
		sinks = append(sinks, alerting.NewWebhookSink(
			cfg.Alerts.WebhookURL, time.Duration(cfg.Alerts.WebhookTimeout)))
	}

	dispatcher := alerting.NewDispatcher(monLogger, sinks...)
	hist := history.New(cfg.MetricsRetention(), cfg.AlertsRetention())

	monitorConfig := monitor.Config{
		DatabasePaths: cfg.DatabasePaths,
		Interval:      cfg.Interval(),
		EnableAlerts:  cfg.Monitoring.EnableAlerts,
		Thresholds: alerting.Thresholds{
			MaxResponseTimeMS:       cfg.Monitoring.MaxResponseTimeMS,
			MaxFragmentationPercent: cfg.Monitoring.MaxFragmentationPercent,
			MaxDatabaseSizeMB:       cfg.Monitoring.MaxDatabaseSizeMB,
		},
	}

	// nil clock defaults to the real clock
	return monitor.New(monitorConfig, collector.New(monLogger), dispatcher, hist, nil, monLogger)
}

func printReport(sched *monitor.Scheduler, cfg *config.Config) error {
	gen := report.NewGenerator(sched.History(), cfg.Interval())

	out, err := json.MarshalIndent(gen.Generate(time.Now()), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}

	fmt.Fprintln(os.Stdout, string(out))

	return nil
}
