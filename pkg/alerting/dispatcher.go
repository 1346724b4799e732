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
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/siva-sub/bizsync/pkg/logger"
	"github.com/siva-sub/bizsync/pkg/models"
)

// Dispatcher fans alerts out to every configured sink. Sink failures are
// isolated: a failing or slow sink is logged and never prevents delivery to
// the remaining sinks.
type Dispatcher struct {
	sinks  []Sink
	logger logger.Logger
}

// NewDispatcher creates a dispatcher over the given sinks.
func NewDispatcher(log logger.Logger, sinks ...Sink) *Dispatcher {
	return &Dispatcher{
		sinks:  sinks,
		logger: log,
	}
}

// Sinks returns the configured sinks.
func (d *Dispatcher) Sinks() []Sink {
	return d.sinks
}

// Dispatch delivers each alert to every sink exactly once. Alerts without
// an ID are stamped before delivery.
func (d *Dispatcher) Dispatch(ctx context.Context, alerts []*models.Alert) {
	for _, alert := range alerts {
		if alert.AlertID == "" {
			alert.AlertID = uuid.NewString()
		}

		d.logEvent(alert.Level).
			Str("alert_id", alert.AlertID).
			Str("level", alert.Level.String()).
			Msg(alert.Message)

		for _, sink := range d.sinks {
			if err := sink.Notify(ctx, alert); err != nil {
				d.logger.Error().
					Err(err).
					Str("sink", sink.Name()).
					Str("alert_id", alert.AlertID).
					Msg("Failed to deliver alert")
			}
		}
	}
}

// logEvent maps alert severity to a log level. The mapping is enumerated
// exhaustively; an unknown severity is never silently swallowed.
func (d *Dispatcher) logEvent(level models.AlertLevel) *zerolog.Event {
	switch level {
	case models.Info:
		return d.logger.Info()
	case models.Warning:
		return d.logger.Warn()
	case models.Critical:
		return d.logger.Error()
	default:
		return d.logger.Error()
	}
}
