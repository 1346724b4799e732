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

package models

import (
	"encoding/json"
	"fmt"
	"time"
)

var errInvalidAlertLevel = fmt.Errorf("invalid alert level")

// AlertLevel is the severity of an alert. Levels are totally ordered;
// Critical is the highest.
type AlertLevel int

const (
	Info AlertLevel = iota
	Warning
	Critical
)

func (l AlertLevel) String() string {
	switch l {
	case Info:
		return "info"
	case Warning:
		return "warning"
	case Critical:
		return "critical"
	default:
		return "unknown"
	}
}

// MarshalJSON serializes the level as its lowercase name.
func (l AlertLevel) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.String())
}

// UnmarshalJSON accepts the lowercase level names.
func (l *AlertLevel) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}

	switch s {
	case "info":
		*l = Info
	case "warning":
		*l = Warning
	case "critical":
		*l = Critical
	default:
		return fmt.Errorf("%w: %q", errInvalidAlertLevel, s)
	}

	return nil
}

// Alert is a single threshold violation raised during one monitoring cycle.
// Alerts are immutable once created; they are only appended to history and
// handed to sinks.
type Alert struct {
	AlertID   string     `json:"alert_id,omitempty"`
	Level     AlertLevel `json:"level"`
	Message   string     `json:"message"`
	Timestamp time.Time  `json:"timestamp"`
	Metrics   *Metrics   `json:"metrics,omitempty"` // snapshot that triggered the alert
}
