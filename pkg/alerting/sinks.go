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
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/siva-sub/bizsync/pkg/models"
)

const (
	alertLogFileMode      = 0o600
	defaultWebhookTimeout = 10 * time.Second
)

var (
	errWriteAlertLog   = errors.New("failed to write alert log")
	errWebhookRequest  = errors.New("webhook request failed")
	errWebhookResponse = errors.New("webhook returned non-2xx status")
)

// Sink is a delivery target for alerts.
type Sink interface {
	Name() string
	Notify(ctx context.Context, alert *models.Alert) error
}

// LogSink appends each alert as one JSON line to a local file.
type LogSink struct {
	path string
}

// NewLogSink creates a sink that appends to the file at path.
func NewLogSink(path string) *LogSink {
	return &LogSink{path: path}
}

func (*LogSink) Name() string {
	return "log"
}

// Notify appends the serialized alert. The file is opened per write so a
// rotated or re-created file is picked up without restart.
func (s *LogSink) Notify(_ context.Context, alert *models.Alert) error {
	line, err := json.Marshal(alert)
	if err != nil {
		return fmt.Errorf("%w: %w", errWriteAlertLog, err)
	}

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, alertLogFileMode)
	if err != nil {
		return fmt.Errorf("%w: %w", errWriteAlertLog, err)
	}
	defer f.Close()

	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("%w: %w", errWriteAlertLog, err)
	}

	return nil
}

// webhookPayload is the document POSTed to the webhook endpoint.
type webhookPayload struct {
	Text      string `json:"text"`
	Level     string `json:"level"`
	Timestamp string `json:"timestamp"`
	AlertID   string `json:"alert_id,omitempty"`
}

// WebhookSink delivers alerts of severity Warning and above to a remote
// endpoint with a bounded-timeout POST.
type WebhookSink struct {
	url    string
	client *http.Client
}

// NewWebhookSink creates a webhook sink. A zero timeout uses the default.
func NewWebhookSink(url string, timeout time.Duration) *WebhookSink {
	if timeout <= 0 {
		timeout = defaultWebhookTimeout
	}

	return &WebhookSink{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

func (*WebhookSink) Name() string {
	return "webhook"
}

// Notify posts the alert. Alerts below Warning are skipped without error.
func (s *WebhookSink) Notify(ctx context.Context, alert *models.Alert) error {
	if alert.Level < models.Warning {
		return nil
	}

	payload := webhookPayload{
		Text:      fmt.Sprintf("BizSync Database Alert: %s", alert.Message),
		Level:     alert.Level.String(),
		Timestamp: alert.Timestamp.Format(time.RFC3339),
		AlertID:   alert.AlertID,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%w: %w", errWebhookRequest, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: %w", errWebhookRequest, err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", errWebhookRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("%w: %d", errWebhookResponse, resp.StatusCode)
	}

	return nil
}
