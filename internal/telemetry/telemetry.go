/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package telemetry sends opt-in anonymous usage events and crash reports.
// Everything here is disabled unless the user opts in and an endpoint is
// configured; with no endpoint every call is a no-op.
package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"runtime"
	"strings"
	"sync"
	"time"

	applog "keyframe/internal/log"
	"keyframe/internal/version"
)

// Config controls the telemetry client.
//
// FromEnv reads:
//   - KF_TELEMETRY_OPT_IN: "1", "true", "yes", "on" enables usage events
//   - KF_TELEMETRY_URL: endpoint that receives JSON events via POST
//   - KF_CRASH_UPLOAD_URL: endpoint that receives plain-text crash reports
//   - KF_TELEMETRY_TIMEOUT_MS: per-request timeout, default 1500
//   - KF_TELEMETRY_DEBUG: when set, failed and successful sends are logged
type Config struct {
	OptIn        bool
	EventsURL    string
	CrashURL     string
	Timeout      time.Duration
	DebugLogging bool
}

func FromEnv() Config {
	cfg := Config{
		OptIn:        isTruthy(os.Getenv("KF_TELEMETRY_OPT_IN")),
		EventsURL:    strings.TrimSpace(os.Getenv("KF_TELEMETRY_URL")),
		CrashURL:     strings.TrimSpace(os.Getenv("KF_CRASH_UPLOAD_URL")),
		Timeout:      1500 * time.Millisecond,
		DebugLogging: os.Getenv("KF_TELEMETRY_DEBUG") != "",
	}
	if ms := strings.TrimSpace(os.Getenv("KF_TELEMETRY_TIMEOUT_MS")); ms != "" {
		if d, err := time.ParseDuration(ms + "ms"); err == nil {
			cfg.Timeout = d
		}
	}
	return cfg
}

func isTruthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

// event is one queued usage record. Props must not contain PII.
type event struct {
	Name    string         `json:"name"`
	TS      string         `json:"ts"`
	Version string         `json:"version"`
	OS      string         `json:"os"`
	Arch    string         `json:"arch"`
	Props   map[string]any `json:"props,omitempty"`
}

// Client queues events on a bounded channel and posts them from a background
// goroutine. Callers never block: a full queue drops the event, a send error
// drops it too.
type Client struct {
	cfg     Config
	log     *slog.Logger
	httpc   *http.Client
	queue   chan event
	stop    chan struct{}
	stopped sync.Once
}

func New(cfg Config) *Client {
	c := &Client{
		cfg:   cfg,
		log:   applog.WithComponent("telemetry"),
		httpc: &http.Client{Timeout: cfg.Timeout},
		queue: make(chan event, 64),
		stop:  make(chan struct{}),
	}
	go c.run()
	return c
}

// Enabled reports whether usage events would actually be sent.
func (c *Client) Enabled() bool { return c != nil && c.cfg.OptIn && c.cfg.EventsURL != "" }

// Event queues a usage event. Ignored when disabled or name is empty.
func (c *Client) Event(name string, props map[string]any) {
	if !c.Enabled() || name == "" {
		return
	}
	ev := event{
		Name:    name,
		TS:      time.Now().UTC().Format(time.RFC3339Nano),
		Version: version.String(),
		OS:      runtime.GOOS,
		Arch:    runtime.GOARCH,
		Props:   props,
	}
	select {
	case c.queue <- ev:
	default:
	}
}

// Flush waits for the queue to drain, up to 500ms or ctx cancellation.
func (c *Client) Flush(ctx context.Context) {
	deadline := time.Now().Add(500 * time.Millisecond)
	for len(c.queue) > 0 && time.Now().Before(deadline) {
		if ctx != nil {
			select {
			case <-ctx.Done():
				return
			case <-time.After(25 * time.Millisecond):
			}
			continue
		}
		time.Sleep(25 * time.Millisecond)
	}
}

// Close stops the background sender. Queued events are discarded.
func (c *Client) Close() { c.stopped.Do(func() { close(c.stop) }) }

func (c *Client) run() {
	for {
		select {
		case <-c.stop:
			return
		case ev := <-c.queue:
			c.post(ev)
		}
	}
}

func (c *Client) post(ev event) {
	body, err := json.Marshal(ev)
	if err != nil {
		return
	}
	req, err := http.NewRequest(http.MethodPost, c.cfg.EventsURL, bytes.NewReader(body))
	if err != nil {
		return
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.httpc.Do(req)
	if err != nil {
		if c.cfg.DebugLogging {
			c.log.Debug("event send failed", slog.Any("err", err))
		}
		return
	}
	_ = resp.Body.Close()
	if c.cfg.DebugLogging {
		c.log.Debug("event sent", slog.String("name", ev.Name))
	}
}

// UploadCrash posts a serialized crash report. Crash uploads only need the
// opt-in flag and a crash URL, not the events endpoint.
func (c *Client) UploadCrash(report []byte) {
	if c == nil || !c.cfg.OptIn || c.cfg.CrashURL == "" {
		return
	}
	body := append([]byte(nil), report...)
	go func() {
		req, err := http.NewRequest(http.MethodPost, c.cfg.CrashURL, bytes.NewReader(body))
		if err != nil {
			return
		}
		req.Header.Set("Content-Type", "text/plain; charset=utf-8")
		resp, err := c.httpc.Do(req)
		if err != nil {
			if c.cfg.DebugLogging {
				c.log.Debug("crash upload failed", slog.Any("err", err))
			}
			return
		}
		_ = resp.Body.Close()
		if c.cfg.DebugLogging {
			c.log.Debug("crash report uploaded")
		}
	}()
}

var (
	defaultClient *Client
	defaultOnce   sync.Once
)

// InitDefault builds the package-level client from the environment on first
// use. NewDefault replaces it, typically after config is loaded.
func InitDefault() {
	defaultOnce.Do(func() { NewDefault(FromEnv()) })
}

func NewDefault(cfg Config) { defaultClient = New(cfg) }

func Enabled() bool { InitDefault(); return defaultClient.Enabled() }

func Event(name string, props map[string]any) { InitDefault(); defaultClient.Event(name, props) }

func Flush(ctx context.Context) { InitDefault(); defaultClient.Flush(ctx) }

func UploadCrash(report []byte) { InitDefault(); defaultClient.UploadCrash(report) }
