/*
Copyright 2024 FeedChain Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package pg_listener relays Postgres NOTIFY events to a handler.
package pg_listener

import (
	"context"
	"encoding/json"
	"time"

	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

// ImpactChannel is the channel the schema triggers publish on when a
// change affects the impact summary.
const ImpactChannel = "impact_change"

type NotificationHandler interface {
	HandleNotification(ctx context.Context, table string, data map[string]interface{}) error
}

type ListenerConfig struct {
	PgConnStr string
	Channel   string
	// Interval is how long to wait for a notification before pinging the
	// connection.
	Interval time.Duration
	// Timeout caps the reconnect backoff.
	Timeout time.Duration
}

type DBListener struct {
	config  ListenerConfig
	handler NotificationHandler
}

type NotificationPayload struct {
	Table string                 `json:"table"`
	Data  map[string]interface{} `json:"data"`
}

func NewDBListener(config ListenerConfig, handler NotificationHandler) *DBListener {
	if config.Channel == "" {
		config.Channel = ImpactChannel
	}
	if config.Interval <= 0 {
		config.Interval = 90 * time.Second
	}
	if config.Timeout <= 0 {
		config.Timeout = time.Minute
	}
	return &DBListener{
		config:  config,
		handler: handler,
	}
}

// Start listens until ctx is cancelled.
func (d *DBListener) Start(ctx context.Context) error {
	listener := pq.NewListener(d.config.PgConnStr, 10*time.Second, d.config.Timeout, func(ev pq.ListenerEventType, err error) {
		if err != nil {
			logrus.WithError(err).Warn("postgres listener event")
		}
	})
	defer listener.Close()

	if err := listener.Listen(d.config.Channel); err != nil {
		return err
	}
	logrus.WithField("channel", d.config.Channel).Info("listening for postgres notifications")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case n := <-listener.Notify:
			// nil after a reconnect; notifications may have been missed.
			if n == nil {
				d.dispatch(ctx, []byte(`{"table":"reconnect"}`))
				continue
			}
			d.dispatch(ctx, []byte(n.Extra))
		case <-time.After(d.config.Interval):
			if err := listener.Ping(); err != nil {
				logrus.WithError(err).Warn("postgres listener ping failed")
			}
		}
	}
}

func (d *DBListener) dispatch(ctx context.Context, raw []byte) {
	var payload NotificationPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		logrus.WithError(err).Error("error unmarshalling notification payload")
		return
	}

	if err := d.handler.HandleNotification(ctx, payload.Table, payload.Data); err != nil {
		logrus.WithError(err).WithField("table", payload.Table).Error("error handling notification")
	}
}
