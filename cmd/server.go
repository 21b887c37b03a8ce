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

package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/caddyserver/certmagic"
	"github.com/feedchain/feedchain"
	"github.com/feedchain/feedchain/api"
	"github.com/feedchain/feedchain/config"
	pg_listener "github.com/feedchain/feedchain/internal/pg-listener"
	"github.com/feedchain/feedchain/internal/traces"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/posthog/posthog-go"
	"github.com/spf13/cobra"
)

const certStoragePath = "./certmagic"

// serveTLS serves router over HTTPS with certificates managed by CertMagic.
// Without a domain it falls back to localhost.
func serveTLS(r *gin.Engine, conf config.ServerConfig) error {
	certmagic.DefaultACME.Agreed = true
	certmagic.DefaultACME.Email = conf.Email
	cfg := certmagic.NewDefault()
	cfg.Storage = &certmagic.FileStorage{Path: certStoragePath}

	domains := []string{conf.Domain}
	if conf.Domain == "" {
		log.Println("No domain specified, defaulting to localhost")
		domains = []string{"localhost"}
	}

	if err := cfg.ManageSync(context.Background(), domains); err != nil {
		return err
	}

	server := &http.Server{
		Addr:      ":" + conf.Port,
		Handler:   r,
		TLSConfig: cfg.TLSConfig(),
	}

	log.Printf("Starting HTTPS server on %s\n", conf.Port)
	if err := server.ListenAndServeTLS("", ""); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// sendHeartbeat reports liveness to PostHog every five minutes.
func sendHeartbeat(client posthog.Client, heartbeatID, project string) {
	ticker := time.NewTicker(5 * time.Minute)
	go func() {
		for range ticker.C {
			if err := client.Enqueue(posthog.Capture{
				DistinctId: heartbeatID,
				Event:      "server_heartbeat",
				Properties: map[string]interface{}{
					"timestamp": time.Now().UTC(),
					"project":   project,
				},
			}); err != nil {
				log.Printf("Failed to send heartbeat: %v", err)
			}
		}
	}()
}

func initializeRouter(f *feedchain.FeedChain) (*gin.Engine, error) {
	a := api.NewAPI(f)
	if a == nil {
		return nil, fmt.Errorf("config not loaded")
	}
	return a.Router(), nil
}

func initializeTracing(ctx context.Context, cfg *config.Configuration) (func(context.Context) error, error) {
	shutdown, err := traces.SetupOTelSDK(ctx, cfg.ProjectName, cfg.Telemetry.OTLPEndpoint)
	if err != nil {
		return nil, fmt.Errorf("error setting up OTel SDK: %v", err)
	}
	return shutdown, nil
}

func initializePostHog(cfg *config.Configuration) (posthog.Client, error) {
	client, err := posthog.NewWithConfig(cfg.Telemetry.PostHogKey, posthog.Config{Endpoint: "https://us.i.posthog.com"})
	if err != nil {
		return nil, err
	}
	sendHeartbeat(client, uuid.New().String(), cfg.ProjectName)
	return client, nil
}

func startServer(router *gin.Engine, cfg config.ServerConfig) error {
	if cfg.SSL {
		return serveTLS(router, cfg)
	}
	log.Printf("Starting server on http://localhost:%s", cfg.Port)
	return router.Run(":" + cfg.Port)
}

// initializeObservability starts tracing and the PostHog heartbeat when
// telemetry is enabled. The returned shutdown is never nil.
func initializeObservability(ctx context.Context, cfg *config.Configuration) (posthog.Client, func(context.Context) error, error) {
	noop := func(context.Context) error { return nil }
	if !cfg.Telemetry.Enabled {
		return nil, noop, nil
	}

	shutdown, err := initializeTracing(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	if cfg.Telemetry.PostHogKey == "" {
		return nil, shutdown, nil
	}
	phClient, err := initializePostHog(cfg)
	if err != nil {
		log.Printf("PostHog disabled: %v", err)
		return nil, shutdown, nil
	}
	return phClient, shutdown, nil
}

// startImpactListener keeps this instance's impact cache in step with
// writes made through other instances.
func startImpactListener(ctx context.Context, app *feedchainInstance) {
	if app.cnf.UsesMemoryStore() {
		return
	}
	listener := pg_listener.NewDBListener(pg_listener.ListenerConfig{PgConnStr: app.cnf.DataSource.Dns}, app.feedchain)
	go func() {
		if err := listener.Start(ctx); err != nil && ctx.Err() == nil {
			log.Printf("Impact listener stopped: %v", err)
		}
	}()
}

func serverCommands(app *feedchainInstance) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start",
		Short: "start feedchain server",
		Run: func(cmd *cobra.Command, args []string) {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			router, err := initializeRouter(app.feedchain)
			if err != nil {
				log.Fatal(err)
			}

			phClient, shutdown, err := initializeObservability(ctx, app.cnf)
			if err != nil {
				log.Fatal(err)
			}
			defer func() {
				if err := shutdown(ctx); err != nil {
					log.Printf("Error during shutdown: %v", err)
				}
			}()
			if phClient != nil {
				defer phClient.Close()
			}

			startImpactListener(ctx, app)

			if err := startServer(router, app.cnf.Server); err != nil {
				log.Fatal(err)
			}
		},
	}

	return cmd
}
