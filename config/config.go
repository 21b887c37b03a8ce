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

package config

import (
	"encoding/json"
	"errors"
	"log"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/sirupsen/logrus"
)

const (
	DEFAULT_PORT              = "8000"
	DEFAULT_CODE_LENGTH       = 6
	DEFAULT_IMPACT_CACHE_TTL  = 30
	DEFAULT_CLAIM_LOCK_SECS   = 10
	DEFAULT_TOKEN_ISSUER      = "feedchain"
	MemoryDataSource          = "memory://"
	minimumJWTSecretLength    = 16
	defaultRateCleanupSeconds = 10800
)

var ConfigStore atomic.Value

type ServerConfig struct {
	SSL    bool   `json:"ssl" envconfig:"FEEDCHAIN_SERVER_SSL"`
	Domain string `json:"domain" envconfig:"FEEDCHAIN_SERVER_SSL_DOMAIN"`
	Email  string `json:"ssl_email" envconfig:"FEEDCHAIN_SERVER_SSL_EMAIL"`
	Port   string `json:"port" envconfig:"FEEDCHAIN_SERVER_PORT"`
}

type DataSourceConfig struct {
	Dns string `json:"dns" envconfig:"FEEDCHAIN_DATA_SOURCE_DNS"`
}

type RedisConfig struct {
	Dns           string `json:"dns" envconfig:"FEEDCHAIN_REDIS_DNS"`
	SkipTLSVerify bool   `json:"skip_tls_verify" envconfig:"FEEDCHAIN_REDIS_SKIP_TLS_VERIFY"`
}

type AuthConfig struct {
	JWTSecret string `json:"jwt_secret" envconfig:"FEEDCHAIN_AUTH_JWT_SECRET"`
	Issuer    string `json:"issuer" envconfig:"FEEDCHAIN_AUTH_ISSUER"`
}

type PickupConfig struct {
	CodeLength int `json:"code_length" envconfig:"FEEDCHAIN_PICKUP_CODE_LENGTH"`
}

type ClaimConfig struct {
	LockSeconds int `json:"lock_seconds" envconfig:"FEEDCHAIN_CLAIM_LOCK_SECONDS"`
}

type ImpactConfig struct {
	CacheTTLSeconds int `json:"cache_ttl_seconds" envconfig:"FEEDCHAIN_IMPACT_CACHE_TTL_SECONDS"`
}

type RateLimitConfig struct {
	RequestsPerSecond  *float64 `json:"requests_per_second" envconfig:"FEEDCHAIN_RATE_LIMIT_RPS"`
	Burst              *int     `json:"burst" envconfig:"FEEDCHAIN_RATE_LIMIT_BURST"`
	CleanupIntervalSec *int     `json:"cleanup_interval_sec" envconfig:"FEEDCHAIN_RATE_LIMIT_CLEANUP_INTERVAL_SEC"`
}

type SlackWebhook struct {
	WebhookUrl string `json:"webhook_url" envconfig:"FEEDCHAIN_SLACK_WEBHOOK_URL"`
}

type Notification struct {
	Slack SlackWebhook `json:"slack"`
}

type TelemetryConfig struct {
	Enabled      bool   `json:"enabled" envconfig:"FEEDCHAIN_TELEMETRY_ENABLED"`
	PostHogKey   string `json:"posthog_key" envconfig:"FEEDCHAIN_TELEMETRY_POSTHOG_KEY"`
	OTLPEndpoint string `json:"otlp_endpoint" envconfig:"FEEDCHAIN_TELEMETRY_OTLP_ENDPOINT"`
}

type Configuration struct {
	ProjectName  string           `json:"project_name" envconfig:"FEEDCHAIN_PROJECT_NAME"`
	Server       ServerConfig     `json:"server"`
	DataSource   DataSourceConfig `json:"data_source"`
	Redis        RedisConfig      `json:"redis"`
	Auth         AuthConfig       `json:"auth"`
	Pickup       PickupConfig     `json:"pickup"`
	Claim        ClaimConfig      `json:"claim"`
	Impact       ImpactConfig     `json:"impact"`
	Notification Notification     `json:"notification"`
	RateLimit    RateLimitConfig  `json:"rate_limit"`
	Telemetry    TelemetryConfig  `json:"telemetry"`
}

func loadConfigFromFile(file string) error {
	var cnf Configuration
	_, err := os.Stat(file)
	if err == nil {
		f, err := os.Open(file)
		if err != nil {
			return err
		}
		defer f.Close()
		err = json.NewDecoder(f).Decode(&cnf)
		if err != nil {
			return err
		}
	} else if errors.Is(err, os.ErrNotExist) {
		log.Println("config json not passed, will use env variables")
	}

	// override config from environment variables
	err = envconfig.Process("feedchain", &cnf)
	if err != nil {
		return err
	}

	err = cnf.validateAndAddDefaults()
	if err != nil {
		return err
	}

	ConfigStore.Store(&cnf)
	return nil
}

func InitConfig(configFile string) error {
	logger()
	return loadConfigFromFile(configFile)
}

func Fetch() (*Configuration, error) {
	config := ConfigStore.Load()
	c, ok := config.(*Configuration)
	if !ok {
		return nil, errors.New("config not loaded. Create a json file called feedchain.json or set FEEDCHAIN_* env variables")
	}
	return c, nil
}

func (cnf *Configuration) validateAndAddDefaults() error {
	if cnf.ProjectName == "" {
		cnf.ProjectName = "FeedChain"
	}

	cnf.ProjectName = strings.TrimSpace(cnf.ProjectName)
	cnf.Server.Port = strings.TrimSpace(cnf.Server.Port)
	cnf.DataSource.Dns = strings.TrimSpace(cnf.DataSource.Dns)
	cnf.Redis.Dns = strings.TrimSpace(cnf.Redis.Dns)

	if cnf.DataSource.Dns == "" {
		log.Println("Error: Data source DNS is empty. It's a required field.")
		return errors.New("data source DNS is required")
	}

	if len(cnf.Auth.JWTSecret) < minimumJWTSecretLength {
		log.Println("Error: auth.jwt_secret must be at least 16 characters.")
		return errors.New("jwt secret is required")
	}

	if cnf.Auth.Issuer == "" {
		cnf.Auth.Issuer = DEFAULT_TOKEN_ISSUER
	}

	if cnf.Server.Port == "" {
		cnf.Server.Port = DEFAULT_PORT
		log.Printf("Warning: Port not specified in config. Setting default port: %s", DEFAULT_PORT)
	}

	if cnf.Pickup.CodeLength <= 0 {
		cnf.Pickup.CodeLength = DEFAULT_CODE_LENGTH
	}

	if cnf.Claim.LockSeconds <= 0 {
		cnf.Claim.LockSeconds = DEFAULT_CLAIM_LOCK_SECS
	}

	if cnf.Impact.CacheTTLSeconds <= 0 {
		cnf.Impact.CacheTTLSeconds = DEFAULT_IMPACT_CACHE_TTL
	}

	// Rate limiting is disabled by default (when both RPS and Burst are nil)
	if cnf.RateLimit.RequestsPerSecond != nil && cnf.RateLimit.Burst == nil {
		defaultBurst := 2 * int(*cnf.RateLimit.RequestsPerSecond)
		cnf.RateLimit.Burst = &defaultBurst
		log.Printf("Warning: Rate limit burst not specified. Setting default value: %d", defaultBurst)
	}
	if cnf.RateLimit.RequestsPerSecond == nil && cnf.RateLimit.Burst != nil {
		defaultRPS := float64(*cnf.RateLimit.Burst) / 2
		cnf.RateLimit.RequestsPerSecond = &defaultRPS
		log.Printf("Warning: Rate limit RPS not specified. Setting default value: %.2f", defaultRPS)
	}
	if cnf.RateLimit.CleanupIntervalSec == nil {
		defaultCleanup := defaultRateCleanupSeconds
		cnf.RateLimit.CleanupIntervalSec = &defaultCleanup
	}

	return nil
}

// UsesMemoryStore reports whether the in-memory datasource was selected.
func (cnf *Configuration) UsesMemoryStore() bool {
	return cnf.DataSource.Dns == MemoryDataSource
}

// ImpactCacheTTL is the lifetime of a cached impact summary.
func (cnf *Configuration) ImpactCacheTTL() time.Duration {
	return time.Duration(cnf.Impact.CacheTTLSeconds) * time.Second
}

// ClaimLockTTL bounds how long a listing's claim lock can be held.
func (cnf *Configuration) ClaimLockTTL() time.Duration {
	return time.Duration(cnf.Claim.LockSeconds) * time.Second
}

// MockConfig sets a mock configuration for testing purposes.
func MockConfig(mockConfig *Configuration) {
	ConfigStore.Store(mockConfig)
}

func logger() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	log.SetOutput(logger.Writer())
}
