package config

import (
	"encoding/json"
	"os"
	"testing"
	"time"
)

const testSecret = "0123456789abcdef0123"

func TestValidateAndAddDefaults(t *testing.T) {
	// Test case with empty DataSource DNS
	cnf := Configuration{
		DataSource: DataSourceConfig{
			Dns: "",
		},
		Auth: AuthConfig{JWTSecret: testSecret},
	}

	err := cnf.validateAndAddDefaults()
	if err == nil {
		t.Errorf("Expected error for missing data source DNS, got nil")
	}

	// Short jwt secret
	cnf = Configuration{
		DataSource: DataSourceConfig{Dns: "postgres://localhost/feedchain"},
		Auth:       AuthConfig{JWTSecret: "short"},
	}
	if err := cnf.validateAndAddDefaults(); err == nil {
		t.Errorf("Expected error for short jwt secret, got nil")
	}

	// Valid config gets defaults
	cnf = Configuration{
		DataSource: DataSourceConfig{Dns: " postgres://localhost/feedchain "},
		Auth:       AuthConfig{JWTSecret: testSecret},
	}
	if err := cnf.validateAndAddDefaults(); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if cnf.ProjectName != "FeedChain" {
		t.Errorf("Expected default project name, got %s", cnf.ProjectName)
	}
	if cnf.DataSource.Dns != "postgres://localhost/feedchain" {
		t.Errorf("Expected trimmed DNS, got %q", cnf.DataSource.Dns)
	}
	if cnf.Server.Port != DEFAULT_PORT {
		t.Errorf("Expected default port %s, got %s", DEFAULT_PORT, cnf.Server.Port)
	}
	if cnf.Auth.Issuer != DEFAULT_TOKEN_ISSUER {
		t.Errorf("Expected default issuer %s, got %s", DEFAULT_TOKEN_ISSUER, cnf.Auth.Issuer)
	}
	if cnf.Pickup.CodeLength != DEFAULT_CODE_LENGTH {
		t.Errorf("Expected default code length %d, got %d", DEFAULT_CODE_LENGTH, cnf.Pickup.CodeLength)
	}
	if cnf.ImpactCacheTTL() != 30*time.Second {
		t.Errorf("Expected impact cache ttl 30s, got %s", cnf.ImpactCacheTTL())
	}
	if cnf.ClaimLockTTL() != 10*time.Second {
		t.Errorf("Expected claim lock ttl 10s, got %s", cnf.ClaimLockTTL())
	}
	if cnf.RateLimit.RequestsPerSecond != nil || cnf.RateLimit.Burst != nil {
		t.Errorf("Expected rate limiting to stay disabled")
	}
	if cnf.UsesMemoryStore() {
		t.Errorf("Expected postgres store")
	}
}

func TestValidateAndAddDefaults_RateLimit(t *testing.T) {
	rps := 5.0
	cnf := Configuration{
		DataSource: DataSourceConfig{Dns: MemoryDataSource},
		Auth:       AuthConfig{JWTSecret: testSecret},
		RateLimit:  RateLimitConfig{RequestsPerSecond: &rps},
	}
	if err := cnf.validateAndAddDefaults(); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if cnf.RateLimit.Burst == nil || *cnf.RateLimit.Burst != 10 {
		t.Errorf("Expected burst 10, got %v", cnf.RateLimit.Burst)
	}
	if !cnf.UsesMemoryStore() {
		t.Errorf("Expected memory store")
	}
}

func TestLoadConfigFromFile(t *testing.T) {
	// Create a temporary file
	tmpFile, err := os.CreateTemp("", "feedchain.json")
	if err != nil {
		t.Fatalf("Unable to create temporary file: %v", err)
	}
	defer os.Remove(tmpFile.Name())

	sampleConfig := Configuration{
		ProjectName: "Temp Project",
		DataSource: DataSourceConfig{
			Dns: "temp-dns",
		},
		Redis: RedisConfig{
			Dns: "temp-redis",
		},
		Auth: AuthConfig{JWTSecret: testSecret},
	}
	if err := json.NewEncoder(tmpFile).Encode(sampleConfig); err != nil {
		t.Fatalf("Unable to write to temporary file: %v", err)
	}
	tmpFile.Close()

	// Set an environment variable to override the project name
	os.Setenv("FEEDCHAIN_PROJECT_NAME", "Env Project")
	defer os.Unsetenv("FEEDCHAIN_PROJECT_NAME")

	if err := loadConfigFromFile(tmpFile.Name()); err != nil {
		t.Fatalf("loadConfigFromFile failed: %v", err)
	}

	loadedConfig, err := Fetch()
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}

	if loadedConfig.ProjectName != "Env Project" {
		t.Errorf("Expected ProjectName to be 'Env Project', got '%s'", loadedConfig.ProjectName)
	}
	if loadedConfig.DataSource.Dns != "temp-dns" {
		t.Errorf("Expected DataSource.Dns to be 'temp-dns', got '%s'", loadedConfig.DataSource.Dns)
	}
}

func TestInitConfig(t *testing.T) {
	tmpFile, err := os.CreateTemp("", "feedchain.json")
	if err != nil {
		t.Fatalf("Unable to create temporary file: %v", err)
	}
	defer os.Remove(tmpFile.Name())

	sampleConfig := Configuration{
		ProjectName: "InitConfig Test",
		DataSource: DataSourceConfig{
			Dns: MemoryDataSource,
		},
		Auth: AuthConfig{JWTSecret: testSecret},
	}
	if err := json.NewEncoder(tmpFile).Encode(sampleConfig); err != nil {
		t.Fatalf("Unable to write to temporary file: %v", err)
	}
	tmpFile.Close()

	if err := InitConfig(tmpFile.Name()); err != nil {
		t.Fatalf("InitConfig failed: %v", err)
	}

	loadedConfig, err := Fetch()
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if loadedConfig.ProjectName != "InitConfig Test" {
		t.Errorf("Expected ProjectName to be 'InitConfig Test', got '%s'", loadedConfig.ProjectName)
	}
	if !loadedConfig.UsesMemoryStore() {
		t.Errorf("Expected memory data source, got '%s'", loadedConfig.DataSource.Dns)
	}
}

func TestMockConfig(t *testing.T) {
	MockConfig(&Configuration{ProjectName: "mocked"})
	cnf, err := Fetch()
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if cnf.ProjectName != "mocked" {
		t.Errorf("Expected mocked config, got %s", cnf.ProjectName)
	}
}
