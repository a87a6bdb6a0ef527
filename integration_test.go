package main

import (
	"os"
	"testing"

	"todo-starter/backend/internal/config"
)

func TestApplicationStartup(t *testing.T) {
	os.Setenv("ENVIRONMENT", "development")
	os.Setenv("DB_HOST", "localhost")
	os.Setenv("REDIS_HOST", "localhost")
	defer func() {
		os.Unsetenv("ENVIRONMENT")
		os.Unsetenv("DB_HOST")
		os.Unsetenv("REDIS_HOST")
	}()

	cfg, err := config.LoadConfig()
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg == nil {
		t.Fatal("Configuration should not be nil")
	}

	t.Log("Application configuration loaded successfully")
}

func TestConfigurationValues(t *testing.T) {
	tests := []struct {
		name     string
		envVar   string
		envValue string
	}{
		{
			name:     "ENVIRONMENT environment variable",
			envVar:   "ENVIRONMENT",
			envValue: "staging",
		},
		{
			name:     "PORT environment variable",
			envVar:   "PORT",
			envValue: "9090",
		},
		{
			name:     "STORAGE_ENDPOINT environment variable",
			envVar:   "STORAGE_ENDPOINT",
			envValue: "minio:9000",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Setenv(tt.envVar, tt.envValue)
			defer os.Unsetenv(tt.envVar)

			cfg, err := config.LoadConfig()
			if err != nil {
				t.Fatalf("Failed to load config: %v", err)
			}

			var got string
			switch tt.envVar {
			case "ENVIRONMENT":
				got = cfg.Server.Environment
			case "PORT":
				got = cfg.Server.Port
			case "STORAGE_ENDPOINT":
				got = cfg.Storage.Endpoint
			}

			if got != tt.envValue {
				t.Errorf("Expected %s, got %s", tt.envValue, got)
			}
		})
	}
}

func TestProductionConfigGuards(t *testing.T) {
	os.Setenv("ENVIRONMENT", "production")
	defer os.Unsetenv("ENVIRONMENT")

	if _, err := config.LoadConfig(); err == nil {
		t.Error("Expected production config without secrets to fail")
	}
}

func TestRouterConstruction(t *testing.T) {
	os.Setenv("ENVIRONMENT", "development")
	defer os.Unsetenv("ENVIRONMENT")

	cfg, err := config.LoadConfig()
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	router := setupRouter(cfg, nil, nil, routerServices{})
	if router == nil {
		t.Fatal("Router should not be nil")
	}

	routes := router.Routes()
	if len(routes) == 0 {
		t.Error("Router should register routes")
	}

	seen := map[string]bool{}
	for _, r := range routes {
		seen[r.Method+" "+r.Path] = true
	}

	for _, want := range []string{
		"GET /health",
		"GET /api/v1/todos",
		"POST /api/v1/todos/:id/attachments",
		"GET /api/v1/admin/stats",
	} {
		if !seen[want] {
			t.Errorf("Expected route %s to be registered", want)
		}
	}
}
