package config

import (
	"testing"
	"time"
)

func validConfig() Config {
	return Config{
		Addr:         ":8080",
		Environment:  "development",
		StoreDriver:  "memory",
		JWTSecret:    "secret",
		TokenTTL:     12 * time.Hour,
		MaxBodyBytes: 1048576,
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"memory driver", func(c *Config) {}, true},
		{"postgres without url", func(c *Config) { c.StoreDriver = "postgres" }, false},
		{"postgres with url", func(c *Config) {
			c.StoreDriver = "postgres"
			c.DatabaseURL = "postgres://localhost/appraisal"
		}, true},
		{"unknown driver", func(c *Config) { c.StoreDriver = "sqlite" }, false},
		{"production without secret", func(c *Config) {
			c.Environment = "production"
			c.JWTSecret = ""
		}, false},
		{"production seed without password", func(c *Config) {
			c.Environment = "production"
			c.RunSeed = true
		}, false},
		{"production seed with password", func(c *Config) {
			c.Environment = "production"
			c.RunSeed = true
			c.SeedAdminPassword = "changed"
		}, true},
		{"zero token ttl", func(c *Config) { c.TokenTTL = 0 }, false},
		{"tiny body limit", func(c *Config) { c.MaxBodyBytes = 512 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.ok && err != nil {
				t.Fatalf("expected valid config, got %v", err)
			}
			if !tt.ok && err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg := Load()
	if cfg.Addr != ":8080" {
		t.Fatalf("expected default addr, got %q", cfg.Addr)
	}
	if cfg.TokenTTL != 12*time.Hour {
		t.Fatalf("expected 12h token ttl, got %v", cfg.TokenTTL)
	}
	if cfg.MaxBodyBytes != 1048576 {
		t.Fatalf("expected 1MiB body limit, got %d", cfg.MaxBodyBytes)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("TOKEN_TTL", "45m")
	t.Setenv("RUN_SEED", "false")
	t.Setenv("MAX_BODY_BYTES", "2048")

	cfg := Load()
	if cfg.StoreDriver != "memory" {
		t.Fatalf("expected memory driver, got %q", cfg.StoreDriver)
	}
	if cfg.TokenTTL != 45*time.Minute {
		t.Fatalf("expected 45m ttl, got %v", cfg.TokenTTL)
	}
	if cfg.RunSeed {
		t.Fatalf("expected seed disabled")
	}
	if cfg.MaxBodyBytes != 2048 {
		t.Fatalf("expected 2048 body limit, got %d", cfg.MaxBodyBytes)
	}

	// Malformed values fall back to the defaults.
	t.Setenv("TOKEN_TTL", "soon")
	if cfg := Load(); cfg.TokenTTL != 12*time.Hour {
		t.Fatalf("expected fallback ttl, got %v", cfg.TokenTTL)
	}
}
