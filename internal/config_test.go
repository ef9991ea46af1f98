package internal

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jly61/knowledge-and-blog/pkg/config"
)

func TestAuthConfig_DisabledMode(t *testing.T) {
	cfg := AuthConfig{Mode: "disabled", DefaultUser: "me"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("disabled mode should pass: %v", err)
	}
}

func TestAuthConfig_EmptyModeDefaultsDisabled(t *testing.T) {
	cfg := AuthConfig{DefaultUser: "me"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty mode should default to disabled: %v", err)
	}
	if cfg.Mode != "disabled" {
		t.Errorf("mode = %q, want disabled", cfg.Mode)
	}
}

func TestAuthConfig_TokenModeEmptyToken(t *testing.T) {
	cfg := AuthConfig{Mode: "token", DefaultUser: "me"}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("token mode with empty token should fail")
	}
	if !strings.Contains(err.Error(), "token is empty") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestAuthConfig_JWTModeNeedsSecret(t *testing.T) {
	cfg := AuthConfig{Mode: "jwt"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("jwt mode without secret should fail")
	}
	cfg.JWTSecret = "s3cret"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("jwt mode with secret should pass: %v", err)
	}
	if got := cfg.Middleware(); string(got.JWTSecret) != "s3cret" || got.Mode != "jwt" {
		t.Errorf("middleware config = %+v", got)
	}
}

func TestAuthConfig_DefaultUserRequiredWithoutJWT(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: "x"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("token mode without default_user should fail")
	}
}

func TestAuthConfig_InvalidMode(t *testing.T) {
	cfg := AuthConfig{Mode: "magic", Token: "x", DefaultUser: "me"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("invalid mode should fail validation")
	}
}

func TestFullConfig_Defaults(t *testing.T) {
	cfg := NewDefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
	if cfg.MCP.Owner != "local" || cfg.Vault.Owner != "local" {
		t.Errorf("owners = %q / %q, want local", cfg.MCP.Owner, cfg.Vault.Owner)
	}
	if cfg.Database.DriverName() != "sqlite3" {
		t.Errorf("driver = %q", cfg.Database.DriverName())
	}
}

func TestFullConfig_RejectsBadValues(t *testing.T) {
	cases := map[string]func(*Config){
		"auth":      func(c *Config) { c.Auth.Mode, c.Auth.Token = "token", "" },
		"driver":    func(c *Config) { c.Database.Driver = "mysql" },
		"dsn":       func(c *Config) { c.Database.DSN = "" },
		"color":     func(c *Config) { c.Graph.DefaultColor = "blue" },
		"port":      func(c *Config) { c.App.HTTP.Port = 70000 },
		"throttle":  func(c *Config) { c.Graph.EventThrottle = -time.Second },
		"log sizes": func(c *Config) { c.App.LogFile.MaxBackups = -1 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := NewDefaultConfig()
			mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestLoadConfigFile(t *testing.T) {
	t.Setenv("KB_TEST_DSN", "postgres://kb@localhost/kb?sslmode=disable")
	path := filepath.Join(t.TempDir(), "config.yaml")
	yml := `app:
  log_level: debug
  http:
    port: 9090
database:
  driver: postgres
  dsn: ${KB_TEST_DSN}
auth:
  mode: jwt
  jwt_secret: abc
vault:
  path: ./vault
  owner: alice
  watch: true
graph:
  event_throttle: 500ms
`
	if err := os.WriteFile(path, []byte(yml), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := config.Load(path, NewDefaultConfig())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if cfg.Database.DSN != "postgres://kb@localhost/kb?sslmode=disable" || cfg.Database.DriverName() != "postgres" {
		t.Errorf("database = %+v", cfg.Database)
	}
	if cfg.App.HTTP.Port != 9090 || cfg.App.LogLevel.String() != "DEBUG" {
		t.Errorf("app = %+v", cfg.App)
	}
	if cfg.Graph.EventThrottle != 500*time.Millisecond || cfg.Graph.DefaultColor != "#3b82f6" {
		t.Errorf("graph = %+v", cfg.Graph)
	}
	if !cfg.Vault.Enabled() || cfg.Vault.Owner != "alice" || !cfg.Vault.Watch {
		t.Errorf("vault = %+v", cfg.Vault)
	}
	if cfg.MCP.Owner != "local" {
		t.Errorf("mcp owner = %q", cfg.MCP.Owner)
	}
}
