package internal

import (
	"fmt"
	"log/slog"
	"regexp"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/jly61/knowledge-and-blog/internal/api"
	"github.com/jly61/knowledge-and-blog/internal/store"
)

// Database drivers accepted in configuration.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

var hexColor = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// Config represents the application configuration.
type Config struct {
	App      ApplicationConfig `yaml:"app"`
	Database DatabaseConfig    `yaml:"database"`
	Auth     AuthConfig        `yaml:"auth"`
	Vault    VaultConfig       `yaml:"vault"`
	Graph    GraphConfig       `yaml:"graph"`
	MCP      MCPConfig         `yaml:"mcp"`
}

// Validate validates the configuration and fills owner defaults from auth.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Database.Validate(); err != nil {
		return err
	}
	if err := c.Auth.Validate(); err != nil {
		return err
	}
	if c.Vault.Owner == "" {
		c.Vault.Owner = c.Auth.DefaultUser
	}
	if c.MCP.Owner == "" {
		c.MCP.Owner = c.Auth.DefaultUser
	}
	if err := c.Vault.Validate(); err != nil {
		return err
	}
	return c.Graph.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level    `yaml:"log_level"`
	LogFile  LogFileConfig `yaml:"log_file"`
	HTTP     HTTPConfig    `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	if err := c.LogFile.Validate(); err != nil {
		return err
	}
	return c.HTTP.Validate()
}

// LogFileConfig enables a rotating log file next to stdout. An empty Path disables it.
type LogFileConfig struct {
	Path       string `yaml:"path"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

func (c *LogFileConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.MaxSizeMB, validation.Min(0)),
		validation.Field(&c.MaxBackups, validation.Min(0)),
		validation.Field(&c.MaxAgeDays, validation.Min(0)),
	)
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// DatabaseConfig selects the SQL backend.
type DatabaseConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

// Validate validates the database configuration.
func (c *DatabaseConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Driver, validation.Required, validation.In(DriverSQLite, DriverPostgres)),
		validation.Field(&c.DSN, validation.Required),
	)
}

// DriverName returns the database/sql driver registered for Driver.
func (c *DatabaseConfig) DriverName() string {
	if c.Driver == DriverPostgres {
		return store.DriverPostgres
	}
	return store.DriverSQLite
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): every request acts as DefaultUser, suitable for local dev.
//   - "token": Bearer token authentication as DefaultUser; Token must be non-empty.
//   - "jwt": HS256 tokens from an external issuer; JWTSecret must be non-empty.
type AuthConfig struct {
	Mode        string `yaml:"mode"`
	Token       string `yaml:"token"`
	JWTSecret   string `yaml:"jwt_secret"`
	DefaultUser string `yaml:"default_user"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	if c.Mode == "" {
		c.Mode = api.AuthDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(api.AuthDisabled, api.AuthToken, api.AuthJWT)),
	); err != nil {
		return err
	}
	switch {
	case c.Mode == api.AuthToken && c.Token == "":
		return fmt.Errorf("auth: mode is %q but token is empty", api.AuthToken)
	case c.Mode == api.AuthJWT && c.JWTSecret == "":
		return fmt.Errorf("auth: mode is %q but jwt_secret is empty", api.AuthJWT)
	case c.Mode != api.AuthJWT && c.DefaultUser == "":
		return fmt.Errorf("auth: mode is %q but default_user is empty", c.Mode)
	}
	return nil
}

// Middleware returns the API auth settings.
func (c *AuthConfig) Middleware() api.AuthConfig {
	return api.AuthConfig{
		Mode:        c.Mode,
		Token:       c.Token,
		JWTSecret:   []byte(c.JWTSecret),
		DefaultUser: c.DefaultUser,
	}
}

// VaultConfig mirrors a Markdown directory into the notes of Owner.
// An empty Path disables the vault.
type VaultConfig struct {
	Path  string `yaml:"path"`
	Owner string `yaml:"owner"`
	Watch bool   `yaml:"watch"`
}

// Enabled reports whether a vault directory is configured.
func (c *VaultConfig) Enabled() bool {
	return c.Path != ""
}

// Validate validates the vault configuration.
func (c *VaultConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Owner, validation.When(c.Enabled(), validation.Required)),
	)
}

// GraphConfig tunes graph projection and live graph events.
type GraphConfig struct {
	DefaultColor  string        `yaml:"default_color"`
	EventThrottle time.Duration `yaml:"event_throttle"`
}

// Validate validates the graph configuration.
func (c *GraphConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.DefaultColor, validation.Required, validation.Match(hexColor)),
		validation.Field(&c.EventThrottle, validation.Min(time.Duration(0))),
	)
}

// MCPConfig holds the owner the MCP server acts for.
type MCPConfig struct {
	Owner string `yaml:"owner"`
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			LogFile: LogFileConfig{
				MaxSizeMB:  100,
				MaxBackups: 3,
				MaxAgeDays: 28,
			},
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Database: DatabaseConfig{
			Driver: DriverSQLite,
			DSN:    "./knowledge.db",
		},
		Auth: AuthConfig{
			Mode:        api.AuthDisabled,
			DefaultUser: "local",
		},
		Graph: GraphConfig{
			DefaultColor:  "#3b82f6",
			EventThrottle: 2 * time.Second,
		},
	}
}
