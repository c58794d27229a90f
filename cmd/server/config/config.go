// Package config handles configuration for the API server: defaults,
// an optional JSON overlay, and command-line flags, applied in that order.
package config

import (
	"fmt"
	"time"
)

// Persistence holds the database settings consumed by the persistence client.
type Persistence struct {
	Debug                 bool   `json:"debug"`
	Driver                string `json:"driver"`
	Server                string `json:"server"`
	Database              string `json:"database"`
	PingTimeoutExpression string `json:"ping_timeout"`
}

func (p Persistence) GetDebug() bool {
	return p.Debug
}

func (p Persistence) GetDriver() string {
	return p.Driver
}

func (p Persistence) GetServer() string {
	return p.Server
}

func (p Persistence) GetDatabase() string {
	return p.Database
}

// GetOtelIdentifier satisfies persistence.Config; empty disables the otel hook.
func (p Persistence) GetOtelIdentifier() string {
	return ""
}

// GetDSN returns the connection string handed to sql.Open.
func (p Persistence) GetDSN() string {
	return p.Server
}

func (p Persistence) GetPingTimeout() time.Duration {
	dur, err := time.ParseDuration(p.PingTimeoutExpression)
	if err != nil {
		panic(
			fmt.Sprintf("unable to parse time: expr %s", p.PingTimeoutExpression),
		)
	}
	return dur
}

// Auth holds token lifetimes and the lookup settings the bearer middleware
// uses to pull credentials off a request.
type Auth struct {
	TokenExpiration       int    `json:"token_expiration"`
	ExtendedTokenDuration int    `json:"extended_token_duration"`
	TokenName             string `json:"token_name"`
	TokenLookup           string `json:"token_lookup"`
	AuthScheme            string `json:"auth_scheme"`
	ContextKey            string `json:"context_key"`
}

// GetTokenExpiration returns the default token lifetime in hours.
// Zero means issued tokens never expire.
func (a Auth) GetTokenExpiration() int {
	return a.TokenExpiration
}

// GetExtendedTokenDuration returns the remember-me lifetime in hours.
func (a Auth) GetExtendedTokenDuration() int {
	return a.ExtendedTokenDuration
}

func (a Auth) GetTokenName() string {
	return a.TokenName
}

func (a Auth) GetTokenLookup() string {
	return a.TokenLookup
}

func (a Auth) GetAuthScheme() string {
	return a.AuthScheme
}

func (a Auth) GetContextKey() string {
	return a.ContextKey
}

// Config holds runtime settings for the API server.
type Config struct {
	HTTPAddr    string      `json:"http_addr"`
	Debug       bool        `json:"debug"`
	Persistence Persistence `json:"persistence"`
	Auth        Auth        `json:"auth"`
}

func (c Config) GetHTTPAddr() string {
	return c.HTTPAddr
}

func (c Config) GetDebug() bool {
	return c.Debug
}

func (c Config) GetPersistence() Persistence {
	return c.Persistence
}

func (c Config) GetAuth() Auth {
	return c.Auth
}

func (c Config) Validate() error {
	if c.HTTPAddr == "" {
		return fmt.Errorf("config: http_addr is required")
	}

	if c.Persistence.Server == "" {
		return fmt.Errorf("config: persistence.server is required")
	}

	if _, err := time.ParseDuration(c.Persistence.PingTimeoutExpression); err != nil {
		return fmt.Errorf("config: persistence.ping_timeout: %w", err)
	}

	return nil
}

// LoadDefaults populates Config with development defaults.
// The sqlite DSN keeps local runs self-contained; override for production.
func (c *Config) LoadDefaults() {
	c.HTTPAddr = ":8080"
	c.Debug = false
	c.Persistence = Persistence{
		Driver:                "sqlite",
		Server:                "file:liberfly.db?cache=shared&_pragma=foreign_keys(1)",
		Database:              "liberfly",
		PingTimeoutExpression: "5s",
	}
	c.Auth = Auth{
		TokenExpiration:       0,
		ExtendedTokenDuration: 168,
		TokenName:             "API Token",
		TokenLookup:           "header:Authorization",
		AuthScheme:            "Bearer",
		ContextKey:            "grant",
	}
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file and finally from command-line flags.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseJSON(cfg); err != nil {
		return nil, err
	}

	if err := parseFlags(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}
