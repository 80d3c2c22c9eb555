package internal

import (
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/starford/unpack/internal/pipeline"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Companion responders.
const (
	ResponderRemote    = "remote"
	ResponderHeuristic = "heuristic"
)

// Config represents the application configuration.
type Config struct {
	App       ApplicationConfig `yaml:"app"`
	SQLite    SQLiteConfig      `yaml:"sqlite"`
	Photos    PhotosConfig      `yaml:"photos"`
	OpenAI    OpenAIConfig      `yaml:"openai"`
	Companion CompanionConfig   `yaml:"companion"`
	Pipeline  PipelineConfig    `yaml:"pipeline"`
	Auth      AuthConfig        `yaml:"auth"`
	MCP       MCPConfig         `yaml:"mcp"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	for _, v := range []validation.Validatable{
		&c.App, &c.SQLite, &c.Photos, &c.OpenAI, &c.Companion, &c.Pipeline, &c.Auth, &c.MCP,
	} {
		if err := v.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
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

// SQLiteConfig holds SQLite database configuration.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the SQLite configuration.
func (c *SQLiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// PhotosConfig configures the page photo store and its signed URLs.
//
// BaseURL is the public prefix photo links are issued under; the server
// serves them at /photos. An empty SigningKey makes the server generate one
// at startup, so links do not survive a restart.
type PhotosConfig struct {
	Path       string        `yaml:"path"`
	BaseURL    string        `yaml:"base_url"`
	SigningKey string        `yaml:"signing_key"`
	URLTTL     time.Duration `yaml:"url_ttl"`
}

// Validate validates the photos configuration.
func (c *PhotosConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
		validation.Field(&c.BaseURL, validation.Required, is.URL),
		validation.Field(&c.URLTTL, validation.Min(time.Minute)),
	)
}

// OpenAIConfig configures the model client. With an empty APIKey every
// model-backed stage uses its offline fallback.
type OpenAIConfig struct {
	APIKey      string        `yaml:"api_key"`
	BaseURL     string        `yaml:"base_url"`
	Model       string        `yaml:"model"`
	VisionModel string        `yaml:"vision_model"`
	Timeout     time.Duration `yaml:"timeout"`
	MaxRetries  int           `yaml:"max_retries"`
}

// Validate validates the OpenAI configuration.
func (c *OpenAIConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Model, validation.When(c.APIKey != "", validation.Required)),
		validation.Field(&c.BaseURL, is.URL),
		validation.Field(&c.MaxRetries, validation.Min(0), validation.Max(10)),
	)
}

// CompanionConfig selects the conversation responder.
//   - "remote" (default): the configured model, falling back to heuristic
//     when no API key is set.
//   - "heuristic": offline keyword rules.
type CompanionConfig struct {
	Responder string `yaml:"responder"`
}

// Validate validates the companion configuration.
func (c *CompanionConfig) Validate() error {
	if c.Responder == "" {
		c.Responder = ResponderRemote
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.Responder, validation.In(ResponderRemote, ResponderHeuristic)),
	)
}

// PipelineConfig tunes the capture pipeline.
type PipelineConfig struct {
	ReviewThreshold float64 `yaml:"review_threshold"`
}

// Validate validates the pipeline configuration.
func (c *PipelineConfig) Validate() error {
	if c.ReviewThreshold == 0 {
		c.ReviewThreshold = pipeline.DefaultReviewThreshold
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.ReviewThreshold, validation.Min(0.0), validation.Max(1.0)),
	)
}

// UserConfig maps a bearer token to an owner id.
type UserConfig struct {
	ID    string `yaml:"id"`
	Token string `yaml:"token"`
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication; the owner comes from the
//     X-Owner-ID header. Suitable for local dev.
//   - "token": Bearer token authentication against Users; at least one
//     user is required.
type AuthConfig struct {
	Mode  string       `yaml:"mode"`
	Users []UserConfig `yaml:"users"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	// Normalise empty mode to "disabled".
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && len(c.Users) == 0 {
		return fmt.Errorf("auth: mode is %q but no users are configured", AuthModeToken)
	}
	seen := make(map[string]bool, len(c.Users))
	for i, u := range c.Users {
		if u.ID == "" || u.Token == "" {
			return fmt.Errorf("auth: user %d needs both id and token", i)
		}
		if seen[u.Token] {
			return fmt.Errorf("auth: user %s reuses another user's token", u.ID)
		}
		seen[u.Token] = true
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// Tokens returns the token to owner-id map.
func (c *AuthConfig) Tokens() map[string]string {
	m := make(map[string]string, len(c.Users))
	for _, u := range c.Users {
		m[u.Token] = u.ID
	}
	return m
}

// MCPConfig configures the MCP server. It acts on a single owner's journal.
type MCPConfig struct {
	OwnerID string `yaml:"owner_id"`
}

// Validate validates the MCP configuration.
func (c *MCPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.OwnerID, validation.Required),
	)
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		SQLite: SQLiteConfig{
			Path: "./unpack.db",
		},
		Photos: PhotosConfig{
			Path:    "./photos",
			BaseURL: "http://localhost:8080/photos",
			URLTTL:  365 * 24 * time.Hour,
		},
		OpenAI: OpenAIConfig{
			Model:       "gpt-4o-mini",
			VisionModel: "gpt-4o",
			Timeout:     20 * time.Second,
			MaxRetries:  3,
		},
		Companion: CompanionConfig{
			Responder: ResponderRemote,
		},
		Pipeline: PipelineConfig{
			ReviewThreshold: pipeline.DefaultReviewThreshold,
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
		MCP: MCPConfig{
			OwnerID: "local",
		},
	}
}
