package internal

import (
	"fmt"
	"log/slog"
	"regexp"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/starford/codeboost/internal/newsletter"
	"github.com/starford/codeboost/internal/render"
	"github.com/starford/codeboost/internal/site"
	"github.com/starford/codeboost/internal/theme"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// basePath matches a listing base such as /archive: rooted, no trailing slash.
var basePath = regexp.MustCompile(`^(/[a-z0-9-]+)+$`)

// Config represents the application configuration.
type Config struct {
	App        ApplicationConfig `yaml:"app"`
	Site       render.Site       `yaml:"site"`
	Content    ContentConfig     `yaml:"content"`
	Build      BuildConfig       `yaml:"build"`
	SQLite     SQLiteConfig      `yaml:"sqlite"`
	Newsletter NewsletterConfig  `yaml:"newsletter"`
	Theme      theme.Config      `yaml:"theme"`
	Manifest   site.Manifest     `yaml:"manifest"`
	Auth       AuthConfig        `yaml:"auth"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	validators := []struct {
		name string
		fn   func() error
	}{
		{"app", c.App.Validate},
		{"site", c.validateSite},
		{"content", c.Content.Validate},
		{"build", c.Build.Validate},
		{"build", c.validateOutput},
		{"sqlite", c.SQLite.Validate},
		{"newsletter", c.Newsletter.Validate},
		{"theme", c.validateTheme},
		{"manifest", c.validateManifest},
		{"auth", c.Auth.Validate},
	}
	for _, v := range validators {
		if err := v.fn(); err != nil {
			return fmt.Errorf("%s: %w", v.name, err)
		}
	}
	return nil
}

// validateOutput keeps a clean build from replacing its own inputs.
func (c *Config) validateOutput() error {
	return site.CheckOutputDir(c.Build.OutputDir, c.Content.Dir, c.Build.StaticDir, c.SQLite.Path)
}

func (c *Config) validateSite() error {
	s := &c.Site
	return validation.ValidateStruct(s,
		validation.Field(&s.Title, validation.Required),
		validation.Field(&s.URL, validation.Required, is.URL),
		validation.Field(&s.Lang, validation.Length(2, 8)),
	)
}

func (c *Config) validateTheme() error {
	t := &c.Theme
	if err := validation.ValidateStruct(t,
		validation.Field(&t.Mode, validation.Required, validation.In(theme.ModeLight, theme.ModeDark)),
		validation.Field(&t.StorageKey, validation.Required),
	); err != nil {
		return err
	}
	for _, p := range []*theme.Palette{&t.Light, &t.Dark} {
		if err := validation.ValidateStruct(p,
			validation.Field(&p.Background, validation.Required, is.HexColor),
			validation.Field(&p.Text, validation.Required, is.HexColor),
			validation.Field(&p.Accent, is.HexColor),
			validation.Field(&p.Highlight, is.HexColor),
		); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) validateManifest() error {
	m := &c.Manifest
	return validation.ValidateStruct(m,
		validation.Field(&m.StartURL, validation.Required),
		validation.Field(&m.BackgroundColor, is.HexColor),
		validation.Field(&m.ThemeColor, is.HexColor),
		validation.Field(&m.Display, validation.In("fullscreen", "standalone", "minimal-ui", "browser")),
	)
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

// ContentConfig points at the markdown content root.
//
// StripPrefix is the number of leading characters removed from a file's
// path-derived slug; the default of 10 drops "/tutorials".
type ContentConfig struct {
	Dir         string `yaml:"dir"`
	StripPrefix int    `yaml:"strip_prefix"`
	TopicsFile  string `yaml:"topics_file"`
	Limit       int    `yaml:"limit"`
}

// Validate validates the content configuration.
func (c *ContentConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Dir, validation.Required),
		validation.Field(&c.StripPrefix, validation.Min(0)),
		validation.Field(&c.Limit, validation.Required, validation.Min(1)),
	)
}

// BuildConfig controls the static output.
type BuildConfig struct {
	OutputDir   string        `yaml:"output_dir"`
	StaticDir   string        `yaml:"static_dir"`
	PageSize    int           `yaml:"page_size"`
	ArchiveBase string        `yaml:"archive_base"`
	VideosBase  string        `yaml:"videos_base"`
	FeedSize    int           `yaml:"feed_size"`
	Debounce    time.Duration `yaml:"debounce"`
	LiveReload  bool          `yaml:"live_reload"`
}

// Validate validates the build configuration.
func (c *BuildConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.OutputDir, validation.Required),
		validation.Field(&c.PageSize, validation.Required, validation.Min(1)),
		validation.Field(&c.ArchiveBase, validation.Required, validation.Match(basePath)),
		validation.Field(&c.VideosBase, validation.Required, validation.Match(basePath)),
		validation.Field(&c.FeedSize, validation.Min(0)),
		validation.Field(&c.Debounce, validation.Min(time.Duration(0))),
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

// NewsletterConfig points at the external subscription service.
// An empty endpoint disables the subscribe form and its API routes.
type NewsletterConfig struct {
	Endpoint string        `yaml:"endpoint"`
	Timeout  time.Duration `yaml:"timeout"`
}

// Validate validates the newsletter configuration.
func (c *NewsletterConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Endpoint, is.URL),
		validation.Field(&c.Timeout, validation.Min(time.Duration(0))),
	)
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local dev.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
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
		Site: render.DefaultSite(),
		Content: ContentConfig{
			Dir:         "./content",
			StripPrefix: 10,
			TopicsFile:  "data/topics.json",
			Limit:       1000,
		},
		Build: BuildConfig{
			OutputDir:   "./public",
			StaticDir:   "./static",
			PageSize:    12,
			ArchiveBase: "/archive",
			VideosBase:  "/videos",
			FeedSize:    20,
			Debounce:    300 * time.Millisecond,
		},
		SQLite: SQLiteConfig{
			Path: "./codeboost.db",
		},
		Newsletter: NewsletterConfig{
			Endpoint: newsletter.DefaultEndpoint,
			Timeout:  10 * time.Second,
		},
		Theme:    theme.DefaultConfig(),
		Manifest: site.DefaultManifest(),
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
	}
}
