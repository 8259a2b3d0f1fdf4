package site

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/goliatone/go-blog/pkg/interfaces"
	"github.com/goliatone/go-blog/pkg/storage"
)

// ErrTitleRequired indicates the site has no display title.
var ErrTitleRequired = errors.New("site config: title is required")

// ErrAuthorRequired indicates the site has no author.
var ErrAuthorRequired = errors.New("site config: author is required")

// ErrAnalyticsTrackingIDRequired ensures the analytics middleware only runs with a tracking ID.
var ErrAnalyticsTrackingIDRequired = errors.New("site config: analytics middleware requires a tracking id")

// ErrGeneratorOutputDirRequired indicates the generator has nowhere to write.
var ErrGeneratorOutputDirRequired = errors.New("site config: generator output directory is required when generator is enabled")

// ErrContentDirRequired indicates the posts module has no content directory.
var ErrContentDirRequired = errors.New("site config: content directory is required")

// ErrAvatarModeInvalid indicates an unrecognised avatar display mode.
var ErrAvatarModeInvalid = errors.New("site config: avatar mode is invalid")

// ErrLoggingFormatInvalid indicates an unsupported logging format.
var ErrLoggingFormatInvalid = errors.New("site config: logging format is invalid")

// ErrUnknownMiddleware indicates a middleware reference with no registered implementation.
var ErrUnknownMiddleware = errors.New("site config: unknown middleware")

// Avatar display modes recognised by themes.
const (
	AvatarRounded = "rounded"
	AvatarSquare  = "square"
	AvatarHidden  = "hidden"
)

// Middleware identifiers referenced by Config.Middlewares.
const (
	MiddlewareRequestLog = "request_log"
	MiddlewareAnalytics  = "analytics"
)

// Analytics providers with first-class snippet support. Anything else falls
// back to the Google tag.
const (
	AnalyticsProviderGoogle      = "google"
	AnalyticsProviderPlausible   = "plausible"
	AnalyticsProviderGoatCounter = "goatcounter"
)

// Config aggregates the display metadata and engine bindings for a blog site.
// It is created once at process start and treated as read-only afterwards.
type Config struct {
	Title       string   `json:"title"`
	Author      string   `json:"author"`
	Description string   `json:"description,omitempty"`
	Avatar      string   `json:"avatar,omitempty"`
	AvatarMode  string   `json:"avatar_mode,omitempty"`
	Links       []Link   `json:"links,omitempty"`
	Lang        string   `json:"lang,omitempty"`
	BaseURL     string   `json:"base_url,omitempty"`
	Middlewares []string `json:"middlewares,omitempty"`

	Analytics Analytics       `json:"analytics,omitempty"`
	Content   ContentConfig   `json:"content,omitempty"`
	Markdown  MarkdownConfig  `json:"markdown,omitempty"`
	Generator GeneratorConfig `json:"generator,omitempty"`
	Server    ServerConfig    `json:"server,omitempty"`
	Storage   storage.Config  `json:"storage,omitempty"`
	Logging   LoggingConfig   `json:"logging,omitempty"`
	Theme     ThemeConfig     `json:"theme,omitempty"`
}

// Link is a labelled URL rendered in the site chrome (social links, projects).
type Link struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// Analytics configures the analytics middleware (a request hook that injects
// a tracking snippet keyed by TrackingID into rendered HTML).
type Analytics struct {
	TrackingID string `json:"tracking_id,omitempty"`
	Provider   string `json:"provider,omitempty"`
}

// ContentConfig captures configuration for the posts module.
type ContentConfig struct {
	Dir           string `json:"dir"`
	Pattern       string `json:"pattern,omitempty"`
	Recursive     bool   `json:"recursive,omitempty"`
	IncludeDrafts bool   `json:"include_drafts,omitempty"`
}

// MarkdownConfig exposes parser toggles.
type MarkdownConfig struct {
	Extensions []string `json:"extensions,omitempty"`
	HardWraps  bool     `json:"hard_wraps,omitempty"`
	SafeMode   bool     `json:"safe_mode,omitempty"`
}

// GeneratorConfig captures static build behaviour.
type GeneratorConfig struct {
	Enabled         bool   `json:"enabled,omitempty"`
	OutputDir       string `json:"output_dir,omitempty"`
	CleanBuild      bool   `json:"clean_build,omitempty"`
	Incremental     bool   `json:"incremental,omitempty"`
	CopyAssets      bool   `json:"copy_assets,omitempty"`
	GenerateSitemap bool   `json:"generate_sitemap,omitempty"`
	GenerateRobots  bool   `json:"generate_robots,omitempty"`
	GenerateFeeds   bool   `json:"generate_feeds,omitempty"`
}

// ServerConfig captures HTTP server behaviour.
type ServerConfig struct {
	Addr            string        `json:"addr,omitempty"`
	ReadTimeout     time.Duration `json:"read_timeout,omitempty"`
	WriteTimeout    time.Duration `json:"write_timeout,omitempty"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout,omitempty"`
}

// UnmarshalJSON accepts the timeout fields either as Go duration strings
// ("10s", "1m30s") or as bare numbers, which are read as seconds.
func (c *ServerConfig) UnmarshalJSON(data []byte) error {
	var raw struct {
		Addr            string          `json:"addr"`
		ReadTimeout     json.RawMessage `json:"read_timeout"`
		WriteTimeout    json.RawMessage `json:"write_timeout"`
		ShutdownTimeout json.RawMessage `json:"shutdown_timeout"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	c.Addr = raw.Addr
	for _, field := range []struct {
		name string
		raw  json.RawMessage
		dst  *time.Duration
	}{
		{"read_timeout", raw.ReadTimeout, &c.ReadTimeout},
		{"write_timeout", raw.WriteTimeout, &c.WriteTimeout},
		{"shutdown_timeout", raw.ShutdownTimeout, &c.ShutdownTimeout},
	} {
		value, err := parseConfigDuration(field.raw)
		if err != nil {
			return fmt.Errorf("site config: server.%s: %w", field.name, err)
		}
		*field.dst = value
	}
	return nil
}

func parseConfigDuration(raw json.RawMessage) (time.Duration, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return 0, nil
	}

	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		if strings.TrimSpace(text) == "" {
			return 0, nil
		}
		return time.ParseDuration(text)
	}

	var seconds float64
	if err := json.Unmarshal(raw, &seconds); err == nil {
		return time.Duration(seconds * float64(time.Second)), nil
	}
	return 0, errors.New("expected a duration string or seconds")
}

// LoggingConfig captures provider-specific options for runtime logging.
type LoggingConfig struct {
	Level     string   `json:"level,omitempty"`
	Format    string   `json:"format,omitempty"`
	AddSource bool     `json:"add_source,omitempty"`
	Focus     []string `json:"focus,omitempty"`
}

// ThemeConfig captures template lookup configuration.
type ThemeConfig struct {
	BasePath     string `json:"base_path,omitempty"`
	DefaultTheme string `json:"default_theme,omitempty"`
	Variant      string `json:"variant,omitempty"`
}

// ParseOptions maps the markdown section onto the parser contract.
func (c MarkdownConfig) ParseOptions() interfaces.ParseOptions {
	return interfaces.ParseOptions{
		Extensions: append([]string(nil), c.Extensions...),
		HardWraps:  c.HardWraps,
		SafeMode:   c.SafeMode,
	}
}

// WithDefaults fills unset fields with their documented defaults.
func (c Config) WithDefaults() Config {
	if strings.TrimSpace(c.Lang) == "" {
		c.Lang = "en"
	}
	if strings.TrimSpace(c.AvatarMode) == "" {
		c.AvatarMode = AvatarRounded
	}
	if strings.TrimSpace(c.Content.Dir) == "" {
		c.Content.Dir = "content/posts"
	}
	if strings.TrimSpace(c.Content.Pattern) == "" {
		c.Content.Pattern = "*.md"
	}
	if len(c.Middlewares) == 0 {
		c.Middlewares = []string{MiddlewareRequestLog}
	}
	if strings.TrimSpace(c.Server.Addr) == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.ShutdownTimeout <= 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}
	if c.Generator.Enabled && strings.TrimSpace(c.Generator.OutputDir) == "" {
		c.Generator.OutputDir = "public"
	}
	if strings.TrimSpace(c.Theme.BasePath) == "" {
		c.Theme.BasePath = "themes"
	}
	if strings.TrimSpace(c.Theme.DefaultTheme) == "" {
		c.Theme.DefaultTheme = "default"
	}
	return c
}

// Validate checks cross-field invariants after defaults are applied.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Title) == "" {
		return ErrTitleRequired
	}
	if strings.TrimSpace(c.Author) == "" {
		return ErrAuthorRequired
	}
	if strings.TrimSpace(c.Content.Dir) == "" {
		return ErrContentDirRequired
	}

	switch c.AvatarMode {
	case "", AvatarRounded, AvatarSquare, AvatarHidden:
	default:
		return ErrAvatarModeInvalid
	}

	switch strings.ToLower(strings.TrimSpace(c.Logging.Format)) {
	case "", "json", "console", "pretty":
	default:
		return ErrLoggingFormatInvalid
	}

	for _, name := range c.Middlewares {
		switch strings.TrimSpace(name) {
		case MiddlewareRequestLog:
		case MiddlewareAnalytics:
			if strings.TrimSpace(c.Analytics.TrackingID) == "" {
				return ErrAnalyticsTrackingIDRequired
			}
		default:
			return ErrUnknownMiddleware
		}
	}

	if c.Generator.Enabled && strings.TrimSpace(c.Generator.OutputDir) == "" {
		return ErrGeneratorOutputDirRequired
	}

	return validation.ValidateStruct(&c,
		validation.Field(&c.BaseURL, is.URL),
		validation.Field(&c.Links),
	)
}

// Validate checks that each link carries a label and a well-formed URL.
func (l Link) Validate() error {
	return validation.ValidateStruct(&l,
		validation.Field(&l.Title, validation.Required),
		validation.Field(&l.URL, validation.Required, is.URL),
	)
}
