package blog

import "github.com/goliatone/go-blog/internal/site"

// Config re-exports the site configuration so embedders construct it without
// importing internal packages.
type Config = site.Config

// Link re-exports a labelled site URL.
type Link = site.Link

// Analytics re-exports the analytics middleware configuration.
type Analytics = site.Analytics

// Avatar display modes.
const (
	AvatarRounded = site.AvatarRounded
	AvatarSquare  = site.AvatarSquare
	AvatarHidden  = site.AvatarHidden
)

// Middleware identifiers accepted in Config.Middlewares.
const (
	MiddlewareRequestLog = site.MiddlewareRequestLog
	MiddlewareAnalytics  = site.MiddlewareAnalytics
)

// LoadConfig reads, validates, and normalizes a site configuration file.
func LoadConfig(path string) (Config, error) {
	return site.Load(path)
}

// ParseConfig validates and normalizes raw site configuration JSON.
func ParseConfig(raw []byte) (Config, error) {
	return site.Parse(raw)
}

// ConfigJSONSchema is the JSON schema the configuration file is validated
// against before decoding.
const ConfigJSONSchema = site.ConfigJSONSchema
