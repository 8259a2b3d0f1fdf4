package render

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	gotheme "github.com/goliatone/go-theme"
)

// ThemeManifestLoader abstracts manifest IO so tests can stub theme loading.
type ThemeManifestLoader interface {
	Load(themePath string) (*gotheme.Manifest, error)
}

type fsThemeManifestLoader struct{}

func (fsThemeManifestLoader) Load(themePath string) (*gotheme.Manifest, error) {
	cleaned := filepath.Clean(strings.TrimSpace(themePath))
	if cleaned == "" {
		return nil, fmt.Errorf("theme path required")
	}

	return gotheme.LoadDir(os.DirFS(cleaned), ".")
}

// ThemeConfig selects which theme and variant renders the site.
type ThemeConfig struct {
	BasePath     string
	DefaultTheme string
	Variant      string
}

// ThemeSelector loads and caches theme manifests, resolving the active
// go-theme selection for render contexts.
type ThemeSelector struct {
	registry *gotheme.MemoryRegistry
	loader   ThemeManifestLoader
	cfg      ThemeConfig

	mu        sync.Mutex
	manifests map[string]*gotheme.Manifest
}

// NewThemeSelector builds a selector with an optional loader override.
func NewThemeSelector(cfg ThemeConfig, loader ThemeManifestLoader) *ThemeSelector {
	if loader == nil {
		loader = fsThemeManifestLoader{}
	}
	return &ThemeSelector{
		registry:  gotheme.NewRegistry(),
		loader:    loader,
		cfg:       cfg,
		manifests: map[string]*gotheme.Manifest{},
	}
}

// Selection resolves the configured theme, loading its manifest on first use.
func (s *ThemeSelector) Selection() (*gotheme.Selection, error) {
	name := strings.TrimSpace(s.cfg.DefaultTheme)
	if name == "" {
		return nil, nil
	}

	if _, err := s.ensureManifest(name); err != nil {
		return nil, err
	}

	selector := gotheme.Selector{
		Registry:       s.registry,
		DefaultTheme:   name,
		DefaultVariant: s.cfg.Variant,
	}

	selection, err := selector.Select(name, s.cfg.Variant)
	if err != nil {
		return nil, fmt.Errorf("select theme %s: %w", name, err)
	}
	return selection, nil
}

// ThemePath returns the directory holding the named theme's templates.
func (s *ThemeSelector) ThemePath(name string) string {
	return filepath.Join(s.cfg.BasePath, strings.TrimSpace(name))
}

func (s *ThemeSelector) ensureManifest(name string) (*gotheme.Manifest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if manifest, ok := s.manifests[name]; ok {
		return manifest, nil
	}

	manifest, err := s.loader.Load(s.ThemePath(name))
	if err != nil {
		return nil, fmt.Errorf("load theme manifest from %s: %w", s.ThemePath(name), err)
	}

	normalized := *manifest
	if strings.TrimSpace(normalized.Name) == "" {
		normalized.Name = name
	}

	if err := s.registry.Register(&normalized); err != nil {
		return nil, fmt.Errorf("register theme manifest: %w", err)
	}
	s.manifests[name] = &normalized
	return &normalized, nil
}

// ThemeContext surfaces go-theme selection data to templates.
type ThemeContext struct {
	Name      string
	Variant   string
	Tokens    map[string]string
	CSSVars   map[string]string
	AssetURL  func(string) string
	Selection *gotheme.Selection
}

// BuildThemeContext projects a selection into the template-facing shape. A nil
// selection yields inert helpers so templates render without a theme.
func BuildThemeContext(selection *gotheme.Selection) ThemeContext {
	empty := ThemeContext{
		Tokens:   map[string]string{},
		CSSVars:  map[string]string{},
		AssetURL: func(string) string { return "" },
	}
	if selection == nil {
		return empty
	}

	return ThemeContext{
		Name:      selection.Theme,
		Variant:   selection.Variant,
		Tokens:    selection.Tokens(),
		CSSVars:   selection.CSSVariables(""),
		AssetURL:  func(key string) string { url, _ := selection.Asset(key); return url },
		Selection: selection,
	}
}
