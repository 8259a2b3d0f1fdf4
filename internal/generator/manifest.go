package generator

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

const (
	manifestFileName    = ".blog-manifest.json"
	manifestFileVersion = 1
)

// buildManifest stores metadata about the last successful build so
// incremental runs can skip unchanged artifacts.
type buildManifest struct {
	Version     int                      `json:"version"`
	GeneratedAt time.Time                `json:"generated_at"`
	Pages       map[string]manifestPage  `json:"pages"`
	Assets      map[string]manifestAsset `json:"assets"`
}

type manifestPage struct {
	Route      string    `json:"route"`
	Output     string    `json:"output"`
	Template   string    `json:"template"`
	Hash       string    `json:"hash"`
	RenderedAt time.Time `json:"rendered_at"`
}

type manifestAsset struct {
	Source   string    `json:"source"`
	Output   string    `json:"output"`
	Checksum string    `json:"checksum"`
	Size     int64     `json:"size"`
	CopiedAt time.Time `json:"copied_at"`
}

func newBuildManifest() *buildManifest {
	return &buildManifest{
		Version: manifestFileVersion,
		Pages:   map[string]manifestPage{},
		Assets:  map[string]manifestAsset{},
	}
}

func parseManifest(data []byte) (*buildManifest, error) {
	if len(data) == 0 {
		return newBuildManifest(), nil
	}
	var manifest buildManifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("generator: parse manifest: %w", err)
	}
	if manifest.Pages == nil {
		manifest.Pages = map[string]manifestPage{}
	}
	if manifest.Assets == nil {
		manifest.Assets = map[string]manifestAsset{}
	}
	if manifest.Version == 0 {
		manifest.Version = manifestFileVersion
	}
	return &manifest, nil
}

func (m *buildManifest) encode() ([]byte, error) {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("generator: encode manifest: %w", err)
	}
	return append(data, '\n'), nil
}

// pageRoutes lists the recorded routes in stable order, mainly for tests and
// clean runs.
func (m *buildManifest) pageRoutes() []string {
	routes := make([]string, 0, len(m.Pages))
	for route := range m.Pages {
		routes = append(routes, route)
	}
	sort.Strings(routes)
	return routes
}
