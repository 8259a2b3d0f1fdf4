package generator

import (
	"path"
	"strings"
)

// outputPathForRoute maps a site-relative route onto its on-disk artifact.
// Routes map to directory indexes so generated sites serve clean URLs.
func outputPathForRoute(route string) string {
	route = strings.TrimSpace(route)
	if route == "" {
		route = "/"
	}
	if idx := strings.IndexAny(route, "?#"); idx >= 0 {
		route = route[:idx]
	}

	clean := strings.Trim(route, " \t\r\n/")
	if clean == "" {
		return "index.html"
	}
	if strings.HasSuffix(clean, ".html") || strings.HasSuffix(clean, ".xml") || strings.HasSuffix(clean, ".txt") {
		return path.Clean(clean)
	}
	return path.Join(clean, "index.html")
}

// relativeRoute strips the site base URL so absolute links resolve to output
// paths.
func relativeRoute(route, baseURL string) string {
	route = strings.TrimSpace(route)
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL != "" && strings.HasPrefix(route, baseURL) {
		route = strings.TrimPrefix(route, baseURL)
	}
	if route == "" {
		route = "/"
	}
	return route
}

func joinOutputPath(base, rel string) string {
	base = strings.TrimSpace(base)
	rel = strings.TrimSpace(rel)
	if base == "" {
		return rel
	}
	return path.Join(base, rel)
}
