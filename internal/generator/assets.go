package generator

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

// assetOutputPrefix is where theme assets land inside the output tree. It
// matches the /assets/ route the HTTP server exposes.
const assetOutputPrefix = "assets"

// copyAssets mirrors the active theme's asset directory into the output tree.
// Unchanged files are skipped on incremental builds using their recorded
// checksum.
func (s *service) copyAssets(ctx context.Context, prev, next *buildManifest, generatedAt time.Time, dryRun bool, result *BuildResult) (int, error) {
	dir := strings.TrimSpace(s.deps.ThemeAssetsDir)
	if dir == "" {
		return 0, nil
	}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		s.logger.Debug("generator.assets_missing", "dir", dir)
		return 0, nil
	}

	copied := 0
	err := filepath.WalkDir(dir, func(source string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		rel, err := filepath.Rel(dir, source)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		output := path.Join(assetOutputPrefix, rel)

		data, err := os.ReadFile(source)
		if err != nil {
			return fmt.Errorf("generator: read asset %s: %w", source, err)
		}
		checksum := contentHash(data)

		if s.cfg.Generator.Incremental && !s.cfg.Generator.CleanBuild {
			if record, ok := prev.Assets[output]; ok && record.Checksum == checksum {
				next.Assets[output] = record
				return nil
			}
		}

		if !dryRun {
			if err := s.writer.WriteFile(ctx, writeFileRequest{
				Path:        output,
				Content:     bytes.NewReader(data),
				Size:        int64(len(data)),
				Category:    categoryAsset,
				ContentType: contentTypeFor(rel),
				Checksum:    checksum,
			}); err != nil {
				return fmt.Errorf("generator: write asset %s: %w", output, err)
			}
		}

		next.Assets[output] = manifestAsset{
			Source:   rel,
			Output:   output,
			Checksum: checksum,
			Size:     int64(len(data)),
			CopiedAt: generatedAt,
		}
		copied++
		result.Artifacts = append(result.Artifacts, output)
		return nil
	})
	if err != nil {
		return copied, err
	}
	return copied, nil
}

func contentTypeFor(name string) string {
	switch strings.ToLower(path.Ext(name)) {
	case ".css":
		return "text/css; charset=utf-8"
	case ".js":
		return "text/javascript; charset=utf-8"
	case ".svg":
		return "image/svg+xml"
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".webp":
		return "image/webp"
	case ".ico":
		return "image/x-icon"
	case ".woff2":
		return "font/woff2"
	default:
		return "application/octet-stream"
	}
}
