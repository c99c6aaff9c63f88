// Package exporter copies album images into per-album subfolders.
package exporter

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/bagtoad/imggallery/internal/categories"
	"github.com/bagtoad/imggallery/internal/categorizer"
	"github.com/bagtoad/imggallery/internal/gallery"
	"github.com/bagtoad/imggallery/internal/localdir"
)

// Result records what happened to a single image.
type Result struct {
	Image    gallery.Image
	DestPath string
	Album    string
	Bytes    int64
}

// Export writes every album image from src into baseDir/<album>/<name>.
// Existing files are never overwritten; a numeric suffix is added instead.
// If dryRun is true, nothing is written but results are still returned.
func Export(ctx context.Context, src gallery.Source, baseDir string, albums []categorizer.Album, dryRun bool, logger *zap.Logger) ([]Result, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	var results []Result

	for _, album := range albums {
		if !categories.IsPlainName(album.Name) {
			return results, fmt.Errorf("album name %q is not a plain folder name", album.Name)
		}
		albumDir := filepath.Join(baseDir, album.Name)

		if !dryRun {
			if err := os.MkdirAll(albumDir, 0755); err != nil {
				return results, fmt.Errorf("cannot create album folder %q: %w", albumDir, err)
			}
		}

		for _, img := range album.Images {
			if err := ctx.Err(); err != nil {
				return results, err
			}
			destPath := filepath.Join(albumDir, fileName(img))
			if dryRun {
				results = append(results, Result{Image: img, DestPath: destPath, Album: album.Name})
				continue
			}

			destPath = localdir.UniquePath(destPath)
			n, err := copyImage(ctx, src, img.ID, destPath)
			if err != nil {
				return results, fmt.Errorf("cannot export %s to %s: %w", img.Name, destPath, err)
			}
			logger.Debug("exported image",
				zap.String("id", img.ID), zap.String("album", album.Name), zap.String("dest", destPath))
			results = append(results, Result{Image: img, DestPath: destPath, Album: album.Name, Bytes: n})
		}
	}

	return results, nil
}

// fileName derives a safe base name, falling back to the id.
func fileName(img gallery.Image) string {
	name := filepath.Base(img.Name)
	if !categories.IsPlainName(name) {
		return img.ID
	}
	return name
}

func copyImage(ctx context.Context, src gallery.Source, id, destPath string) (int64, error) {
	rc, err := src.ImageBytes(ctx, id)
	if err != nil {
		return 0, err
	}
	defer rc.Close()

	f, err := os.OpenFile(destPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return 0, err
	}
	n, err := io.Copy(f, rc)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(destPath)
		return 0, err
	}
	return n, nil
}
