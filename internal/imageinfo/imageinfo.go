// Package imageinfo gathers the metadata shown in the viewer's info overlay.
package imageinfo

import (
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"go.uber.org/zap"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/bagtoad/imggallery/internal/gallery"
)

// NotAvailable is displayed for any value that could not be determined.
const NotAvailable = "N/A"

// Info describes one image. Zero sizes mean unknown.
type Info struct {
	Name        string
	Description string
	Size        int64
	Width       int
	Height      int
	Format      string
}

// Fetch collects size and resolution for img from src. Lookup failures only
// leave fields unknown; they are logged and never returned.
func Fetch(ctx context.Context, src gallery.Source, img gallery.Image, logger *zap.Logger) Info {
	if logger == nil {
		logger = zap.NewNop()
	}
	info := Info{Name: img.Name, Description: img.Description}

	size, ok, err := src.ImageSize(ctx, img.ID)
	if err != nil {
		logger.Warn("cannot read image size", zap.String("id", img.ID), zap.Error(err))
	} else if ok {
		info.Size = size
	}

	rc, err := src.ImageBytes(ctx, img.ID)
	if err != nil {
		logger.Warn("cannot fetch image", zap.String("id", img.ID), zap.Error(err))
		return info
	}
	defer rc.Close()

	cfg, format, err := image.DecodeConfig(rc)
	if err != nil {
		logger.Debug("cannot decode image header", zap.String("id", img.ID), zap.Error(err))
		return info
	}
	info.Width, info.Height, info.Format = cfg.Width, cfg.Height, format
	return info
}

// SizeText formats the size in kilobytes with two decimals.
func (i Info) SizeText() string {
	if i.Size <= 0 {
		return NotAvailable
	}
	return fmt.Sprintf("%.2f KB", float64(i.Size)/1024)
}

// ResolutionText formats the resolution as "W x H".
func (i Info) ResolutionText() string {
	if i.Width <= 0 || i.Height <= 0 {
		return NotAvailable
	}
	return fmt.Sprintf("%d x %d", i.Width, i.Height)
}

// Lines returns the overlay rows in display order.
func (i Info) Lines() []string {
	return []string{
		"Name: " + orNA(i.Name),
		"Size: " + i.SizeText(),
		"Resolution: " + i.ResolutionText(),
		"Description: " + orNA(i.Description),
	}
}

func orNA(s string) string {
	if s == "" {
		return NotAvailable
	}
	return s
}
