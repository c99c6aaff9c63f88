package gallery

import (
	"context"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"
)

// Collection holds the image list from the last successful refresh. It is
// owned by a single session and is not safe for concurrent use.
type Collection struct {
	source Source
	logger *zap.Logger
	images []Image
}

// NewCollection creates an empty collection backed by src.
func NewCollection(src Source, logger *zap.Logger) *Collection {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Collection{source: src, logger: logger}
}

// Source returns the backing store.
func (c *Collection) Source() Source {
	return c.source
}

// Refresh replaces the whole collection with the source's current image set.
// On failure the previous collection is left untouched.
func (c *Collection) Refresh(ctx context.Context) error {
	images, err := c.source.ListImages(ctx)
	if err != nil {
		c.logger.Warn("refresh failed, keeping previous collection",
			zap.Int("images", len(c.images)), zap.Error(err))
		return fmt.Errorf("refresh collection: %w", err)
	}
	if images == nil {
		images = []Image{}
	}
	c.images = images
	c.logger.Debug("collection refreshed", zap.Int("images", len(images)))
	return nil
}

// List returns the images in source order.
func (c *Collection) List() []Image {
	out := make([]Image, len(c.images))
	copy(out, c.images)
	return out
}

// Len returns the number of images.
func (c *Collection) Len() int {
	return len(c.images)
}

// Lookup finds an image by id.
func (c *Collection) Lookup(id string) (Image, bool) {
	for _, img := range c.images {
		if img.ID == id {
			return img, true
		}
	}
	return Image{}, false
}

// Filter returns the images matching query, see Filter.
func (c *Collection) Filter(query string) []Image {
	return Filter(c.images, query)
}

// Delete removes an image from the backing store. The collection itself is
// only updated by the next Refresh.
func (c *Collection) Delete(ctx context.Context, id string) error {
	if err := c.source.DeleteImage(ctx, id); err != nil {
		return fmt.Errorf("delete image %s: %w", id, err)
	}
	return nil
}

// Upload adds an image to the backing store.
func (c *Collection) Upload(ctx context.Context, filename string, r io.Reader) error {
	if err := c.source.UploadImage(ctx, filename, r); err != nil {
		return fmt.Errorf("upload %s: %w", filename, err)
	}
	return nil
}

// Filter returns, in their original order, the images whose name or
// description contains query case-insensitively. A blank query returns all
// images.
func Filter(images []Image, query string) []Image {
	if strings.TrimSpace(query) == "" {
		out := make([]Image, len(images))
		copy(out, images)
		return out
	}
	q := strings.ToLower(query)
	out := make([]Image, 0, len(images))
	for _, img := range images {
		if Matches(img, q) {
			out = append(out, img)
		}
	}
	return out
}

// Matches reports whether img's name or description contains the already
// lower-cased query.
func Matches(img Image, lowerQuery string) bool {
	return strings.Contains(strings.ToLower(img.Name), lowerQuery) ||
		strings.Contains(strings.ToLower(img.Description), lowerQuery)
}

// IndexOf returns the position of the image with the given id, or -1.
func IndexOf(images []Image, id string) int {
	for i, img := range images {
		if img.ID == id {
			return i
		}
	}
	return -1
}
