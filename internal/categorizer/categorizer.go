// Package categorizer groups images into albums by running the category
// rules over their descriptions.
package categorizer

import (
	"go.uber.org/zap"

	"github.com/bagtoad/imggallery/internal/categories"
	"github.com/bagtoad/imggallery/internal/gallery"
)

// Result holds the category assigned to a single image.
type Result struct {
	Image    gallery.Image
	Category string
}

// Album is a derived grouping of images under a category name.
type Album struct {
	Name   string
	Images []gallery.Image
}

// Categorize assigns every image to exactly one category, preserving input
// order.
func Categorize(rules *categories.RuleSet, images []gallery.Image, logger *zap.Logger) []Result {
	if logger == nil {
		logger = zap.NewNop()
	}
	results := make([]Result, 0, len(images))
	for _, img := range images {
		cat := rules.Categorize(img.Description)
		logger.Debug("categorized image",
			zap.String("id", img.ID),
			zap.String("name", img.Name),
			zap.String("category", cat))
		results = append(results, Result{Image: img, Category: cat})
	}
	return results
}

// GroupByCategory groups categorization results by category name. Images keep
// their relative source order within a bucket.
func GroupByCategory(results []Result) map[string][]gallery.Image {
	groups := make(map[string][]gallery.Image)
	for _, r := range results {
		groups[r.Category] = append(groups[r.Category], r.Image)
	}
	return groups
}

// Albums returns the non-empty albums for images in rule declaration order,
// with Other last. The result is recomputed on every call.
func Albums(rules *categories.RuleSet, images []gallery.Image, logger *zap.Logger) []Album {
	groups := GroupByCategory(Categorize(rules, images, logger))
	albums := make([]Album, 0, len(groups))
	for _, name := range rules.Names() {
		if imgs, ok := groups[name]; ok {
			albums = append(albums, Album{Name: name, Images: imgs})
		}
	}
	return albums
}

// Find returns the album with the given name.
func Find(albums []Album, name string) (Album, bool) {
	for _, a := range albums {
		if a.Name == name {
			return a, true
		}
	}
	return Album{}, false
}
