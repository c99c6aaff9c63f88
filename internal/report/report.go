// Package report renders gallery listings and export summaries as text.
package report

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/bagtoad/imggallery/internal/categorizer"
	"github.com/bagtoad/imggallery/internal/exporter"
	"github.com/bagtoad/imggallery/internal/gallery"
)

// PrintImages writes one line per image. Liked images are marked with a
// heart when liked is non-nil.
func PrintImages(w io.Writer, images []gallery.Image, liked func(id string) bool) {
	if len(images) == 0 {
		fmt.Fprintln(w, "No images found.")
		return
	}
	for i, img := range images {
		mark := " "
		if liked != nil && liked(img.ID) {
			mark = "♥"
		}
		desc := img.Description
		if desc == "" {
			desc = "-"
		}
		fmt.Fprintf(w, "%3d %s %-16s %-24s %s\n", i, mark, img.ID, img.Name, desc)
	}
}

// PrintAlbums writes each album with its image count.
func PrintAlbums(w io.Writer, albums []categorizer.Album) {
	if len(albums) == 0 {
		fmt.Fprintln(w, "No albums found.")
		return
	}
	for _, a := range albums {
		fmt.Fprintf(w, "  %-10s (%d images)\n", a.Name, len(a.Images))
	}
}

// PrintExport writes a summary of an export run.
func PrintExport(w io.Writer, total int, results []exporter.Result, dryRun bool) {
	fmt.Fprintln(w)
	if dryRun {
		fmt.Fprintln(w, "=== Dry Run Summary ===")
	} else {
		fmt.Fprintln(w, "=== Summary ===")
	}
	fmt.Fprintf(w, "Images found:        %d\n", total)
	fmt.Fprintf(w, "Images exported:     %d\n", len(results))

	if len(results) == 0 {
		fmt.Fprintln(w, "\nNo images to export.")
		return
	}

	// Results arrive grouped by album, in album order.
	var order []string
	groups := make(map[string][]exporter.Result)
	var written int64
	for _, r := range results {
		if _, ok := groups[r.Album]; !ok {
			order = append(order, r.Album)
		}
		groups[r.Album] = append(groups[r.Album], r)
		written += r.Bytes
	}

	fmt.Fprintf(w, "Albums:              %d\n", len(order))
	if !dryRun {
		fmt.Fprintf(w, "Bytes written:       %d\n", written)
	}
	fmt.Fprintln(w)

	verb := "Exported"
	if dryRun {
		verb = "Would export"
	}

	for _, album := range order {
		items := groups[album]
		fmt.Fprintf(w, "  %s/ (%d files)\n", album, len(items))
		for _, r := range items {
			fmt.Fprintf(w, "    %s %s → %s\n", verb, r.Image.Name, filepath.Base(r.DestPath))
		}
	}
	fmt.Fprintln(w)
}
