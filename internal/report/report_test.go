package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/bagtoad/imggallery/internal/categorizer"
	"github.com/bagtoad/imggallery/internal/exporter"
	"github.com/bagtoad/imggallery/internal/gallery"
)

func TestPrintExport(t *testing.T) {
	results := []exporter.Result{
		{Image: gallery.Image{ID: "1", Name: "dog.jpg"}, DestPath: "/out/Animals/dog.jpg", Album: "Animals", Bytes: 10},
		{Image: gallery.Image{ID: "3", Name: "cat.png"}, DestPath: "/out/Animals/cat.png", Album: "Animals", Bytes: 5},
		{Image: gallery.Image{ID: "2", Name: "car.jpg"}, DestPath: "/out/Car/car_1.jpg", Album: "Car", Bytes: 7},
	}

	var buf bytes.Buffer
	PrintExport(&buf, 4, results, false)

	output := buf.String()

	checks := []string{
		"=== Summary ===",
		"Images found:        4",
		"Images exported:     3",
		"Albums:              2",
		"Bytes written:       22",
		"Animals/ (2 files)",
		"Car/ (1 files)",
		"Exported car.jpg → car_1.jpg",
	}
	for _, check := range checks {
		if !strings.Contains(output, check) {
			t.Errorf("report missing %q\nFull output:\n%s", check, output)
		}
	}
	if strings.Index(output, "Animals/") > strings.Index(output, "Car/") {
		t.Errorf("albums must keep export order:\n%s", output)
	}
}

func TestPrintExportDryRun(t *testing.T) {
	results := []exporter.Result{
		{Image: gallery.Image{ID: "1", Name: "dog.jpg"}, DestPath: "/out/Animals/dog.jpg", Album: "Animals"},
	}

	var buf bytes.Buffer
	PrintExport(&buf, 1, results, true)

	output := buf.String()

	if !strings.Contains(output, "Dry Run Summary") {
		t.Errorf("expected dry run header in output:\n%s", output)
	}
	if !strings.Contains(output, "Would export") {
		t.Errorf("expected 'Would export' in dry run output:\n%s", output)
	}
	if strings.Contains(output, "Bytes written") {
		t.Errorf("dry run must not report bytes:\n%s", output)
	}
}

func TestPrintExportEmpty(t *testing.T) {
	var buf bytes.Buffer
	PrintExport(&buf, 0, nil, false)

	if !strings.Contains(buf.String(), "No images to export") {
		t.Errorf("expected empty message in output:\n%s", buf.String())
	}
}

func TestPrintImages(t *testing.T) {
	images := []gallery.Image{
		{ID: "1", Name: "Dog", Description: "a dog in a park"},
		{ID: "2", Name: "Car"},
	}
	var buf bytes.Buffer
	PrintImages(&buf, images, func(id string) bool { return id == "2" })

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d:\n%s", len(lines), buf.String())
	}
	if strings.Contains(lines[0], "♥") || !strings.Contains(lines[0], "a dog in a park") {
		t.Errorf("line 0: %q", lines[0])
	}
	if !strings.Contains(lines[1], "♥") || !strings.HasSuffix(lines[1], "-") {
		t.Errorf("line 1: %q", lines[1])
	}

	buf.Reset()
	PrintImages(&buf, nil, nil)
	if !strings.Contains(buf.String(), "No images found") {
		t.Errorf("expected empty message, got %q", buf.String())
	}
}

func TestPrintAlbums(t *testing.T) {
	albums := []categorizer.Album{
		{Name: "Animals", Images: make([]gallery.Image, 2)},
		{Name: "Other", Images: make([]gallery.Image, 1)},
	}
	var buf bytes.Buffer
	PrintAlbums(&buf, albums)

	output := buf.String()
	if !strings.Contains(output, "Animals    (2 images)") || !strings.Contains(output, "Other      (1 images)") {
		t.Errorf("unexpected output:\n%s", output)
	}
}
