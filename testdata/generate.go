// This program generates a demo gallery directory for manual testing and the
// integration tests. Each image gets a description in descriptions.yaml that
// lands it in a known album.
//
//go:build ignore

package main

import (
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"log"
	"math"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

func main() {
	dir := filepath.Join("testdata", "gallery")
	if err := os.MkdirAll(dir, 0755); err != nil {
		log.Fatal(err)
	}

	descriptions := map[string]string{}
	add := func(name, desc string, img image.Image) {
		path := filepath.Join(dir, name)
		if filepath.Ext(name) == ".png" {
			savePNG(path, img)
		} else {
			saveJPEG(path, img)
		}
		descriptions[name] = desc
	}

	// Person
	add("portrait.jpg", "Portrait of a woman smiling", solid(color.RGBA{210, 170, 140, 255}))
	// Nature
	add("landscape.jpg", "Green valley under a blue sky", skyGround())
	// Water
	add("lake.png", "A calm lake at dawn", waves())
	// Animals
	add("dog.jpg", "My dog playing in the snow", solid(color.RGBA{140, 100, 60, 255}))
	// Car
	add("roadster.png", "Red roadster convertible", solid(color.RGBA{220, 30, 30, 255}))
	// Music
	add("guitar.jpg", "Acoustic guitar on a stand", solid(color.RGBA{180, 120, 40, 255}))
	// Nature wins over Animals: rules are ordered
	add("forest_deer.jpg", "A deer in the forest", solid(color.RGBA{40, 110, 50, 255}))
	// Other
	add("document.png", "Scanned tax form", document())

	data, err := yaml.Marshal(descriptions)
	if err != nil {
		log.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "descriptions.yaml"), data, 0644); err != nil {
		log.Fatal(err)
	}

	// A non-image file that the gallery ignores
	os.WriteFile(filepath.Join(dir, "readme.txt"), []byte("not an image"), 0644)
}

func solid(c color.RGBA) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 160, 120))
	for y := 0; y < 120; y++ {
		for x := 0; x < 160; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func skyGround() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 224, 224))
	for y := 0; y < 224; y++ {
		for x := 0; x < 224; x++ {
			if y < 112 {
				b := uint8(180 + y/3)
				img.Set(x, y, color.RGBA{100, 150, b, 255})
			} else {
				g := uint8(100 + (224-y)/3)
				img.Set(x, y, color.RGBA{50, g, 30, 255})
			}
		}
	}
	return img
}

func waves() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 200, 150))
	for y := 0; y < 150; y++ {
		for x := 0; x < 200; x++ {
			b := uint8(150 + int(60*math.Sin(float64(x)/12+float64(y)/20)))
			img.Set(x, y, color.RGBA{30, 90, b, 255})
		}
	}
	return img
}

func document() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 170, 220))
	for y := 0; y < 220; y++ {
		for x := 0; x < 170; x++ {
			img.Set(x, y, color.RGBA{245, 245, 245, 255})
		}
	}
	// Dark horizontal lines simulating text
	for line := 0; line < 12; line++ {
		y := 20 + line*16
		for x := 20; x < 150; x++ {
			for dy := 0; dy < 3; dy++ {
				img.Set(x, y+dy, color.RGBA{40, 40, 40, 255})
			}
		}
	}
	return img
}

func saveJPEG(path string, img image.Image) {
	f, err := os.Create(path)
	if err != nil {
		log.Fatal(err)
	}
	defer f.Close()
	jpeg.Encode(f, img, &jpeg.Options{Quality: 90})
}

func savePNG(path string, img image.Image) {
	f, err := os.Create(path)
	if err != nil {
		log.Fatal(err)
	}
	defer f.Close()
	png.Encode(f, img)
}
