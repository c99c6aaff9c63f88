// Package localdir serves a flat directory of image files as a gallery source.
// Image ids hash the file name and content; descriptions come from a YAML
// sidecar file.
package localdir

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/bagtoad/imggallery/internal/gallery"
)

// DescriptionsFile is the sidecar mapping file names to descriptions.
const DescriptionsFile = "descriptions.yaml"

// SupportedExtensions contains the set of image file extensions we serve.
var SupportedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".bmp":  true,
	".webp": true,
	".tiff": true,
	".tif":  true,
}

// IsImage reports whether name has a supported image extension.
func IsImage(name string) bool {
	return SupportedExtensions[strings.ToLower(filepath.Ext(name))]
}

type entry struct {
	id      string
	path    string
	size    int64
	modTime int64
}

// Dir is a gallery.Source over one directory. Subdirectories and hidden
// files are ignored.
type Dir struct {
	root   string
	logger *zap.Logger

	mu     sync.Mutex
	hashes map[string]entry // by file name
}

// Open checks that root is a directory and returns a source for it.
func Open(root string, logger *zap.Logger) (*Dir, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("cannot access directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", root)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dir{root: root, logger: logger, hashes: make(map[string]entry)}, nil
}

// Root returns the directory being served.
func (d *Dir) Root() string {
	return d.root
}

// ListImages returns the directory's images sorted by file name.
func (d *Dir) ListImages(ctx context.Context) ([]gallery.Image, error) {
	entries, err := d.scan(ctx)
	if err != nil {
		return nil, err
	}
	descs, err := d.loadDescriptions()
	if err != nil {
		return nil, err
	}

	images := make([]gallery.Image, 0, len(entries))
	for _, e := range entries {
		name := filepath.Base(e.path)
		images = append(images, gallery.Image{ID: e.id, Name: name, Description: descs[name]})
	}
	return images, nil
}

// scan hashes every image file, reusing hashes for files whose size and
// modification time are unchanged.
func (d *Dir) scan(ctx context.Context) ([]entry, error) {
	dirEntries, err := os.ReadDir(d.root)
	if err != nil {
		return nil, fmt.Errorf("%w: cannot read directory: %w", gallery.ErrTransport, err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	var out []entry
	live := make(map[string]bool)
	for _, de := range dirEntries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		name := de.Name()
		if de.IsDir() || strings.HasPrefix(name, ".") || !IsImage(name) {
			continue
		}
		info, err := de.Info()
		if err != nil {
			continue
		}
		live[name] = true
		cached, ok := d.hashes[name]
		if ok && cached.size == info.Size() && cached.modTime == info.ModTime().UnixNano() {
			out = append(out, cached)
			continue
		}
		path := filepath.Join(d.root, name)
		id, err := hashFile(name, path)
		if err != nil {
			d.logger.Warn("cannot hash image, skipping", zap.String("file", name), zap.Error(err))
			continue
		}
		e := entry{id: id, path: path, size: info.Size(), modTime: info.ModTime().UnixNano()}
		d.hashes[name] = e
		out = append(out, e)
	}
	for name := range d.hashes {
		if !live[name] {
			delete(d.hashes, name)
		}
	}
	return out, nil
}

// hashFile derives an image id from the file name and its content, so copies
// of the same picture under different names stay distinct images.
func hashFile(name, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	h := sha256.New()
	h.Write([]byte(name))
	h.Write([]byte{0})
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)[:8]), nil
}

func (d *Dir) lookup(ctx context.Context, id string) (entry, error) {
	entries, err := d.scan(ctx)
	if err != nil {
		return entry{}, err
	}
	for _, e := range entries {
		if e.id == id {
			return e, nil
		}
	}
	return entry{}, fmt.Errorf("%w: %s", gallery.ErrNotFound, id)
}

// ImageBytes opens the image file. The caller closes it.
func (d *Dir) ImageBytes(ctx context.Context, id string) (io.ReadCloser, error) {
	e, err := d.lookup(ctx, id)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(e.path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", gallery.ErrTransport, filepath.Base(e.path), err)
	}
	return f, nil
}

// ImageSize returns the file size.
func (d *Dir) ImageSize(ctx context.Context, id string) (int64, bool, error) {
	e, err := d.lookup(ctx, id)
	if errors.Is(err, gallery.ErrNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return e.size, true, nil
}

// DeleteImage removes the file and its description.
func (d *Dir) DeleteImage(ctx context.Context, id string) error {
	e, err := d.lookup(ctx, id)
	if err != nil {
		return err
	}
	if err := os.Remove(e.path); err != nil {
		return fmt.Errorf("%w: remove %s: %w", gallery.ErrTransport, filepath.Base(e.path), err)
	}

	descs, err := d.loadDescriptions()
	if err != nil {
		return err
	}
	name := filepath.Base(e.path)
	if _, ok := descs[name]; ok {
		delete(descs, name)
		return d.saveDescriptions(descs)
	}
	return nil
}

// UploadImage copies r into the directory under filename's base name. An
// existing file of that name is kept and the upload gets a numeric suffix.
func (d *Dir) UploadImage(ctx context.Context, filename string, r io.Reader) error {
	base := filepath.Base(filename)
	if strings.HasPrefix(base, ".") || !IsImage(base) {
		return fmt.Errorf("%w: %s is not a supported image file", gallery.ErrTransport, base)
	}

	tmp := filepath.Join(d.root, ".upload-"+uuid.NewString())
	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return fmt.Errorf("%w: create upload: %w", gallery.ErrTransport, err)
	}
	_, err = io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(tmp)
		return fmt.Errorf("%w: write upload: %w", gallery.ErrTransport, err)
	}

	dest := UniquePath(filepath.Join(d.root, base))
	if err := os.Rename(tmp, dest); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("%w: store upload: %w", gallery.ErrTransport, err)
	}
	d.logger.Debug("stored upload", zap.String("file", filepath.Base(dest)))
	return nil
}

func (d *Dir) descriptionsPath() string {
	return filepath.Join(d.root, DescriptionsFile)
}

func (d *Dir) loadDescriptions() (map[string]string, error) {
	descs := make(map[string]string)
	data, err := os.ReadFile(d.descriptionsPath())
	if errors.Is(err, os.ErrNotExist) {
		return descs, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read descriptions: %w", gallery.ErrTransport, err)
	}
	if err := yaml.Unmarshal(data, &descs); err != nil {
		d.logger.Warn("invalid descriptions file, ignoring", zap.String("path", d.descriptionsPath()), zap.Error(err))
		return make(map[string]string), nil
	}
	return descs, nil
}

func (d *Dir) saveDescriptions(descs map[string]string) error {
	data, err := yaml.Marshal(descs)
	if err != nil {
		return fmt.Errorf("encode descriptions: %w", err)
	}
	if err := os.WriteFile(d.descriptionsPath(), data, 0644); err != nil {
		return fmt.Errorf("%w: write descriptions: %w", gallery.ErrTransport, err)
	}
	return nil
}

// UniquePath returns path, or path with a numeric suffix before the
// extension if a file already exists there.
func UniquePath(path string) string {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return path
	}

	ext := filepath.Ext(path)
	base := strings.TrimSuffix(path, ext)

	for i := 1; ; i++ {
		candidate := fmt.Sprintf("%s_%d%s", base, i, ext)
		if _, err := os.Stat(candidate); os.IsNotExist(err) {
			return candidate
		}
	}
}
