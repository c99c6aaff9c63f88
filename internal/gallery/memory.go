package gallery

import (
	"bytes"
	"context"
	"fmt"
	"io"
)

// MemorySource is an in-memory Source. Setting Err makes every call fail with
// a transport error wrapping it.
type MemorySource struct {
	Images []Image
	Blobs  map[string][]byte
	Err    error

	nextID int
}

// NewMemorySource creates a source seeded with images.
func NewMemorySource(images ...Image) *MemorySource {
	return &MemorySource{Images: images, Blobs: make(map[string][]byte)}
}

func (m *MemorySource) fail(op string) error {
	if m.Err == nil {
		return nil
	}
	return fmt.Errorf("%w: %s: %w", ErrTransport, op, m.Err)
}

func (m *MemorySource) ListImages(ctx context.Context) ([]Image, error) {
	if err := m.fail("list"); err != nil {
		return nil, err
	}
	out := make([]Image, len(m.Images))
	copy(out, m.Images)
	return out, nil
}

func (m *MemorySource) ImageBytes(ctx context.Context, id string) (io.ReadCloser, error) {
	if err := m.fail("fetch"); err != nil {
		return nil, err
	}
	data, ok := m.Blobs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *MemorySource) ImageSize(ctx context.Context, id string) (int64, bool, error) {
	if err := m.fail("head"); err != nil {
		return 0, false, err
	}
	data, ok := m.Blobs[id]
	if !ok {
		return 0, false, nil
	}
	return int64(len(data)), true, nil
}

func (m *MemorySource) DeleteImage(ctx context.Context, id string) error {
	if err := m.fail("delete"); err != nil {
		return err
	}
	i := IndexOf(m.Images, id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	m.Images = append(m.Images[:i], m.Images[i+1:]...)
	delete(m.Blobs, id)
	return nil
}

func (m *MemorySource) UploadImage(ctx context.Context, filename string, r io.Reader) error {
	if err := m.fail("upload"); err != nil {
		return err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.nextID++
	id := fmt.Sprintf("upload-%d", m.nextID)
	m.Images = append(m.Images, Image{ID: id, Name: filename})
	if m.Blobs == nil {
		m.Blobs = make(map[string][]byte)
	}
	m.Blobs[id] = data
	return nil
}
