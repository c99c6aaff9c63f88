// Package viewer implements the fullscreen image viewer: an open/closed state
// machine tracking one image by identity within the active sequence, plus an
// info overlay flag.
package viewer

import (
	"errors"
	"fmt"

	"github.com/bagtoad/imggallery/internal/gallery"
)

var (
	// ErrOutOfRange is returned when opening at an index outside the sequence.
	ErrOutOfRange = errors.New("index out of range")
	// ErrClosed is returned by operations that need an open viewer.
	ErrClosed = errors.New("viewer is closed")
)

// Snapshot is a read-only copy of the viewer state.
type Snapshot struct {
	Open        bool
	ImageID     string
	Index       int
	InfoVisible bool
	Image       gallery.Image
	HasPrev     bool
	HasNext     bool
}

// Viewer is the fullscreen state machine. The zero value is Closed.
type Viewer struct {
	seq         []gallery.Image
	open        bool
	index       int
	imageID     string
	infoVisible bool

	// lastID survives Close so Resume can reopen the same image.
	lastID string
}

// OpenAt opens the image at index i of seq and hides the info overlay.
func (v *Viewer) OpenAt(seq []gallery.Image, i int) (Snapshot, error) {
	if i < 0 || i >= len(seq) {
		return v.Snapshot(), fmt.Errorf("open at %d of %d: %w", i, len(seq), ErrOutOfRange)
	}
	v.seq = seq
	v.open = true
	v.infoVisible = false
	v.moveTo(i)
	return v.Snapshot(), nil
}

// Next advances one image. It is a no-op at the last image or when closed.
func (v *Viewer) Next() Snapshot {
	if v.open && v.index < len(v.seq)-1 {
		v.moveTo(v.index + 1)
	}
	return v.Snapshot()
}

// Prev steps back one image. It is a no-op at the first image or when closed.
func (v *Viewer) Prev() Snapshot {
	if v.open && v.index > 0 {
		v.moveTo(v.index - 1)
	}
	return v.Snapshot()
}

// Close closes the viewer and clears the info overlay.
func (v *Viewer) Close() Snapshot {
	v.open = false
	v.infoVisible = false
	v.index = 0
	v.imageID = ""
	v.seq = nil
	return v.Snapshot()
}

// ToggleInfo flips the info overlay while open.
func (v *Viewer) ToggleInfo() Snapshot {
	if v.open {
		v.infoVisible = !v.infoVisible
	}
	return v.Snapshot()
}

// Sync swaps in a new active sequence. An open viewer follows its tracked
// image to its new position, or closes if the image is no longer present.
func (v *Viewer) Sync(seq []gallery.Image) Snapshot {
	if !v.open {
		return v.Snapshot()
	}
	i := gallery.IndexOf(seq, v.imageID)
	if i < 0 {
		return v.Close()
	}
	v.seq = seq
	v.index = i
	return v.Snapshot()
}

// Resume reopens the most recently viewed image within seq. The viewer stays
// closed if nothing was viewed or that image is not in seq.
func (v *Viewer) Resume(seq []gallery.Image) Snapshot {
	if v.open {
		return v.Sync(seq)
	}
	i := gallery.IndexOf(seq, v.lastID)
	if v.lastID == "" || i < 0 {
		return v.Snapshot()
	}
	snap, _ := v.OpenAt(seq, i)
	return snap
}

// Current returns the open image.
func (v *Viewer) Current() (gallery.Image, bool) {
	if !v.open {
		return gallery.Image{}, false
	}
	return v.seq[v.index], true
}

// IsOpen reports whether an image is shown.
func (v *Viewer) IsOpen() bool {
	return v.open
}

// Snapshot returns the current state.
func (v *Viewer) Snapshot() Snapshot {
	if !v.open {
		return Snapshot{}
	}
	return Snapshot{
		Open:        true,
		ImageID:     v.imageID,
		Index:       v.index,
		InfoVisible: v.infoVisible,
		Image:       v.seq[v.index],
		HasPrev:     v.index > 0,
		HasNext:     v.index < len(v.seq)-1,
	}
}

func (v *Viewer) moveTo(i int) {
	v.index = i
	v.imageID = v.seq[i].ID
	v.lastID = v.imageID
}
