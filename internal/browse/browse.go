// Package browse ties the collection, albums, favourites and fullscreen
// viewer into one presentation state. Every mutating method returns the new
// ViewState; callers re-read it instead of subscribing to changes.
package browse

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/bagtoad/imggallery/internal/categories"
	"github.com/bagtoad/imggallery/internal/categorizer"
	"github.com/bagtoad/imggallery/internal/gallery"
	"github.com/bagtoad/imggallery/internal/session"
	"github.com/bagtoad/imggallery/internal/viewer"
)

// ErrUnknownAlbum is returned when selecting a name that is not a category.
var ErrUnknownAlbum = errors.New("unknown album")

// Mode is the page being browsed.
type Mode int

const (
	ModeHome Mode = iota
	ModeAlbums
	ModeFavourites
)

func (m Mode) String() string {
	switch m {
	case ModeHome:
		return "home"
	case ModeAlbums:
		return "albums"
	case ModeFavourites:
		return "favourites"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// ViewState is a snapshot of everything the presentation layer renders.
type ViewState struct {
	Mode          Mode
	SelectedAlbum string
	Query         string
	Images        []gallery.Image
	Viewer        viewer.Snapshot
	Liked         bool
	User          gallery.User
	// Loading is set until the session has resolved its user.
	Loading bool
}

// Browser owns one session's presentation state.
type Browser struct {
	collection *gallery.Collection
	rules      *categories.RuleSet
	session    *session.State
	logger     *zap.Logger

	mode   Mode
	album  string
	query  string
	viewer viewer.Viewer
}

// New creates a browser on the home page.
func New(collection *gallery.Collection, rules *categories.RuleSet, sess *session.State, logger *zap.Logger) *Browser {
	if logger == nil {
		logger = zap.NewNop()
	}
	if rules == nil {
		rules = categories.Default()
	}
	return &Browser{collection: collection, rules: rules, session: sess, logger: logger}
}

// Refresh reloads the collection. On failure the previous images stay in
// place and the error is returned.
func (b *Browser) Refresh(ctx context.Context) (ViewState, error) {
	err := b.collection.Refresh(ctx)
	return b.sync(), err
}

// ShowHome switches to the full collection and clears the search.
func (b *Browser) ShowHome() ViewState {
	return b.switchMode(ModeHome)
}

// ShowAlbums switches to the album page with no album selected.
func (b *Browser) ShowAlbums() ViewState {
	return b.switchMode(ModeAlbums)
}

// ShowFavourites switches to the current user's liked images.
func (b *Browser) ShowFavourites() ViewState {
	return b.switchMode(ModeFavourites)
}

func (b *Browser) switchMode(m Mode) ViewState {
	b.mode = m
	b.album = ""
	b.query = ""
	return b.sync()
}

// SelectAlbum shows the images of the named album. Selecting a known
// category that currently has no images is allowed. Coming from another page
// clears the search; switching between albums keeps it.
func (b *Browser) SelectAlbum(name string) (ViewState, error) {
	if !b.rules.Has(name) {
		return b.State(), fmt.Errorf("select %q: %w", name, ErrUnknownAlbum)
	}
	if b.mode != ModeAlbums {
		b.query = ""
	}
	b.mode = ModeAlbums
	b.album = name
	return b.sync(), nil
}

// ClearAlbum returns to the album list.
func (b *Browser) ClearAlbum() ViewState {
	b.album = ""
	return b.sync()
}

// Search sets the query for the current page.
func (b *Browser) Search(query string) ViewState {
	b.query = query
	return b.sync()
}

// Albums returns the non-empty albums of the current collection.
func (b *Browser) Albums() []categorizer.Album {
	return categorizer.Albums(b.rules, b.collection.List(), b.logger)
}

// Active returns the sequence currently displayed.
func (b *Browser) Active() []gallery.Image {
	var base []gallery.Image
	switch b.mode {
	case ModeAlbums:
		if b.album == "" {
			return []gallery.Image{}
		}
		album, _ := categorizer.Find(b.Albums(), b.album)
		base = album.Images
	case ModeFavourites:
		for _, img := range b.collection.List() {
			if b.session.IsFavourite(img.ID) {
				base = append(base, img)
			}
		}
	default:
		base = b.collection.List()
	}
	return gallery.Filter(base, b.query)
}

// Open shows the i-th image of the active sequence.
func (b *Browser) Open(i int) (ViewState, error) {
	_, err := b.viewer.OpenAt(b.Active(), i)
	return b.State(), err
}

// OpenImage shows the image with the given id if it is in the active sequence.
func (b *Browser) OpenImage(id string) (ViewState, error) {
	seq := b.Active()
	i := gallery.IndexOf(seq, id)
	if i < 0 {
		return b.State(), fmt.Errorf("open %s: %w", id, gallery.ErrNotFound)
	}
	_, err := b.viewer.OpenAt(seq, i)
	return b.State(), err
}

// Next moves the viewer forward.
func (b *Browser) Next() ViewState {
	b.viewer.Next()
	return b.State()
}

// Prev moves the viewer back.
func (b *Browser) Prev() ViewState {
	b.viewer.Prev()
	return b.State()
}

// Close closes the viewer.
func (b *Browser) Close() ViewState {
	b.viewer.Close()
	return b.State()
}

// ToggleInfo flips the info overlay of the open image.
func (b *Browser) ToggleInfo() ViewState {
	b.viewer.ToggleInfo()
	return b.State()
}

// Resume reopens the last viewed image if it is still displayed.
func (b *Browser) Resume() ViewState {
	b.viewer.Resume(b.Active())
	return b.State()
}

// ToggleLike flips the open image's favourite state.
func (b *Browser) ToggleLike(ctx context.Context) (ViewState, error) {
	img, ok := b.viewer.Current()
	if !ok {
		return b.State(), fmt.Errorf("toggle like: %w", viewer.ErrClosed)
	}
	return b.ToggleLikeID(ctx, img.ID), nil
}

// ToggleLikeID flips imageID's favourite state. On the favourites page an
// unliked image drops out of the active sequence.
func (b *Browser) ToggleLikeID(ctx context.Context, imageID string) ViewState {
	b.session.ToggleLike(ctx, imageID)
	return b.sync()
}

// IsFavourite reports whether the current user likes imageID.
func (b *Browser) IsFavourite(imageID string) bool {
	return b.session.IsFavourite(imageID)
}

// DeleteCurrent removes the open image from the source, closes the viewer
// and refreshes. The viewer is closed even when the delete fails. The error
// only reports the delete; a failed refresh afterwards keeps the stale list.
func (b *Browser) DeleteCurrent(ctx context.Context) (ViewState, error) {
	img, ok := b.viewer.Current()
	if !ok {
		return b.State(), fmt.Errorf("delete: %w", viewer.ErrClosed)
	}
	b.viewer.Close()
	if err := b.collection.Delete(ctx, img.ID); err != nil {
		b.logger.Warn("delete failed", zap.String("id", img.ID), zap.Error(err))
		return b.State(), err
	}
	b.logger.Info("image deleted", zap.String("id", img.ID), zap.String("name", img.Name))
	return b.refreshAfterChange(ctx), nil
}

// Upload adds an image to the source and refreshes on success.
func (b *Browser) Upload(ctx context.Context, filename string, r io.Reader) (ViewState, error) {
	if err := b.collection.Upload(ctx, filename, r); err != nil {
		b.logger.Warn("upload failed", zap.String("file", filename), zap.Error(err))
		return b.State(), err
	}
	b.logger.Info("image uploaded", zap.String("file", filename))
	return b.refreshAfterChange(ctx), nil
}

// refreshAfterChange reloads the collection after a successful delete or
// upload. A failed reload leaves the previous list in place; the change
// itself already happened, so the failure is only logged.
func (b *Browser) refreshAfterChange(ctx context.Context) ViewState {
	if err := b.collection.Refresh(ctx); err != nil {
		b.logger.Warn("gallery changed but reload failed, list is stale", zap.Error(err))
	}
	return b.sync()
}

// Login re-resolves the user after an auth change.
func (b *Browser) Login(ctx context.Context) (ViewState, error) {
	err := b.session.Reload(ctx)
	return b.sync(), err
}

// Logout ends the session and drops the user's favourites from view.
func (b *Browser) Logout(ctx context.Context) (ViewState, error) {
	err := b.session.Teardown(ctx)
	return b.sync(), err
}

// State returns the current view.
func (b *Browser) State() ViewState {
	snap := b.viewer.Snapshot()
	return ViewState{
		Mode:          b.mode,
		SelectedAlbum: b.album,
		Query:         b.query,
		Images:        b.Active(),
		Viewer:        snap,
		Liked:         snap.Open && b.session.IsFavourite(snap.ImageID),
		User:          b.session.User(),
		Loading:       b.session.Loading(),
	}
}

// sync re-resolves the viewer against the active sequence after any change
// to it.
func (b *Browser) sync() ViewState {
	b.viewer.Sync(b.Active())
	return b.State()
}
