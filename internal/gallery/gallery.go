// Package gallery defines the image model, the collaborators the gallery
// core consumes, and the in-memory image collection built on top of them.
package gallery

import (
	"context"
	"errors"
	"io"
)

var (
	// ErrTransport marks a failed fetch, delete or upload against the backing store.
	ErrTransport = errors.New("transport failure")
	// ErrNotFound is returned when an image id is unknown to the backing store.
	ErrNotFound = errors.New("image not found")
	// ErrUnauthenticated is returned when the session identity could not be validated.
	ErrUnauthenticated = errors.New("user not authenticated")
)

// Image is a single user-uploaded picture. Raw bytes are referenced by ID and
// never held by the core.
type Image struct {
	ID          string `json:"_id"`
	Name        string `json:"name"`
	Description string `json:"desc"`
}

// Source is the backing image store.
type Source interface {
	// ListImages returns the current image set.
	ListImages(ctx context.Context) ([]Image, error)
	// ImageBytes opens the raw asset of an image. The caller closes it.
	ImageBytes(ctx context.Context, id string) (io.ReadCloser, error)
	// ImageSize reports the asset size in bytes; ok is false when unknown.
	ImageSize(ctx context.Context, id string) (size int64, ok bool, err error)
	// DeleteImage removes an image from the backing store.
	DeleteImage(ctx context.Context, id string) error
	// UploadImage adds a new image.
	UploadImage(ctx context.Context, filename string, r io.Reader) error
}

// User is the session identity used to key favourites.
type User struct {
	ID              string
	Name            string
	IsAuthenticated bool
}

// Anonymous is the identity of a session without a logged-in user.
var Anonymous = User{}

// UserProvider resolves the current session identity.
type UserProvider interface {
	CurrentUser(ctx context.Context) (User, error)
	Logout(ctx context.Context) error
}

// StaticUser is a UserProvider for sources without an auth backend, such as a
// local directory. An empty ID yields an anonymous session.
type StaticUser struct {
	ID string
}

func (s StaticUser) CurrentUser(ctx context.Context) (User, error) {
	if s.ID == "" {
		return Anonymous, nil
	}
	return User{ID: s.ID, Name: s.ID, IsAuthenticated: true}, nil
}

func (s StaticUser) Logout(ctx context.Context) error {
	return nil
}
