// Package session owns the per-session identity and favourites, with an
// explicit lifecycle: Init on start, Reload on an auth change, Teardown on
// logout.
package session

import (
	"context"

	"go.uber.org/zap"

	"github.com/bagtoad/imggallery/internal/favourites"
	"github.com/bagtoad/imggallery/internal/gallery"
)

// State is the session shared by the gallery components.
type State struct {
	users      gallery.UserProvider
	favourites *favourites.Store
	logger     *zap.Logger

	user    gallery.User
	loading bool
}

// New creates an anonymous session that reports Loading until the first Init
// completes.
func New(users gallery.UserProvider, favs *favourites.Store, logger *zap.Logger) *State {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &State{users: users, favourites: favs, logger: logger, user: gallery.Anonymous, loading: true}
}

// Init resolves the current user and loads their favourites. A failed user
// lookup leaves the session anonymous and is returned for display only.
func (s *State) Init(ctx context.Context) error {
	defer func() { s.loading = false }()

	user, err := s.users.CurrentUser(ctx)
	if err != nil || !user.IsAuthenticated {
		user = gallery.Anonymous
	}
	if err != nil {
		s.logger.Warn("user validation failed, continuing anonymously", zap.Error(err))
	}
	s.switchUser(ctx, user)
	return err
}

// Reload re-resolves the user after a login or other auth change.
func (s *State) Reload(ctx context.Context) error {
	return s.Init(ctx)
}

// Teardown logs out (best-effort) and swaps to an empty anonymous set.
func (s *State) Teardown(ctx context.Context) error {
	err := s.users.Logout(ctx)
	if err != nil {
		s.logger.Warn("logout failed", zap.Error(err))
	}
	s.switchUser(ctx, gallery.Anonymous)
	return err
}

func (s *State) switchUser(ctx context.Context, user gallery.User) {
	s.user = user
	set := s.favourites.Load(ctx, s.userID())
	s.logger.Info("session user changed",
		zap.String("user", user.ID),
		zap.Bool("authenticated", user.IsAuthenticated),
		zap.Int("favourites", set.Len()))
}

func (s *State) userID() string {
	if !s.user.IsAuthenticated {
		return ""
	}
	return s.user.ID
}

// User returns the current identity.
func (s *State) User() gallery.User {
	return s.user
}

// Loading reports whether the user has not been resolved yet, so favourites
// are not known.
func (s *State) Loading() bool {
	return s.loading
}

// ToggleLike flips imageID in the current user's favourites and returns the
// new membership.
func (s *State) ToggleLike(ctx context.Context, imageID string) bool {
	return s.favourites.Toggle(ctx, s.userID(), imageID)
}

// IsFavourite reports whether the current user likes imageID.
func (s *State) IsFavourite(imageID string) bool {
	return s.favourites.IsFavourite(s.userID(), imageID)
}

// FavouriteIDs returns the current user's liked ids.
func (s *State) FavouriteIDs() []string {
	return s.favourites.IDs(s.userID())
}
