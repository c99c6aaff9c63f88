package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/bagtoad/imggallery/internal/browse"
	"github.com/bagtoad/imggallery/internal/categories"
	"github.com/bagtoad/imggallery/internal/config"
	"github.com/bagtoad/imggallery/internal/favourites"
	"github.com/bagtoad/imggallery/internal/gallery"
	"github.com/bagtoad/imggallery/internal/kvstore"
	"github.com/bagtoad/imggallery/internal/localdir"
	"github.com/bagtoad/imggallery/internal/remote"
	"github.com/bagtoad/imggallery/internal/session"
)

// app is one gallery session wired from configuration.
type app struct {
	logger     *zap.Logger
	source     gallery.Source
	rules      *categories.RuleSet
	kv         kvstore.Store
	collection *gallery.Collection
	session    *session.State
	browser    *browse.Browser
}

func newApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*app, error) {
	rules, err := categories.Resolve(cfg.Categories)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve categories: %w", err)
	}

	var (
		src   gallery.Source
		users gallery.UserProvider
	)
	switch cfg.Source {
	case config.SourceDir:
		dir, err := localdir.Open(cfg.ImagesDir, logger)
		if err != nil {
			return nil, err
		}
		src, users = dir, gallery.StaticUser{ID: cfg.User}
	default:
		client, err := remote.New(cfg.BackendURL, cfg.Timeout, logger)
		if err != nil {
			return nil, err
		}
		if cfg.Cookie != "" {
			name, value, _ := strings.Cut(cfg.Cookie, "=")
			client.SetCookie(&http.Cookie{Name: name, Value: value})
		}
		src, users = client, client
	}

	if cfg.Store != "memory" {
		if err := os.MkdirAll(filepath.Dir(cfg.StorePath), 0755); err != nil {
			return nil, fmt.Errorf("cannot create store directory: %w", err)
		}
	}
	kv, err := kvstore.Open(cfg.Store, cfg.StorePath)
	if err != nil {
		return nil, err
	}

	sess := session.New(users, favourites.New(kv, logger), logger)
	// A failed user lookup leaves the session anonymous; it is already logged.
	_ = sess.Init(ctx)

	collection := gallery.NewCollection(src, logger)
	a := &app{
		logger:     logger,
		source:     src,
		rules:      rules,
		kv:         kv,
		collection: collection,
		session:    sess,
		browser:    browse.New(collection, rules, sess, logger),
	}
	if _, err := a.browser.Refresh(ctx); err != nil {
		kv.Close()
		return nil, err
	}
	return a, nil
}

func (a *app) Close() error {
	return a.kv.Close()
}
