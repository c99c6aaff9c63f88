package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/bagtoad/imggallery/internal/config"
	"github.com/bagtoad/imggallery/internal/exporter"
	"github.com/bagtoad/imggallery/internal/imageinfo"
	"github.com/bagtoad/imggallery/internal/logging"
	"github.com/bagtoad/imggallery/internal/report"
)

// flags holds command-line overrides of the loaded configuration.
type flags struct {
	configPath string
	source     string
	backend    string
	dir        string
	store      string
	storePath  string
	user       string
	categories string
	logLevel   string
}

func (f *flags) apply(fs *pflag.FlagSet, cfg *config.Config) {
	set := map[string]*string{
		"source":     &cfg.Source,
		"backend":    &cfg.BackendURL,
		"dir":        &cfg.ImagesDir,
		"store":      &cfg.Store,
		"store-path": &cfg.StorePath,
		"user":       &cfg.User,
		"categories": &cfg.Categories,
		"log-level":  &cfg.LogLevel,
	}
	values := map[string]string{
		"source":     f.source,
		"backend":    f.backend,
		"dir":        f.dir,
		"store":      f.store,
		"store-path": f.storePath,
		"user":       f.user,
		"categories": f.categories,
		"log-level":  f.logLevel,
	}
	for name, field := range set {
		if fs.Changed(name) {
			*field = values[name]
		}
	}
	// A directory without an explicit source implies the directory source.
	if fs.Changed("dir") && !fs.Changed("source") {
		cfg.Source = config.SourceDir
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var f flags

	rootCmd := &cobra.Command{
		Use:   "imggallery",
		Short: "Browse, search and sort a photo gallery into keyword albums",
		Long: `imggallery is a terminal client for a photo gallery. It lists images
from a gallery backend or a local directory, searches them, groups them
into albums by keywords in their descriptions and keeps per-user
favourites.

Album rules come from --categories, ~/.imggallery/categories.yaml, or
the built-in set, in that order.`,
		SilenceUsage: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&f.configPath, "config", "", "Config file (default ~/.imggallery/config.yaml)")
	pf.StringVar(&f.source, "source", "", "Image source: remote or dir")
	pf.StringVar(&f.backend, "backend", "", "Gallery backend URL")
	pf.StringVar(&f.dir, "dir", "", "Local image directory (implies --source dir)")
	pf.StringVar(&f.store, "store", "", "Favourites store: memory, badger or sqlite")
	pf.StringVar(&f.storePath, "store-path", "", "Favourites store location")
	pf.StringVar(&f.user, "user", "", "User id for the directory source")
	pf.StringVar(&f.categories, "categories", "", "YAML file with album rules")
	pf.StringVar(&f.logLevel, "log-level", "", "Log level: debug, info, warn or error")

	// withApp loads configuration and runs fn against a ready session.
	withApp := func(cmd *cobra.Command, fn func(ctx context.Context, a *app) error) error {
		cfg, err := config.Read(f.configPath)
		if err != nil {
			return err
		}
		f.apply(cmd.Flags(), cfg)
		if err := cfg.Validate(); err != nil {
			return err
		}
		logger, err := logging.New(cfg.LogLevel)
		if err != nil {
			return err
		}
		defer logger.Sync()

		ctx := cmd.Context()
		a, err := newApp(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()
		return fn(ctx, a)
	}

	rootCmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List all images",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return withApp(cmd, func(ctx context.Context, a *app) error {
					report.PrintImages(cmd.OutOrStdout(), a.browser.State().Images, a.browser.IsFavourite)
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "search <query>",
			Short: "List images whose name or description contains the query",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withApp(cmd, func(ctx context.Context, a *app) error {
					state := a.browser.Search(strings.Join(args, " "))
					report.PrintImages(cmd.OutOrStdout(), state.Images, a.browser.IsFavourite)
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "albums [name]",
			Short: "List albums, or the images of one album",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withApp(cmd, func(ctx context.Context, a *app) error {
					out := cmd.OutOrStdout()
					if len(args) == 0 {
						report.PrintAlbums(out, a.browser.Albums())
						return nil
					}
					state, err := a.browser.SelectAlbum(args[0])
					if err != nil {
						return err
					}
					report.PrintImages(out, state.Images, a.browser.IsFavourite)
					return nil
				})
			},
		},
		newFavouritesCmd(withApp),
		&cobra.Command{
			Use:   "info <id>",
			Short: "Show name, size, resolution and description of an image",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withApp(cmd, func(ctx context.Context, a *app) error {
					img, ok := a.collection.Lookup(args[0])
					if !ok {
						return fmt.Errorf("no image with id %s", args[0])
					}
					for _, line := range imageinfo.Fetch(ctx, a.source, img, a.logger).Lines() {
						fmt.Fprintln(cmd.OutOrStdout(), line)
					}
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "upload <file>...",
			Short: "Upload image files",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withApp(cmd, func(ctx context.Context, a *app) error {
					for _, path := range args {
						if err := uploadFile(ctx, a, path); err != nil {
							return err
						}
						fmt.Fprintf(cmd.OutOrStdout(), "Uploaded %s\n", path)
					}
					fmt.Fprintf(cmd.OutOrStdout(), "Gallery now has %d images\n", a.collection.Len())
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "delete <id>",
			Short: "Delete an image",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withApp(cmd, func(ctx context.Context, a *app) error {
					if _, err := a.browser.OpenImage(args[0]); err != nil {
						return err
					}
					if _, err := a.browser.DeleteCurrent(ctx); err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
					return nil
				})
			},
		},
		newExportCmd(withApp),
		&cobra.Command{
			Use:   "browse",
			Short: "Browse the gallery interactively",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return withApp(cmd, func(ctx context.Context, a *app) error {
					return runBrowse(ctx, a, cmd.InOrStdin(), cmd.OutOrStdout())
				})
			},
		},
	)

	return rootCmd
}

type appRunner func(cmd *cobra.Command, fn func(ctx context.Context, a *app) error) error

func newFavouritesCmd(withApp appRunner) *cobra.Command {
	favCmd := &cobra.Command{
		Use:     "favourites",
		Aliases: []string{"favorites", "fav"},
		Short:   "List the current user's favourite images",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				report.PrintImages(cmd.OutOrStdout(), a.browser.ShowFavourites().Images, nil)
				return nil
			})
		},
	}
	favCmd.AddCommand(&cobra.Command{
		Use:   "toggle <id>",
		Short: "Like or unlike an image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				id := args[0]
				if _, ok := a.collection.Lookup(id); !ok {
					return fmt.Errorf("no image with id %s", id)
				}
				if !a.session.User().IsAuthenticated {
					fmt.Fprintln(cmd.OutOrStdout(), "Not logged in: favourites will not be saved")
				}
				a.browser.ToggleLikeID(ctx, id)
				if a.browser.IsFavourite(id) {
					fmt.Fprintf(cmd.OutOrStdout(), "Liked %s\n", id)
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "Unliked %s\n", id)
				}
				return nil
			})
		},
	})
	return favCmd
}

func newExportCmd(withApp appRunner) *cobra.Command {
	var dryRun bool
	exportCmd := &cobra.Command{
		Use:   "export <directory>",
		Short: "Copy images into album-named subfolders",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				out := cmd.OutOrStdout()
				albums := a.browser.Albums()
				if dryRun {
					fmt.Fprintln(out, "Dry run mode: no files will be written")
				}
				results, err := exporter.Export(ctx, a.source, args[0], albums, dryRun, a.logger)
				report.PrintExport(out, a.collection.Len(), results, dryRun)
				return err
			})
		},
	}
	exportCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show what would be done without writing files")
	return exportCmd
}

func uploadFile(ctx context.Context, a *app, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("cannot open %s: %w", path, err)
	}
	defer f.Close()
	_, err = a.browser.Upload(ctx, path, f)
	return err
}
