package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/bagtoad/imggallery/internal/browse"
	"github.com/bagtoad/imggallery/internal/imageinfo"
	"github.com/bagtoad/imggallery/internal/report"
)

const browseHelp = `Commands:
  home | albums | album <name> | favourites   switch page
  search <text>                               filter the current page
  open <n> | next | prev | close | resume     fullscreen viewer
  info | like | delete                        act on the open image
  refresh | login | logout | help | exit`

// runBrowse reads one command per line from in and renders the resulting
// view to out until EOF or "exit".
func runBrowse(ctx context.Context, a *app, in io.Reader, out io.Writer) error {
	b := a.browser
	render(ctx, a, out, b.State())

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		cmd, arg, _ := strings.Cut(strings.TrimSpace(scanner.Text()), " ")
		arg = strings.TrimSpace(arg)

		var (
			state browse.ViewState
			err   error
		)
		switch strings.ToLower(cmd) {
		case "":
			continue
		case "exit", "quit", "q":
			return nil
		case "help", "?":
			fmt.Fprintln(out, browseHelp)
			continue
		case "home":
			state = b.ShowHome()
		case "albums":
			state = b.ShowAlbums()
		case "album":
			state, err = b.SelectAlbum(albumName(a, arg))
		case "favourites", "favorites", "fav":
			state = b.ShowFavourites()
		case "search":
			state = b.Search(arg)
		case "open":
			n, convErr := strconv.Atoi(arg)
			if convErr != nil {
				fmt.Fprintf(out, "open needs an image number, got %q\n", arg)
				continue
			}
			state, err = b.Open(n)
		case "next", "n":
			state = b.Next()
		case "prev", "p":
			state = b.Prev()
		case "close", "c":
			state = b.Close()
		case "resume":
			state = b.Resume()
		case "info", "i":
			state = b.ToggleInfo()
		case "like", "l":
			state, err = b.ToggleLike(ctx)
		case "delete":
			state, err = b.DeleteCurrent(ctx)
		case "refresh":
			state, err = b.Refresh(ctx)
		case "login":
			state, err = b.Login(ctx)
		case "logout":
			state, err = b.Logout(ctx)
		default:
			fmt.Fprintf(out, "unknown command %q, type help\n", cmd)
			continue
		}
		if err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
			if errors.Is(err, browse.ErrUnknownAlbum) {
				continue
			}
		}
		render(ctx, a, out, state)
	}
}

// albumName matches arg against the rule names case-insensitively.
func albumName(a *app, arg string) string {
	for _, name := range a.rules.Names() {
		if strings.EqualFold(name, arg) {
			return name
		}
	}
	return arg
}

func render(ctx context.Context, a *app, out io.Writer, state browse.ViewState) {
	user := "anonymous"
	if state.User.IsAuthenticated {
		user = state.User.Name
	}
	header := fmt.Sprintf("[%s", state.Mode)
	if state.SelectedAlbum != "" {
		header += " / " + state.SelectedAlbum
	}
	if state.Query != "" {
		header += fmt.Sprintf(" / search %q", state.Query)
	}
	fmt.Fprintf(out, "%s] %s\n", header, user)

	if v := state.Viewer; v.Open {
		heart := "♡"
		if state.Liked {
			heart = "♥"
		}
		fmt.Fprintf(out, "%d/%d %s %s\n", v.Index+1, len(state.Images), v.Image.Name, heart)
		if v.InfoVisible {
			for _, line := range imageinfo.Fetch(ctx, a.source, v.Image, a.logger).Lines() {
				fmt.Fprintln(out, "  "+line)
			}
		}
		return
	}

	if state.Mode == browse.ModeAlbums && state.SelectedAlbum == "" {
		report.PrintAlbums(out, a.browser.Albums())
		return
	}
	report.PrintImages(out, state.Images, a.browser.IsFavourite)
}
