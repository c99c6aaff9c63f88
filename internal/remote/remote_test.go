package remote

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/bagtoad/imggallery/internal/gallery"
)

// fakeBackend mimics the gallery backend's image and user endpoints.
type fakeBackend struct {
	images  []gallery.Image
	blobs   map[string][]byte
	token   string
	uploads []string
	logouts int
}

func (f *fakeBackend) router() http.Handler {
	r := chi.NewRouter()
	r.Get("/image", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"items": f.images})
	})
	r.Post("/image", func(w http.ResponseWriter, r *http.Request) {
		file, header, err := r.FormFile("image")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		defer file.Close()
		data, _ := io.ReadAll(file)
		id := strconv.Itoa(len(f.images) + 100)
		f.images = append(f.images, gallery.Image{ID: id, Name: header.Filename})
		f.blobs[id] = data
		f.uploads = append(f.uploads, header.Filename)
		w.WriteHeader(http.StatusCreated)
	})
	r.Route("/image/{id}", func(r chi.Router) {
		r.Delete("/", func(w http.ResponseWriter, r *http.Request) {
			id := chi.URLParam(r, "id")
			i := gallery.IndexOf(f.images, id)
			if i < 0 {
				http.NotFound(w, r)
				return
			}
			f.images = append(f.images[:i], f.images[i+1:]...)
			w.WriteHeader(http.StatusNoContent)
		})
		r.Get("/raw", func(w http.ResponseWriter, r *http.Request) {
			data, ok := f.blobs[chi.URLParam(r, "id")]
			if !ok {
				http.NotFound(w, r)
				return
			}
			w.Write(data)
		})
		r.Head("/raw", func(w http.ResponseWriter, r *http.Request) {
			data, ok := f.blobs[chi.URLParam(r, "id")]
			if !ok {
				http.NotFound(w, r)
				return
			}
			w.Header().Set("Content-Length", strconv.Itoa(len(data)))
		})
	})
	r.Get("/users", func(w http.ResponseWriter, r *http.Request) {
		c, err := r.Cookie("token")
		if err != nil || c.Value != f.token {
			json.NewEncoder(w).Encode(map[string]any{"isSuccess": false, "message": "not logged in"})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"isSuccess": true,
			"data":      map[string]any{"user": map[string]any{"_id": "u1", "email": "ann@example.com"}},
		})
	})
	r.Get("/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		f.logouts++
		http.SetCookie(w, &http.Cookie{Name: "token", Value: "", Path: "/", MaxAge: -1})
	})
	return r
}

func newTestClient(t *testing.T) (*Client, *fakeBackend) {
	t.Helper()
	backend := &fakeBackend{
		images: []gallery.Image{
			{ID: "1", Name: "Dog", Description: "a dog in a park"},
			{ID: "2", Name: "Car", Description: "red car"},
		},
		blobs: map[string][]byte{"1": []byte("dog-bytes")},
		token: "secret",
	}
	srv := httptest.NewServer(backend.router())
	t.Cleanup(srv.Close)

	c, err := New(srv.URL+"/", 5*time.Second, nil)
	if err != nil {
		t.Fatal(err)
	}
	return c, backend
}

func TestListImages(t *testing.T) {
	c, _ := newTestClient(t)
	images, err := c.ListImages(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(images) != 2 || images[0].ID != "1" || images[1].Description != "red car" {
		t.Errorf("unexpected images: %+v", images)
	}
}

func TestImageBytesAndSize(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()

	rc, err := c.ImageBytes(ctx, "1")
	if err != nil {
		t.Fatal(err)
	}
	data, _ := io.ReadAll(rc)
	rc.Close()
	if string(data) != "dog-bytes" {
		t.Errorf("got %q", data)
	}

	size, ok, err := c.ImageSize(ctx, "1")
	if err != nil || !ok || size != int64(len("dog-bytes")) {
		t.Errorf("ImageSize = %d %v %v", size, ok, err)
	}

	if _, err := c.ImageBytes(ctx, "missing"); !errors.Is(err, gallery.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteImage(t *testing.T) {
	c, backend := newTestClient(t)
	ctx := context.Background()

	if err := c.DeleteImage(ctx, "2"); err != nil {
		t.Fatal(err)
	}
	if len(backend.images) != 1 {
		t.Errorf("expected image removed, have %d", len(backend.images))
	}
	if err := c.DeleteImage(ctx, "2"); !errors.Is(err, gallery.ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestUploadImage(t *testing.T) {
	c, backend := newTestClient(t)
	if err := c.UploadImage(context.Background(), "/tmp/photos/cat.png", strings.NewReader("cat")); err != nil {
		t.Fatal(err)
	}
	if len(backend.uploads) != 1 || backend.uploads[0] != "cat.png" {
		t.Errorf("unexpected uploads: %v", backend.uploads)
	}
}

func TestCurrentUser(t *testing.T) {
	c, backend := newTestClient(t)
	ctx := context.Background()

	if _, err := c.CurrentUser(ctx); !errors.Is(err, gallery.ErrUnauthenticated) {
		t.Errorf("expected ErrUnauthenticated without cookie, got %v", err)
	}

	c.SetCookie(&http.Cookie{Name: "token", Value: "secret"})
	user, err := c.CurrentUser(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if user.ID != "u1" || !user.IsAuthenticated || user.Name != "ann@example.com" {
		t.Errorf("unexpected user: %+v", user)
	}

	if err := c.Logout(ctx); err != nil {
		t.Fatal(err)
	}
	if backend.logouts != 1 {
		t.Errorf("expected one logout, got %d", backend.logouts)
	}
	if _, err := c.CurrentUser(ctx); !errors.Is(err, gallery.ErrUnauthenticated) {
		t.Errorf("expected cookie cleared by logout, got %v", err)
	}
}

func TestServerErrorIsTransport(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c, err := New(srv.URL, time.Second, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := c.ListImages(context.Background()); !errors.Is(err, gallery.ErrTransport) {
		t.Errorf("expected ErrTransport, got %v", err)
	}
}

func TestNewRejectsBadURL(t *testing.T) {
	if _, err := New("ftp://example.com", time.Second, nil); err == nil {
		t.Error("expected error for non-http scheme")
	}
}

func TestEndpointEscapesSegments(t *testing.T) {
	c, err := New("http://gallery.test/api/", time.Second, nil)
	if err != nil {
		t.Fatal(err)
	}
	cases := []struct {
		parts []string
		want  string
	}{
		{[]string{"image", "abc", "raw"}, "http://gallery.test/api/image/abc/raw"},
		{[]string{"image", "../users", "raw"}, "http://gallery.test/api/image/..%2Fusers/raw"},
		{[]string{"image", ".."}, "http://gallery.test/api/image/%2E%2E"},
		{[]string{"image", "."}, "http://gallery.test/api/image/%2E"},
		{[]string{"image", "a b?c"}, "http://gallery.test/api/image/a%20b%3Fc"},
	}
	for _, tc := range cases {
		if got := c.endpoint(tc.parts...); got != tc.want {
			t.Errorf("endpoint(%q) = %q, want %q", tc.parts, got, tc.want)
		}
	}
}

func TestDeleteImageStaysUnderImagePath(t *testing.T) {
	var paths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.EscapedPath())
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c, err := New(srv.URL, time.Second, nil)
	if err != nil {
		t.Fatal(err)
	}
	for _, id := range []string{"..", "../auth/logout"} {
		if err := c.DeleteImage(context.Background(), id); err != nil {
			t.Fatal(err)
		}
	}
	want := []string{"/image/%2E%2E", "/image/..%2Fauth%2Flogout"}
	if len(paths) != len(want) {
		t.Fatalf("expected %d requests, got %v", len(want), paths)
	}
	for i := range want {
		if paths[i] != want[i] {
			t.Errorf("request %d path = %q, want %q", i, paths[i], want[i])
		}
	}
}
