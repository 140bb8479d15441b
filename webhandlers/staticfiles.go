package webhandlers

import (
	"context"
	"errors"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/vitalvas/kiln/web"
)

// ErrInvalidStaticDir is returned when StaticFilesConfig.Dir is empty.
var ErrInvalidStaticDir = errors.New("staticfiles: dir must not be empty")

// StaticFilesConfig configures the StaticFiles handler behaviour.
type StaticFilesConfig struct {
	// Dir is the filesystem root served from. Required.
	Dir string

	// Prefix is the URL prefix stripped before resolving files, typically
	// the wildcard route prefix, e.g. "/static". Defaults to "/".
	Prefix string

	// MaxAge, when positive, sets Cache-Control: public, max-age=N on
	// successful responses per RFC 9111 Section 5.2.2.1.
	MaxAge time.Duration
}

// StaticFiles is a route handler serving files from a directory. Register
// it under a wildcard route:
//
//	sf, err := webhandlers.NewStaticFiles(webhandlers.StaticFilesConfig{
//	    Dir:    "./public",
//	    Prefix: "/static",
//	})
//	t.Get("/static/*path", sf)
//
// Paths resolving outside the root directory are rejected with 403
// Forbidden, so "../" traversal cannot escape the served tree. Missing
// files yield 404. The Content-Type is derived from the file extension.
type StaticFiles struct {
	dir    string
	prefix string
	maxAge string
}

// NewStaticFiles builds a StaticFiles handler.
func NewStaticFiles(cfg StaticFilesConfig) (*StaticFiles, error) {
	if cfg.Dir == "" {
		return nil, ErrInvalidStaticDir
	}

	prefix := cfg.Prefix
	if prefix == "" {
		prefix = "/"
	}

	var maxAge string
	if cfg.MaxAge > 0 {
		maxAge = "public, max-age=" + strconv.Itoa(int(cfg.MaxAge/time.Second))
	}

	return &StaticFiles{
		dir:    filepath.Clean(cfg.Dir),
		prefix: strings.TrimSuffix(prefix, "/"),
		maxAge: maxAge,
	}, nil
}

// Handle implements web.Handler.
func (s *StaticFiles) Handle(_ context.Context, req *web.Request) (*web.Response, error) {
	rel := strings.TrimPrefix(req.Path(), s.prefix)
	rel = strings.TrimPrefix(rel, "/")

	full := filepath.Join(s.dir, filepath.FromSlash(rel))

	// filepath.Join cleans the path, but an explicit containment check
	// keeps traversal rejection independent of Join's behaviour.
	if relCheck, err := filepath.Rel(s.dir, full); err != nil || relCheck == ".." || strings.HasPrefix(relCheck, ".."+string(filepath.Separator)) {
		return web.TextResponse(http.StatusForbidden, http.StatusText(http.StatusForbidden)), nil
	}

	info, err := os.Stat(full)
	if err != nil || info.IsDir() {
		return web.TextResponse(http.StatusNotFound, http.StatusText(http.StatusNotFound)), nil
	}

	data, err := os.ReadFile(full)
	if err != nil {
		return web.TextResponse(http.StatusNotFound, http.StatusText(http.StatusNotFound)), nil
	}

	resp := web.NewResponse()
	if err := resp.SetBody(data); err != nil {
		return nil, err
	}
	resp.SetHeader("Content-Type", contentTypeFor(full))
	if s.maxAge != "" {
		resp.SetHeader("Cache-Control", s.maxAge)
	}
	return resp, nil
}

// contentTypeFor derives a Content-Type from the file extension, falling
// back to application/octet-stream.
func contentTypeFor(path string) string {
	if ct := mime.TypeByExtension(filepath.Ext(path)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
