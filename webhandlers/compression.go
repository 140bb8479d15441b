package webhandlers

import (
	"bytes"
	"compress/flate"
	"compress/gzip"
	"context"
	"errors"
	"io"
	"strings"
	"sync"

	"github.com/vitalvas/kiln/web"
)

// ErrInvalidCompressionLevel is returned when CompressionConfig.Level is
// outside the valid compression level range.
var ErrInvalidCompressionLevel = errors.New("compression: invalid compression level")

// CompressionConfig configures the Compression middleware behaviour.
type CompressionConfig struct {
	// Level is the compression level for both gzip and deflate. When zero,
	// flate.DefaultCompression is used. Must be in
	// [flate.HuffmanOnly, flate.BestCompression] or zero.
	Level int

	// MinLength is the minimum response body size in bytes before
	// compression is applied. When zero, all byte bodies are compressed.
	MinLength int
}

// compressor is the common interface implemented by both gzip.Writer and
// flate.Writer.
type compressor interface {
	io.WriteCloser
	Reset(w io.Writer)
}

// CompressionMiddleware returns a middleware that compresses response
// bodies using gzip or deflate when the client advertises support via the
// Accept-Encoding header (RFC 9110 Section 12.5.3). Gzip is preferred over
// deflate when the client accepts both. Writer instances are pooled for
// reuse across requests.
//
// Compression is skipped when:
//   - The request does not include "gzip" or "deflate" in Accept-Encoding
//   - The response already has a Content-Encoding header
//   - The response body is streamed, below MinLength, or an inherently
//     compressed format (image, video, audio, archives)
//
// It returns ErrInvalidCompressionLevel if Level is outside the valid
// range.
func CompressionMiddleware(cfg CompressionConfig) (web.Middleware, error) {
	level := cfg.Level
	if level == 0 {
		level = flate.DefaultCompression
	}

	if level < flate.HuffmanOnly || level > flate.BestCompression {
		return nil, ErrInvalidCompressionLevel
	}

	minLength := cfg.MinLength

	gzipPool := &sync.Pool{
		New: func() any {
			w, _ := gzip.NewWriterLevel(io.Discard, level)
			return w
		},
	}

	deflatePool := &sync.Pool{
		New: func() any {
			w, _ := flate.NewWriter(io.Discard, level)
			return w
		},
	}

	return web.MiddlewareFunc(func(ctx context.Context, req *web.Request, next web.Next) (*web.Response, error) {
		encoding := selectEncoding(req.HeaderValue("Accept-Encoding"))

		resp, err := next(ctx, req)
		if err != nil || encoding == "" {
			return resp, err
		}

		body := resp.Body()
		if resp.BodyStream() != nil || len(body) < minLength || len(body) == 0 {
			return resp, nil
		}
		if resp.Header().Has("Content-Encoding") {
			return resp, nil
		}
		if isCompressedContentType(resp.Header().Get("Content-Type")) {
			return resp, nil
		}

		var pool *sync.Pool
		if encoding == "gzip" {
			pool = gzipPool
		} else {
			pool = deflatePool
		}

		var buf bytes.Buffer
		cw := pool.Get().(compressor)
		cw.Reset(&buf)
		if _, err := cw.Write(body); err != nil {
			pool.Put(cw)
			return resp, nil
		}
		if err := cw.Close(); err != nil {
			pool.Put(cw)
			return resp, nil
		}
		pool.Put(cw)

		// The original body is already finalized, so the compressed
		// variant goes out as a fresh response carrying the same status
		// and headers.
		out := web.NewResponse().Status(resp.StatusCode())
		resp.Header().Each(func(key string, values []string) {
			for _, v := range values {
				out.AddHeader(key, v)
			}
		})
		if err := out.SetBody(buf.Bytes()); err != nil {
			return nil, err
		}
		out.SetHeader("Content-Encoding", encoding)
		out.AddHeader("Vary", "Accept-Encoding")
		return out, nil
	}), nil
}

// selectEncoding picks the response encoding from an Accept-Encoding
// header value, preferring gzip.
func selectEncoding(acceptEncoding string) string {
	if acceptEncoding == "" {
		return ""
	}
	var hasDeflate bool
	for _, part := range strings.Split(acceptEncoding, ",") {
		name, _, _ := strings.Cut(strings.TrimSpace(part), ";")
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "gzip":
			return "gzip"
		case "deflate":
			hasDeflate = true
		}
	}
	if hasDeflate {
		return "deflate"
	}
	return ""
}

// isCompressedContentType reports whether the content type is an inherently
// compressed format not worth recompressing.
func isCompressedContentType(contentType string) bool {
	ct, _, _ := strings.Cut(contentType, ";")
	ct = strings.TrimSpace(strings.ToLower(ct))

	for _, prefix := range []string{"image/", "video/", "audio/"} {
		if strings.HasPrefix(ct, prefix) {
			return true
		}
	}

	switch ct {
	case "application/zip", "application/gzip", "application/x-gzip",
		"application/x-bzip2", "application/x-7z-compressed",
		"application/x-rar-compressed", "application/zstd":
		return true
	}
	return false
}
