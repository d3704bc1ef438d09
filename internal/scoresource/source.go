// Package scoresource locates conservation score sequences for protein
// chains. A source is anything that can be opened for reading: a local
// file, an in-memory blob or an S3 object.
package scoresource

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Source is a handle to a parseable score sequence.
type Source interface {
	// Name identifies the source in logs and reports.
	Name() string
	// Open returns the (decompressed) contents of the source.
	Open(ctx context.Context) (io.ReadCloser, error)
}

// Resolver finds the score source of a chain. A missing source is
// reported with ok == false and no error; errors are reserved for lookups
// that could not be completed.
type Resolver interface {
	Resolve(ctx context.Context, chainID string) (src Source, ok bool, err error)
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(ctx context.Context, chainID string) (Source, bool, error)

// Resolve calls f.
func (f ResolverFunc) Resolve(ctx context.Context, chainID string) (Source, bool, error) {
	return f(ctx, chainID)
}

// Fallback resolves through primary first and through secondary for chains
// primary does not know.
func Fallback(primary, secondary Resolver) Resolver {
	return ResolverFunc(func(ctx context.Context, chainID string) (Source, bool, error) {
		src, ok, err := primary.Resolve(ctx, chainID)
		if err != nil || ok {
			return src, ok, err
		}
		return secondary.Resolve(ctx, chainID)
	})
}

// MapResolver resolves chains from a fixed map.
type MapResolver map[string]Source

// Resolve returns the source mapped to chainID.
func (m MapResolver) Resolve(_ context.Context, chainID string) (Source, bool, error) {
	src, ok := m[chainID]
	return src, ok, nil
}

// File is a score file on local disk.
type File struct {
	Path string
}

// Name returns the file's base name.
func (f File) Name() string {
	return filepath.Base(f.Path)
}

// Exists reports whether the file exists and is not a directory.
func (f File) Exists() bool {
	info, err := os.Stat(f.Path)
	return err == nil && !info.IsDir()
}

// Open opens the file, decompressing gzip content transparently.
func (f File) Open(_ context.Context) (io.ReadCloser, error) {
	file, err := os.Open(f.Path)
	if err != nil {
		return nil, fmt.Errorf("open score file: %w", err)
	}
	rc, err := maybeGzip(file)
	if err != nil {
		file.Close()
		return nil, err
	}
	return rc, nil
}

// Blob is an in-memory score sequence.
type Blob struct {
	Label string
	Data  []byte
}

// Name returns the blob label.
func (b Blob) Name() string {
	return b.Label
}

// Open returns a reader over the blob.
func (b Blob) Open(_ context.Context) (io.ReadCloser, error) {
	return maybeGzip(io.NopCloser(bytes.NewReader(b.Data)))
}

// gzipReadCloser closes both the gzip stream and the underlying reader.
type gzipReadCloser struct {
	*gzip.Reader
	under io.Closer
}

func (g gzipReadCloser) Close() error {
	g.Reader.Close()
	return g.under.Close()
}

type bufferedReadCloser struct {
	*bufio.Reader
	io.Closer
}

// maybeGzip wraps rc with a gzip reader when the content starts with the
// gzip magic number (0x1f, 0x8b).
func maybeGzip(rc io.ReadCloser) (io.ReadCloser, error) {
	br := bufio.NewReader(rc)
	magic, err := br.Peek(2)
	if err != nil || magic[0] != 0x1f || magic[1] != 0x8b {
		return bufferedReadCloser{Reader: br, Closer: rc}, nil
	}
	gz, err := gzip.NewReader(br)
	if err != nil {
		return nil, fmt.Errorf("create gzip reader: %w", err)
	}
	return gzipReadCloser{Reader: gz, under: rc}, nil
}
