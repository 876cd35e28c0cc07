package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fwojciec/mdstream"
	"github.com/fwojciec/mdstream/reader"
)

// input is one logical stream to render. open is deferred so files are
// held open only while they stream.
type input struct {
	name string
	open func(ctx context.Context) (mdstream.Source, error)
}

// expandInputs resolves each argument as a doublestar pattern. Plain paths
// are patterns matching themselves. A pattern matching nothing is an error,
// and files matched by more than one pattern are listed once.
func expandInputs(patterns []string) ([]string, error) {
	var files []string
	seen := make(map[string]bool)
	for _, pattern := range patterns {
		if !doublestar.ValidatePathPattern(pattern) {
			return nil, fmt.Errorf("invalid pattern %q", pattern)
		}
		matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("glob %q: %w", pattern, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("no files match %q", pattern)
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				files = append(files, m)
			}
		}
	}
	return files, nil
}

// fileSource streams a file and closes it with the source.
type fileSource struct {
	*reader.Source
	f *os.File
}

func (s fileSource) Close() error {
	return errors.Join(s.Source.Close(), s.f.Close())
}

func fileInput(path string, opts []reader.Option) input {
	return input{
		name: path,
		open: func(ctx context.Context) (mdstream.Source, error) {
			f, err := os.Open(path)
			if err != nil {
				return nil, err
			}
			return fileSource{Source: reader.New(f, append(opts, reader.WithContext(ctx))...), f: f}, nil
		},
	}
}

func readerInput(name string, r io.Reader, opts []reader.Option) input {
	return input{
		name: name,
		open: func(ctx context.Context) (mdstream.Source, error) {
			return reader.New(r, append(opts, reader.WithContext(ctx))...), nil
		},
	}
}

func promptInput(p mdstream.Provider, req mdstream.Request) input {
	return input{
		name: "prompt",
		open: func(ctx context.Context) (mdstream.Source, error) {
			return p.Stream(ctx, req)
		},
	}
}
