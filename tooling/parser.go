// Package tooling loads schema projects and drives the code and migration
// generators over them.
//
// A project is either a single .cham file or a directory tree of them. The
// entities of every file are merged into one schema in path order, so an
// entity may reference entities declared in another file. Positions in
// errors carry the file name.
//
// Applications that already hold DSL text in memory can use pkg/parser
// directly. This package is for build tooling and the CLI.
package tooling

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/dperalta86/chameleondb/pkg/parser"
	"github.com/dperalta86/chameleondb/pkg/schema"
)

// LoadSchema parses the project at path and validates the merged schema.
// A validation failure returns the schema together with the
// schema.ValidationErrors, so callers can still report on it.
func LoadSchema(path string) (*schema.Schema, error) {
	s, err := ParseSchema(path)
	if err != nil {
		return nil, err
	}
	if err := schema.Validate(s); err != nil {
		return s, err
	}
	return s, nil
}

// ParseSchema parses the project at path without validating it. path may
// name a file or a directory.
func ParseSchema(path string) (*schema.Schema, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("reading schema: %w", err)
	}
	if !info.IsDir() {
		return parser.ParseSchema(path)
	}
	files, err := FindSchemaFiles(path)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no %s files found in %s", parser.FileExtension, path)
	}
	return ParseFiles(context.Background(), files)
}

// FindSchemaFiles returns the .cham files under dir, sorted. Hidden
// directories are skipped.
func FindSchemaFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) == parser.FileExtension {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", dir, err)
	}
	sort.Strings(files)
	return files, nil
}

// ParseFiles parses files concurrently and merges them in the given order.
// When several files fail, the error of the first one in order is returned.
func ParseFiles(ctx context.Context, files []string) (*schema.Schema, error) {
	parsed := make([]*schema.Schema, len(files))
	errs := make([]error, len(files))

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(runtime.GOMAXPROCS(0))
	for i, file := range files {
		i, file := i, file
		eg.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			parsed[i], errs[i] = parser.ParseSchema(file)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	merged := &schema.Schema{Version: schema.Version}
	for i := range files {
		if errs[i] != nil {
			return nil, errs[i]
		}
		merged.Merge(parsed[i])
	}
	merged.Normalize()
	return merged, nil
}
