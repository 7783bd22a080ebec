package scadpack

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charmbracelet/log"
	"github.com/viant/afs"

	"scadpack/internal/license"
	"scadpack/internal/resolve"
)

// Bundler copies an OpenSCAD file and its reference closure into an output
// directory. A zero-configuration Bundler searches no library roots and
// places library files under "lib".
type Bundler struct {
	fs            afs.Service
	log           *log.Logger
	libraryRoots  []string
	libDirname    string
	ignoreImports bool
	overwrite     bool
}

// Option configures a Bundler.
type Option func(*Bundler)

// WithFS substitutes the filesystem service, e.g. for a non-local scheme.
func WithFS(fs afs.Service) Option {
	return func(b *Bundler) {
		b.fs = fs
	}
}

// WithLogger sets the logger. The default logs to stderr at info level.
func WithLogger(logger *log.Logger) Option {
	return func(b *Bundler) {
		b.log = logger
	}
}

// WithLibraryRoots sets the ordered library search roots consulted when an
// include/use target is not found next to the referencing file.
func WithLibraryRoots(roots ...string) Option {
	return func(b *Bundler) {
		b.libraryRoots = roots
	}
}

// WithLibDirname sets the output subdirectory receiving library files.
func WithLibDirname(name string) Option {
	return func(b *Bundler) {
		b.libDirname = name
	}
}

// WithIgnoreImports controls whether import statements are parsed. When true
// they pass through as plain text.
func WithIgnoreImports(ignore bool) Option {
	return func(b *Bundler) {
		b.ignoreImports = ignore
	}
}

// WithOverwrite allows Bundle to delete and recreate an existing output
// directory instead of failing.
func WithOverwrite(overwrite bool) Option {
	return func(b *Bundler) {
		b.overwrite = overwrite
	}
}

// New creates a Bundler.
func New(opts ...Option) *Bundler {
	b := &Bundler{
		fs:         afs.New(),
		log:        log.New(os.Stderr),
		libDirname: "lib",
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Bundle copies input and its whole reference closure into outputDir,
// rewriting statements whose targets moved, then collects license files for
// every directory that contributed a dependency. outputDir must not exist
// unless the Bundler was built with WithOverwrite(true).
func (b *Bundler) Bundle(ctx context.Context, input, outputDir string) error {
	if err := b.prepare(ctx, input, outputDir); err != nil {
		return err
	}

	absInput, err := filepath.Abs(input)
	if err != nil {
		return err
	}
	absOutput, err := filepath.Abs(outputDir)
	if err != nil {
		return err
	}
	roots := make([]string, 0, len(b.libraryRoots))
	for _, root := range b.libraryRoots {
		abs, err := filepath.Abs(root)
		if err != nil {
			return err
		}
		roots = append(roots, abs)
	}

	inputDir := filepath.Dir(absInput)
	resolver := resolve.NewResolver(b.fs, roots, absOutput, b.libDirname, inputDir)
	traverser := resolve.NewTraverser(b.fs, resolver, b.log, b.ignoreImports)

	entry := filepath.Join(absOutput, filepath.Base(absInput))
	if err := traverser.EnsureCopied(ctx, absInput, entry); err != nil {
		return err
	}

	boundaries := append(roots, inputDir)
	sweep := license.New(b.fs, b.log, filepath.Join(absOutput, b.libDirname), boundaries)
	return sweep.Run(ctx, traverser.ContributingDirs())
}

// prepare validates the input and establishes the output directory.
func (b *Bundler) prepare(ctx context.Context, input, outputDir string) error {
	exists, err := b.fs.Exists(ctx, input)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: %s", ErrInputNotFound, input)
	}
	obj, err := b.fs.Object(ctx, input)
	if err != nil {
		return err
	}
	if obj.IsDir() {
		return fmt.Errorf("%w: %s", ErrInputIsDirectory, input)
	}

	// A library directory inside the source project would be indistinguishable
	// from the one the bundle writes; require a different name up front.
	libDir := filepath.Join(filepath.Dir(input), b.libDirname)
	if exists, err = b.fs.Exists(ctx, libDir); err != nil {
		return err
	} else if exists {
		return fmt.Errorf("%w: %s", ErrLibDirExists, libDir)
	}

	if exists, err = b.fs.Exists(ctx, outputDir); err != nil {
		return err
	}
	if exists {
		if !b.overwrite {
			return fmt.Errorf("%w: %s", ErrOutputExists, outputDir)
		}
		b.log.Warn("deleting existing output directory", "dir", outputDir)
		if err := b.fs.Delete(ctx, outputDir); err != nil {
			return fmt.Errorf("delete %s: %w", outputDir, err)
		}
	}
	b.log.Info("creating output directory", "dir", outputDir)
	return b.fs.Create(ctx, outputDir, 0o755, true)
}

// CopyMatching copies every file under sourceDir matching pattern, evaluated
// recursively at any depth, to the same relative location under outputDir.
// Existing targets are left untouched.
func (b *Bundler) CopyMatching(ctx context.Context, sourceDir, outputDir, pattern string) error {
	matches, err := doublestar.Glob(os.DirFS(sourceDir), path.Join("**", pattern), doublestar.WithFilesOnly())
	if err != nil {
		return fmt.Errorf("glob %s: %w", pattern, err)
	}
	for _, m := range matches {
		if !filepath.IsLocal(m) {
			return fmt.Errorf("%w: match %q escapes %s", ErrInternal, m, sourceDir)
		}
		source := filepath.Join(sourceDir, filepath.FromSlash(m))
		target := filepath.Join(outputDir, filepath.FromSlash(m))
		exists, err := b.fs.Exists(ctx, target)
		if err != nil {
			return err
		}
		if exists {
			continue
		}
		b.log.Info("added file", "source", source, "target", target)
		if err := b.fs.Copy(ctx, source, target); err != nil {
			return fmt.Errorf("copy %s: %w", source, err)
		}
	}
	return nil
}
