package resolve

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/charmbracelet/log"
	"github.com/viant/afs"

	"scadpack/internal/refscan"
)

// Traverser walks the include/use closure depth-first, copying each distinct
// output target at most once and accumulating the directories that
// contributed source files. It is single-threaded: every EnsureCopied call
// fully completes, nested recursion included, before returning.
type Traverser struct {
	fs            afs.Service
	res           *Resolver
	log           *log.Logger
	ignoreImports bool

	depth int
	// started records output targets begun during this run. Output bytes are
	// buffered and written only after a file's scan completes, so the on-disk
	// existence check alone cannot terminate a cycle mid-run; together they
	// make EnsureCopied idempotent per target.
	started     map[string]bool
	contributed map[string]bool
}

// NewTraverser returns a Traverser with empty accumulators. A Traverser is
// good for one top-level traversal.
func NewTraverser(fs afs.Service, res *Resolver, logger *log.Logger, ignoreImports bool) *Traverser {
	return &Traverser{
		fs:            fs,
		res:           res,
		log:           logger,
		ignoreImports: ignoreImports,
		started:       make(map[string]bool),
		contributed:   make(map[string]bool),
	}
}

// EnsureCopied scans source into target, recursing into every include/use
// reference it contains. A target that already exists, on disk or begun
// earlier in this run, is trusted as-is: that single check deduplicates
// diamond references and terminates cycles. Two different sources mapping to
// the same target silently keep whichever arrived first; content is never
// compared.
func (t *Traverser) EnsureCopied(ctx context.Context, source, target string) error {
	if t.started[target] {
		t.log.Debug("target already begun", "target", target)
		return nil
	}
	exists, err := t.fs.Exists(ctx, target)
	if err != nil {
		return err
	}
	if exists {
		t.log.Debug("target already exists", "target", target)
		return nil
	}
	t.started[target] = true

	data, err := t.fs.DownloadWithURL(ctx, source)
	if err != nil {
		return fmt.Errorf("read %s: %w", source, err)
	}

	dir, err := filepath.Abs(filepath.Dir(source))
	if err != nil {
		return err
	}
	t.contributed[dir] = true

	t.log.Info("copy", "source", source, "target", target, "depth", t.depth)

	var out bytes.Buffer
	scanner := refscan.New(&out, &fileScope{t: t, source: source, target: target}, t.ignoreImports)
	t.depth++
	err = scanner.Scan(ctx, data)
	t.depth--
	if err != nil {
		return err
	}

	if err := t.fs.Upload(ctx, target, 0o644, bytes.NewReader(out.Bytes())); err != nil {
		return fmt.Errorf("write %s: %w", target, err)
	}
	return nil
}

// ContributingDirs returns the absolute directory of every source file read
// during the traversal, sorted.
func (t *Traverser) ContributingDirs() []string {
	dirs := make([]string, 0, len(t.contributed))
	for dir := range t.contributed {
		dirs = append(dirs, dir)
	}
	sort.Strings(dirs)
	return dirs
}

// fileScope binds the scanner's resolution callbacks to one source file and
// its output location.
type fileScope struct {
	t      *Traverser
	source string
	target string
}

func (f *fileScope) ResolveInclude(ctx context.Context, p string) (string, error) {
	res, err := f.t.res.Include(ctx, p, filepath.Dir(f.source), filepath.Dir(f.target))
	if err != nil {
		return "", err
	}
	if err := f.t.EnsureCopied(ctx, res.Source, res.Target); err != nil {
		return "", err
	}
	return res.Literal, nil
}

func (f *fileScope) ResolveImport(ctx context.Context, p string) (string, error) {
	res, err := f.t.res.Import(ctx, p, filepath.Dir(f.source))
	if err != nil {
		return "", err
	}
	exists, err := f.t.fs.Exists(ctx, res.Target)
	if err != nil {
		return "", err
	}
	if !exists {
		f.t.log.Info("import", "source", res.Source, "target", res.Target, "depth", f.t.depth)
		if err := f.t.fs.Copy(ctx, res.Source, res.Target); err != nil {
			return "", fmt.Errorf("copy import %s: %w", res.Source, err)
		}
	}
	return res.Literal, nil
}

func (f *fileScope) UnresolvedImport(stmt string) {
	f.t.log.Warn("could not resolve import statement", "statement", stmt, "file", f.source)
}
