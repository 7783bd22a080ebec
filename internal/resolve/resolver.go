// Package resolve decides where referenced files live and where they belong
// in the output tree, and drives the depth-first traversal that copies the
// whole reference closure. All filesystem access goes through an afs.Service
// so the policies can be exercised against any backing store.
package resolve

import (
	"context"
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/viant/afs"
)

var (
	// ErrIncludeNotFound marks an include/use target missing from the
	// referencing directory and every configured library root.
	ErrIncludeNotFound = errors.New("include target not found")
	// ErrImportNotFound marks an import target missing from both the
	// referencing directory and the project-parent fallback.
	ErrImportNotFound = errors.New("import target not found")
)

// Resolution is the outcome of resolving one reference: where the target
// really lives, where it belongs in the output tree, and the literal to write
// back into the referencing statement.
type Resolution struct {
	Source  string // absolute path of the referenced file
	Target  string // absolute path under the output tree
	Literal string // replacement text for the statement's path span
}

// Resolver applies the include and import search policies. It consults the
// filesystem for existence only; copying is the caller's job.
type Resolver struct {
	fs           afs.Service
	libraryRoots []string
	outputRoot   string
	libDirname   string
	rootInputDir string // directory of the top-level input file
}

// NewResolver returns a Resolver. libraryRoots are searched in order; first
// match wins. rootInputDir anchors the import fallback for paths expressed
// relative to a build or project root.
func NewResolver(fs afs.Service, libraryRoots []string, outputRoot, libDirname, rootInputDir string) *Resolver {
	return &Resolver{
		fs:           fs,
		libraryRoots: libraryRoots,
		outputRoot:   outputRoot,
		libDirname:   libDirname,
		rootInputDir: rootInputDir,
	}
}

// Include resolves an include/use literal written in the file at sourceDir
// whose output copy lives in targetDir.
//
// A path that exists next to the referencing file mirrors the same relative
// layout in the output, so the statement text stays as written. Otherwise the
// library roots are searched in order and the target moves under the output
// library subtree, with the literal rewritten to the relative path from the
// referencing output file.
func (r *Resolver) Include(ctx context.Context, literal, sourceDir, targetDir string) (Resolution, error) {
	cand := filepath.Join(sourceDir, literal)
	ok, err := r.fs.Exists(ctx, cand)
	if err != nil {
		return Resolution{}, err
	}
	if ok {
		return Resolution{
			Source:  cand,
			Target:  filepath.Join(targetDir, literal),
			Literal: literal,
		}, nil
	}

	for _, root := range r.libraryRoots {
		cand := filepath.Join(root, literal)
		ok, err := r.fs.Exists(ctx, cand)
		if err != nil {
			return Resolution{}, err
		}
		if !ok {
			continue
		}
		target := filepath.Join(r.outputRoot, r.libDirname, literal)
		// The rewritten literal is computed purely from directory structure:
		// how to reach the library copy from the referencing output file.
		rel, err := filepath.Rel(targetDir, target)
		if err != nil {
			return Resolution{}, err
		}
		return Resolution{Source: cand, Target: target, Literal: filepath.ToSlash(rel)}, nil
	}

	searched := append([]string{sourceDir}, r.libraryRoots...)
	return Resolution{}, fmt.Errorf("%w: %s (searched %s)",
		ErrIncludeNotFound, literal, strings.Join(searched, ", "))
}

// Import resolves an import literal written in the file at sourceDir.
//
// An absolute literal keeps its own path as the source candidate and lands
// under the output library subtree with the leading separator or drive prefix
// stripped; the literal is rewritten to that library-relative path. A
// relative literal resolves against the referencing file's directory and, if
// absent there, against the parent of the top-level input directory.
func (r *Resolver) Import(ctx context.Context, literal, sourceDir string) (Resolution, error) {
	newLit := literal
	var source string
	if filepath.IsAbs(literal) {
		source = literal
		rest := strings.TrimPrefix(literal, "/")
		if i := strings.Index(rest, `:\`); i >= 0 {
			rest = rest[i+2:]
		}
		newLit = path.Join(r.libDirname, filepath.ToSlash(rest))
	} else {
		source = filepath.Join(sourceDir, literal)
	}

	ok, err := r.fs.Exists(ctx, source)
	if err != nil {
		return Resolution{}, err
	}
	if !ok {
		// Imports are sometimes written relative to the project root's
		// parent rather than the importing file; retry there.
		source = filepath.Join(filepath.Dir(r.rootInputDir), literal)
		if ok, err = r.fs.Exists(ctx, source); err != nil {
			return Resolution{}, err
		}
	}
	if !ok {
		return Resolution{}, fmt.Errorf("%w: %s (last tried %s)",
			ErrImportNotFound, literal, source)
	}

	return Resolution{
		Source:  source,
		Target:  filepath.Join(r.outputRoot, filepath.FromSlash(newLit)),
		Literal: newLit,
	}, nil
}
