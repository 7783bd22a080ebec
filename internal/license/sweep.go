// Package license collects attribution files for every directory that
// contributed a file to a bundle. From each contributing directory it walks
// upward, copying license-looking files into the output library subtree at
// their position relative to the boundary (a library root or the project
// directory) that contains them. Ascent never proceeds above a boundary.
package license

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charmbracelet/log"
	"github.com/viant/afs"
)

// exactNames and namePatterns define what counts as an attribution file.
var (
	exactNames   = []string{"COPYING", "README"}
	namePatterns = []string{"*.md", "*.MD", "*.txt", "*.TXT"}
)

// Sweep copies license artifacts found above contributing directories. Each
// source file is copied at most once even when it is reachable from several
// contributing directories.
type Sweep struct {
	fs         afs.Service
	log        *log.Logger
	outputDir  string   // output library directory receiving artifacts
	boundaries []string // absolute directories the ascent must not pass
	copied     map[string]bool
}

// New returns a Sweep stopping at the given boundary directories.
func New(fs afs.Service, logger *log.Logger, outputDir string, boundaries []string) *Sweep {
	return &Sweep{
		fs:         fs,
		log:        logger,
		outputDir:  outputDir,
		boundaries: boundaries,
		copied:     make(map[string]bool),
	}
}

// Run sweeps every contributing directory. A directory with no boundary
// above it has no stable relative placement for its files; it is reported
// and skipped rather than failing the run.
func (s *Sweep) Run(ctx context.Context, contributingDirs []string) error {
	for _, dir := range contributingDirs {
		if s.boundaryFor(dir) == "" {
			s.log.Warn("no boundary above contributing directory, skipping license search",
				"dir", dir, "boundaries", s.boundaries)
			continue
		}
		for cur := dir; ; cur = filepath.Dir(cur) {
			if err := s.collect(ctx, cur); err != nil {
				return err
			}
			if s.isBoundary(cur) {
				break
			}
		}
	}
	return nil
}

// collect copies every attribution file directly inside dir.
func (s *Sweep) collect(ctx context.Context, dir string) error {
	objects, err := s.fs.List(ctx, dir)
	if err != nil {
		return fmt.Errorf("list %s: %w", dir, err)
	}
	for _, obj := range objects {
		if obj.IsDir() || !matchName(obj.Name()) {
			continue
		}
		if err := s.copyArtifact(ctx, filepath.Join(dir, obj.Name())); err != nil {
			return err
		}
	}
	return nil
}

func (s *Sweep) copyArtifact(ctx context.Context, path string) error {
	if s.copied[path] {
		s.log.Debug("license file already copied", "source", path)
		return nil
	}
	boundary := s.boundaryFor(path)
	rel, err := filepath.Rel(boundary, path)
	if err != nil {
		return err
	}
	target := filepath.Join(s.outputDir, rel)
	s.log.Info("license file", "source", path, "target", target)
	if err := s.fs.Copy(ctx, path, target); err != nil {
		return fmt.Errorf("copy license file %s: %w", path, err)
	}
	s.copied[path] = true
	return nil
}

// boundaryFor returns the longest boundary that is a path prefix of p, or ""
// when none is.
func (s *Sweep) boundaryFor(p string) string {
	var best string
	for _, b := range s.boundaries {
		if hasPathPrefix(p, b) && len(b) > len(best) {
			best = b
		}
	}
	return best
}

func (s *Sweep) isBoundary(dir string) bool {
	for _, b := range s.boundaries {
		if dir == b {
			return true
		}
	}
	return false
}

func matchName(name string) bool {
	for _, exact := range exactNames {
		if name == exact {
			return true
		}
	}
	for _, pattern := range namePatterns {
		if ok, _ := doublestar.Match(pattern, name); ok {
			return true
		}
	}
	return false
}

// hasPathPrefix reports whether prefix is p itself or an ancestor directory,
// comparing whole path elements.
func hasPathPrefix(p, prefix string) bool {
	return p == prefix || strings.HasPrefix(p, prefix+string(filepath.Separator))
}
