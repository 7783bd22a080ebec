package scadpack

import (
	"errors"

	"scadpack/internal/resolve"
)

// Every failure kind is fatal: it propagates to the caller and aborts the
// run, leaving whatever was already written on disk as-is.
var (
	// ErrInputNotFound reports a missing input file.
	ErrInputNotFound = errors.New("input file not found")
	// ErrInputIsDirectory reports an input path that names a directory.
	ErrInputIsDirectory = errors.New("input path is a directory")
	// ErrLibDirExists reports that the configured library output directory
	// already exists inside the source project, which would collide with the
	// rewritten library references.
	ErrLibDirExists = errors.New("library directory already exists in source project")
	// ErrOutputExists reports an existing output directory without overwrite
	// permission.
	ErrOutputExists = errors.New("output directory already exists")
	// ErrInternal reports a violated internal invariant.
	ErrInternal = errors.New("internal error")

	// ErrIncludeNotFound and ErrImportNotFound surface reference resolution
	// failures from the traversal.
	ErrIncludeNotFound = resolve.ErrIncludeNotFound
	ErrImportNotFound  = resolve.ErrImportNotFound
)
