// Package scadpack bundles an OpenSCAD file and every file it references,
// directly or transitively, into a self-contained directory suitable for
// zipping and uploading to Thingiverse and friends.
//
// Two cases drive the layout:
//
//  1. Relative include: the file is copied along the same relative path in
//     the output tree, and the statement needs no change.
//  2. Library include: the file is found under a configured library search
//     root, copied under the output library subtree, and the statement is
//     rewritten to reference the new relative location.
//
// This continues recursively through include and use statements. Import
// statements are handled the same way except the imported file is copied
// without being parsed. After the whole closure is copied, license and
// attribution files are collected for every directory that contributed a
// dependency.
//
// # Usage
//
// Create a Bundler and run it:
//
//	b := scadpack.New(
//		scadpack.WithLibraryRoots("/home/me/.local/share/OpenSCAD/libraries"),
//	)
//	err := b.Bundle(context.Background(), "thing.scad", "release/thing")
//
// Imports built from variables or expressions cannot be resolved statically;
// they are logged and left unrewritten.
package scadpack
