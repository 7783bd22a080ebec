// Command scadpack bundles an OpenSCAD file and all of its includes into a
// single directory ready to zip for release.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"scadpack"
)

var (
	flagLibDirname    string
	flagOverwrite     bool
	flagLibraryPaths  []string
	flagClearPaths    bool
	flagAdd           []string
	flagIgnoreImports bool
	flagLog           string
	flagConfig        string
)

var rootCmd = &cobra.Command{
	Use:   "scadpack <file.scad> <output_dir>",
	Short: "Bundle an OpenSCAD file and all of its includes into a single directory",
	Long: "Scadpack copies an OpenSCAD file, every file it includes, uses, or imports\n" +
		"(recursively), and the licenses of the libraries involved into a directory\n" +
		"that can be zipped up and uploaded to Thingiverse and friends. References\n" +
		"to library files are rewritten so the bundle is self-contained.",
	Args:          cobra.ExactArgs(2),
	SilenceErrors: true,
	SilenceUsage:  true,
	RunE:          runBundle,
}

func init() {
	rootCmd.Flags().StringVar(&flagLibDirname, "lib-dirname", "lib", "subdirectory of the output tree receiving library files")
	rootCmd.Flags().BoolVar(&flagOverwrite, "overwrite", false, "if the output directory exists, delete and recreate it [careful!]")
	rootCmd.Flags().StringArrayVar(&flagLibraryPaths, "library-path", nil, "additional library search root, can be repeated")
	rootCmd.Flags().BoolVar(&flagClearPaths, "clear-library-paths", false, "do not use the default library search roots")
	rootCmd.Flags().StringArrayVar(&flagAdd, "add", nil, "glob pattern of extra files to copy from the source tree, can be repeated")
	rootCmd.Flags().BoolVar(&flagIgnoreImports, "ignore-imports", false, "do not try to parse import statements")
	rootCmd.Flags().StringVar(&flagLog, "log", "info", "log level: debug, info, warn, error")
	rootCmd.Flags().StringVar(&flagConfig, "config", "", "config file (default: $XDG_CONFIG_HOME/scadpack/config.yaml)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func runBundle(cmd *cobra.Command, args []string) error {
	level, err := log.ParseLevel(flagLog)
	if err != nil {
		return fmt.Errorf("invalid log level %q", flagLog)
	}
	logger := log.NewWithOptions(os.Stderr, log.Options{Level: level})

	cfg, err := loadConfig(flagConfig)
	if err != nil {
		return err
	}

	libDirname := flagLibDirname
	if !cmd.Flags().Changed("lib-dirname") && cfg.LibDirname != "" {
		libDirname = cfg.LibDirname
	}

	input, outputDir := args[0], args[1]

	b := scadpack.New(
		scadpack.WithLogger(logger),
		scadpack.WithLibraryRoots(libraryRoots(cfg)...),
		scadpack.WithLibDirname(libDirname),
		scadpack.WithIgnoreImports(flagIgnoreImports),
		scadpack.WithOverwrite(flagOverwrite),
	)

	ctx := context.Background()
	if err := b.Bundle(ctx, input, outputDir); err != nil {
		return err
	}

	absInput, err := filepath.Abs(input)
	if err != nil {
		return err
	}
	for _, pattern := range flagAdd {
		if err := b.CopyMatching(ctx, filepath.Dir(absInput), outputDir, pattern); err != nil {
			return err
		}
	}

	printSuccess(cmd.OutOrStdout(), outputDir, filepath.Base(absInput))
	return nil
}

// libraryRoots assembles the ordered search roots: configured or platform
// defaults first (unless cleared), then any roots given on the command line.
func libraryRoots(cfg config) []string {
	var roots []string
	if !flagClearPaths {
		if len(cfg.LibraryPaths) > 0 {
			roots = cfg.LibraryPaths
		} else {
			roots = defaultLibraryRoots()
		}
	}
	return append(roots, flagLibraryPaths...)
}

// defaultLibraryRoots returns the conventional OpenSCAD library location for
// the current platform.
func defaultLibraryRoots() []string {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil
	}
	switch runtime.GOOS {
	case "darwin":
		return []string{filepath.Join(home, "Documents", "OpenSCAD", "libraries")}
	case "windows":
		return []string{filepath.Join(home, "My Documents", "OpenSCAD", "libraries")}
	default:
		return []string{filepath.Join(home, ".local", "share", "OpenSCAD", "libraries")}
	}
}
