package main

import (
	"fmt"
	"io"
	"path/filepath"
	"runtime"
)

// printSuccess reports the written entry file and, where the tools exist,
// how to preview and zip the bundle.
func printSuccess(w io.Writer, outputDir, entryName string) {
	absOut, err := filepath.Abs(outputDir)
	if err != nil {
		absOut = outputDir
	}
	entry := filepath.Join(absOut, entryName)
	fmt.Fprintf(w, "\n*** successfully wrote %s and needed support files ***\n", entry)
	if runtime.GOOS == "windows" {
		return
	}
	fmt.Fprintln(w, "To view in OpenSCAD:")
	fmt.Fprintf(w, "  openscad %q\n", entry)
	fmt.Fprintln(w, "To zip for release:")
	fmt.Fprintf(w, "  pushd %q && zip -r %q %q\n",
		filepath.Dir(absOut), filepath.Base(absOut)+".zip", filepath.Base(absOut))
}
