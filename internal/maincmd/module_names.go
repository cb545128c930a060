package maincmd

import (
	"path/filepath"
	"strings"
)

// moduleNameFromPath derives a module's name from its file path the same
// way module.ResolveImportName resolves an unaliased import: the file's
// base name with its extension stripped, so "dir/foo.holo" imported as
// "foo" matches the module built from that same path on the CLI.
func moduleNameFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func moduleNamesFromPaths(paths []string) []string {
	names := make([]string, len(paths))
	for i, p := range paths {
		names[i] = moduleNameFromPath(p)
	}
	return names
}
