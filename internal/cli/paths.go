package cli

import (
	"os"
	"path/filepath"
	"strings"
)

// outputSuffix is appended to the input file's stem when deriving output names.
const outputSuffix = "_transkribus"

// batchOutputDir is the default output directory name for batch conversion,
// created next to the input files.
const batchOutputDir = "transkribus_converted"

// derivedName returns the default output file name for an input file,
// e.g. "page_0001.xml" becomes "page_0001_transkribus.xml".
func derivedName(input string) string {
	base := filepath.Base(input)
	ext := filepath.Ext(base)
	return strings.TrimSuffix(base, ext) + outputSuffix + ".xml"
}

// deriveOutputPath resolves the output path for a single conversion. An empty
// out means next to the input; a path that is an existing directory or ends in
// a separator means the derived name inside that directory.
func deriveOutputPath(input, out string) string {
	if out == "" {
		return filepath.Join(filepath.Dir(input), derivedName(input))
	}
	if strings.HasSuffix(out, string(os.PathSeparator)) || strings.HasSuffix(out, "/") {
		return filepath.Join(out, derivedName(input))
	}
	if info, err := os.Stat(out); err == nil && info.IsDir() {
		return filepath.Join(out, derivedName(input))
	}
	return out
}

// cacheDir returns the cache directory using the XDG standard
// (~/.cache/pageconv/ unless XDG_CACHE_HOME is set).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
