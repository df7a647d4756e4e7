package config

import (
	"os"
	"path/filepath"
	"strings"
)

const appDirName = "finsight"

// DataDir is where finsight keeps its database and model file when the
// config does not say otherwise: $XDG_DATA_HOME/finsight, falling back to
// ~/.local/share/finsight, or the working directory without a home.
func DataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, appDirName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".local", "share", appDirName)
}

// ExpandPath resolves a leading ~ to the user's home directory and then
// substitutes $VAR and ${VAR} references. A path it cannot resolve is
// returned with only the variables substituted.
func ExpandPath(path string) string {
	if path == "" {
		return ""
	}

	if rest, ok := strings.CutPrefix(path, "~"); ok && (rest == "" || rest[0] == '/' || rest[0] == filepath.Separator) {
		if home, err := os.UserHomeDir(); err == nil {
			path = home + rest
		}
	}

	path = os.ExpandEnv(path)
	if path == "" {
		return ""
	}
	return filepath.Clean(path)
}

// expandPaths rewrites every file setting in place.
func (c *Config) expandPaths() {
	for _, p := range []*string{
		&c.Database.Path,
		&c.Classifier.ModelPath,
		&c.Classification.TaxonomyFile,
	} {
		*p = ExpandPath(*p)
	}
}
