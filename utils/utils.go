// Package utils provides utility functions.
package utils

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-homedir"
)

// ExpandPath expands tilde and all environment variables from the given
// path.
func ExpandPath(path string) string {
	s, err := homedir.Expand(path)
	if err == nil {
		return os.ExpandEnv(s)
	}
	return os.ExpandEnv(path)
}

// JoinArgs joins command line arguments into a single utterance.
func JoinArgs(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

// CleanDir expands and cleans a directory path. An empty path stays empty.
func CleanDir(path string) string {
	if path == "" {
		return ""
	}
	return filepath.Clean(ExpandPath(path))
}
