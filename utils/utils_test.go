package utils

import (
	"path/filepath"
	"testing"

	"github.com/mitchellh/go-homedir"
)

func TestExpandPath(t *testing.T) {
	homedir.DisableCache = true
	t.Setenv("HOME", "/home/bolo")
	t.Setenv("BOLO_TEST_DIR", "voices")

	tests := []struct {
		in, want string
	}{
		{"~/cache", "/home/bolo/cache"},
		{"$BOLO_TEST_DIR/hi", "voices/hi"},
		{"/abs/path", "/abs/path"},
	}
	for _, tt := range tests {
		if got := ExpandPath(tt.in); got != tt.want {
			t.Errorf("ExpandPath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestJoinArgs(t *testing.T) {
	if got := JoinArgs([]string{" Hello,", "मेरा", "नाम "}); got != "Hello, मेरा नाम" {
		t.Errorf("JoinArgs = %q", got)
	}
	if got := JoinArgs(nil); got != "" {
		t.Errorf("JoinArgs(nil) = %q", got)
	}
}

func TestCleanDir(t *testing.T) {
	if got := CleanDir(""); got != "" {
		t.Errorf("CleanDir(\"\") = %q", got)
	}
	if got := CleanDir("/tmp/a/../b/"); got != filepath.Clean("/tmp/b") {
		t.Errorf("CleanDir = %q", got)
	}
}
