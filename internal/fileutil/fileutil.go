package fileutil

import (
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// MaxFilenameBytes caps sanitized names, leaving room for extensions and
// suffixes under the common 255 byte limit.
const MaxFilenameBytes = 200

var filenameReplacer = strings.NewReplacer(
	":", " -",
	"/", "-",
	"\\", "-",
	"*", "",
	"?", "",
	"\"", "'",
	"<", "",
	">", "",
	"|", "-",
)

// SanitizeFilename makes name safe to use as a file name on common filesystems.
func SanitizeFilename(name string) string {
	name = filenameReplacer.Replace(name)
	name = strings.Join(strings.Fields(name), " ")
	return TruncateFilename(strings.Trim(name, ". "), MaxFilenameBytes)
}

// TruncateFilename shortens name to at most maxBytes without splitting a rune.
func TruncateFilename(name string, maxBytes int) string {
	if len(name) <= maxBytes {
		return name
	}
	cut := max(maxBytes, 0)
	for cut > 0 && !utf8.RuneStart(name[cut]) {
		cut--
	}
	return strings.TrimRight(name[:cut], ". ")
}

// MarkdownPath returns the note path for name inside directory.
func MarkdownPath(name, directory string) string {
	return filepath.Join(directory, SanitizeFilename(name)+".md")
}

// FileExists reports whether a regular file exists at path.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// WriteFileWithOverwrite writes data to path, creating parent directories.
// An existing file is left alone unless overwrite is set; the returned bool
// reports whether anything was written.
func WriteFileWithOverwrite(path string, data []byte, perm os.FileMode, overwrite bool) (bool, error) {
	if FileExists(path) && !overwrite {
		return false, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, err
	}
	if err := os.WriteFile(path, data, perm); err != nil {
		return false, err
	}
	return true, nil
}
