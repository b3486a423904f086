package installer

import (
	"path"
	"path/filepath"
	"strings"

	securejoin "github.com/cyphar/filepath-securejoin"
)

// Skip reasons reported in logs and counted in Result.Skipped.
const (
	skipUnsafePath    = "unsafe_path"
	skipOutsidePrefix = "outside_prefix"
	skipPrefixMarker  = "prefix_marker"
)

// enclosedComponents splits an archive entry name into clean path components.
// It returns ok=false for names that are absolute, carry a drive letter or NUL
// byte, or climb above the extraction root. Backslashes count as separators
// since Windows zip tools still emit them.
func enclosedComponents(name string) ([]string, bool) {
	if strings.ContainsRune(name, 0) {
		return nil, false
	}
	n := strings.ReplaceAll(name, `\`, "/")
	if strings.HasPrefix(n, "/") || hasDriveLetter(n) {
		return nil, false
	}
	clean := path.Clean(n)
	if clean == ".." || strings.HasPrefix(clean, "../") {
		return nil, false
	}
	if clean == "." {
		return nil, true
	}
	return strings.Split(clean, "/"), true
}

func hasDriveLetter(n string) bool {
	if len(n) < 2 || n[1] != ':' {
		return false
	}
	c := n[0]
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

// loaderRelPath keeps only entries under the loader prefix folder, with that
// folder stripped.
func loaderRelPath(name, prefix string) ([]string, string) {
	parts, ok := enclosedComponents(name)
	if !ok {
		return nil, skipUnsafePath
	}
	if len(parts) == 0 || !strings.EqualFold(parts[0], prefix) {
		return nil, skipOutsidePrefix
	}
	if len(parts) == 1 {
		return nil, skipPrefixMarker
	}
	return parts[1:], ""
}

func modRelPath(name string) ([]string, string) {
	parts, ok := enclosedComponents(name)
	if !ok || len(parts) == 0 {
		return nil, skipUnsafePath
	}
	return parts, ""
}

// resolveDest joins rel under root. Symlinks already on disk are resolved
// inside root, so a link planted in the Mods folder cannot redirect a write.
func resolveDest(root string, rel []string) (string, error) {
	return securejoin.SecureJoin(root, filepath.Join(rel...))
}
