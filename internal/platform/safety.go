package platform

import (
	"os"
	"path/filepath"
	"strings"
)

// devSandbox is the directory under os.TempDir() that receives the notes of
// dev runs.
const devSandbox = "tally-dev"

// IsDevRun reports whether the binary was built by `go run` or `go test`:
// both leave it in the temp directory, and test binaries end in ".test".
func IsDevRun() bool {
	exe, err := os.Executable()
	if err != nil {
		return false
	}
	if isUnder(os.TempDir(), exe) {
		return true
	}
	return strings.HasSuffix(exe, ".test") || strings.HasSuffix(exe, ".test.exe")
}

// ResolveStorePath returns where a file-based store really lives. Without
// forceTemp that is userPath ("." when empty). With it, paths already inside
// the temp directory are kept and everything else moves to the dev sandbox:
//
//	/home/me/work/.tally          -> $TMP/tally-dev/work/.tally
//	/home/me/work/.tally/tally.db -> $TMP/tally-dev/.tally/tally.db
//	.                             -> $TMP/tally-dev/default
func ResolveStorePath(userPath string, forceTemp bool) string {
	if !forceTemp {
		if userPath == "" {
			return "."
		}
		return userPath
	}

	clean := filepath.Clean(userPath)
	if filepath.IsAbs(clean) && isUnder(os.TempDir(), clean) {
		return clean
	}
	return filepath.Join(os.TempDir(), devSandbox, sandboxName(clean))
}

// sandboxName keeps the last two elements of a store path, so the stores of
// two workspaces do not share a sandbox. Traversal elements are dropped.
func sandboxName(clean string) string {
	base := filepath.Base(clean)
	if base == "." || base == ".." || base == string(os.PathSeparator) {
		return "default"
	}
	parent := filepath.Base(filepath.Dir(clean))
	if parent == "." || parent == ".." || parent == string(os.PathSeparator) {
		return base
	}
	return filepath.Join(parent, base)
}

func isUnder(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(os.PathSeparator))
}
