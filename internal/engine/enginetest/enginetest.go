// Package enginetest provides a stand-in engine executable for tests.
//
// The fake engine accepts the same command line as the real one
// (`[args] -d <dir> -s <script>`) and runs the script with /bin/sh, so test
// "engine scripts" are plain shell scripts.
package enginetest

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

const fakeEngine = `#!/bin/sh
script=""
while [ $# -gt 0 ]; do
	case "$1" in
	-s) script="$2"; shift 2 ;;
	-d) shift 2 ;;
	*) shift ;;
	esac
done
[ -n "$script" ] || { echo "fake engine: no -s script" >&2; exit 64; }
exec /bin/sh "$script"
`

// FakeEngine writes the stand-in engine into a temp dir and returns its
// path. The test is skipped when /bin/sh is not available.
func FakeEngine(t testing.TB) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake engine needs a POSIX shell")
	}
	if _, err := os.Stat("/bin/sh"); err != nil {
		t.Skip("/bin/sh not available")
	}
	path := filepath.Join(t.TempDir(), "fake-siril")
	if err := os.WriteFile(path, []byte(fakeEngine), 0o755); err != nil {
		t.Fatalf("write fake engine: %v", err)
	}
	return path
}

// Script writes a shell script body into dir/name and returns its path.
func Script(t testing.TB, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o644); err != nil {
		t.Fatalf("write script %s: %v", name, err)
	}
	return path
}
