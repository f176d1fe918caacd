package keepass

import (
	"os"
	"os/exec"
	"runtime"

	"github.com/kpx-tools/kpx/internal/errors"
)

const exeName = "keepassxc-cli"

// wellKnownPaths lists the fixed install locations probed before falling
// back to a PATH lookup.
func wellKnownPaths() []string {
	switch runtime.GOOS {
	case "windows":
		return []string{
			`C:\Program Files\KeePassXC\keepassxc-cli.exe`,
			`C:\Program Files (x86)\KeePassXC\keepassxc-cli.exe`,
		}
	case "darwin":
		return []string{
			"/Applications/KeePassXC.app/Contents/MacOS/keepassxc-cli",
			"/opt/homebrew/bin/keepassxc-cli",
			"/usr/local/bin/keepassxc-cli",
		}
	default:
		return []string{
			"/usr/bin/keepassxc-cli",
			"/usr/local/bin/keepassxc-cli",
			"/snap/bin/keepassxc-cli",
			"/var/lib/flatpak/exports/bin/org.keepassxc.KeePassXC",
		}
	}
}

// LocateExe resolves the keepassxc-cli executable. An explicit path wins
// and must exist; otherwise the well-known install locations are checked
// in order, then PATH.
func LocateExe(explicit string) (string, *errors.XError) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", errors.Wrap(errors.CodeExeNotFound, "configured keepassxc-cli path does not exist", map[string]any{"path": explicit}, err)
		}
		return explicit, nil
	}
	for _, p := range wellKnownPaths() {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	if p, err := exec.LookPath(exeName); err == nil {
		return p, nil
	}
	return "", errors.New(errors.CodeExeNotFound, "keepassxc-cli not found in well-known locations or PATH", map[string]any{"candidates": wellKnownPaths()})
}
