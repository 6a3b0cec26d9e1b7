package geobench

import (
	"os/exec"
	"strings"
)

// GitCommit returns the short hash of the checked-out commit, or "unknown"
// outside a git work tree.
func GitCommit() string {
	out, err := exec.Command("git", "rev-parse", "--short", "HEAD").Output()
	if err != nil {
		return "unknown"
	}
	return strings.TrimSpace(string(out))
}
