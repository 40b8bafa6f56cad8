package version

import "fmt"

// Set with -ldflags "-X github.com/photon-storage/sth-explorer/cmd/runtime/version.gitCommit=..."
var (
	gitCommit = "local"
	buildDate = "unknown"
)

// Get returns the version string of the running binary.
func Get() string {
	return fmt.Sprintf("%s/%s", gitCommit, buildDate)
}
