package version

import (
	"regexp"
	"runtime/debug"
	"strings"
)

// Set through -ldflags "-X github.com/taskcluster/procsup/commands/version.<name>=<value>"
// by release builds; tags holds the newline separated output of
// `git tag --points-at HEAD`.
var (
	tags     = ""
	revision = ""
)

var (
	semverTag  = regexp.MustCompile(`^v(\d+\.\d+\.\d+)$`)
	commitHash = regexp.MustCompile(`^[0-9a-f]{40}$`)
)

// readBuildInfo is replaced in tests.
var readBuildInfo = debug.ReadBuildInfo

// Version returns the semantic version of this build without the leading v,
// taken from the release tags or else the main module version. Empty if
// neither is a release version.
func Version() string {
	for _, tag := range strings.Fields(tags) {
		if m := semverTag.FindStringSubmatch(tag); m != nil {
			return m[1]
		}
	}
	if info, ok := readBuildInfo(); ok {
		if m := semverTag.FindStringSubmatch(info.Main.Version); m != nil {
			return m[1]
		}
	}
	return ""
}

// Revision returns the git commit this build was made from, or empty string
// if unknown.
func Revision() string {
	if commitHash.MatchString(revision) {
		return revision
	}
	info, ok := readBuildInfo()
	if !ok {
		return ""
	}
	for _, setting := range info.Settings {
		if setting.Key == "vcs.revision" && commitHash.MatchString(setting.Value) {
			return setting.Value
		}
	}
	return ""
}
