// Package version provides the version command, the version number and git
// revision are also exported for use by other packages.
package version
