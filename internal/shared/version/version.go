// Package version carries build metadata, overridden at link time:
//
//	go build -ldflags "-X layerguard/internal/shared/version.Version=v1.2.0"
package version

var (
	Version = "dev"
	Commit  = ""
)

// String renders the version with the commit when one was stamped.
func String() string {
	if Commit == "" {
		return Version
	}
	return Version + " (" + Commit + ")"
}
