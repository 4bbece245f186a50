package version

import (
	"fmt"
	"runtime"
)

// Values are injected at build time through the linker.
var (
	ver    string //nolint:gochecknoglobals
	date   string //nolint:gochecknoglobals
	commit string //nolint:gochecknoglobals
)

// Info - version info.
type Info struct {
	Version string
	Date    string
	Commit  string
}

// GetInfo - returns build version info.
func GetInfo() Info {
	if ver == "" {
		ver = "0.0.0"
	}

	return Info{
		Version: ver,
		Date:    date,
		Commit:  commit,
	}
}

// UserAgent - returns the user agent string sent by the HTTP engine.
func UserAgent() string {
	return fmt.Sprintf("scim2/%s (%s/%s)", GetInfo().Version, runtime.GOOS, runtime.GOARCH)
}
