// Package misc holds small pieces of build/runtime information shared
// across the program that do not belong to any single component.
package misc

import "runtime/debug"

const appName = "stylepiped"

var (
	version = "dev"
	gitHash = "unknown"
)

// GetAppName returns the program's short name, used for log naming and
// default file names.
func GetAppName() string {
	return appName
}

// GetVersion returns the build version, set via -ldflags at release time or
// derived from Go module build info when running from source.
func GetVersion() string {
	if version != "dev" {
		return version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return version
}

// GetGitHash returns the VCS revision embedded by the Go toolchain, or
// "unknown" when unavailable (e.g. building outside of a checkout).
func GetGitHash() string {
	if gitHash != "unknown" {
		return gitHash
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, s := range info.Settings {
			if s.Key == "vcs.revision" {
				return s.Value
			}
		}
	}
	return gitHash
}
