// Package settings carries build metadata and the per-run options shared by
// the fxpick CLI and the packages it drives.
package settings

import "time"

// CliBinaryName is the canonical binary name for this tool.
const CliBinaryName = "fxpick"

// VersionInformation is populated at build time via ldflags.
var VersionInformation = VersionInfo{
	Commit:       "unknown",
	BuildVersion: "v0.0.0-nightly",
	BuildTime:    "unknown",
}

// VersionInfo holds metadata about the build.
type VersionInfo struct {
	Commit       string `json:"commit" yaml:"commit"`
	BuildVersion string `json:"version" yaml:"version"`
	BuildTime    string `json:"buildTime" yaml:"buildTime"`
}

// SourceSettings selects where candidates come from. File wins over URL.
type SourceSettings struct {
	URL     string
	File    string
	Base    string
	Retries int
	Timeout time.Duration
}

// Run holds the options of a single execution.
type Run struct {
	MinLogLevel int8
	LogFile     string
	ConfigFile  string
	Source      SourceSettings
	NoColor     bool
	ExitOnError bool
	// Press holds simulated key tokens; when set the UI renders one
	// snapshot and exits.
	Press  []string
	Width  int
	Height int
}

// NewCliParams returns the defaults used by the CLI before flags apply.
func NewCliParams() *Run {
	return &Run{
		MinLogLevel: 0,
		ExitOnError: true,
	}
}

// Headless reports whether the run renders a snapshot instead of starting
// an interactive program.
func (r *Run) Headless() bool {
	return r != nil && len(r.Press) > 0
}
