// Package settings provides build metadata and the per-run options the ye
// CLI hands to the editor.
package settings

// CliBinaryName is the canonical binary name for this tool.
const CliBinaryName = "ye"

// VersionInformation is populated at build time via ldflags.
var VersionInformation = VersionInfo{
	Commit:       "unknown",
	BuildVersion: "v0.0.0-nightly",
	BuildTime:    "unknown",
}

// VersionInfo holds metadata about the build.
type VersionInfo struct {
	Commit       string
	BuildVersion string
	BuildTime    string
}

// Run holds the options of a single invocation.
type Run struct {
	MinLogLevel int8
	LogFile     string
	ConfigFile  string
	NoColor     bool
	Dialect     string
	SchemaPath  string
	// Press is replayed as keystrokes before the first frame.
	Press    string
	Snapshot bool
	Output   string
	Width    int
	Height   int
}

// NewCliParams returns the defaults used when flags are not given.
func NewCliParams() *Run {
	return &Run{
		Width:  80,
		Height: 24,
	}
}

// Headless reports whether the run never starts the interactive program.
func (r *Run) Headless() bool {
	return r.Snapshot || r.Output != ""
}
