// Package app wires configuration, engines and front ends into the
// newtoncalc command.
package app

import (
	"encoding/json"
	"fmt"
	"io"
	"runtime"
)

// Build metadata, set with -ldflags, e.g.
//
//	go build -ldflags="-X github.com/agbru/newtoncalc/internal/app.Version=v0.3.0 -X github.com/agbru/newtoncalc/internal/app.Commit=$(git rev-parse --short HEAD)" ./cmd/newtoncalc
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

// HasVersionFlag reports whether args contain --version, -version or -V,
// wherever they appear.
func HasVersionFlag(args []string) bool {
	for _, arg := range args {
		if arg == "--version" || arg == "-version" || arg == "-V" {
			return true
		}
	}
	return false
}

// VersionData is the build and runtime description of the binary.
type VersionData struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
}

func GetVersionInfo() VersionData {
	return VersionData{
		Version:   Version,
		Commit:    Commit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
	}
}

// PrintVersion writes a human-readable version block.
func PrintVersion(out io.Writer) {
	info := GetVersionInfo()
	fmt.Fprintf(out, "newtoncalc %s\n", info.Version)
	fmt.Fprintf(out, "  Commit:     %s\n", info.Commit)
	fmt.Fprintf(out, "  Built:      %s\n", info.BuildDate)
	fmt.Fprintf(out, "  Go version: %s\n", info.GoVersion)
	fmt.Fprintf(out, "  OS/Arch:    %s/%s\n", info.OS, info.Arch)
}

// PrintVersionJSON writes the version as a single JSON object, for -json.
func PrintVersionJSON(out io.Writer) error {
	return json.NewEncoder(out).Encode(GetVersionInfo())
}
