// Package buildinfo exposes version data stamped in at link time:
//
//	go build -ldflags "-X github.com/dmitrijs2005/onboarding/internal/buildinfo.Version=v1.2.0" ./cmd/cli
package buildinfo

import (
	"fmt"
	"io"
)

const na = "N/A"

var (
	Version = na
	Date    = na
	Commit  = na
)

func value(s string) string {
	if s == "" {
		return na
	}
	return s
}

// PrintBuildData writes the version banner to w.
func PrintBuildData(w io.Writer) {
	fmt.Fprintf(w, "Build version: %s\n", value(Version))
	fmt.Fprintf(w, "Build date: %s\n", value(Date))
	fmt.Fprintf(w, "Build commit: %s\n", value(Commit))
}
