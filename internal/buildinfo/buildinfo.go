// Package buildinfo holds version data injected at link time:
//
//	go build -ldflags "-X github.com/mukimuddin/deadbox/internal/buildinfo.Version=v1.0.0 \
//	  -X github.com/mukimuddin/deadbox/internal/buildinfo.Date=$(date -u +%F) \
//	  -X github.com/mukimuddin/deadbox/internal/buildinfo.Commit=$(git rev-parse --short HEAD)"
package buildinfo

import (
	"fmt"
	"io"
)

var (
	Version = "N/A"
	Date    = "N/A"
	Commit  = "N/A"
)

func PrintBuildData(w io.Writer) {
	fmt.Fprintf(w, "Build version: %s\n", Version)
	fmt.Fprintf(w, "Build date: %s\n", Date)
	fmt.Fprintf(w, "Build commit: %s\n", Commit)
}
