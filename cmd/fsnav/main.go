// fsnav - command-line browser for OpenList-compatible file servers.
//
// Build with version information:
//
//	go build -ldflags "-X github.com/fsnav/fsnav/internal/version.Version=v0.3.0 \
//	  -X github.com/fsnav/fsnav/internal/version.BuildTime=$(date -u +%Y-%m-%dT%H:%M:%SZ)" ./cmd/fsnav
package main

import (
	"fmt"
	"os"

	"github.com/fsnav/fsnav/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
