// Command connpass searches the connpass API and exports saved searches
// as Prometheus metrics.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/kroma-labs/connpass-go/internal/cli"
)

var (
	version   = "dev"
	commit    = "none"
	buildTime = "unknown"
)

func main() {
	build := cli.BuildInfo{Version: version, Commit: commit, BuildTime: buildTime}

	if err := cli.Execute(context.Background(), build, os.Stdout, os.Stderr, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
