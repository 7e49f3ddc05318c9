package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

func newVersionCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		// No config or API key needed.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(a.stdout, "connpass %s (commit %s, built %s, %s %s/%s)\n",
				a.build.Version, a.build.Commit, a.build.BuildTime,
				runtime.Version(), runtime.GOOS, runtime.GOARCH)
		},
	}
}
