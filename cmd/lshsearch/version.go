package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// Set with -ldflags "-X main.Version=... -X main.Commit=...".
var (
	Version = "dev"
	Commit  = "unknown"
)

// Short returns the version number only.
func Short() string {
	return Version
}

// Info returns version, commit and platform.
func Info() string {
	return fmt.Sprintf("lshsearch %s (commit %s, %s, %s/%s)", Version, Commit, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

func newVersionCmd() *cobra.Command {
	var short bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if short {
				fmt.Fprintln(cmd.OutOrStdout(), Short())
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), Info())
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&short, "short", "s", false, "Show only the version number")
	return cmd
}
