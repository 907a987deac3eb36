package app

import (
	"fmt"
	"runtime/debug"

	"github.com/spf13/cobra"
)

func initVersion() {
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Prints the build version",
		Run: func(cmd *cobra.Command, _ []string) {
			version := "devel"
			if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
				version = info.Main.Version
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	})
}
