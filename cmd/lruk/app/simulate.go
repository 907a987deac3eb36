package app

import (
	"github.com/spf13/cobra"

	entry "github.com/Blackdeer1524/lrukpool/src/app"
)

func initSimulate() {
	var overrides entry.Overrides

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Replays a synthetic page trace through a buffer pool",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return entry.Run(cmd.Context(), &entry.SimulateEntrypoint{
				ConfigPath: rootCmd.Options.ConfigPath,
				Overrides:  overrides,
				Out:        cmd.OutOrStdout(),
			})
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&overrides.Policy, "policy", "", "replacement policy: lru-k or lru")
	flags.Uint64Var(&overrides.K, "k", 0, "history depth of the lru-k policy")
	flags.Uint64Var(&overrides.PoolSize, "pool-size", 0, "number of frames")
	flags.StringVar(&overrides.Workload, "workload", "", "uniform, zipf, scan or mixed")
	flags.IntVar(&overrides.Accesses, "accesses", 0, "trace length")
	flags.BoolVar(&overrides.Compare, "compare", false, "run every policy on the same trace")

	rootCmd.AddCommand(cmd)
}
