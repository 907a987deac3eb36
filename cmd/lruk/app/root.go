package app

import (
	"context"

	"github.com/Blackdeer1524/lrukpool/src/cli"
)

var rootCmd = cli.Init("lruk")

func MustExecute(ctx context.Context) {
	initSimulate()
	initVersion()
	rootCmd.MustExecute(ctx)
}
