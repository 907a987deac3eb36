package main

import (
	"context"

	"github.com/Blackdeer1524/lrukpool/cmd/lruk/app"
)

func main() {
	app.MustExecute(context.Background())
}
