package main

import (
	"context"
	"log"
	"os"

	"github.com/mbortnikov/marketauth/internal/cli"
)

func main() {

	ctx := context.Background()

	cfg, args, err := cli.LoadConfig(os.Args[1:])
	if err != nil {
		os.Exit(2)
	}

	app := cli.NewApp(cfg)

	if err := app.Run(ctx, args); err != nil {
		log.Fatalf("%v", err)
	}
}
