package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/flora/cmd/floractl/internal/cli"
	"github.com/MrJamesThe3rd/flora/internal/app"
	"github.com/MrJamesThe3rd/flora/internal/config"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "floractl:", err)
		os.Exit(1)
	}

	app.SetupLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := cli.NewRootCommand(cfg).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "floractl:", err)
		stop()
		os.Exit(1)
	}
}
