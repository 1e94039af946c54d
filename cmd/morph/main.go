package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/jacoelho/morph/internal/config"
	"github.com/jacoelho/morph/internal/runner"
)

func main() {
	exitCode := run(os.Args)
	os.Exit(exitCode)
}

func run(args []string) int {
	cfg, exitResult := config.Parse(args)
	if exitResult != nil {
		exitResult.Print()
		return exitResult.ExitCode
	}

	logger := log.NewWithOptions(os.Stderr, log.Options{
		Prefix: "morph",
		Level:  log.WarnLevel,
	})
	if cfg.Debug {
		logger.SetLevel(log.DebugLevel)
	}

	r, exitResult := runner.New(cfg, logger)
	if exitResult != nil {
		exitResult.Print()
		return exitResult.ExitCode
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	return r.Run(ctx)
}
