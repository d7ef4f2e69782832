package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/vk/nfbatch/internal/app"
	"github.com/vk/nfbatch/internal/cli"
)

// main is the entrypoint for the nfbatch application. The process exit code
// is the pipeline status: 0 on success, 1 on failure, 2 on usage errors.
func main() {
	// Use a minimal logger until the full one is configured.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	status, err := run(os.Stdout, os.Args[1:])
	if err != nil {
		if exitErr, ok := err.(*cli.ExitError); ok {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	os.Exit(status)
}

// run encapsulates the main application logic for easier testing and error
// handling.
func run(outW io.Writer, args []string) (int, error) {
	appConfig, shouldExit, err := cli.Parse(args, outW)
	if err != nil {
		return 1, err
	}
	if shouldExit {
		return 0, nil
	}

	nfbatchApp := app.NewApp(outW, appConfig)
	return nfbatchApp.Run(context.Background())
}
