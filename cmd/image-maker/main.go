package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ironsheep/image-maker/internal/cli"
	imerrors "github.com/ironsheep/image-maker/internal/errors"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cli.SetVersion(Version, GitCommit, BuildTime)
	if err := cli.Execute(ctx, os.Getenv); err != nil {
		if errors.Is(err, context.Canceled) {
			os.Exit(130) // Standard shell convention for SIGINT
		}
		fmt.Fprintln(os.Stderr, "Error:", err)
		switch imerrors.GetCode(err) {
		case imerrors.ErrCodeConfiguration, imerrors.ErrCodeInvalidInput:
			os.Exit(2) // Usage error: nothing was generated
		}
		os.Exit(1)
	}
}
