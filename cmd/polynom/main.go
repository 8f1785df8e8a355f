// Command polynom reads six polynomials, composes
// ∫(P1 + P2·P3) + (P4' + P5'')·P6 and prints the result with its value at
// the configured point.
//
// Usage:
//
//	polynom [--config polynom.yaml] [--point 2] [--dir data] [P1 ... P6]
//	polynom show FILE
//	polynom eval FILE X...
//	polynom watch
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(os.Stdout, os.Stderr).ExecuteContext(ctx); err != nil {
		slog.Error("polynom failed", "err", err)
		stop()
		os.Exit(1)
	}
}
