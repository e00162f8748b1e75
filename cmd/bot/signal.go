package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"
)

// WaitForShutdown blocks until the process is asked to stop and returns the
// signal that stopped it.
func WaitForShutdown() os.Signal {
	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	defer signal.Stop(sc)

	sig := <-sc
	slog.Info("Shutdown signal received", "signal", sig.String())
	return sig
}
