//go:build !windows

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/abrezinsky/outletplay/internal/logger"
)

// handleControlSignals lets an operator adjust logging without a restart
func handleControlSignals(ctx context.Context, appLog *logger.SlogLogger) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGUSR1, syscall.SIGUSR2)
	defer signal.Stop(sigs)

	for {
		select {
		case <-ctx.Done():
			return
		case sig := <-sigs:
			switch sig {
			case syscall.SIGUSR1:
				appLog.Info("HTTP request logging toggled", "enabled", toggleHTTPLogging(appLog))
			case syscall.SIGUSR2:
				level := cycleLogLevel(appLog)
				appLog.Warn("Log level changed", "level", level)
			}
		}
	}
}
