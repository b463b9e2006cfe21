//go:build windows

package main

import (
	"context"

	"github.com/abrezinsky/outletplay/internal/logger"
)

func handleControlSignals(ctx context.Context, appLog *logger.SlogLogger) {}
