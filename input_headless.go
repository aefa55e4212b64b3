//go:build headless

package main

import (
	"context"
	"errors"
	"log/slog"
)

var errNoKeyboardWindow = errors.New("keyboard window unavailable in headless build, use -burst or -render")

func runKeyboardWindow(ctx context.Context, cfg WindowConfig, bridge *EventBridge, status *runtimeStatus, log *slog.Logger) error {
	return errNoKeyboardWindow
}
