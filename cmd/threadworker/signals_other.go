//go:build !unix

package main

import (
	"context"

	"github.com/bft-labs/threadworker/pkg/log"
)

type pauser interface {
	Pause() error
	Resume() error
}

// notifyControl is a no-op where SIGUSR1 and SIGUSR2 do not exist.
func notifyControl(ctx context.Context, p pauser, logger log.Logger) func() {
	return func() {}
}
