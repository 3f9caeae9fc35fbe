//go:build unix

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/bft-labs/threadworker/pkg/log"
)

type pauser interface {
	Pause() error
	Resume() error
}

// notifyControl pauses on SIGUSR1 and resumes on SIGUSR2 until ctx is done.
// The returned function stops signal delivery.
func notifyControl(ctx context.Context, p pauser, logger log.Logger) func() {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGUSR1, syscall.SIGUSR2)

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case sig := <-ch:
				var err error
				if sig == syscall.SIGUSR1 {
					err = p.Pause()
				} else {
					err = p.Resume()
				}
				if err != nil {
					logger.Warn("signal ignored", log.Stringer("signal", sig), log.Err(err))
				}
			}
		}
	}()

	return func() { signal.Stop(ch) }
}
