//go:build !windows
// +build !windows

package main

import (
	"context"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// ignoredSignalLogInterval limits how often an ignored signal is logged
const ignoredSignalLogInterval = 5 * time.Second

// signalHandler turns termination signals into a stop request for the
// measurement loop. Other handled signals are logged and ignored.
type signalHandler struct {
	logger  log.FieldLogger
	stop    *atomic.Bool
	ignored rate.Sometimes
}

func newSignalHandler(logger log.FieldLogger, stop *atomic.Bool) *signalHandler {
	return &signalHandler{
		logger:  logger,
		stop:    stop,
		ignored: rate.Sometimes{First: 1, Interval: ignoredSignalLogInterval},
	}
}

func (h *signalHandler) handle(sig os.Signal) {
	switch sig {
	case syscall.SIGINT, syscall.SIGTERM:
		if h.stop.CompareAndSwap(false, true) {
			h.logger.Infof("%s received. Dumping results", signalName(sig))
		}
	default:
		h.ignored.Do(func() {
			h.logger.Warnf("Unknown signal %s received. Ignoring", signalName(sig))
		})
	}
}

func signalName(sig os.Signal) string {
	if s, ok := sig.(syscall.Signal); ok {
		switch s {
		case syscall.SIGINT:
			return "SIGINT"
		case syscall.SIGTERM:
			return "SIGTERM"
		case syscall.SIGHUP:
			return "SIGHUP"
		}
	}
	return sig.String()
}

// watchSignals delivers SIGINT, SIGTERM and SIGHUP to h until the returned
// func is called.
func watchSignals(h *signalHandler) (cancel func()) {
	ctx, cancelCtx := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			select {
			case <-ctx.Done():
				return
			case sig := <-sigCh:
				h.handle(sig)
			}
		}
	}()

	return func() {
		signal.Stop(sigCh)
		cancelCtx()
		<-done
	}
}
