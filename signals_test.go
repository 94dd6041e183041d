//go:build !windows
// +build !windows

package main

import (
	"os"
	"sync/atomic"
	"syscall"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignalHandlerStops(t *testing.T) {
	for _, sig := range []os.Signal{syscall.SIGINT, syscall.SIGTERM} {
		t.Run(signalName(sig), func(t *testing.T) {
			logger, hook := test.NewNullLogger()
			stop := new(atomic.Bool)
			h := newSignalHandler(logger, stop)

			h.handle(sig)
			h.handle(sig)

			assert.True(t, stop.Load())
			require.Len(t, hook.AllEntries(), 1, "a repeated signal is not logged again")
			assert.Equal(t, log.InfoLevel, hook.LastEntry().Level)
			assert.Equal(t, signalName(sig)+" received. Dumping results", hook.LastEntry().Message)
		})
	}
}

func TestSignalHandlerIgnoresOthers(t *testing.T) {
	logger, hook := test.NewNullLogger()
	stop := new(atomic.Bool)
	h := newSignalHandler(logger, stop)

	h.handle(syscall.SIGHUP)
	h.handle(syscall.SIGHUP)
	h.handle(syscall.SIGUSR1)

	assert.False(t, stop.Load())
	require.Len(t, hook.AllEntries(), 1, "ignored signals are rate limited")
	assert.Equal(t, log.WarnLevel, hook.LastEntry().Level)
	assert.Equal(t, "Unknown signal SIGHUP received. Ignoring", hook.LastEntry().Message)
}

func TestWatchSignals(t *testing.T) {
	logger, hook := test.NewNullLogger()
	stop := new(atomic.Bool)
	cancel := watchSignals(newSignalHandler(logger, stop))
	defer cancel()

	require.NoError(t, syscall.Kill(os.Getpid(), syscall.SIGHUP))
	require.Eventually(t, func() bool {
		return len(hook.AllEntries()) == 1
	}, 5*time.Second, 10*time.Millisecond)
	assert.False(t, stop.Load())
}
