//go:build !linux
// +build !linux

package hostprep

import (
	"runtime"

	"github.com/pkg/errors"
)

var errUnsupported = errors.New("not supported on " + runtime.GOOS)

func pinCPU(int) (func(), error) { return nil, errUnsupported }

func setNice(int) (func(), error) { return nil, errUnsupported }

func lockMemory() (func(), error) { return nil, errUnsupported }
