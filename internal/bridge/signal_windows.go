//go:build windows

package bridge

import "syscall"

var probeSignal = syscall.Signal(0)
