//go:build !unix && !windows

package osc

import "syscall"

func enableBroadcast(_, _ string, _ syscall.RawConn) error {
	return nil
}
