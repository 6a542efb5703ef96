//go:build linux

package driver

import "golang.org/x/sys/unix"

// defaultSubBatchSize derives a sub-batch size from free system memory.
// The thresholds are coarse; the sub-batch exists only to cap concurrent
// in-flight sequences, and callers with real budgets pass an explicit
// size.
func defaultSubBatchSize() int {
	var info unix.Sysinfo_t
	if err := unix.Sysinfo(&info); err != nil {
		return 4
	}
	free := uint64(info.Freeram) * uint64(info.Unit)
	switch {
	case free >= 32<<30:
		return 16
	case free >= 16<<30:
		return 8
	default:
		return 4
	}
}
