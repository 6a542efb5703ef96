//go:build !linux

package driver

func defaultSubBatchSize() int {
	return 4
}
