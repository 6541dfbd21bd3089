package util

import (
	"runtime"
)

// HeapAllocMB is the live heap in megabytes, logged after each scan.
func HeapAllocMB() uint64 {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return m.Alloc >> 20
}
