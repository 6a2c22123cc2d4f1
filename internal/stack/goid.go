package stack

import (
	"bytes"
	"runtime"
	"strconv"
)

// GoroutineID extracts the current goroutine ID from the runtime stack
// header ("goroutine 123 [running]:"). It returns 0 if the header cannot be
// parsed.
func GoroutineID() uint64 {
	var arr [64]byte
	buf := arr[:runtime.Stack(arr[:], false)]

	const prefix = "goroutine "
	if !bytes.HasPrefix(buf, []byte(prefix)) {
		return 0
	}
	buf = buf[len(prefix):]
	end := bytes.IndexByte(buf, ' ')
	if end < 0 {
		return 0
	}
	gid, err := strconv.ParseUint(string(buf[:end]), 10, 64)
	if err != nil {
		return 0
	}
	return gid
}
