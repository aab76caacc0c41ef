// Package debug carries build-time debug switches shared across provar components.
package debug

import (
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
)

// Stack returns a formatted stack trace of the calling goroutine.
func Stack() string {
	var sbb strings.Builder
	WriteStack(&sbb)
	return sbb.String()
}

// WriteStack writes a formatted stack trace of the calling goroutine into sbb.
// Unless the debug build tag is set, frames are reduced to their base file name
// and runtime internals are skipped.
func WriteStack(sbb *strings.Builder) {
	// derived from: https://golang.org/pkg/runtime/#example_Frames
	pc := make([]uintptr, 10)
	n := runtime.Callers(3, pc)
	if n == 0 {
		return
	}
	pc = pc[:n]
	frames := runtime.CallersFrames(pc)
	for {
		frame, more := frames.Next()
		fe := strings.Split(frame.Function, "/")
		function := fe[len(fe)-1]
		file := frame.File

		if !Debug {
			if strings.Contains(function, "runtime.gopanic") {
				continue
			}
			file = filepath.Base(file)
		}

		sbb.WriteString(function)
		sbb.WriteByte('\n')
		sbb.WriteByte('\t')
		sbb.WriteString(file)
		sbb.WriteByte(':')
		sbb.WriteString(strconv.Itoa(frame.Line))
		sbb.WriteByte('\n')
		if !more {
			break
		}
	}
}
