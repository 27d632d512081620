// +build debug

package engine

import (
	"bytes"
	"fmt"
)

type lumberjack struct {
	buf *bytes.Buffer
}

func makeLumberJack() lumberjack {
	return lumberjack{buf: new(bytes.Buffer)}
}

func (l lumberjack) log(msg string, args ...interface{}) {
	fmt.Fprintf(l.buf, msg, args...)
	l.buf.WriteByte('\n')
}

func (l lumberjack) resetLog() { l.buf.Reset() }

func (l lumberjack) ExecLog() string { return l.buf.String() }
