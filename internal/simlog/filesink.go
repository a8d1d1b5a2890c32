// SPDX-License-Identifier: GPL-3.0

package simlog

import (
	"bufio"
	"fmt"
	"io"
	"sync"

	"github.com/wnsim/dcfsim/internal/simclock"
)

// FileSink renders log lines in the exact "time;entity;code;level message"
// layout of the external log-file interface (spec section 6.3), which is
// explicitly out of scope for internal logging semantics but is still a
// contract other tooling may depend on, so it is kept as a narrow,
// dedicated writer rather than folded into the general Logger.
type FileSink struct {
	mu sync.Mutex
	w  *bufio.Writer
}

// NewFileSink wraps w (typically an opened *os.File) with buffered output.
func NewFileSink(w io.Writer) *FileSink {
	return &FileSink{w: bufio.NewWriter(w)}
}

// Line writes one record. code is a component-defined short event code
// (e.g. a Kind.String() or a NACK reason); level is the severity tag.
func (f *FileSink) Line(now simclock.Clock, entity, code, level, msg string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, err := fmt.Fprintf(f.w, "%s;%s;%s;%s %s\n", now.String(), entity, code, level, msg)
	return err
}

// Flush pushes buffered output to the underlying writer.
func (f *FileSink) Flush() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.w.Flush()
}
