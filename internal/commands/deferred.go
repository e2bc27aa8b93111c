package commands

import (
	"bytes"
	"io"
	"sync"
)

// DeferredWriter buffers log output while a terminal UI owns the screen so it
// can be written out once the UI exits
type DeferredWriter struct {
	buf bytes.Buffer
	mu  sync.Mutex
}

func (w *DeferredWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.buf.Write(p)
}

// Flush writes everything buffered so far to out and resets the buffer
func (w *DeferredWriter) Flush(out io.Writer) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, err := w.buf.WriteTo(out)
	return err
}
