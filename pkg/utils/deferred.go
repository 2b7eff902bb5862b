// Package utils holds small helpers shared by the command line entry point.
package utils

import (
	"io"
	"sync"
)

// DeferredWriter buffers writes so they can be replayed once the terminal is
// available again. Each Write is kept as a separate record.
type DeferredWriter struct {
	mu      sync.Mutex
	records [][]byte
}

// Write implements io.Writer. The slice is copied because zerolog reuses its buffers.
func (d *DeferredWriter) Write(p []byte) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.records = append(d.records, append([]byte(nil), p...))
	return len(p), nil
}

// Len returns the number of buffered records.
func (d *DeferredWriter) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.records)
}

// Flush writes every buffered record to w in order and clears the buffer.
func (d *DeferredWriter) Flush(w io.Writer) error {
	d.mu.Lock()
	records := d.records
	d.records = nil
	d.mu.Unlock()

	for _, r := range records {
		if _, err := w.Write(r); err != nil {
			return err
		}
	}
	return nil
}
