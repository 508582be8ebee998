// Package secmem provides helpers for holding secret material in memory:
// constant-time zeroization and page locking where the platform supports it.
package secmem

import "crypto/subtle"

// Zero overwrites b with zeroes. subtle.ConstantTimeCopy prevents the
// compiler from eliding the writes.
func Zero(b []byte) {
	if len(b) == 0 {
		return
	}
	subtle.ConstantTimeCopy(1, b, make([]byte, len(b)))
}

// A Buffer is a byte buffer pinned to physical memory while in use. Close
// zeroes the contents and releases the pin.
type Buffer struct {
	b      []byte
	locked bool
}

// NewBuffer allocates a pinned buffer of length n. Pinning is best-effort: on
// platforms without mlock, or when the lock limit is exhausted, the buffer is
// still usable but may be paged out.
func NewBuffer(n int) *Buffer {
	b := make([]byte, n)
	return &Buffer{b: b, locked: lock(b) == nil}
}

// Bytes returns the underlying slice. The slice must not be retained after
// Close.
func (buf *Buffer) Bytes() []byte { return buf.b }

// Locked reports whether the buffer is pinned to physical memory.
func (buf *Buffer) Locked() bool { return buf.locked }

// Close zeroes the buffer and releases the pin.
func (buf *Buffer) Close() error {
	Zero(buf.b)
	if buf.locked {
		buf.locked = false
		return unlock(buf.b)
	}
	return nil
}
