package secmem

import (
	"bytes"
	"testing"

	"lukechampine.com/frand"
)

func TestZero(t *testing.T) {
	b := frand.Bytes(64)
	Zero(b)
	if !bytes.Equal(b, make([]byte, 64)) {
		t.Fatal("buffer not zeroed")
	}
	Zero(nil) // must not panic
}

func TestBuffer(t *testing.T) {
	buf := NewBuffer(32)
	b := buf.Bytes()
	if len(b) != 32 {
		t.Fatalf("expected 32-byte buffer, got %v", len(b))
	}
	frand.Read(b)
	if err := buf.Close(); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(b, make([]byte, 32)) {
		t.Fatal("buffer not zeroed on close")
	}
	if buf.Locked() {
		t.Fatal("buffer still reports locked after close")
	}
	// closing twice must not unlock twice
	if err := buf.Close(); err != nil {
		t.Fatal(err)
	}
}
