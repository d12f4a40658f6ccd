package expect

import "testing"

func TestBufferAppendEvicts(t *testing.T) {
	b := NewBuffer(5)
	if n := b.Append([]byte("abc"), false); n != 0 {
		t.Fatalf("unexpected eviction %d", n)
	}
	if n := b.Append([]byte("defg"), false); n != 2 {
		t.Fatalf("expected 2 evicted bytes, got %d", n)
	}
	if string(b.Bytes()) != "cdefg" {
		t.Fatalf("got %q", b.Bytes())
	}
	if !b.Full() || b.Room() != 0 {
		t.Fail()
	}
}

func TestBufferRemoveNulls(t *testing.T) {
	b := NewBuffer(10)
	b.Append([]byte("a\x00b\x00\x00c"), true)
	if string(b.Bytes()) != "abc" {
		t.Fatalf("got %q", b.Bytes())
	}
	b.Append([]byte("\x00d"), false)
	if string(b.Bytes()) != "abc\x00d" {
		t.Fatalf("got %q", b.Bytes())
	}
}

func TestBufferConsume(t *testing.T) {
	b := NewBuffer(10)
	b.Append([]byte("hello world"[:10]), false)
	b.MarkScanned(8)
	b.Consume(6)
	if string(b.Bytes()) != "worl" {
		t.Fatalf("got %q", b.Bytes())
	}
	if b.Scanned() != 0 {
		t.Fatalf("scan cursor not reset: %d", b.Scanned())
	}
	b.Consume(100)
	if b.Len() != 0 {
		t.Fail()
	}
}

func TestBufferScanCursor(t *testing.T) {
	b := NewBuffer(6)
	b.Append([]byte("abcd"), false)
	b.MarkScanned(10)
	if b.Scanned() != 4 {
		t.Fatalf("cursor past the data: %d", b.Scanned())
	}
	b.MarkScanned(2)
	if b.Scanned() != 4 {
		t.Fatalf("cursor moved back: %d", b.Scanned())
	}
	// evicting 2 bytes moves the cursor with the data
	b.Append([]byte("efgh"), false)
	if b.Scanned() != 2 {
		t.Fatalf("expected cursor 2, got %d", b.Scanned())
	}
	b.ResetScan()
	if b.Scanned() != 0 {
		t.Fail()
	}
}

func TestBufferSetCap(t *testing.T) {
	b := NewBuffer(10)
	b.Append([]byte("0123456789"), false)
	b.SetCap(4, true)
	if string(b.Bytes()) != "6789" || b.Cap() != 4 {
		t.Fatalf("got %q cap %d", b.Bytes(), b.Cap())
	}
	b.SetCap(0, true)
	if b.Cap() != 1 {
		t.Fatalf("capacity below 1: %d", b.Cap())
	}
}

func TestBufferShrinkKeepsBytes(t *testing.T) {
	b := NewBuffer(10)
	b.Append([]byte("0123456789"), false)
	b.SetCap(4, false)
	if string(b.Bytes()) != "0123456789" {
		t.Fatalf("bytes lost on shrink: %q", b.Bytes())
	}
	if !b.Full() || b.Room() != 0 {
		t.Fatalf("expected a full buffer with no room, got room %d", b.Room())
	}
	b.Consume(b.Len())
	if b.Room() != 4 {
		t.Fatalf("got room %d", b.Room())
	}
}
