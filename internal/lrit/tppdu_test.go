package lrit

import (
	"bytes"
	"testing"
)

func TestTPPDUFeedAllAtOnce(t *testing.T) {
	wire := buildTPPDU(100, FlagUnsegmented, 7, []byte("hello, transport layer"))

	tp := NewTPPDU(5)
	n := tp.Feed(wire)
	if n != len(wire) {
		t.Fatalf("consumed %d of %d bytes", n, len(wire))
	}
	if !tp.HeaderComplete() || !tp.PayloadComplete() {
		t.Fatal("packet should be complete")
	}
	if tp.APID() != 100 {
		t.Errorf("APID = %d, want 100", tp.APID())
	}
	if tp.SequenceFlag() != FlagUnsegmented {
		t.Errorf("flag = %d, want %d", tp.SequenceFlag(), FlagUnsegmented)
	}
	if tp.SequenceCount() != 7 {
		t.Errorf("seq = %d, want 7", tp.SequenceCount())
	}
	if tp.VCID() != 5 {
		t.Errorf("vcid = %d, want 5", tp.VCID())
	}
	if !tp.VerifyCRC() {
		t.Error("CRC should verify")
	}
	if !bytes.Equal(tp.Payload(), []byte("hello, transport layer")) {
		t.Errorf("payload = %q", tp.Payload())
	}
}

// Feeding one byte at a time must assemble the identical packet.
func TestTPPDUFeedByteByByte(t *testing.T) {
	payload := bytes.Repeat([]byte{0xA5, 0x0F}, 300)
	wire := buildTPPDU(42, FlagFirst, 16383, payload)

	whole := NewTPPDU(1)
	if n := whole.Feed(wire); n != len(wire) {
		t.Fatalf("consumed %d of %d", n, len(wire))
	}

	dribble := NewTPPDU(1)
	for i := range wire {
		n := dribble.Feed(wire[i : i+1])
		if n != 1 {
			t.Fatalf("byte %d: consumed %d", i, n)
		}
	}

	if !dribble.PayloadComplete() {
		t.Fatal("dribbled packet incomplete")
	}
	if !bytes.Equal(whole.Payload(), dribble.Payload()) {
		t.Fatal("payloads differ between feeding strategies")
	}
	if whole.SequenceCount() != dribble.SequenceCount() {
		t.Fatal("sequence counts differ")
	}
}

func TestTPPDUFeedStopsAtDeclaredLength(t *testing.T) {
	wire := buildTPPDU(9, FlagUnsegmented, 0, []byte("abc"))
	extra := append(append([]byte{}, wire...), 0xDE, 0xAD)

	tp := NewTPPDU(0)
	n := tp.Feed(extra)
	if n != len(wire) {
		t.Fatalf("consumed %d, want %d (must stop at the declared length)", n, len(wire))
	}
	if !tp.PayloadComplete() {
		t.Fatal("packet should be complete")
	}
}

func TestTPPDUCRCMismatch(t *testing.T) {
	wire := buildTPPDU(9, FlagUnsegmented, 0, []byte("abcdef"))
	wire[8] ^= 0x01 // flip a payload bit

	tp := NewTPPDU(0)
	tp.Feed(wire)
	if !tp.PayloadComplete() {
		t.Fatal("packet should be complete")
	}
	if tp.VerifyCRC() {
		t.Fatal("CRC should not verify")
	}
}

func TestTPPDUInvalidLength(t *testing.T) {
	// Length field 0 declares a 1-byte payload: no room for the CRC.
	wire := []byte{0x00, 0x64, 0xC0, 0x00, 0x00, 0x00, 0xFF}
	tp := NewTPPDU(0)
	n := tp.Feed(wire)
	if n != 6 {
		t.Fatalf("consumed %d, want just the header", n)
	}
	if tp.LengthValid() {
		t.Fatal("length must be invalid")
	}
	if tp.PayloadComplete() {
		t.Fatal("must not report complete")
	}
}
