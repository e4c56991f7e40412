package lrit

import (
	"encoding/binary"

	"github.com/goesrx/goesrx/internal/crc"
)

/*
 * TP_PDU -- Transport Protocol Data Unit (4_LRIT_Transmitter-specs.pdf p16):
 *
 *  3 bits   version (0)
 *  1 bit    type (0)
 *  1 bit    secondary header flag
 * 11 bits   APID (2047 = fill)
 *  2 bits   sequence flag
 * 14 bits   per-APID sequence count
 * 16 bits   payload length minus one
 *
 * The payload's last two bytes are a big-endian CRC-16 over the bytes
 * before them. Total payload never exceeds 8192 bytes.
 */

// Sequence flag values.
const (
	FlagContinuation = 0 // middle segment of a file
	FlagFirst        = 1 // first segment of a multi-segment file
	FlagLast         = 2 // final segment of a multi-segment file
	FlagUnsegmented  = 3 // whole file in one TP_PDU
)

// FillAPID marks TP_PDUs that carry no data.
const FillAPID = 2047

const (
	tpHeaderSize    = 6
	maxPayloadSize  = 8192
	tpCRCTrailerLen = 2
)

// TPPDU accumulates one transport packet from arbitrarily-chunked frame
// bytes. It fills its 6-byte header first, then the payload up to the
// declared length. Accessors are only meaningful once the relevant phase
// has filled.
type TPPDU struct {
	vcid    uint8
	header  []byte
	payload []byte
}

// NewTPPDU returns an empty assembler for a packet seen on vcid.
func NewTPPDU(vcid uint8) *TPPDU {
	return &TPPDU{
		vcid:   vcid,
		header: make([]byte, 0, tpHeaderSize),
	}
}

// VCID is the virtual channel the packet arrived on.
func (t *TPPDU) VCID() uint8 { return t.vcid }

// Feed consumes bytes from b, header gap first, then payload gap, and
// returns how many were consumed. The caller uses the count to locate the
// next packet inside the same frame.
func (t *TPPDU) Feed(b []byte) int {
	used := 0
	if !t.HeaderComplete() {
		n := min(tpHeaderSize-len(t.header), len(b))
		t.header = append(t.header, b[:n]...)
		used = n
		if t.HeaderComplete() {
			t.payload = make([]byte, 0, t.DeclaredLength())
		}
	}
	if t.HeaderComplete() && !t.LengthValid() {
		// Nothing sensible to fill; leave the remaining bytes alone so
		// the channel can diagnose and resynchronise.
		return used
	}
	if t.HeaderComplete() {
		n := min(t.DeclaredLength()-len(t.payload), len(b)-used)
		t.payload = append(t.payload, b[used:used+n]...)
		used += n
	}
	return used
}

// HeaderComplete reports whether all 6 header bytes have arrived.
func (t *TPPDU) HeaderComplete() bool { return len(t.header) == tpHeaderSize }

// PayloadComplete reports whether the declared payload has fully arrived.
func (t *TPPDU) PayloadComplete() bool {
	return t.HeaderComplete() && t.LengthValid() && len(t.payload) == t.DeclaredLength()
}

// Version is the 3-bit packet version, always 0.
func (t *TPPDU) Version() uint8 { return t.header[0] >> 5 }

// SecondaryFlag reports the secondary-header bit.
func (t *TPPDU) SecondaryFlag() bool { return t.header[0]&0x08 != 0 }

// APID is the 11-bit application process id.
func (t *TPPDU) APID() uint16 {
	return uint16(t.header[0]&0x07)<<8 | uint16(t.header[1])
}

// SequenceFlag is one of FlagContinuation, FlagFirst, FlagLast,
// FlagUnsegmented.
func (t *TPPDU) SequenceFlag() uint8 { return t.header[2] >> 6 }

// SequenceCount is the 14-bit per-APID packet counter.
func (t *TPPDU) SequenceCount() uint16 {
	return uint16(t.header[2]&0x3F)<<8 | uint16(t.header[3])
}

// DeclaredLength is the full payload length in bytes, CRC included. The
// wire field carries length minus one.
func (t *TPPDU) DeclaredLength() int {
	return int(binary.BigEndian.Uint16(t.header[4:6])) + 1
}

// LengthValid reports whether the declared length leaves room for the CRC
// trailer and stays within the 8192-byte ceiling.
func (t *TPPDU) LengthValid() bool {
	l := t.DeclaredLength()
	return l >= tpCRCTrailerLen && l <= maxPayloadSize
}

// VerifyCRC checks the trailing CRC-16 against the payload. Only valid
// once the payload is complete.
func (t *TPPDU) VerifyCRC() bool {
	n := len(t.payload)
	computed := crc.Checksum16(t.payload[:n-tpCRCTrailerLen])
	received := binary.BigEndian.Uint16(t.payload[n-tpCRCTrailerLen:])
	return computed == received
}

// Payload returns the application bytes with the CRC trailer stripped.
func (t *TPPDU) Payload() []byte {
	return t.payload[:len(t.payload)-tpCRCTrailerLen]
}
