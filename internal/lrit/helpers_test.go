package lrit

import (
	"encoding/binary"
	"testing"

	"go.uber.org/zap"

	"github.com/goesrx/goesrx/internal/crc"
	"github.com/goesrx/goesrx/internal/stats"
)

func testLogger() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}

func newTestChannel(t *testing.T, id uint8, counter uint32) (*VirtualChannel, *stats.Recorder) {
	t.Helper()
	rec := stats.New()
	return NewVirtualChannel(id, counter, testLogger(), rec), rec
}

// buildTPPDU serialises one complete transport packet: 6-byte header,
// payload, trailing CRC-16.
func buildTPPDU(apid uint16, flag uint8, seq uint16, payload []byte) []byte {
	body := make([]byte, 0, len(payload)+2)
	body = append(body, payload...)
	body = binary.BigEndian.AppendUint16(body, crc.Checksum16(payload))

	out := make([]byte, 6, 6+len(body))
	out[0] = byte(apid >> 8 & 0x07)
	out[1] = byte(apid)
	out[2] = flag<<6 | byte(seq>>8&0x3F)
	out[3] = byte(seq)
	binary.BigEndian.PutUint16(out[4:6], uint16(len(body)-1))
	return append(out, body...)
}

// buildFrame lays packet bytes into one 892-byte frame at the M_PDU
// offset, padding any remaining space with a fill-APID packet. pointer is
// the first-header pointer (2047 for none).
func buildFrame(t *testing.T, vcid uint8, counter uint32, pointer int, packets []byte) []byte {
	t.Helper()
	frame := make([]byte, FrameSize)
	frame[0] = 0x40 // version 1
	frame[1] = vcid & 0x3F
	frame[2] = byte(counter >> 16)
	frame[3] = byte(counter >> 8)
	frame[4] = byte(counter)

	binary.BigEndian.PutUint16(frame[6:8], uint16(pointer)&0x7FF)

	zone := frame[8:]
	if len(packets) > len(zone) {
		t.Fatalf("frame overflow: %d packet bytes, %d available", len(packets), len(zone))
	}
	copy(zone, packets)

	if rest := len(zone) - len(packets); rest > 0 {
		fill := makeFill(t, rest)
		copy(zone[len(packets):], fill)
	}
	return frame
}

// makeFill builds a fill-APID packet of exactly n bytes to pad a frame's
// tail. n must leave room for the header and CRC.
func makeFill(t *testing.T, n int) []byte {
	t.Helper()
	if n < 8 {
		t.Fatalf("cannot pad %d bytes with a fill packet; resize the test payloads", n)
	}
	return buildTPPDU(FillAPID, FlagUnsegmented, 0, make([]byte, n-8))
}

// textHeaders returns a marshalled header set for a plain text file.
func textHeaders(annotation string) []byte {
	h := Headers{
		Primary:    PrimaryHeader{FileTypeCode: 2},
		Annotation: &AnnotationHeader{Text: annotation},
	}
	return h.MarshalAll()
}

// openerPayload prefixes the 10 discard bytes the session layer strips.
func openerPayload(rest []byte) []byte {
	out := make([]byte, 10, 10+len(rest))
	return append(out, rest...)
}
