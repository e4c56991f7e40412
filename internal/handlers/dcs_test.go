package handlers

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/goesrx/goesrx/internal/crc"
	"github.com/goesrx/goesrx/internal/lrit"
)

func testLogger() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}

// buildDCSBlock serialises one well-formed message block.
func buildDCSBlock(sequence uint32, addr uint32, msg []byte) []byte {
	blockLen := uint16(len(msg) + dcsBlockMinSize)
	b := make([]byte, 0, blockLen)
	b = append(b, dcsBlockMsg)
	b = binary.LittleEndian.AppendUint16(b, blockLen)

	b = append(b, byte(sequence), byte(sequence>>8), byte(sequence>>16))
	b = append(b, 0x02) // 300 baud, CS1, clean
	b = append(b, 0x01) // address corrected
	b = binary.LittleEndian.AppendUint32(b, addr)
	b = append(b, make([]byte, 14)...) // carrier start/end
	b = binary.LittleEndian.AppendUint16(b, 451)  // 45.1 dBm, stored 10x
	b = binary.LittleEndian.AppendUint16(b, 12)   // freq offset
	b = binary.LittleEndian.AppendUint16(b, 250)  // phase noise
	b = append(b, 180)                            // good phase, stored 2x
	b = binary.LittleEndian.AppendUint16(b, 1<<12|150) // GOES-East, channel 150
	b = append(b, 'U', 'P')
	b = append(b, 0, 0) // secondary source
	b = append(b, msg...)

	sum := crc.Checksum16(b)
	b = binary.LittleEndian.AppendUint16(b, sum)
	return b
}

// buildDCSFile wraps blocks in the 64-byte header and trailing file CRC.
func buildDCSFile(blocks ...[]byte) []byte {
	var body []byte
	for _, b := range blocks {
		body = append(body, b...)
	}
	total := dcsHeaderSize + len(body) + 4

	head := make([]byte, 0, dcsHeaderSize)
	name := fmt.Sprintf("%-32s", "pH-20-06-24-1855.dcs")
	head = append(head, name...)
	head = append(head, fmt.Sprintf("%8d", total)...)
	head = append(head, "UP  "...)
	head = append(head, "DCSH"...)
	head = append(head, make([]byte, 12)...)
	head = binary.LittleEndian.AppendUint32(head, crc.Checksum32(head))

	file := append(head, body...)
	return binary.LittleEndian.AppendUint32(file, crc.Checksum32(file))
}

func dcsLRIT(data []byte) *lrit.LRIT {
	return &lrit.LRIT{
		VCID: 32,
		Headers: lrit.Headers{
			Primary: lrit.PrimaryHeader{FileTypeCode: 130},
			NOAA:    &lrit.NOAAHeader{AgencySignature: "NOAA", ProductID: 8},
		},
		Data: data,
	}
}

func TestDCSHandlerWritesBlockDumps(t *testing.T) {
	root := t.TempDir()
	h := NewDCSHandler(root, testLogger())

	msg := []byte("B1@@Qw3 159.2 standing")
	file := buildDCSFile(buildDCSBlock(42, 0xCE3F1E2A, msg))

	if err := h.Handle(dcsLRIT(file)); err != nil {
		t.Fatal(err)
	}

	dump := filepath.Join(root, "dcs", "CE3F1E2A_0000042.dcs")
	got, err := os.ReadFile(dump)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, msg) {
		t.Errorf("dump = %q, want %q", got, msg)
	}
}

func TestDCSHandlerSkipsOtherFiletypes(t *testing.T) {
	h := NewDCSHandler(t.TempDir(), testLogger())
	l := &lrit.LRIT{Headers: lrit.Headers{Primary: lrit.PrimaryHeader{FileTypeCode: 2}}}
	if err := h.Handle(l); err != ErrSkipped {
		t.Fatalf("err = %v, want ErrSkipped", err)
	}
}

func TestDCSHandlerMissingNOAAHeader(t *testing.T) {
	h := NewDCSHandler(t.TempDir(), testLogger())
	l := &lrit.LRIT{Headers: lrit.Headers{Primary: lrit.PrimaryHeader{FileTypeCode: 130}}}
	var missing *MissingHeaderError
	if err := h.Handle(l); !errors.As(err, &missing) {
		t.Fatalf("err = %v, want MissingHeaderError", err)
	}
}

func TestParseDCSBlocksDropsBadCRC(t *testing.T) {
	good := buildDCSBlock(1, 0x11111111, []byte("good"))
	bad := buildDCSBlock(2, 0x22222222, []byte("bad"))
	bad[len(bad)-1] ^= 0xFF

	file := buildDCSFile(good, bad)
	blocks, err := ParseDCSBlocks(file[dcsHeaderSize:], testLogger())
	if err != nil {
		t.Fatal(err)
	}
	if len(blocks) != 1 {
		t.Fatalf("got %d blocks, want 1", len(blocks))
	}
	if blocks[0].Sequence != 1 {
		t.Errorf("kept sequence %d, want 1", blocks[0].Sequence)
	}
	if blocks[0].CorrectedAddr != 0x11111111 {
		t.Errorf("addr = %08X", blocks[0].CorrectedAddr)
	}
}

func TestParseDCSBlocksFields(t *testing.T) {
	file := buildDCSFile(buildDCSBlock(7, 0xABCDEF01, []byte("payload")))
	blocks, err := ParseDCSBlocks(file[dcsHeaderSize:], testLogger())
	if err != nil {
		t.Fatal(err)
	}
	if len(blocks) != 1 {
		t.Fatalf("got %d blocks", len(blocks))
	}
	b := blocks[0]
	if b.BaudRate != 300 {
		t.Errorf("baud = %d", b.BaudRate)
	}
	if !b.AddrCorrected {
		t.Error("addr corrected flag lost")
	}
	if b.SignalStrength != 45.1 {
		t.Errorf("signal = %v", b.SignalStrength)
	}
	if b.Spacecraft != SpacecraftGoesEast {
		t.Errorf("spacecraft = %v", b.Spacecraft)
	}
	if b.ChannelNumber != 150 {
		t.Errorf("channel = %d", b.ChannelNumber)
	}
	if b.SourceCode != "UP" {
		t.Errorf("source = %q", b.SourceCode)
	}
	if b.GoodPhase != 90 {
		t.Errorf("good phase = %v", b.GoodPhase)
	}
}

func TestParseDCSHeaderRejectsShort(t *testing.T) {
	if _, err := ParseDCSHeader(make([]byte, 20), testLogger()); err == nil {
		t.Fatal("expected error")
	}
}

func TestDCSHandlerRejectsWrongPayloadType(t *testing.T) {
	file := buildDCSFile(buildDCSBlock(1, 1, []byte("x")))
	copy(file[44:48], "ZZZZ")
	h := NewDCSHandler(t.TempDir(), testLogger())
	err := h.Handle(dcsLRIT(file))
	if _, ok := err.(*ParseError); !ok {
		t.Fatalf("err = %v, want ParseError", err)
	}
}
