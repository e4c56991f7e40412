package handlers

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/goesrx/goesrx/internal/crc"
	"github.com/goesrx/goesrx/internal/lrit"
)

// DCS ("Data Collection System") relay files: a 64-byte ASCII-typed file
// header, a run of message blocks, and a trailing CRC-32 over the whole
// file.
//
// Ref: HRIT_DCS_File_Format_Rev1.pdf.

const (
	dcsHeaderSize   = 64
	dcsBlockMsg     = 0x01
	dcsBlockMinSize = 41 // id + length + block header + crc16
)

// DCSHandler parses DCS files (filetype 130, NOAA product id 8) and
// writes one raw dump per message block, keyed by the corrected platform
// address.
type DCSHandler struct {
	root string
	log  *zap.SugaredLogger
}

func NewDCSHandler(root string, log *zap.SugaredLogger) *DCSHandler {
	return &DCSHandler{root: root, log: log}
}

func (h *DCSHandler) Handle(l *lrit.LRIT) error {
	if l.Headers.Primary.FileTypeCode != 130 {
		return ErrSkipped
	}
	noaa := l.Headers.NOAA
	if noaa == nil {
		return &MissingHeaderError{Header: "NOAA"}
	}
	if noaa.ProductID != 8 {
		return ErrSkipped
	}

	header, err := ParseDCSHeader(l.Data, h.log)
	if err != nil {
		return err
	}
	if header.PayloadType != "DCSH" {
		return &ParseError{Reason: fmt.Sprintf("expected DCSH payload type, got %q", header.PayloadType)}
	}
	// A receiver sanity check, not a protocol invariant.
	if int(header.PayloadLen) != len(l.Data) {
		h.log.Warnf("DCS header says %d bytes but file has %d", header.PayloadLen, len(l.Data))
	}

	blocks, err := ParseDCSBlocks(l.Data[dcsHeaderSize:], h.log)
	if err != nil {
		return err
	}
	h.log.Infof("DCS file %s: %d blocks", header.Name, len(blocks))

	dir := filepath.Join(h.root, "dcs")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	for _, b := range blocks {
		name := fmt.Sprintf("%08X_%07d.dcs", b.CorrectedAddr, b.Sequence)
		if err := os.WriteFile(filepath.Join(dir, name), b.Data, 0o644); err != nil {
			return err
		}
	}
	return nil
}

// DCSHeader is the 64-byte file header.
type DCSHeader struct {
	Name          string
	PayloadLen    uint64 // whole file, header included
	PayloadSource string
	PayloadType   string
	HeaderCRC     uint32 // over the first 60 bytes
	FileCRC       uint32 // over everything but itself
}

// ParseDCSHeader reads the file header and checks both CRCs. Mismatches
// are logged but not fatal; the per-block CRC is the real gate.
func ParseDCSHeader(data []byte, log *zap.SugaredLogger) (*DCSHeader, error) {
	if len(data) < dcsHeaderSize+4 {
		return nil, &ParseError{Reason: fmt.Sprintf("DCS file too short (%d bytes)", len(data))}
	}

	headerCRC := binary.LittleEndian.Uint32(data[60:64])
	if computed := crc.Checksum32(data[:60]); computed != headerCRC {
		log.Warnf("DCS header CRC mismatch: %08x != %08x", computed, headerCRC)
	}
	fileCRC := binary.LittleEndian.Uint32(data[len(data)-4:])
	if computed := crc.Checksum32(data[:len(data)-4]); computed != fileCRC {
		log.Warnf("DCS file CRC mismatch: %08x != %08x", computed, fileCRC)
	}

	lenStr := strings.TrimSpace(string(data[32:40]))
	payloadLen, err := strconv.ParseUint(lenStr, 10, 64)
	if err != nil {
		return nil, &ParseError{Reason: fmt.Sprintf("bad DCS payload length %q", lenStr)}
	}

	return &DCSHeader{
		Name:          strings.TrimSpace(string(data[:32])),
		PayloadLen:    payloadLen,
		PayloadSource: strings.TrimSpace(string(data[40:44])),
		PayloadType:   strings.TrimSpace(string(data[44:48])),
		HeaderCRC:     headerCRC,
		FileCRC:       fileCRC,
	}, nil
}

// DCSSpacecraft identifies which GOES relayed a message.
type DCSSpacecraft uint8

const (
	SpacecraftUnknown DCSSpacecraft = iota
	SpacecraftGoesEast
	SpacecraftGoesWest
	SpacecraftGoesCentral
	SpacecraftGoesTest
	SpacecraftReserved
)

// DCSBlock is one platform message block.
type DCSBlock struct {
	BlockID  uint8
	BlockLen uint16
	Sequence uint32

	// Message flags.
	BaudRate     uint16
	PlatformCS2  bool // channel sequence 2 (else CS1)
	ParityErrors bool
	MissingEOT   bool

	// Abnormal-received-message flags.
	AddrCorrected     bool
	BadAddr           bool
	InvalidAddr       bool
	IncompletePDT     bool
	TimingError       bool
	UnexpectedMessage bool
	WrongChannel      bool

	// CorrectedAddr is the BCH correction of the received platform
	// address; equal to the received address when it arrived clean or
	// uncorrectable.
	CorrectedAddr uint32

	CarrierStart [7]byte
	CarrierEnd   [7]byte

	SignalStrength float32 // dBm
	FreqOffset     float32 // Hz from channel centre
	PhaseNoise     float32 // degrees RMS
	GoodPhase      float32

	Spacecraft    DCSSpacecraft
	ChannelNumber uint16
	SourceCode    string

	Data []byte
}

// ParseDCSBlocks walks the block sequence after the 64-byte file header.
// Unknown block ids are skipped; blocks failing their CRC-16 are dropped.
func ParseDCSBlocks(data []byte, log *zap.SugaredLogger) ([]DCSBlock, error) {
	var blocks []DCSBlock
	pos := 0

	// The last 4 bytes are the file CRC-32.
	for pos < len(data)-4 {
		if pos+3 > len(data) {
			return blocks, &ParseError{Reason: "truncated DCS block header"}
		}
		blockStart := pos
		blockID := data[pos]
		blockLen := binary.LittleEndian.Uint16(data[pos+1 : pos+3])
		if int(blockLen) < dcsBlockMinSize || blockStart+int(blockLen) > len(data) {
			return blocks, &ParseError{Reason: fmt.Sprintf("DCS block length %d out of range", blockLen)}
		}

		if blockID != dcsBlockMsg {
			// TODO parse block id 2 (missed-message blocks), which
			// HRIT_DCS_File_Format_Rev1.pdf fully describes.
			log.Warnf("skipping unknown DCS block id %d (%d bytes)", blockID, blockLen)
			pos = blockStart + int(blockLen)
			continue
		}

		b := DCSBlock{BlockID: blockID, BlockLen: blockLen}
		p := pos + 3

		b.Sequence = uint32(data[p]) | uint32(data[p+1])<<8 | uint32(data[p+2])<<16
		p += 3

		flags := data[p]
		p++
		switch flags & 0x07 {
		case 1:
			b.BaudRate = 100
		case 2:
			b.BaudRate = 300
		case 3:
			b.BaudRate = 1200
		default:
			log.Warnf("DCS block %d: unexpected baud code %d", b.Sequence, flags&0x07)
			pos = blockStart + int(blockLen)
			continue
		}
		b.PlatformCS2 = flags&0x08 != 0
		b.ParityErrors = flags&0x10 != 0
		b.MissingEOT = flags&0x20 != 0

		arm := data[p]
		p++
		b.AddrCorrected = arm&0x01 != 0
		b.BadAddr = arm&0x02 != 0
		b.InvalidAddr = arm&0x04 != 0
		b.IncompletePDT = arm&0x08 != 0
		b.TimingError = arm&0x10 != 0
		b.UnexpectedMessage = arm&0x20 != 0
		b.WrongChannel = arm&0x40 != 0

		b.CorrectedAddr = binary.LittleEndian.Uint32(data[p : p+4])
		p += 4

		copy(b.CarrierStart[:], data[p:p+7])
		p += 7
		copy(b.CarrierEnd[:], data[p:p+7])
		p += 7

		b.SignalStrength = float32(binary.LittleEndian.Uint16(data[p:p+2])&0x3FF) / 10
		p += 2
		b.FreqOffset = float32(int16(binary.LittleEndian.Uint16(data[p:p+2]))&0x3FFF) / 10
		p += 2
		b.PhaseNoise = float32(binary.LittleEndian.Uint16(data[p:p+2])&0xFFF) / 100
		p += 2
		b.GoodPhase = float32(data[p]) / 2
		p++

		chanSC := binary.LittleEndian.Uint16(data[p : p+2])
		p += 2
		b.ChannelNumber = chanSC & 0x3FF
		switch chanSC >> 12 {
		case 0:
			b.Spacecraft = SpacecraftUnknown
		case 1:
			b.Spacecraft = SpacecraftGoesEast
		case 2:
			b.Spacecraft = SpacecraftGoesWest
		case 3:
			b.Spacecraft = SpacecraftGoesCentral
		case 4:
			b.Spacecraft = SpacecraftGoesTest
		default:
			b.Spacecraft = SpacecraftReserved
		}

		b.SourceCode = string(data[p : p+2])
		p += 2
		p += 2 // secondary source, not currently used

		dataLen := int(blockLen) - dcsBlockMinSize
		b.Data = append([]byte(nil), data[p:p+dataLen]...)
		p += dataLen

		received := binary.LittleEndian.Uint16(data[p : p+2])
		if computed := crc.Checksum16(data[blockStart:p]); computed != received {
			log.Warnf("DCS block %d: CRC mismatch %04x != %04x", b.Sequence, computed, received)
			pos = blockStart + int(blockLen)
			continue
		}

		blocks = append(blocks, b)
		pos = blockStart + int(blockLen)
	}

	return blocks, nil
}
