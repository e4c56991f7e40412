package lrit

import (
	"encoding/binary"
	"fmt"
	"strings"
	"time"
)

// Every header record starts with a 1-byte type and a 2-byte big-endian
// record length that counts the whole record, those three bytes included.
// A primary header always comes first; the remaining records pack
// contiguously up to the primary's total header length.
//
// Refs: 3_LRIT_Receiver-specs.pdf, 5_LRIT_Mission-data.pdf.

// Header record type codes.
const (
	typePrimary        = 0
	typeImageStructure = 1
	typeImageNav       = 2
	typeImageDataFunc  = 3
	typeAnnotation     = 4
	typeTimestamp      = 5
	typeAncillaryText  = 6
	typeImageSegment   = 128
	typeNOAA           = 129
	typeHeaderStruct   = 130
	typeRice           = 131
)

const primaryHeaderLen = 16

// UnknownHeaderError reports a record type the codec does not recognise.
// The caller decides policy; the session layer treats it as fatal for the
// session it came from.
type UnknownHeaderError struct {
	Type byte
}

func (e *UnknownHeaderError) Error() string {
	return fmt.Sprintf("lrit: unknown header record type %d", e.Type)
}

// Headers is the parsed header set of one LRIT file. Non-primary records
// are optional; absent records are nil. Handlers treat the aggregate as
// read-only.
type Headers struct {
	Primary        PrimaryHeader
	ImageStructure *ImageStructureHeader
	ImageNav       *ImageNavigationHeader
	ImageDataFunc  *ImageDataFunctionHeader
	ImageSegment   *ImageSegmentHeader
	Annotation     *AnnotationHeader
	Timestamp      *TimestampHeader
	AncillaryText  *AncillaryTextHeader
	NOAA           *NOAAHeader
	HeaderStruct   *HeaderStructHeader
	Rice           *RiceHeader
}

// PrimaryHeader (type 0, 16 bytes) opens every LRIT file.
type PrimaryHeader struct {
	// FileTypeCode: 0 image, 1 service message, 2 text, 130 DCS.
	FileTypeCode uint8
	// TotalHeaderLength counts all header records, this one included.
	TotalHeaderLength uint32
	// DataFieldBits is the length of the file body in bits.
	DataFieldBits uint64
}

// ImageStructureHeader (type 1) describes the raster.
type ImageStructureHeader struct {
	BitsPerPixel uint8
	Columns      uint16
	Lines        uint16
	// Compression: 0 none, 1 lossless (rice), 2 lossy.
	Compression uint8
}

// ImageNavigationHeader (type 2, 51 bytes).
type ImageNavigationHeader struct {
	ProjectionName    string
	ColumnScaling     int32
	LineScaling       int32
	ColumnOffset      int32
	LineOffset        int32
}

// ImageDataFunctionHeader (type 3) carries a variable-length lookup table.
type ImageDataFunctionHeader struct {
	Data []byte
}

// AnnotationHeader (type 4) names the file.
type AnnotationHeader struct {
	Text string
}

// TimestampHeader (type 5, 10 bytes) holds CCSDS time: days since
// 1958-01-01 plus milliseconds of day.
type TimestampHeader struct {
	Days         uint16
	Milliseconds uint32
}

// Time converts the CCSDS day/millisecond pair to UTC.
func (h *TimestampHeader) Time() time.Time {
	epoch := time.Date(1958, time.January, 1, 0, 0, 0, 0, time.UTC)
	return epoch.AddDate(0, 0, int(h.Days)).Add(time.Duration(h.Milliseconds) * time.Millisecond)
}

// AncillaryTextHeader (type 6) carries key=value pairs separated by ';'.
type AncillaryTextHeader struct {
	Text string
}

// Pairs splits the text into its key=value map.
func (h *AncillaryTextHeader) Pairs() map[string]string {
	m := make(map[string]string)
	for _, pair := range strings.Split(h.Text, ";") {
		k, v, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		m[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}
	return m
}

// ImageSegmentHeader (type 128, 17 bytes) places one segment in a larger image.
type ImageSegmentHeader struct {
	ImageID    uint16
	SegmentSeq uint16
	StartCol   uint16
	StartLine  uint16
	MaxSegment uint16
	MaxColumn  uint16
	MaxRow     uint16
}

// NOAAHeader (type 129, 14 bytes).
type NOAAHeader struct {
	AgencySignature string
	ProductID       uint16
	ProductSubID    uint16
	Parameter       uint16
	// Compression: 0 none, 1 lossless, 2 lossy, 5 GIF.
	Compression uint8
}

// HeaderStructHeader (type 130) is free-form structure description text.
type HeaderStructHeader struct {
	Text string
}

// RiceHeader (type 131, 7 bytes) carries the rice decompression parameters.
type RiceHeader struct {
	Flags              uint16
	PixelsPerBlock     uint8
	ScanlinesPerPacket uint8
}

// ParseHeaders reads the full header set from the start of a session
// buffer. The buffer must reach the primary's total header length.
func ParseHeaders(data []byte) (Headers, error) {
	prim, err := parsePrimary(data)
	if err != nil {
		return Headers{}, err
	}
	h := Headers{Primary: prim}

	total := int(prim.TotalHeaderLength)
	if total < primaryHeaderLen {
		return Headers{}, fmt.Errorf("lrit: total header length %d shorter than primary", total)
	}
	if total > len(data) {
		return Headers{}, fmt.Errorf("lrit: total header length %d exceeds buffer (%d bytes)", total, len(data))
	}

	offset := primaryHeaderLen
	for offset < total {
		typ, rec, err := nextRecord(data, offset, total)
		if err != nil {
			return Headers{}, err
		}
		body := rec[3:]
		switch typ {
		case typePrimary:
			return Headers{}, fmt.Errorf("lrit: second primary header at offset %d", offset)
		case typeImageStructure:
			if len(body) < 6 {
				return Headers{}, shortRecord(typ, len(rec))
			}
			h.ImageStructure = &ImageStructureHeader{
				BitsPerPixel: body[0],
				Columns:      binary.BigEndian.Uint16(body[1:3]),
				Lines:        binary.BigEndian.Uint16(body[3:5]),
				Compression:  body[5],
			}
		case typeImageNav:
			if len(body) < 48 {
				return Headers{}, shortRecord(typ, len(rec))
			}
			h.ImageNav = &ImageNavigationHeader{
				ProjectionName: trimmedString(body[:32]),
				ColumnScaling:  int32(binary.BigEndian.Uint32(body[32:36])),
				LineScaling:    int32(binary.BigEndian.Uint32(body[36:40])),
				ColumnOffset:   int32(binary.BigEndian.Uint32(body[40:44])),
				LineOffset:     int32(binary.BigEndian.Uint32(body[44:48])),
			}
		case typeImageDataFunc:
			lut := make([]byte, len(body))
			copy(lut, body)
			h.ImageDataFunc = &ImageDataFunctionHeader{Data: lut}
		case typeAnnotation:
			h.Annotation = &AnnotationHeader{Text: trimmedString(body)}
		case typeTimestamp:
			// 7-byte CDS time: a P-field byte, then days since 1958-01-01
			// and milliseconds of day.
			if len(body) < 7 {
				return Headers{}, shortRecord(typ, len(rec))
			}
			h.Timestamp = &TimestampHeader{
				Days:         binary.BigEndian.Uint16(body[1:3]),
				Milliseconds: binary.BigEndian.Uint32(body[3:7]),
			}
		case typeAncillaryText:
			h.AncillaryText = &AncillaryTextHeader{Text: trimmedString(body)}
		case typeImageSegment:
			if len(body) < 14 {
				return Headers{}, shortRecord(typ, len(rec))
			}
			h.ImageSegment = &ImageSegmentHeader{
				ImageID:    binary.BigEndian.Uint16(body[0:2]),
				SegmentSeq: binary.BigEndian.Uint16(body[2:4]),
				StartCol:   binary.BigEndian.Uint16(body[4:6]),
				StartLine:  binary.BigEndian.Uint16(body[6:8]),
				MaxSegment: binary.BigEndian.Uint16(body[8:10]),
				MaxColumn:  binary.BigEndian.Uint16(body[10:12]),
				MaxRow:     binary.BigEndian.Uint16(body[12:14]),
			}
		case typeNOAA:
			if len(body) < 11 {
				return Headers{}, shortRecord(typ, len(rec))
			}
			h.NOAA = &NOAAHeader{
				AgencySignature: trimmedString(body[:4]),
				ProductID:       binary.BigEndian.Uint16(body[4:6]),
				ProductSubID:    binary.BigEndian.Uint16(body[6:8]),
				Parameter:       binary.BigEndian.Uint16(body[8:10]),
				Compression:     body[10],
			}
		case typeHeaderStruct:
			h.HeaderStruct = &HeaderStructHeader{Text: trimmedString(body)}
		case typeRice:
			if len(body) < 4 {
				return Headers{}, shortRecord(typ, len(rec))
			}
			h.Rice = &RiceHeader{
				Flags:              binary.BigEndian.Uint16(body[0:2]),
				PixelsPerBlock:     body[2],
				ScanlinesPerPacket: body[3],
			}
		default:
			return Headers{}, &UnknownHeaderError{Type: typ}
		}
		offset += len(rec)
	}

	return h, nil
}

func parsePrimary(data []byte) (PrimaryHeader, error) {
	if len(data) < primaryHeaderLen {
		return PrimaryHeader{}, fmt.Errorf("lrit: %d bytes is too short for a primary header", len(data))
	}
	if data[0] != typePrimary {
		return PrimaryHeader{}, fmt.Errorf("lrit: expected primary header type 0, got %d", data[0])
	}
	if recLen := binary.BigEndian.Uint16(data[1:3]); recLen != primaryHeaderLen {
		return PrimaryHeader{}, fmt.Errorf("lrit: primary header record length %d, want %d", recLen, primaryHeaderLen)
	}
	return PrimaryHeader{
		FileTypeCode:      data[3],
		TotalHeaderLength: binary.BigEndian.Uint32(data[4:8]),
		DataFieldBits:     binary.BigEndian.Uint64(data[8:16]),
	}, nil
}

// nextRecord slices out the record starting at offset, bounds-checked
// against both the buffer and the declared total header length.
func nextRecord(data []byte, offset, total int) (byte, []byte, error) {
	if offset+3 > total {
		return 0, nil, fmt.Errorf("lrit: truncated header record at offset %d", offset)
	}
	typ := data[offset]
	recLen := int(binary.BigEndian.Uint16(data[offset+1 : offset+3]))
	if recLen < 3 {
		return 0, nil, fmt.Errorf("lrit: header record type %d has impossible length %d", typ, recLen)
	}
	if offset+recLen > total {
		return 0, nil, fmt.Errorf("lrit: header record type %d (len %d) overruns total header length %d", typ, recLen, total)
	}
	return typ, data[offset : offset+recLen], nil
}

func shortRecord(typ byte, n int) error {
	return fmt.Errorf("lrit: header record type %d too short (%d bytes)", typ, n)
}

func trimmedString(b []byte) string {
	return strings.TrimSpace(string(b))
}
