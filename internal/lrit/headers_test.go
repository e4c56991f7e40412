package lrit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHeadersRoundTrip(t *testing.T) {
	in := Headers{
		Primary: PrimaryHeader{FileTypeCode: 0, DataFieldBits: 320000},
		ImageStructure: &ImageStructureHeader{
			BitsPerPixel: 8, Columns: 5424, Lines: 339, Compression: 1,
		},
		ImageNav: &ImageNavigationHeader{
			ProjectionName: "geos(-75.0)",
			ColumnScaling:  10216334,
			LineScaling:    -10216334,
			ColumnOffset:   2712,
			LineOffset:     2712,
		},
		ImageDataFunc: &ImageDataFunctionHeader{Data: []byte("HALFTONE:=255\r\n")},
		ImageSegment: &ImageSegmentHeader{
			ImageID: 58004, SegmentSeq: 3, StartCol: 0, StartLine: 1017,
			MaxSegment: 16, MaxColumn: 5424, MaxRow: 5424,
		},
		Annotation: &AnnotationHeader{Text: "OR_ABI-L2-CMIPF-M6C13_G16.lrit"},
		Timestamp:  &TimestampHeader{Days: 24541, Milliseconds: 43200123},
		AncillaryText: &AncillaryTextHeader{Text: "Segmented=yes"},
		NOAA: &NOAAHeader{
			AgencySignature: "NOAA", ProductID: 16, ProductSubID: 1,
			Parameter: 13, Compression: 1,
		},
		HeaderStruct: &HeaderStructHeader{Text: "structure"},
		Rice:         &RiceHeader{Flags: 49, PixelsPerBlock: 16, ScanlinesPerPacket: 1},
	}

	buf := in.MarshalAll()
	out, err := ParseHeaders(buf)
	require.NoError(t, err)

	assert.Equal(t, in.Primary.FileTypeCode, out.Primary.FileTypeCode)
	assert.Equal(t, uint32(len(buf)), out.Primary.TotalHeaderLength)
	assert.Equal(t, in.ImageStructure, out.ImageStructure)
	assert.Equal(t, in.ImageNav, out.ImageNav)
	assert.Equal(t, in.ImageDataFunc, out.ImageDataFunc)
	assert.Equal(t, in.ImageSegment, out.ImageSegment)
	assert.Equal(t, in.Annotation, out.Annotation)
	assert.Equal(t, in.Timestamp, out.Timestamp)
	assert.Equal(t, in.AncillaryText, out.AncillaryText)
	assert.Equal(t, in.NOAA, out.NOAA)
	assert.Equal(t, in.HeaderStruct, out.HeaderStruct)
	assert.Equal(t, in.Rice, out.Rice)
}

func TestParseHeadersPrimaryOnly(t *testing.T) {
	h := Headers{Primary: PrimaryHeader{FileTypeCode: 2}}
	out, err := ParseHeaders(h.MarshalAll())
	require.NoError(t, err)
	assert.Equal(t, uint32(16), out.Primary.TotalHeaderLength)
	assert.Nil(t, out.Annotation)
}

func TestParseHeadersUnknownType(t *testing.T) {
	h := Headers{Primary: PrimaryHeader{FileTypeCode: 2}}
	buf := h.MarshalAll()
	// Append a record of unassigned type 42 and fix the total length.
	buf = appendRecord(buf, 42, []byte{1, 2, 3})
	buf[4] = 0
	buf[5] = 0
	buf[6] = 0
	buf[7] = byte(len(buf))

	_, err := ParseHeaders(buf)
	var unknown *UnknownHeaderError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, byte(42), unknown.Type)
}

func TestParseHeadersTruncated(t *testing.T) {
	h := Headers{
		Primary:    PrimaryHeader{FileTypeCode: 2},
		Annotation: &AnnotationHeader{Text: "NAME.TXT"},
	}
	buf := h.MarshalAll()
	_, err := ParseHeaders(buf[:len(buf)-4])
	assert.Error(t, err)
}

func TestParseHeadersRecordOverrun(t *testing.T) {
	h := Headers{
		Primary:    PrimaryHeader{FileTypeCode: 2},
		Annotation: &AnnotationHeader{Text: "NAME.TXT"},
	}
	buf := h.MarshalAll()
	// Corrupt the annotation record's length so it runs past the total.
	buf[17] = 0xFF
	_, err := ParseHeaders(buf)
	assert.Error(t, err)
}

func TestAncillaryTextPairs(t *testing.T) {
	h := AncillaryTextHeader{Text: "Segmented = yes; Region=FD"}
	pairs := h.Pairs()
	assert.Equal(t, "yes", pairs["Segmented"])
	assert.Equal(t, "FD", pairs["Region"])
}

func TestTimestampTime(t *testing.T) {
	// 1958-01-01 plus one day plus one second.
	h := TimestampHeader{Days: 1, Milliseconds: 1000}
	got := h.Time()
	assert.Equal(t, "1958-01-02T00:00:01Z", got.UTC().Format("2006-01-02T15:04:05Z"))
}

func FuzzParseHeaders(f *testing.F) {
	h := Headers{
		Primary:    PrimaryHeader{FileTypeCode: 2},
		Annotation: &AnnotationHeader{Text: "SEED.TXT"},
	}
	f.Add(h.MarshalAll())
	f.Add([]byte{0})
	f.Fuzz(func(t *testing.T, data []byte) {
		// Must never panic, whatever the bytes.
		_, _ = ParseHeaders(data)
	})
}
