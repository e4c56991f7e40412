package lrit

import "encoding/binary"

// Record encoders. The receiver itself never transmits; these exist so
// tests (and tools) can build well-formed header sets and frames.

func appendRecord(dst []byte, typ byte, body []byte) []byte {
	dst = append(dst, typ)
	dst = binary.BigEndian.AppendUint16(dst, uint16(len(body)+3))
	return append(dst, body...)
}

// Marshal encodes the primary header record (always 16 bytes).
func (h *PrimaryHeader) Marshal() []byte {
	body := make([]byte, 0, 13)
	body = append(body, h.FileTypeCode)
	body = binary.BigEndian.AppendUint32(body, h.TotalHeaderLength)
	body = binary.BigEndian.AppendUint64(body, h.DataFieldBits)
	return appendRecord(nil, typePrimary, body)
}

func (h *ImageStructureHeader) Marshal() []byte {
	body := make([]byte, 0, 6)
	body = append(body, h.BitsPerPixel)
	body = binary.BigEndian.AppendUint16(body, h.Columns)
	body = binary.BigEndian.AppendUint16(body, h.Lines)
	body = append(body, h.Compression)
	return appendRecord(nil, typeImageStructure, body)
}

func (h *ImageNavigationHeader) Marshal() []byte {
	body := make([]byte, 0, 48)
	name := make([]byte, 32)
	for i := range name {
		name[i] = ' '
	}
	copy(name, h.ProjectionName)
	body = append(body, name...)
	body = binary.BigEndian.AppendUint32(body, uint32(h.ColumnScaling))
	body = binary.BigEndian.AppendUint32(body, uint32(h.LineScaling))
	body = binary.BigEndian.AppendUint32(body, uint32(h.ColumnOffset))
	body = binary.BigEndian.AppendUint32(body, uint32(h.LineOffset))
	return appendRecord(nil, typeImageNav, body)
}

func (h *ImageDataFunctionHeader) Marshal() []byte {
	return appendRecord(nil, typeImageDataFunc, h.Data)
}

func (h *AnnotationHeader) Marshal() []byte {
	return appendRecord(nil, typeAnnotation, []byte(h.Text))
}

func (h *TimestampHeader) Marshal() []byte {
	body := make([]byte, 0, 7)
	body = append(body, 0x40) // P-field: CDS, 1958 epoch
	body = binary.BigEndian.AppendUint16(body, h.Days)
	body = binary.BigEndian.AppendUint32(body, h.Milliseconds)
	return appendRecord(nil, typeTimestamp, body)
}

func (h *AncillaryTextHeader) Marshal() []byte {
	return appendRecord(nil, typeAncillaryText, []byte(h.Text))
}

func (h *ImageSegmentHeader) Marshal() []byte {
	body := make([]byte, 0, 14)
	for _, v := range []uint16{h.ImageID, h.SegmentSeq, h.StartCol, h.StartLine, h.MaxSegment, h.MaxColumn, h.MaxRow} {
		body = binary.BigEndian.AppendUint16(body, v)
	}
	return appendRecord(nil, typeImageSegment, body)
}

func (h *NOAAHeader) Marshal() []byte {
	body := make([]byte, 0, 11)
	sig := []byte{' ', ' ', ' ', ' '}
	copy(sig, h.AgencySignature)
	body = append(body, sig...)
	body = binary.BigEndian.AppendUint16(body, h.ProductID)
	body = binary.BigEndian.AppendUint16(body, h.ProductSubID)
	body = binary.BigEndian.AppendUint16(body, h.Parameter)
	body = append(body, h.Compression)
	return appendRecord(nil, typeNOAA, body)
}

func (h *HeaderStructHeader) Marshal() []byte {
	return appendRecord(nil, typeHeaderStruct, []byte(h.Text))
}

func (h *RiceHeader) Marshal() []byte {
	body := make([]byte, 0, 4)
	body = binary.BigEndian.AppendUint16(body, h.Flags)
	body = append(body, h.PixelsPerBlock, h.ScanlinesPerPacket)
	return appendRecord(nil, typeRice, body)
}

// MarshalAll concatenates every present record, primary first, and fixes
// up the primary's total header length to match.
func (h *Headers) MarshalAll() []byte {
	rest := []byte{}
	if h.ImageStructure != nil {
		rest = append(rest, h.ImageStructure.Marshal()...)
	}
	if h.ImageNav != nil {
		rest = append(rest, h.ImageNav.Marshal()...)
	}
	if h.ImageDataFunc != nil {
		rest = append(rest, h.ImageDataFunc.Marshal()...)
	}
	if h.Annotation != nil {
		rest = append(rest, h.Annotation.Marshal()...)
	}
	if h.Timestamp != nil {
		rest = append(rest, h.Timestamp.Marshal()...)
	}
	if h.AncillaryText != nil {
		rest = append(rest, h.AncillaryText.Marshal()...)
	}
	if h.ImageSegment != nil {
		rest = append(rest, h.ImageSegment.Marshal()...)
	}
	if h.NOAA != nil {
		rest = append(rest, h.NOAA.Marshal()...)
	}
	if h.HeaderStruct != nil {
		rest = append(rest, h.HeaderStruct.Marshal()...)
	}
	if h.Rice != nil {
		rest = append(rest, h.Rice.Marshal()...)
	}
	prim := h.Primary
	prim.TotalHeaderLength = uint32(primaryHeaderLen + len(rest))
	return append(prim.Marshal(), rest...)
}
