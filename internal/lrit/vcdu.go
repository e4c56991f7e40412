package lrit

import "fmt"

/*
 * Virtual Channel Data Unit (from 3_LRIT_Receiver-specs.pdf):
 *
 * 6 bytes of header followed by 886 bytes of M_PDU data, 892 bytes total.
 *
 *  2 bits   version (always 1)
 *  8 bits   spacecraft id
 *  6 bits   virtual channel id (63 = fill)
 * 24 bits   per-VC sequence counter
 *  8 bits   signalling (replay flag + spares; ignored here)
 */

const (
	// FrameSize is the fixed size of one VCDU transfer frame.
	FrameSize = 892

	vcduHeaderSize = 6
	mpduSize       = FrameSize - vcduHeaderSize

	// FillVCID marks fill frames that carry no data.
	FillVCID = 63
)

// VCDU is a read-only view over one 892-byte transfer frame.
type VCDU struct {
	raw []byte
}

// NewVCDU wraps a frame. The frame must be exactly FrameSize bytes.
func NewVCDU(raw []byte) (VCDU, error) {
	if len(raw) != FrameSize {
		return VCDU{}, fmt.Errorf("vcdu: frame is %d bytes, want %d", len(raw), FrameSize)
	}
	return VCDU{raw: raw}, nil
}

// Version is the 2-bit frame version, always 1 on the GOES-R downlink.
func (v VCDU) Version() uint8 {
	return v.raw[0] >> 6
}

// SCID is the id of the spacecraft that sent this frame.
func (v VCDU) SCID() uint8 {
	return v.raw[0]&0x3F<<2 | v.raw[1]>>6
}

// VCID is the 6-bit virtual channel id.
func (v VCDU) VCID() uint8 {
	return v.raw[1] & 0x3F
}

// Counter is the 24-bit per-VC frame counter, used to detect drops.
func (v VCDU) Counter() uint32 {
	return uint32(v.raw[2])<<16 | uint32(v.raw[3])<<8 | uint32(v.raw[4])
}

// Data is the 886-byte M_PDU zone: a 2-byte pointer header plus packet data.
func (v VCDU) Data() []byte {
	return v.raw[vcduHeaderSize:]
}

// IsFill reports whether this frame is fill (VCID 63).
func (v VCDU) IsFill() bool {
	return v.VCID() == FillVCID
}
