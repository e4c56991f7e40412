// Package lrit reassembles LRIT/HRIT application files from a stream of
// fixed-size VCDU transfer frames.
//
// The stack has three layers, mirroring the downlink protocol: frames are
// demultiplexed per virtual channel, TP_PDU transport packets are rebuilt
// from the frames' M_PDU zones, and TP_PDU sequences are concatenated per
// APID into finished files.
package lrit

import "fmt"

// LRIT is one reassembled application file.
type LRIT struct {
	// VCID is the virtual channel the file came in on.
	VCID uint8

	Headers Headers

	// Data is the file body, after all header records.
	Data []byte
}

func (l *LRIT) String() string {
	return fmt.Sprintf("<LRIT vcid=%d filetype=%d data.len=%d>", l.VCID, l.Headers.Primary.FileTypeCode, len(l.Data))
}
