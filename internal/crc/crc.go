// Package crc implements the two checksums used throughout the LRIT stack:
// CRC-16/CCITT-FALSE, which protects every TP_PDU payload and every DCS
// block, and the ISO-3309 CRC-32 used by DCS file headers.
package crc

import "hash/crc32"

// CRC-16/CCITT-FALSE: polynomial 0x1021, init 0xFFFF, no reflection, no
// final XOR.  Described in 5_LRIT_Mission-data.pdf.
var crc16Table [256]uint16

// ISO-3309 CRC-32 (the Ethernet polynomial, reflected).
var crc32Table *crc32.Table

func init() {
	for i := 0; i < 256; i++ {
		c := uint16(i) << 8
		for bit := 0; bit < 8; bit++ {
			if c&0x8000 != 0 {
				c = c<<1 ^ 0x1021
			} else {
				c <<= 1
			}
		}
		crc16Table[i] = c
	}
	crc32Table = crc32.MakeTable(crc32.IEEE)
}

// Checksum16 returns the CRC-16/CCITT-FALSE of data.
func Checksum16(data []byte) uint16 {
	c := uint16(0xFFFF)
	for _, b := range data {
		c = c<<8 ^ crc16Table[byte(c>>8)^b]
	}
	return c
}

// Checksum32 returns the ISO-3309 CRC-32 of data.
func Checksum32(data []byte) uint32 {
	return crc32.Checksum(data, crc32Table)
}
