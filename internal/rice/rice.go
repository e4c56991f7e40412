// Package rice decodes the CCSDS 121.0 adaptive entropy coding used for
// GOES HRIT imagery scanlines (the szip flavour: unit-delay predictor,
// block-adaptive sample splitting, low-entropy escapes).
//
// Each TP_PDU of a rice-compressed image session carries exactly one
// scanline's coded data; a Decoder is sized once from the image-structure
// and rice-parameter headers and then decodes scanlines one at a time.
package rice

import (
	"errors"
	"fmt"
)

// Option flag bits, matching the szip option mask carried in the LRIT
// rice-parameter header.
const (
	FlagAllowK13 = 1 << 0
	FlagChip     = 1 << 1
	FlagEC       = 1 << 2
	FlagLSB      = 1 << 3
	FlagMSB      = 1 << 4
	FlagNN       = 1 << 5 // unit-delay (nearest-neighbour) preprocessor
	FlagRaw      = 1 << 6 // not consulted by Decoder; the reference sample follows FlagNN
)

// Blocks per segment for the zero-block run encoding.
const segmentBlocks = 64

var (
	// ErrTruncated means a scanline's bitstream ended before the declared
	// pixel count was produced.
	ErrTruncated = errors.New("rice: truncated scanline")
	// ErrOverrun means a scanline decoded to more samples than fit.
	ErrOverrun = errors.New("rice: scanline produced too many samples")
)

// Decoder holds the per-session decompression parameters. It is created
// when the session's headers first expose the image structure and rice
// parameter records, and survives for the rest of the session.
type Decoder struct {
	flags          uint16
	bitsPerPixel   uint
	pixelsPerBlock int
	width          int // pixels per scanline

	idBits uint
	maxK   uint
}

// NewDecoder validates the header parameters and returns a scanline
// decoder. Only sample sizes up to 8 bits are supported; GOES imagery is
// 8 bpp and DCS/text sessions are never rice coded.
func NewDecoder(flags uint16, bitsPerPixel, pixelsPerBlock, scanlineWidth int) (*Decoder, error) {
	if bitsPerPixel < 1 || bitsPerPixel > 8 {
		return nil, fmt.Errorf("rice: unsupported bits per pixel %d", bitsPerPixel)
	}
	if pixelsPerBlock < 2 || pixelsPerBlock > 64 || pixelsPerBlock%2 != 0 {
		return nil, fmt.Errorf("rice: bad pixels per block %d", pixelsPerBlock)
	}
	if scanlineWidth < 1 {
		return nil, fmt.Errorf("rice: bad scanline width %d", scanlineWidth)
	}
	return &Decoder{
		flags:          flags,
		bitsPerPixel:   uint(bitsPerPixel),
		pixelsPerBlock: pixelsPerBlock,
		width:          scanlineWidth,
		// For n <= 8 bit samples the option id is 3 bits: 0 escapes to
		// the low-entropy options, 1..6 select split k=0..5, 7 means
		// samples are stored uncoded.
		idBits: 3,
		maxK:   5,
	}, nil
}

// PixelsPerScanline is the decoded size of one scanline in samples.
func (d *Decoder) PixelsPerScanline() int { return d.width }

// preprocessed reports whether samples were delta-mapped against a
// predictor before entropy coding.
func (d *Decoder) preprocessed() bool { return d.flags&FlagNN != 0 }

// Decode decompresses one scanline and returns exactly PixelsPerScanline
// samples, one byte each.
func (d *Decoder) Decode(compressed []byte) ([]byte, error) {
	br := bitReader{data: compressed}
	out := make([]byte, 0, d.width)

	ref := -1
	if d.preprocessed() {
		// The scanline opens with an uncoded reference sample.
		v, ok := br.bits(d.bitsPerPixel)
		if !ok {
			return nil, ErrTruncated
		}
		out = append(out, byte(v))
		ref = int(v)
	}

	for len(out) < d.width {
		// First block after a reference sample codes one fewer sample.
		blockLen := d.pixelsPerBlock
		if len(out) == 1 && ref >= 0 {
			blockLen--
		}
		if remaining := d.width - len(out); blockLen > remaining {
			blockLen = remaining
		}

		deltas, zeroRun, err := d.decodeBlock(&br, blockLen)
		if err != nil {
			return nil, err
		}
		if zeroRun > 0 {
			// A zero-block run spans whole blocks of zero deltas.
			total := blockLen + (zeroRun-1)*d.pixelsPerBlock
			if remaining := d.width - len(out); total > remaining {
				total = remaining
			}
			deltas = make([]uint32, total)
		}

		for _, delta := range deltas {
			if len(out) >= d.width {
				return nil, ErrOverrun
			}
			var sample byte
			if d.preprocessed() {
				sample = unmap(delta, ref, int(1)<<d.bitsPerPixel-1)
				ref = int(sample)
			} else {
				if delta >= uint32(1)<<d.bitsPerPixel {
					return nil, fmt.Errorf("rice: sample %d exceeds %d bits", delta, d.bitsPerPixel)
				}
				sample = byte(delta)
			}
			out = append(out, sample)
		}
	}

	return out, nil
}

// decodeBlock reads one coded block of blockLen mapped deltas. For the
// zero-block escape it instead returns the run length in whole blocks.
func (d *Decoder) decodeBlock(br *bitReader, blockLen int) (deltas []uint32, zeroRun int, err error) {
	id, ok := br.bits(d.idBits)
	if !ok {
		return nil, 0, ErrTruncated
	}

	switch {
	case id == 0:
		// Low-entropy escape: one more bit picks zero-block or
		// second-extension.
		ext, ok := br.bits(1)
		if !ok {
			return nil, 0, ErrTruncated
		}
		if ext == 0 {
			run, err := d.zeroBlockRun(br)
			if err != nil {
				return nil, 0, err
			}
			return nil, run, nil
		}
		deltas, err = d.secondExtension(br, blockLen)
		return deltas, 0, err

	case id == 1<<d.idBits-1:
		// Uncoded: blockLen raw samples.
		deltas = make([]uint32, blockLen)
		for i := range deltas {
			v, ok := br.bits(d.bitsPerPixel)
			if !ok {
				return nil, 0, ErrTruncated
			}
			deltas[i] = v
		}
		return deltas, 0, nil

	default:
		// Sample splitting with k = id-1: a fundamental sequence for the
		// high part, then k literal low bits per sample.
		k := uint(id - 1)
		if k > d.maxK {
			return nil, 0, fmt.Errorf("rice: split exponent %d out of range", k)
		}
		fs := make([]uint32, blockLen)
		for i := range fs {
			v, ok := br.unary()
			if !ok {
				return nil, 0, ErrTruncated
			}
			fs[i] = v
		}
		deltas = make([]uint32, blockLen)
		for i := range deltas {
			low := uint32(0)
			if k > 0 {
				low, ok = br.bits(k)
				if !ok {
					return nil, 0, ErrTruncated
				}
			}
			deltas[i] = fs[i]<<k | low
		}
		return deltas, 0, nil
	}
}

// zeroBlockRun decodes the run length after a zero-block escape: counts
// 1..4 encode as fs = n-1, fs 4 means "remainder of segment", counts 5..63
// encode as fs = n.
func (d *Decoder) zeroBlockRun(br *bitReader) (int, error) {
	fs, ok := br.unary()
	if !ok {
		return 0, ErrTruncated
	}
	switch {
	case fs < 4:
		return int(fs) + 1, nil
	case fs == 4:
		return segmentBlocks, nil
	default:
		return int(fs), nil
	}
}

// secondExtension decodes blockLen samples coded pairwise: each pair was
// mapped to m = (a+b)(a+b+1)/2 + b and stored as a fundamental sequence.
func (d *Decoder) secondExtension(br *bitReader, blockLen int) ([]uint32, error) {
	// A reference-shortened block is coded with an implicit leading zero
	// so the pair count stays whole.
	shortened := blockLen%2 != 0
	if shortened {
		blockLen++
	}
	deltas := make([]uint32, 0, blockLen)
	for len(deltas) < blockLen {
		m, ok := br.unary()
		if !ok {
			return nil, ErrTruncated
		}
		// Invert the pairing: find the largest s with s(s+1)/2 <= m.
		s := uint32(0)
		for (s+1)*(s+2)/2 <= m {
			s++
		}
		b := m - s*(s+1)/2
		a := s - b
		deltas = append(deltas, a, b)
	}
	if shortened {
		deltas = deltas[1:]
	}
	return deltas, nil
}

// unmap inverts the standard CCSDS delta mapping given the predictor
// value prev and the sample ceiling xmax.
func unmap(mapped uint32, prev, xmax int) byte {
	theta := prev
	if xmax-prev < theta {
		theta = xmax - prev
	}
	var delta int
	switch {
	case int(mapped) <= 2*theta:
		if mapped%2 == 0 {
			delta = int(mapped) / 2
		} else {
			delta = -int(mapped+1) / 2
		}
	case prev < xmax-prev:
		// Only a positive excursion can exceed theta.
		delta = int(mapped) - theta
	default:
		delta = -(int(mapped) - theta)
	}
	return byte(prev + delta)
}

// bitReader walks a byte slice MSB first.
type bitReader struct {
	data []byte
	pos  int // bit cursor
}

func (r *bitReader) bits(n uint) (uint32, bool) {
	v := uint32(0)
	for i := uint(0); i < n; i++ {
		byteIdx := r.pos >> 3
		if byteIdx >= len(r.data) {
			return 0, false
		}
		bit := r.data[byteIdx] >> (7 - uint(r.pos&7)) & 1
		v = v<<1 | uint32(bit)
		r.pos++
	}
	return v, true
}

// unary reads a fundamental-sequence value: the count of zeros before the
// terminating one bit.
func (r *bitReader) unary() (uint32, bool) {
	count := uint32(0)
	for {
		b, ok := r.bits(1)
		if !ok {
			return 0, false
		}
		if b == 1 {
			return count, true
		}
		count++
	}
}
