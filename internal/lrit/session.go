package lrit

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/goesrx/goesrx/internal/rice"
)

// Session collects the TP_PDU sequence of one in-flight file on one APID
// and produces a single LRIT when the terminal packet arrives.
type Session struct {
	buf     []byte
	lastSeq uint16
	apid    uint16
	vcid    uint8

	// Decompression is decided from the header records. Until the opening
	// packets have delivered enough bytes to read them, the decision is
	// pending and payloads append raw.
	riceDecided bool
	dec         *rice.Decoder

	log *zap.SugaredLogger
}

// openerDiscard is how many leading payload bytes of the opening TP_PDU
// are dropped. Not derived from any documented header field; goestools
// established empirically that the primary header starts 10 bytes in.
const openerDiscard = 10

// newSession opens a session from a first or unsegmented TP_PDU whose CRC
// has already been verified.
func newSession(p *TPPDU, log *zap.SugaredLogger) (*Session, error) {
	payload := p.Payload()
	if len(payload) < openerDiscard {
		return nil, fmt.Errorf("lrit: opening TP_PDU has only %d payload bytes", len(payload))
	}
	s := &Session{
		buf:     append([]byte(nil), payload[openerDiscard:]...),
		lastSeq: p.SequenceCount(),
		apid:    p.APID(),
		vcid:    p.VCID(),
		log:     log,
	}
	if err := s.decideRice(); err != nil {
		return nil, err
	}
	return s, nil
}

// decideRice inspects the buffered headers once they are fully present
// and, for rice-compressed image sessions, builds the scanline decoder.
// Called from the opener and again from every append until decided, since
// the primary header may span more than one TP_PDU.
func (s *Session) decideRice() error {
	if s.riceDecided {
		return nil
	}
	prim, err := parsePrimary(s.buf)
	if err != nil {
		// Not enough bytes yet.
		return nil
	}
	if int(prim.TotalHeaderLength) > len(s.buf) {
		s.log.Debugf("APID %d: %d of %d header bytes buffered, deferring header inspection",
			s.apid, len(s.buf), prim.TotalHeaderLength)
		return nil
	}
	headers, err := ParseHeaders(s.buf)
	if err != nil {
		return fmt.Errorf("lrit: inspecting session headers: %w", err)
	}
	s.riceDecided = true
	if headers.ImageStructure == nil || headers.Rice == nil {
		return nil
	}
	dec, err := rice.NewDecoder(
		headers.Rice.Flags,
		int(headers.ImageStructure.BitsPerPixel),
		int(headers.Rice.PixelsPerBlock),
		int(headers.ImageStructure.Columns),
	)
	if err != nil {
		return fmt.Errorf("lrit: sizing rice decoder for APID %d: %w", s.apid, err)
	}
	s.dec = dec
	return nil
}

// append integrates a continuation or final TP_PDU whose CRC has already
// been verified. Returns an error only for conditions fatal to the
// session; the caller discards the session in that case.
func (s *Session) append(p *TPPDU) error {
	newSeq := p.SequenceCount()
	// 4_LRIT_Transmitter-specs.pdf 6.2.1 calls this counter modulo 16394,
	// almost certainly a typo for 2^14.
	if d := diffWithWrap(uint32(s.lastSeq), uint32(newSeq), 1<<14); d > 1 {
		s.log.Warnf("VC %d: TP_PDU drop on APID %d (skipped %d, prev %d, now %d)",
			s.vcid, s.apid, d-1, s.lastSeq, newSeq)
	}
	s.lastSeq = newSeq

	payload := p.Payload()
	if s.dec == nil {
		s.buf = append(s.buf, payload...)
		return s.decideRice()
	}

	// One scanline of compressed pixels per TP_PDU.
	line, err := s.dec.Decode(payload)
	if err != nil {
		return fmt.Errorf("lrit: APID %d scanline decode: %w", s.apid, err)
	}
	if len(line) != s.dec.PixelsPerScanline() {
		return fmt.Errorf("lrit: APID %d scanline decoded to %d pixels, want %d",
			s.apid, len(line), s.dec.PixelsPerScanline())
	}
	s.buf = append(s.buf, line...)
	return nil
}

// finish parses the accumulated buffer and splits the file body off at
// the total header length. The session is spent afterwards.
func (s *Session) finish() (*LRIT, error) {
	headers, err := ParseHeaders(s.buf)
	if err != nil {
		return nil, fmt.Errorf("lrit: finishing APID %d: %w", s.apid, err)
	}
	return &LRIT{
		VCID:    s.vcid,
		Headers: headers,
		Data:    s.buf[headers.Primary.TotalHeaderLength:],
	}, nil
}

// diffWithWrap is the forward distance from low to high modulo max.
func diffWithWrap(low, high, max uint32) uint32 {
	if low <= high {
		return high - low
	}
	return max - low + high
}
