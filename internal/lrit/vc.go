package lrit

import (
	"encoding/binary"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/goesrx/goesrx/internal/stats"
)

// noHeaderPointer is the first-header-pointer sentinel meaning no TP_PDU
// header starts in this frame.
const noHeaderPointer = 2047

// VirtualChannel extracts LRIT files from the frame stream of one VCID.
// Different product families are transmitted on different channels; a
// TP_PDU never spans two of them.
type VirtualChannel struct {
	id          uint8
	lastCounter uint32

	// The in-flight TP_PDU whose tail is expected in the next frame.
	current *TPPDU

	// APID -> session being assembled on this channel.
	sessions map[uint16]*Session

	log   *zap.SugaredLogger
	stats *stats.Recorder

	// A lossy channel can gap on every frame; keep the warnings readable.
	gapWarn rate.Sometimes
}

// NewVirtualChannel creates the channel state, seeding the counter from
// the first frame seen so startup does not register a spurious gap.
func NewVirtualChannel(id uint8, initialCounter uint32, log *zap.SugaredLogger, rec *stats.Recorder) *VirtualChannel {
	return &VirtualChannel{
		id:          id,
		lastCounter: initialCounter,
		sessions:    make(map[uint16]*Session),
		log:         log,
		stats:       rec,
		gapWarn:     rate.Sometimes{Interval: time.Second},
	}
}

// ProcessVCDU walks one frame's M_PDU zone and returns any files whose
// terminal TP_PDU completed inside it, in completion order.
func (vc *VirtualChannel) ProcessVCDU(v VCDU) []*LRIT {
	data := v.Data()

	// A counter jump means lost frames. Any in-flight TP_PDU is
	// indeterminate: the missing frames could have finished it or started
	// another.
	if d := diffWithWrap(vc.lastCounter, v.Counter(), 1<<24); d > 1 {
		if vc.current != nil {
			vc.current = nil
			vc.gapWarn.Do(func() {
				vc.log.Warnf("VC %d: frame counter jumped by %d, dropping incomplete TP_PDU", vc.id, d)
			})
		}
	}
	vc.lastCounter = v.Counter()

	// The low 11 bits of the M_PDU header locate the first TP_PDU header
	// inside the packet zone. The 5 spare bits above them are zero on
	// this downlink.
	pointer := int(binary.BigEndian.Uint16(data[:2]) & 0x7FF)

	var out []*LRIT
	offset := 2

	if tp := vc.current; tp != nil {
		vc.current = nil
		// Finish the carried-over TP_PDU from the head of the packet
		// zone.
		offset += tp.Feed(data[offset:])
		if !tp.HeaderComplete() || !tp.LengthValid() {
			// A header split across the frame boundary with a mangled
			// length field; nothing downstream of it in this frame can
			// be trusted either way, so resynchronise at the pointer.
			vc.log.Warnf("VC %d: dropping TP_PDU with invalid declared length", vc.id)
			if pointer == noHeaderPointer {
				return out
			}
			offset = 2 + pointer
		} else if tp.PayloadComplete() {
			if l := vc.route(tp); l != nil {
				out = append(out, l)
			}
			if pointer == noHeaderPointer {
				// No new header in this frame; whatever trails the
				// completed packet is not ours to read.
				return out
			}
			if offset != 2+pointer {
				// The next header must start exactly where the
				// continuation ended. A mismatch means the pointer and
				// the carried length disagree; trust the pointer and
				// resume reading there. The completed packet has already
				// been routed above.
				vc.log.Warnf("VC %d: continuation ended at offset %d but pointer says %d, resynchronising",
					vc.id, offset-2, pointer)
				offset = 2 + pointer
			}
		} else {
			// Payload still short: the whole frame must have been
			// continuation bytes.
			if pointer != noHeaderPointer {
				vc.log.Warnf("VC %d: unfinished TP_PDU but pointer %d present, resynchronising", vc.id, pointer)
				offset = 2 + pointer
			} else {
				vc.current = tp
				return out
			}
		}
	} else {
		if pointer == noHeaderPointer {
			// Continuation bytes for a TP_PDU we never saw the start of;
			// nothing to anchor on until a frame carries a header.
			return out
		}
		offset = 2 + pointer
	}

	// Read new TP_PDUs back to back until the frame is exhausted; an
	// unfinished one must be the tail and carries into the next frame.
	for offset < len(data) {
		tp := NewTPPDU(vc.id)
		offset += tp.Feed(data[offset:])
		if tp.HeaderComplete() && !tp.LengthValid() {
			vc.log.Warnf("VC %d: TP_PDU with invalid declared length %d, skipping rest of frame",
				vc.id, tp.DeclaredLength())
			break
		}
		if tp.PayloadComplete() {
			if l := vc.route(tp); l != nil {
				out = append(out, l)
			}
			continue
		}
		vc.current = tp
		break
	}

	return out
}

// route hands one completed TP_PDU to its session per the sequence flag.
// Returns a finished LRIT for terminal packets, else nil.
func (vc *VirtualChannel) route(tp *TPPDU) *LRIT {
	apid := tp.APID()
	if apid == FillAPID {
		return nil
	}
	vc.stats.RecordAPID(apid)

	if !tp.VerifyCRC() {
		vc.stats.RecordCRCFailure()
		vc.log.Warnf("VC %d: CRC mismatch on APID %d, dropping TP_PDU", vc.id, apid)
		return nil
	}

	switch tp.SequenceFlag() {
	case FlagFirst, FlagUnsegmented:
		if _, ok := vc.sessions[apid]; ok {
			vc.log.Warnf("VC %d: new first TP_PDU on APID %d, evicting unfinished session", vc.id, apid)
			delete(vc.sessions, apid)
		}
		sess, err := newSession(tp, vc.log)
		if err != nil {
			vc.log.Warnf("VC %d: cannot open session on APID %d: %v", vc.id, apid, err)
			return nil
		}
		if tp.SequenceFlag() == FlagFirst {
			vc.sessions[apid] = sess
			return nil
		}
		return vc.finishSession(apid, sess)

	case FlagContinuation:
		sess, ok := vc.sessions[apid]
		if !ok {
			vc.stats.RecordDiscard()
			return nil
		}
		if err := sess.append(tp); err != nil {
			vc.log.Warnf("VC %d: session on APID %d failed: %v", vc.id, apid, err)
			delete(vc.sessions, apid)
		}
		return nil

	case FlagLast:
		sess, ok := vc.sessions[apid]
		if !ok {
			vc.log.Warnf("VC %d: final TP_PDU for APID %d with no session in progress", vc.id, apid)
			vc.stats.RecordDiscard()
			return nil
		}
		delete(vc.sessions, apid)
		if err := sess.append(tp); err != nil {
			vc.log.Warnf("VC %d: session on APID %d failed: %v", vc.id, apid, err)
			return nil
		}
		return vc.finishSession(apid, sess)
	}
	return nil
}

func (vc *VirtualChannel) finishSession(apid uint16, sess *Session) *LRIT {
	l, err := sess.finish()
	if err != nil {
		vc.log.Warnf("VC %d: discarding session on APID %d: %v", vc.id, apid, err)
		return nil
	}
	vc.stats.RecordLRIT(l.Headers.Primary.FileTypeCode)
	return l
}
