package lrit

import (
	"go.uber.org/zap"

	"github.com/goesrx/goesrx/internal/stats"
)

// Demultiplexer routes frames to their virtual channels, creating channel
// state lazily on first sight. Channels never interact with one another.
type Demultiplexer struct {
	vcs   map[uint8]*VirtualChannel
	log   *zap.SugaredLogger
	stats *stats.Recorder
}

// NewDemultiplexer returns an empty demultiplexer.
func NewDemultiplexer(log *zap.SugaredLogger, rec *stats.Recorder) *Demultiplexer {
	return &Demultiplexer{
		vcs:   make(map[uint8]*VirtualChannel),
		log:   log,
		stats: rec,
	}
}

// ProcessFrame consumes one 892-byte frame and returns any files it
// completed.
func (d *Demultiplexer) ProcessFrame(frame []byte) ([]*LRIT, error) {
	v, err := NewVCDU(frame)
	if err != nil {
		return nil, err
	}
	d.stats.RecordPacket()
	d.stats.RecordBytes(len(frame))
	d.stats.RecordVCDU(v.VCID())

	if v.IsFill() {
		d.stats.RecordFill()
		return nil, nil
	}

	vc, ok := d.vcs[v.VCID()]
	if !ok {
		// Seed the counter from this frame so the first one is not
		// counted as a gap.
		vc = NewVirtualChannel(v.VCID(), v.Counter(), d.log, d.stats)
		d.vcs[v.VCID()] = vc
		d.log.Infof("VC %d: first frame (spacecraft %d)", v.VCID(), v.SCID())
	}
	return vc.ProcessVCDU(v), nil
}
