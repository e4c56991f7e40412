// Package stats keeps the receiver's rolling and lifetime counters.
//
// The recorder is written from the single-threaded processing loop and
// read from the same loop (dashboard snapshots), so it carries no locks.
// A registered prometheus collector set mirrors the lifetime counters for
// external scrapers; prometheus counters are internally synchronised, so
// the scrape path needs nothing extra.
package stats

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// bucket holds per-VCID frame counts covering up to one second.
type bucket struct {
	start  time.Time
	counts map[uint8]uint64
}

// How much rolling history the VC buckets keep.
const bucketRetention = 60 * time.Second

// Recorder accumulates receive-path counters.
type Recorder struct {
	start    time.Time
	packets  uint64
	bytes    uint64
	fills    uint64
	discards uint64
	crcBad   uint64
	lrits    uint64

	// Newest bucket first, like a deque pushed at the front.
	vcduBuckets []bucket
	apid        map[uint16]uint64

	promFrames   prometheus.Counter
	promBytes    prometheus.Counter
	promFills    prometheus.Counter
	promDiscards prometheus.Counter
	promCRCBad   prometheus.Counter
	promVC       *prometheus.CounterVec
	promAPID     *prometheus.CounterVec
	promLRITs    *prometheus.CounterVec
}

// New returns an empty recorder.
func New() *Recorder {
	return &Recorder{
		start: time.Now(),
		apid:  make(map[uint16]uint64),
		promFrames: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "goesrx_frames_total", Help: "VCDU frames received.",
		}),
		promBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "goesrx_bytes_total", Help: "Frame bytes received.",
		}),
		promFills: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "goesrx_fill_frames_total", Help: "Fill frames (VCID 63) received.",
		}),
		promDiscards: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "goesrx_discarded_packets_total", Help: "TP_PDUs discarded for lack of an open session.",
		}),
		promCRCBad: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "goesrx_crc_failures_total", Help: "TP_PDUs dropped on CRC mismatch.",
		}),
		promVC: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "goesrx_vc_frames_total", Help: "Frames per virtual channel.",
		}, []string{"vcid"}),
		promAPID: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "goesrx_apid_packets_total", Help: "TP_PDUs per APID.",
		}, []string{"apid"}),
		promLRITs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "goesrx_lrit_files_total", Help: "Reassembled LRIT files by filetype code.",
		}, []string{"filetype"}),
	}
}

// Register adds the collector set to reg. Optional; the recorder works
// unregistered.
func (r *Recorder) Register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{
		r.promFrames, r.promBytes, r.promFills, r.promDiscards, r.promCRCBad,
		r.promVC, r.promAPID, r.promLRITs,
	} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// RecordPacket counts one received frame.
func (r *Recorder) RecordPacket() {
	r.packets++
	r.promFrames.Inc()
}

// RecordBytes counts received frame bytes.
func (r *Recorder) RecordBytes(n int) {
	r.bytes += uint64(n)
	r.promBytes.Add(float64(n))
}

// RecordFill counts one fill frame.
func (r *Recorder) RecordFill() {
	r.fills++
	r.promFills.Inc()
}

// RecordDiscard counts one orphaned TP_PDU (continuation data with no
// open session).
func (r *Recorder) RecordDiscard() {
	r.discards++
	r.promDiscards.Inc()
}

// RecordCRCFailure counts one TP_PDU dropped for a bad checksum.
func (r *Recorder) RecordCRCFailure() {
	r.crcBad++
	r.promCRCBad.Inc()
}

// RecordVCDU counts one frame against its virtual channel's rolling
// buckets. The front bucket absorbs counts until it is a second old.
func (r *Recorder) RecordVCDU(vcid uint8) {
	r.promVC.WithLabelValues(vcLabel(vcid)).Inc()
	now := time.Now()
	if len(r.vcduBuckets) > 0 && now.Sub(r.vcduBuckets[0].start) < time.Second {
		r.vcduBuckets[0].counts[vcid]++
		return
	}
	r.vcduBuckets = append([]bucket{{
		start:  now,
		counts: map[uint8]uint64{vcid: 1},
	}}, r.vcduBuckets...)
	r.prune(now)
}

// RecordAPID counts one completed TP_PDU on an APID.
func (r *Recorder) RecordAPID(apid uint16) {
	r.apid[apid]++
	r.promAPID.WithLabelValues(apidLabel(apid)).Inc()
}

// RecordLRIT counts one emitted file.
func (r *Recorder) RecordLRIT(filetype uint8) {
	r.lrits++
	r.promLRITs.WithLabelValues(filetypeLabel(filetype)).Inc()
}

func (r *Recorder) prune(now time.Time) {
	for len(r.vcduBuckets) > 0 {
		last := r.vcduBuckets[len(r.vcduBuckets)-1]
		if now.Sub(last.start) <= bucketRetention {
			return
		}
		r.vcduBuckets = r.vcduBuckets[:len(r.vcduBuckets)-1]
	}
}

// VCRates sums the per-VCID buckets younger than window and divides by
// the window length, giving frames per second for the dashboard bars.
func (r *Recorder) VCRates(window time.Duration) map[uint8]float64 {
	now := time.Now()
	totals := make(map[uint8]uint64)
	for _, b := range r.vcduBuckets {
		if now.Sub(b.start) > window {
			continue
		}
		for id, n := range b.counts {
			totals[id] += n
		}
	}
	rates := make(map[uint8]float64, len(totals))
	secs := window.Seconds()
	for id, n := range totals {
		rates[id] = float64(n) / secs
	}
	return rates
}

// APIDCounts copies the lifetime per-APID counters.
func (r *Recorder) APIDCounts() map[uint16]uint64 {
	out := make(map[uint16]uint64, len(r.apid))
	for k, v := range r.apid {
		out[k] = v
	}
	return out
}

// Totals reports the lifetime counters: frames, bytes, fills, discards,
// CRC failures, and emitted files.
func (r *Recorder) Totals() (packets, bytes, fills, discards, crcBad, lrits uint64) {
	return r.packets, r.bytes, r.fills, r.discards, r.crcBad, r.lrits
}

func vcLabel(vcid uint8) string       { return strconv.Itoa(int(vcid)) }
func apidLabel(apid uint16) string    { return strconv.Itoa(int(apid)) }
func filetypeLabel(code uint8) string { return strconv.Itoa(int(code)) }
