// Package benchmark measures wall-clock duration around a single timed
// operation and emits a fixed-shape record to the log sink. It never
// affects control flow.
package benchmark

import (
	"encoding/json"
	"time"

	"github.com/zkforge/snarkpipe/log"
)

// Record is the emitted measurement. Iterations is fixed at 1 per
// invocation; Microseconds covers exactly the bracketed operation,
// excluding any I/O before or after.
type Record struct {
	Iterations   int   `json:"iterations"`
	Microseconds int64 `json:"microseconds"`
}

// Recorder brackets one timed operation.
type Recorder struct {
	start time.Time
}

// Start captures a monotonic timestamp.
func Start() *Recorder {
	return &Recorder{start: time.Now()}
}

// StopAndEmit computes the elapsed time since Start and emits the
// record as a single structured line.
func (r *Recorder) StopAndEmit() Record {
	rec := Record{
		Iterations:   1,
		Microseconds: time.Since(r.start).Microseconds(),
	}
	b, err := json.Marshal(rec)
	if err != nil {
		log.Errorw(err, "failed to encode benchmark record")
		return rec
	}
	log.Infof("ZKPROOF_BENCHMARK: %s", b)
	return rec
}
