package model

import "time"

// TransferStates is the progress accounting for one active transfer.
// It is reset at the start of every top-level send/recv and observed
// by the transfer engine and the UI's Progress popup.
type TransferStates struct {
	Progress     float64 // percent, clamped to [0, 100]
	Started      time.Time
	Aborted      bool
	BytesWritten int64
	BytesTotal   int64
}

// Reset re-initialises all fields and restarts the clock.
func (t *TransferStates) Reset() {
	t.Progress = 0
	t.Started = time.Now()
	t.Aborted = false
	t.BytesWritten = 0
	t.BytesTotal = 0
}

// SetProgress records how many bytes have moved out of total and
// recomputes Progress, clamped to [0, 100].
func (t *TransferStates) SetProgress(written, total int64) {
	t.BytesWritten = written
	t.BytesTotal = total
	if total <= 0 {
		t.Progress = 0
		return
	}
	p := float64(written) * 100.0 / float64(total)
	switch {
	case p < 0:
		p = 0
	case p > 100:
		p = 100
	}
	t.Progress = p
}

// Elapsed returns the wall time since Reset.
func (t *TransferStates) Elapsed() time.Duration {
	return time.Since(t.Started)
}

// AverageBytesPerSec is bytes_written/elapsed_secs, or 0 when elapsed
// is under a second (spec.md §4.4 step 7).
func (t *TransferStates) AverageBytesPerSec() float64 {
	secs := t.Elapsed().Seconds()
	if secs < 1.0 {
		return 0
	}
	return float64(t.BytesWritten) / secs
}
