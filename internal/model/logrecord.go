package model

import "time"

// LogLevel is the severity of a LogRecord.
type LogLevel int

const (
	LogInfo LogLevel = iota
	LogWarn
	LogError
)

func (l LogLevel) String() string {
	switch l {
	case LogWarn:
		return "WARN"
	case LogError:
		return "ERROR"
	default:
		return "INFO"
	}
}

// LogRecord is one entry in the activity's log pane.
type LogRecord struct {
	Time  time.Time
	Level LogLevel
	Msg   string
}

// LogHistoryCapacity is the bound spec.md §3 places on the log deque.
const LogHistoryCapacity = 256

// LogHistory is the bounded, newest-first log deque FileTransferActivity
// owns. Insertion is always at the front; once the deque is full the
// oldest record is evicted at the back.
type LogHistory struct {
	deque *Deque[LogRecord]
}

// NewLogHistory creates an empty history bounded to LogHistoryCapacity.
func NewLogHistory() *LogHistory {
	return &LogHistory{deque: NewDeque[LogRecord](LogHistoryCapacity)}
}

// Push prepends a new record, evicting the oldest if the history is
// already at capacity.
func (h *LogHistory) Push(level LogLevel, msg string) {
	h.deque.PushFront(LogRecord{Time: time.Now(), Level: level, Msg: msg})
}

// Len returns the number of records currently held.
func (h *LogHistory) Len() int { return h.deque.Len() }

// At returns the record at index i, 0 being the newest.
func (h *LogHistory) At(i int) LogRecord { return h.deque.At(i) }

// Records returns all records, newest first. The caller must not
// mutate the returned slice.
func (h *LogHistory) Records() []LogRecord { return h.deque.Items() }
