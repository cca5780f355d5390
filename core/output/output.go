package output

import (
	"sync"

	"go.uber.org/zap"
)

// Sink receives progress and diagnostic messages from long running
// operations. Levels debug to error are purely informational and never stop
// processing. Critical records the error and returns it so the caller can
// abort the whole operation.
type Sink interface {
	Debug(msg string)
	Info(msg string)
	Warning(msg string)
	Error(msg string)
	Critical(err error) error
}

// ZapSink is the standard Sink backed by a zap logger.
type ZapSink struct {
	log *zap.Logger
}

// NewZapSink wraps the given logger into a Sink.
func NewZapSink(log *zap.Logger) *ZapSink {
	return &ZapSink{log: log}
}

func (s *ZapSink) Debug(msg string) {
	s.log.Debug(msg)
}

func (s *ZapSink) Info(msg string) {
	s.log.Info(msg)
}

func (s *ZapSink) Warning(msg string) {
	s.log.Warn(msg)
}

func (s *ZapSink) Error(msg string) {
	s.log.Error(msg)
}

// Critical logs the error and hands it back. It never exits the process,
// aborting is the caller's decision.
func (s *ZapSink) Critical(err error) error {
	s.log.Error(err.Error(), zap.Bool("critical", true))
	return err
}

// Level identifies the severity of a recorded message.
type Level string

const (
	LevelDebug    Level = "debug"
	LevelInfo     Level = "info"
	LevelWarning  Level = "warning"
	LevelError    Level = "error"
	LevelCritical Level = "critical"
)

// Entry is a single captured message.
type Entry struct {
	Level   Level
	Message string
}

// Recorder is a Sink that captures every message, used in tests to assert on
// emitted output.
type Recorder struct {
	mu      sync.Mutex
	entries []Entry
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) record(level Level, msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, Entry{Level: level, Message: msg})
}

func (r *Recorder) Debug(msg string)   { r.record(LevelDebug, msg) }
func (r *Recorder) Info(msg string)    { r.record(LevelInfo, msg) }
func (r *Recorder) Warning(msg string) { r.record(LevelWarning, msg) }
func (r *Recorder) Error(msg string)   { r.record(LevelError, msg) }

func (r *Recorder) Critical(err error) error {
	r.record(LevelCritical, err.Error())
	return err
}

// Entries returns a copy of every captured message in emission order.
func (r *Recorder) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Messages returns captured messages filtered by level, in emission order.
func (r *Recorder) Messages(level Level) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, entry := range r.entries {
		if entry.Level == level {
			out = append(out, entry.Message)
		}
	}
	return out
}
