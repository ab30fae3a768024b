package alert

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Sink receives shopper-facing messages. Implementations must not block
// for long and must never panic.
type Sink interface {
	Success(message string)
	Error(message string)
}

type Alert struct {
	ID        uint64    `json:"id"`
	Level     Level     `json:"level"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// Banner holds the transient, dismissible alerts of one session. Only the
// newest limit alerts are kept.
type Banner struct {
	mu     sync.Mutex
	alerts []Alert
	nextID uint64
	limit  int
}

func NewBanner(limit int) *Banner {
	if limit <= 0 {
		limit = 10
	}
	return &Banner{limit: limit}
}

func (b *Banner) Success(message string) { b.push(LevelSuccess, message) }
func (b *Banner) Error(message string)   { b.push(LevelError, message) }

func (b *Banner) push(level Level, message string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	b.alerts = append(b.alerts, Alert{
		ID:        b.nextID,
		Level:     level,
		Message:   message,
		CreatedAt: time.Now(),
	})
	if over := len(b.alerts) - b.limit; over > 0 {
		b.alerts = append([]Alert(nil), b.alerts[over:]...)
	}
}

// List returns pending alerts, oldest first.
func (b *Banner) List() []Alert {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Alert{}, b.alerts...)
}

// Dismiss removes one alert and reports whether it was pending.
func (b *Banner) Dismiss(id uint64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, a := range b.alerts {
		if a.ID == id {
			b.alerts = append(b.alerts[:i], b.alerts[i+1:]...)
			return true
		}
	}
	return false
}

func (b *Banner) DismissAll() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.alerts = nil
}

// LogSink writes alerts to the service log.
type LogSink struct {
	logger *zap.Logger
}

func NewLogSink(logger *zap.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (l *LogSink) Success(message string) {
	l.logger.Info("alert", zap.String("level", string(LevelSuccess)), zap.String("message", message))
}

func (l *LogSink) Error(message string) {
	l.logger.Warn("alert", zap.String("level", string(LevelError)), zap.String("message", message))
}

// Multi fans every alert out to all sinks.
type Multi []Sink

func (m Multi) Success(message string) {
	for _, s := range m {
		s.Success(message)
	}
}

func (m Multi) Error(message string) {
	for _, s := range m {
		s.Error(message)
	}
}
