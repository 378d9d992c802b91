// Package netlog implements the simulator's observability bus: a
// filtered publish/subscribe sink for structured events plus a
// bounded ring buffer, threaded explicitly into each piece of
// equipment at construction instead of living behind a package-level
// logger singleton.
//
// The bus also renders every event through a standard log/slog.Logger,
// following the embeddable info/warn/error/debug helper-struct shape
// used throughout this codebase's lower layers, so console output and
// UI subscription share one code path.
package netlog

import (
	"context"
	"log/slog"
	"strings"
	"sync"
)

// Event is a structured observability record.
type Event struct {
	TimestampMillis int64
	Level           Level
	Source          string // equipment id
	EventName       string // dotted namespace, e.g. "port.ip-config"
	Message         string
	Data            []slog.Attr
}

// Filter narrows which events a subscriber receives. Zero-valued
// fields mean "don't filter on this dimension".
type Filter struct {
	Source      string // exact match
	EventPrefix string // prefix match against EventName
	MinLevel    Level
}

func (f Filter) matches(e Event) bool {
	if e.Level < f.MinLevel {
		return false
	}
	if f.Source != "" && f.Source != e.Source {
		return false
	}
	if f.EventPrefix != "" && !strings.HasPrefix(e.EventName, f.EventPrefix) {
		return false
	}
	return true
}

// Token identifies a subscription for later Unsubscribe calls.
type Token uint64

type subscription struct {
	token  Token
	filter Filter
	fn     func(Event)
}

// Bus is a World-scoped event sink. The zero value is not usable;
// construct with NewBus.
type Bus struct {
	mu        sync.Mutex
	subs      []subscription
	nextToken Token
	ring      ring
	log       *slog.Logger
}

// NewBus creates a Bus backed by handler for console/structured
// output, with a ring buffer sized to capacity events (0 selects the
// spec's default of 10000).
func NewBus(handler slog.Handler, capacity int) *Bus {
	if handler == nil {
		handler = slog.NewTextHandler(nilWriter{}, nil)
	}
	return &Bus{
		ring: newRing(capacity),
		log:  slog.New(handler),
	}
}

type nilWriter struct{}

func (nilWriter) Write(p []byte) (int, error) { return len(p), nil }

// Subscribe registers fn to be called synchronously, from the
// publishing call stack, for every event matching filter. It returns
// a Token that Unsubscribe accepts to remove the subscription.
func (b *Bus) Subscribe(filter Filter, fn func(Event)) Token {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextToken++
	tok := b.nextToken
	b.subs = append(b.subs, subscription{token: tok, filter: filter, fn: fn})
	return tok
}

// Unsubscribe removes the subscription identified by tok, if present.
func (b *Bus) Unsubscribe(tok Token) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, s := range b.subs {
		if s.token == tok {
			b.subs = append(b.subs[:i], b.subs[i+1:]...)
			return
		}
	}
}

// Publish fans e out to every matching subscriber (synchronously, in
// registration order), appends it to the ring buffer, and forwards it
// to the underlying slog.Logger.
func (b *Bus) Publish(e Event) {
	b.mu.Lock()
	b.ring.push(e)
	subs := make([]subscription, len(b.subs))
	copy(subs, b.subs)
	b.mu.Unlock()

	b.log.LogAttrs(context.Background(), e.Level.slogLevel(), e.Message, append([]slog.Attr{
		slog.String("source", e.Source),
		slog.String("event", e.EventName),
	}, e.Data...)...)

	for _, s := range subs {
		if s.filter.matches(e) {
			s.fn(e)
		}
	}
}

// Snapshot returns the events currently retained in the ring buffer,
// oldest first.
func (b *Bus) Snapshot() []Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.ring.Snapshot()
}

// emit is a convenience used by the level-specific helpers below.
func (b *Bus) emit(level Level, source, event, msg string, attrs ...slog.Attr) {
	b.Publish(Event{Level: level, Source: source, EventName: event, Message: msg, Data: attrs})
}

func (b *Bus) Debug(source, event, msg string, attrs ...slog.Attr) {
	b.emit(LevelDebug, source, event, msg, attrs...)
}
func (b *Bus) Info(source, event, msg string, attrs ...slog.Attr) {
	b.emit(LevelInfo, source, event, msg, attrs...)
}
func (b *Bus) Warn(source, event, msg string, attrs ...slog.Attr) {
	b.emit(LevelWarn, source, event, msg, attrs...)
}
func (b *Bus) Error(source, event, msg string, attrs ...slog.Attr) {
	b.emit(LevelError, source, event, msg, attrs...)
}
