// Package id generates the prefixed ULIDs used across the service.
//
// IDs are lexicographically sortable by creation time and carry a short
// type prefix so they read well in logs:
//
//	win_01HV6Z3K8Q3M6W1J5X8C0R2T9B   window
//	req_01HV6Z3K8Q3M6W1J5X8C0R2T9C   request
//	evt_01HV6Z3K8Q3M6W1J5X8C0R2T9D   stream event
package id

import (
	"crypto/rand"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// WindowID identifies a desktop window.
type WindowID string

// RequestID identifies an API request.
type RequestID string

// EventID identifies an event pushed to stream subscribers.
type EventID string

const (
	WindowPrefix  = "win"
	RequestPrefix = "req"
	EventPrefix   = "evt"
)

// Generator produces ULIDs. IDs from one generator are strictly increasing
// even within the same millisecond.
type Generator struct {
	mu      sync.Mutex
	entropy io.Reader
}

var (
	defaultGenerator *Generator
	once             sync.Once
)

// Default returns the process-wide generator.
func Default() *Generator {
	once.Do(func() {
		defaultGenerator = NewGenerator()
	})
	return defaultGenerator
}

// NewGenerator creates a generator backed by crypto/rand.
func NewGenerator() *Generator {
	return NewGeneratorWithEntropy(rand.Reader)
}

// NewGeneratorWithEntropy creates a generator with a custom entropy source,
// for deterministic tests.
func NewGeneratorWithEntropy(entropy io.Reader) *Generator {
	return &Generator{entropy: ulid.Monotonic(entropy, 0)}
}

// Generate creates a new ULID.
func (g *Generator) Generate() ulid.ULID {
	g.mu.Lock()
	defer g.mu.Unlock()

	return ulid.MustNew(ulid.Timestamp(time.Now()), g.entropy)
}

// GenerateString creates a new ULID as a string.
func (g *Generator) GenerateString() string {
	return g.Generate().String()
}

// GenerateWithPrefix creates a prefixed ULID string.
func (g *Generator) GenerateWithPrefix(prefix string) string {
	return fmt.Sprintf("%s_%s", prefix, g.GenerateString())
}

// NewWindowID generates a new window ID.
func NewWindowID() WindowID {
	return WindowID(Default().GenerateWithPrefix(WindowPrefix))
}

// NewRequestID generates a new request ID.
func NewRequestID() RequestID {
	return RequestID(Default().GenerateWithPrefix(RequestPrefix))
}

// NewEventID generates a new event ID.
func NewEventID() EventID {
	return EventID(Default().GenerateWithPrefix(EventPrefix))
}

func (id WindowID) String() string  { return string(id) }
func (id RequestID) String() string { return string(id) }
func (id EventID) String() string   { return string(id) }

// IsValid checks if s is a bare ULID.
func IsValid(s string) bool {
	_, err := ulid.Parse(s)
	return err == nil
}

// Parse parses a bare ULID.
func Parse(s string) (ulid.ULID, error) {
	return ulid.Parse(s)
}

// ParseWindowID validates a client-supplied window id.
func ParseWindowID(s string) (WindowID, error) {
	if err := checkPrefixed(s, WindowPrefix); err != nil {
		return "", err
	}
	return WindowID(s), nil
}

// Timestamp extracts the creation time from a bare or prefixed ULID.
func Timestamp(s string) (time.Time, error) {
	if i := strings.LastIndexByte(s, '_'); i >= 0 {
		s = s[i+1:]
	}
	parsed, err := Parse(s)
	if err != nil {
		return time.Time{}, err
	}
	return ulid.Time(parsed.Time()), nil
}

func checkPrefixed(s, prefix string) error {
	rest, ok := strings.CutPrefix(s, prefix+"_")
	if !ok {
		return fmt.Errorf("id %q: missing %s_ prefix", s, prefix)
	}
	if !IsValid(rest) {
		return fmt.Errorf("id %q: malformed ulid", s)
	}
	return nil
}
