package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

var (
	// ErrUnknownPath is returned when a dotted path names no parameter.
	ErrUnknownPath = errors.New("unknown config path")
	// ErrInvalidValue is returned when a value has the wrong type or is out of range.
	ErrInvalidValue = errors.New("invalid config value")
)

// Change describes one accepted mutation. Path is PathAll after Reset or Load.
type Change struct {
	Path  string
	Value any
}

// Listener is notified synchronously after every accepted mutation.
type Listener func(Change)

type subscription struct {
	id int
	fn Listener
}

// Store owns the live configuration. It is not safe for concurrent use; all
// callers run on the frame goroutine.
type Store struct {
	cfg       Config
	mobile    bool
	listeners []subscription
	nextID    int
}

// NewStore creates a store holding the defaults for the given platform profile.
func NewStore(mobile bool) *Store {
	return &Store{
		cfg:    Defaults(mobile),
		mobile: mobile,
	}
}

// Snapshot returns a copy of the current configuration.
func (s *Store) Snapshot() Config {
	return s.cfg
}

// Get returns the value at path. The second result is false for unknown paths.
func (s *Store) Get(path string) (any, bool) {
	f, ok := fields[path]
	if !ok {
		return nil, false
	}
	return f.get(&s.cfg), true
}

// Set validates and stores value at path, then notifies listeners.
// A rejected value leaves the configuration untouched.
func (s *Store) Set(path string, value any) error {
	f, ok := fields[path]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownPath, path)
	}

	next := s.cfg
	if err := f.set(&next, value); err != nil {
		return fmt.Errorf("set %s: %w", path, err)
	}

	// Keep MIN <= MAX by dragging the opposite bound
	r := &next.Particle.BaseRadius
	switch path {
	case PathRadiusMin:
		r.Max = max(r.Max, r.Min)
	case PathRadiusMax:
		r.Min = min(r.Min, r.Max)
	case PathIsMobile:
		next.adjustForMobile()
	}

	s.cfg = next
	s.notify(Change{Path: path, Value: f.get(&s.cfg)})
	return nil
}

// Reset restores the defaults of the store's platform profile.
func (s *Store) Reset() {
	s.cfg = Defaults(s.mobile)
	s.notify(Change{Path: PathAll})
}

// Load overlays a YAML preset onto the current configuration. Keys absent from
// the document keep their current value. The merged result must validate.
func (s *Store) Load(r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("read preset: %w", err)
	}

	next := s.cfg
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&next); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode preset: %w", err)
	}
	next.adjustForMobile()
	if err := next.Validate(); err != nil {
		return err
	}

	s.cfg = next
	s.notify(Change{Path: PathAll})
	return nil
}

// LoadFile overlays the YAML preset stored at path.
func (s *Store) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open preset: %w", err)
	}
	defer f.Close()
	return s.Load(f)
}

// Subscribe registers fn and returns the function that removes it.
func (s *Store) Subscribe(fn Listener) (cancel func()) {
	s.nextID++
	id := s.nextID
	s.listeners = append(s.listeners, subscription{id: id, fn: fn})
	return func() {
		for i, sub := range s.listeners {
			if sub.id == id {
				s.listeners = append(s.listeners[:i:i], s.listeners[i+1:]...)
				return
			}
		}
	}
}

func (s *Store) notify(c Change) {
	// Listeners may unsubscribe while being notified
	subs := append([]subscription(nil), s.listeners...)
	for _, sub := range subs {
		sub.fn(c)
	}
}

// Validate checks every field against the same rules Set enforces.
func (c Config) Validate() error {
	scratch := c
	for _, path := range Paths() {
		f := fields[path]
		if err := f.set(&scratch, f.get(&c)); err != nil {
			return fmt.Errorf("validate %s: %w", path, err)
		}
	}
	if c.Particle.BaseRadius.Min > c.Particle.BaseRadius.Max {
		return fmt.Errorf("%w: radius min %g > max %g", ErrInvalidValue,
			c.Particle.BaseRadius.Min, c.Particle.BaseRadius.Max)
	}
	return nil
}

// Paths returns every addressable path in sorted order.
func Paths() []string {
	out := make([]string, 0, len(fields))
	for p := range fields {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}
