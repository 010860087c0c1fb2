package intent

import (
	"fmt"
	"strings"
)

// Label is the closed set of intents a router may return. The zero value is
// Fallback, meaning no specific intent was recognized.
type Label int

const (
	Fallback Label = iota
	Logistics
	Refund
	Campus
)

var labelNames = [...]string{
	Fallback:  "fallback",
	Logistics: "logistics",
	Refund:    "refund",
	Campus:    "campus",
}

// String returns the label as it is spelled in scripts.
func (l Label) String() string {
	if l < 0 || int(l) >= len(labelNames) {
		return fmt.Sprintf("label(%d)", int(l))
	}
	return labelNames[l]
}

// ParseLabel matches s against the label names, ignoring case and
// surrounding whitespace.
func ParseLabel(s string) (Label, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range labelNames {
		if s == name {
			return Label(i), true
		}
	}
	return Fallback, false
}

// Labels returns every label, specific intents first and Fallback last.
func Labels() []Label {
	return []Label{Logistics, Refund, Campus, Fallback}
}

// MarshalText implements encoding.TextMarshaler.
func (l Label) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *Label) UnmarshalText(text []byte) error {
	parsed, ok := ParseLabel(string(text))
	if !ok {
		return fmt.Errorf("unknown intent label %q", text)
	}
	*l = parsed
	return nil
}
