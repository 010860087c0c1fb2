package intent

import (
	"testing"

	"gopkg.in/yaml.v3"
)

func TestLabelString(t *testing.T) {
	tests := []struct {
		l    Label
		want string
	}{
		{Fallback, "fallback"},
		{Logistics, "logistics"},
		{Refund, "refund"},
		{Campus, "campus"},
		{Label(7), "label(7)"},
	}
	for _, tt := range tests {
		if got := tt.l.String(); got != tt.want {
			t.Errorf("Label(%d).String() = %q, want %q", int(tt.l), got, tt.want)
		}
	}
}

func TestParseLabel(t *testing.T) {
	tests := []struct {
		in   string
		want Label
		ok   bool
	}{
		{"logistics", Logistics, true},
		{"  Refund\n", Refund, true},
		{"CAMPUS", Campus, true},
		{"fallback", Fallback, true},
		{"logistics.", Fallback, false},
		{"the intent is refund", Fallback, false},
		{"", Fallback, false},
	}
	for _, tt := range tests {
		got, ok := ParseLabel(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseLabel(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestLabelsEndsWithFallback(t *testing.T) {
	all := Labels()
	if len(all) != len(labelNames) {
		t.Fatalf("Labels() has %d entries, want %d", len(all), len(labelNames))
	}
	if all[len(all)-1] != Fallback {
		t.Errorf("last label = %v, want fallback", all[len(all)-1])
	}
}

func TestLabelYAML(t *testing.T) {
	var v struct {
		L Label `yaml:"l"`
	}
	if err := yaml.Unmarshal([]byte("l: campus"), &v); err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}
	if v.L != Campus {
		t.Errorf("L = %v, want campus", v.L)
	}
	if err := yaml.Unmarshal([]byte("l: weather"), &v); err == nil {
		t.Error("unknown label should fail to unmarshal")
	}
}
