package intent

import (
	"context"
	"testing"
)

func TestStick(t *testing.T) {
	tests := []struct {
		name    string
		current string
		label   Label
		want    string
	}{
		{"first turn fallback", "", Fallback, "fallback"},
		{"first turn specific", "", Refund, "refund"},
		{"fallback keeps intent", "logistics", Fallback, "logistics"},
		{"specific overwrites", "logistics", Campus, "campus"},
		{"keeps goto target", "refund_order", Fallback, "refund_order"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Stick(tt.current, tt.label); got != tt.want {
				t.Errorf("Stick(%q, %v) = %q, want %q", tt.current, tt.label, got, tt.want)
			}
		})
	}
}

func TestStickIdempotentUnderFallback(t *testing.T) {
	current := Stick("", Logistics)
	for range 10 {
		current = Stick(current, Fallback)
	}
	if current != "logistics" {
		t.Errorf("after repeated fallback, intent = %q, want logistics", current)
	}
}

func TestRouterFunc(t *testing.T) {
	var r Router = RouterFunc(func(_ context.Context, u string) Label {
		if u == "x" {
			return Campus
		}
		return Fallback
	})
	if got := r.Route(t.Context(), "x"); got != Campus {
		t.Errorf("Route(x) = %v", got)
	}
}
