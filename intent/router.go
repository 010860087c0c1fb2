// Package intent classifies utterances into a closed set of labels and
// applies the stickiness policy that decides when a label replaces the
// conversation's current intent.
package intent

import "context"

// Router maps an utterance to a label. Route never fails: a router that
// cannot classify, for any reason, returns Fallback or defers to another
// router.
type Router interface {
	Route(ctx context.Context, utterance string) Label
}

// RouterFunc adapts a function to the Router interface.
type RouterFunc func(ctx context.Context, utterance string) Label

// Route calls f.
func (f RouterFunc) Route(ctx context.Context, utterance string) Label {
	return f(ctx, utterance)
}

// Stick returns the intent a conversation should continue with after a
// turn routed to l. Specific labels replace current; Fallback keeps it, so a
// run of unclassifiable utterances never knocks a conversation off topic. A
// conversation with no intent yet starts at "fallback".
func Stick(current string, l Label) string {
	if l != Fallback {
		current = l.String()
	}
	if current == "" {
		current = Fallback.String()
	}
	return current
}
