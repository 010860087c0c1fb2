package dsl

// Session is the mutable state of one conversation. It is owned by that
// conversation alone: Step mutates it in place and callers must not run two
// steps against the same Session concurrently.
type Session struct {
	// CurrentIntent selects the IntentDef evaluated on the next step.
	// Empty until a router or a goto sets it.
	CurrentIntent string

	// Vars holds values written by set actions and read by reply templates.
	Vars map[string]string

	// LastReply is the most recent rendered reply, returned again when a
	// step produces no new one.
	LastReply string
}

// NewSession creates an empty session.
func NewSession() *Session {
	return &Session{Vars: make(map[string]string)}
}

// GetVar returns a variable, or "" if it is unset.
func (s *Session) GetVar(key string) string {
	return s.Vars[key]
}

// SetVar writes a variable, replacing any previous value.
func (s *Session) SetVar(key, value string) {
	if s.Vars == nil {
		s.Vars = make(map[string]string)
	}
	s.Vars[key] = value
}

// Clone returns a deep copy, for snapshots taken outside the owner.
func (s *Session) Clone() *Session {
	cp := &Session{
		CurrentIntent: s.CurrentIntent,
		LastReply:     s.LastReply,
		Vars:          make(map[string]string, len(s.Vars)),
	}
	for k, v := range s.Vars {
		cp.Vars[k] = v
	}
	return cp
}
