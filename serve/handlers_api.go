package serve

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/everydev1618/parley"
	"github.com/everydev1618/parley/dsl"
	"github.com/rs/xid"
)

// --- Session Handlers ---

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req CreateSessionRequest
	if err := decodeJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, err)
		return
	}

	ls := s.sessions.Create(req.Intent)
	s.emit(EventSessionCreated, ls.ID, nil)
	writeJSON(w, http.StatusCreated, ls.response())
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	live := s.sessions.List()
	resp := make([]SessionResponse, 0, len(live))
	for _, ls := range live {
		resp = append(resp, ls.response())
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	ls, err := s.sessions.Get(r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ls.response())
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.sessions.Delete(id); err != nil {
		writeError(w, err)
		return
	}
	s.emit(EventSessionClosed, id, nil)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMessage(w http.ResponseWriter, r *http.Request) {
	ls, err := s.sessions.Get(r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	var req MessageRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	res, err := s.runTurn(r.Context(), ls, req.Text)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{
		Reply:   res.Reply,
		Label:   res.Label,
		Intent:  res.Intent,
		Outcome: res.Outcome,
		Effects: res.Effects,
	})
}

func (s *Server) handleTranscript(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	turns := []Turn{}
	if s.store != nil {
		var err error
		if turns, err = s.store.ListTurns(id); err != nil {
			writeError(w, err)
			return
		}
	}

	// Closed sessions keep their transcript; unknown ones are a 404.
	if len(turns) == 0 {
		if _, err := s.sessions.Get(id); err != nil {
			writeError(w, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, turns)
}

// runTurn steps one session and records the result.
func (s *Server) runTurn(ctx context.Context, ls *LiveSession, text string) (parley.TurnResult, error) {
	ls.begin(s.sessions.now())
	res, err := ls.Conv.Turn(ctx, text)
	ls.end(s.sessions.now())
	if err != nil {
		if errors.Is(err, dsl.ErrInternalConsistency) {
			slog.Error("turn failed", "session", ls.ID, "error", err)
		}
		return res, err
	}

	now := s.sessions.now()
	seq := ls.touch(now, res.Reply)

	if s.store != nil {
		if err := s.store.InsertTurn(Turn{
			ID:        xid.New().String(),
			SessionID: ls.ID,
			Seq:       seq,
			Utterance: res.Utterance,
			Label:     res.Label.String(),
			Intent:    res.Intent,
			Reply:     res.Reply,
			Outcome:   res.Outcome.String(),
			LatencyMs: res.Duration.Milliseconds(),
			CreatedAt: now,
		}); err != nil {
			slog.Warn("failed to record turn", "session", ls.ID, "error", err)
		}
	}

	s.emit(EventTurn, ls.ID, res)
	return res, nil
}

// --- Program and Status Handlers ---

func (s *Server) handleListIntents(w http.ResponseWriter, r *http.Request) {
	prog := s.src.Program()
	if prog == nil {
		writeError(w, parley.ErrScriptNotFound)
		return
	}

	resp := make([]IntentResponse, 0, len(prog.Intents))
	for _, def := range prog.Intents {
		resp = append(resp, IntentResponse{
			Name:  def.Name,
			Rules: len(def.Rules),
			Line:  def.Line,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:   "ok",
		Uptime:   time.Since(s.startedAt).Truncate(time.Second).String(),
		Sessions: s.sessions.Len(),
	}
	if prog := s.src.Program(); prog != nil {
		resp.Intents = len(prog.Intents)
	} else {
		resp.Status = "no script"
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAudit(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid limit"})
			return
		}
		limit = n
	}

	events := []StoreEvent{}
	if s.store != nil {
		var err error
		if events, err = s.store.ListEvents(limit); err != nil {
			writeError(w, err)
			return
		}
		if events == nil {
			events = []StoreEvent{}
		}
	}
	writeJSON(w, http.StatusOK, events)
}

// --- Helpers ---

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return err
		}
		return errors.Join(parley.ErrInvalidInput, err)
	}
	return nil
}

// statusFor maps an error to its HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, parley.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, parley.ErrEmptyUtterance), errors.Is(err, parley.ErrInvalidInput), errors.Is(err, io.EOF):
		return http.StatusBadRequest
	case errors.Is(err, parley.ErrScriptNotFound):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), ErrorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
