package server

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/spetersoncode/timeago/internal/errors"
	"github.com/spetersoncode/timeago/internal/locale"
	"github.com/spetersoncode/timeago/internal/service"
	"github.com/spetersoncode/timeago/internal/settings"
	"github.com/spetersoncode/timeago/internal/timestamp"
)

// PhraseResponse is returned by the phrase endpoint.
type PhraseResponse struct {
	Phrase  string `json:"phrase"`
	Instant string `json:"instant"`
	Now     string `json:"now,omitempty"`
}

// CreateEntryRequest is the body of POST /api/entries.
type CreateEntryRequest struct {
	Key       string `json:"key"`
	Timestamp string `json:"timestamp"`
	Title     string `json:"title,omitempty"`
	Plain     bool   `json:"plain,omitempty"`
}

// ActionRequest is the optional body of POST /api/entries/{key}/{action}.
// Value is the new instant for update: epoch milliseconds or a timestamp
// string.
type ActionRequest struct {
	Value interface{} `json:"value,omitempty"`
}

// ErrorResponse represents an API error.
type ErrorResponse struct {
	Error      string `json:"error"`
	Code       int    `json:"code"`
	Kind       string `json:"kind,omitempty"`
	Message    string `json:"message,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{
		Error:   http.StatusText(status),
		Code:    status,
		Message: message,
	})
}

// writeSharedError writes err, mapping its kind to an HTTP status code.
// Errors outside the shared taxonomy become 500s.
func (s *Server) writeSharedError(w http.ResponseWriter, err error) {
	status := errors.GetHTTPStatus(err)
	resp := ErrorResponse{
		Error:   http.StatusText(status),
		Code:    status,
		Kind:    errors.GetKind(err).String(),
		Message: err.Error(),
	}
	if e, ok := errors.As(err); ok {
		resp.Message = e.Message
		resp.Suggestion = e.Suggestion
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error(err, "request failed")
	}
	writeJSON(w, status, resp)
}

func (s *Server) handlePhrase(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	raw := q.Get("t")
	if raw == "" {
		s.writeSharedError(w, errors.InvalidArgs("query parameter t is required"))
		return
	}
	instant, err := timestamp.ParseInput(raw)
	if err != nil {
		s.writeSharedError(w, err)
		return
	}

	var now time.Time
	if v := q.Get("now"); v != "" {
		if now, err = timestamp.ParseInput(v); err != nil {
			s.writeSharedError(w, err)
			return
		}
	}

	var opts settings.Options
	if v := q.Get("future"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			s.writeSharedError(w, errors.InvalidArgs("future must be a boolean, got %q", v))
			return
		}
		opts.AllowFuture = &b
	}
	if v := q.Get("locale"); v != "" {
		strs, err := locale.Lookup(v)
		if err != nil {
			s.writeSharedError(w, err)
			return
		}
		opts.Strings = strs
	}

	text, err := s.board.Phrase(instant, now, opts)
	if err != nil {
		s.writeSharedError(w, err)
		return
	}

	resp := PhraseResponse{Phrase: text, Instant: timestamp.Format(instant)}
	if !now.IsZero() {
		resp.Now = timestamp.Format(now)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListLocales(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{
		"locales": locale.Names(),
	})
}

func (s *Server) handleListEntries(w http.ResponseWriter, r *http.Request) {
	entries, err := s.board.List()
	if err != nil {
		s.writeSharedError(w, err)
		return
	}
	if entries == nil {
		entries = []*service.EntryStatus{}
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleCreateEntry(w http.ResponseWriter, r *http.Request) {
	var req CreateEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	st, err := s.board.Add(service.AddInput{
		Key:       req.Key,
		Timestamp: req.Timestamp,
		Title:     req.Title,
		Plain:     req.Plain,
	})
	if err != nil {
		s.writeSharedError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, st)
}

func (s *Server) handleGetEntry(w http.ResponseWriter, r *http.Request) {
	st, err := s.board.Get(r.PathValue("key"))
	if err != nil {
		s.writeSharedError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleEntryAction(w http.ResponseWriter, r *http.Request) {
	var req ActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	st, err := s.board.Invoke(r.PathValue("key"), r.PathValue("action"), req.Value)
	if err != nil {
		s.writeSharedError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleDeleteEntry(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	if err := s.board.Remove(key); err != nil {
		s.writeSharedError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"key":     key,
		"deleted": true,
	})
}
