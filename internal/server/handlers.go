package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/raaihank/clipboard-cleaner/internal/cleaner"
	"github.com/raaihank/clipboard-cleaner/internal/encoding"
)

// ProfileInfo describes a selectable profile
type ProfileInfo struct {
	Name           string `json:"name"`
	DisplayName    string `json:"displayName"`
	Description    string `json:"description,omitempty"`
	Steps          int    `json:"steps"`
	Default        bool   `json:"default,omitempty"`
	GUIReplacement bool   `json:"guiReplacement,omitempty"`
}

// ResolveResponse is returned by the resolve endpoint
type ResolveResponse struct {
	Target  string `json:"target"`
	Charset string `json:"charset,omitempty"`
	Found   bool   `json:"found"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

// handleInfo handles info requests
func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	set := s.cleaner.Profiles()
	info := map[string]any{
		"name":              "clipboard-cleaner",
		"version":           s.version,
		"uptime":            time.Since(s.startedAt).Round(time.Second).String(),
		"profiles_count":    len(set.Names()),
		"default_profile":   set.DefaultName(),
		"gui_profile":       set.GUIReplacementName(),
		"charsets":          encoding.Labels(),
		"websocket_enabled": s.wsHub != nil && s.config.WebSocket.Enabled,
	}
	if s.wsHub != nil {
		info["websocket_clients"] = s.wsHub.GetStats().ActiveConnections
	}
	writeJSON(w, http.StatusOK, info)
}

func (s *Server) handleProfiles(w http.ResponseWriter, r *http.Request) {
	set := s.cleaner.Profiles()
	profiles := set.Profiles()

	out := make([]ProfileInfo, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, ProfileInfo{
			Name:           p.Name,
			DisplayName:    p.Label(),
			Description:    p.Description,
			Steps:          p.Len(),
			Default:        p.Name == set.DefaultName(),
			GUIReplacement: p.Name == set.GUIReplacementName(),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	target := r.URL.Query().Get("target")
	if target == "" {
		writeError(w, http.StatusBadRequest, "missing target parameter")
		return
	}

	charset, ok := encoding.ResolveTargetEncoding(target)
	writeJSON(w, http.StatusOK, ResolveResponse{Target: target, Charset: charset, Found: ok})
}

// handleClean runs a profile over the request body, which is taken as text
func (s *Server) handleClean(w http.ResponseWriter, r *http.Request) {
	body, ok := s.readBody(w, r)
	if !ok {
		return
	}

	res, err := s.cleaner.CleanText(r.URL.Query().Get("profile"), string(body))
	if err != nil {
		s.writeEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// handleDecode turns the request body into text for a clipboard target
func (s *Server) handleDecode(w http.ResponseWriter, r *http.Request) {
	body, ok := s.readBody(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	res := s.cleaner.DecodeTarget(q.Get("target"), q.Get("charset"), body, parseBool(q.Get("sniff")))

	status := http.StatusOK
	if !res.OK {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, res)
}

// handleProcess decodes the request body and cleans the resulting text
func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	body, ok := s.readBody(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	res, err := s.cleaner.Process(cleaner.Request{
		Target:  q.Get("target"),
		Charset: q.Get("charset"),
		Profile: q.Get("profile"),
		Sniff:   parseBool(q.Get("sniff")),
		Data:    body,
	})
	switch {
	case errors.Is(err, cleaner.ErrUndecodable):
		writeJSON(w, http.StatusUnprocessableEntity, res)
	case err != nil:
		s.writeEngineError(w, r, err)
	default:
		writeJSON(w, http.StatusOK, res)
	}
}

func (s *Server) readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	body, err := io.ReadAll(r.Body)
	if err == nil {
		return body, true
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
		return nil, false
	}

	s.logger.WithRequestID(getRequestID(r.Context())).Error("Failed to read request body", zap.Error(err))
	writeError(w, http.StatusBadRequest, "failed to read request")
	return nil, false
}

func (s *Server) writeEngineError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, cleaner.ErrUnknownProfile) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	s.logger.WithRequestID(getRequestID(r.Context())).Error("Request failed", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal server error")
}

func parseBool(s string) bool {
	b, _ := strconv.ParseBool(s)
	return b
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// methodNotAllowed answers 405 for a path that only serves allowed
func methodNotAllowed(allowed string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Allow", allowed)
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}
