package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/baxromumarov/wordwise/internal/core"
	"github.com/baxromumarov/wordwise/internal/observability"
)

const maxBodyBytes = 2 << 20

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, observability.Snapshot())
}

func (s *Server) handleLookup(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "word")
	// chi routes on RawPath when the request kept a non-default escaping;
	// otherwise the param is already decoded.
	if r.URL.RawPath != "" {
		if unescaped, err := url.PathUnescape(raw); err == nil {
			raw = unescaped
		}
	}
	word, entries, err := s.svc.Lookup.Lookup(r.Context(), raw)
	if err != nil {
		if msg, ok := validationMessage(err); ok {
			respondError(w, http.StatusBadRequest, msg)
			return
		}
		if errors.Is(err, core.ErrNotFound) || errors.Is(err, core.ErrUpstreamUnavailable) {
			respondError(w, http.StatusNotFound, fmt.Sprintf("Word '%s' not found in dictionary", word))
			return
		}
		s.internalError(w, r, "Failed to look up word", err)
		return
	}
	respondJSON(w, http.StatusOK, entries)
}

type vocabRequest struct {
	Text *string `json:"text"`
}

func (s *Server) handleExtractVocabulary(w http.ResponseWriter, r *http.Request) {
	raw, ok := s.readBody(w, r)
	if !ok {
		return
	}

	var text string
	switch {
	case len(raw) > 0 && raw[0] == '"':
		if err := json.Unmarshal(raw, &text); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
	case len(raw) > 0 && raw[0] == '{':
		var req vocabRequest
		if err := json.Unmarshal(raw, &req); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if req.Text != nil {
			text = *req.Text
		}
	default:
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	items, err := s.svc.Vocabulary.Extract(r.Context(), text)
	if err != nil {
		if msg, ok := validationMessage(err); ok {
			respondError(w, http.StatusBadRequest, msg)
			return
		}
		s.internalError(w, r, "Failed to extract vocabulary", err)
		return
	}
	respondJSON(w, http.StatusOK, items)
}

func (s *Server) handleQuiz(w http.ResponseWriter, r *http.Request) {
	raw, ok := s.readBody(w, r)
	if !ok {
		return
	}

	var inputs []core.QuizWordInput
	if err := json.Unmarshal(raw, &inputs); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	questions, err := s.svc.Quiz.Generate(r.Context(), inputs)
	if err != nil {
		if msg, ok := validationMessage(err); ok {
			respondError(w, http.StatusBadRequest, msg)
			return
		}
		s.internalError(w, r, "Failed to generate quiz", err)
		return
	}
	respondJSON(w, http.StatusOK, questions)
}

type fetchRequest struct {
	URL string `json:"url"`
}

func (s *Server) handleFetch(w http.ResponseWriter, r *http.Request) {
	raw, ok := s.readBody(w, r)
	if !ok {
		return
	}

	var req fetchRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := s.svc.Fetch.Fetch(r.Context(), req.URL)
	if err != nil {
		if msg, ok := validationMessage(err); ok {
			respondError(w, http.StatusBadRequest, msg)
			return
		}
		s.internalError(w, r, "Failed to fetch content from URL", err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// readBody reads at most maxBodyBytes and returns the trimmed body.
func (s *Server) readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(w, http.StatusRequestEntityTooLarge, "Request body too large")
			return nil, false
		}
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return nil, false
	}
	return bytes.TrimSpace(body), true
}

func (s *Server) internalError(w http.ResponseWriter, r *http.Request, prefix string, err error) {
	s.log.ErrorContext(r.Context(), prefix, "path", r.URL.Path, "error", err)
	respondError(w, http.StatusInternalServerError, prefix+": "+err.Error())
}

func validationMessage(err error) (string, bool) {
	var ve *core.ValidationError
	if errors.As(err, &ve) {
		return ve.Message, true
	}
	return "", false
}
