package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// pushRequest is the body of POST /rpn/stack/{id}.
type pushRequest struct {
	Value *float64 `json:"value"`
}

// operatorAliases lets clients avoid escaping "/" in the path.
var operatorAliases = map[string]string{
	"add": "+",
	"sub": "-",
	"mul": "*",
	"div": "/",
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	id, err := createStack(s.registry, s.ids)
	if err != nil {
		s.writeError(w, r, err, true)
		return
	}
	s.logger.Debug("stack created", "stack_id", id)
	writeJSON(w, http.StatusOK, map[string]any{"stack_id": id})
}

func (s *Server) handleList(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"stacks": s.registry.List()})
}

func (s *Server) handlePush(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	value, err := s.decodePush(w, r)
	if err != nil {
		writeDetail(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.registry.Push(id, value); err != nil {
		s.writeError(w, r, err, true)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"stack": s.registry.Get(id)})
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"stack": s.registry.Get(r.PathValue("id"))})
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.registry.Delete(id); err != nil {
		s.writeError(w, r, err, true)
		return
	}
	s.logger.Debug("stack deleted", "stack_id", id)
	writeJSON(w, http.StatusOK, map[string]any{"message": "Stack deleted"})
}

func (s *Server) handlePop(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	value, err := s.registry.Pop(id)
	if err != nil {
		s.writeError(w, r, err, true)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"value": value, "stack": s.registry.Get(id)})
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.registry.Clear(id); err != nil {
		s.writeError(w, r, err, true)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"stack": s.registry.Get(id)})
}

func (s *Server) handleOperate(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	op := ParseOperator(r.PathValue("op"))

	err := s.registry.Operate(id, op)
	if err != nil {
		kind, _ := classify(err)
		s.metrics.ObserveOperation(op, kind)
		s.writeError(w, r, err, false)
		return
	}
	s.metrics.ObserveOperation(op, "ok")
	writeJSON(w, http.StatusOK, map[string]any{"stack": s.registry.Get(id)})
}

// ParseOperator resolves aliases such as "add" to their symbol. Anything else
// is passed through for the registry to judge.
func ParseOperator(raw string) string {
	if sym, ok := operatorAliases[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return sym
	}
	return raw
}

func (s *Server) decodePush(w http.ResponseWriter, r *http.Request) (float64, error) {
	body := http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)
	var req pushRequest
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			return 0, fmt.Errorf("request body exceeds %d bytes", maxErr.Limit)
		case errors.Is(err, io.EOF):
			return 0, fmt.Errorf("request body is required")
		default:
			return 0, fmt.Errorf("invalid request body: %v", err)
		}
	}
	if req.Value == nil {
		return 0, fmt.Errorf("field \"value\" is required")
	}
	return *req.Value, nil
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error, notFoundIs404 bool) {
	status := statusFor(err, notFoundIs404)
	kind, detail := classify(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	} else {
		s.logger.Debug("request rejected", "kind", kind, "error", err)
	}
	writeDetail(w, status, detail)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]any{"detail": detail})
}

// writeJSON encodes before writing the header, so values JSON cannot carry
// (±Inf, NaN from overflowing arithmetic) become a 500 instead of an empty 200.
func writeJSON(w http.ResponseWriter, status int, payload any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(payload); err != nil {
		buf.Reset()
		status = http.StatusInternalServerError
		_ = json.NewEncoder(&buf).Encode(map[string]any{
			"detail": "Stack holds a value that cannot be encoded: " + err.Error(),
		})
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}
