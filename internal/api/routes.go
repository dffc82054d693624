package api

import "net/http"

func (s *Server) routes(mux *http.ServeMux) {
	mux.HandleFunc("POST /rpn/stack", s.handleCreate)
	mux.HandleFunc("GET /rpn/stack", s.handleList)
	mux.HandleFunc("POST /rpn/stack/{id}", s.handlePush)
	mux.HandleFunc("GET /rpn/stack/{id}", s.handleGet)
	mux.HandleFunc("DELETE /rpn/stack/{id}", s.handleDelete)
	mux.HandleFunc("POST /rpn/stack/{id}/pop", s.handlePop)
	mux.HandleFunc("POST /rpn/stack/{id}/clear", s.handleClear)
	mux.HandleFunc("POST /rpn/op/{op}/stack/{id}", s.handleOperate)

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if s.metrics != nil && s.cfg.MetricsPath != "" {
		mux.Handle("GET "+s.cfg.MetricsPath, s.metrics.Handler())
	}
}
