package httpapi

import (
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// Router 標準ライブラリの http.ServeMux を使用（サードパーティのルータは
// 持ち込まない）
type Router struct {
	mux    *http.ServeMux
	logger *zap.Logger
}

func NewRouter(logger *zap.Logger) *Router {
	return &Router{
		mux:    http.NewServeMux(),
		logger: logger,
	}
}

func (r *Router) Handle(pattern string, h http.HandlerFunc) {
	r.mux.HandleFunc(pattern, h)
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// RegisterComplianceRoutes wires the batch and alert endpoints.
func (r *Router) RegisterComplianceRoutes(h *ComplianceHandler) {
	// manual run: POST /compliance/api/v1/batch/{checkset}
	r.Handle("/compliance/api/v1/batch/", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		checkset := strings.TrimPrefix(req.URL.Path, "/compliance/api/v1/batch/")
		if checkset == "" || strings.Contains(checkset, "/") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		h.RunManual(w, req, checkset)
	})

	// scheduled run: GET /compliance/api/v1/cron/{checkset}?token=...
	r.Handle("/compliance/api/v1/cron/", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		checkset := strings.TrimPrefix(req.URL.Path, "/compliance/api/v1/cron/")
		if checkset == "" || strings.Contains(checkset, "/") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		h.RunScheduled(w, req, checkset)
	})

	r.Handle("/compliance/api/v1/alerts", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.ListAlerts(w, req)
	})

	r.Handle("/compliance/api/v1/alerts/export", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.ExportAlerts(w, req)
	})

	r.Handle("/healthz", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
}
