// Package server implements the lttngpack HTTP API.
//
// The API exposes the collected version matrix as JSON so that websites or
// dashboards can embed the data without shelling out to the CLI:
//
//	GET /healthz                 liveness probe
//	GET /api/v1/matrix           full version matrix
//	GET /api/v1/distros          known distro names
//	GET /api/v1/distros/{name}   one distro with its releases
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"

	"github.com/eepp/lttngpack/pkg/distro"
	"github.com/eepp/lttngpack/pkg/errors"
	"github.com/eepp/lttngpack/pkg/report"
)

const shutdownTimeout = 5 * time.Second

// Collector produces the current set of distros. The server calls it per
// request; implementations are expected to serve from cache most of the time.
type Collector func(ctx context.Context) ([]distro.Distro, error)

// Server serves the lttngpack HTTP API.
type Server struct {
	collect Collector
	logger  *log.Logger
	addr    string
}

// New creates a Server.
func New(addr string, collect Collector, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{collect: collect, logger: logger, addr: addr}
}

// Router builds the chi router with all routes and middleware registered.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.logRequests)

	r.Get("/healthz", s.handleHealth)
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/matrix", s.handleMatrix)
		r.Get("/distros", s.handleDistros)
		r.Get("/distros/{name}", s.handleDistro)
	})
	return r
}

// Run serves until ctx is cancelled, then drains connections for up to 5s.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleMatrix(w http.ResponseWriter, r *http.Request) {
	distros, err := s.collect(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report.Build(distros))
}

func (s *Server) handleDistros(w http.ResponseWriter, r *http.Request) {
	distros, err := s.collect(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	names := make([]string, len(distros))
	for i, d := range distros {
		names[i] = d.Name
	}
	writeJSON(w, http.StatusOK, map[string][]string{"distros": names})
}

func (s *Server) handleDistro(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	distros, err := s.collect(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	for _, d := range distros {
		if d.EqualName(name) {
			writeJSON(w, http.StatusOK, d)
			return
		}
	}
	s.writeError(w, r, errors.New(errors.ErrCodeNotFound, "unknown distro: %s", name))
}

// errorBody is the JSON error envelope.
type errorBody struct {
	Error struct {
		Code    errors.Code `json:"code"`
		Message string      `json:"message"`
	} `json:"error"`
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}

	var body errorBody
	body.Error.Code = code
	body.Error.Message = errors.UserMessage(err)

	status := statusFor(code)
	if status >= 500 {
		s.logger.Error("request failed", "request_id", requestIDFrom(r.Context()), "error", err)
	}
	writeJSON(w, status, body)
}

func statusFor(code errors.Code) int {
	switch code {
	case errors.ErrCodeNotFound:
		return http.StatusNotFound
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidDistro, errors.ErrCodeInvalidFormat:
		return http.StatusBadRequest
	case errors.ErrCodeNetwork, errors.ErrCodeTimeout:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
