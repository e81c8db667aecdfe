package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"golang.org/x/sync/errgroup"
)

const requestIDHeader = "X-Request-Id"

// EvaluateResponse is the body returned by /evaluate.
type EvaluateResponse struct {
	Message  string   `json:"message"`
	Warnings []string `json:"warnings,omitempty"`
}

// Server evaluates circuits posted by the circuit editor.
type Server struct {
	cfg     Config
	log     *Logger
	metrics *Metrics
	handler http.Handler
}

func NewServer(cfg Config, log *Logger, metrics *Metrics) *Server {
	if log == nil {
		log = NoopLogger()
	}
	if metrics == nil {
		metrics = NewMetrics()
	}
	s := &Server{cfg: cfg, log: log, metrics: metrics}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /evaluate", s.handleEvaluate)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.HandlerFor(metrics.Registry(), promhttp.HandlerOpts{}))

	c := cors.New(cors.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", requestIDHeader},
		MaxAge:         600,
	})
	s.handler = c.Handler(mux)
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	io.WriteString(w, "ok\n")
}

func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	id := r.Header.Get(requestIDHeader)
	if id == "" {
		id = uuid.NewString()
	}
	w.Header().Set(requestIDHeader, id)
	log := s.log.WithRequestID(id)

	resp, status := s.evaluate(w, r, log)
	s.metrics.ObserveEvaluate(time.Since(start), http.StatusText(status))
	log.Debug("evaluate done", "status", status, "elapsed", time.Since(start))
	writeJSON(w, status, resp)
}

func (s *Server) evaluate(w http.ResponseWriter, r *http.Request, log *Logger) (EvaluateResponse, int) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.cfg.Server.MaxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return serverError(fmt.Errorf("%w: body exceeds %d bytes", ErrMalformedCircuit, tooLarge.Limit)), http.StatusRequestEntityTooLarge
		}
		return serverError(err), http.StatusBadRequest
	}

	c, err := ParseCircuitJSON(body)
	if err == nil {
		err = c.Validate(s.cfg.Engine.MaxQubits)
	}
	if err != nil {
		log.Info("rejected circuit", "error", err)
		return serverError(err), http.StatusBadRequest
	}

	qs, issues, err := SimulateCircuit(c, -1, log)
	if err != nil {
		return serverError(err), http.StatusBadRequest
	}
	s.metrics.ObserveCircuit(c, issues)

	resp := EvaluateResponse{Message: qs.ProbabilitiesReport(true)}
	for _, issue := range issues {
		resp.Warnings = append(resp.Warnings, issue.String())
	}
	return resp, http.StatusOK
}

func serverError(err error) EvaluateResponse {
	return EvaluateResponse{Message: "SERVER-SIDE ERROR: " + err.Error()}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// ListenAndServe serves until ctx is cancelled, then shuts down within the configured
// timeout.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Server.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve is ListenAndServe on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:      s,
		ReadTimeout:  time.Duration(s.cfg.Server.ReadTimeout),
		WriteTimeout: time.Duration(s.cfg.Server.WriteTimeout),
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.log.Info("listening", "addr", ln.Addr().String())
		if err := srv.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		timeout := time.Duration(s.cfg.Server.ShutdownTimeout)
		s.log.Info("shutting down", "timeout", timeout)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
