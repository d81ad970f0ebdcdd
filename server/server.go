// Package server exposes topology.Compute over HTTP.
//
// Routes:
//
//	POST /calculate_topology   {"matrixA": [[...]]} → Result JSON + "message"
//	GET  /healthz              {"status": "ok"}
//
// Every response carries the configured CORS headers; OPTIONS preflights are
// answered by the router.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"slices"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/sirupsen/logrus"

	"github.com/katalvlaran/nettopo/config"
	"github.com/katalvlaran/nettopo/topology"
)

const (
	routeTopology = "/calculate_topology"
	routeHealth   = "/healthz"

	// SuccessMessage accompanies every successful topology response.
	SuccessMessage = "Topology calculation successful"

	// shutdownGrace bounds how long in-flight requests may run after ctx is
	// cancelled before connections are closed.
	shutdownGrace = 10 * time.Second
)

// Server is the HTTP front of the topology engine.
type Server struct {
	cfg      config.Server
	opts     []topology.Option
	router   *httprouter.Router
	listener net.Listener
	server   *http.Server
	logger   logrus.FieldLogger

	done        chan struct{} // closed once shutdown after ctx cancellation finishes
	shutdownErr error
}

type topologyRequest struct {
	MatrixA [][]float64 `json:"matrixA"`
}

type topologyResponse struct {
	Message string `json:"message"`
	*topology.Result
}

// New builds a Server; nothing listens until Start. A nil logger discards output.
func New(cfg config.Server, logger logrus.FieldLogger, opts ...topology.Option) *Server {
	if logger == nil {
		discard := logrus.New()
		discard.Out = io.Discard
		logger = discard
	}
	s := &Server{
		cfg:    cfg,
		opts:   opts,
		logger: logger.WithField("module", "server"),
	}

	router := httprouter.New()
	router.POST(routeTopology, s.middleware(s.calculate))
	router.GET(routeHealth, s.middleware(s.health))
	router.GlobalOPTIONS = http.HandlerFunc(s.preflight)
	router.NotFound = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.responseJSON(w, r, http.StatusNotFound, map[string]any{"error": "not found"})
	})
	s.router = router

	return s
}

// Handler returns the routed handler with CORS headers applied.
func (s *Server) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.setCORS(w, r)
		s.router.ServeHTTP(w, r)
	})
}

// Start listens on the configured address and serves in the background until
// ctx is cancelled or Close is called. Cancelling ctx starts a graceful
// shutdown: the listener closes and in-flight requests get shutdownGrace to
// finish. Wait blocks until that shutdown is complete.
func (s *Server) Start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	server := &http.Server{
		ReadHeaderTimeout: s.cfg.ReadHeaderTimeout,
		Handler:           s.Handler(),
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
	s.listener = listener
	s.server = server
	done := make(chan struct{})
	s.done = done

	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) && !errors.Is(err, net.ErrClosed) {
			s.logger.Errorf("http serve: %v", err)
		}
	}()
	go func() {
		defer close(done)
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownGrace)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, net.ErrClosed) {
			s.logger.Errorf("http shutdown: %v", err)
			s.shutdownErr = err
			_ = server.Close()
		}
	}()
	s.logger.Infof("listening on %s", listener.Addr())

	return nil
}

// Addr returns the bound address, or "" before Start.
func (s *Server) Addr() string {
	if s == nil || s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Wait blocks until the ctx passed to Start is cancelled and the graceful
// shutdown it triggers has finished, then returns the shutdown error, if any.
// It returns nil at once when Start was never called.
func (s *Server) Wait() error {
	if s == nil || s.done == nil {
		return nil
	}
	<-s.done
	return s.shutdownErr
}

// Close stops the server immediately, dropping in-flight requests.
// Use it when no context is driving the server; otherwise cancel the context
// and Wait.
func (s *Server) Close() error {
	if s == nil {
		return nil
	}
	var retErr error
	if s.server != nil {
		if err := s.server.Close(); err != nil {
			retErr = err
		}
		s.server = nil
	}
	if s.listener != nil {
		err := s.listener.Close()
		if errors.Is(err, net.ErrClosed) {
			err = nil
		}
		if err != nil {
			retErr = err
		}
		s.listener = nil
	}
	return retErr
}

// POST /calculate_topology
func (s *Server) calculate(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	body := http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)
	var req topologyRequest
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.responseJSON(w, r, http.StatusRequestEntityTooLarge, err)
			return
		}
		s.responseJSON(w, r, http.StatusBadRequest, err)
		return
	}

	result, _, err := topology.ComputeRows(req.MatrixA, s.opts...)
	if err != nil {
		s.responseJSON(w, r, statusFor(err), err)
		return
	}
	s.logger.WithField("branches", len(result.ColumnOrder)).Debugf("tree %v, links %v", result.TreeIndices, result.LinkIndices)
	s.responseJSON(w, r, http.StatusOK, topologyResponse{Message: SuccessMessage, Result: result})
}

// GET /healthz
func (s *Server) health(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	s.responseJSON(w, r, http.StatusOK, map[string]any{"status": "ok"})
}

func (s *Server) preflight(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("Access-Control-Request-Method") != "" {
		h := w.Header()
		h.Set("Access-Control-Allow-Methods", h.Get("Allow"))
		h.Set("Access-Control-Allow-Headers", "Content-Type")
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) setCORS(w http.ResponseWriter, r *http.Request) {
	origin := r.Header.Get("Origin")
	switch {
	case slices.Contains(s.cfg.AllowedOrigins, "*"):
		w.Header().Set("Access-Control-Allow-Origin", "*")
	case origin != "" && slices.Contains(s.cfg.AllowedOrigins, origin):
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Add("Vary", "Origin")
	}
}

func (s *Server) middleware(handler httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, params httprouter.Params) {
		s.logger.Debugf("%s %s", r.Method, r.RequestURI)
		handler(w, r, params)
	}
}

// statusFor maps a topology error class to an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, topology.ErrMalformedInput):
		return http.StatusBadRequest
	case errors.Is(err, topology.ErrInvalidTopology), errors.Is(err, topology.ErrNumericRange):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) responseJSON(w http.ResponseWriter, r *http.Request, code int, v ...any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	var data []byte
	if len(v) == 0 || v[0] == nil {
		data, _ = json.Marshal(struct{}{})
	} else if err, ok := v[0].(error); ok {
		s.logger.WithField("status", code).Errorf("%v %v: %v", r.Method, r.RequestURI, err)
		data, _ = json.Marshal(map[string]any{
			"error": err.Error(),
		})
	} else {
		var err error
		if data, err = json.Marshal(v[0]); err != nil {
			s.responseJSON(w, r, http.StatusInternalServerError, fmt.Errorf("encode response: %w", err))
			return
		}
	}
	w.WriteHeader(code)
	_, _ = w.Write(data)
}
