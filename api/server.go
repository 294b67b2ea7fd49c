// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package api serves the ledger over connect-rpc and provides a typed client
// for it.
package api

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"connectrpc.com/connect"
	"connectrpc.com/grpchealth"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

type ServerConfig struct {
	Logger          *slog.Logger
	Ledger          Ledger
	JwtSecret       []byte
	Host            string
	Port            uint
	TlsCertFilePath string
	TlsKeyFilePath  string
}

type Server struct {
	config   ServerConfig
	server   *http.Server
	listener net.Listener
	mu       sync.Mutex
	doneCh   chan struct{}
}

func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Ledger == nil {
		return nil, errors.New("a ledger is required")
	}
	if len(cfg.JwtSecret) == 0 {
		return nil, errors.New("a JWT secret is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	cfg.Logger = cfg.Logger.With("component", "api")
	if cfg.Host == "" {
		cfg.Host = "0.0.0.0"
	}
	if cfg.Port == 0 {
		cfg.Port = 9090
	}
	return &Server{
		config: cfg,
	}, nil
}

// Handler returns the HTTP handler serving ModelService and health checks
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	compress1KB := connect.WithCompressMinBytes(1024)
	path, handler := newModelServiceHandler(
		&modelService{ledger: s.config.Ledger},
		compress1KB,
		connect.WithCodec(jsonCodec{}),
		connect.WithInterceptors(
			authInterceptor(s.config.JwtSecret, publicProcedures),
		),
	)
	mux.Handle(path, handler)
	mux.Handle(
		grpchealth.NewHandler(
			grpchealth.NewStaticChecker(ModelServiceName),
			compress1KB,
		),
	)
	return mux
}

func (s *Server) tlsEnabled() bool {
	return s.config.TlsCertFilePath != "" && s.config.TlsKeyFilePath != ""
}

// Start begins serving in the background. Listener errors are returned
// immediately.
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.server != nil {
		return errors.New("server already started")
	}
	addr := net.JoinHostPort(
		s.config.Host,
		strconv.FormatUint(uint64(s.config.Port), 10),
	)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	s.listener = listener
	handler := s.Handler()
	if !s.tlsEnabled() {
		// Use h2c so we can serve HTTP/2 without TLS
		handler = h2c.NewHandler(handler, &http2.Server{})
	}
	s.server = &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 60 * time.Second,
	}
	s.doneCh = make(chan struct{})
	server := s.server
	doneCh := s.doneCh
	go func() {
		defer close(doneCh)
		var err error
		if s.tlsEnabled() {
			s.config.Logger.Info(
				"starting RPC TLS listener",
				"address", listener.Addr().String(),
			)
			err = server.ServeTLS(
				listener,
				s.config.TlsCertFilePath,
				s.config.TlsKeyFilePath,
			)
		} else {
			s.config.Logger.Info(
				"starting RPC listener",
				"address", listener.Addr().String(),
			)
			err = server.Serve(listener)
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.config.Logger.Error(
				"RPC server failed",
				"error", err,
			)
		}
	}()
	return nil
}

// Addr returns the listening address once started
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Stop gracefully shuts down the server
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	server := s.server
	doneCh := s.doneCh
	s.server = nil
	s.listener = nil
	s.mu.Unlock()
	if server == nil {
		return nil
	}
	err := server.Shutdown(ctx)
	select {
	case <-doneCh:
	case <-ctx.Done():
	}
	return err
}
