// Package server exposes interpreter sessions over websockets. Each
// connection gets its own Program; nothing is shared between sessions.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"tinybasic/pkg/config"
	"tinybasic/pkg/program"
	"tinybasic/pkg/repl"
)

type Server struct {
	cfg      config.Config
	logger   *slog.Logger
	upgrader websocket.Upgrader
	mux      *http.ServeMux
	nextID   atomic.Int64
}

func New(cfg config.Config, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		cfg:    cfg,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Sessions are authorized by token, not origin.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		mux: http.NewServeMux(),
	}
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
	s.mux.HandleFunc("POST /token", s.handleToken)
	s.mux.HandleFunc("GET /session", s.handleSession)
	return s
}

func (s *Server) Handler() http.Handler { return s.mux }

// ListenAndServe serves until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.ListenAddr,
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.cfg.ListenAddr, "auth", s.cfg.JWTSecret != "")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Info("shutting down")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if _, err := w.Write([]byte("ok\n")); err != nil {
		s.logger.Warn("writing health response", "remote", r.RemoteAddr, "err", err)
	}
}

type tokenRequest struct {
	Password string `json:"password"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

func (s *Server) handleToken(w http.ResponseWriter, r *http.Request) {
	if s.cfg.JWTSecret == "" || s.cfg.PasswordHash == "" {
		http.Error(w, "token issuing is disabled", http.StatusNotFound)
		return
	}

	var req tokenRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 4096)).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if !VerifyPassword(s.cfg.PasswordHash, req.Password) {
		s.logger.Warn("token refused", "remote", r.RemoteAddr)
		http.Error(w, "invalid password", http.StatusUnauthorized)
		return
	}

	token, err := SignToken("basic", s.cfg.JWTSecret, s.cfg.TokenTTL)
	if err != nil {
		s.logger.Error("signing token", "err", err)
		http.Error(w, "could not sign token", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(tokenResponse{Token: token}); err != nil {
		s.logger.Error("writing token response", "remote", r.RemoteAddr, "err", err)
	}
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	subject, err := s.authorize(r)
	if err != nil {
		s.logger.Warn("session refused", "remote", r.RemoteAddr, "err", err)
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}

	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied to the client.
		s.logger.Warn("websocket upgrade failed", "remote", r.RemoteAddr, "err", err)
		return
	}

	id := s.nextID.Add(1)
	log := s.logger.With("session", id, "remote", r.RemoteAddr)
	if subject != "" {
		log = log.With("subject", subject)
	}
	log.Info("session opened")

	steps := s.cfg.ServeMaxSteps
	if steps <= 0 {
		steps = config.DefaultServeMaxSteps
	}

	conn := &sessionConn{ws: ws}
	session := repl.New(conn, conn,
		repl.WithPrompt(s.cfg.Prompt),
		repl.WithProgramOptions(
			program.WithMaxSteps(steps),
			program.WithInputPrompt(s.cfg.InputPrompt),
		),
	)

	start := time.Now()
	if err := session.Run(); err != nil {
		log.Warn("session ended with error", "err", err)
		conn.close(websocket.CloseInternalServerErr, "session error")
		return
	}
	conn.close(websocket.CloseNormalClosure, "bye")
	log.Info("session closed", "duration", time.Since(start))
}
