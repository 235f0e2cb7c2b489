// Copyright 2026 The Stagehand Authors
// SPDX-License-Identifier: Apache-2.0

package bridge

import (
	"bufio"
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"

	"github.com/google/uuid"

	"github.com/stagehand-foundation/stagehand/lib/audit"
	"github.com/stagehand-foundation/stagehand/lib/config"
	"github.com/stagehand-foundation/stagehand/lib/editor"
	"github.com/stagehand-foundation/stagehand/methods"
	"github.com/stagehand-foundation/stagehand/wire"
)

// maxLineSize bounds a single request line. 4 MB leaves room for bulk
// property payloads without letting a client exhaust memory.
const maxLineSize = 4 * 1024 * 1024

// Options configure a Server beyond its bridge config.
type Options struct {
	Logger *slog.Logger

	// Audit, when set, records every closed transaction.
	Audit *audit.Log
}

// session is one accepted connection. The authenticated flag is owned
// by the control goroutine.
type session struct {
	id            string
	conn          net.Conn
	authenticated bool
}

type lineEvent struct {
	session *session
	text    []byte
}

// Server is the engine-side bridge transport.
type Server struct {
	editor   *editor.Editor
	config   config.Config
	registry *methods.Registry
	logger   *slog.Logger
	audit    *audit.Log

	listener net.Listener
	sessions chan *session
	lines    chan lineEvent
	closures chan *session
	done     chan struct{}

	// active is the one authenticated-or-authenticating session.
	// Control goroutine only.
	active *session
}

// New creates a bridge server over the editor. Start must be called
// before it accepts connections.
func New(ed *editor.Editor, cfg config.Config, options Options) *Server {
	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		editor:   ed,
		config:   cfg,
		logger:   logger,
		audit:    options.Audit,
		sessions: make(chan *session),
		lines:    make(chan lineEvent),
		closures: make(chan *session),
		done:     make(chan struct{}),
	}
	s.registry = methods.New(ed, methods.Options{
		AllowDangerous: cfg.AllowDangerous,
		Logger:         logger,
		OnCommit:       s.recordCommit,
	})
	return s
}

// Registry exposes the method table, for capability listings and
// in-process tests.
func (s *Server) Registry() *methods.Registry { return s.registry }

// Start binds the listener and launches the accept and control loops.
// The server runs until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.config.Address())
	if err != nil {
		return fmt.Errorf("bridge: listening on %s: %w", s.config.Address(), err)
	}
	s.listener = listener
	s.logger.Info("bridge listening", "address", listener.Addr().String())
	go s.controlLoop(ctx)
	go s.acceptLoop()
	return nil
}

// Addr returns the bound listen address. Valid after Start.
func (s *Server) Addr() net.Addr { return s.listener.Addr() }

// Done is closed when the control loop has exited.
func (s *Server) Done() <-chan struct{} { return s.done }

func (s *Server) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if !errors.Is(err, net.ErrClosed) {
				s.logger.Error("accept failed", "error", err)
			}
			return
		}
		sess := &session{id: uuid.NewString(), conn: conn}
		select {
		case s.sessions <- sess:
		case <-s.done:
			conn.Close()
			return
		}
	}
}

// controlLoop owns every piece of mutable engine state: the active
// session, its handshake state, and (through the registry) the editor.
func (s *Server) controlLoop(ctx context.Context) {
	defer close(s.done)
	for {
		select {
		case <-ctx.Done():
			if s.active != nil {
				s.active.conn.Close()
			}
			s.listener.Close()
			return

		case sess := <-s.sessions:
			if s.active != nil {
				s.logger.Info("session superseded",
					"previous", s.active.id, "session", sess.id)
				s.active.conn.Close()
				s.abandon(s.active)
			}
			s.active = sess
			s.logger.Info("session accepted",
				"session", sess.id, "remote", sess.conn.RemoteAddr().String())
			go s.readLoop(sess)

		case event := <-s.lines:
			// Lines from a superseded session race its close; drop them.
			if event.session != s.active {
				continue
			}
			s.handleLine(event.session, event.text)

		case sess := <-s.closures:
			if sess == s.active {
				s.logger.Info("session closed", "session", sess.id)
				s.abandon(sess)
				s.active = nil
			}
		}
	}
}

// abandon cleans up after a session that closed or was superseded. An
// open transaction is aborted: its operations were queued but never
// executed, so discarding them restores the no-transaction invariant
// for the next session without touching the scene.
func (s *Server) abandon(sess *session) {
	if s.registry.AbortOpen() {
		s.logger.Warn("open action aborted on session end", "session", sess.id)
	}
}

func (s *Server) readLoop(sess *session) {
	scanner := bufio.NewScanner(sess.conn)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		line := make([]byte, len(scanner.Bytes()))
		copy(line, scanner.Bytes())
		select {
		case s.lines <- lineEvent{session: sess, text: line}:
		case <-s.done:
			return
		}
	}
	sess.conn.Close()
	select {
	case s.closures <- sess:
	case <-s.done:
	}
}

func (s *Server) handleLine(sess *session, line []byte) {
	if !sess.authenticated {
		s.handleHandshake(sess, line)
		return
	}

	var request wire.Request
	if err := json.Unmarshal(line, &request); err != nil {
		// Parse failures carry no id; framing of later lines is
		// unaffected.
		s.writeJSON(sess, wire.Response{
			OK:    false,
			Error: wire.NewError(wire.CodeParse, "line is not valid JSON", nil),
		})
		return
	}
	if request.Method == "" {
		id := request.ID
		s.writeJSON(sess, wire.Response{
			ID:    &id,
			OK:    false,
			Error: wire.NewError(wire.CodeBadMessage, "request is missing a method", nil),
		})
		return
	}

	result, werr := s.registry.Dispatch(request.Method, request.Params)
	id := request.ID
	if werr != nil {
		s.logger.Debug("method failed",
			"session", sess.id, "method", request.Method, "error", werr.Message)
		s.writeJSON(sess, wire.Response{ID: &id, OK: false, Error: werr})
		return
	}
	s.writeJSON(sess, wire.Response{ID: &id, OK: true, Result: result})
}

// handleHandshake processes one pre-authentication line. Every
// failure keeps the session open for a corrected retry; the configured
// token is never echoed in any reply.
func (s *Server) handleHandshake(sess *session, line []byte) {
	var hello wire.Hello
	if err := json.Unmarshal(line, &hello); err != nil {
		s.helloError(sess, wire.CodeParse+": line is not valid JSON")
		return
	}
	if hello.Type != wire.TypeHello {
		s.helloError(sess, wire.CodeBadMessage+": expected a hello message")
		return
	}
	if s.config.Token == "" {
		s.helloError(sess, wire.CodeDenied+": no bridge token is configured")
		return
	}
	if subtle.ConstantTimeCompare([]byte(hello.Token), []byte(s.config.Token)) != 1 {
		s.logger.Warn("authentication failed", "session", sess.id)
		s.helloError(sess, wire.CodeDenied+": invalid token")
		return
	}

	sess.authenticated = true
	s.logger.Info("session authenticated", "session", sess.id)
	s.writeJSON(sess, wire.HelloOK{
		Type: wire.TypeHelloOK,
		Capabilities: wire.Capabilities{
			Protocol: wire.Protocol,
			Methods:  s.registry.Names(),
		},
	})
}

func (s *Server) helloError(sess *session, message string) {
	s.writeJSON(sess, wire.HelloError{Type: wire.TypeHelloError, Error: message})
}

func (s *Server) writeJSON(sess *session, message any) {
	encoded, err := json.Marshal(message)
	if err != nil {
		s.logger.Error("encoding response failed", "error", err)
		return
	}
	encoded = append(encoded, '\n')
	if _, err := sess.conn.Write(encoded); err != nil {
		s.logger.Debug("write failed", "session", sess.id, "error", err)
	}
}

// recordCommit feeds the audit log. Runs on the control goroutine as
// part of dispatch, so reading the active session is safe.
func (s *Server) recordCommit(label string, methodNames []string, executed bool) {
	if s.audit == nil {
		return
	}
	sessionID := ""
	if s.active != nil {
		sessionID = s.active.id
	}
	if err := s.audit.Append(sessionID, label, methodNames, executed); err != nil {
		s.logger.Warn("audit append failed", "error", err)
	}
}
