// Package transport implements SynthDB's single-endpoint wire contract
// (spec.md §6): one HTTP handler accepting {q, g?, params?, Api-Key?}
// headers and an optional body, dispatching into query.Engine and
// writing either a JSON document or a stream-framed response.
//
// Grounded on straga-Mimir_lite/nornicdb/pkg/server's New/Start/Stop/
// buildRouter shape (atomic request counters, a single *http.Server,
// graceful Shutdown), generalized from that teacher's many-endpoint
// mux down to spec.md's one-endpoint contract, and on
// evalgo-org-eve/security/bcrypt.go's VerifyPassword for the Api-Key
// check.
package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/psymphonic/synthdb/preqlerr"
	"github.com/psymphonic/synthdb/query"
	"github.com/psymphonic/synthdb/stream"
)

// Config configures a Server beyond what query.Engine already owns.
type Config struct {
	// ListenAddr is the bind address, e.g. "0.0.0.0:8080".
	ListenAddr string
	// Secure requires a matching Api-Key header on every request.
	Secure bool
	// APIKeyHash is the bcrypt hash of the accepted Api-Key, read from
	// the file config.Config.APIKeyFile names. Required when Secure.
	APIKeyHash []byte
	ReadTimeout time.Duration
	WriteTimeout time.Duration
}

// DefaultConfig returns development-mode defaults: no auth, generous timeouts.
func DefaultConfig() *Config {
	return &Config{
		ListenAddr:   "0.0.0.0:8080",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
}

// LoadAPIKeyHash reads the bcrypt hash of the accepted Api-Key from path
// (config.Config.APIKeyFile), trimming surrounding whitespace/newlines.
func LoadAPIKeyHash(path string) ([]byte, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("transport: read api key file %q: %w", path, err)
	}
	return []byte(strings.TrimSpace(string(raw))), nil
}

// Server is SynthDB's single-endpoint HTTP server.
type Server struct {
	engine *query.Engine
	config *Config

	httpServer *http.Server
	listener   net.Listener

	requestCount atomic.Int64
	errorCount   atomic.Int64
}

// New constructs a Server around engine. config may be nil to accept
// DefaultConfig().
func New(engine *query.Engine, config *Config) (*Server, error) {
	if engine == nil {
		return nil, fmt.Errorf("transport: engine required")
	}
	if config == nil {
		config = DefaultConfig()
	}
	if config.Secure && len(config.APIKeyHash) == 0 {
		return nil, fmt.Errorf("transport: secure mode requires an api key hash")
	}
	return &Server{engine: engine, config: config}, nil
}

// Start binds the configured address and begins serving in the
// background. It returns once the listener is bound.
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.config.ListenAddr)
	if err != nil {
		return fmt.Errorf("transport: listen on %s: %w", s.config.ListenAddr, err)
	}
	s.listener = listener

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handle)

	s.httpServer = &http.Server{
		Handler:      mux,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			fmt.Fprintf(os.Stderr, "transport: serve error: %v\n", err)
		}
	}()
	return nil
}

// Stop gracefully shuts the server down.
func (s *Server) Stop(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// Addr reports the server's bound address, valid after Start.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// handle is the single endpoint spec.md §6 describes.
func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	s.requestCount.Add(1)

	op := r.Header.Get("q")
	if op == "" {
		s.writeError(w, false, preqlerr.Syntaxf("dispatch", "q", "missing required header %q", "q"))
		return
	}
	if op == "ping" {
		io.WriteString(w, "Hi there!")
		return
	}

	if s.config.Secure {
		if err := s.checkAPIKey(r); err != nil {
			s.errorCount.Add(1)
			w.WriteHeader(http.StatusForbidden)
			writeErrorEnvelope(w, preqlerr.InvalidOperationf("dispatch", "Api-Key", "invalid or missing Api-Key"))
			return
		}
	}

	params, err := parseParams(r.Header.Get("params"))
	if err != nil {
		s.errorCount.Add(1)
		s.writeError(w, op == "stream", err)
		return
	}

	var body string
	if r.Body != nil {
		raw, _ := io.ReadAll(r.Body)
		body = string(raw)
	}

	result, err := s.engine.Dispatch(query.Request{
		GraphID:    r.Header.Get("g"),
		Operation:  op,
		Parameters: params,
		Body:       body,
	})
	if err != nil {
		s.errorCount.Add(1)
		s.writeError(w, op == "stream", err)
		return
	}

	if docs, ok := result.([]string); ok {
		mode := streamModeFor(r)
		if err := stream.WriteFrames(w, mode, "", docs); err != nil {
			s.errorCount.Add(1)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(result); err != nil {
		s.errorCount.Add(1)
	}
}

// checkAPIKey implements spec.md §6's authentication rule: the request's
// Api-Key header must match the server's secret (stored as a bcrypt
// hash, not compared as plaintext, per SPEC_FULL.md's ambient stack).
func (s *Server) checkAPIKey(r *http.Request) error {
	key := r.Header.Get("Api-Key")
	if key == "" {
		return fmt.Errorf("transport: missing Api-Key header")
	}
	return bcrypt.CompareHashAndPassword(s.config.APIKeyHash, []byte(key))
}

func parseParams(raw string) (map[string]interface{}, error) {
	if raw == "" {
		return nil, nil
	}
	var params map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &params); err != nil {
		return nil, preqlerr.Syntaxf("dispatch", "params", "malformed params header: %v", err)
	}
	return params, nil
}

// streamModeFor picks tab vs event-stream framing from the client's
// Accept header, spec.md §6's "as chosen by the client".
func streamModeFor(r *http.Request) stream.Mode {
	if strings.Contains(r.Header.Get("Accept"), "text/event-stream") {
		return stream.EventStreamMode
	}
	return stream.TabMode
}

// writeError writes the §7 error envelope, framed as a stream's first
// (and only) frame when asStream is set.
func (s *Server) writeError(w http.ResponseWriter, asStream bool, err error) {
	if asStream {
		mode := stream.TabMode
		frame := errorEnvelope(err)
		_ = stream.WriteFrames(w, mode, frame, nil)
		return
	}
	writeErrorEnvelope(w, err)
}

func writeErrorEnvelope(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	io.WriteString(w, errorEnvelope(err))
}

// errorEnvelope renders spec.md §6's `{error:{type, msg}}` shape.
func errorEnvelope(err error) string {
	kind := "UnknownError"
	if pe, ok := err.(*preqlerr.Error); ok {
		kind = pe.Kind.String()
	}
	body, encErr := json.Marshal(map[string]interface{}{
		"error": map[string]string{"type": kind, "msg": err.Error()},
	})
	if encErr != nil {
		return fmt.Sprintf(`{"error":{"type":%q,"msg":%q}}`, kind, err.Error())
	}
	return string(body)
}
