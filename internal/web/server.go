// Package web provides an HTTP status server for the mister daemon.
package web

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/sweeney/garden-mister/internal/command"
	"github.com/sweeney/garden-mister/internal/status"
)

// commandTimeout bounds how long a POST waits for the poll loop.
const commandTimeout = 5 * time.Second

// Submitter hands a command line to the poll loop and waits for the result.
type Submitter interface {
	Submit(ctx context.Context, source, line string) (command.Response, error)
}

// Server serves the status page over HTTP.
type Server struct {
	httpServer *http.Server
	tracker    *status.Tracker
	commands   Submitter // nil disables POST /command
}

// New creates a Server that reads state from the given tracker and, if
// commands is non-nil, accepts operator commands.
func New(addr string, tracker *status.Tracker, commands Submitter) *Server {
	s := &Server{tracker: tracker, commands: commands}

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/index.html", s.handleIndex)
	mux.HandleFunc("/index.json", s.handleJSON)
	mux.HandleFunc("/command", s.handleCommand)

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// ListenAndServe starts listening. It blocks until the server is shut down.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// Serve accepts connections on the given listener. Useful for tests.
func (s *Server) Serve(ln net.Listener) error {
	return s.httpServer.Serve(ln)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" && r.URL.Path != "/index.html" {
		http.NotFound(w, r)
		return
	}
	snap := s.tracker.Snapshot()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	renderHTML(w, snap, s.commands != nil)
}

func (s *Server) handleJSON(w http.ResponseWriter, r *http.Request) {
	snap := s.tracker.Snapshot()
	w.Header().Set("Content-Type", "application/json")
	w.Write(status.FormatJSON(snap))
}

// handleCommand accepts the command either as the form field "cmd" or as
// the raw request body.
func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.commands == nil {
		http.Error(w, "commands disabled", http.StatusNotFound)
		return
	}

	line := r.FormValue("cmd")
	if line == "" {
		body, err := io.ReadAll(io.LimitReader(r.Body, 256))
		if err != nil {
			http.Error(w, "read body: "+err.Error(), http.StatusBadRequest)
			return
		}
		line = string(body)
	}

	ctx, cancel := context.WithTimeout(r.Context(), commandTimeout)
	defer cancel()

	resp, err := s.commands.Submit(ctx, "http", line)
	if err != nil {
		code := http.StatusServiceUnavailable
		if errors.Is(err, context.Canceled) {
			code = http.StatusRequestTimeout
		}
		http.Error(w, err.Error(), code)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if resp.Err != nil {
		code := http.StatusInternalServerError
		if errors.Is(resp.Err, command.ErrUnknown) || errors.Is(resp.Err, command.ErrEmpty) {
			code = http.StatusBadRequest
		}
		http.Error(w, resp.Err.Error(), code)
		return
	}
	io.WriteString(w, strings.Join(resp.Lines, "\n")+"\n")
}
