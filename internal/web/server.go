// Package web serves the practice session as a local browser form.
// It is meant for localhost only.
package web

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"log"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/verte-zerg/arithmetictrainer/internal/model"
	"github.com/verte-zerg/arithmetictrainer/internal/practice"
)

//go:embed templates/index.html
var templateFS embed.FS

const shutdownTimeout = 5 * time.Second

// Server renders the current task and accepts answers.
type Server struct {
	shared *practice.Shared
	tmpl   *template.Template
	info   *log.Logger
	errLog *log.Logger
}

// pageData is built fresh for every request.
type pageData struct {
	Task    model.Task
	State   model.State
	Seq     int
	Elapsed float64
}

// NewServer builds a server around a shared run. Logs go to logger.
func NewServer(shared *practice.Shared, logger *log.Logger) (*Server, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/index.html")
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.New(log.Writer(), "", log.LstdFlags)
	}
	return &Server{
		shared: shared,
		tmpl:   tmpl,
		info:   log.New(logger.Writer(), "INFO: ", logger.Flags()),
		errLog: log.New(logger.Writer(), "ERROR: ", logger.Flags()),
	}, nil
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/", s.handleView).Methods(http.MethodGet)
	r.HandleFunc("/", s.handleAnswer).Methods(http.MethodPost)
	r.HandleFunc("/api/state", s.handleState).Methods(http.MethodGet)
	return r
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	httpServer := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.info.Printf("serving at http://%s", ln.Addr())
		errCh <- httpServer.Serve(ln)
	}()
	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.info.Println("server stopped")
	return nil
}

func (s *Server) handleView(w http.ResponseWriter, _ *http.Request) {
	view := s.shared.View()
	data := pageData{
		Task:    view.Task,
		State:   view.State,
		Seq:     view.Seq,
		Elapsed: view.State.SecondsSinceStarted,
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.tmpl.Execute(w, data); err != nil {
		s.errLog.Printf("failed to render page: %v", err)
	}
}

func (s *Server) handleAnswer(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.errLog.Printf("failed to parse form: %v", err)
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	answer := strings.TrimSpace(r.PostFormValue("answer"))
	if _, err := decimal.NewFromString(answer); err != nil {
		s.info.Printf("could not convert %q to a decimal", answer)
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	seq, err := strconv.Atoi(r.PostFormValue("task"))
	if err != nil {
		s.info.Printf("dropping answer %q without a valid task id", answer)
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	ok, err := s.shared.SubmitFor(seq, answer)
	if errors.Is(err, practice.ErrStaleTask) {
		s.info.Printf("dropping answer %q for task %d: already solved", answer, seq)
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	if err != nil {
		s.errLog.Printf("failed to advance task: %v", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.info.Printf("answer %s correct=%t", answer, ok)
	http.Redirect(w, r, "/", http.StatusFound)
}

func (s *Server) handleState(w http.ResponseWriter, _ *http.Request) {
	data, err := s.shared.Snapshot()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if _, err := w.Write(data); err != nil {
		s.errLog.Printf("failed to write state: %v", err)
	}
}
