// Package server exposes the task fetcher over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/entrhq/tugas/pkg/logging"
	"github.com/entrhq/tugas/pkg/scraper"
)

// Timeouts for the HTTP listener. Writes are unbounded unless set with
// WithWriteTimeout, since a fetch is already bounded by its own steps.
const (
	ReadTimeout     = 10 * time.Second
	ShutdownTimeout = 30 * time.Second
)

const loginSuccessMessage = "Login successful!"

// Fetcher runs one login and extraction invocation.
type Fetcher interface {
	Fetch(ctx context.Context, creds scraper.Credentials) (*scraper.FetchResult, error)
}

// Server serves the get-tugas endpoint.
type Server struct {
	fetcher      Fetcher
	address      string
	logger       *logging.Logger
	writeTimeout time.Duration
	server       *http.Server
}

// NewServer creates a server that will listen on address.
func NewServer(fetcher Fetcher, address string, logger *logging.Logger) *Server {
	return &Server{
		fetcher: fetcher,
		address: address,
		logger:  logger,
	}
}

// WithWriteTimeout bounds each response. It must cover the slowest
// invocation or late failures lose their error body; 0 means unbounded.
func (s *Server) WithWriteTimeout(d time.Duration) *Server {
	s.writeTimeout = d
	return s
}

type tasksResponse struct {
	Username string            `json:"username"`
	Message  string            `json:"message"`
	Tasks    scraper.TaskGroup `json:"tasks"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// NewTasksResponse builds the success body shared by the endpoint and the CLI.
func NewTasksResponse(result *scraper.FetchResult) interface{} {
	return tasksResponse{
		Username: result.User,
		Message:  loginSuccessMessage,
		Tasks:    result.Tasks,
	}
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.Write([]byte("ok"))
}

func (s *Server) handleGetTasks(w http.ResponseWriter, request *http.Request) {
	if request.Method != http.MethodPost {
		http.Error(w, "POST only", http.StatusMethodNotAllowed)
		return
	}

	var creds scraper.Credentials
	if err := json.NewDecoder(request.Body).Decode(&creds); err != nil {
		s.logger.Verbosef("rejecting undecodable body: %v", err)
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: scraper.ErrCredentialsRequired.Error()})
		return
	}
	if err := creds.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	// The invocation runs to completion even if the client goes away
	result, err := s.fetcher.Fetch(context.WithoutCancel(request.Context()), creds)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, scraper.ErrCredentialsRequired) {
			status = http.StatusBadRequest
		}
		s.logger.Errorf("Error: %v", err)
		writeJSON(w, status, errorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, NewTasksResponse(result))
}

// recoverer turns handler panics into the generic error body.
func (s *Server) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, request *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Errorf("panic serving %s: %v", request.URL.Path, rec)
				writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Something went wrong!"})
			}
		}()
		next.ServeHTTP(w, request)
	})
}

func (s *Server) setupRoutes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealthz)
	mux.HandleFunc("/get-tugas", s.handleGetTasks)
	return s.recoverer(mux)
}

// Handler returns the routed handler without starting a listener.
func (s *Server) Handler() http.Handler {
	return s.setupRoutes()
}

// Start listens until ctx is done, then drains in-flight requests.
func (s *Server) Start(ctx context.Context) error {
	s.server = s.newHTTPServer()

	serveErr := make(chan error, 1)
	go func() {
		s.logger.Infof("Server running on %s", s.address)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err, ok := <-serveErr:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Infof("Shutting down server...")
	shutdownContext, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()

	if err := s.server.Shutdown(shutdownContext); err != nil {
		return err
	}

	s.logger.Infof("Server exited")
	return nil
}

func (s *Server) newHTTPServer() *http.Server {
	return &http.Server{
		Addr:         s.address,
		Handler:      s.setupRoutes(),
		ReadTimeout:  ReadTimeout,
		WriteTimeout: s.writeTimeout,
	}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
