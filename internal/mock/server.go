package mock

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"
)

const maxLogs = 1000

// Server answers the service endpoints with canned responses
type Server struct {
	config   *Config
	workdir  string
	logger   *slog.Logger
	patterns map[int]*regexp.Regexp

	logsMutex sync.RWMutex
	logs      []RequestLog
}

// NewServer fills in defaults. Relative body files resolve against workdir.
func NewServer(config *Config, workdir string, logger *slog.Logger) *Server {
	if config.Port == 0 {
		config.Port = DefaultPort
	}
	if config.Host == "" {
		config.Host = DefaultHost
	}
	if len(config.Routes) == 0 {
		config.Routes = DefaultRoutes()
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	patterns := make(map[int]*regexp.Regexp)
	for i, route := range config.Routes {
		if route.PathType == "regex" {
			if re, err := regexp.Compile(route.Path); err == nil {
				patterns[i] = re
			}
		}
	}

	return &Server{
		config:   config,
		workdir:  workdir,
		logger:   logger,
		patterns: patterns,
	}
}

func (s *Server) Handler() http.Handler {
	return http.HandlerFunc(s.handleRequest)
}

// ListenAndServe blocks until ctx is cancelled or the listener fails
func (s *Server) ListenAndServe(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              net.JoinHostPort(s.config.Host, strconv.Itoa(s.config.Port)),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleRequest(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	body, _ := io.ReadAll(r.Body)
	r.Body.Close()
	r.Body = io.NopCloser(bytes.NewReader(body))

	entry := RequestLog{
		Timestamp: start,
		Method:    r.Method,
		Path:      r.URL.Path,
		Document:  uploadedName(r),
		BodySize:  len(body),
	}

	route := s.findMatchingRoute(r.Method, r.URL.Path)
	if route == nil {
		entry.Status = http.StatusNotFound
		entry.MatchedRule = "none"
		w.WriteHeader(entry.Status)
		fmt.Fprintf(w, "mock: no route configured for %s %s", r.Method, r.URL.Path)
		s.logRequest(entry, start)
		return
	}

	entry.MatchedRule = route.Name
	if entry.MatchedRule == "" {
		entry.MatchedRule = route.Method + " " + route.Path
	}

	if route.Delay > 0 {
		select {
		case <-time.After(time.Duration(route.Delay) * time.Millisecond):
		case <-r.Context().Done():
			entry.MatchedRule += " (client gone)"
			s.logRequest(entry, start)
			return
		}
	}

	status := route.Status
	if status == 0 {
		status = http.StatusOK
	}

	responseBody := []byte(route.Body)
	if route.BodyFile != "" {
		path := route.BodyFile
		if !filepath.IsAbs(path) {
			path = filepath.Join(s.workdir, path)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			status = http.StatusInternalServerError
			responseBody = []byte(fmt.Sprintf("mock: failed to read body file %s: %v", route.BodyFile, err))
		} else {
			responseBody = data
		}
	}

	for key, value := range route.Headers {
		w.Header().Set(key, value)
	}
	w.WriteHeader(status)
	w.Write(responseBody)

	entry.Status = status
	s.logRequest(entry, start)
}

// uploadedName returns the multipart file name of a document upload
func uploadedName(r *http.Request) string {
	if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		return ""
	}
	_, header, err := r.FormFile("file")
	if err != nil {
		return ""
	}
	return header.Filename
}

// findMatchingRoute returns the first route matching method and path
func (s *Server) findMatchingRoute(method, path string) *Route {
	for i := range s.config.Routes {
		route := &s.config.Routes[i]
		if !strings.EqualFold(route.Method, method) {
			continue
		}

		matched := false
		switch route.PathType {
		case "", "exact":
			matched = route.Path == path
		case "prefix":
			matched = strings.HasPrefix(path, route.Path)
		case "regex":
			if re, ok := s.patterns[i]; ok {
				matched = re.MatchString(path)
			}
		}

		if matched {
			return route
		}
	}
	return nil
}

func (s *Server) logRequest(entry RequestLog, start time.Time) {
	entry.Duration = time.Since(start)

	s.logsMutex.Lock()
	s.logs = append(s.logs, entry)
	if len(s.logs) > maxLogs {
		s.logs = s.logs[len(s.logs)-maxLogs:]
	}
	s.logsMutex.Unlock()

	if s.config.Logging {
		s.logger.Info("mock.request",
			"method", entry.Method,
			"path", entry.Path,
			"document", entry.Document,
			"rule", entry.MatchedRule,
			"status", entry.Status,
			"elapsed_ms", entry.Duration.Milliseconds(),
		)
	}
}

// Logs returns a copy of the handled requests, oldest first
func (s *Server) Logs() []RequestLog {
	s.logsMutex.RLock()
	defer s.logsMutex.RUnlock()

	logs := make([]RequestLog, len(s.logs))
	copy(logs, s.logs)
	return logs
}

func (s *Server) ClearLogs() {
	s.logsMutex.Lock()
	defer s.logsMutex.Unlock()

	s.logs = nil
}

// Address returns the base URL clients should use
func (s *Server) Address() string {
	return "http://" + net.JoinHostPort(s.config.Host, strconv.Itoa(s.config.Port))
}
