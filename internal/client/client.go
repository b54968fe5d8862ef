package client

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/studiowebux/kycfill/internal/types"
)

// Service endpoints
const (
	PathProcess  = "/api/process"
	PathGenerate = "/api/generate"
	PathExtract  = "/api/extract"
	PathHealth   = "/health"
)

// Operation names used in logs and history
const (
	OpProcess  = "process"
	OpGenerate = "generate"
	OpExtract  = "extract"
	OpHealth   = "health"
)

// Recorder persists finished exchanges
type Recorder interface {
	Record(entry types.HistoryEntry) error
}

// Options configures a Client
type Options struct {
	BaseURL  string
	Timeout  time.Duration // 0 means wait until the transport resolves
	TLS      *types.TLSConfig
	Hints    map[string]string
	Logger   *slog.Logger
	Recorder Recorder
}

// Client talks to the processing and generation service
type Client struct {
	baseURL  string
	http     *http.Client
	hints    map[string]string
	logger   *slog.Logger
	recorder Recorder
}

// New creates a Client
func New(opts Options) (*Client, error) {
	if opts.BaseURL == "" {
		return nil, errors.New("base URL is required")
	}

	httpClient, err := buildHTTPClient(opts.TLS, opts.Timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to configure HTTP client: %w", err)
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		baseURL:  strings.TrimRight(opts.BaseURL, "/"),
		http:     httpClient,
		hints:    opts.Hints,
		logger:   logger,
		recorder: opts.Recorder,
	}, nil
}

// BaseURL returns the service address
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Process uploads a document and returns the extracted text, or a profile
// when the service generated one directly.
func (c *Client) Process(ctx context.Context, doc *types.Document) (*types.ExtractionResult, error) {
	body, err := c.upload(ctx, OpProcess, PathProcess, doc)
	if err != nil {
		return nil, err
	}

	var result types.ExtractionResult
	if err := decode(body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Extract uploads a document and returns only its text
func (c *Client) Extract(ctx context.Context, doc *types.Document) (*types.DocumentText, error) {
	body, err := c.upload(ctx, OpExtract, PathExtract, doc)
	if err != nil {
		return nil, err
	}

	var result types.DocumentText
	if err := decode(body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Generate submits text and returns the generated profile and forms
func (c *Client) Generate(ctx context.Context, text string) (*types.GenerationResult, error) {
	payload, err := json.Marshal(types.GenerationRequest{Text: text, Hints: c.hints})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+PathGenerate, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	body, err := c.do(req, OpGenerate, "", len(payload))
	if err != nil {
		return nil, err
	}

	var result types.GenerationResult
	if err := decode(body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Health queries the readiness probe
func (c *Client) Health(ctx context.Context) (*types.HealthStatus, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+PathHealth, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	body, err := c.do(req, OpHealth, "", 0)
	if err != nil {
		return nil, err
	}

	var status types.HealthStatus
	if err := decode(body, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

func (c *Client) upload(ctx context.Context, op, path string, doc *types.Document) ([]byte, error) {
	if doc == nil {
		return nil, errors.New("no document selected")
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", doc.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := part.Write(doc.Content); err != nil {
		return nil, fmt.Errorf("failed to write form file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish multipart body: %w", err)
	}

	size := buf.Len()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	return c.do(req, op, doc.Name, size)
}

// do executes req and returns the body of a 2xx response.
// Every other outcome becomes a *types.ServiceError.
func (c *Client) do(req *http.Request, op, source string, requestSize int) ([]byte, error) {
	reqID := uuid.New().String()
	start := time.Now()

	c.logger.Info("client.request",
		"req_id", reqID,
		"op", op,
		"url", req.URL.String(),
		"content_length", requestSize,
	)

	entry := types.HistoryEntry{
		RequestID:   reqID,
		Timestamp:   start,
		Operation:   op,
		Source:      source,
		RequestSize: requestSize,
	}

	resp, err := c.http.Do(req)
	if err != nil {
		entry.Duration = time.Since(start).Milliseconds()
		entry.Error = err.Error()
		c.record(entry)
		c.logger.Error("client.send_error", "req_id", reqID, "op", op, "error", err, "elapsed_ms", entry.Duration)
		return nil, &types.ServiceError{Message: err.Error()}
	}
	defer func(body io.ReadCloser) {
		if err := body.Close(); err != nil {
			c.logger.Warn("client.response_body_close_error", "req_id", reqID, "error", err)
		}
	}(resp.Body)

	raw, err := io.ReadAll(resp.Body)
	entry.Duration = time.Since(start).Milliseconds()
	entry.Status = resp.StatusCode
	entry.ResponseBody = string(raw)
	entry.ResponseSize = len(raw)
	if err != nil {
		entry.Error = fmt.Sprintf("failed to read response body: %v", err)
		c.record(entry)
		c.logger.Error("client.read_error", "req_id", reqID, "op", op, "error", err)
		return nil, &types.ServiceError{Status: resp.StatusCode, Message: entry.Error}
	}

	c.logger.Info("client.response",
		"req_id", reqID,
		"op", op,
		"status", resp.StatusCode,
		"bytes", len(raw),
		"elapsed_ms", entry.Duration,
	)

	if !IsSuccessStatus(resp.StatusCode) {
		entry.Error = string(raw)
		c.record(entry)
		return nil, &types.ServiceError{Status: resp.StatusCode, Message: string(raw)}
	}

	c.record(entry)
	return raw, nil
}

func (c *Client) record(entry types.HistoryEntry) {
	if c.recorder == nil {
		return
	}
	if err := c.recorder.Record(entry); err != nil {
		c.logger.Warn("client.history_error", "req_id", entry.RequestID, "error", err)
	}
}

func decode(body []byte, v interface{}) error {
	if err := json.Unmarshal(body, v); err != nil {
		return &types.ServiceError{
			Status:  http.StatusOK,
			Message: fmt.Sprintf("failed to decode response: %v", err),
		}
	}
	return nil
}

// buildHTTPClient creates an HTTP client with optional TLS/mTLS configuration
func buildHTTPClient(tlsConfig *types.TLSConfig, timeout time.Duration) (*http.Client, error) {
	transport := http.DefaultTransport.(*http.Transport).Clone()

	if tlsConfig != nil {
		tlsCfg := &tls.Config{
			InsecureSkipVerify: tlsConfig.InsecureSkipVerify,
		}

		// Load client certificate if provided (for mTLS)
		if tlsConfig.CertFile != "" && tlsConfig.KeyFile != "" {
			cert, err := tls.LoadX509KeyPair(tlsConfig.CertFile, tlsConfig.KeyFile)
			if err != nil {
				return nil, fmt.Errorf("failed to load client certificate: %w", err)
			}
			tlsCfg.Certificates = []tls.Certificate{cert}
		}

		// Load CA certificate if provided (for server verification)
		if tlsConfig.CAFile != "" {
			caCert, err := os.ReadFile(tlsConfig.CAFile)
			if err != nil {
				return nil, fmt.Errorf("failed to read CA certificate: %w", err)
			}
			caCertPool := x509.NewCertPool()
			if !caCertPool.AppendCertsFromPEM(caCert) {
				return nil, fmt.Errorf("failed to parse CA certificate")
			}
			tlsCfg.RootCAs = caCertPool
		}

		transport.TLSClientConfig = tlsCfg
	}

	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}, nil
}

// IsSuccessStatus returns true if status code is 2xx
func IsSuccessStatus(status int) bool {
	return status >= 200 && status < 300
}

// FormatDuration formats duration in milliseconds to human-readable string
func FormatDuration(ms int64) string {
	if ms < 1000 {
		return fmt.Sprintf("%dms", ms)
	}
	seconds := float64(ms) / 1000.0
	return fmt.Sprintf("%.2fs", seconds)
}

// FormatSize formats byte size to human-readable string
func FormatSize(bytes int) string {
	if bytes < 1024 {
		return fmt.Sprintf("%dB", bytes)
	}
	if bytes < 1024*1024 {
		return fmt.Sprintf("%.2fKB", float64(bytes)/1024.0)
	}
	return fmt.Sprintf("%.2fMB", float64(bytes)/(1024.0*1024.0))
}
