package types

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Document is a file selected by the user for intake
type Document struct {
	Name    string
	Content []byte
}

// LoadDocument reads a document from disk
func LoadDocument(path string) (*Document, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read document: %w", err)
	}
	return &Document{
		Name:    filepath.Base(path),
		Content: content,
	}, nil
}

// Profile is the opaque client profile produced by the service
type Profile = Value

// ExtractionResult is the response of the intake call
type ExtractionResult struct {
	Text    string   `json:"text,omitempty" yaml:"text,omitempty"`
	Profile *Profile `json:"profile,omitempty" yaml:"profile,omitempty"`
	Forms   []Form   `json:"forms,omitempty" yaml:"forms,omitempty"`
}

// HasProfile reports whether the service skipped straight to a result
func (r *ExtractionResult) HasProfile() bool {
	return r != nil && !r.Profile.IsFalsy()
}

// AsGeneration returns the result-shaped view of a short-circuited extraction
func (r *ExtractionResult) AsGeneration() *GenerationResult {
	if r == nil {
		return nil
	}
	return &GenerationResult{
		Profile: r.Profile,
		Forms:   r.Forms,
	}
}

// GenerationRequest is the body of the generation call
type GenerationRequest struct {
	Text  string            `json:"text"`
	Hints map[string]string `json:"hints,omitempty"`
}

// GenerationResult is the response of the generation call
type GenerationResult struct {
	Profile *Profile `json:"profile" yaml:"profile"`
	Forms   []Form   `json:"forms" yaml:"forms"`
}

// HasProfile reports whether there is anything to render
func (r *GenerationResult) HasProfile() bool {
	return r != nil && !r.Profile.IsFalsy()
}

// Form is a named group of question/answer pairs
type Form struct {
	FormID    string   `json:"form_id" yaml:"form_id"`
	FormTitle string   `json:"form_title" yaml:"form_title"`
	Answers   []Answer `json:"answers" yaml:"answers"`
}

// Answer is one question with its generated response.
// A nil Answer means the service omitted it.
type Answer struct {
	Question       string  `json:"question" yaml:"question"`
	Answer         *string `json:"answer,omitempty" yaml:"answer,omitempty"`
	ReferenceField string  `json:"reference_field,omitempty" yaml:"reference_field,omitempty"`
}

// Text returns the answer text, empty when missing
func (a Answer) Text() string {
	if a.Answer == nil {
		return ""
	}
	return *a.Answer
}

// DocumentText is the response of the standalone extraction call
type DocumentText struct {
	SourceName string `json:"source_name" yaml:"source_name"`
	Text       string `json:"text" yaml:"text"`
}

// HealthStatus is the response of the readiness probe
type HealthStatus struct {
	Status string `json:"status" yaml:"status"`
}

// ServiceError is any failed exchange with the service.
// Status is 0 when no HTTP response was received.
type ServiceError struct {
	Status  int
	Message string
}

func (e *ServiceError) Error() string {
	return e.Message
}

// HistoryEntry is a recorded exchange with the service
type HistoryEntry struct {
	ID           int64     `json:"id" yaml:"id"`
	RequestID    string    `json:"requestId" yaml:"requestId"`
	Timestamp    time.Time `json:"timestamp" yaml:"timestamp"`
	Operation    string    `json:"operation" yaml:"operation"`
	Source       string    `json:"source,omitempty" yaml:"source,omitempty"`
	Status       int       `json:"status" yaml:"status"`
	ResponseBody string    `json:"responseBody" yaml:"responseBody"`
	Duration     int64     `json:"duration" yaml:"duration"` // milliseconds
	RequestSize  int       `json:"requestSize,omitempty" yaml:"requestSize,omitempty"`
	ResponseSize int       `json:"responseSize,omitempty" yaml:"responseSize,omitempty"`
	Error        string    `json:"error,omitempty" yaml:"error,omitempty"`
}

// FileInfo represents a document candidate in the TUI picker
type FileInfo struct {
	Path         string
	Name         string
	Size         int64
	ModifiedTime time.Time
}

// TLSConfig contains TLS/mTLS settings for the service connection
type TLSConfig struct {
	CertFile           string `json:"certFile,omitempty" yaml:"cert_file,omitempty"`
	KeyFile            string `json:"keyFile,omitempty" yaml:"key_file,omitempty"`
	CAFile             string `json:"caFile,omitempty" yaml:"ca_file,omitempty"`
	InsecureSkipVerify bool   `json:"insecureSkipVerify,omitempty" yaml:"insecure_skip_verify,omitempty"`
}
