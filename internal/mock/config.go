package mock

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/studiowebux/kycfill/internal/client"
	"gopkg.in/yaml.v3"
)

const (
	DefaultPort = 8080
	DefaultHost = "localhost"
)

// DefaultRoutes answer every endpoint the client calls with a small
// passport example
func DefaultRoutes() []Route {
	const contentJSON = "application/json"
	headers := map[string]string{"Content-Type": contentJSON}

	return []Route{
		{
			Name:    "process",
			Method:  http.MethodPost,
			Path:    client.PathProcess,
			Status:  http.StatusOK,
			Headers: headers,
			Body:    `{"text":"Jane Doe\nBorn 1990-04-12\nPassport X1234567"}`,
		},
		{
			Name:    "extract",
			Method:  http.MethodPost,
			Path:    client.PathExtract,
			Status:  http.StatusOK,
			Headers: headers,
			Body:    `{"source_name":"passport.pdf","text":"Jane Doe\nBorn 1990-04-12\nPassport X1234567"}`,
		},
		{
			Name:    "generate",
			Method:  http.MethodPost,
			Path:    client.PathGenerate,
			Status:  http.StatusOK,
			Headers: headers,
			Body: `{"profile":{"full_name":"Jane Doe","date_of_birth":"1990-04-12","documents":[{"type":"passport","number":"X1234567"}]},` +
				`"forms":[{"form_id":"KYC-1","form_title":"Account Opening","answers":[` +
				`{"question":"Full name","answer":"Jane Doe","reference_field":"full_name"},` +
				`{"question":"Occupation","answer":""}]}]}`,
		},
		{
			Name:    "health",
			Method:  http.MethodGet,
			Path:    client.PathHealth,
			Status:  http.StatusOK,
			Headers: headers,
			Body:    `{"status":"ok"}`,
		},
	}
}

// LoadConfig reads a YAML or JSON fake service definition
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := Config{Logging: true}

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse JSON config: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config file format: %s (use .yaml, .yml, or .json)", ext)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

func validateConfig(config *Config) error {
	for i, route := range config.Routes {
		if route.Method == "" {
			return fmt.Errorf("route %d: method is required", i)
		}
		if route.Path == "" {
			return fmt.Errorf("route %d: path is required", i)
		}
		switch route.PathType {
		case "", "exact", "prefix":
		case "regex":
			if _, err := regexp.Compile(route.Path); err != nil {
				return fmt.Errorf("route %d: invalid path regex: %w", i, err)
			}
		default:
			return fmt.Errorf("route %d: pathType must be 'exact', 'prefix', or 'regex'", i)
		}
		if route.Delay < 0 {
			return fmt.Errorf("route %d: delay must not be negative", i)
		}
	}
	return nil
}
