package mock

import "time"

// Config describes the fake service
type Config struct {
	Port    int     `json:"port" yaml:"port"`       // default 8080
	Host    string  `json:"host" yaml:"host"`       // default localhost
	Routes  []Route `json:"routes" yaml:"routes"`   // empty means DefaultRoutes
	Logging bool    `json:"logging" yaml:"logging"` // log every request
}

// Route is one canned response
type Route struct {
	Name     string            `json:"name,omitempty" yaml:"name,omitempty"`
	Method   string            `json:"method" yaml:"method"`
	Path     string            `json:"path" yaml:"path"`
	PathType string            `json:"pathType,omitempty" yaml:"pathType,omitempty"` // exact, prefix, regex
	Status   int               `json:"status" yaml:"status"`
	Headers  map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
	Body     string            `json:"body,omitempty" yaml:"body,omitempty"`
	BodyFile string            `json:"bodyFile,omitempty" yaml:"bodyFile,omitempty"`
	Delay    int               `json:"delay,omitempty" yaml:"delay,omitempty"` // milliseconds
}

// RequestLog is one handled request
type RequestLog struct {
	Timestamp   time.Time     `json:"timestamp"`
	Method      string        `json:"method"`
	Path        string        `json:"path"`
	Document    string        `json:"document,omitempty"`
	BodySize    int           `json:"bodySize"`
	MatchedRule string        `json:"matchedRule"`
	Status      int           `json:"status"`
	Duration    time.Duration `json:"duration"`
}
