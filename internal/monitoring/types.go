package monitoring

import "time"

// TelemetryConfig controls event recording.
type TelemetryConfig struct {
	Enabled     bool
	LogPath     string
	LogToStdout bool
}

// RequestEvent is recorded for every request that reaches an endpoint handler.
type RequestEvent struct {
	Timestamp  time.Time `json:"timestamp"`
	RequestID  string    `json:"request_id"`
	Endpoint   string    `json:"endpoint"`
	Method     string    `json:"method"`
	StatusCode int       `json:"status_code"`
	DurationMs int64     `json:"duration_ms"`
	UserID     string    `json:"user_id,omitempty"`
	ModelCalls int       `json:"model_calls"`
	ErrorKind  string    `json:"error_kind,omitempty"`
	Success    bool      `json:"success"`
}

// InitEvent is recorded once at gateway startup.
type InitEvent struct {
	Timestamp      time.Time `json:"timestamp"`
	Event          string    `json:"event"`
	ServerPort     int       `json:"server_port"`
	GenerateModel  string    `json:"generate_model"`
	EmbedModel     string    `json:"embed_model"`
	CORSWildcard   bool      `json:"cors_wildcard"`
	AllowedOrigins []string  `json:"allowed_origins,omitempty"`
	RateLimitRPS   float64   `json:"rate_limit_rps"`
	HasModelKey    bool      `json:"has_model_key"`
	HasServiceKey  bool      `json:"has_service_key"`
}
