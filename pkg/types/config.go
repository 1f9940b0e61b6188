package types

import "time"

// AIProvider identifies the generation service backend.
type AIProvider string

const (
	ProviderGemini    AIProvider = "gemini"
	ProviderOpenAI    AIProvider = "openai"
	ProviderAnthropic AIProvider = "anthropic"
)

// AIConfig holds settings for the external generation service.
type AIConfig struct {
	// Provider selects the backend: gemini, openai, or anthropic.
	Provider AIProvider `json:"provider" yaml:"provider" mapstructure:"provider"`

	// Model is the model identifier (e.g. "gemini-2.5-pro").
	Model string `json:"model" yaml:"model" mapstructure:"model"`

	// APIKey is the authentication key. When empty the key is taken from
	// .secrets/<provider>-api-key.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`

	// BaseURL overrides the provider endpoint (OpenAI-compatible gateways).
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty" mapstructure:"base_url"`

	// MaxTokens caps the reply length for providers that require a limit.
	MaxTokens int `json:"max_tokens" yaml:"max_tokens" mapstructure:"max_tokens"`

	// ThinkingBudget is the Gemini thinking token budget (0 disables it).
	ThinkingBudget int `json:"thinking_budget" yaml:"thinking_budget" mapstructure:"thinking_budget"`

	// Timeout is the HTTP client timeout for the service call. Zero means the
	// client never gives up on its own.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`
}

// WritingConfig holds the persona settings shared by every request.
type WritingConfig struct {
	// Discipline is the field of study the writer persona belongs to
	// (e.g. "marketing management").
	Discipline string `json:"discipline" yaml:"discipline" mapstructure:"discipline"`

	// Language is the language the essay is written in (e.g. "Indonesian").
	Language string `json:"language" yaml:"language" mapstructure:"language"`
}

// DefaultWritingConfig returns the persona used when none is configured.
func DefaultWritingConfig() WritingConfig {
	return WritingConfig{Discipline: "marketing management", Language: "Indonesian"}
}

// ExportConfig holds settings for the export encoders.
type ExportConfig struct {
	// Dir is the directory export files are written to.
	Dir string `json:"dir" yaml:"dir" mapstructure:"dir"`

	// Formats lists the formats written after generation (ris, doc, bib, txt).
	Formats []string `json:"formats" yaml:"formats" mapstructure:"formats"`

	// Labels selects the document section headings: "en" or "id".
	Labels string `json:"labels" yaml:"labels" mapstructure:"labels"`
}

// ConverterConfig holds settings for extracting text from word-processor
// attachments.
type ConverterConfig struct {
	// Image is the markitdown container image.
	Image string `json:"image" yaml:"image" mapstructure:"image"`
}

// JournalConfig holds settings for the generation attempt journal.
type JournalConfig struct {
	// Path is the SQLite database file. Empty disables the journal.
	Path string `json:"path" yaml:"path" mapstructure:"path"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `json:"level" yaml:"level" mapstructure:"level"`

	// Format is "text" or "json".
	Format string `json:"format" yaml:"format" mapstructure:"format"`
}

// ServerConfig holds settings for the HTTP API.
type ServerConfig struct {
	// Addr is the listen address (e.g. ":8080").
	Addr string `json:"addr" yaml:"addr" mapstructure:"addr"`

	// AllowedOrigins lists CORS origins. Empty allows all origins.
	AllowedOrigins []string `json:"allowed_origins" yaml:"allowed_origins" mapstructure:"allowed_origins"`

	// MaxConcurrent bounds simultaneous generation calls (default 1).
	MaxConcurrent int64 `json:"max_concurrent" yaml:"max_concurrent" mapstructure:"max_concurrent"`

	// MaxBodyBytes bounds request bodies, attachments included.
	MaxBodyBytes int64 `json:"max_body_bytes" yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
}

// AppConfig groups every setting read from essay-engine.yaml.
type AppConfig struct {
	AI        AIConfig        `json:"ai" yaml:"ai" mapstructure:"ai"`
	Writing   WritingConfig   `json:"writing" yaml:"writing" mapstructure:"writing"`
	Export    ExportConfig    `json:"export" yaml:"export" mapstructure:"export"`
	Converter ConverterConfig `json:"converter" yaml:"converter" mapstructure:"converter"`
	Journal   JournalConfig   `json:"journal" yaml:"journal" mapstructure:"journal"`
	Log       LogConfig       `json:"log" yaml:"log" mapstructure:"log"`
	Server    ServerConfig    `json:"server" yaml:"server" mapstructure:"server"`

	// MetricsFile, when set, receives a Prometheus text-format dump after
	// each CLI run.
	MetricsFile string `json:"metrics_file,omitempty" yaml:"metrics_file,omitempty" mapstructure:"metrics_file"`
}
