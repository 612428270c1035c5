package app

import "time"

// Defaults applied when neither flags, env nor the config file set a value.
const (
	DefaultModel     = "gpt-4o-mini"
	DefaultAddr      = ":8000"
	DefaultStaticDir = "frontend"
	DefaultTracesDir = "annotation/traces"
	DefaultTimeout   = 60 * time.Second
)

// Config holds runtime configuration for the server. It is resolved once in
// main and not modified afterwards.
type Config struct {
	// HTTP
	Addr      string
	StaticDir string
	TracesDir string
	// DisableTraces skips writing annotation traces.
	DisableTraces bool

	// LLM
	LLMBaseURL string
	LLMModel   string
	LLMAPIKey  string
	LLMTimeout time.Duration

	// Prompt
	Country string
	// SystemPromptTemplate overrides the built-in template (inline string).
	SystemPromptTemplate string
	// SystemPromptFile, when set, takes precedence over SystemPromptTemplate.
	SystemPromptFile string
	// SystemPrompt is the rendered prompt. BuildSystemPrompt fills it.
	SystemPrompt string

	// Reply cache
	CacheDir         string
	CacheMaxAge      time.Duration
	CacheClear       bool
	CacheStrictPerms bool
	LLMCacheOnly     bool

	Verbose bool
}
