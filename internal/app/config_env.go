package app

import (
	"os"
	"strings"
	"time"
)

// firstEnv returns the first non-empty value among keys.
func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(os.Getenv(k)); v != "" {
			return v
		}
	}
	return ""
}

func envBool(key string) (value bool, set bool) {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "1", "true", "yes", "on":
		return true, true
	case "0", "false", "no", "off":
		return false, true
	}
	return false, false
}

// ApplyEnvToConfig populates unset fields of cfg from environment variables.
// Explicit cfg values take precedence over env.
func ApplyEnvToConfig(cfg *Config) {
	if cfg == nil {
		return
	}
	setStr := func(dst *string, keys ...string) {
		if *dst == "" {
			*dst = firstEnv(keys...)
		}
	}
	setStr(&cfg.Addr, "ADDR")
	setStr(&cfg.StaticDir, "STATIC_DIR")
	setStr(&cfg.TracesDir, "TRACES_DIR")
	setStr(&cfg.LLMBaseURL, "LLM_BASE_URL", "OPENAI_BASE_URL")
	setStr(&cfg.LLMModel, "MODEL_NAME")
	setStr(&cfg.LLMAPIKey, "LLM_API_KEY", "OPENAI_API_KEY")
	setStr(&cfg.Country, "COUNTRY")
	setStr(&cfg.SystemPromptTemplate, "SYSTEM_PROMPT")
	setStr(&cfg.SystemPromptFile, "SYSTEM_PROMPT_FILE")
	setStr(&cfg.CacheDir, "CACHE_DIR")

	setDur := func(dst *time.Duration, key string) {
		if *dst != 0 {
			return
		}
		if s := os.Getenv(key); s != "" {
			if d, err := time.ParseDuration(s); err == nil {
				*dst = d
			}
		}
	}
	setDur(&cfg.LLMTimeout, "LLM_TIMEOUT")
	setDur(&cfg.CacheMaxAge, "CACHE_MAX_AGE")

	setBool := func(dst *bool, key string) {
		if *dst {
			return
		}
		if v, ok := envBool(key); ok {
			*dst = v
		}
	}
	setBool(&cfg.DisableTraces, "DISABLE_TRACES")
	setBool(&cfg.CacheClear, "CACHE_CLEAR")
	setBool(&cfg.CacheStrictPerms, "CACHE_STRICT_PERMS")
	setBool(&cfg.LLMCacheOnly, "LLM_CACHE_ONLY")
	setBool(&cfg.Verbose, "VERBOSE")
}

// ApplyDefaults fills remaining zero fields with built-in defaults.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.StaticDir == "" {
		cfg.StaticDir = DefaultStaticDir
	}
	if cfg.TracesDir == "" {
		cfg.TracesDir = DefaultTracesDir
	}
	if cfg.LLMModel == "" {
		cfg.LLMModel = DefaultModel
	}
	if cfg.LLMTimeout == 0 {
		cfg.LLMTimeout = DefaultTimeout
	}
}
