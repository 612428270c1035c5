package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	yaml "gopkg.in/yaml.v3"

	"github.com/hyperifyio/recipechat/internal/prompt"
)

// FileConfig represents the single-file configuration schema.
type FileConfig struct {
	Server struct {
		Addr          string `yaml:"addr" json:"addr"`
		StaticDir     string `yaml:"staticDir" json:"staticDir"`
		TracesDir     string `yaml:"tracesDir" json:"tracesDir"`
		DisableTraces bool   `yaml:"disableTraces" json:"disableTraces"`
	} `yaml:"server" json:"server"`

	LLM struct {
		BaseURL string        `yaml:"base" json:"base"`
		Model   string        `yaml:"model" json:"model"`
		APIKey  string        `yaml:"key" json:"key"`
		Timeout time.Duration `yaml:"timeout" json:"timeout"`
	} `yaml:"llm" json:"llm"`

	Prompt struct {
		Country    string `yaml:"country" json:"country"`
		System     string `yaml:"system" json:"system"`
		SystemFile string `yaml:"systemFile" json:"systemFile"`
	} `yaml:"prompt" json:"prompt"`

	Cache struct {
		Dir         string        `yaml:"dir" json:"dir"`
		MaxAge      time.Duration `yaml:"maxAge" json:"maxAge"`
		Clear       bool          `yaml:"clear" json:"clear"`
		StrictPerms bool          `yaml:"strictPerms" json:"strictPerms"`
		Only        bool          `yaml:"only" json:"only"`
	} `yaml:"cache" json:"cache"`

	Verbose bool `yaml:"verbose" json:"verbose"`
}

// LoadConfigFile reads YAML or JSON into FileConfig.
func LoadConfigFile(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	switch ext := filepath.Ext(path); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse yaml: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse json: %w", err)
		}
	default:
		// Try YAML then JSON
		if err := yaml.Unmarshal(b, &fc); err != nil {
			if jerr := json.Unmarshal(b, &fc); jerr != nil {
				return fc, fmt.Errorf("parse config: %v (yaml) / %v (json)", err, jerr)
			}
		}
	}
	return fc, nil
}

// ApplyFileConfig overlays values from fc into cfg for any fields that are
// still unset. Flags and env are applied first so they keep precedence.
func ApplyFileConfig(cfg *Config, fc FileConfig) {
	if cfg == nil {
		return
	}
	setStr := func(dst *string, v string) {
		if *dst == "" && v != "" {
			*dst = v
		}
	}
	setStr(&cfg.Addr, fc.Server.Addr)
	setStr(&cfg.StaticDir, fc.Server.StaticDir)
	setStr(&cfg.TracesDir, fc.Server.TracesDir)
	if !cfg.DisableTraces && fc.Server.DisableTraces {
		cfg.DisableTraces = true
	}

	setStr(&cfg.LLMBaseURL, fc.LLM.BaseURL)
	setStr(&cfg.LLMModel, fc.LLM.Model)
	setStr(&cfg.LLMAPIKey, fc.LLM.APIKey)
	if cfg.LLMTimeout == 0 && fc.LLM.Timeout > 0 {
		cfg.LLMTimeout = fc.LLM.Timeout
	}

	setStr(&cfg.Country, fc.Prompt.Country)
	setStr(&cfg.SystemPromptTemplate, fc.Prompt.System)
	setStr(&cfg.SystemPromptFile, fc.Prompt.SystemFile)

	setStr(&cfg.CacheDir, fc.Cache.Dir)
	if cfg.CacheMaxAge == 0 && fc.Cache.MaxAge > 0 {
		cfg.CacheMaxAge = fc.Cache.MaxAge
	}
	if !cfg.CacheClear && fc.Cache.Clear {
		cfg.CacheClear = true
	}
	if !cfg.CacheStrictPerms && fc.Cache.StrictPerms {
		cfg.CacheStrictPerms = true
	}
	if !cfg.LLMCacheOnly && fc.Cache.Only {
		cfg.LLMCacheOnly = true
	}
	if !cfg.Verbose && fc.Verbose {
		cfg.Verbose = true
	}
}

// ValidateConfig performs minimal validation for required settings.
func ValidateConfig(cfg Config) error {
	if strings.TrimSpace(cfg.Addr) == "" {
		return errors.New("config: listen address is required")
	}
	if strings.TrimSpace(cfg.LLMModel) == "" {
		return errors.New("config: llm.model is required (or set MODEL_NAME)")
	}
	if cfg.LLMCacheOnly && strings.TrimSpace(cfg.CacheDir) == "" {
		return errors.New("config: cache-only mode requires cache.dir")
	}
	if cfg.LLMTimeout < 0 || cfg.CacheMaxAge < 0 {
		return errors.New("config: negative durations are not allowed")
	}
	return nil
}

// BuildSystemPrompt renders the system prompt once for the given time.
// A prompt file wins over an inline template, which wins over the built-in
// recipe prompt.
func BuildSystemPrompt(cfg Config, now time.Time) (string, error) {
	tmpl := prompt.DefaultTemplate
	switch {
	case strings.TrimSpace(cfg.SystemPromptFile) != "":
		b, err := os.ReadFile(cfg.SystemPromptFile)
		if err != nil {
			return "", fmt.Errorf("read system prompt file: %w", err)
		}
		tmpl = string(b)
	case strings.TrimSpace(cfg.SystemPromptTemplate) != "":
		tmpl = cfg.SystemPromptTemplate
	}
	return prompt.Render(tmpl, now, cfg.Country)
}
