package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/recipechat/internal/app"
)

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, showVersion, err := loadConfig(os.Args[1:], os.Stderr, time.Now())
	if err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		log.Fatal().Err(err).Msg("configuration")
	}
	if showVersion {
		fmt.Println(app.VersionString())
		return
	}
	if cfg.Verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := run(ctx, cfg); err != nil {
		log.Error().Err(err).Msg("run failed")
		os.Exit(1)
	}
}

// loadConfig resolves configuration once: dotenv files are loaded first and
// override the process environment, then flags > env > config file >
// defaults. The system prompt is rendered here for the given time.
func loadConfig(args []string, stderr io.Writer, now time.Time) (app.Config, bool, error) {
	fs := flag.NewFlagSet("recipechat", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var (
		cfg         app.Config
		envFiles    string
		configPath  string
		showVersion bool
	)
	fs.StringVar(&envFiles, "env", ".env", "Comma-separated dotenv files loaded at startup (override existing env)")
	fs.StringVar(&configPath, "config", "", "Optional YAML/JSON config file")
	fs.StringVar(&cfg.Addr, "addr", "", "HTTP listen address (env ADDR, default :8000)")
	fs.StringVar(&cfg.StaticDir, "static.dir", "", "Directory with the chat frontend (env STATIC_DIR)")
	fs.StringVar(&cfg.TracesDir, "traces.dir", "", "Directory for annotation traces (env TRACES_DIR)")
	fs.BoolVar(&cfg.DisableTraces, "traces.disable", false, "Do not write annotation traces")
	fs.StringVar(&cfg.LLMBaseURL, "llm.base", "", "OpenAI-compatible base URL (env LLM_BASE_URL)")
	fs.StringVar(&cfg.LLMModel, "llm.model", "", "Model name (env MODEL_NAME, default "+app.DefaultModel+")")
	fs.StringVar(&cfg.LLMAPIKey, "llm.key", "", "API key (env LLM_API_KEY or OPENAI_API_KEY)")
	fs.DurationVar(&cfg.LLMTimeout, "llm.timeout", 0, "Completion request timeout (env LLM_TIMEOUT)")
	fs.StringVar(&cfg.Country, "prompt.country", "", "Country for seasonal suggestions (env COUNTRY, default Spain)")
	fs.StringVar(&cfg.SystemPromptTemplate, "prompt.system", "", "Override system prompt template (inline)")
	fs.StringVar(&cfg.SystemPromptFile, "prompt.systemFile", "", "Path to file containing system prompt template")
	fs.StringVar(&cfg.CacheDir, "cache.dir", "", "Reply cache directory; empty disables caching")
	fs.DurationVar(&cfg.CacheMaxAge, "cache.maxAge", 0, "Purge cached replies older than this at startup")
	fs.BoolVar(&cfg.CacheClear, "cache.clear", false, "Clear reply cache at startup")
	fs.BoolVar(&cfg.CacheStrictPerms, "cache.strictPerms", false, "Restrict cache permissions (0700 dirs, 0600 files)")
	fs.BoolVar(&cfg.LLMCacheOnly, "cache.only", false, "Serve replies only from cache; never call the model")
	fs.BoolVar(&cfg.Verbose, "v", false, "Verbose logging")
	fs.BoolVar(&showVersion, "version", false, "Print version and exit")
	if err := fs.Parse(args); err != nil {
		return cfg, false, err
	}
	if showVersion {
		return cfg, true, nil
	}

	if err := app.LoadEnvFiles(strings.Split(envFiles, ",")...); err != nil {
		return cfg, false, fmt.Errorf("load env: %w", err)
	}
	app.ApplyEnvToConfig(&cfg)
	if strings.TrimSpace(configPath) != "" {
		fc, err := app.LoadConfigFile(configPath)
		if err != nil {
			return cfg, false, fmt.Errorf("load config file: %w", err)
		}
		app.ApplyFileConfig(&cfg, fc)
	}
	app.ApplyDefaults(&cfg)

	sp, err := app.BuildSystemPrompt(cfg, now)
	if err != nil {
		return cfg, false, err
	}
	cfg.SystemPrompt = sp
	return cfg, false, app.ValidateConfig(cfg)
}

func run(ctx context.Context, cfg app.Config) error {
	log.Info().Str("version", app.VersionString()).Str("model", cfg.LLMModel).Msg("starting recipechat")
	a, err := app.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("init app: %w", err)
	}
	return a.Run(ctx)
}
