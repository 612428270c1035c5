package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/recipechat/internal/cache"
	"github.com/hyperifyio/recipechat/internal/chat"
	"github.com/hyperifyio/recipechat/internal/llm"
	"github.com/hyperifyio/recipechat/internal/trace"
)

// Responder runs one conversation turn. *chat.Handler implements it.
type Responder interface {
	Respond(ctx context.Context, history []chat.Message) ([]chat.Message, error)
}

// App wires the chat handler, trace store and HTTP server together.
type App struct {
	cfg     Config
	chat    Responder
	traces  *trace.Store
	now     func() time.Time
	handler http.Handler
}

// New builds the application from a resolved Config. cfg.SystemPrompt must
// already be rendered (see BuildSystemPrompt).
func New(ctx context.Context, cfg Config) (*App, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	provider := llm.NewOpenAIProvider(llm.Options{
		BaseURL:    cfg.LLMBaseURL,
		APIKey:     cfg.LLMAPIKey,
		HTTPClient: newLLMHTTPClient(cfg.LLMTimeout),
	})

	h := &chat.Handler{
		Client:       provider,
		Model:        cfg.LLMModel,
		SystemPrompt: cfg.SystemPrompt,
		CacheOnly:    cfg.LLMCacheOnly,
	}
	if cfg.CacheDir != "" {
		if cfg.CacheClear {
			if err := cache.ClearDir(cfg.CacheDir); err != nil {
				log.Warn().Err(err).Str("dir", cfg.CacheDir).Msg("cache clear failed")
			}
		}
		if cfg.CacheMaxAge > 0 {
			if n, err := cache.PurgeByAge(cfg.CacheDir, cfg.CacheMaxAge); err != nil {
				log.Warn().Err(err).Msg("cache purge failed")
			} else if n > 0 {
				log.Info().Int("removed", n).Msg("purged expired replies")
			}
		}
		h.Cache = &cache.ReplyCache{Dir: cfg.CacheDir, StrictPerms: cfg.CacheStrictPerms}
	}

	if !cfg.LLMCacheOnly {
		llm.Preflight(ctx, provider, cfg.LLMModel)
	}
	return newWithResponder(cfg, h), nil
}

func newWithResponder(cfg Config, r Responder) *App {
	a := &App{cfg: cfg, chat: r, now: time.Now}
	if !cfg.DisableTraces && cfg.TracesDir != "" {
		a.traces = &trace.Store{Dir: cfg.TracesDir}
	}
	a.handler = a.routes()
	return a
}

// Handler exposes the HTTP handler, mainly for tests.
func (a *App) Handler() http.Handler { return a.handler }

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (a *App) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              a.cfg.Addr,
		Handler:           a.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", a.cfg.Addr).Str("model", a.cfg.LLMModel).Msg("recipe chat listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info().Msg("server stopped")
	return nil
}
