package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/time/rate"

	"rednote/internal/http/handlers"
	httpapi "rednote/internal/http/httpapi"
	"rednote/internal/infra"
	"rednote/internal/pipeline"
	"rednote/internal/prompt"
	"rednote/internal/providers/image"
	"rednote/internal/providers/llm"
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	// One shared limiter keeps the two upstream providers under a single
	// outbound budget.
	limiter := rate.NewLimiter(rate.Limit(cfg.OutboundPerSec), 1)

	gen := pipeline.New(pipeline.Options{
		Loader: prompt.NewLoader(cfg.PromptDir),
		Chat:   llm.NewClient(nil, limiter),
		Image:  image.NewClient(nil, limiter),
		Logger: logger,
	})

	app := handlers.NewApp(gen, logger)
	router := httpapi.NewRouter(app, cfg)
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on %s", server.Addr())
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
