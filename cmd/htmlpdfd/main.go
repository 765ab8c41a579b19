// Command htmlpdfd serves the HTML→PDF conversion API.
//
// Configuration comes from an optional TOML file named by the
// HTMLPDFD_CONFIG environment variable; PORT overrides the listen port.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	htmlpdf "github.com/porticus-lab/htmlpdf-server"
	"github.com/porticus-lab/htmlpdf-server/internal/config"
	"github.com/porticus-lab/htmlpdf-server/internal/server"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	log := zerolog.New(os.Stderr).With().Timestamp().Logger()

	if err := run(ctx, log); err != nil {
		log.Fatal().Err(err).Msg("htmlpdfd failed")
	}
}

func run(ctx context.Context, log zerolog.Logger) error {
	cfg, err := config.Load(os.Getenv("HTMLPDFD_CONFIG"))
	if err != nil {
		return err
	}

	opts := []htmlpdf.Option{
		htmlpdf.WithTimeout(cfg.FetchTimeout()),
		htmlpdf.WithRenderTimeout(cfg.RenderTimeout()),
		htmlpdf.WithSettleDelay(cfg.SettleDelay()),
		htmlpdf.WithPoolSize(cfg.Chrome.PoolSize),
	}
	if cfg.Chrome.Path != "" {
		opts = append(opts, htmlpdf.WithChromePath(cfg.Chrome.Path))
	}
	if cfg.Chrome.NoSandbox {
		opts = append(opts, htmlpdf.WithNoSandbox())
	}
	if cfg.Chrome.AutoDownload {
		opts = append(opts, htmlpdf.WithAutoDownload())
	}

	conv, err := htmlpdf.NewConverter(opts...)
	if err != nil {
		return err
	}
	defer conv.Close()

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: server.New(conv, log).Router(),
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Int("port", cfg.Port).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
