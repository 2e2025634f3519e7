// Command kwserve exposes keyphrase extraction as a JSON REST API.
//
// Endpoints:
//
//	POST /api/disambiguate        body: {"sentence":[token...]}
//	POST /api/extract             body: document
//	GET  /api/reports[?source=&limit=]
//	GET  /api/reports/{id}
//	GET  /api/phrases[?k=]
//	GET  /api/transition?tag=<tag>&context=<two_back>_<one_back>
//	GET  /api/grammar[?prefix=<reversed key>]
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"

	"github.com/cognicore/keyphrase/pkg/keyphrase"
	"github.com/cognicore/keyphrase/pkg/keyphrase/config"
)

func main() {
	var (
		cfgPath     = flag.String("config", "", "YAML or TOML config file")
		addr        = flag.String("addr", "", "Listen address (overrides config)")
		transitions = flag.String("transitions", "", "Transition table (overrides config)")
		rules       = flag.String("rules", "", "Grammar rules (overrides config)")
		debug       = flag.Bool("d", false, "Debug logging")
	)
	flag.Parse()

	cfg := config.Default()
	if *cfgPath != "" {
		var err error
		if cfg, err = config.Load(*cfgPath); err != nil {
			log.Fatal("load config", "err", err)
		}
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	if *transitions != "" {
		cfg.Transitions = *transitions
	}
	if *rules != "" {
		cfg.Rules = *rules
	}
	if *debug {
		cfg.Log.Level = "debug"
	}

	logger := cfg.Logger("kwserve")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	engine, err := keyphrase.NewFromConfig(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("init engine", "err", err)
	}
	defer engine.Close()

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           newHandler(engine, logger, cfg.Server.AllowedOrigins),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown", "err", err)
		}
	}()

	logger.Info("listening", "addr", cfg.Server.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server error", "err", err)
		return
	}
	logger.Info("stopped")
}
