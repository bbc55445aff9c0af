// Command fakeapi serves a stand-in for the chatbot and recommender backends
// so the terminal clients can be run locally.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"golang.org/x/term"

	"shelfchat/internal/fakeapi"
	"shelfchat/internal/logger"
)

func main() {
	_ = godotenv.Load(".env.local")

	addr := flag.String("addr", envOr("FAKEAPI_ADDR", ":8000"), "Listen address")
	catalogPath := flag.String("catalog", "", "JSON file of books (default: built-in sample)")
	rateLimit := flag.Float64("rate-limit", 10, "Requests per second per client IP (0 disables)")
	burst := flag.Int("burst", 20, "Rate limit burst")
	logLevel := flag.String("log-level", envOr("FAKEAPI_LOG_LEVEL", "info"), "Log level")
	logFormat := flag.String("log-format", "pretty", "Log format: pretty or json")
	flag.Parse()

	level := logger.ParseLevel(*logLevel)
	log := logger.New(logger.Config{
		Writer:  os.Stderr,
		Format:  *logFormat,
		Level:   level,
		NoColor: !term.IsTerminal(int(os.Stderr.Fd())),
	})

	if level > slog.LevelDebug {
		gin.SetMode(gin.ReleaseMode)
	}

	var catalog *fakeapi.Catalog
	if *catalogPath != "" {
		c, err := fakeapi.LoadCatalog(*catalogPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load catalog: %v\n", err)
			os.Exit(1)
		}
		catalog = c
	} else {
		catalog = fakeapi.SampleCatalog()
	}
	log.Info("catalog loaded", "books", len(catalog.Books()))

	router := fakeapi.NewRouter(fakeapi.Config{
		Catalog:   catalog,
		Logger:    log,
		RateLimit: *rateLimit,
		Burst:     *burst,
	})

	srv := &http.Server{
		Addr:              *addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("fakeapi listening", "addr", *addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("shutdown", "error", err)
	}
	log.Info("fakeapi stopped")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
