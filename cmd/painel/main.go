package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "time/tzdata"

	"github.com/gin-gonic/gin"

	"github.com/samuelwildary2025/aimerc-dashboard3/internal/poller"
	"github.com/samuelwildary2025/aimerc-dashboard3/pkg/config"
	"github.com/samuelwildary2025/aimerc-dashboard3/pkg/logger"
)

var (
	configPath = flag.String("config", "./config/painel.yaml", "path to the config file")
)

func main() {
	flag.Parse()

	// 1. config
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Config validation failed: %v", err)
	}
	if cfg.App.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	// 2. logger
	zapLogger, err := logger.NewZapLogger(cfg.App.LogLevel)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer zapLogger.Sync()

	// 3. app
	app, cleanup, err := InitializeApp(cfg, zapLogger)
	if err != nil {
		log.Fatalf("Failed to initialize app: %v", err)
	}
	defer cleanup()

	// 4. poller
	if err := app.Poller.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start poller: %v", err)
	}

	// 5. HTTP server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	server := &http.Server{
		Addr:    addr,
		Handler: app.Engine,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		log.Printf("Starting HTTP server on %s", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrChan <- err
		}
	}()

	// 6. graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigChan:
		log.Println("Received shutdown signal, gracefully shutting down...")
	case err := <-serverErrChan:
		log.Printf("HTTP server error: %v", err)
	}
	gracefulShutdown(server, app.Poller)

	log.Println("Application stopped")
}

func gracefulShutdown(server *http.Server, p *poller.Poller) {
	// 1. stop polling and let in-flight cycles finish
	log.Println("Stopping poller...")
	p.Stop()
	p.Wait()

	// 2. stop HTTP
	log.Println("Stopping HTTP server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	} else {
		log.Println("HTTP server stopped gracefully")
	}
}
