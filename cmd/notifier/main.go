package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/samuelwildary2025/aimerc-dashboard3/internal/notify"
	"github.com/samuelwildary2025/aimerc-dashboard3/internal/worker"
	"github.com/samuelwildary2025/aimerc-dashboard3/pkg/config"
	"github.com/samuelwildary2025/aimerc-dashboard3/pkg/lmstfy"
	"github.com/samuelwildary2025/aimerc-dashboard3/pkg/logger"
)

var (
	configPath = flag.String("config", "./config/painel.yaml", "path to the config file")
)

func main() {
	flag.Parse()

	log.Println("========================================")
	log.Println("  Notifier Starting...")
	log.Println("========================================")

	// 1. config
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.ValidateWorker(); err != nil {
		log.Fatalf("Config validation failed: %v", err)
	}

	log.Printf("Config loaded: %s, env: %s, log_level: %s\n", cfg.App.Name, cfg.App.Env, cfg.App.LogLevel)

	// 2. logger
	zapLogger, err := logger.NewZapLogger(cfg.App.LogLevel)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer zapLogger.Sync()

	// 3. queue and gateway
	client, err := lmstfy.NewClient(cfg.Lmstfy.Host, cfg.Lmstfy.Port, cfg.Lmstfy.Namespace, cfg.Lmstfy.Token)
	if err != nil {
		log.Fatalf("Failed to create lmstfy client: %v", err)
	}
	gateway := notify.NewHTTPGateway(cfg.Notifier.BaseURL, cfg.Notifier.Timeout)

	// 4. manager
	mgr := worker.NewManagerInstance(cfg, client, gateway, zapLogger)
	go func() {
		if err := mgr.Start(); err != nil {
			log.Fatalf("Manager start failed: %v", err)
		}
	}()

	log.Println("Notifier started. Press Ctrl+C to shutdown.")

	// 5. wait for a signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh

	log.Printf("Received signal: %v, shutting down...\n", sig)
	mgr.Shutdown()
	log.Println("Notifier exited gracefully")
}
