// codeassist serves a web UI and JSON API that turn (job, parameters,
// specifications) requests into LLM prompts and return the model's answer.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/term"

	"codeassist/pkg/agent"
	"codeassist/pkg/agent/middleware/metrics"
	"codeassist/pkg/assist"
	"codeassist/pkg/config"
	"codeassist/pkg/logx"
	metricsquery "codeassist/pkg/metrics"
	"codeassist/pkg/version"
	"codeassist/pkg/webui"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configPath  string
		listenAddr  string
		debug       bool
		showVersion bool
	)
	flag.StringVar(&configPath, "config", "", "Path to YAML config file")
	flag.StringVar(&listenAddr, "listen", "", "Listen address (overrides config)")
	flag.BoolVar(&debug, "debug", false, "Enable debug logging")
	flag.BoolVar(&showVersion, "version", false, "Print version and exit")
	flag.Parse()

	if showVersion {
		fmt.Printf("codeassist %s (commit %s, built %s)\n", version.Version, version.Commit, version.Date)
		return nil
	}

	if debug {
		logx.SetDebug(true)
	}

	// API keys may live in a local .env during development.
	_ = godotenv.Load()

	cfg, err := config.LoadFromFile(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if listenAddr != "" {
		cfg.ListenAddr = listenAddr
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	if err := unlockSecrets(); err != nil {
		return err
	}

	logger := logx.NewLogger("main")
	logger.Info("codeassist %s starting on %s (default model %s)", version.Version, cfg.ListenAddr, cfg.DefaultModel)

	recorder := metrics.NewPrometheusRecorder(nil)
	factory := agent.NewClientFactory(cfg.Retry, recorder)
	service := assist.NewService(factory, cfg)

	var usage *metricsquery.QueryService
	if cfg.PrometheusURL != "" {
		usage, err = metricsquery.NewQueryService(cfg.PrometheusURL)
		if err != nil {
			return fmt.Errorf("failed to create usage query service: %w", err)
		}
		logger.Info("usage queries backed by Prometheus at %s", cfg.PrometheusURL)
	}

	mux := http.NewServeMux()
	webui.NewServer(service, cfg, usage).RegisterRoutes(mux)

	server := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case sig := <-sigCh:
		logger.Info("Received signal %v, shutting down", sig)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}

	logger.Info("shutdown complete")
	return nil
}

// unlockSecrets decrypts the local secrets file when one exists. The
// passphrase comes from CODEASSIST_PASSWORD or an interactive prompt.
// Without a secrets file the provider keys come straight from the
// environment.
func unlockSecrets() error {
	workDir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to determine working directory: %w", err)
	}
	if !config.SecretsFileExists(workDir) {
		return nil
	}

	password := os.Getenv(config.EnvWebUIPassword)
	if password == "" {
		fmt.Fprint(os.Stderr, "Secrets file passphrase: ")
		raw, err := term.ReadPassword(syscall.Stdin)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return fmt.Errorf("failed to read passphrase: %w", err)
		}
		password = string(raw)
	}

	secrets, err := config.DecryptSecretsFile(workDir, password)
	if err != nil {
		return fmt.Errorf("failed to decrypt secrets file: %w", err)
	}
	config.SetDecryptedSecrets(secrets)
	return nil
}
