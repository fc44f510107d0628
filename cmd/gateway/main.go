// Coach gateway entry point.
//
// USAGE:
//
//	gateway [options]          start the HTTP gateway
//	gateway setup              interactively write a .env with credentials
//
// Options:
//
//	-c, --config PATH   YAML config file
//	-p, --port PORT     listen port (overrides config)
//	-d, --debug         verbose logging
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/term"

	"github.com/train-anywhere/coach-gateway/internal/config"
	"github.com/train-anywhere/coach-gateway/internal/gateway"
)

func main() {
	args := os.Args[1:]
	if len(args) > 0 && args[0] == "setup" {
		runSetupCommand()
		return
	}

	var (
		configFlag string
		portFlag   string
		debugFlag  bool
	)

	i := 0
	for i < len(args) {
		switch args[i] {
		case "-h", "--help":
			printHelp()
			return
		case "-c", "--config":
			if i+1 >= len(args) {
				fmt.Fprintln(os.Stderr, "Error: --config requires a value")
				os.Exit(1)
			}
			configFlag = args[i+1]
			i += 2
		case "-p", "--port":
			if i+1 >= len(args) {
				fmt.Fprintln(os.Stderr, "Error: --port requires a value")
				os.Exit(1)
			}
			portFlag = args[i+1]
			i += 2
		case "-d", "--debug":
			debugFlag = true
			i++
		default:
			fmt.Fprintf(os.Stderr, "Error: unknown option: %s\n", args[i])
			os.Exit(1)
		}
	}

	loadEnvFiles()
	initLogging(debugFlag)

	cfg, err := config.Load(configFlag)
	if err != nil {
		log.Fatal().Err(err).Msg("configuration error")
	}
	if portFlag != "" {
		port, err := strconv.Atoi(portFlag)
		if err != nil || port <= 0 || port > 65535 {
			log.Fatal().Str("port", portFlag).Msg("invalid port")
		}
		cfg.Server.Port = port
	}

	gw := gateway.New(cfg)
	defer func() { _ = gw.Close() }()

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      gw.Handler(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("gateway listening")
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("shutdown error")
		}
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}
}

// loadEnvFiles loads .env files without overriding the real environment.
func loadEnvFiles() {
	for _, f := range []string{".env.local", ".env"} {
		if _, err := os.Stat(f); err == nil {
			_ = godotenv.Load(f)
		}
	}
}

// initLogging configures the global zerolog logger. Console output when
// attached to a terminal, JSON otherwise.
func initLogging(debug bool) {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)

	if term.IsTerminal(int(os.Stdout.Fd())) {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
}

func printHelp() {
	help := strings.TrimSpace(`
coach-gateway - AI fitness content gateway

Usage:
  gateway [options]    start the HTTP gateway
  gateway setup        interactively write a .env with credentials

Options:
  -c, --config PATH    YAML config file
  -p, --port PORT      listen port (overrides config and PORT env)
  -d, --debug          verbose logging
  -h, --help           show this help
`)
	fmt.Println(help)
}
