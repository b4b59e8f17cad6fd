package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"github.com/Josh-Mantel/MCP-F1/internal/api/routes"
	"github.com/Josh-Mantel/MCP-F1/internal/auth"
	"github.com/Josh-Mantel/MCP-F1/internal/config"
	"github.com/Josh-Mantel/MCP-F1/internal/mcpserver"
	"github.com/Josh-Mantel/MCP-F1/internal/services"
	"github.com/Josh-Mantel/MCP-F1/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	config.LoadDotEnv()

	cfg, err := parseFlags(os.Args[1:], config.GetServerConfig(), os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	// stdout belongs to the MCP transport
	logger.Init(cfg.LogLevel, os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, os.Stdin, os.Stdout); err != nil {
		logger.Fatal(logger.APP, "Server exited: %v", err)
		os.Exit(1)
	}
}

// parseFlags applies command line overrides on top of the environment
func parseFlags(args []string, cfg config.ServerConfig, output io.Writer) (config.ServerConfig, error) {
	fs := flag.NewFlagSet("f1-mcp-server", flag.ContinueOnError)
	fs.SetOutput(output)

	fs.StringVar(&cfg.Mode, "mode", cfg.Mode, "server mode: mcp, http or both")
	fs.StringVar(&cfg.Host, "http-host", cfg.Host, "HTTP listen host")
	fs.IntVar(&cfg.Port, "http-port", cfg.Port, "HTTP listen port")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level: DEBUG, INFO, WARN or ERROR")

	if err := fs.Parse(args); err != nil {
		return cfg, err
	}
	if fs.NArg() > 0 {
		return cfg, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}

	cfg.Mode = strings.ToLower(cfg.Mode)
	if !config.ValidMode(cfg.Mode) {
		return cfg, fmt.Errorf("invalid mode %q: must be mcp, http or both", cfg.Mode)
	}
	if cfg.Port < 0 || cfg.Port > 65535 {
		return cfg, fmt.Errorf("invalid port %d", cfg.Port)
	}
	return cfg, nil
}

func setupRouter(svc *services.Services) *mux.Router {
	return routes.NewRouter(svc)
}

// run serves the configured surfaces until ctx is cancelled or one of them
// fails. In both mode, closing stdin stops the MCP side only.
func run(ctx context.Context, cfg config.ServerConfig, stdin io.Reader, stdout io.Writer) error {
	svc, err := services.InitializeServices(cfg.MetricsEnabled)
	if err != nil {
		return err
	}
	defer svc.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	errCh := make(chan error, 2)

	if cfg.ServesHTTP() {
		srv := &http.Server{
			Addr:              cfg.Addr(),
			Handler:           setupRouter(svc),
			ReadHeaderTimeout: 10 * time.Second,
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			logStartup(cfg, svc)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- fmt.Errorf("http server: %w", err)
			}
		}()

		wg.Add(1)
		go func() {
			defer wg.Done()
			<-ctx.Done()

			logger.Info(logger.APP, "Shutting down HTTP server")
			shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancelShutdown()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Error(logger.APP, "HTTP server shutdown failed: %v", err)
			}
		}()
	}

	if cfg.ServesMCP() {
		mcp := mcpserver.NewServer(svc.GetToolService(), svc.GetToolExecutor())

		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := mcp.Serve(ctx, stdin, stdout); err != nil {
				errCh <- fmt.Errorf("mcp server: %w", err)
				return
			}
			if !cfg.ServesHTTP() {
				cancel()
			}
		}()
	}

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-errCh:
	}
	cancel()
	wg.Wait()

	logger.Info(logger.APP, "Server stopped")
	return runErr
}

func logStartup(cfg config.ServerConfig, svc *services.Services) {
	client := svc.GetOAuthService().Client()
	base := cfg.PublicURL()

	logger.Info(logger.APP, "HTTP server listening on %s", cfg.Addr())
	logger.Info(logger.APP, "Authorization URL: %s", authorizationURL(base, client))
	logger.Info(logger.APP, "Stream endpoint: %s/f1/stream?year=<year>", base)
	logger.Info(logger.APP, "Client ID: %s", client.ID)
}

// authorizationURL is the link a user opens to start the code flow
func authorizationURL(base string, client config.ClientConfig) string {
	query := url.Values{
		"response_type": {auth.ResponseTypeCode},
		"client_id":     {client.ID},
		"redirect_uri":  {client.RedirectURI},
		"scope":         {strings.Join(client.Scopes, " ")},
		"state":         {"<state>"},
	}
	return base + "/authorize?" + query.Encode()
}
