package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/nbcassistant/backend/internal/auth"
	"github.com/nbcassistant/backend/internal/config"
	"github.com/nbcassistant/backend/internal/engine"
	"github.com/nbcassistant/backend/internal/handler"
	queryService "github.com/nbcassistant/backend/internal/service/query"
	"github.com/nbcassistant/backend/internal/store"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	conversationStore, err := newStore(cfg.Store)
	if err != nil {
		log.Fatalf("failed to open conversation store: %v", err)
	}

	answerEngine, err := engine.NewExecEngine(cfg.Engine.Command, cfg.Engine.MaxOutputBytes, cfg.Engine.Timeout)
	if err != nil {
		log.Fatalf("failed to configure answer engine: %v", err)
	}
	if cfg.Engine.Timeout == 0 {
		log.Println("warning: ENGINE_TIMEOUT_SECONDS=0, a hung engine call will block its request indefinitely")
	}

	provider := auth.NewJWTProvider(cfg.Auth.JWTSecret)
	gateway := auth.NewGateway(provider)
	querySvc := queryService.NewService(answerEngine, conversationStore)

	if cfg.Auth.LoginEnabled() {
		log.Printf("login endpoint enabled for configured account")
	} else {
		log.Println("login credentials not configured, /api/login disabled")
	}

	router := handler.NewRouter(gateway, provider, querySvc, cfg.Auth)

	startServer(ctx, cfg.Server, router)
}

func newStore(cfg config.StoreConfig) (store.Store, error) {
	if cfg.SQLitePath == "" {
		log.Println("SQLITE_PATH not set, conversation history is in-memory only")
		return store.NewMemory(), nil
	}

	s, err := store.NewSQLite(cfg.SQLitePath)
	if err != nil {
		return nil, err
	}
	log.Printf("[store] sqlite conversation log at %s", cfg.SQLitePath)
	return s, nil
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("assistant backend listening on %s", addr)
	if err := runServer(ctx, srv); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
