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

	"github.com/nennneko5787/novelist-ai/internal/config"
	"github.com/nennneko5787/novelist-ai/internal/handler"
	novelModel "github.com/nennneko5787/novelist-ai/internal/model/novel"
	"github.com/nennneko5787/novelist-ai/internal/service/ai"
	novelservice "github.com/nennneko5787/novelist-ai/internal/service/novel"
	"github.com/nennneko5787/novelist-ai/internal/storage/memory"
	"github.com/nennneko5787/novelist-ai/internal/storage/postgres"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	store, cleanup, err := newStore(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("failed to initialize novel store: %v", err)
	}
	defer cleanup()

	if !cfg.AI.Enabled() {
		log.Fatal("model credentials missing: set ARK_API_KEY (or AK/SK pair) and Model")
	}
	generator, err := ai.NewService(ctx, cfg.AI)
	if err != nil {
		log.Fatalf("failed to initialize generator: %v", err)
	}
	log.Println("generator initialized successfully")

	engine := novelservice.NewEngine(store, generator, novelservice.Config{
		ChunkSize:      cfg.Novel.ChunkSize,
		CreateAttempts: cfg.Novel.CreateAttempts,
	})

	router := handler.NewRouter(engine)
	startServer(ctx, cfg.Server, router)
}

// newStore picks the Postgres store when a DSN is configured and falls
// back to the in-memory store otherwise.
func newStore(ctx context.Context, cfg config.DatabaseConfig) (novelModel.Store, func(), error) {
	if !cfg.Enabled() {
		log.Println("DATABASE_URL not set, using in-memory novel store")
		return memory.NewStore(), func() {}, nil
	}

	pool, err := postgres.Connect(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	if !cfg.SkipMigrations {
		if err := postgres.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, err
		}
	}

	log.Println("using postgres novel store")
	return postgres.New(pool), pool.Close, nil
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	srv := &http.Server{
		Addr:              serverCfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("novelist api listening on %s", serverCfg.Addr)
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
