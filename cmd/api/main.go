package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/volume-club/reader-api/internal/adapters/httpapi"
	memaccountrepo "github.com/volume-club/reader-api/internal/adapters/memory/accountrepo"
	memchallenge "github.com/volume-club/reader-api/internal/adapters/memory/challengestore"
	"github.com/volume-club/reader-api/internal/adapters/notify"
	postgres "github.com/volume-club/reader-api/internal/adapters/postgres"
	pgaccountrepo "github.com/volume-club/reader-api/internal/adapters/postgres/accountrepo"
	redischallenge "github.com/volume-club/reader-api/internal/adapters/redis/challengestore"
	"github.com/volume-club/reader-api/internal/app/authflow"
	"github.com/volume-club/reader-api/internal/app/directory"
	"github.com/volume-club/reader-api/internal/app/subscriptions"
	platformclock "github.com/volume-club/reader-api/internal/platform/clock"
	"github.com/volume-club/reader-api/internal/platform/config"
	"github.com/volume-club/reader-api/internal/platform/logger"
	"github.com/volume-club/reader-api/internal/platform/otp"
	"github.com/volume-club/reader-api/internal/platform/token"
	accountrepoport "github.com/volume-club/reader-api/internal/ports/out/accountrepo"
	challengeport "github.com/volume-club/reader-api/internal/ports/out/challengestore"
	"github.com/volume-club/reader-api/internal/ports/out/verification"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.New(0).Fatal("invalid configuration", "error", err)
	}
	log := logger.New(cfg.LogLevel)

	clk := platformclock.NewSystemClock()

	var (
		accountRepo accountrepoport.Repository
		cleanup     func()
	)
	switch cfg.StorageBackend {
	case "postgres":
		ctx := context.Background()
		if err := postgres.Migrate(ctx, cfg.DatabaseURL); err != nil {
			log.Fatal("migrate database", "error", err)
		}
		pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, postgres.PoolOptions{})
		if err != nil {
			log.Fatal("open postgres pool", "error", err)
		}
		cleanup = pool.Close
		accountRepo = pgaccountrepo.NewRepo(pool)
	default:
		accountRepo = memaccountrepo.NewRepo()
	}
	if cleanup != nil {
		defer cleanup()
	}

	var codes challengeport.Store
	switch cfg.ChallengeBackend {
	case "redis":
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer rdb.Close()
		codes = redischallenge.NewStore(rdb)
	default:
		codes = memchallenge.NewStore()
	}

	var gen verification.Generator
	switch cfg.Code.Mode {
	case "static":
		// Local-dev shortcut: every challenge uses the same code.
		log.Warn("static verification codes enabled; do not run this in production")
		gen = otp.Fixed(cfg.Code.StaticValue)
	default:
		gen = otp.NewGenerator()
	}

	issuer := token.NewJWT(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.TTL, clk)

	dir := directory.NewService(accountRepo, clk)
	ledger := subscriptions.NewLedger(accountRepo)
	flow := authflow.NewService(dir, ledger, codes, gen, notify.NewLogSender(log), issuer, clk, log)
	flow.CodeTTL = cfg.Code.TTL

	handler := httpapi.NewRouter(httpapi.NewServer(flow), issuer)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	// Graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info("api listening", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("listen", "error", err)
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}
