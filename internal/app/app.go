package app

import (
	"context"
	"fmt"
	"time"

	"ventas/internal/config"
	"ventas/internal/notify"
	"ventas/internal/repo"
	"ventas/internal/scheduler"
	"ventas/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// App wires the process-wide services: built once at startup, torn down at
// shutdown, passed explicitly to handlers and the scheduler.
type App struct {
	cfg      config.Config
	logger   *zap.Logger
	db       *pgxpool.Pool
	redis    *redis.Client
	notifier *notify.Telegram
	sched    *scheduler.Scheduler
	router   *gin.Engine
}

func New(cfg config.Config, logger *zap.Logger) (*App, error) {
	a := &App{cfg: cfg, logger: logger}

	db, err := newPostgres(cfg.PG.DSN)
	if err != nil {
		return nil, err
	}
	a.db = db

	rdb, err := newRedis(cfg.Redis)
	if err != nil {
		db.Close()
		return nil, err
	}
	a.redis = rdb

	if err := runMigrations(cfg.PG.DSN, "./migrations"); err != nil {
		a.close()
		return nil, err
	}

	users := service.NewUserService(repo.NewPGUserRepo(db))
	sales := service.NewSaleService(repo.NewPGSaleRepo(db), logger)

	if err := seedUsers(context.Background(), repo.NewPGUserRepo(db), logger); err != nil {
		a.close()
		return nil, err
	}

	a.notifier = notify.NewTelegram(cfg.Telegram.Token, cfg.Telegram.ChatIDList(), logger)

	loc, err := time.LoadLocation(cfg.Alert.Timezone)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("load timezone: %w", err)
	}
	a.sched = scheduler.New(sales, a.notifier, loc, cfg.Alert.Hour, logger)

	router, err := newRouter(cfg, rdb, users, sales, a.sched, logger)
	if err != nil {
		a.close()
		return nil, err
	}
	a.router = router
	return a, nil
}

func (a *App) Router() *gin.Engine { return a.router }

// Scheduler returns the expiration scheduler; the caller owns its goroutine.
func (a *App) Scheduler() *scheduler.Scheduler { return a.sched }

func (a *App) Close(ctx context.Context) error {
	_ = ctx
	a.close()
	return nil
}

func (a *App) close() {
	if a.notifier != nil {
		_ = a.notifier.Close()
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if a.db != nil {
		a.db.Close()
	}
}

func newPostgres(dsn string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("pg parse config: %w", err)
	}
	cfg.MaxConns = 10
	cfg.MinConns = 2
	cfg.MaxConnIdleTime = 5 * time.Minute
	cfg.MaxConnLifetime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(context.Background(), cfg)
	if err != nil {
		return nil, fmt.Errorf("pg connect: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pg ping: %w", err)
	}

	return pool, nil
}

func newRedis(cfg config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return rdb, nil
}

func runMigrations(dsn string, migrationsDir string) error {
	db, err := goose.OpenDBWithDriver("pgx", dsn)
	if err != nil {
		return fmt.Errorf("goose open db: %w", err)
	}
	defer db.Close()

	if err := goose.Up(db, migrationsDir); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	return nil
}

// seedUsers creates the two bootstrap accounts on a first run against an
// empty users table. The well-known credentials reproduce the system being
// replaced; change them immediately in any real deployment.
func seedUsers(ctx context.Context, users repo.UserRepo, logger *zap.Logger) error {
	n, err := users.Count(ctx)
	if err != nil {
		return fmt.Errorf("count users: %w", err)
	}
	if n > 0 {
		return nil
	}
	for _, seed := range []struct {
		username string
		isAdmin  bool
	}{
		{"Luis", true},
		{"Johan", false},
	} {
		hash, err := bcrypt.GenerateFromPassword([]byte("1234"), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		if _, err := users.Create(ctx, seed.username, string(hash), seed.isAdmin); err != nil {
			return fmt.Errorf("seed user %s: %w", seed.username, err)
		}
	}
	logger.Warn("seeded default accounts with well-known credentials; change the passwords now",
		zap.Strings("usernames", []string{"Luis", "Johan"}))
	return nil
}
