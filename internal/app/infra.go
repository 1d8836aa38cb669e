package app

import (
	"context"
	"fmt"
	"time"

	"github.com/Freeeeeet/intake_bot/internal/config"
	"github.com/Freeeeeet/intake_bot/internal/controller/state"
	"github.com/Freeeeeet/intake_bot/internal/conversation"
	"github.com/Freeeeeet/intake_bot/internal/model"
	"github.com/Freeeeeet/intake_bot/internal/repository"
	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const redisPingTimeout = 2 * time.Second

// Infra внешние ресурсы процесса; Close освобождает их в обратном порядке
type Infra struct {
	Table    repository.Table
	Sessions conversation.SessionRepository

	closers []func()
}

// NewInfra открывает таблицу записей и хранилище сессий по конфигурации
func NewInfra(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Infra, error) {
	infra := &Infra{}

	table, err := infra.openTable(ctx, cfg, logger)
	if err != nil {
		infra.Close()
		return nil, err
	}
	infra.Table = table

	sessions, err := infra.openSessions(ctx, cfg, logger)
	if err != nil {
		infra.Close()
		return nil, err
	}
	infra.Sessions = sessions

	return infra, nil
}

func (i *Infra) openTable(ctx context.Context, cfg *config.Config, logger *zap.Logger) (repository.Table, error) {
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		pool, err := pgxpool.New(ctx, cfg.DBDSN)
		if err != nil {
			return nil, fmt.Errorf("create pgx pool: %w", err)
		}
		i.closers = append(i.closers, pool.Close)

		if err := pool.Ping(ctx); err != nil {
			return nil, fmt.Errorf("ping database: %w", err)
		}

		migrator, err := NewMigrator(pool, cfg.MigrationsDir, logger)
		if err != nil {
			return nil, err
		}
		defer migrator.Close()

		if err := migrator.Run(ctx); err != nil {
			return nil, err
		}

		logger.Info("Using postgres booking table", zap.String("sheet", cfg.SheetName))
		return repository.NewPGTable(pool, cfg.SheetName), nil

	case config.DriverMemory:
		logger.Warn("Using in-memory booking table, records are lost on restart")
		return repository.NewMemoryTable(), nil
	}

	logger.Info("Using xlsx booking table",
		zap.String("file", cfg.ExcelFile),
		zap.String("sheet", cfg.SheetName))
	return repository.NewXLSXTable(cfg.ExcelFile, cfg.SheetName, model.BookingStatusReserved, logger), nil
}

func (i *Infra) openSessions(ctx context.Context, cfg *config.Config, logger *zap.Logger) (conversation.SessionRepository, error) {
	if cfg.SessionStore != config.SessionsRedis {
		return state.NewManager(), nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	i.closers = append(i.closers, func() { _ = client.Close() })

	pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
	defer cancel()
	if _, err := client.Ping(pingCtx).Result(); err != nil {
		return nil, fmt.Errorf("ping redis %s: %w", cfg.RedisAddr, err)
	}

	logger.Info("Using redis session store", zap.String("addr", cfg.RedisAddr), zap.Int("db", cfg.RedisDB))
	return state.NewRedisStore(client), nil
}

// Close освобождает ресурсы
func (i *Infra) Close() {
	for j := len(i.closers) - 1; j >= 0; j-- {
		i.closers[j]()
	}
	i.closers = nil
}
