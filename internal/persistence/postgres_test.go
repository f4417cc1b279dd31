package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/spec-kit/clinic-booking/internal/config"
)

func TestApplyPoolLimits(t *testing.T) {
	poolCfg, err := pgxpool.ParseConfig("postgres://clinic@localhost:5432/clinic")
	if err != nil {
		t.Fatalf("ParseConfig() error = %v", err)
	}
	applyPoolLimits(poolCfg, config.PostgresConfig{MaxConns: 12, MinConns: 3, ConnMaxIdleSec: 30})

	if poolCfg.MaxConns != 12 || poolCfg.MinConns != 3 {
		t.Fatalf("conns = %d/%d, want 12/3", poolCfg.MaxConns, poolCfg.MinConns)
	}
	if poolCfg.MaxConnIdleTime != 30*time.Second {
		t.Fatalf("idle = %v", poolCfg.MaxConnIdleTime)
	}
}

func TestNewPostgresRequiresDSN(t *testing.T) {
	if _, err := NewPostgres(context.Background(), config.PostgresConfig{}, zap.NewNop()); err == nil {
		t.Fatal("NewPostgres() error = nil without a DSN")
	}
}

func TestNewRedisDisabledWithoutAddr(t *testing.T) {
	if _, err := NewRedis(context.Background(), config.RedisConfig{}); err != ErrRedisDisabled {
		t.Fatalf("NewRedis() error = %v, want ErrRedisDisabled", err)
	}
}
