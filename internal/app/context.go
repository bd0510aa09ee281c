package app

import (
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/oggyb/spark-core/internal/cache"
	"github.com/oggyb/spark-core/internal/config"
)

// AppContext holds shared dependencies (DB, Redis, Logger, Config, Clock)
type AppContext struct {
	DB         *gorm.DB
	RedisCache *cache.RedisCache
	Logger     *slog.Logger
	Config     *config.Config
	// Now is the service clock; tests pin it to cross day boundaries.
	Now func() time.Time
}

// New creates a new AppContext
func New(db *gorm.DB, rdb *cache.RedisCache, logger *slog.Logger, cfg *config.Config) *AppContext {
	if cfg == nil {
		cfg = config.New()
	}
	return &AppContext{
		DB:         db,
		RedisCache: rdb,
		Logger:     logger,
		Config:     cfg,
		Now:        func() time.Time { return time.Now().UTC() },
	}
}
