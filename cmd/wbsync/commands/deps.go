package commands

import (
	"fmt"

	"github.com/sellerstats/wbsync/internal/advstats"
	"github.com/sellerstats/wbsync/internal/convrate"
	"github.com/sellerstats/wbsync/internal/products"
	"github.com/sellerstats/wbsync/internal/wbapi"
	"github.com/sellerstats/wbsync/pkg/config"
	"github.com/sellerstats/wbsync/pkg/database"
	"github.com/sellerstats/wbsync/pkg/logger"
	"github.com/sellerstats/wbsync/pkg/redis"
)

// deps holds the shared dependency graph of the CLI commands.
type deps struct {
	cfg   *config.Config
	log   *logger.Logger
	db    *database.DB
	redis *redis.Client
	wb    *wbapi.Client
}

// initDeps builds the full dependency graph. Every command closes it with
// deps.close().
func initDeps() (*deps, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if verbose {
		cfg.LogLevel = "debug"
	}
	log := logger.New(cfg)

	db, err := database.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	rdb, err := redis.New(cfg)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	limiter := redis.NewRateLimiter(rdb, "wbsync")
	wb := wbapi.NewClient(cfg, log, limiter)

	return &deps{
		cfg:   cfg,
		log:   log,
		db:    db,
		redis: rdb,
		wb:    wb,
	}, nil
}

func (d *deps) close() {
	d.db.Close()
	if err := d.redis.Close(); err != nil {
		d.log.WithError(err).Warn("redis close failed")
	}
}

// advPipeline wires the advertising stats pipeline.
func (d *deps) advPipeline(useSQLAggregation bool) *advstats.Pipeline {
	repo := advstats.NewRepository(d.db.Pool)
	cache := redis.NewCache(d.redis, "wbsync")

	memory := advstats.NewMemoryAggregator(d.db.Pool)

	var agg advstats.ParamsAggregator = memory
	if useSQLAggregation {
		agg = advstats.NewFallbackAggregator(
			advstats.NewSQLAggregator(d.db.Pool), memory, d.log)
	}

	return advstats.NewPipeline(d.wb, repo, agg, cache, d.log, d.cfg)
}

// crPipeline wires the conversion rate pipeline.
func (d *deps) crPipeline() *convrate.Pipeline {
	repo := convrate.NewRepository(d.db.Pool)
	return convrate.NewPipeline(d.wb, repo, d.log, d.cfg.Location())
}

// productsPipeline wires the product catalog pipeline.
func (d *deps) productsPipeline() *products.Pipeline {
	repo := products.NewRepository(d.db.Pool)
	cache := redis.NewCache(d.redis, "wbsync")
	return products.NewPipeline(d.wb, repo, cache, d.log, d.cfg)
}
