// Package bootstrap wires the storage backends and services shared by the
// HTTP server and the importer CLI.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/chemtalent/jobchain/config"
	"github.com/chemtalent/jobchain/internal/cache"
	"github.com/chemtalent/jobchain/internal/classify"
	"github.com/chemtalent/jobchain/internal/ingest"
	"github.com/chemtalent/jobchain/internal/lock"
	mongorepo "github.com/chemtalent/jobchain/internal/repositories/mongo"
	pgrepo "github.com/chemtalent/jobchain/internal/repositories/postgres"
	"github.com/chemtalent/jobchain/internal/services"
	"github.com/chemtalent/jobchain/internal/storage"
	"github.com/chemtalent/jobchain/internal/taxonomy"
)

const mergeLockTTL = 2 * time.Minute

// Core holds the wired services. Redis, Reports and Publisher are nil when
// their backend is not configured.
type Core struct {
	Cfg   config.App
	Rules *taxonomy.Rules
	Redis *redis.Client

	Ingest    services.IngestService
	Jobs      services.JobService
	Reports   services.ReportService
	Publisher services.Publisher
	Auth      services.AuthService
	Archive   services.ArchiveService

	closers []io.Closer
}

// New connects Postgres (required), Redis and Mongo (both optional) and
// builds the services on top of them.
func New(ctx context.Context, cfg config.App, log *logrus.Logger) (*Core, error) {
	rules, err := taxonomy.Load(cfg.RulesPath)
	if err != nil {
		return nil, fmt.Errorf("rules: %w", err)
	}

	if err := config.InitPostgres(); err != nil {
		return nil, fmt.Errorf("postgres: %w", err)
	}
	log.Info("PostgreSQL connected")
	if cfg.AutoMigrate {
		if err := pgrepo.AutoMigrate(config.PostgresDB); err != nil {
			return nil, fmt.Errorf("postgres migrate: %w", err)
		}
		log.Info("PostgreSQL schema migrated")
	}

	core := &Core{Cfg: cfg, Rules: rules}

	var (
		locker lock.Locker = lock.NewKeyedMutex()
		jcache cache.Cache
	)
	switch err := config.InitRedis(); {
	case err == nil:
		core.Redis = config.RedisClient
		locker = lock.NewRedisLocker(core.Redis, mergeLockTTL)
		jcache = cache.NewRedisCache(core.Redis)
		core.Publisher = services.NewRedisPublisher(core.Redis)
		log.Info("Redis connected")
	case errors.Is(err, config.ErrNotConfigured):
		log.Warn("Redis not configured: in-process merge lock, no listing cache, no live updates")
	default:
		return nil, fmt.Errorf("redis: %w", err)
	}

	switch err := config.InitMongo(); {
	case err == nil:
		if err := config.EnsureMongoIndexes(); err != nil {
			return nil, fmt.Errorf("mongo indexes: %w", err)
		}
		db := config.MongoClient.Database(config.MongoDBName())
		core.Reports = services.NewReportService(mongorepo.NewReportRepo(db))
		log.Info("MongoDB connected")
	case errors.Is(err, config.ErrNotConfigured):
		log.Warn("MongoDB not configured: ingest reports are not audited")
	default:
		return nil, fmt.Errorf("mongo: %w", err)
	}

	uploader, where, err := newUploader(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("archive: %w", err)
	}
	if c, ok := uploader.(io.Closer); ok {
		core.closers = append(core.closers, c)
	}
	log.WithField("archive", where).Info("upload archive ready")

	jobsRepo := pgrepo.NewJobPositionRepo(config.PostgresDB)
	core.Jobs = services.NewJobService(jobsRepo, rules, jcache, cfg.CacheTTL, log)

	core.Archive = services.NewArchiveService(pgrepo.NewUploadFileRepo(config.PostgresDB), uploader)

	deps := services.IngestDeps{
		Pipeline:       ingest.NewPipeline(classify.New(rules), cfg.ClassifyWorkers),
		Gateway:        services.NewMergeGateway(jobsRepo, locker, log),
		Archive:        core.Archive,
		Reports:        core.Reports,
		Publisher:      core.Publisher,
		Cache:          core.Jobs,
		MaxUploadBytes: cfg.MaxUploadBytes,
		Log:            log,
	}
	core.Ingest = services.NewIngestService(deps)

	core.Auth = services.NewAuthService(services.AuthConfig{
		Username:     cfg.AdminUsername,
		PasswordHash: cfg.AdminPasswordHash,
		Secret:       cfg.JWTSecret,
		TTL:          cfg.TokenTTL,
		Issuer:       TokenIssuer,
	})
	return core, nil
}

// TokenIssuer is the iss claim of admin tokens.
const TokenIssuer = "jobchain"

func newUploader(ctx context.Context, cfg config.App) (storage.Uploader, string, error) {
	if cfg.ArchiveBucket != "" {
		u, err := storage.NewGCSUploader(ctx, cfg.ArchiveBucket)
		if err != nil {
			return nil, "", err
		}
		return u, "gs://" + cfg.ArchiveBucket, nil
	}
	u, err := storage.NewLocalUploader(cfg.ArchiveDir)
	if err != nil {
		return nil, "", err
	}
	return u, cfg.ArchiveDir, nil
}

// Close releases the optional clients.
func (c *Core) Close(ctx context.Context) {
	for _, cl := range c.closers {
		_ = cl.Close()
	}
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
	if config.MongoClient != nil {
		_ = config.MongoClient.Disconnect(ctx)
	}
	if config.PostgresDB != nil {
		if sqlDB, err := config.PostgresDB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
}
