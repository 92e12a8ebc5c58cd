package setup

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/LavaJover/shvark-escrow-service/internal/config"
	"github.com/LavaJover/shvark-escrow-service/internal/delivery/http/handlers"
	"github.com/LavaJover/shvark-escrow-service/internal/domain"
	publisher "github.com/LavaJover/shvark-escrow-service/internal/infrastructure/kafka"
	"github.com/LavaJover/shvark-escrow-service/internal/infrastructure/logger"
	"github.com/LavaJover/shvark-escrow-service/internal/infrastructure/memory"
	"github.com/LavaJover/shvark-escrow-service/internal/infrastructure/migrate"
	"github.com/LavaJover/shvark-escrow-service/internal/infrastructure/notifier"
	"github.com/LavaJover/shvark-escrow-service/internal/infrastructure/postgres"
	"github.com/LavaJover/shvark-escrow-service/internal/infrastructure/postgres/repository"
	"github.com/LavaJover/shvark-escrow-service/internal/infrastructure/rabbitmq"
	"github.com/LavaJover/shvark-escrow-service/internal/infrastructure/redislock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Dependencies struct {
	Config       *config.EscrowConfig
	Logger       *slog.Logger
	DB           *gorm.DB
	Redis        *redis.Client
	Publisher    domain.PublisherPort
	AuditLogger  domain.AuditLogger
	SweepLocker  domain.SweepLocker
	Registry     *prometheus.Registry
	Repositories *Repositories

	closers []io.Closer
}

type Repositories struct {
	EscrowRepo  domain.EscrowRepository
	PaymentRepo domain.PaymentRepository
}

func InitializeDependencies(ctx context.Context, cfg *config.EscrowConfig, log *slog.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config:   cfg,
		Logger:   log,
		Registry: prometheus.NewRegistry(),
	}
	deps.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	if err := deps.initStorage(); err != nil {
		deps.Close()
		return nil, fmt.Errorf("storage: %w", err)
	}
	if err := deps.initPublisher(); err != nil {
		deps.Close()
		return nil, fmt.Errorf("publisher: %w", err)
	}
	if err := deps.initRedis(ctx); err != nil {
		deps.Close()
		return nil, fmt.Errorf("redis: %w", err)
	}
	return deps, nil
}

func (d *Dependencies) initStorage() error {
	if d.Config.EscrowDB.Driver == "memory" {
		d.Logger.Warn("using in-memory storage, data is lost on restart")
		d.Repositories = &Repositories{
			EscrowRepo:  memory.NewEscrowRepository(),
			PaymentRepo: memory.NewPaymentRepository(),
		}
		d.AuditLogger = memory.NewAuditLog()
		return nil
	}

	db, err := postgres.InitDB(d.Config.EscrowDB.Dsn, d.Config.EscrowDB.AutoMigrate)
	if err != nil {
		return err
	}
	d.DB = db
	if sqlDB, err := db.DB(); err == nil {
		d.closers = append(d.closers, sqlDB)
	}
	if !d.Config.EscrowDB.AutoMigrate {
		if err := migrate.RunMigrations(db, d.Config.EscrowDB.MigrationsPath, d.Logger); err != nil {
			return fmt.Errorf("migrations: %w", err)
		}
	}
	d.Repositories = &Repositories{
		EscrowRepo:  repository.NewDefaultEscrowRepository(db),
		PaymentRepo: repository.NewDefaultPaymentRepository(db),
	}
	d.AuditLogger = logger.NewPGAuditLogger(db)
	return nil
}

func (d *Dependencies) initPublisher() error {
	switch d.Config.Events.Driver {
	case "kafka":
		brokers := []string{fmt.Sprintf("%s:%s", d.Config.KafkaService.Host, d.Config.KafkaService.Port)}
		pub := publisher.NewDefaultKafkaPublisher(brokers, d.Config.Events.Topic)
		d.Publisher = pub
		d.closers = append(d.closers, pub)
	case "rabbitmq":
		pub, err := rabbitmq.NewPublisher(d.Config.RabbitMQ.URL, d.Config.RabbitMQ.Queue)
		if err != nil {
			return err
		}
		d.Publisher = pub
		d.closers = append(d.closers, pub)
	case "webhook":
		pub := notifier.NewWebhookPublisher(d.Config.Webhook.URL, d.Config.Webhook.Timeout)
		d.Publisher = pub
		d.closers = append(d.closers, pub)
	default:
		d.Logger.Info("event publishing disabled")
	}
	return nil
}

func (d *Dependencies) initRedis(ctx context.Context) error {
	if !d.Config.Redis.Enabled {
		return nil
	}
	rdb, err := redislock.NewClient(ctx, d.Config.Redis.Addr, d.Config.Redis.Password, d.Config.Redis.DB)
	if err != nil {
		return err
	}
	d.Redis = rdb
	d.closers = append(d.closers, rdb)
	d.SweepLocker = redislock.NewSweepLocker(rdb, redislock.DefaultKey, d.Logger)
	return nil
}

// HealthChecks returns a probe per external dependency in use.
func (d *Dependencies) HealthChecks() map[string]handlers.HealthCheck {
	checks := make(map[string]handlers.HealthCheck)
	if d.DB != nil {
		checks["postgres"] = func(ctx context.Context) error {
			sqlDB, err := d.DB.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		}
	}
	if d.Redis != nil {
		checks["redis"] = func(ctx context.Context) error {
			return d.Redis.Ping(ctx).Err()
		}
	}
	return checks
}

// Close releases connections in reverse order of creation.
func (d *Dependencies) Close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		if err := d.closers[i].Close(); err != nil {
			d.Logger.Error("failed to close dependency", "error", err)
		}
	}
	d.closers = nil
}
