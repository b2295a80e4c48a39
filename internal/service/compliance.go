package service

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/junkusano/famille-shift-matching-sub002/internal/checks"
	"github.com/junkusano/famille-shift-matching-sub002/internal/config"
	"github.com/junkusano/famille-shift-matching-sub002/internal/database"
	"github.com/junkusano/famille-shift-matching-sub002/internal/notify"
	"github.com/junkusano/famille-shift-matching-sub002/internal/repository"
	"github.com/junkusano/famille-shift-matching-sub002/internal/store"
)

// ComplianceService 各層を束ねるサービス本体
type ComplianceService struct {
	config      *config.Config
	db          *sql.DB
	redisClient *redis.Client
	logger      *zap.Logger

	alertsRepo *repository.AlertsRepository
	batch      *BatchService
}

// NewComplianceService connects the stores and wires every check into the
// named checksets.
func NewComplianceService(cfg *config.Config, logger *zap.Logger) (*ComplianceService, error) {
	db, err := database.NewPostgresDB(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	// Redis carries only the run lock and the last-run cache; the engine
	// stays functional without it because dedup lives in Postgres.
	var kv store.KVStore
	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			logger.Warn("redis unavailable, continuing without run lock", zap.Error(err))
			_ = redisClient.Close()
			redisClient = nil
		} else {
			kv = store.NewRedisKV(redisClient)
		}
	}

	alertsRepo := repository.NewAlertsRepository(db, logger)
	subjectsRepo := repository.NewSubjectsRepository(db, logger)
	workersRepo := repository.NewWorkersRepository(db, logger)
	shiftsRepo := repository.NewShiftsRepository(db, logger)
	certsRepo := repository.NewCertificatesRepository(db, logger)
	groupsRepo := repository.NewGroupsRepository(db, logger)
	docsRepo := repository.NewDocumentsRepository(db, logger)
	runsRepo := repository.NewBatchRunsRepository(db, logger)

	links := checks.NewLinkBuilder(cfg.Compliance.PortalBaseURL)

	resigner := checks.NewResignerShiftCheck(workersRepo, alertsRepo, links, cfg.Compliance.ResignerFloorDate, logger)
	shiftCert := checks.NewShiftCertCheck(shiftsRepo, certsRepo, alertsRepo, links, cfg.Compliance.ShiftCertFromDate, logger)
	postal := checks.NewPostalCodeCheck(subjectsRepo, alertsRepo, links, logger)
	record := checks.NewShiftRecordUnfinishedCheck(shiftsRepo, alertsRepo, links,
		cfg.Compliance.ResignerFloorDate, cfg.Compliance.RecordGraceDays, cfg.Compliance.TestSubjectPrefix, logger)
	kodoengo := checks.NewKodoengoPlanLinkCheck(subjectsRepo, alertsRepo, links, logger)
	lwGroup := checks.NewLwGroupMissingCheck(shiftsRepo, groupsRepo, alertsRepo, links,
		cfg.Compliance.RequiredGroupType, cfg.Compliance.ShiftCertFromDate, logger)
	contractPlan := checks.NewCsContractPlanCheck(shiftsRepo, docsRepo, alertsRepo, links,
		cfg.Compliance.ShiftCertFromDate, logger)

	var notifier notify.Notifier
	if cfg.Notify.WebhookURL != "" {
		notifier = notify.NewWebhookNotifier(cfg.Notify.WebhookURL, logger)
	}

	batch := NewBatchService(runsRepo, kv, notifier, cfg.Compliance.RunLockTTL, logger)
	batch.RegisterCheckset(ChecksetDaily, []checks.Check{
		resigner, shiftCert, postal, record, kodoengo, lwGroup, contractPlan,
	})
	batch.RegisterCheckset(ChecksetShift, []checks.Check{
		resigner, shiftCert, record,
	})
	batch.RegisterCheckset(ChecksetMaster, []checks.Check{
		postal, kodoengo, lwGroup, contractPlan,
	})

	return &ComplianceService{
		config:      cfg,
		db:          db,
		redisClient: redisClient,
		logger:      logger,
		alertsRepo:  alertsRepo,
		batch:       batch,
	}, nil
}

// Batch returns the orchestrator.
func (s *ComplianceService) Batch() *BatchService {
	return s.batch
}

// Alerts returns the alert store.
func (s *ComplianceService) Alerts() *repository.AlertsRepository {
	return s.alertsRepo
}

// Close releases the connections.
func (s *ComplianceService) Close() {
	if err := database.Close(s.db); err != nil {
		s.logger.Warn("failed to close database", zap.Error(err))
	}
	if s.redisClient != nil {
		if err := s.redisClient.Close(); err != nil {
			s.logger.Warn("failed to close redis", zap.Error(err))
		}
	}
}
