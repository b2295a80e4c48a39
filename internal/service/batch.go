package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/junkusano/famille-shift-matching-sub002/internal/checks"
	"github.com/junkusano/famille-shift-matching-sub002/internal/models"
	"github.com/junkusano/famille-shift-matching-sub002/internal/notify"
	"github.com/junkusano/famille-shift-matching-sub002/internal/store"
)

// Checkset names. Each is one orchestrator entry point wiring a different
// subset of checks.
const (
	ChecksetDaily  = "daily"  // all seven checks, the nightly cron
	ChecksetShift  = "shift"  // shift-facing checks, run more often
	ChecksetMaster = "master" // master-data checks
)

// ErrRunInProgress is returned when the run lock for a checkset is held.
var ErrRunInProgress = errors.New("batch run already in progress")

// ErrUnknownCheckset is returned for a checkset name never registered.
var ErrUnknownCheckset = errors.New("unknown checkset")

// BatchRunStore persists run records.
type BatchRunStore interface {
	CreateBatchRun(ctx context.Context, runType, checkset string, triggeredBy *string) (string, error)
	FinishBatchRun(ctx context.Context, batchRunID string, ok bool, stats interface{}, runErr string) error
}

// RunParams identifies one orchestrator invocation.
type RunParams struct {
	RunType     string // models.RunTypeManual or models.RunTypeScheduled
	TriggeredBy string // user account or scheduler name
	Checkset    string
	OnlyCheck   string // restrict the checkset to one named check
	Options     checks.Options
}

// BatchStats aggregates per-check results. Totals are accumulated only from
// checks that returned, so a failing check never corrupts them.
type BatchStats struct {
	Checks map[string]checks.Result `json:"checks"`
	Totals checks.Result            `json:"totals"`
}

// RunResult is the orchestrator's outcome.
type RunResult struct {
	OK         bool       `json:"ok"`
	BatchRunID string     `json:"batch_run_id"`
	Stats      BatchStats `json:"stats"`
	Error      string     `json:"error,omitempty"`
}

// BatchService sequences rule checks and aggregates their results.
// Checks run sequentially; they share no mutable state except the alert
// store, whose dedup key is enforced by the storage layer, so re-runs and
// overlapping runs are safe; the KV run lock only prevents wasted work.
type BatchService struct {
	checksets map[string][]checks.Check
	runs      BatchRunStore
	kv        store.KVStore   // optional
	notifier  notify.Notifier // optional
	lockTTL   time.Duration
	logger    *zap.Logger
}

func NewBatchService(runs BatchRunStore, kv store.KVStore, notifier notify.Notifier, lockTTL time.Duration, logger *zap.Logger) *BatchService {
	return &BatchService{
		checksets: map[string][]checks.Check{},
		runs:      runs,
		kv:        kv,
		notifier:  notifier,
		lockTTL:   lockTTL,
		logger:    logger,
	}
}

// RegisterCheckset wires a named subset of checks.
func (s *BatchService) RegisterCheckset(name string, set []checks.Check) {
	s.checksets[name] = set
}

// Checksets returns the registered checkset names.
func (s *BatchService) Checksets() []string {
	names := make([]string, 0, len(s.checksets))
	for name := range s.checksets {
		names = append(names, name)
	}
	return names
}

// Run executes one checkset. Query failures abort the sequence with
// OK=false, preserving stats from checks that completed; per-item alert
// failures are already soft inside the checks and show up as Failed counts.
func (s *BatchService) Run(ctx context.Context, params RunParams) (RunResult, error) {
	set, ok := s.checksets[params.Checkset]
	if !ok {
		return RunResult{}, fmt.Errorf("%w: %s", ErrUnknownCheckset, params.Checkset)
	}
	if params.RunType != models.RunTypeManual && params.RunType != models.RunTypeScheduled {
		return RunResult{}, fmt.Errorf("invalid run_type: %s", params.RunType)
	}

	if s.kv != nil {
		acquired, err := s.kv.SetNX(ctx, runLockKey(params.Checkset), time.Now().Format(time.RFC3339), s.lockTTL)
		if err != nil {
			// lock infrastructure down: run anyway, dedup keeps us safe
			s.logger.Warn("run lock unavailable, continuing without it", zap.Error(err))
		} else if !acquired {
			return RunResult{}, ErrRunInProgress
		} else {
			defer func() {
				if err := s.kv.Del(context.Background(), runLockKey(params.Checkset)); err != nil {
					s.logger.Warn("failed to release run lock", zap.Error(err))
				}
			}()
		}
	}

	var triggeredBy *string
	if params.TriggeredBy != "" {
		triggeredBy = &params.TriggeredBy
	}

	batchRunID, err := s.runs.CreateBatchRun(ctx, params.RunType, params.Checkset, triggeredBy)
	if err != nil {
		return RunResult{}, fmt.Errorf("failed to record batch run: %w", err)
	}

	result := RunResult{
		OK:         true,
		BatchRunID: batchRunID,
		Stats: BatchStats{
			Checks: map[string]checks.Result{},
		},
	}

	for _, check := range set {
		if params.OnlyCheck != "" && check.Name() != params.OnlyCheck {
			continue
		}

		s.logger.Info("running check",
			zap.String("check", check.Name()),
			zap.String("batch_run_id", batchRunID),
		)

		checkResult, err := check.Run(ctx, params.Options)
		if err != nil {
			result.OK = false
			result.Error = fmt.Sprintf("%s: %v", check.Name(), err)
			s.logger.Error("check aborted",
				zap.String("check", check.Name()),
				zap.Error(err),
			)
			break
		}

		result.Stats.Checks[check.Name()] = checkResult
		result.Stats.Totals.Add(checkResult)
	}

	s.finish(ctx, params, result)
	return result, nil
}

// finish persists and publishes the outcome; none of it may fail the run.
func (s *BatchService) finish(ctx context.Context, params RunParams, result RunResult) {
	if err := s.runs.FinishBatchRun(ctx, result.BatchRunID, result.OK, result.Stats, result.Error); err != nil {
		s.logger.Error("failed to finish batch run record", zap.Error(err))
	}

	if s.kv != nil {
		if summary, err := json.Marshal(result); err == nil {
			if err := s.kv.Set(ctx, lastRunKey(params.Checkset), string(summary), 0); err != nil {
				s.logger.Warn("failed to cache last run summary", zap.Error(err))
			}
		}
	}

	if s.notifier != nil {
		err := s.notifier.NotifyRunSummary(ctx, notify.RunSummary{
			BatchRunID: result.BatchRunID,
			Checkset:   params.Checkset,
			RunType:    params.RunType,
			OK:         result.OK,
			Scanned:    result.Stats.Totals.Scanned,
			Created:    result.Stats.Totals.Created,
			Failed:     result.Stats.Totals.Failed,
			Error:      result.Error,
		})
		if err != nil {
			s.logger.Warn("failed to notify run summary", zap.Error(err))
		}
	}
}

// LastRunSummary returns the cached summary of the checkset's last run,
// or nil when none is cached.
func (s *BatchService) LastRunSummary(ctx context.Context, checkset string) (*RunResult, error) {
	if s.kv == nil {
		return nil, nil
	}

	raw, err := s.kv.Get(ctx, lastRunKey(checkset))
	if err != nil {
		if err == store.ErrKeyMiss {
			return nil, nil
		}
		return nil, err
	}

	var result RunResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return nil, fmt.Errorf("failed to decode last run summary: %w", err)
	}
	return &result, nil
}

func runLockKey(checkset string) string {
	return "compliance:run_lock:" + checkset
}

func lastRunKey(checkset string) string {
	return "compliance:last_run:" + checkset
}
