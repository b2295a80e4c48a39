package checks

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/junkusano/famille-shift-matching-sub002/internal/repository"
)

// ResignerShiftSource is the read side of the resigner check.
type ResignerShiftSource interface {
	ListTerminalWorkersWithUpcomingShifts(ctx context.Context, from time.Time) ([]repository.ResignerViolation, error)
}

// ResignerShiftCheck flags fully offboarded workers still assigned to shifts
// dated today or later. Shifts strictly in the past are history, not a
// violation; the floor date keeps the scan off pre-migration data.
type ResignerShiftCheck struct {
	source ResignerShiftSource
	alerts AlertSink
	links  LinkBuilder
	floor  time.Time
	logger *zap.Logger
	now    func() time.Time
}

func NewResignerShiftCheck(source ResignerShiftSource, alerts AlertSink, links LinkBuilder, floor time.Time, logger *zap.Logger) *ResignerShiftCheck {
	return &ResignerShiftCheck{
		source: source,
		alerts: alerts,
		links:  links,
		floor:  floor,
		logger: logger,
		now:    time.Now,
	}
}

func (c *ResignerShiftCheck) Name() string {
	return "resigner_shift_check"
}

func (c *ResignerShiftCheck) Run(ctx context.Context, opts Options) (Result, error) {
	from := laterOf(startOfDay(c.now()), c.floor)

	violations, err := c.source.ListTerminalWorkersWithUpcomingShifts(ctx, from)
	if err != nil {
		return Result{}, err
	}

	var result Result
	for _, v := range violations {
		if opts.TargetID != "" && v.UserID != opts.TargetID {
			continue
		}
		result.Scanned++

		if opts.DryRun {
			c.logger.Info("dry-run: resigner still scheduled",
				zap.String("user_id", v.UserID),
				zap.Int("shift_count", v.ShiftCount),
			)
			continue
		}

		userID := v.UserID
		message := fmt.Sprintf("退職済みスタッフ「%s」が今後のシフトに割り当てられています（%d件、直近 %s）。 %s",
			v.NameKanji,
			v.ShiftCount,
			v.NextShiftDate.Format("2006-01-02"),
			c.links.Anchor(DeepLink{Kind: LinkWorker, EntityID: v.UserID}, "スタッフ詳細"),
		)

		ensured, err := c.alerts.EnsureSystemAlert(ctx, repository.EnsureAlertParams{
			Fingerprint: repository.Fingerprint(c.Name(), v.UserID, "resigner_upcoming_shift"),
			Message:     message,
			Severity:    3,
			WorkerID:    &userID,
		})
		if err != nil {
			result.Failed++
			c.logger.Error("failed to ensure resigner alert",
				zap.String("user_id", v.UserID),
				zap.Error(err),
			)
			continue
		}
		if ensured.Created {
			result.Created++
		}
	}

	c.logger.Info("resigner_shift_check finished",
		zap.Int("scanned", result.Scanned),
		zap.Int("created", result.Created),
		zap.Int("failed", result.Failed),
	)
	return result, nil
}
