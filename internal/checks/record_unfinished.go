package checks

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/junkusano/famille-shift-matching-sub002/internal/models"
	"github.com/junkusano/famille-shift-matching-sub002/internal/repository"
)

// UnfinishedRecordSource is the read side of the record-unfinished check.
type UnfinishedRecordSource interface {
	ListUnfinishedRecordShifts(ctx context.Context, floor, before time.Time, excludePrefix string, limit int) ([]models.Shift, error)
}

// ShiftRecordUnfinishedCheck flags shifts whose visit record is still not
// submitted once the grace period after the visit has passed. Placeholder
// subjects (the configured sentinel id prefix) are excluded.
type ShiftRecordUnfinishedCheck struct {
	source        UnfinishedRecordSource
	alerts        AlertSink
	links         LinkBuilder
	floor         time.Time
	graceDays     int
	excludePrefix string
	logger        *zap.Logger
	now           func() time.Time
}

func NewShiftRecordUnfinishedCheck(source UnfinishedRecordSource, alerts AlertSink, links LinkBuilder, floor time.Time, graceDays int, excludePrefix string, logger *zap.Logger) *ShiftRecordUnfinishedCheck {
	return &ShiftRecordUnfinishedCheck{
		source:        source,
		alerts:        alerts,
		links:         links,
		floor:         floor,
		graceDays:     graceDays,
		excludePrefix: excludePrefix,
		logger:        logger,
		now:           time.Now,
	}
}

func (c *ShiftRecordUnfinishedCheck) Name() string {
	return "shift_record_unfinished_check"
}

func (c *ShiftRecordUnfinishedCheck) Run(ctx context.Context, opts Options) (Result, error) {
	// shifts started graceDays or more ago are overdue; the scan covers
	// [floor, today-graceDays]
	before := startOfDay(c.now()).AddDate(0, 0, -c.graceDays+1)

	shifts, err := c.source.ListUnfinishedRecordShifts(ctx, c.floor, before, c.excludePrefix, opts.Limit)
	if err != nil {
		return Result{}, err
	}

	var result Result
	for _, shift := range shifts {
		if shift.KaipokeCsID == nil {
			continue
		}
		if opts.TargetID != "" && *shift.KaipokeCsID != opts.TargetID {
			continue
		}
		result.Scanned++

		if opts.DryRun {
			c.logger.Info("dry-run: unfinished visit record",
				zap.Int64("shift_id", shift.ShiftID),
			)
			continue
		}

		subjectID := *shift.KaipokeCsID
		shiftID := shift.ShiftID
		message := fmt.Sprintf("%s のシフト（%s〜%s）の訪問記録が未提出のままです。 %s",
			shift.ShiftDate.Format("2006-01-02"),
			shift.StartTime,
			shift.EndTime,
			c.links.Anchor(DeepLink{Kind: LinkShift, EntityID: strconv.FormatInt(shift.ShiftID, 10)}, "シフト詳細"),
		)

		ensured, err := c.alerts.EnsureSystemAlert(ctx, repository.EnsureAlertParams{
			Fingerprint: repository.Fingerprint(c.Name(), subjectID, "unfinished_record:"+strconv.FormatInt(shift.ShiftID, 10)),
			Message:     message,
			SubjectID:   &subjectID,
			ShiftID:     &shiftID,
		})
		if err != nil {
			result.Failed++
			c.logger.Error("failed to ensure unfinished record alert",
				zap.Int64("shift_id", shift.ShiftID),
				zap.Error(err),
			)
			continue
		}
		if ensured.Created {
			result.Created++
		}
	}

	c.logger.Info("shift_record_unfinished_check finished",
		zap.Int("scanned", result.Scanned),
		zap.Int("created", result.Created),
		zap.Int("failed", result.Failed),
	)
	return result, nil
}
