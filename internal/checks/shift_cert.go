package checks

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/junkusano/famille-shift-matching-sub002/internal/models"
	"github.com/junkusano/famille-shift-matching-sub002/internal/repository"
)

// ShiftSource is the read side of the shift-certificate check.
type ShiftSource interface {
	ListShiftsFrom(ctx context.Context, from time.Time, limit int) ([]models.Shift, error)
}

// ShiftCertCheck flags shifts whose attending workers do not cover the
// qualifications the shift's service category requires.
type ShiftCertCheck struct {
	shifts   ShiftSource
	certs    CertificateSource
	alerts   AlertSink
	links    LinkBuilder
	fromDate time.Time
	logger   *zap.Logger
}

func NewShiftCertCheck(shifts ShiftSource, certs CertificateSource, alerts AlertSink, links LinkBuilder, fromDate time.Time, logger *zap.Logger) *ShiftCertCheck {
	return &ShiftCertCheck{
		shifts:   shifts,
		certs:    certs,
		alerts:   alerts,
		links:    links,
		fromDate: fromDate,
		logger:   logger,
	}
}

func (c *ShiftCertCheck) Name() string {
	return "shift_cert_check"
}

func (c *ShiftCertCheck) Run(ctx context.Context, opts Options) (Result, error) {
	from := c.fromDate
	if opts.FromDate != nil {
		from = *opts.FromDate
	}

	shifts, err := c.shifts.ListShiftsFrom(ctx, from, opts.Limit)
	if err != nil {
		return Result{}, err
	}

	judge, err := NewShiftComplianceJudge(ctx, c.certs)
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

		compliant, missing, err := judge.Judge(ctx, shift)
		if err != nil {
			// per-shift resolution failure is soft; keep judging the rest
			result.Failed++
			c.logger.Error("failed to judge shift",
				zap.Int64("shift_id", shift.ShiftID),
				zap.Error(err),
			)
			continue
		}
		if compliant {
			continue
		}
		result.Scanned++

		if opts.DryRun {
			c.logger.Info("dry-run: uncertified shift",
				zap.Int64("shift_id", shift.ShiftID),
				zap.Strings("missing_keys", missing),
			)
			continue
		}

		subjectID := *shift.KaipokeCsID
		shiftID := shift.ShiftID
		message := fmt.Sprintf("%s %s〜%s のシフト（%s）に必要資格を持つスタッフが配置されていません（不足: %s）。 %s",
			shift.ShiftDate.Format("2006-01-02"),
			shift.StartTime,
			shift.EndTime,
			shift.ServiceCode,
			strings.Join(missing, ", "),
			c.links.Anchor(DeepLink{Kind: LinkShift, EntityID: strconv.FormatInt(shift.ShiftID, 10)}, "シフト詳細"),
		)

		ensured, err := c.alerts.EnsureSystemAlert(ctx, repository.EnsureAlertParams{
			Fingerprint: repository.Fingerprint(c.Name(), subjectID, "uncertified_shift:"+strconv.FormatInt(shift.ShiftID, 10)),
			Message:     message,
			SubjectID:   &subjectID,
			ShiftID:     &shiftID,
		})
		if err != nil {
			result.Failed++
			c.logger.Error("failed to ensure shift cert alert",
				zap.Int64("shift_id", shift.ShiftID),
				zap.Error(err),
			)
			continue
		}
		if ensured.Created {
			result.Created++
		}
	}

	c.logger.Info("shift_cert_check finished",
		zap.Int("scanned", result.Scanned),
		zap.Int("created", result.Created),
		zap.Int("failed", result.Failed),
	)
	return result, nil
}
