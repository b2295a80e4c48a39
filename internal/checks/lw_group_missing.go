package checks

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/junkusano/famille-shift-matching-sub002/internal/repository"
)

// ScheduledSubjectSource lists the subjects currently appearing in shifts.
type ScheduledSubjectSource interface {
	ListSubjectsWithShifts(ctx context.Context, from time.Time) ([]repository.SubjectRef, error)
}

// GroupLinkSource lists the subjects with a messaging-group linkage.
type GroupLinkSource interface {
	ListSubjectIDsWithGroupType(ctx context.Context, groupType string) (map[string]bool, error)
}

// LwGroupMissingCheck flags subjects being serviced without their LINE WORKS
// support group, so staff chatter about the subject has nowhere to land.
type LwGroupMissingCheck struct {
	shifts    ScheduledSubjectSource
	groups    GroupLinkSource
	alerts    AlertSink
	links     LinkBuilder
	groupType string
	fromDate  time.Time
	logger    *zap.Logger
}

func NewLwGroupMissingCheck(shifts ScheduledSubjectSource, groups GroupLinkSource, alerts AlertSink, links LinkBuilder, groupType string, fromDate time.Time, logger *zap.Logger) *LwGroupMissingCheck {
	return &LwGroupMissingCheck{
		shifts:    shifts,
		groups:    groups,
		alerts:    alerts,
		links:     links,
		groupType: groupType,
		fromDate:  fromDate,
		logger:    logger,
	}
}

func (c *LwGroupMissingCheck) Name() string {
	return "lw_user_group_missing_check"
}

func (c *LwGroupMissingCheck) Run(ctx context.Context, opts Options) (Result, error) {
	from := c.fromDate
	if opts.FromDate != nil {
		from = *opts.FromDate
	}

	scheduled, err := c.shifts.ListSubjectsWithShifts(ctx, from)
	if err != nil {
		return Result{}, err
	}

	linked, err := c.groups.ListSubjectIDsWithGroupType(ctx, c.groupType)
	if err != nil {
		return Result{}, err
	}

	var result Result
	for _, subject := range scheduled {
		if linked[subject.KaipokeCsID] {
			continue
		}
		if opts.TargetID != "" && subject.KaipokeCsID != opts.TargetID {
			continue
		}
		result.Scanned++

		if opts.DryRun {
			c.logger.Info("dry-run: lw group missing",
				zap.String("kaipoke_cs_id", subject.KaipokeCsID),
			)
			continue
		}

		subjectID := subject.KaipokeCsID
		message := fmt.Sprintf("利用者「%s」にシフトがありますが、LINE WORKS の%sグループが連携されていません。 %s",
			subject.Name,
			c.groupType,
			c.links.Anchor(DeepLink{Kind: LinkSubject, EntityID: subject.KaipokeCsID}, "利用者詳細"),
		)

		ensured, err := c.alerts.EnsureSystemAlert(ctx, repository.EnsureAlertParams{
			Fingerprint: repository.Fingerprint(c.Name(), subject.KaipokeCsID, "missing_lw_group:"+c.groupType),
			Message:     message,
			SubjectID:   &subjectID,
		})
		if err != nil {
			result.Failed++
			c.logger.Error("failed to ensure lw group alert",
				zap.String("kaipoke_cs_id", subject.KaipokeCsID),
				zap.Error(err),
			)
			continue
		}
		if ensured.Created {
			result.Created++
		}
	}

	c.logger.Info("lw_user_group_missing_check finished",
		zap.Int("scanned", result.Scanned),
		zap.Int("created", result.Created),
		zap.Int("failed", result.Failed),
	)
	return result, nil
}
