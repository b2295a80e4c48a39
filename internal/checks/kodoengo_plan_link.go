package checks

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/junkusano/famille-shift-matching-sub002/internal/models"
	"github.com/junkusano/famille-shift-matching-sub002/internal/repository"
)

// KodoPlanSource is the read side of the kodoengo plan-link check.
type KodoPlanSource interface {
	ListActiveSubjectsMissingKodoPlan(ctx context.Context, serviceCodes []string) ([]models.Subject, error)
}

// KodoengoPlanLinkCheck flags active subjects receiving 行動援護 whose
// support-plan link has not been registered.
type KodoengoPlanLinkCheck struct {
	source KodoPlanSource
	alerts AlertSink
	links  LinkBuilder
	logger *zap.Logger
}

func NewKodoengoPlanLinkCheck(source KodoPlanSource, alerts AlertSink, links LinkBuilder, logger *zap.Logger) *KodoengoPlanLinkCheck {
	return &KodoengoPlanLinkCheck{
		source: source,
		alerts: alerts,
		links:  links,
		logger: logger,
	}
}

func (c *KodoengoPlanLinkCheck) Name() string {
	return "kodoengo_plan_link_check"
}

func (c *KodoengoPlanLinkCheck) Run(ctx context.Context, opts Options) (Result, error) {
	subjects, err := c.source.ListActiveSubjectsMissingKodoPlan(ctx, CodesForServiceKey(ServiceKeyKodoengo))
	if err != nil {
		return Result{}, err
	}

	var result Result
	for _, subject := range subjects {
		if opts.TargetID != "" && subject.KaipokeCsID != opts.TargetID {
			continue
		}
		result.Scanned++

		if opts.DryRun {
			c.logger.Info("dry-run: kodoengo plan link missing",
				zap.String("kaipoke_cs_id", subject.KaipokeCsID),
			)
			continue
		}

		subjectID := subject.KaipokeCsID
		message := fmt.Sprintf("利用者「%s」は行動援護のシフトがありますが、支援計画書リンクが未登録です。 %s",
			subject.Name,
			c.links.Anchor(DeepLink{Kind: LinkSubject, EntityID: subject.KaipokeCsID}, "利用者詳細"),
		)

		ensured, err := c.alerts.EnsureSystemAlert(ctx, repository.EnsureAlertParams{
			Fingerprint: repository.Fingerprint(c.Name(), subject.KaipokeCsID, "missing_kodo_plan_link"),
			Message:     message,
			SubjectID:   &subjectID,
		})
		if err != nil {
			result.Failed++
			c.logger.Error("failed to ensure kodo plan alert",
				zap.String("kaipoke_cs_id", subject.KaipokeCsID),
				zap.Error(err),
			)
			continue
		}
		if ensured.Created {
			result.Created++
		}
	}

	c.logger.Info("kodoengo_plan_link_check finished",
		zap.Int("scanned", result.Scanned),
		zap.Int("created", result.Created),
		zap.Int("failed", result.Failed),
	)
	return result, nil
}
