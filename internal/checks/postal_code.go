package checks

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/junkusano/famille-shift-matching-sub002/internal/models"
	"github.com/junkusano/famille-shift-matching-sub002/internal/repository"
)

// SubjectPostalSource is the read side of the postal-code check.
type SubjectPostalSource interface {
	ListActiveMissingPostalCode(ctx context.Context, limit int) ([]models.Subject, error)
}

// PostalCodeCheck flags active subjects without a postal code. The code is
// required by the visit-record export; a blank one silently breaks billing.
type PostalCodeCheck struct {
	source SubjectPostalSource
	alerts AlertSink
	links  LinkBuilder
	logger *zap.Logger
}

func NewPostalCodeCheck(source SubjectPostalSource, alerts AlertSink, links LinkBuilder, logger *zap.Logger) *PostalCodeCheck {
	return &PostalCodeCheck{
		source: source,
		alerts: alerts,
		links:  links,
		logger: logger,
	}
}

func (c *PostalCodeCheck) Name() string {
	return "postal_code_check"
}

func (c *PostalCodeCheck) Run(ctx context.Context, opts Options) (Result, error) {
	subjects, err := c.source.ListActiveMissingPostalCode(ctx, opts.Limit)
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
			c.logger.Info("dry-run: subject missing postal code",
				zap.String("kaipoke_cs_id", subject.KaipokeCsID),
			)
			continue
		}

		subjectID := subject.KaipokeCsID
		message := fmt.Sprintf("利用者「%s」の郵便番号が未登録です。 %s",
			subject.Name,
			c.links.Anchor(DeepLink{Kind: LinkSubject, EntityID: subject.KaipokeCsID}, "利用者詳細"),
		)

		ensured, err := c.alerts.EnsureSystemAlert(ctx, repository.EnsureAlertParams{
			Fingerprint: repository.Fingerprint(c.Name(), subject.KaipokeCsID, "missing_postal_code"),
			Message:     message,
			SubjectID:   &subjectID,
		})
		if err != nil {
			result.Failed++
			c.logger.Error("failed to ensure postal code alert",
				zap.String("kaipoke_cs_id", subject.KaipokeCsID),
				zap.Error(err),
			)
			continue
		}
		if ensured.Created {
			result.Created++
		}
	}

	c.logger.Info("postal_code_check finished",
		zap.Int("scanned", result.Scanned),
		zap.Int("created", result.Created),
		zap.Int("failed", result.Failed),
	)
	return result, nil
}
