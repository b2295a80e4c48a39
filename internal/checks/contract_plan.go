package checks

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/junkusano/famille-shift-matching-sub002/internal/repository"
)

// SubjectServiceSource lists (subject, service_code) pairs observed in shifts.
type SubjectServiceSource interface {
	ListSubjectServiceCodes(ctx context.Context, from time.Time, serviceCodes []string) ([]repository.SubjectServiceRow, error)
}

// SubjectDocSource lists the valid documents each subject has on file.
type SubjectDocSource interface {
	ListValidDocTypesBySubject(ctx context.Context) (map[string]map[string]bool, error)
}

// CsContractPlanCheck flags subjects with shifts in relevant service
// categories that are missing required contract/plan documents.
type CsContractPlanCheck struct {
	shifts   SubjectServiceSource
	docs     SubjectDocSource
	alerts   AlertSink
	links    LinkBuilder
	fromDate time.Time
	logger   *zap.Logger
}

func NewCsContractPlanCheck(shifts SubjectServiceSource, docs SubjectDocSource, alerts AlertSink, links LinkBuilder, fromDate time.Time, logger *zap.Logger) *CsContractPlanCheck {
	return &CsContractPlanCheck{
		shifts:   shifts,
		docs:     docs,
		alerts:   alerts,
		links:    links,
		fromDate: fromDate,
		logger:   logger,
	}
}

func (c *CsContractPlanCheck) Name() string {
	return "cs_contract_plan_check"
}

func (c *CsContractPlanCheck) Run(ctx context.Context, opts Options) (Result, error) {
	from := c.fromDate
	if opts.FromDate != nil {
		from = *opts.FromDate
	}

	rows, err := c.shifts.ListSubjectServiceCodes(ctx, from, AllServiceCodes())
	if err != nil {
		return Result{}, err
	}

	held, err := c.docs.ListValidDocTypesBySubject(ctx)
	if err != nil {
		return Result{}, err
	}

	// collapse the rows to one service-key set per subject
	type subjectInfo struct {
		name string
		keys map[string]bool
	}
	subjects := map[string]*subjectInfo{}
	var order []string
	for _, row := range rows {
		info, ok := subjects[row.KaipokeCsID]
		if !ok {
			info = &subjectInfo{name: row.Name, keys: map[string]bool{}}
			subjects[row.KaipokeCsID] = info
			order = append(order, row.KaipokeCsID)
		}
		for _, key := range KeysForServiceCode(row.ServiceCode) {
			info.keys[key] = true
		}
	}

	var result Result
	for _, subjectID := range order {
		if opts.TargetID != "" && subjectID != opts.TargetID {
			continue
		}
		info := subjects[subjectID]

		keys := make([]string, 0, len(info.keys))
		for key := range info.keys {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		missing := MissingDocTypes(RequiredDocTypes(keys), held[subjectID])
		if len(missing) == 0 {
			continue
		}
		result.Scanned++

		if opts.DryRun {
			c.logger.Info("dry-run: contract/plan documents missing",
				zap.String("kaipoke_cs_id", subjectID),
				zap.Strings("missing", missing),
			)
			continue
		}

		sid := subjectID
		message := fmt.Sprintf("利用者「%s」の契約・計画書類が不足しています（不足: %s）。 %s",
			info.name,
			strings.Join(missing, "、"),
			c.links.Anchor(DeepLink{Kind: LinkSubject, EntityID: subjectID}, "利用者詳細"),
		)

		ensured, err := c.alerts.EnsureSystemAlert(ctx, repository.EnsureAlertParams{
			Fingerprint: repository.Fingerprint(c.Name(), subjectID, "missing_docs:"+strings.Join(missing, ",")),
			Message:     message,
			SubjectID:   &sid,
		})
		if err != nil {
			result.Failed++
			c.logger.Error("failed to ensure contract plan alert",
				zap.String("kaipoke_cs_id", subjectID),
				zap.Error(err),
			)
			continue
		}
		if ensured.Created {
			result.Created++
		}
	}

	c.logger.Info("cs_contract_plan_check finished",
		zap.Int("scanned", result.Scanned),
		zap.Int("created", result.Created),
		zap.Int("failed", result.Failed),
	)
	return result, nil
}
