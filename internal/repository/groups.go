package repository

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"
)

// GroupsRepository LINE WORKS グループ連携（lw_groups）への読み取り専用アクセス
type GroupsRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewGroupsRepository(db *sql.DB, logger *zap.Logger) *GroupsRepository {
	return &GroupsRepository{
		db:     db,
		logger: logger,
	}
}

// ListSubjectIDsWithGroupType returns the set of subject ids that have a
// messaging-group linkage of the given type.
func (r *GroupsRepository) ListSubjectIDsWithGroupType(ctx context.Context, groupType string) (map[string]bool, error) {
	if groupType == "" {
		return nil, fmt.Errorf("group_type is required")
	}

	query := `
		SELECT DISTINCT kaipoke_cs_id
		FROM lw_groups
		WHERE group_type = $1
		  AND kaipoke_cs_id IS NOT NULL
	`

	rows, err := r.db.QueryContext(ctx, query, groupType)
	if err != nil {
		return nil, fmt.Errorf("failed to query lw groups: %w", err)
	}
	defer rows.Close()

	ids := map[string]bool{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan lw group row: %w", err)
		}
		ids[id] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate lw group rows: %w", err)
	}

	return ids, nil
}
