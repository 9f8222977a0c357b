package pgstore

import (
	"context"

	"github.com/linnemanlabs/vet/internal/audit"
)

// Append writes one audit entry. There is deliberately no update or delete.
func (s *Store) Append(ctx context.Context, e *audit.Entry) error {
	ctx, span := startSpan(ctx, "pgstore.Append", "INSERT")
	defer span.End()

	_, err := s.pool.Exec(ctx,
		`INSERT INTO audit_log (id, org_id, actor_id, action, target_type, target_id, details, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		e.ID, e.OrgID, e.ActorID, e.Action, e.TargetType, e.TargetID,
		nullableJSON(e.Details), e.CreatedAt,
	)
	return spanErr(span, err)
}
