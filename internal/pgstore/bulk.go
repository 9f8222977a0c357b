package pgstore

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/linnemanlabs/vet/internal/bulk"
)

const bulkColumns = `id, org_id, file_name, file_locator, total_rows, processed_rows,
	success_count, failure_count, status, created_by, created_at`

// InsertJob registers one bulk upload job.
func (s *Store) InsertJob(ctx context.Context, j *bulk.Job) error {
	ctx, span := startSpan(ctx, "pgstore.InsertJob", "INSERT")
	defer span.End()

	_, err := s.pool.Exec(ctx,
		`INSERT INTO bulk_jobs (id, org_id, file_name, file_locator, total_rows, processed_rows, success_count, failure_count, status, created_by, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		j.ID, j.OrgID, j.FileName, j.FileLocator, j.TotalRows, j.ProcessedRows,
		j.SuccessCount, j.FailureCount, j.Status, j.CreatedBy, j.CreatedAt,
	)
	return spanErr(span, err)
}

// Job retrieves one bulk job scoped to the org.
func (s *Store) Job(ctx context.Context, orgID, id string) (*bulk.Job, bool, error) {
	ctx, span := startSpan(ctx, "pgstore.Job", "SELECT")
	defer span.End()

	query := `SELECT ` + bulkColumns + ` FROM bulk_jobs WHERE org_id = $1 AND id = $2`
	j, err := scanJob(s.pool.QueryRow(ctx, query, orgID, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, spanErr(span, err)
	}
	return j, true, nil
}

// ListJobs returns the org's bulk jobs, newest first.
func (s *Store) ListJobs(ctx context.Context, orgID string) ([]*bulk.Job, error) {
	ctx, span := startSpan(ctx, "pgstore.ListJobs", "SELECT")
	defer span.End()

	query := `SELECT ` + bulkColumns + ` FROM bulk_jobs WHERE org_id = $1 ORDER BY created_at DESC`
	rows, err := s.pool.Query(ctx, query, orgID)
	if err != nil {
		return nil, spanErr(span, err)
	}
	defer rows.Close()

	var out []*bulk.Job
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, spanErr(span, err)
		}
		out = append(out, j)
	}
	return out, spanErr(span, rows.Err())
}

func scanJob(row pgx.Row) (*bulk.Job, error) {
	var j bulk.Job
	if err := row.Scan(&j.ID, &j.OrgID, &j.FileName, &j.FileLocator, &j.TotalRows,
		&j.ProcessedRows, &j.SuccessCount, &j.FailureCount, &j.Status, &j.CreatedBy, &j.CreatedAt); err != nil {
		return nil, err
	}
	return &j, nil
}
