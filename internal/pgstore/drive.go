package pgstore

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/linnemanlabs/vet/internal/drive"
)

// Integration retrieves the org's drive connection.
func (s *Store) Integration(ctx context.Context, orgID string) (*drive.Integration, bool, error) {
	ctx, span := startSpan(ctx, "pgstore.Integration", "SELECT")
	defer span.End()

	var (
		in          drive.Integration
		connectedAt *time.Time
	)
	err := s.pool.QueryRow(ctx,
		`SELECT org_id, connected, email, access_token, refresh_token, connected_at
		 FROM drive_integrations WHERE org_id = $1`, orgID,
	).Scan(&in.OrgID, &in.Connected, &in.Email, &in.AccessToken, &in.RefreshToken, &connectedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, spanErr(span, err)
	}
	if connectedAt != nil {
		in.ConnectedAt = *connectedAt
	}
	return &in, true, nil
}

// SaveIntegration upserts the org's drive connection.
func (s *Store) SaveIntegration(ctx context.Context, in *drive.Integration) error {
	ctx, span := startSpan(ctx, "pgstore.SaveIntegration", "UPSERT")
	defer span.End()

	_, err := s.pool.Exec(ctx,
		`INSERT INTO drive_integrations (org_id, connected, email, access_token, refresh_token, connected_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (org_id) DO UPDATE SET
		 	connected     = EXCLUDED.connected,
		 	email         = EXCLUDED.email,
		 	access_token  = EXCLUDED.access_token,
		 	refresh_token = EXCLUDED.refresh_token,
		 	connected_at  = EXCLUDED.connected_at`,
		in.OrgID, in.Connected, in.Email, in.AccessToken, in.RefreshToken, in.ConnectedAt,
	)
	return spanErr(span, err)
}
