// Package pgstore provides the PostgreSQL implementation of every domain
// store: credit accounts, vendors, verifications, reports, branding, bulk
// jobs, drive integrations, and the audit trail.
package pgstore

import (
	"context"
	_ "embed"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jackc/pgx/v5/pgxpool"
)

var tracer = otel.Tracer("github.com/linnemanlabs/vet/internal/pgstore")

//go:embed schema.sql
var schema string

// Store persists all domain state in PostgreSQL. One Store serves every
// domain interface; callers depend only on the slice they need.
type Store struct {
	pool *pgxpool.Pool
}

// New applies the schema and returns a ready Store over the given pool.
func New(ctx context.Context, pool *pgxpool.Pool) (*Store, error) {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{pool: pool}, nil
}

// Close shuts down the connection pool.
func (s *Store) Close() {
	s.pool.Close()
}

func startSpan(ctx context.Context, name, op string) (context.Context, trace.Span) {
	return tracer.Start(ctx, name, trace.WithAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation.name", op),
	))
}

func spanErr(span trace.Span, err error) error {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}
