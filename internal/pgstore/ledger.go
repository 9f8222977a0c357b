package pgstore

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/linnemanlabs/vet/internal/ledger"
)

// Account retrieves the org's credit account.
func (s *Store) Account(ctx context.Context, orgID string) (*ledger.Account, bool, error) {
	ctx, span := startSpan(ctx, "pgstore.Account", "SELECT")
	defer span.End()

	var a ledger.Account
	err := s.pool.QueryRow(ctx,
		`SELECT org_id, current_balance, monthly_limit, updated_at
		 FROM credit_accounts WHERE org_id = $1`, orgID,
	).Scan(&a.OrgID, &a.CurrentBalance, &a.MonthlyLimit, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, spanErr(span, err)
	}
	return &a, true, nil
}

// Debit decrements the balance in a single conditional update. The guard in
// the WHERE clause is what keeps concurrent debits from going negative.
func (s *Store) Debit(ctx context.Context, orgID string, amount int) (bool, error) {
	ctx, span := startSpan(ctx, "pgstore.Debit", "UPDATE")
	defer span.End()

	tag, err := s.pool.Exec(ctx,
		`UPDATE credit_accounts
		 SET current_balance = current_balance - $2, updated_at = now()
		 WHERE org_id = $1 AND current_balance >= $2`,
		orgID, amount,
	)
	if err != nil {
		return false, spanErr(span, err)
	}
	return tag.RowsAffected() == 1, nil
}
