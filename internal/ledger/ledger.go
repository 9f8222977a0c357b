// Package ledger meters verification credits for an organization.
package ledger

import (
	"context"
	"time"

	"github.com/linnemanlabs/go-core/log"
)

// Account is an organization's credit account.
type Account struct {
	OrgID          string    `json:"org_id"`
	CurrentBalance int       `json:"current_balance"`
	MonthlyLimit   int       `json:"monthly_limit"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Store is the persistence interface for credit accounts.
//
// Debit must be a single atomic conditional update at the storage layer
// (decrement-if-balance-sufficient). A read-then-write implementation would
// let concurrent verifications drive the balance negative.
type Store interface {
	Account(ctx context.Context, orgID string) (*Account, bool, error)
	Debit(ctx context.Context, orgID string, amount int) (bool, error)
}

// Ledger admits or denies verifications against an org's credit balance.
type Ledger struct {
	store   Store
	logger  log.Logger
	metrics *Metrics
}

// New creates a Ledger. metrics may be nil.
func New(store Store, logger log.Logger, metrics *Metrics) *Ledger {
	if logger == nil {
		logger = log.Nop()
	}
	return &Ledger{store: store, logger: logger, metrics: metrics}
}

// HasSufficientCredit reports whether the org can start a verification.
// Pure read; holds no lock. A positive answer can race with a concurrent
// debit, which the orchestrator accepts (the later Debit is the gate).
func (l *Ledger) HasSufficientCredit(ctx context.Context, orgID string) (bool, error) {
	acct, ok, err := l.store.Account(ctx, orgID)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}
	return acct.CurrentBalance > 0, nil
}

// Account returns the org's credit account.
func (l *Ledger) Account(ctx context.Context, orgID string) (*Account, bool, error) {
	return l.store.Account(ctx, orgID)
}

// Debit removes amount credits from the org's balance. It fails softly:
// when the balance is insufficient it returns false with no mutation.
func (l *Ledger) Debit(ctx context.Context, orgID string, amount int) (bool, error) {
	ok, err := l.store.Debit(ctx, orgID, amount)
	if err != nil {
		return false, err
	}
	if l.metrics != nil {
		if ok {
			l.metrics.DebitsTotal.Add(float64(amount))
		} else {
			l.metrics.DebitsDenied.Inc()
		}
	}
	if !ok {
		l.logger.Warn(ctx, "credit debit denied", "org_id", orgID, "amount", amount)
	}
	return ok, nil
}
