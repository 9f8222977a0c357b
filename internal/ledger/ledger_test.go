package ledger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/linnemanlabs/go-core/log"
)

// mockStore implements Store.
type mockStore struct {
	account *Account
	getErr  error
	denied  bool
	debits  int
}

func (m *mockStore) Account(_ context.Context, _ string) (*Account, bool, error) {
	if m.getErr != nil {
		return nil, false, m.getErr
	}
	if m.account == nil {
		return nil, false, nil
	}
	cp := *m.account
	return &cp, true, nil
}

func (m *mockStore) Debit(_ context.Context, _ string, amount int) (bool, error) {
	if m.denied || m.account == nil || m.account.CurrentBalance < amount {
		return false, nil
	}
	m.account.CurrentBalance -= amount
	m.debits++
	return true, nil
}

func TestHasSufficientCredit(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		store   *mockStore
		want    bool
		wantErr bool
	}{
		{
			name:  "positive balance",
			store: &mockStore{account: &Account{OrgID: "org-1", CurrentBalance: 5, UpdatedAt: time.Now()}},
			want:  true,
		},
		{
			name:  "zero balance",
			store: &mockStore{account: &Account{OrgID: "org-1", CurrentBalance: 0}},
			want:  false,
		},
		{
			name:  "no account",
			store: &mockStore{},
			want:  false,
		},
		{
			name:    "store failure",
			store:   &mockStore{getErr: errors.New("db down")},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			l := New(tt.store, log.Nop(), nil)
			got, err := l.HasSufficientCredit(context.Background(), "org-1")
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("HasSufficientCredit: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDebit(t *testing.T) {
	t.Parallel()

	store := &mockStore{account: &Account{OrgID: "org-1", CurrentBalance: 2}}
	l := New(store, log.Nop(), nil)

	ok, err := l.Debit(context.Background(), "org-1", 1)
	if err != nil || !ok {
		t.Fatalf("Debit: ok=%v err=%v", ok, err)
	}
	if store.account.CurrentBalance != 1 {
		t.Errorf("balance = %d, want 1", store.account.CurrentBalance)
	}

	// drains to zero, then denies
	if ok, _ := l.Debit(context.Background(), "org-1", 1); !ok {
		t.Fatal("second debit should succeed")
	}
	if ok, err := l.Debit(context.Background(), "org-1", 1); err != nil || ok {
		t.Errorf("exhausted debit: ok=%v err=%v, want denied without error", ok, err)
	}
}
