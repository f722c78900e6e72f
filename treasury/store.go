package treasury

import (
	"context"

	"github.com/xraph/mintledger/id"
)

// Store persists withdrawals. ListWithdrawals returns oldest first.
type Store interface {
	RecordWithdrawal(ctx context.Context, w *Withdrawal) error
	ListWithdrawals(ctx context.Context, collID id.CollectionID, opts ListOpts) ([]*Withdrawal, error)
}
