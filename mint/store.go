package mint

import (
	"context"

	"github.com/xraph/mintledger/id"
)

// Store persists receipts. ListReceipts returns receipts ordered by
// FirstTokenID ascending.
type Store interface {
	RecordMint(ctx context.Context, r *Receipt) error
	ListReceipts(ctx context.Context, collID id.CollectionID, opts ListOpts) ([]*Receipt, error)
}
