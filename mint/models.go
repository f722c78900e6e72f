// Package mint defines the durable record of a successful mint call.
package mint

import (
	"time"

	"github.com/xraph/mintledger/id"
	"github.com/xraph/mintledger/types"
)

// Receipt records one successful mint call. The call created the tokens
// FirstTokenID through FirstTokenID+Quantity-1, all owned by Minter.
type Receipt struct {
	ID           id.MintID       `json:"id"`
	CollectionID id.CollectionID `json:"collection_id"`
	Minter       types.Account   `json:"minter"`
	FirstTokenID uint64          `json:"first_token_id"`
	Quantity     uint64          `json:"quantity"`
	UnitCost     types.Money     `json:"unit_cost"`
	Payment      types.Money     `json:"payment"`
	MintedAt     time.Time       `json:"minted_at"`
}

// LastTokenID returns the highest id created by the call.
func (r *Receipt) LastTokenID() uint64 {
	return r.FirstTokenID + r.Quantity - 1
}

// TokenIDs returns the ids created by the call in ascending order.
func (r *Receipt) TokenIDs() []uint64 {
	ids := make([]uint64, r.Quantity)
	for i := range ids {
		ids[i] = r.FirstTokenID + uint64(i)
	}
	return ids
}

// Contains reports whether tokenID was created by the call.
func (r *Receipt) Contains(tokenID uint64) bool {
	return tokenID >= r.FirstTokenID && tokenID <= r.LastTokenID()
}

type ListOpts struct {
	Minter types.Account
	Limit  int
	Offset int
}
