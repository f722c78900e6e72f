// Package treasury defines owner withdrawals from the collected payments.
package treasury

import (
	"time"

	"github.com/xraph/mintledger/id"
	"github.com/xraph/mintledger/types"
)

type Withdrawal struct {
	ID           id.WithdrawalID `json:"id"`
	CollectionID id.CollectionID `json:"collection_id"`
	Recipient    types.Account   `json:"recipient"`
	Amount       types.Money     `json:"amount"`
	WithdrawnAt  time.Time       `json:"withdrawn_at"`
}

type ListOpts struct {
	Limit  int
	Offset int
}
