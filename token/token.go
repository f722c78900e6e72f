// Package token describes a minted token as seen by readers of the ledger.
package token

import (
	"strconv"

	"github.com/xraph/mintledger/id"
	"github.com/xraph/mintledger/types"
)

// Token is a read view of a minted token.
type Token struct {
	ID     uint64        `json:"id"`
	Owner  types.Account `json:"owner"`
	MintID id.MintID     `json:"mint_id"`
	URI    string        `json:"uri"`
}

// URI builds the metadata locator for a token: the base URI, the decimal id
// and a ".json" suffix. No separator is inserted.
func URI(baseURI string, tokenID uint64) string {
	return baseURI + strconv.FormatUint(tokenID, 10) + ".json"
}
