// Package mintledger provides an embeddable ledger for minting sequentially
// numbered collectible tokens against a fixed supply.
//
// Mintledger is designed as a library, not a service. A Ledger owns exactly one
// collection and provides:
//
//   - Paid minting of one or more tokens per call with ids 1, 2, 3, ...
//   - A supply cap, an open time, a per-token price and a pause switch
//   - Ownership queries (OwnerOf, BalanceOf, WalletOfOwner) and token URIs
//   - A treasury of collected payments that only the owner can withdraw
//   - Pluggable persistence (memory, PostgreSQL, SQLite, MongoDB)
//   - Plugin notifications for audit trails and metrics
//
// # Quick Start
//
//	import (
//	    "github.com/xraph/mintledger"
//	    "github.com/xraph/mintledger/collection"
//	    "github.com/xraph/mintledger/store/memory"
//	    "github.com/xraph/mintledger/types"
//	)
//
//	l := mintledger.New(memory.New())
//	if err := l.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer l.Stop()
//
//	owner := types.NewAccount("0xA11CE")
//	_, err := l.Deploy(ctx, owner, collection.Params{
//	    Name:      "Dapp Punks",
//	    Symbol:    "DP",
//	    Cost:      types.Ether(10),
//	    MaxSupply: 25,
//	    OpensAt:   time.Now(),
//	    BaseURI:   "ipfs://QmQ2jnDYecFhrf3asEWjyjZRX1pZSsNWG3qHzmNDvXa9qg/",
//	})
//
//	ids, err := l.Mint(ctx, minter, 3, types.Ether(30))  // [1 2 3]
//	uri, _ := l.TokenURI(ids[0])                         // ipfs://.../1.json
//	amount, err := l.Withdraw(ctx, owner)                // Ξ30.00
//
// # Mint Rules
//
// A mint call either succeeds completely or changes nothing. Failures are
// reported in this order: ErrInvalidQuantity, ErrNotYetOpen, ErrPaused,
// ErrCapacityExceeded, ErrInsufficientPayment. Overpayment is kept in the
// treasury. Each successful call emits one OnMint notification with the
// highest id it created.
//
// # Money
//
// Amounts are 256-bit unsigned integers in the smallest unit of the currency
// (wei for ETH). There is no floating point anywhere.
//
// # Persistence
//
// Every state change writes exactly one record (a mint receipt, a withdrawal
// or a mint window update) before the in-memory state changes. Load rebuilds
// a ledger from those records:
//
//	l := mintledger.New(pgStore)
//	err := l.Load(ctx, collectionID)
//
// # TypeID
//
// Records use TypeID identifiers:
//
//	coll_01h2xcejqtf2nbrexx3vqjhp41  // Collection ID
//	mint_01h2xcejqtf2nbrexx3vqjhp41  // Mint receipt ID
//	wdr_01h455vb4pex5vsknk084sn02q   // Withdrawal ID
package mintledger
