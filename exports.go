package mintledger

import "github.com/xraph/mintledger/types"

// Re-export common types for convenience so users don't have to import types package.

// Money is re-exported from types package.
type Money = types.Money

// Account is re-exported from types package.
type Account = types.Account

// Entity is re-exported from types package.
type Entity = types.Entity

// Re-export Money and Account constructors
var (
	Wei        = types.Wei
	Ether      = types.Ether
	USD        = types.USD
	Zero       = types.Zero
	Sum        = types.Sum
	NewAccount = types.NewAccount
)

// Re-export Entity constructor
var NewEntity = types.NewEntity
