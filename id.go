package mintledger

import "github.com/xraph/mintledger/id"

// ID is the primary identifier type for all mintledger entities.
type ID = id.ID

// Prefix identifies the entity type encoded in a TypeID.
type Prefix = id.Prefix
