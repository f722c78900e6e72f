package collection

import (
	"context"

	"github.com/xraph/mintledger/id"
)

type Store interface {
	CreateCollection(ctx context.Context, c *Collection) error
	GetCollection(ctx context.Context, collID id.CollectionID) (*Collection, error)
	UpdateMintWindow(ctx context.Context, collID id.CollectionID, w MintWindow) error
}
