package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/mongodriver"

	"github.com/xraph/mintledger"
	"github.com/xraph/mintledger/collection"
	"github.com/xraph/mintledger/id"
	"github.com/xraph/mintledger/mint"
	mintstore "github.com/xraph/mintledger/store"
	"github.com/xraph/mintledger/treasury"
)

// Collection name constants.
const (
	colCollections = "mintledger_collections"
	colReceipts    = "mintledger_receipts"
	colWithdrawals = "mintledger_withdrawals"
)

// compile-time interface check
var _ mintstore.Store = (*Store)(nil)

// Store implements store.Store using MongoDB via Grove ORM.
type Store struct {
	db  *grove.DB
	mdb *mongodriver.MongoDB
}

// New creates a new MongoDB store backed by Grove ORM.
func New(db *grove.DB) *Store {
	return &Store{
		db:  db,
		mdb: mongodriver.Unwrap(db),
	}
}

// DB returns the underlying grove database for direct access.
func (s *Store) DB() *grove.DB { return s.db }

// Migrate creates indexes for all mintledger collections.
func (s *Store) Migrate(ctx context.Context) error {
	indexes := migrationIndexes()

	for col, models := range indexes {
		if len(models) == 0 {
			continue
		}
		_, err := s.mdb.Collection(col).Indexes().CreateMany(ctx, models)
		if err != nil {
			return fmt.Errorf("mintledger/mongo: migrate %s indexes: %w", col, err)
		}
	}
	return nil
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// ==================== Collection Store ====================

func (s *Store) CreateCollection(ctx context.Context, c *collection.Collection) error {
	m := toCollectionModel(c)
	_, err := s.mdb.NewInsert(m).Exec(ctx)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return mintledger.ErrAlreadyExists
		}
		return fmt.Errorf("mintledger/mongo: create collection: %w", err)
	}
	return nil
}

func (s *Store) GetCollection(ctx context.Context, collID id.CollectionID) (*collection.Collection, error) {
	var m collectionModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": collID.String()}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, mintledger.ErrCollectionNotFound
		}
		return nil, fmt.Errorf("mintledger/mongo: get collection: %w", err)
	}
	return fromCollectionModel(&m)
}

func (s *Store) UpdateMintWindow(ctx context.Context, collID id.CollectionID, w collection.MintWindow) error {
	res, err := s.mdb.NewUpdate((*collectionModel)(nil)).
		Filter(bson.M{"_id": collID.String()}).
		Set("window", toMintWindowModel(w)).
		Set("updated_at", now()).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("mintledger/mongo: update mint window: %w", err)
	}
	if res.MatchedCount() == 0 {
		return mintledger.ErrCollectionNotFound
	}
	return nil
}

// ==================== Mint Store ====================

func (s *Store) RecordMint(ctx context.Context, r *mint.Receipt) error {
	m := toReceiptModel(r)
	_, err := s.mdb.NewInsert(m).Exec(ctx)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return mintledger.ErrAlreadyExists
		}
		return fmt.Errorf("mintledger/mongo: record mint: %w", err)
	}
	return nil
}

func (s *Store) ListReceipts(ctx context.Context, collID id.CollectionID, opts mint.ListOpts) ([]*mint.Receipt, error) {
	var models []receiptModel
	filter := bson.M{"collection_id": collID.String()}
	if opts.Minter != "" {
		filter["minter"] = opts.Minter.String()
	}

	q := s.mdb.NewFind(&models).
		Filter(filter).
		Sort(bson.D{{Key: "first_token_id", Value: 1}})

	if opts.Limit > 0 {
		q = q.Limit(int64(opts.Limit))
	}
	if opts.Offset > 0 {
		q = q.Skip(int64(opts.Offset))
	}

	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("mintledger/mongo: list receipts: %w", err)
	}

	result := make([]*mint.Receipt, len(models))
	for i := range models {
		r, err := fromReceiptModel(&models[i])
		if err != nil {
			return nil, err
		}
		result[i] = r
	}
	return result, nil
}

// ==================== Treasury Store ====================

func (s *Store) RecordWithdrawal(ctx context.Context, w *treasury.Withdrawal) error {
	m := toWithdrawalModel(w)
	_, err := s.mdb.NewInsert(m).Exec(ctx)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return mintledger.ErrAlreadyExists
		}
		return fmt.Errorf("mintledger/mongo: record withdrawal: %w", err)
	}
	return nil
}

func (s *Store) ListWithdrawals(ctx context.Context, collID id.CollectionID, opts treasury.ListOpts) ([]*treasury.Withdrawal, error) {
	var models []withdrawalModel
	q := s.mdb.NewFind(&models).
		Filter(bson.M{"collection_id": collID.String()}).
		Sort(bson.D{{Key: "withdrawn_at", Value: 1}, {Key: "_id", Value: 1}})

	if opts.Limit > 0 {
		q = q.Limit(int64(opts.Limit))
	}
	if opts.Offset > 0 {
		q = q.Skip(int64(opts.Offset))
	}

	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("mintledger/mongo: list withdrawals: %w", err)
	}

	result := make([]*treasury.Withdrawal, len(models))
	for i := range models {
		w, err := fromWithdrawalModel(&models[i])
		if err != nil {
			return nil, err
		}
		result[i] = w
	}
	return result, nil
}

// ==================== Helpers ====================

// now returns the current UTC time.
func now() time.Time {
	return time.Now().UTC()
}

// isNoDocuments checks if an error wraps mongo.ErrNoDocuments.
func isNoDocuments(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}

// migrationIndexes returns the index definitions for all mintledger collections.
func migrationIndexes() map[string][]mongo.IndexModel {
	return map[string][]mongo.IndexModel{
		colCollections: {
			{Keys: bson.D{{Key: "owner", Value: 1}}},
		},
		colReceipts: {
			{
				Keys:    bson.D{{Key: "collection_id", Value: 1}, {Key: "first_token_id", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			{Keys: bson.D{{Key: "collection_id", Value: 1}, {Key: "minter", Value: 1}}},
		},
		colWithdrawals: {
			{Keys: bson.D{{Key: "collection_id", Value: 1}, {Key: "withdrawn_at", Value: 1}}},
		},
	}
}
