package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/pgdriver"
	"github.com/xraph/grove/migrate"

	"github.com/xraph/mintledger"
	"github.com/xraph/mintledger/collection"
	"github.com/xraph/mintledger/id"
	"github.com/xraph/mintledger/mint"
	mintstore "github.com/xraph/mintledger/store"
	"github.com/xraph/mintledger/treasury"
)

// compile-time interface check
var _ mintstore.Store = (*Store)(nil)

// Store implements store.Store using PostgreSQL via Grove ORM.
type Store struct {
	db *grove.DB
	pg *pgdriver.PgDB
}

// New creates a new PostgreSQL store backed by Grove ORM.
func New(db *grove.DB) *Store {
	return &Store{
		db: db,
		pg: pgdriver.Unwrap(db),
	}
}

// DB returns the underlying grove database for direct access.
func (s *Store) DB() *grove.DB { return s.db }

// Migrate creates the required tables and indexes using the grove orchestrator.
func (s *Store) Migrate(ctx context.Context) error {
	executor, err := migrate.NewExecutorFor(s.pg)
	if err != nil {
		return fmt.Errorf("mintledger/postgres: create migration executor: %w", err)
	}
	orch := migrate.NewOrchestrator(executor, Migrations)
	if _, err := orch.Migrate(ctx); err != nil {
		return fmt.Errorf("mintledger/postgres: migration failed: %w", err)
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
	_, err := s.pg.NewInsert(m).Exec(ctx)
	if err != nil {
		if isUniqueViolation(err) {
			return mintledger.ErrAlreadyExists
		}
		return fmt.Errorf("mintledger/postgres: create collection: %w", err)
	}
	return nil
}

func (s *Store) GetCollection(ctx context.Context, collID id.CollectionID) (*collection.Collection, error) {
	m := new(collectionModel)
	err := s.pg.NewSelect(m).
		Where("id = $1", collID.String()).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, mintledger.ErrCollectionNotFound
		}
		return nil, err
	}
	return fromCollectionModel(m)
}

func (s *Store) UpdateMintWindow(ctx context.Context, collID id.CollectionID, w collection.MintWindow) error {
	res, err := s.pg.NewUpdate((*collectionModel)(nil)).
		Set("opens_at = $1", w.OpensAt.UTC()).
		Set("cost = $2", w.Cost.Dec()).
		Set("paused = $3", w.Paused).
		Set("updated_at = $4", now()).
		Where("id = $5", collID.String()).
		Exec(ctx)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return mintledger.ErrCollectionNotFound
	}
	return nil
}

// ==================== Mint Store ====================

func (s *Store) RecordMint(ctx context.Context, r *mint.Receipt) error {
	m := toReceiptModel(r)
	_, err := s.pg.NewInsert(m).Exec(ctx)
	if err != nil {
		if isUniqueViolation(err) {
			return mintledger.ErrAlreadyExists
		}
		return fmt.Errorf("mintledger/postgres: record mint: %w", err)
	}
	return nil
}

func (s *Store) ListReceipts(ctx context.Context, collID id.CollectionID, opts mint.ListOpts) ([]*mint.Receipt, error) {
	var models []receiptModel
	q := s.pg.NewSelect(&models).Where("collection_id = $1", collID.String())

	if opts.Minter != "" {
		q = q.Where("minter = $2", opts.Minter.String())
	}
	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		q = q.Offset(opts.Offset)
	}
	q = q.OrderExpr("first_token_id ASC")

	if err := q.Scan(ctx); err != nil {
		return nil, err
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
	_, err := s.pg.NewInsert(m).Exec(ctx)
	if err != nil {
		if isUniqueViolation(err) {
			return mintledger.ErrAlreadyExists
		}
		return fmt.Errorf("mintledger/postgres: record withdrawal: %w", err)
	}
	return nil
}

func (s *Store) ListWithdrawals(ctx context.Context, collID id.CollectionID, opts treasury.ListOpts) ([]*treasury.Withdrawal, error) {
	var models []withdrawalModel
	q := s.pg.NewSelect(&models).Where("collection_id = $1", collID.String())

	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		q = q.Offset(opts.Offset)
	}
	q = q.OrderExpr("withdrawn_at ASC, id ASC")

	if err := q.Scan(ctx); err != nil {
		return nil, err
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

// isNoRows checks for the standard sql.ErrNoRows sentinel.
func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// isUniqueViolation reports whether the error is a unique constraint violation.
func isUniqueViolation(err error) bool {
	var pg *pgconn.PgError
	return errors.As(err, &pg) && pg.Code == "23505"
}
