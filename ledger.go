package mintledger

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/xraph/mintledger/collection"
	"github.com/xraph/mintledger/id"
	"github.com/xraph/mintledger/mint"
	"github.com/xraph/mintledger/plugin"
	"github.com/xraph/mintledger/store"
	"github.com/xraph/mintledger/treasury"
	"github.com/xraph/mintledger/types"
)

// DefaultCurrency is used when deploy parameters leave the cost currency empty.
const DefaultCurrency = "eth"

// Ledger is the mint engine for a single collection. All mutable state sits
// behind one lock; every mutation persists exactly one record before the
// in-memory state changes.
type Ledger struct {
	store   store.Store
	plugins *plugin.Registry
	logger  *slog.Logger
	clock   Clock

	mu       sync.RWMutex
	coll     *collection.Collection
	owners   []types.Account
	wallets  map[types.Account][]uint64
	receipts []receiptRef
	treasury types.Money
}

// receiptRef maps the first token of a mint call to its receipt.
type receiptRef struct {
	first uint64
	id    id.MintID
}

// New creates a new Ledger instance. The ledger has no collection until
// Deploy or Load is called.
func New(s store.Store, opts ...Option) *Ledger {
	l := &Ledger{
		store:   s,
		plugins: plugin.NewRegistry(),
		logger:  slog.Default(),
		clock:   systemClock{},
		wallets: make(map[types.Account][]uint64),
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// Option configures a Ledger instance.
type Option func(*Ledger)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Ledger) {
		l.logger = logger
		l.plugins.WithLogger(logger)
	}
}

// WithPlugin registers a plugin.
func WithPlugin(p plugin.Plugin) Option {
	return func(l *Ledger) {
		_ = l.plugins.Register(p) //nolint:errcheck // best-effort plugin registration during init
	}
}

// WithPluginTimeout bounds each plugin hook call.
func WithPluginTimeout(d time.Duration) Option {
	return func(l *Ledger) {
		l.plugins.WithTimeout(d)
	}
}

// WithClock replaces the wall clock.
func WithClock(c Clock) Option {
	return func(l *Ledger) {
		l.clock = c
	}
}

// Start migrates the store and initializes plugins.
func (l *Ledger) Start(ctx context.Context) error {
	if err := l.store.Migrate(ctx); err != nil {
		return fmt.Errorf("mintledger: migrate: %w", err)
	}

	l.plugins.EmitInit(ctx, l)

	l.logger.Info("mintledger started",
		"plugins", l.plugins.Count(),
	)

	return nil
}

// Stop shuts down the Ledger.
func (l *Ledger) Stop() error {
	ctx := context.Background()
	l.plugins.EmitShutdown(ctx)

	return l.store.Close()
}

// Store returns the underlying store.
func (l *Ledger) Store() store.Store { return l.store }

// Plugins returns the plugin registry.
func (l *Ledger) Plugins() *plugin.Registry { return l.plugins }

// ──────────────────────────────────────────────────
// Deploy / Load
// ──────────────────────────────────────────────────

// Deploy creates the collection with deployer as its permanent owner. The
// open time is truncated to whole seconds and the window starts unpaused.
func (l *Ledger) Deploy(ctx context.Context, deployer types.Account, p collection.Params) (*collection.Collection, error) {
	if err := validateParams(deployer, &p); err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.coll != nil {
		return nil, ErrAlreadyDeployed
	}

	now := l.clock.Now().UTC()
	c := &collection.Collection{
		Entity:    types.NewEntityAt(now),
		ID:        id.NewCollectionID(),
		Name:      p.Name,
		Symbol:    p.Symbol,
		MaxSupply: p.MaxSupply,
		BaseURI:   p.BaseURI,
		Owner:     deployer,
		Currency:  p.Cost.Currency,
		Window: collection.MintWindow{
			OpensAt: time.Unix(p.OpensAt.Unix(), 0).UTC(),
			Cost:    p.Cost,
		},
	}

	if err := l.store.CreateCollection(ctx, c); err != nil {
		return nil, fmt.Errorf("mintledger: create collection: %w", err)
	}

	l.reset(c)

	l.logger.Info("collection deployed",
		"collection_id", c.ID.String(),
		"name", c.Name,
		"symbol", c.Symbol,
		"max_supply", c.MaxSupply,
		"cost", c.Window.Cost.String(),
		"opens_at", c.Window.OpensAt.Unix(),
		"owner", c.Owner.String(),
	)

	out := *c
	return &out, nil
}

func validateParams(deployer types.Account, p *collection.Params) error {
	p.Name = strings.TrimSpace(p.Name)
	p.Symbol = strings.TrimSpace(p.Symbol)
	p.Cost.Currency = strings.ToLower(strings.TrimSpace(p.Cost.Currency))
	if p.Cost.Currency == "" {
		p.Cost.Currency = DefaultCurrency
	}

	switch {
	case deployer.IsZero():
		return ValidationError{Field: "deployer", Message: "must not be empty"}
	case p.Name == "":
		return ValidationError{Field: "name", Message: "must not be empty"}
	case p.Symbol == "":
		return ValidationError{Field: "symbol", Message: "must not be empty"}
	case p.MaxSupply == 0:
		return ValidationError{Field: "max_supply", Message: "must be greater than zero"}
	case p.MaxSupply > math.MaxInt64:
		return ValidationError{Field: "max_supply", Message: "must fit in a signed 64-bit column"}
	}
	return nil
}

// Load rebuilds the ledger from a previously deployed collection. Receipts
// must cover token ids 1..N without gaps and the treasury must equal the
// collected payments minus withdrawals.
func (l *Ledger) Load(ctx context.Context, collID id.CollectionID) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.coll != nil {
		return ErrAlreadyDeployed
	}

	c, err := l.store.GetCollection(ctx, collID)
	if err != nil {
		return fmt.Errorf("mintledger: load collection %s: %w", collID, err)
	}

	receipts, err := l.store.ListReceipts(ctx, collID, mint.ListOpts{})
	if err != nil {
		return fmt.Errorf("mintledger: load receipts: %w", err)
	}

	withdrawals, err := l.store.ListWithdrawals(ctx, collID, treasury.ListOpts{})
	if err != nil {
		return fmt.Errorf("mintledger: load withdrawals: %w", err)
	}

	balance, err := replayTreasury(c, receipts, withdrawals)
	if err != nil {
		return err
	}

	l.reset(c)
	for _, r := range receipts {
		l.apply(r)
	}
	l.treasury = balance

	l.logger.Info("collection loaded",
		"collection_id", c.ID.String(),
		"total_supply", len(l.owners),
		"receipts", len(receipts),
		"withdrawals", len(withdrawals),
		"treasury", balance.String(),
	)

	return nil
}

// replayTreasury checks that receipts tile [1, N] within max supply and
// returns payments minus withdrawals.
func replayTreasury(c *collection.Collection, receipts []*mint.Receipt, withdrawals []*treasury.Withdrawal) (types.Money, error) {
	next := uint64(1)
	paid := types.Zero(c.Currency)
	for _, r := range receipts {
		if r.Quantity == 0 || r.FirstTokenID != next {
			return types.Money{}, fmt.Errorf("%w: receipt %s starts at %d, want %d", ErrCorruptState, r.ID, r.FirstTokenID, next)
		}
		if r.Payment.Currency != c.Currency {
			return types.Money{}, fmt.Errorf("%w: receipt %s paid in %q", ErrCorruptState, r.ID, r.Payment.Currency)
		}
		next += r.Quantity

		var ok bool
		if paid, ok = paid.CheckedAdd(r.Payment); !ok {
			return types.Money{}, fmt.Errorf("%w: total payments", ErrAmountOverflow)
		}
	}
	if next-1 > c.MaxSupply {
		return types.Money{}, fmt.Errorf("%w: %d tokens exceed max supply %d", ErrCorruptState, next-1, c.MaxSupply)
	}

	withdrawn := types.Zero(c.Currency)
	for _, w := range withdrawals {
		if w.Amount.Currency != c.Currency {
			return types.Money{}, fmt.Errorf("%w: withdrawal %s paid in %q", ErrCorruptState, w.ID, w.Amount.Currency)
		}
		var ok bool
		if withdrawn, ok = withdrawn.CheckedAdd(w.Amount); !ok {
			return types.Money{}, fmt.Errorf("%w: total withdrawals", ErrAmountOverflow)
		}
	}
	if withdrawn.GreaterThan(paid) {
		return types.Money{}, fmt.Errorf("%w: withdrawn %s exceeds collected %s", ErrCorruptState, withdrawn, paid)
	}

	return paid.Subtract(withdrawn), nil
}

// reset installs c as the ledger's collection with empty ownership state.
// Callers hold l.mu.
func (l *Ledger) reset(c *collection.Collection) {
	l.coll = c
	l.owners = make([]types.Account, 0, min(c.MaxSupply, 1024))
	l.wallets = make(map[types.Account][]uint64)
	l.receipts = nil
	l.treasury = types.Zero(c.Currency)
}

// apply assigns the receipt's token ids to its minter. Callers hold l.mu.
func (l *Ledger) apply(r *mint.Receipt) {
	for i := uint64(0); i < r.Quantity; i++ {
		tokenID := r.FirstTokenID + i
		l.owners = append(l.owners, r.Minter)
		l.wallets[r.Minter] = append(l.wallets[r.Minter], tokenID)
	}
	l.receipts = append(l.receipts, receiptRef{first: r.FirstTokenID, id: r.ID})
}
