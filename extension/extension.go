// Package extension provides the Forge extension adapter for mintledger.
//
// It implements the forge.Extension interface to integrate a mint ledger
// into a Forge application with DI registration and lifecycle management.
//
// Configuration can be provided programmatically via Option functions
// or via YAML configuration files under "extensions.mintledger" or
// "mintledger" keys.
package extension

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/xraph/forge"
	"github.com/xraph/grove"
	"github.com/xraph/vessel"

	"github.com/xraph/mintledger"
	"github.com/xraph/mintledger/collection"
	"github.com/xraph/mintledger/id"
	"github.com/xraph/mintledger/store"
	"github.com/xraph/mintledger/store/memory"
	"github.com/xraph/mintledger/store/mongo"
	"github.com/xraph/mintledger/store/postgres"
	"github.com/xraph/mintledger/store/sqlite"
	"github.com/xraph/mintledger/types"
)

// ExtensionName is the name registered with Forge.
const ExtensionName = "mintledger"

// ExtensionDescription is the human-readable description.
const ExtensionDescription = "Fixed-supply token mint ledger"

// ExtensionVersion is the semantic version.
const ExtensionVersion = "0.1.0"

// Ensure Extension implements forge.Extension at compile time.
var _ forge.Extension = (*Extension)(nil)

// Extension adapts mintledger as a Forge extension.
type Extension struct {
	*forge.BaseExtension

	config     Config
	engine     *mintledger.Ledger
	store      store.Store
	groveDB    *grove.DB
	ledgerOpts []mintledger.Option
}

// New creates a new mintledger Forge extension with the given options.
func New(opts ...Option) *Extension {
	e := &Extension{
		BaseExtension: forge.NewBaseExtension(ExtensionName, ExtensionVersion, ExtensionDescription),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Engine returns the underlying Ledger instance.
// This is nil until Register is called.
func (e *Extension) Engine() *mintledger.Ledger { return e.engine }

// Register implements [forge.Extension]. It loads configuration,
// initializes the ledger engine, and registers it in the DI container.
func (e *Extension) Register(fapp forge.App) error {
	if err := e.BaseExtension.Register(fapp); err != nil {
		return err
	}

	if err := e.loadConfiguration(); err != nil {
		return err
	}

	s, err := e.resolveStore()
	if err != nil {
		return err
	}
	e.store = s

	e.engine = mintledger.New(e.store, e.buildLedgerOpts()...)

	return vessel.Provide(fapp.Container(), func() (*mintledger.Ledger, error) {
		return e.engine, nil
	})
}

// Start implements [forge.Extension]. After migrating it loads the configured
// collection or deploys a new one.
func (e *Extension) Start(ctx context.Context) error {
	if e.engine == nil {
		return errors.New("mintledger: extension not initialized")
	}

	if !e.config.DisableMigrate {
		if err := e.engine.Start(ctx); err != nil {
			return err
		}
	}

	if err := e.bootCollection(ctx); err != nil {
		return err
	}

	e.MarkStarted()
	return nil
}

// Stop implements [forge.Extension].
func (e *Extension) Stop(_ context.Context) error {
	if e.engine != nil {
		if err := e.engine.Stop(); err != nil {
			e.MarkStopped()
			return err
		}
	}
	e.MarkStopped()
	return nil
}

// Health implements [forge.Extension].
func (e *Extension) Health(ctx context.Context) error {
	if e.store == nil {
		return errors.New("mintledger: store not initialized")
	}
	return e.store.Ping(ctx)
}

// resolveStore picks the programmatic store, then a grove-backed store for
// the configured driver, then memory.
func (e *Extension) resolveStore() (store.Store, error) {
	if e.store != nil {
		return e.store, nil
	}
	if e.groveDB == nil {
		return memory.New(), nil
	}

	switch e.config.Driver {
	case DriverPostgres:
		return postgres.New(e.groveDB), nil
	case DriverSQLite:
		return sqlite.New(e.groveDB), nil
	case DriverMongo:
		return mongo.New(e.groveDB), nil
	default:
		return nil, fmt.Errorf("mintledger: unsupported store driver %q", e.config.Driver)
	}
}

// bootCollection loads or deploys the collection named by the config.
func (e *Extension) bootCollection(ctx context.Context) error {
	switch {
	case e.config.CollectionID != "":
		collID, err := id.ParseCollectionID(e.config.CollectionID)
		if err != nil {
			return fmt.Errorf("mintledger: collection_id: %w", err)
		}
		return e.engine.Load(ctx, collID)

	case e.config.Deploy != nil:
		params, err := e.config.Deploy.params()
		if err != nil {
			return err
		}
		c, err := e.engine.Deploy(ctx, types.NewAccount(e.config.Deploy.Owner), params)
		if err != nil {
			return err
		}
		e.Logger().Info("mintledger: collection deployed",
			forge.F("collection_id", c.ID.String()),
			forge.F("symbol", c.Symbol),
		)
		if e.persistent() {
			e.Logger().Warn("mintledger: deploy block without collection_id deploys a new collection on every start; "+
				"set collection_id to keep minting into this one",
				forge.F("collection_id", c.ID.String()),
				forge.F("driver", e.config.Driver),
			)
		}
		return nil
	}
	return nil
}

// persistent reports whether the store outlives the process.
func (e *Extension) persistent() bool {
	_, inMemory := e.store.(*memory.Store)
	return e.store != nil && !inMemory
}

// params converts the YAML deploy block into deploy parameters.
func (d *DeployConfig) params() (collection.Params, error) {
	currency := d.Currency
	if currency == "" {
		currency = mintledger.DefaultCurrency
	}
	amount := d.Cost
	if amount == "" {
		amount = "0"
	}
	cost, err := types.Parse(amount, currency)
	if err != nil {
		return collection.Params{}, mintledger.ValidationError{Field: "deploy.cost", Message: err.Error()}
	}

	return collection.Params{
		Name:      d.Name,
		Symbol:    d.Symbol,
		Cost:      cost,
		MaxSupply: d.MaxSupply,
		OpensAt:   time.Unix(d.AllowMintingOn, 0).UTC(),
		BaseURI:   d.BaseURI,
	}, nil
}

// buildLedgerOpts constructs mintledger.Option values from the resolved config.
func (e *Extension) buildLedgerOpts() []mintledger.Option {
	opts := make([]mintledger.Option, 0, len(e.ledgerOpts)+1)

	if e.config.PluginTimeout > 0 {
		opts = append(opts, mintledger.WithPluginTimeout(e.config.PluginTimeout))
	}

	// Append any pass-through ledger options.
	opts = append(opts, e.ledgerOpts...)

	return opts
}

// --- Config Loading (mirrors grove/shield extension pattern) ---

// loadConfiguration loads config from YAML files or programmatic sources.
func (e *Extension) loadConfiguration() error {
	programmaticConfig := e.config

	// Try loading from config file.
	fileConfig, configLoaded := e.tryLoadFromConfigFile()

	if !configLoaded {
		if programmaticConfig.RequireConfig {
			return errors.New("mintledger: configuration is required but not found in config files; " +
				"ensure 'extensions.mintledger' or 'mintledger' key exists in your config")
		}

		// Use programmatic config merged with defaults.
		e.config = mergeWithDefaults(programmaticConfig)
	} else {
		// Config loaded from YAML -- merge with programmatic options.
		e.config = mergeConfigurations(fileConfig, programmaticConfig)
	}

	e.Logger().Debug("mintledger: configuration loaded",
		forge.F("disable_migrate", e.config.DisableMigrate),
		forge.F("driver", e.config.Driver),
		forge.F("collection_id", e.config.CollectionID),
		forge.F("deploy", e.config.Deploy != nil),
		forge.F("plugin_timeout", e.config.PluginTimeout),
	)

	return nil
}

// tryLoadFromConfigFile attempts to load config from YAML files.
func (e *Extension) tryLoadFromConfigFile() (Config, bool) {
	cm := e.App().Config()
	var cfg Config

	// Try "extensions.mintledger" first (namespaced pattern).
	if cm.IsSet("extensions.mintledger") {
		if err := cm.Bind("extensions.mintledger", &cfg); err == nil {
			e.Logger().Debug("mintledger: loaded config from file",
				forge.F("key", "extensions.mintledger"),
			)
			return cfg, true
		}
		e.Logger().Warn("mintledger: failed to bind extensions.mintledger config",
			forge.F("error", "bind failed"),
		)
	}

	// Try short "mintledger" key.
	if cm.IsSet("mintledger") {
		if err := cm.Bind("mintledger", &cfg); err == nil {
			e.Logger().Debug("mintledger: loaded config from file",
				forge.F("key", "mintledger"),
			)
			return cfg, true
		}
		e.Logger().Warn("mintledger: failed to bind mintledger config",
			forge.F("error", "bind failed"),
		)
	}

	return Config{}, false
}

// mergeWithDefaults fills zero-valued fields with defaults.
func mergeWithDefaults(cfg Config) Config {
	defaults := DefaultConfig()
	if cfg.Driver == "" {
		cfg.Driver = defaults.Driver
	}
	if cfg.PluginTimeout == 0 {
		cfg.PluginTimeout = defaults.PluginTimeout
	}
	return cfg
}

// mergeConfigurations merges YAML config with programmatic options.
// YAML config takes precedence for most fields; programmatic values fill gaps.
func mergeConfigurations(yamlConfig, programmaticConfig Config) Config {
	// Programmatic bool flags override when true.
	if programmaticConfig.DisableMigrate {
		yamlConfig.DisableMigrate = true
	}

	// String fields: YAML takes precedence.
	if yamlConfig.Driver == "" && programmaticConfig.Driver != "" {
		yamlConfig.Driver = programmaticConfig.Driver
	}
	if yamlConfig.CollectionID == "" && programmaticConfig.CollectionID != "" {
		yamlConfig.CollectionID = programmaticConfig.CollectionID
	}
	if yamlConfig.Deploy == nil && programmaticConfig.Deploy != nil {
		yamlConfig.Deploy = programmaticConfig.Deploy
	}

	// Duration fields: YAML takes precedence, programmatic fills gaps.
	if yamlConfig.PluginTimeout == 0 && programmaticConfig.PluginTimeout != 0 {
		yamlConfig.PluginTimeout = programmaticConfig.PluginTimeout
	}

	// Fill remaining zeros with defaults.
	return mergeWithDefaults(yamlConfig)
}
