package extension

import "time"

// Store drivers understood by the extension.
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMongo    = "mongo"
)

// Config holds the mintledger extension configuration.
// Fields can be set programmatically via Option functions or loaded from
// YAML configuration files (under "extensions.mintledger" or "mintledger" keys).
type Config struct {
	// DisableMigrate prevents auto-migration on start.
	DisableMigrate bool `json:"disable_migrate" mapstructure:"disable_migrate" yaml:"disable_migrate"`

	// Driver selects the store backend built around the grove.DB passed with
	// WithGroveDB: "postgres", "sqlite" or "mongo". Without a grove.DB the
	// memory store is used (default: "memory").
	Driver string `json:"driver" mapstructure:"driver" yaml:"driver"`

	// CollectionID loads a previously deployed collection on start.
	CollectionID string `json:"collection_id" mapstructure:"collection_id" yaml:"collection_id"`

	// Deploy creates a new collection on start when CollectionID is empty.
	Deploy *DeployConfig `json:"deploy,omitempty" mapstructure:"deploy" yaml:"deploy,omitempty"`

	// PluginTimeout bounds each plugin hook call (default: 5s).
	PluginTimeout time.Duration `json:"plugin_timeout" mapstructure:"plugin_timeout" yaml:"plugin_timeout"`

	// RequireConfig requires config to be present in YAML files.
	// If true and no config is found, Register returns an error.
	RequireConfig bool `json:"-" yaml:"-"`
}

// DeployConfig describes a collection to deploy on start.
type DeployConfig struct {
	Owner     string `json:"owner" mapstructure:"owner" yaml:"owner"`
	Name      string `json:"name" mapstructure:"name" yaml:"name"`
	Symbol    string `json:"symbol" mapstructure:"symbol" yaml:"symbol"`
	MaxSupply uint64 `json:"max_supply" mapstructure:"max_supply" yaml:"max_supply"`
	BaseURI   string `json:"base_uri" mapstructure:"base_uri" yaml:"base_uri"`

	// Cost is the per-token price in the smallest currency unit, base 10.
	Cost     string `json:"cost" mapstructure:"cost" yaml:"cost"`
	Currency string `json:"currency" mapstructure:"currency" yaml:"currency"`

	// AllowMintingOn is the open time in Unix seconds.
	AllowMintingOn int64 `json:"allow_minting_on" mapstructure:"allow_minting_on" yaml:"allow_minting_on"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Driver:        DriverMemory,
		PluginTimeout: 5 * time.Second,
	}
}
