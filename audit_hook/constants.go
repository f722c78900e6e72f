package audithook

// Action constants for audit events.
const (
	// Mint actions
	ActionMintCompleted = "mint.completed"
	ActionMintRejected  = "mint.rejected"

	// Treasury actions
	ActionTreasuryWithdrawn = "treasury.withdrawn"

	// Mint window actions
	ActionCostChanged   = "window.cost_changed"
	ActionPausedChanged = "window.paused_changed"
)

// Resource constants for audit events.
const (
	ResourceMint       = "mint"
	ResourceWithdrawal = "withdrawal"
	ResourceCollection = "collection"
)

// Category constants for audit events.
const (
	CategoryMinting  = "minting"
	CategoryTreasury = "treasury"
	CategoryAdmin    = "admin"
)

// Severity levels for audit events.
const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityError    = "error"
	SeverityCritical = "critical"
)

// Outcome values for audit events.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)
