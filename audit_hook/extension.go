// Package audithook bridges mintledger notifications to an audit trail backend.
//
// It defines a local Recorder interface so the package does not import an
// audit backend directly. Callers inject a RecorderFunc adapter at wiring
// time.
package audithook

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/xraph/mintledger"
	"github.com/xraph/mintledger/plugin"
)

// Compile-time interface checks.
var (
	_ plugin.Plugin          = (*Extension)(nil)
	_ plugin.OnMint          = (*Extension)(nil)
	_ plugin.OnMintRejected  = (*Extension)(nil)
	_ plugin.OnWithdraw      = (*Extension)(nil)
	_ plugin.OnCostChanged   = (*Extension)(nil)
	_ plugin.OnPausedChanged = (*Extension)(nil)
)

// Recorder is the interface that audit backends must implement.
type Recorder interface {
	Record(ctx context.Context, event *AuditEvent) error
}

// AuditEvent is a local representation of an audit event.
type AuditEvent struct {
	Action     string         `json:"action"`
	Resource   string         `json:"resource"`
	Category   string         `json:"category"`
	ResourceID string         `json:"resource_id,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	Outcome    string         `json:"outcome"`
	Severity   string         `json:"severity"`
	Reason     string         `json:"reason,omitempty"`
}

// RecorderFunc is an adapter to use a plain function as a Recorder.
type RecorderFunc func(ctx context.Context, event *AuditEvent) error

// Record implements Recorder.
func (f RecorderFunc) Record(ctx context.Context, event *AuditEvent) error {
	return f(ctx, event)
}

// Extension bridges mintledger notifications to an audit trail backend.
type Extension struct {
	recorder Recorder
	enabled  map[string]bool // nil = all enabled
	logger   *slog.Logger
}

// New creates an Extension that emits audit events through the provided Recorder.
func New(r Recorder, opts ...Option) *Extension {
	e := &Extension{
		recorder: r,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name implements plugin.Plugin.
func (e *Extension) Name() string { return "audit-hook" }

// ──────────────────────────────────────────────────
// Mint hooks
// ──────────────────────────────────────────────────

// OnMint implements plugin.OnMint.
func (e *Extension) OnMint(ctx context.Context, ev *plugin.MintEvent) error {
	meta := []any{
		"collection_id", ev.CollectionID.String(),
		"minter", ev.Minter.String(),
		"last_token_id", ev.LastTokenID,
		"total_supply", ev.TotalSupply,
	}
	resourceID := ""
	if ev.Receipt != nil {
		resourceID = ev.Receipt.ID.String()
		meta = append(meta,
			"first_token_id", ev.Receipt.FirstTokenID,
			"quantity", ev.Receipt.Quantity,
			"payment", ev.Receipt.Payment.Dec(),
			"currency", ev.Receipt.Payment.Currency,
		)
	}

	return e.record(ctx, ActionMintCompleted, SeverityInfo, OutcomeSuccess,
		ResourceMint, resourceID, CategoryMinting, nil,
		meta...,
	)
}

// OnMintRejected implements plugin.OnMintRejected. Precondition failures are
// warnings; anything else (store failures) is an error.
func (e *Extension) OnMintRejected(ctx context.Context, ev *plugin.MintRejectedEvent) error {
	severity := SeverityWarning
	if !mintledger.IsMintRejection(ev.Err) {
		severity = SeverityError
	}

	return e.record(ctx, ActionMintRejected, severity, OutcomeFailure,
		ResourceMint, "", CategoryMinting, ev.Err,
		"collection_id", ev.CollectionID.String(),
		"requester", ev.Requester.String(),
		"quantity", ev.Quantity,
		"payment", ev.Payment.Dec(),
		"rejection", mintledger.RejectionReason(ev.Err),
	)
}

// ──────────────────────────────────────────────────
// Treasury hooks
// ──────────────────────────────────────────────────

// OnWithdraw implements plugin.OnWithdraw.
func (e *Extension) OnWithdraw(ctx context.Context, ev *plugin.WithdrawEvent) error {
	resourceID := ""
	if ev.Withdrawal != nil {
		resourceID = ev.Withdrawal.ID.String()
	}

	return e.record(ctx, ActionTreasuryWithdrawn, SeverityInfo, OutcomeSuccess,
		ResourceWithdrawal, resourceID, CategoryTreasury, nil,
		"collection_id", ev.CollectionID.String(),
		"recipient", ev.Recipient.String(),
		"amount", ev.Amount.Dec(),
		"currency", ev.Amount.Currency,
	)
}

// ──────────────────────────────────────────────────
// Admin hooks
// ──────────────────────────────────────────────────

// OnCostChanged implements plugin.OnCostChanged.
func (e *Extension) OnCostChanged(ctx context.Context, ev *plugin.CostChangedEvent) error {
	return e.record(ctx, ActionCostChanged, SeverityInfo, OutcomeSuccess,
		ResourceCollection, ev.CollectionID.String(), CategoryAdmin, nil,
		"old_cost", ev.OldCost.Dec(),
		"new_cost", ev.NewCost.Dec(),
		"currency", ev.NewCost.Currency,
		"changed_by", ev.ChangedBy.String(),
	)
}

// OnPausedChanged implements plugin.OnPausedChanged.
func (e *Extension) OnPausedChanged(ctx context.Context, ev *plugin.PausedChangedEvent) error {
	return e.record(ctx, ActionPausedChanged, SeverityInfo, OutcomeSuccess,
		ResourceCollection, ev.CollectionID.String(), CategoryAdmin, nil,
		"paused", ev.Paused,
		"changed_by", ev.ChangedBy.String(),
	)
}

// ──────────────────────────────────────────────────
// Internal helpers
// ──────────────────────────────────────────────────

// record builds and sends an audit event if the action is enabled.
func (e *Extension) record(
	ctx context.Context,
	action, severity, outcome string,
	resource, resourceID, category string,
	err error,
	kvPairs ...any,
) error {
	if e.enabled != nil && !e.enabled[action] {
		return nil
	}

	meta := make(map[string]any, len(kvPairs)/2+1)
	for i := 0; i+1 < len(kvPairs); i += 2 {
		key, ok := kvPairs[i].(string)
		if !ok {
			key = fmt.Sprintf("%v", kvPairs[i])
		}
		meta[key] = kvPairs[i+1]
	}

	var reason string
	if err != nil {
		reason = err.Error()
		meta["error"] = err.Error()
	}

	evt := &AuditEvent{
		Action:     action,
		Resource:   resource,
		Category:   category,
		ResourceID: resourceID,
		Metadata:   meta,
		Outcome:    outcome,
		Severity:   severity,
		Reason:     reason,
	}

	if recErr := e.recorder.Record(ctx, evt); recErr != nil {
		e.logger.Warn("audit_hook: failed to record audit event",
			"action", action,
			"resource_id", resourceID,
			"error", recErr,
		)
	}
	return nil
}
