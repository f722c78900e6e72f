// Package observability provides a metrics extension for mintledger that
// records mint, treasury and admin event counts via a MetricFactory.
package observability

import (
	"context"

	"github.com/xraph/mintledger"
	"github.com/xraph/mintledger/plugin"
)

// Ensure MetricsExtension implements required interfaces.
var (
	_ plugin.Plugin          = (*MetricsExtension)(nil)
	_ plugin.OnInit          = (*MetricsExtension)(nil)
	_ plugin.OnMint          = (*MetricsExtension)(nil)
	_ plugin.OnMintRejected  = (*MetricsExtension)(nil)
	_ plugin.OnWithdraw      = (*MetricsExtension)(nil)
	_ plugin.OnCostChanged   = (*MetricsExtension)(nil)
	_ plugin.OnPausedChanged = (*MetricsExtension)(nil)
)

// Counter interface for metric counters.
type Counter interface {
	Inc()
	Add(float64)
}

// Histogram interface for metric histograms.
type Histogram interface {
	Observe(float64)
}

// MetricFactory creates metrics.
type MetricFactory interface {
	Counter(name string) Counter
	Histogram(name string) Histogram
}

// MetricsExtension records collection-wide lifecycle metrics.
// Register it as a mintledger plugin to track minting automatically.
type MetricsExtension struct {
	factory MetricFactory

	// Mint metrics
	MintCompleted Counter
	TokensMinted  Counter
	MintQuantity  Histogram
	MintRejected  map[string]Counter

	// Treasury metrics
	Withdrawals Counter

	// Admin metrics
	CostChanged   Counter
	PausedChanged Counter
}

// NewMetricsExtension creates a MetricsExtension with the provided MetricFactory.
func NewMetricsExtension(factory MetricFactory) *MetricsExtension {
	m := &MetricsExtension{
		factory: factory,

		MintCompleted: factory.Counter("mintledger.mint.completed"),
		TokensMinted:  factory.Counter("mintledger.mint.tokens"),
		MintQuantity:  factory.Histogram("mintledger.mint.quantity"),
		MintRejected:  make(map[string]Counter),

		Withdrawals: factory.Counter("mintledger.treasury.withdrawals"),

		CostChanged:   factory.Counter("mintledger.window.cost_changed"),
		PausedChanged: factory.Counter("mintledger.window.paused_changed"),
	}
	for _, reason := range mintledger.RejectionReasons() {
		m.MintRejected[reason] = factory.Counter("mintledger.mint.rejected." + reason)
	}
	return m
}

// Name implements plugin.Plugin.
func (m *MetricsExtension) Name() string { return "observability-metrics" }

// OnInit implements plugin.OnInit.
func (m *MetricsExtension) OnInit(_ context.Context, _ interface{}) error {
	return nil
}

// ──────────────────────────────────────────────────
// Mint hooks
// ──────────────────────────────────────────────────

// OnMint implements plugin.OnMint.
func (m *MetricsExtension) OnMint(_ context.Context, ev *plugin.MintEvent) error {
	m.MintCompleted.Inc()
	if ev.Receipt != nil {
		qty := float64(ev.Receipt.Quantity)
		m.TokensMinted.Add(qty)
		m.MintQuantity.Observe(qty)
	}
	return nil
}

// OnMintRejected implements plugin.OnMintRejected.
func (m *MetricsExtension) OnMintRejected(_ context.Context, ev *plugin.MintRejectedEvent) error {
	c, ok := m.MintRejected[mintledger.RejectionReason(ev.Err)]
	if !ok {
		c = m.MintRejected[mintledger.ReasonError]
	}
	c.Inc()
	return nil
}

// ──────────────────────────────────────────────────
// Treasury and admin hooks
// ──────────────────────────────────────────────────

// OnWithdraw implements plugin.OnWithdraw.
func (m *MetricsExtension) OnWithdraw(_ context.Context, _ *plugin.WithdrawEvent) error {
	m.Withdrawals.Inc()
	return nil
}

// OnCostChanged implements plugin.OnCostChanged.
func (m *MetricsExtension) OnCostChanged(_ context.Context, _ *plugin.CostChangedEvent) error {
	m.CostChanged.Inc()
	return nil
}

// OnPausedChanged implements plugin.OnPausedChanged.
func (m *MetricsExtension) OnPausedChanged(_ context.Context, _ *plugin.PausedChangedEvent) error {
	m.PausedChanged.Inc()
	return nil
}
