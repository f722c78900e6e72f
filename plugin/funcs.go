package plugin

import "context"

// Funcs adapts plain functions to the hook interfaces. Nil fields are no-ops.
type Funcs struct {
	PluginName    string
	Init          func(ctx context.Context, l interface{}) error
	Shutdown      func(ctx context.Context) error
	Mint          func(ctx context.Context, e *MintEvent) error
	MintRejected  func(ctx context.Context, e *MintRejectedEvent) error
	Withdraw      func(ctx context.Context, e *WithdrawEvent) error
	CostChanged   func(ctx context.Context, e *CostChangedEvent) error
	PausedChanged func(ctx context.Context, e *PausedChangedEvent) error
}

var (
	_ OnInit          = (*Funcs)(nil)
	_ OnShutdown      = (*Funcs)(nil)
	_ OnMint          = (*Funcs)(nil)
	_ OnMintRejected  = (*Funcs)(nil)
	_ OnWithdraw      = (*Funcs)(nil)
	_ OnCostChanged   = (*Funcs)(nil)
	_ OnPausedChanged = (*Funcs)(nil)
)

func (f *Funcs) Name() string { return f.PluginName }

func (f *Funcs) OnInit(ctx context.Context, l interface{}) error {
	if f.Init == nil {
		return nil
	}
	return f.Init(ctx, l)
}

func (f *Funcs) OnShutdown(ctx context.Context) error {
	if f.Shutdown == nil {
		return nil
	}
	return f.Shutdown(ctx)
}

func (f *Funcs) OnMint(ctx context.Context, e *MintEvent) error {
	if f.Mint == nil {
		return nil
	}
	return f.Mint(ctx, e)
}

func (f *Funcs) OnMintRejected(ctx context.Context, e *MintRejectedEvent) error {
	if f.MintRejected == nil {
		return nil
	}
	return f.MintRejected(ctx, e)
}

func (f *Funcs) OnWithdraw(ctx context.Context, e *WithdrawEvent) error {
	if f.Withdraw == nil {
		return nil
	}
	return f.Withdraw(ctx, e)
}

func (f *Funcs) OnCostChanged(ctx context.Context, e *CostChangedEvent) error {
	if f.CostChanged == nil {
		return nil
	}
	return f.CostChanged(ctx, e)
}

func (f *Funcs) OnPausedChanged(ctx context.Context, e *PausedChangedEvent) error {
	if f.PausedChanged == nil {
		return nil
	}
	return f.PausedChanged(ctx, e)
}
