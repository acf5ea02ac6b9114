package engine

import (
	"go.uber.org/zap"
)

// ============================================================================
// ENGINE OPTIONS — Functional options for Compute()
// ============================================================================

// Option configures Compute via functional options pattern.
type Option func(*config)

type config struct {
	Logger      *zap.Logger
	Targets     []IndicatorTarget
	Trend       TrendOptions
	FlowColumns []string
	MapColumn   string
	Quick       QuickFilter
}

// WithLogger sets the logger for compute passes.
func WithLogger(logger *zap.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.Logger = logger
		}
	}
}

// WithTargets replaces the programme indicator targets.
func WithTargets(targets []IndicatorTarget) Option {
	return func(c *config) {
		if len(targets) > 0 {
			c.Targets = targets
		}
	}
}

// WithTrend sets the monthly trend options.
func WithTrend(opts TrendOptions) Option {
	return func(c *config) {
		c.Trend = opts
	}
}

// WithFlowColumns sets the two or three columns of the flow graph.
func WithFlowColumns(columns ...string) Option {
	return func(c *config) {
		if len(columns) > 0 {
			c.FlowColumns = columns
		}
	}
}

// WithMapColumn sets the column colouring map markers.
func WithMapColumn(column string) Option {
	return func(c *config) {
		if column != "" {
			c.MapColumn = column
		}
	}
}

// WithQuickFilter layers a preset onto the selection.
func WithQuickFilter(q QuickFilter) Option {
	return func(c *config) {
		c.Quick = q
	}
}

// applyOptions creates a config from functional options.
func applyOptions(opts []Option) *config {
	cfg := &config{
		Logger:      zap.NewNop(),
		Targets:     DefaultTargets,
		FlowColumns: DefaultChainedFlow,
		MapColumn:   DefaultMapColumn,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}
