// Package source reads the beneficiary table from a CSV file or a SQL table
// and keeps the loaded dataset cached until the source changes.
package source

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spektr-org/solutions/config"
	"github.com/spektr-org/solutions/helpers"
)

// Source is a readable beneficiary table.
type Source interface {
	// Kind is "csv" or "sql".
	Kind() string
	// Name identifies the table in logs and dataset metadata.
	Name() string
	// Fingerprint changes whenever the table content may have changed.
	Fingerprint(ctx context.Context) (string, error)
	// Load reads and decodes the whole table.
	Load(ctx context.Context) (*helpers.Result, error)
}

// Open builds the source described by cfg.
func Open(ctx context.Context, cfg config.SourceConfig, logger *zap.Logger) (Source, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	opts := []helpers.Option{helpers.WithLogger(logger.Named("loader"))}
	switch cfg.Kind {
	case config.SourceCSV:
		return NewFile(cfg.Path, opts...), nil
	case config.SourceSQL:
		return OpenSQL(ctx, cfg.Driver, cfg.DSN, cfg.Table, opts...)
	}
	return nil, fmt.Errorf("unknown source kind %q", cfg.Kind)
}
