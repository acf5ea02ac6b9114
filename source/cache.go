package source

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/spektr-org/solutions/engine"
	"github.com/spektr-org/solutions/metrics"
)

// ErrNotLoaded is returned when no dataset has been loaded yet.
var ErrNotLoaded = errors.New("dataset not loaded")

// Cache holds the dataset of one source. Get reloads it when the source
// fingerprint changes; a failed reload keeps serving the previous dataset.
type Cache struct {
	src     Source
	logger  *zap.Logger
	metrics *metrics.Metrics

	group singleflight.Group

	mu          sync.RWMutex
	current     *engine.Dataset
	fingerprint string
}

// NewCache wraps src. logger and m may be nil.
func NewCache(src Source, logger *zap.Logger, m *metrics.Metrics) *Cache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cache{src: src, logger: logger.With(zap.String("source", src.Name())), metrics: m}
}

// Current returns the dataset last loaded, without checking the source.
func (c *Cache) Current() (*engine.Dataset, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.current == nil {
		return nil, ErrNotLoaded
	}
	return c.current, nil
}

// Invalidate forces the next Get to reload.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.fingerprint = ""
	c.mu.Unlock()
}

// reloadKey is the single singleflight key, so at most one reload runs at a
// time and an older load can never replace a newer dataset.
const reloadKey = "reload"

// Get returns the dataset, reloading it first if the source changed.
// Concurrent callers share one reload.
func (c *Cache) Get(ctx context.Context) (*engine.Dataset, error) {
	fp, err := c.src.Fingerprint(ctx)
	if err != nil {
		return c.fallback(err)
	}

	c.mu.RLock()
	current, cached := c.current, c.fingerprint
	c.mu.RUnlock()
	if current != nil && fp == cached {
		return current, nil
	}

	v, err, _ := c.group.Do(reloadKey, func() (any, error) {
		return c.reload(ctx, fp)
	})
	if err != nil {
		return c.fallback(err)
	}
	return v.(*engine.Dataset), nil
}

func (c *Cache) reload(ctx context.Context, fp string) (*engine.Dataset, error) {
	start := time.Now()
	res, err := c.src.Load(ctx)
	if err != nil {
		c.metrics.ObserveLoad(c.src.Kind(), "error", time.Since(start))
		return nil, err
	}

	ds := engine.NewDataset(c.src.Name(), res.Records, res.Warnings)
	c.mu.Lock()
	c.current, c.fingerprint = ds, fp
	c.mu.Unlock()

	c.metrics.ObserveLoad(c.src.Kind(), "ok", time.Since(start))
	c.metrics.SetDataset(ds.Len(), len(ds.Warnings))
	c.logger.Info("dataset loaded",
		zap.String("dataset_id", ds.ID.String()),
		zap.Int("records", ds.Len()),
		zap.Int("warnings", len(ds.Warnings)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return ds, nil
}

func (c *Cache) fallback(err error) (*engine.Dataset, error) {
	c.mu.RLock()
	current := c.current
	c.mu.RUnlock()
	if current == nil {
		return nil, err
	}
	c.logger.Error("reload failed, serving previous dataset",
		zap.String("dataset_id", current.ID.String()),
		zap.Error(err),
	)
	return current, nil
}
