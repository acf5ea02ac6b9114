// Package solutions computes durable-solutions indicators over a dataset of
// displaced-population beneficiaries, one row per household.
//
// Usage:
//
//	import (
//	    "github.com/spektr-org/solutions/engine"
//	    "github.com/spektr-org/solutions/helpers"
//	)
//
//	res, err := helpers.ParseCSV(f)
//	ds := engine.NewDataset("beneficiaries.csv", res.Records, res.Warnings)
//	d, err := engine.Compute(ds.View(), engine.Selection{Region: "North"},
//	    engine.WithQuickFilter(engine.QuickAchieved),
//	)
//
// Compute returns render-ready output: KPIs, regional summary, monthly
// trend, pathway progress, flow graph, map layer, chart configs and tables.
// Rendering is left to the caller; the server package exposes the same
// reports over HTTP and cmd/solutions on the command line.
//
// All computation is local and synchronous. Source loading and caching live
// in the source package.
package solutions
