package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/spektr-org/solutions/engine"
	"github.com/spektr-org/solutions/export"
	"github.com/spektr-org/solutions/metrics"
	"github.com/spektr-org/solutions/schema"
)

// Datasets provides the dataset to serve.
type Datasets interface {
	Get(ctx context.Context) (*engine.Dataset, error)
	Current() (*engine.Dataset, error)
}

// Handler wires the dashboard endpoints to the dataset cache.
type Handler struct {
	data    Datasets
	targets []engine.IndicatorTarget
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// New constructs a handler. targets may be nil for the default targets.
func New(data Datasets, targets []engine.IndicatorTarget, logger *zap.Logger, m *metrics.Metrics) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{data: data, targets: targets, logger: logger, metrics: m}
}

// Register mounts the API endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/dashboard", h.HandleDashboard)
	r.Get("/kpis", h.HandleKPIs)
	r.Get("/regions", h.HandleRegions)
	r.Get("/trends", h.HandleTrends)
	r.Get("/progress", h.HandleProgress)
	r.Get("/flow", h.HandleFlow)
	r.Get("/indicators", h.HandleIndicators)
	r.Get("/compare", h.HandleCompare)
	r.Get("/options", h.HandleOptions)
	r.Get("/map", h.HandleMap)
	r.Get("/records", h.HandleRecords)
	r.Get("/export.xlsx", h.HandleWorkbook)
	r.Get("/export/{report}.csv", h.HandleReportCSV)
}

// HandleHealth answers 200 once a dataset is loaded, 503 before.
func (h *Handler) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	ds, err := h.data.Current()
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":     "ok",
		"dataset_id": ds.ID.String(),
		"records":    ds.Len(),
		"loaded_at":  ds.LoadedAt,
	})
}

// ── Request plumbing ──

// request is one parsed and computed API call.
type request struct {
	ds       *engine.Dataset
	query    query
	filtered engine.RecordView
	d        *engine.Dashboard
}

// prepare loads the dataset, parses the query and computes the dashboard.
// It writes the error response itself and returns false on failure, or
// answers 304 when the client already holds this dataset's response.
func (h *Handler) prepare(w http.ResponseWriter, r *http.Request) (*request, bool) {
	ds, err := h.data.Get(r.Context())
	if err != nil {
		h.logger.Error("dataset unavailable", zap.Error(err))
		writeError(w, loadStatus(err), err)
		return nil, false
	}

	q, err := parseQuery(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return nil, false
	}

	etag := fmt.Sprintf("%q", ds.ID.String())
	w.Header().Set("ETag", etag)
	if match := r.Header.Get("If-None-Match"); match == etag {
		w.WriteHeader(http.StatusNotModified)
		return nil, false
	}

	start := time.Now()
	opts := append(q.options(h.targets), engine.WithLogger(h.logger))
	d, err := engine.Compute(ds.View(), q.selection, opts...)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return nil, false
	}
	h.metrics.ObserveCompute(time.Since(start))

	return &request{
		ds:       ds,
		query:    q,
		filtered: engine.Apply(ds.View(), d.Selection),
		d:        d,
	}, true
}

// loadStatus maps a dataset load failure to an HTTP status.
func loadStatus(err error) int {
	var (
		schemaErr *schema.SchemaError
		parseErr  *schema.ParseError
	)
	if errors.As(err, &schemaErr) || errors.As(err, &parseErr) {
		return http.StatusInternalServerError
	}
	return http.StatusServiceUnavailable
}

// ── Endpoints ──

// HandleDashboard returns every report for the selection.
func (h *Handler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	req, ok := h.prepare(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, req.d)
}

// HandleKPIs returns the KPI struct and the flat name → value map.
func (h *Handler) HandleKPIs(w http.ResponseWriter, r *http.Request) {
	req, ok := h.prepare(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"kpis":   req.d.KPIs,
		"values": req.d.KPIs.Map(),
		"text":   req.d.Text,
	})
}

// HandleRegions returns the regional summary.
func (h *Handler) HandleRegions(w http.ResponseWriter, r *http.Request) {
	req, ok := h.prepare(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"rows":  req.d.Regions,
		"table": engine.RegionalTable(req.d.Regions),
		"chart": req.d.Charts["regions"],
	})
}

// HandleTrends returns the monthly trend.
func (h *Handler) HandleTrends(w http.ResponseWriter, r *http.Request) {
	req, ok := h.prepare(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"rows":   req.d.Trend,
		"table":  engine.TrendTable(req.d.Trend, req.d.TrendLabel),
		"chart":  req.d.Charts["trend"],
		"growth": req.d.Text.Growth,
	})
}

// HandleProgress returns the pathway progress matrix.
func (h *Handler) HandleProgress(w http.ResponseWriter, r *http.Request) {
	req, ok := h.prepare(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"rows":  req.d.Progress,
		"table": engine.ProgressTable(req.d.Progress),
		"chart": req.d.Charts["progress"],
	})
}

// HandleFlow returns the flow graph.
func (h *Handler) HandleFlow(w http.ResponseWriter, r *http.Request) {
	req, ok := h.prepare(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, req.d.Flow)
}

// HandleIndicators returns progress against the programme targets.
func (h *Handler) HandleIndicators(w http.ResponseWriter, r *http.Request) {
	req, ok := h.prepare(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, req.d.Indicators)
}

// HandleCompare compares the selected date range with the one before it.
func (h *Handler) HandleCompare(w http.ResponseWriter, r *http.Request) {
	req, ok := h.prepare(w, r)
	if !ok {
		return
	}
	if req.d.Comparison == nil {
		writeError(w, http.StatusBadRequest, errors.New("compare needs date_start and date_end"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"comparison": req.d.Comparison,
		"table":      engine.ComparisonTable(*req.d.Comparison),
	})
}

// HandleOptions returns the filter choices of the whole dataset.
func (h *Handler) HandleOptions(w http.ResponseWriter, r *http.Request) {
	req, ok := h.prepare(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, engine.Options(req.ds.View(), req.query.selection.Region))
}

// HandleMap returns the marker layer, heat points and region bubbles.
func (h *Handler) HandleMap(w http.ResponseWriter, r *http.Request) {
	req, ok := h.prepare(w, r)
	if !ok {
		return
	}
	heat, err := engine.HeatPoints(req.filtered, schema.ColHouseholdSize)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"layer":   req.d.Map,
		"heat":    heat,
		"bubbles": engine.RegionBubbles(req.filtered),
	})
}

// HandleRecords returns the filtered records.
func (h *Handler) HandleRecords(w http.ResponseWriter, r *http.Request) {
	req, ok := h.prepare(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"count":   req.filtered.Len(),
		"records": engine.Records(req.filtered),
	})
}

// HandleWorkbook returns the filtered reports as an xlsx download.
func (h *Handler) HandleWorkbook(w http.ResponseWriter, r *http.Request) {
	req, ok := h.prepare(w, r)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := export.Workbook(&buf, req.filtered, req.d); err != nil {
		h.logger.Error("workbook export failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="beneficiary_report.xlsx"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// HandleReportCSV returns one report table as CSV.
func (h *Handler) HandleReportCSV(w http.ResponseWriter, r *http.Request) {
	report := chi.URLParam(r, "report")
	req, ok := h.prepare(w, r)
	if !ok {
		return
	}

	var (
		t   *engine.TableData
		err error
	)
	if report == engine.ReportRecords {
		t = engine.RecordsTable(req.filtered)
	} else if t, err = req.d.Table(report); err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}

	var buf bytes.Buffer
	if err := export.CSV(&buf, t); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.csv"`, report))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// ── Responses ──

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
