package source

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/spektr-org/solutions/config"
	"github.com/spektr-org/solutions/helpers"
	"github.com/spektr-org/solutions/metrics"
	"github.com/spektr-org/solutions/schema"
)

// ── Test Data ─────────────────────────────────────────────────────────────────

const csvHeader = "beneficiary_id,region,district,latitude,longitude,displacement_status,solutions_pathway,pathway_stage,household_size,gender_hoh,shelter_status,documentation_status,livelihood_support,registration_date\n"

const csvRows = "" +
	"B001,North,N1,2.05,45.32,IDP,Return,Achieved,5,Female,Permanent,Complete,Yes,2024-01-15\n" +
	"B002,South,S1,,,Returnee,Relocation,Planning,3,Male,Emergency,None,No,2024-02-20\n"

func writeCSV(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(csvHeader+body), 0o600))
}

// ============================================================================
// FILE
// ============================================================================

func TestFileLoadAndFingerprint(t *testing.T) {
	path := filepath.Join(t.TempDir(), "beneficiaries.csv")
	writeCSV(t, path, csvRows)
	f := NewFile(path)

	res, err := f.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, res.Records, 2)
	assert.Equal(t, "B002", res.Records[1].ID)

	before, err := f.Fingerprint(context.Background())
	require.NoError(t, err)
	writeCSV(t, path, csvRows+"B003,East,E1,,,IDP,Return,Assessment,2,Male,Transitional,Partial,No,2024-03-01\n")
	after, err := f.Fingerprint(context.Background())
	require.NoError(t, err)
	assert.NotEqual(t, before, after, "size changed")
}

func TestFileMissing(t *testing.T) {
	f := NewFile(filepath.Join(t.TempDir(), "missing.csv"))
	_, err := f.Fingerprint(context.Background())
	assert.ErrorIs(t, err, os.ErrNotExist)
	_, err = f.Load(context.Background())
	assert.ErrorIs(t, err, os.ErrNotExist)
}

// ============================================================================
// SQL
// ============================================================================

func openSQLite(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "solutions.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`CREATE TABLE beneficiaries (
		beneficiary_id TEXT PRIMARY KEY,
		region TEXT, district TEXT, latitude REAL, longitude REAL,
		displacement_status TEXT, solutions_pathway TEXT, pathway_stage TEXT,
		household_size INTEGER, gender_hoh TEXT, shelter_status TEXT,
		documentation_status TEXT, livelihood_support TEXT, registration_date TEXT,
		notes TEXT
	)`)
	require.NoError(t, err)
	return db
}

func insert(t *testing.T, db *sql.DB, id string, lat any, stage, date string) {
	t.Helper()
	_, err := db.Exec(`INSERT INTO beneficiaries VALUES (?, 'North', 'N1', ?, ?, 'idp', 'Return', ?, 4, 'F', 'Emergency', NULL, 'yes', ?, 'x')`,
		id, lat, lat, stage, date)
	require.NoError(t, err)
}

func TestSQLLoad(t *testing.T) {
	db := openSQLite(t)
	insert(t, db, "S1", 2.5, "Achieved", "2024-01-05")
	insert(t, db, "S2", nil, "Mystery", "2024-02-05")

	ctx := context.Background()
	src, err := NewSQL(ctx, db, "sqlite", "beneficiaries")
	require.NoError(t, err)
	assert.Equal(t, "sqlite:beneficiaries", src.Name())

	res, err := src.Load(ctx)
	require.NoError(t, err)
	require.Len(t, res.Records, 2)

	a := res.Records[0]
	assert.Equal(t, schema.IDP, a.DisplacementStatus)
	assert.Equal(t, schema.Female, a.GenderHoH)
	assert.Equal(t, schema.DocumentationNone, a.DocumentationStatus)
	assert.True(t, a.HasLivelihoodSupport)
	require.NotNil(t, a.Latitude)
	assert.Equal(t, 2.5, *a.Latitude)
	assert.False(t, res.Records[1].HasLocation())

	require.Len(t, res.Warnings, 1)
	assert.Equal(t, schema.ColPathwayStage, res.Warnings[0].Column)

	fp, err := src.Fingerprint(ctx)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(fp, "2:"), fp)
}

func TestSQLFingerprintTracksUpdates(t *testing.T) {
	db := openSQLite(t)
	insert(t, db, "S1", nil, "Planning", "2024-01-05")
	insert(t, db, "S2", nil, "Assessment", "2024-02-05")

	ctx := context.Background()
	src, err := NewSQL(ctx, db, "sqlite", "beneficiaries")
	require.NoError(t, err)
	c := NewCache(src, zaptest.NewLogger(t), nil)

	before, err := c.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, schema.StagePlanning, before.View().At(0).PathwayStage)

	_, err = db.Exec(`UPDATE beneficiaries SET pathway_stage = 'Achieved' WHERE beneficiary_id = 'S1'`)
	require.NoError(t, err)

	after, err := c.Get(ctx)
	require.NoError(t, err)
	assert.NotSame(t, before, after)
	assert.Equal(t, schema.StageAchieved, after.View().At(0).PathwayStage)
}

func TestSQLRejects(t *testing.T) {
	db := openSQLite(t)
	ctx := context.Background()

	_, err := NewSQL(ctx, db, "sqlite", "beneficiaries; DROP TABLE x")
	assert.Error(t, err)

	_, err = OpenSQL(ctx, "mysql", "dsn", "beneficiaries")
	assert.Error(t, err)

	_, err = db.Exec(`CREATE TABLE partial (beneficiary_id TEXT, region TEXT, registration_date TEXT)`)
	require.NoError(t, err)
	src, err := NewSQL(ctx, db, "sqlite", "partial")
	require.NoError(t, err)
	_, err = src.Load(ctx)
	var schemaErr *schema.SchemaError
	assert.True(t, errors.As(err, &schemaErr))
}

func TestOpenFromConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "b.csv")
	src, err := Open(context.Background(), config.SourceConfig{Kind: config.SourceCSV, Path: path}, nil)
	require.NoError(t, err)
	assert.Equal(t, config.SourceCSV, src.Kind())

	_, err = Open(context.Background(), config.SourceConfig{Kind: "ftp"}, nil)
	assert.Error(t, err)
}

// ============================================================================
// CACHE
// ============================================================================

type stubSource struct {
	mu    sync.Mutex
	fp    string
	err   error
	loads int
	res   *helpers.Result
}

func (s *stubSource) Kind() string { return "stub" }
func (s *stubSource) Name() string { return "stub" }

func (s *stubSource) Fingerprint(context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fp, nil
}

func (s *stubSource) Load(context.Context) (*helpers.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loads++
	if s.err != nil {
		return nil, s.err
	}
	return s.res, nil
}

func (s *stubSource) set(fp string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fp, s.err = fp, err
}

func TestCacheReloadsOnFingerprintChange(t *testing.T) {
	src := &stubSource{fp: "v1", res: &helpers.Result{Records: []schema.Beneficiary{{ID: "A"}}}}
	m := metrics.New(prometheus.NewRegistry())
	c := NewCache(src, zaptest.NewLogger(t), m)
	ctx := context.Background()

	_, err := c.Current()
	assert.ErrorIs(t, err, ErrNotLoaded)

	first, err := c.Get(ctx)
	require.NoError(t, err)
	again, err := c.Get(ctx)
	require.NoError(t, err)
	assert.Same(t, first, again)
	assert.Equal(t, 1, src.loads)

	src.set("v2", nil)
	second, err := c.Get(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, 2, src.loads)

	c.Invalidate()
	_, err = c.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, src.loads)

	assert.Equal(t, 3.0, testutil.ToFloat64(m.Loads.WithLabelValues("stub", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Records))
}

func TestCacheKeepsPreviousDatasetOnFailure(t *testing.T) {
	src := &stubSource{fp: "v1", res: &helpers.Result{}}
	c := NewCache(src, zaptest.NewLogger(t), nil)
	ctx := context.Background()

	good, err := c.Get(ctx)
	require.NoError(t, err)

	src.set("v2", fmt.Errorf("disk on fire"))
	got, err := c.Get(ctx)
	require.NoError(t, err)
	assert.Same(t, good, got)
}

func TestCacheFirstLoadFailureSurfaces(t *testing.T) {
	src := &stubSource{fp: "v1", err: errors.New("boom")}
	c := NewCache(src, nil, nil)
	_, err := c.Get(context.Background())
	assert.EqualError(t, err, "boom")
}

// blockingSource holds its first Load open until release is closed.
type blockingSource struct {
	stubSource
	entered  chan struct{}
	release  chan struct{}
	inFlight atomic.Int32
	maxSeen  atomic.Int32
	once     sync.Once
}

func (s *blockingSource) Load(ctx context.Context) (*helpers.Result, error) {
	n := s.inFlight.Add(1)
	defer s.inFlight.Add(-1)
	for {
		m := s.maxSeen.Load()
		if n <= m || s.maxSeen.CompareAndSwap(m, n) {
			break
		}
	}
	s.once.Do(func() {
		close(s.entered)
		<-s.release
	})
	return s.stubSource.Load(ctx)
}

func TestCacheReloadsNeverOverlap(t *testing.T) {
	src := &blockingSource{
		stubSource: stubSource{fp: "v1", res: &helpers.Result{}},
		entered:    make(chan struct{}),
		release:    make(chan struct{}),
	}
	c := NewCache(src, zaptest.NewLogger(t), nil)
	ctx := context.Background()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, err := c.Get(ctx)
		assert.NoError(t, err)
	}()
	<-src.entered

	src.set("v2", nil)
	go func() {
		defer wg.Done()
		_, err := c.Get(ctx)
		assert.NoError(t, err)
	}()
	time.Sleep(50 * time.Millisecond)
	close(src.release)
	wg.Wait()

	assert.Equal(t, int32(1), src.maxSeen.Load())

	// The v2 fingerprint is still pending, so the next Get reloads.
	_, err := c.Get(ctx)
	require.NoError(t, err)
	c.mu.RLock()
	assert.Equal(t, "v2", c.fingerprint)
	c.mu.RUnlock()
}

func TestCacheConcurrentReaders(t *testing.T) {
	src := &stubSource{fp: "v1", res: &helpers.Result{}}
	c := NewCache(src, nil, nil)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			_, err := c.Get(ctx)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.LessOrEqual(t, src.loads, 16)
	ds, err := c.Current()
	require.NoError(t, err)
	assert.Zero(t, ds.Len())
}
