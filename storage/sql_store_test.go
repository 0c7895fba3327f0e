package storage

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/teranos/ionclm/clm"
	"github.com/teranos/ionclm/errors"
	qtest "github.com/teranos/ionclm/internal/testing"
	"github.com/teranos/ionclm/ion"
	"github.com/teranos/ionclm/ixgest/lls"
)

func testSystem() lls.SystemInfo {
	mh := -1.4
	return lls.SystemInfo{
		Name:     "PG1634+706_z1.041",
		RA:       "16:34:28.9",
		Dec:      "+70:31:33",
		Zem:      1.337,
		Zabs:     1.0414,
		VLim:     [2]float64{-50, 50},
		NHI:      17.23,
		SigNHI:   [2]float64{0.15, 0.15},
		MH:       &mh,
		Ref:      "Zon04",
		Citation: "Zonak, S. et al. 2004, ApJ, 603, 482",
	}
}

func testStore(t *testing.T) *clm.Store {
	t.Helper()
	b := clm.NewBuilder()
	require.NoError(t, b.Add(clm.Row{Ion: ion.MustLookup("Si IV"), Measurement: clm.NewDetection(13.21, 0.03)}))
	require.NoError(t, b.Add(clm.Row{Ion: ion.MustLookup("C II"), Measurement: clm.NewLowerLimit(14.1)}))
	require.NoError(t, b.Add(clm.Row{Ion: ion.MustLookup("Zn II"), Measurement: clm.NewUpperLimit(11.9)}))
	require.NoError(t, b.Annotate(ion.MustLookup("Zn II"), clm.NoteErratum))
	return b.Build()
}

func TestSQLStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewSQLStore(qtest.CreateTestDB(t), zaptest.NewLogger(t).Sugar())
	info := testSystem()
	store := testStore(t)

	sink, err := s.SinkFor(ctx, info)
	require.NoError(t, err)
	require.NoError(t, sink.Attach(ctx, store, "Zon04"))

	got, err := s.LoadSystem(ctx, info.Name)
	require.NoError(t, err)
	assert.Equal(t, info, got.Info)
	require.Len(t, got.Citations, 1)

	loaded, ok := got.Citation("Zon04")
	require.True(t, ok)
	assert.True(t, store.Equal(loaded, 0))
	assert.Equal(t, store.Ions(), loaded.Ions())
	assert.True(t, loaded.Note(ion.MustLookup("Zn II")).Has(clm.NoteErratum))

	_, ok = got.Citation("Jen05")
	assert.False(t, ok)
}

func TestSQLStore_AttachReplaces(t *testing.T) {
	ctx := context.Background()
	s := NewSQLStore(qtest.CreateTestDB(t), nil)
	info := testSystem()

	require.NoError(t, s.Attach(ctx, info, "Zon04", testStore(t)))
	smaller, err := clm.FromRows([]clm.Row{{Ion: ion.MustLookup("O VI"), Measurement: clm.NewDetection(14.0, 0.1)}})
	require.NoError(t, err)
	require.NoError(t, s.Attach(ctx, info, "Zon04", smaller))
	require.NoError(t, s.Attach(ctx, info, "Tri05", clm.Empty()))

	got, err := s.LoadSystem(ctx, info.Name)
	require.NoError(t, err)
	require.Len(t, got.Citations, 1, "empty stores leave no rows")
	assert.Equal(t, 1, got.Citations[0].Store.Len())
}

func TestSQLStore_ListSystems(t *testing.T) {
	ctx := context.Background()
	s := NewSQLStore(qtest.CreateTestDB(t), nil)

	second := testSystem()
	second.Name = "Q0826-2230_z0.911"
	second.MH = nil
	require.NoError(t, s.SaveSystem(ctx, testSystem()))
	require.NoError(t, s.SaveSystem(ctx, second))

	systems, err := s.ListSystems(ctx)
	require.NoError(t, err)
	require.Len(t, systems, 2)
	assert.Equal(t, "PG1634+706_z1.041", systems[0].Name)
	assert.Nil(t, systems[1].MH)

	assert.Error(t, s.SaveSystem(ctx, lls.SystemInfo{}))
}

func TestSQLStore_LoadSystemNotFound(t *testing.T) {
	_, err := NewSQLStore(qtest.CreateTestDB(t), nil).LoadSystem(context.Background(), "nope")
	require.Error(t, err)
	assert.True(t, errors.IsNotFoundError(err))
	assert.NotEmpty(t, errors.GetAllHints(err))
}

func TestSQLStore_Runs(t *testing.T) {
	ctx := context.Background()
	s := NewSQLStore(qtest.CreateTestDB(t), nil)

	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	res := &lls.ProcessingResult{Systems: 3, Excluded: 1, Ions: 17, Skipped: 2, Success: true, Message: "ingest completed", StartTime: start, EndTime: start.Add(time.Second)}
	run := NewRun(NewRunID(), []string{"Zon04", "Mei07"}, res)
	require.NoError(t, s.RecordRun(ctx, run))

	assert.Error(t, s.RecordRun(ctx, Run{ID: "not-a-uuid"}))

	runs, err := s.ListRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, run.ID, runs[0].ID)
	assert.Equal(t, []string{"Zon04", "Mei07"}, runs[0].Sources)
	assert.Equal(t, 17, runs[0].Ions)
	assert.True(t, runs[0].Success)
	assert.True(t, start.Equal(runs[0].StartedAt))
}

// Minimal sqlmock tests to verify statement order and arguments

func TestAttach_Sqlmock(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()

	info := testSystem()
	store := testStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO systems`).
		WithArgs(info.Name, info.RA, info.Dec, info.Zem, info.Zabs,
			info.VLim[0], info.VLim[1], info.NHI, info.SigNHI[0], info.SigNHI[1],
			*info.MH, info.Ref, info.Citation, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(`DELETE FROM ion_columns`).
		WithArgs(info.Name, "Zon04").
		WillReturnResult(sqlmock.NewResult(0, 0))
	for i, row := range store.Rows() {
		mock.ExpectExec(`INSERT INTO ion_columns`).
			WithArgs(info.Name, "Zon04", row.Ion.Z, row.Ion.Stage, i,
				row.LogN, row.Sigma, int(row.Flag), int(store.Note(row.Ion))).
			WillReturnResult(sqlmock.NewResult(int64(i+1), 1))
	}
	mock.ExpectCommit()

	require.NoError(t, NewSQLStore(conn, nil).Attach(context.Background(), info, "Zon04", store))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttach_SqlmockRollback(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO systems`).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(`DELETE FROM ion_columns`).WillReturnError(errors.New("disk I/O error"))
	mock.ExpectRollback()

	err = NewSQLStore(conn, nil).Attach(context.Background(), testSystem(), "Zon04", testStore(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk I/O error")
	assert.NoError(t, mock.ExpectationsWereMet())
}
