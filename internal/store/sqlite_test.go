package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/web-agent/internal/model"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	require.NoError(t, s.Migrate(context.Background()))
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func sampleReport() *model.Report {
	return &model.Report{
		Topic:       "fjord ecology",
		GeneratedAt: time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC),
		Findings: []model.Finding{
			{SourceURL: "https://a.test", Summary: "s", RelevanceScore: 0.8},
		},
		Facts: []string{"fjords are deep"},
		Meta: model.ReportMeta{
			StopReason: model.StopQueueExhausted,
			Attempted:  2,
			Succeeded:  1,
			Failed:     1,
			Elapsed:    30 * time.Second,
		},
	}
}

func TestSQLiteStore_CreateAndGet(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	run, err := s.CreateRun(ctx, "fjord ecology")
	require.NoError(t, err)
	require.NotEmpty(t, run.ID)
	assert.Equal(t, model.RunStatusRunning, run.Status)

	got, err := s.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, "fjord ecology", got.Topic)
	assert.Equal(t, model.RunStatusRunning, got.Status)
	assert.Nil(t, got.Report)
	assert.Nil(t, got.CompletedAt)
}

func TestSQLiteStore_CompleteRun(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	run, err := s.CreateRun(ctx, "fjord ecology")
	require.NoError(t, err)

	require.NoError(t, s.CompleteRun(ctx, run.ID, sampleReport()))

	got, err := s.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusComplete, got.Status)
	assert.Equal(t, model.StopQueueExhausted, got.StopReason)
	assert.Equal(t, 2, got.Attempted)
	assert.Equal(t, 1, got.Succeeded)
	require.NotNil(t, got.Report)
	assert.Equal(t, []string{"fjords are deep"}, got.Report.Facts)
	require.NotNil(t, got.CompletedAt)
}

func TestSQLiteStore_FailRun(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	run, err := s.CreateRun(ctx, "topic")
	require.NoError(t, err)
	require.NoError(t, s.FailRun(ctx, run.ID, "synthesis exploded"))

	got, err := s.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusFailed, got.Status)
}

func TestSQLiteStore_NotFound(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.GetRun(ctx, "no-such-run")
	assert.ErrorIs(t, err, ErrNotFound)

	err = s.CompleteRun(ctx, "no-such-run", sampleReport())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteStore_ListRuns(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a, err := s.CreateRun(ctx, "topic a")
	require.NoError(t, err)
	_, err = s.CreateRun(ctx, "topic b")
	require.NoError(t, err)
	require.NoError(t, s.CompleteRun(ctx, a.ID, sampleReport()))

	all, err := s.ListRuns(ctx, RunFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	complete, err := s.ListRuns(ctx, RunFilter{Status: model.RunStatusComplete})
	require.NoError(t, err)
	require.Len(t, complete, 1)
	assert.Equal(t, a.ID, complete[0].ID)

	byTopic, err := s.ListRuns(ctx, RunFilter{Topic: "topic b"})
	require.NoError(t, err)
	require.Len(t, byTopic, 1)

	limited, err := s.ListRuns(ctx, RunFilter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}
