package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codesage/code-sage/internal/adapter/store/sqlite"
	"github.com/codesage/code-sage/internal/domain"
)

func setupTestStore(t *testing.T) *sqlite.Store {
	t.Helper()

	// Use in-memory database for testing
	s, err := sqlite.NewStore(":memory:")
	require.NoError(t, err, "failed to create test store")

	t.Cleanup(func() {
		s.Close()
	})

	return s
}

func sampleResult(root string, at time.Time) *domain.ProjectResult {
	return &domain.ProjectResult{
		RootPath:    root,
		GeneratedAt: at,
		TotalFiles:  12,
		FailedFiles: 1,
		TotalIssues: 7,
		Duration:    450 * time.Millisecond,
		Summary: domain.Summary{
			TotalIssues: 7,
			BySeverity: map[domain.Severity]int{
				domain.SeverityCritical: 1,
				domain.SeverityHigh:     2,
				domain.SeverityLow:      4,
			},
		},
	}
}

func TestStore_SaveAndListRuns(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	base := time.Now().Truncate(time.Second)
	first, err := s.SaveResult(ctx, sampleResult("/work/old", base.Add(-time.Hour)))
	require.NoError(t, err)
	second, err := s.SaveResult(ctx, sampleResult("/work/new", base))
	require.NoError(t, err)

	runs, err := s.ListRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)

	// Newest first
	assert.Equal(t, second, runs[0].ID)
	assert.Equal(t, first, runs[1].ID)
	assert.Equal(t, "/work/new", runs[0].RootPath)
	assert.Equal(t, 12, runs[0].TotalFiles)
	assert.Equal(t, 1, runs[0].FailedFiles)
	assert.Equal(t, 7, runs[0].TotalIssues)
	assert.Equal(t, 1, runs[0].Critical)
	assert.Equal(t, 2, runs[0].High)
	assert.Equal(t, 4, runs[0].Low)
	assert.Equal(t, 450*time.Millisecond, runs[0].Duration)
	assert.Equal(t, base.Unix(), runs[0].Timestamp.Unix())
}

func TestStore_ListRunsHonorsLimit(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	base := time.Now()
	for i := 0; i < 5; i++ {
		_, err := s.SaveResult(ctx, sampleResult("/work/demo", base.Add(time.Duration(i)*time.Minute)))
		require.NoError(t, err)
	}

	runs, err := s.ListRuns(ctx, 3)
	require.NoError(t, err)
	assert.Len(t, runs, 3)
}

func TestStore_ListRunsEmpty(t *testing.T) {
	s := setupTestStore(t)

	runs, err := s.ListRuns(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, runs)
}
