package badger

import (
	"context"
	"testing"
	"time"

	"github.com/poiesic/docgraph/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunRepository_SaveAndLoad(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	defer backend.Close()

	runRepo := NewRunRepository(backend)
	ctx := context.Background()

	loaded, err := runRepo.LoadLastRun(ctx, "docs")
	require.NoError(t, err)
	assert.Nil(t, loaded)

	report := &core.RunReport{
		Namespace:      "docs",
		Status:         core.RunStatusCompleted,
		StartedAt:      time.Now().UTC().Add(-time.Minute).Truncate(time.Microsecond),
		FinishedAt:     time.Now().UTC().Truncate(time.Microsecond),
		DocsDiscovered: 5,
		DocsProcessed:  5,
	}
	require.NoError(t, runRepo.SaveRunReport(ctx, report))

	loaded, err = runRepo.LoadLastRun(ctx, "docs")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, report, loaded)

	// A later run replaces the report
	report.Status = core.RunStatusCompletedWithErrors
	report.DocsFailed = 1
	require.NoError(t, runRepo.SaveRunReport(ctx, report))

	loaded, err = runRepo.LoadLastRun(ctx, "docs")
	require.NoError(t, err)
	assert.Equal(t, core.RunStatusCompletedWithErrors, loaded.Status)

	// Other namespaces are independent
	loaded, err = runRepo.LoadLastRun(ctx, "other")
	require.NoError(t, err)
	assert.Nil(t, loaded)
}
