package sqlite_test

import (
	"context"
	"testing"

	"github.com/phrazzld/pagequeue/internal/domain"
	"github.com/phrazzld/pagequeue/internal/platform/sqlite"
	"github.com/phrazzld/pagequeue/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskStore_SaveAssignsID(t *testing.T) {
	ctx := context.Background()
	tasks := sqlite.NewTaskStore(newTestDBPath(t))

	task := domain.NewWorkerTask("http://example.com/", domain.TaskTypeMetadata)
	require.Nil(t, task.ID())

	require.NoError(t, tasks.SaveTask(ctx, task))
	require.NotNil(t, task.ID())
	firstID := *task.ID()

	t.Run("subsequent save updates the same row", func(t *testing.T) {
		task.JobStarted()
		require.NoError(t, tasks.SaveTask(ctx, task))
		assert.Equal(t, firstID, *task.ID())

		got, err := tasks.GetTaskByID(ctx, firstID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, domain.TaskStatusWorking, got.Status())
		require.NotNil(t, got.JobStartedAt())
		assert.Equal(t, *task.JobStartedAt(), *got.JobStartedAt())
	})

	t.Run("second task gets a new id", func(t *testing.T) {
		other := domain.NewWorkerTask("http://example.com/", domain.TaskTypeFTS)
		require.NoError(t, tasks.SaveTask(ctx, other))
		require.NotNil(t, other.ID())
		assert.NotEqual(t, firstID, *other.ID())
	})
}

func TestTaskStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	tasks := sqlite.NewTaskStore(newTestDBPath(t))

	task := domain.NewWorkerTask("http://example.com/page", domain.TaskTypeFTS)
	require.NoError(t, tasks.SaveTask(ctx, task))

	byID, err := tasks.GetTaskByID(ctx, *task.ID())
	require.NoError(t, err)
	assert.Equal(t, task.Record(), byID.Record())

	byURL, err := tasks.GetTaskByURL(ctx, "http://example.com/page")
	require.NoError(t, err)
	require.NotNil(t, byURL)
	assert.Equal(t, task.Record(), byURL.Record())
}

func TestTaskStore_Absent(t *testing.T) {
	ctx := context.Background()
	tasks := sqlite.NewTaskStore(newTestDBPath(t))

	byURL, err := tasks.GetTaskByURL(ctx, "http://missing.test/")
	require.NoError(t, err)
	assert.Nil(t, byURL)

	byID, err := tasks.GetTaskByID(ctx, 42)
	require.NoError(t, err)
	assert.Nil(t, byID)
}

func TestTaskStore_UpdateMissingRow(t *testing.T) {
	ctx := context.Background()
	tasks := sqlite.NewTaskStore(newTestDBPath(t))

	task := domain.NewWorkerTask("http://example.com/", domain.TaskTypeFTS)
	task.SetID(99)

	err := tasks.SaveTask(ctx, task)
	require.Error(t, err)
	assert.ErrorIs(t, err, store.ErrUpdateFailed)
	assert.True(t, store.IsNotFoundError(err))
}

func TestTaskStore_GetTasksByStatus(t *testing.T) {
	ctx := context.Background()
	tasks := sqlite.NewTaskStore(newTestDBPath(t))

	fresh := domain.NewWorkerTask("http://a.test/", domain.TaskTypeFTS)
	started := domain.NewWorkerTask("http://b.test/", domain.TaskTypeFTS)
	started.JobStarted()
	finished := domain.NewWorkerTask("http://c.test/", domain.TaskTypeFTS)
	require.NoError(t, finished.SetStatus(domain.TaskStatusDone))

	for _, task := range []*domain.WorkerTask{fresh, started, finished} {
		require.NoError(t, tasks.SaveTask(ctx, task))
	}

	testCases := []struct {
		status domain.TaskStatus
		want   []string
	}{
		{domain.TaskStatusNew, []string{"http://a.test/"}},
		{domain.TaskStatusWorking, []string{"http://b.test/"}},
		{domain.TaskStatusDone, []string{"http://c.test/"}},
	}

	for _, tc := range testCases {
		t.Run(string(tc.status), func(t *testing.T) {
			got, err := tasks.GetTasksByStatus(ctx, tc.status)
			require.NoError(t, err)
			urls := make([]string, 0, len(got))
			for _, task := range got {
				urls = append(urls, task.PageURL())
			}
			assert.Equal(t, tc.want, urls)
		})
	}
}
