package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KKogaa/extracto-storage-service/internal/core/domain"
)

func TestJobStore_SaveGet(t *testing.T) {
	store := NewJobStore()
	ctx := context.Background()

	job := domain.RawJob{JobID: "j1", URL: "https://urbania.pe", Domain: "urbania", State: domain.JobCompleted, Result: []byte(`[]`)}
	require.NoError(t, store.Save(ctx, job))

	got, err := store.Get(ctx, "j1")
	require.NoError(t, err)
	assert.Equal(t, job, *got)

	_, err = store.Get(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestJobStore_SaveRequiresID(t *testing.T) {
	assert.ErrorIs(t, NewJobStore().Save(context.Background(), domain.RawJob{}), domain.ErrInvalidInput)
}

func TestJobStore_CountByState(t *testing.T) {
	store := NewJobStore()
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, domain.RawJob{JobID: "1", State: domain.JobCompleted}))
	require.NoError(t, store.Save(ctx, domain.RawJob{JobID: "2", State: domain.JobFailed}))
	require.NoError(t, store.Save(ctx, domain.RawJob{JobID: "3", State: domain.JobCompleted}))
	require.NoError(t, store.Save(ctx, domain.RawJob{JobID: "3", State: domain.JobFailed}))

	counts, err := store.CountByState(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[domain.JobState]int{domain.JobCompleted: 1, domain.JobFailed: 2}, counts)
}
