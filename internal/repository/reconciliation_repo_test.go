package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pixelmuse/imagen_go_server/internal/model"
	"github.com/pixelmuse/imagen_go_server/internal/testutil"
)

func TestReconciliationRepository_GetPending(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewReconciliationRepository(db)
	user := testutil.TestUser(t, db)
	gen := testutil.TestGeneration(t, db, user.ID)

	t1 := testutil.TestReconciliationTask(t, db, user.ID, gen.ID, 6)
	t2 := testutil.TestReconciliationTask(t, db, user.ID, gen.ID, 8)
	require.NoError(t, repo.MarkDone(t2.ID))

	tasks, err := repo.GetPending(10)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, t1.ID, tasks[0].ID)
}

func TestReconciliationRepository_IncrementRetry(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewReconciliationRepository(db)
	user := testutil.TestUser(t, db)
	gen := testutil.TestGeneration(t, db, user.ID)
	task := testutil.TestReconciliationTask(t, db, user.ID, gen.ID, 6)

	require.NoError(t, repo.IncrementRetry(task.ID, "db timeout"))
	require.NoError(t, repo.IncrementRetry(task.ID, "db timeout again"))

	var updated model.ReconciliationTask
	require.NoError(t, db.First(&updated, task.ID).Error)
	assert.Equal(t, 2, updated.RetryCount)
	assert.Equal(t, "db timeout again", updated.LastError)
	assert.Equal(t, model.ReconciliationStatusPending, updated.Status)
}

func TestReconciliationRepository_MarkFailed(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewReconciliationRepository(db)
	user := testutil.TestUser(t, db)
	gen := testutil.TestGeneration(t, db, user.ID)
	task := testutil.TestReconciliationTask(t, db, user.ID, gen.ID, 6)

	require.NoError(t, repo.MarkFailed(task.ID, "gave up"))

	var updated model.ReconciliationTask
	require.NoError(t, db.First(&updated, task.ID).Error)
	assert.Equal(t, model.ReconciliationStatusFailed, updated.Status)
	assert.Equal(t, 1, updated.RetryCount)

	tasks, err := repo.GetPending(10)
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestReconciliationRepository_Create_DuplicateTaskKey(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewReconciliationRepository(db)
	user := testutil.TestUser(t, db)
	gen := testutil.TestGeneration(t, db, user.ID)

	task := &model.ReconciliationTask{
		TaskKey:      "fixed-key",
		UserID:       user.ID,
		GenerationID: gen.ID,
		Credits:      6,
		Status:       model.ReconciliationStatusPending,
	}
	require.NoError(t, repo.Create(task))

	dup := &model.ReconciliationTask{
		TaskKey:      "fixed-key",
		UserID:       user.ID,
		GenerationID: gen.ID,
		Credits:      6,
		Status:       model.ReconciliationStatusPending,
	}
	assert.Error(t, repo.Create(dup))
}
