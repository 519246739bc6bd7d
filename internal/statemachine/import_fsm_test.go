package statemachine

import (
	"context"
	"errors"
	"testing"

	"github.com/sjperalta/solarstock-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBatch() *models.ImportBatch {
	return &models.ImportBatch{Status: models.ImportStatusPending, TotalRows: 3}
}

func TestImportFSM_Complete(t *testing.T) {
	ctx := context.Background()
	batch := newBatch()
	f := NewImportFSM(batch)

	require.NoError(t, f.Start(ctx))
	assert.Equal(t, models.ImportStatusProcessing, batch.Status)

	require.NoError(t, f.Complete(ctx, 3, nil))
	assert.Equal(t, models.ImportStatusCompleted, batch.Status)
	assert.Equal(t, 3, batch.ImportedRows)
	assert.NotNil(t, batch.CompletedAt)
	assert.Empty(t, batch.ErrorList())
}

func TestImportFSM_CompleteWithErrors(t *testing.T) {
	ctx := context.Background()
	batch := newBatch()
	f := NewImportFSM(batch)

	require.NoError(t, f.Start(ctx))
	require.NoError(t, f.Complete(ctx, 2, []string{"Row 3: missing item name"}))

	assert.Equal(t, models.ImportStatusCompletedWithErrors, batch.Status)
	assert.Equal(t, 1, batch.FailedRows)
	assert.Equal(t, []string{"Row 3: missing item name"}, batch.ErrorList())
}

func TestImportFSM_Fail(t *testing.T) {
	ctx := context.Background()
	batch := newBatch()
	f := NewImportFSM(batch)

	require.NoError(t, f.Fail(ctx, errors.New("unreadable file")))
	assert.Equal(t, models.ImportStatusFailed, batch.Status)
	assert.Equal(t, []string{"unreadable file"}, batch.ErrorList())

	// Terminal
	assert.Error(t, f.Fail(ctx, nil))
	assert.Error(t, f.Start(ctx))
}

func TestImportFSM_InvalidTransitions(t *testing.T) {
	ctx := context.Background()
	f := NewImportFSM(newBatch())

	assert.Error(t, f.Complete(ctx, 0, nil))
	assert.False(t, f.Can("complete"))
	assert.True(t, f.Can("start"))

	require.NoError(t, f.Start(ctx))
	assert.Error(t, f.Start(ctx))
	assert.Equal(t, models.ImportStatusProcessing, f.CurrentState())
}
