package statemachine

import (
	"context"
	"fmt"
	"time"

	"github.com/looplab/fsm"
	"github.com/sjperalta/solarstock-api/internal/models"
)

// ImportFSM wraps an import batch with its state machine
type ImportFSM struct {
	batch *models.ImportBatch
	fsm   *fsm.FSM
}

// NewImportFSM creates a new import batch state machine
func NewImportFSM(batch *models.ImportBatch) *ImportFSM {
	f := &ImportFSM{batch: batch}

	f.fsm = fsm.NewFSM(
		batch.Status,
		fsm.Events{
			// pending → processing
			{Name: "start", Src: []string{models.ImportStatusPending}, Dst: models.ImportStatusProcessing},

			// processing → completed / completed_with_errors
			{Name: "complete", Src: []string{models.ImportStatusProcessing}, Dst: models.ImportStatusCompleted},
			{Name: "complete_with_errors", Src: []string{models.ImportStatusProcessing}, Dst: models.ImportStatusCompletedWithErrors},

			// pending/processing → failed
			{Name: "fail", Src: []string{models.ImportStatusPending, models.ImportStatusProcessing}, Dst: models.ImportStatusFailed},
		},
		fsm.Callbacks{
			"enter_state": func(_ context.Context, e *fsm.Event) {
				f.batch.Status = e.Dst
			},
		},
	)

	return f
}

// Start marks the batch as processing
func (f *ImportFSM) Start(ctx context.Context) error {
	if !f.batch.MayStart() {
		return fmt.Errorf("import cannot be started in current state: %s", f.batch.Status)
	}
	if err := f.fsm.Event(ctx, "start"); err != nil {
		return fmt.Errorf("failed to start import: %w", err)
	}
	return nil
}

// Complete finishes the batch. Any row errors make it completed_with_errors.
func (f *ImportFSM) Complete(ctx context.Context, imported int, rowErrors []string) error {
	if !f.batch.MayFinish() {
		return fmt.Errorf("import cannot be completed in current state: %s", f.batch.Status)
	}

	event := "complete"
	if len(rowErrors) > 0 {
		event = "complete_with_errors"
	}
	if err := f.fsm.Event(ctx, event); err != nil {
		return fmt.Errorf("failed to complete import: %w", err)
	}

	f.batch.ImportedRows = imported
	f.batch.FailedRows = len(rowErrors)
	f.batch.SetErrors(rowErrors)
	f.finish()
	return nil
}

// Fail marks the batch failed with the given cause
func (f *ImportFSM) Fail(ctx context.Context, cause error) error {
	if f.batch.IsFinal() {
		return fmt.Errorf("import already finished: %s", f.batch.Status)
	}
	if err := f.fsm.Event(ctx, "fail"); err != nil {
		return fmt.Errorf("failed to fail import: %w", err)
	}

	f.batch.ImportedRows = 0
	if cause != nil {
		f.batch.SetErrors([]string{cause.Error()})
	}
	f.finish()
	return nil
}

// CurrentState returns the current state
func (f *ImportFSM) CurrentState() string {
	return f.fsm.Current()
}

// Can checks if an event can be triggered
func (f *ImportFSM) Can(event string) bool {
	return f.fsm.Can(event)
}

func (f *ImportFSM) finish() {
	now := time.Now()
	f.batch.CompletedAt = &now
}
