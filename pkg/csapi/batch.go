package csapi

import (
	"context"
	"fmt"
	"math"

	"github.com/central-storage/csclient/internal/constants"
)

// BatchFailure records one element that failed. Index is 1-based in input order.
type BatchFailure struct {
	Index int   `json:"index"        yaml:"index"`
	ID    int   `json:"id,omitempty" yaml:"id,omitempty"`
	Err   error `json:"-"            yaml:"-"`
}

// Error implements the error interface.
func (f BatchFailure) Error() string {
	subject := fmt.Sprintf("#%d", f.Index)
	if f.ID != 0 {
		subject += fmt.Sprintf(" (id %d)", f.ID)
	}

	return fmt.Sprintf("%s: %v", subject, f.Err)
}

// Unwrap returns the underlying error.
func (f BatchFailure) Unwrap() error {
	return f.Err
}

// BatchResult is the outcome of a best-effort bulk operation. Succeeded keeps input order.
type BatchResult[T any] struct {
	Succeeded []T            `json:"succeeded" yaml:"succeeded"`
	Failed    []BatchFailure `json:"failed"    yaml:"failed"`
}

// SuccessCount returns the number of elements that succeeded.
func (r *BatchResult[T]) SuccessCount() int {
	return len(r.Succeeded)
}

// FailureCount returns the number of elements that failed.
func (r *BatchResult[T]) FailureCount() int {
	return len(r.Failed)
}

// Total returns the number of elements attempted.
func (r *BatchResult[T]) Total() int {
	return len(r.Succeeded) + len(r.Failed)
}

// Progress is reported every ProgressInterval elements and after the last one.
type Progress struct {
	Operation string
	Completed int
	Total     int
	// Percent is rounded to one decimal.
	Percent float64
}

// String renders "completed/total (percent%)".
func (p Progress) String() string {
	return fmt.Sprintf("%d/%d (%.1f%%)", p.Completed, p.Total, p.Percent)
}

// ProgressFunc receives progress updates.
type ProgressFunc func(Progress)

// NewProgress computes the progress for completed out of total.
func NewProgress(operation string, completed, total int) Progress {
	percent := 0.0
	if total > 0 {
		percent = math.Round(float64(completed)*1000/float64(total)) / 10
	}

	return Progress{Operation: operation, Completed: completed, Total: total, Percent: percent}
}

// ShouldReportProgress reports whether the completed count falls on the reporting cadence.
func ShouldReportProgress(completed, total int) bool {
	return completed == total || completed%constants.ProgressInterval == 0
}

// BatchOptions configures progress reporting and logging for a batch run.
type BatchOptions struct {
	Logger   Logger
	Progress ProgressFunc
}

// BatchOption mutates BatchOptions.
type BatchOption func(*BatchOptions)

// WithBatchLogger routes per-element failures and progress to logger.
func WithBatchLogger(logger Logger) BatchOption {
	return func(o *BatchOptions) {
		o.Logger = logger
	}
}

// WithProgress installs a progress callback.
func WithProgress(fn ProgressFunc) BatchOption {
	return func(o *BatchOptions) {
		o.Progress = fn
	}
}

// RunBatch applies fn to every input in order. A failing element is recorded and
// the loop continues, so the call itself never fails. Once ctx is done the
// remaining elements are recorded as failed with the context error.
func RunBatch[In, Out any](ctx context.Context, operation string, inputs []In, fn func(context.Context, In) (Out, error), idOf func(In) int, opts ...BatchOption) *BatchResult[Out] {
	options := &BatchOptions{}
	for _, opt := range opts {
		opt(options)
	}

	total := len(inputs)
	result := &BatchResult[Out]{
		Succeeded: make([]Out, 0, total),
	}

	for i, input := range inputs {
		index := i + 1

		var (
			out Out
			err error
		)

		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
		} else {
			out, err = fn(ctx, input)
		}

		if err != nil {
			failure := BatchFailure{Index: index, Err: err}
			if idOf != nil {
				failure.ID = idOf(input)
			}

			result.Failed = append(result.Failed, failure)

			if options.Logger != nil {
				options.Logger.Warn("batch element failed", map[string]interface{}{
					"operation": operation,
					"index":     index,
					"id":        failure.ID,
					"error":     err.Error(),
				})
			}
		} else {
			result.Succeeded = append(result.Succeeded, out)
		}

		if ShouldReportProgress(index, total) {
			reportProgress(options, NewProgress(operation, index, total))
		}
	}

	if options.Logger != nil {
		options.Logger.Info("batch finished", map[string]interface{}{
			"operation": operation,
			"succeeded": result.SuccessCount(),
			"failed":    result.FailureCount(),
		})
	}

	return result
}

func reportProgress(options *BatchOptions, progress Progress) {
	if options.Progress != nil {
		options.Progress(progress)
	}

	if options.Logger != nil {
		options.Logger.Info("batch progress", map[string]interface{}{
			"operation": progress.Operation,
			"completed": progress.Completed,
			"total":     progress.Total,
			"percent":   progress.Percent,
		})
	}
}

// BatchCreate creates every request in order and returns the created entities.
func BatchCreate[R, C any](ctx context.Context, requests []*C, create func(context.Context, *C) (*R, error), opts ...BatchOption) *BatchResult[*R] {
	return RunBatch(ctx, "create", requests, create, nil, opts...)
}

// BatchExecutor runs the bulk operations over a Client.
type BatchExecutor struct {
	client  Client
	options []BatchOption
}

// NewBatchExecutor creates a new batch executor.
func NewBatchExecutor(client Client, opts ...BatchOption) *BatchExecutor {
	return &BatchExecutor{client: client, options: opts}
}

func (b *BatchExecutor) with(opts []BatchOption) []BatchOption {
	merged := make([]BatchOption, 0, len(b.options)+len(opts))
	merged = append(merged, b.options...)

	return append(merged, opts...)
}

// CreateLaboratories creates laboratories in order.
func (b *BatchExecutor) CreateLaboratories(ctx context.Context, requests []*LaboratoryCreateRequest, opts ...BatchOption) *BatchResult[*Laboratory] {
	return RunBatch(ctx, "create laboratories", requests, b.client.Laboratories().Create, nil, b.with(opts)...)
}

// CreateStorages creates storage devices in order.
func (b *BatchExecutor) CreateStorages(ctx context.Context, requests []*StorageCreateRequest, opts ...BatchOption) *BatchResult[*Storage] {
	return RunBatch(ctx, "create storages", requests, b.client.Storages().Create, nil, b.with(opts)...)
}

// CreateSections creates sections in order.
func (b *BatchExecutor) CreateSections(ctx context.Context, requests []*SectionCreateRequest, opts ...BatchOption) *BatchResult[*Section] {
	return RunBatch(ctx, "create sections", requests, b.client.Sections().Create, nil, b.with(opts)...)
}

// CreateItems creates items in order.
func (b *BatchExecutor) CreateItems(ctx context.Context, requests []*ItemCreateRequest, opts ...BatchOption) *BatchResult[*Item] {
	return RunBatch(ctx, "create items", requests, b.client.Items().Create, nil, b.with(opts)...)
}

// BulkUpdateQuantities sets the stock level of each item independently.
func (b *BatchExecutor) BulkUpdateQuantities(ctx context.Context, updates []QuantityUpdate, opts ...BatchOption) *BatchResult[*QuantityChange] {
	items := b.client.Items()

	update := func(ctx context.Context, u QuantityUpdate) (*QuantityChange, error) {
		change, err := items.UpdateQuantity(ctx, u.ItemID, u.Quantity)
		if err != nil {
			return nil, fmt.Errorf("updating quantity of item %d: %w", u.ItemID, err)
		}

		change.ItemID = u.ItemID

		return change, nil
	}

	return RunBatch(ctx, "update quantities", updates, update, func(u QuantityUpdate) int { return u.ItemID }, b.with(opts)...)
}

// MigrateSections moves each section to targetStorageID. Each section is read
// first so failures can be reported by name.
func (b *BatchExecutor) MigrateSections(ctx context.Context, sectionIDs []int, targetStorageID int, opts ...BatchOption) *BatchResult[*Section] {
	sections := b.client.Sections()

	migrate := func(ctx context.Context, id int) (*Section, error) {
		current, err := sections.Get(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("getting section %d: %w", id, err)
		}

		updated, err := sections.Update(ctx, id, &SectionUpdateRequest{StorageID: &targetStorageID})
		if err != nil {
			return nil, fmt.Errorf("moving section %q to storage %d: %w", current.Name, targetStorageID, err)
		}

		return updated, nil
	}

	return RunBatch(ctx, "migrate sections", sectionIDs, migrate, func(id int) int { return id }, b.with(opts)...)
}
