package csapi_test

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/central-storage/csclient/pkg/csapi"
)

var errBoom = errors.New("boom")

func TestNewProgress(t *testing.T) {
	t.Parallel()

	tests := []struct {
		completed, total int
		percent          float64
	}{
		{1, 3, 33.3},
		{2, 3, 66.7},
		{3, 3, 100},
		{10, 25, 40},
		{1, 7, 14.3},
		{0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(strconv.Itoa(tt.completed)+"/"+strconv.Itoa(tt.total), func(t *testing.T) {
			t.Parallel()

			progress := csapi.NewProgress("op", tt.completed, tt.total)
			assert.InDelta(t, tt.percent, progress.Percent, 1e-9)
		})
	}

	assert.Equal(t, "2/3 (66.7%)", csapi.NewProgress("op", 2, 3).String())
}

func TestRunBatch_ProgressCadence(t *testing.T) {
	t.Parallel()

	inputs := make([]int, 25)
	for i := range inputs {
		inputs[i] = i + 1
	}

	var completed []int

	result := csapi.RunBatch(context.Background(), "double", inputs,
		func(_ context.Context, n int) (int, error) { return n * 2, nil },
		nil,
		csapi.WithProgress(func(p csapi.Progress) { completed = append(completed, p.Completed) }),
	)

	assert.Equal(t, []int{10, 20, 25}, completed)
	assert.Equal(t, 25, result.SuccessCount())
	assert.Equal(t, 50, result.Succeeded[24])
}

func TestRunBatch_IsolatesFailures(t *testing.T) {
	t.Parallel()

	result := csapi.RunBatch(context.Background(), "check", []int{1, 2, 3, 4},
		func(_ context.Context, n int) (string, error) {
			if n%2 == 0 {
				return "", errBoom
			}

			return strconv.Itoa(n), nil
		},
		func(n int) int { return n * 100 },
	)

	assert.Equal(t, []string{"1", "3"}, result.Succeeded)
	require.Len(t, result.Failed, 2)
	assert.Equal(t, 2, result.Failed[0].Index)
	assert.Equal(t, 200, result.Failed[0].ID)
	assert.Equal(t, 4, result.Failed[1].Index)
	require.ErrorIs(t, result.Failed[1], errBoom)
	assert.Equal(t, "#4 (id 400): boom", result.Failed[1].Error())
	assert.Equal(t, 4, result.Total())
}

func TestRunBatch_CancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	result := csapi.RunBatch(ctx, "cancel", []int{1, 2, 3},
		func(_ context.Context, n int) (int, error) {
			calls++
			if n == 1 {
				cancel()
			}

			return n, nil
		},
		nil,
	)

	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, result.SuccessCount())
	require.Len(t, result.Failed, 2)
	require.ErrorIs(t, result.Failed[0].Err, context.Canceled)
}

func TestRunBatch_Empty(t *testing.T) {
	t.Parallel()

	reported := false
	result := csapi.RunBatch(context.Background(), "none", nil,
		func(_ context.Context, n int) (int, error) { return n, nil },
		nil,
		csapi.WithProgress(func(csapi.Progress) { reported = true }),
	)

	assert.Zero(t, result.Total())
	assert.False(t, reported)
}

func TestBatchExecutor_CreateLaboratories(t *testing.T) {
	t.Parallel()

	client := NewMockClient()
	ctx := context.Background()

	okReq := &csapi.LaboratoryCreateRequest{Code: "A", Name: "Alpha"}
	dupReq := &csapi.LaboratoryCreateRequest{Code: "A", Name: "Again"}
	created := lab(1)

	client.labs.On("Create", ctx, okReq).Return(&created, nil).Once()
	client.labs.On("Create", ctx, dupReq).Return(nil, errBoom).Once()

	result := csapi.NewBatchExecutor(client).CreateLaboratories(ctx, []*csapi.LaboratoryCreateRequest{okReq, dupReq})

	require.Equal(t, 1, result.SuccessCount())
	assert.Equal(t, 1, result.Succeeded[0].ID)
	require.Equal(t, 1, result.FailureCount())
	assert.Equal(t, 2, result.Failed[0].Index)
	client.labs.AssertExpectations(t)
}

func TestBatchExecutor_BulkUpdateQuantities(t *testing.T) {
	t.Parallel()

	client := NewMockClient()
	ctx := context.Background()

	client.items.On("UpdateQuantity", ctx, 5, 12).
		Return(&csapi.QuantityChange{OldQuantity: 3, NewQuantity: 12}, nil)
	client.items.On("UpdateQuantity", ctx, 999, 1).
		Return(nil, csapi.NewStatusError(404, []byte(`{"error":"Item not found"}`)))

	var progress []csapi.Progress

	executor := csapi.NewBatchExecutor(client, csapi.WithProgress(func(p csapi.Progress) { progress = append(progress, p) }))
	result := executor.BulkUpdateQuantities(ctx, []csapi.QuantityUpdate{{ItemID: 5, Quantity: 12}, {ItemID: 999, Quantity: 1}})

	require.Equal(t, 1, result.SuccessCount())
	assert.Equal(t, 5, result.Succeeded[0].ItemID)
	assert.Equal(t, 12, result.Succeeded[0].NewQuantity)

	require.Equal(t, 1, result.FailureCount())
	assert.Equal(t, 999, result.Failed[0].ID)
	assert.True(t, csapi.IsNotFound(result.Failed[0]))

	require.Len(t, progress, 1)
	assert.Equal(t, "update quantities", progress[0].Operation)
}

func TestBatchExecutor_MigrateSections(t *testing.T) {
	t.Parallel()

	client := NewMockClient()
	ctx := context.Background()

	target := 7
	moved := section(1)
	moved.StorageID = target

	client.sections.On("Get", ctx, 1).Return(ptrTo(section(1)), nil)
	client.sections.On("Update", ctx, 1, &csapi.SectionUpdateRequest{StorageID: &target}).Return(&moved, nil)
	client.sections.On("Get", ctx, 2).Return(nil, csapi.NewStatusError(404, nil))

	result := csapi.NewBatchExecutor(client).MigrateSections(ctx, []int{1, 2}, target)

	require.Equal(t, 1, result.SuccessCount())
	assert.Equal(t, target, result.Succeeded[0].StorageID)
	require.Equal(t, 1, result.FailureCount())
	assert.Equal(t, 2, result.Failed[0].ID)
	client.sections.AssertNotCalled(t, "Update", ctx, 2, mock.Anything)
}

func TestBatchExecutor_SetupHierarchy(t *testing.T) {
	t.Parallel()

	client := NewMockClient()
	ctx := context.Background()

	labReq := &csapi.LaboratoryCreateRequest{Code: "L1", Name: "Lab"}
	createdLab := lab(10)

	client.labs.On("Create", ctx, labReq).Return(&createdLab, nil)
	client.storages.On("Create", ctx, mock.MatchedBy(func(r *csapi.StorageCreateRequest) bool {
		return r.LabID == 10
	})).Return(ptrTo(storage(20)), nil)
	client.sections.On("Create", ctx, mock.MatchedBy(func(r *csapi.SectionCreateRequest) bool {
		return r.StorageID == 20 && r.Code == "S1"
	})).Return(ptrTo(section(30)), nil)
	client.sections.On("Create", ctx, mock.MatchedBy(func(r *csapi.SectionCreateRequest) bool {
		return r.Code == "S2"
	})).Return(nil, errBoom)
	client.items.On("Create", ctx, mock.MatchedBy(func(r *csapi.ItemCreateRequest) bool {
		return r.SectionID == 30
	})).Return(ptrTo(item(40)), nil)

	result := csapi.NewBatchExecutor(client).SetupHierarchy(ctx, &csapi.HierarchyPlan{
		Laboratories: []*csapi.LaboratoryCreateRequest{labReq},
		Storages: func(*csapi.Laboratory) []*csapi.StorageCreateRequest {
			return []*csapi.StorageCreateRequest{{Code: "F1", Name: "Fridge"}}
		},
		Sections: func(*csapi.Storage) []*csapi.SectionCreateRequest {
			return []*csapi.SectionCreateRequest{{Code: "S1", Name: "Top"}, {Code: "S2", Name: "Bottom"}}
		},
		Items: func(*csapi.Section) []*csapi.ItemCreateRequest {
			return []*csapi.ItemCreateRequest{{Code: "I1", Name: "Ethanol"}}
		},
	})

	assert.Equal(t, 1, result.Laboratories.SuccessCount())
	assert.Equal(t, 1, result.Storages.SuccessCount())
	assert.Equal(t, 1, result.Sections.SuccessCount())
	assert.Equal(t, 1, result.Items.SuccessCount())
	assert.Equal(t, 1, result.FailureCount())
	client.items.AssertNumberOfCalls(t, "Create", 1)
}

func TestBatchExecutor_Inventory(t *testing.T) {
	t.Parallel()

	client := NewMockClient()
	ctx := context.Background()

	client.labs.On("List", ctx, mock.Anything).Return(&csapi.ListResponse[csapi.Laboratory]{Pagination: csapi.Pagination{Total: 2}}, nil)
	client.storages.On("List", ctx, mock.Anything).Return(&csapi.ListResponse[csapi.Storage]{Pagination: csapi.Pagination{Total: 4}}, nil)
	client.sections.On("List", ctx, mock.Anything).Return(&csapi.ListResponse[csapi.Section]{Pagination: csapi.Pagination{Total: 9}}, nil)
	client.items.On("List", ctx, mock.Anything).Return(nil, errBoom)

	_, err := csapi.NewBatchExecutor(client).Inventory(ctx)
	require.ErrorIs(t, err, errBoom)

	client.items.ExpectedCalls = nil
	client.items.On("List", ctx, mock.Anything).Return(&csapi.ListResponse[csapi.Item]{Pagination: csapi.Pagination{Total: 31}}, nil)

	summary, err := csapi.NewBatchExecutor(client).Inventory(ctx)
	require.NoError(t, err)
	assert.Equal(t, csapi.InventorySummary{Laboratories: 2, Storages: 4, Sections: 9, Items: 31}, *summary)
}

func ptrTo[T any](v T) *T {
	return &v
}
