package csapi_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/central-storage/csclient/pkg/csapi"
)

type deleteLog struct {
	mu      sync.Mutex
	entries []string
}

func (l *deleteLog) record(kind string) func(mock.Arguments) {
	return func(mock.Arguments) {
		l.mu.Lock()
		defer l.mu.Unlock()

		l.entries = append(l.entries, kind)
	}
}

func (l *deleteLog) kinds() []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	return append([]string(nil), l.entries...)
}

// populated returns a client holding two items, one section, one storage and one laboratory.
func populated(log *deleteLog) *MockClient {
	client := NewMockClient()

	client.items.On("List", mock.Anything, mock.Anything).Return(onePage(item(1), item(2)), nil)
	client.sections.On("List", mock.Anything, mock.Anything).Return(onePage(section(3)), nil)
	client.storages.On("List", mock.Anything, mock.Anything).Return(onePage(storage(4)), nil)
	client.labs.On("List", mock.Anything, mock.Anything).Return(onePage(lab(5)), nil)

	client.items.On("Delete", mock.Anything, mock.Anything).Run(log.record("item")).Return(nil)
	client.sections.On("Delete", mock.Anything, mock.Anything).Run(log.record("section")).Return(nil)
	client.storages.On("Delete", mock.Anything, mock.Anything).Run(log.record("storage")).Return(nil)
	client.labs.On("Delete", mock.Anything, mock.Anything).Run(log.record("laboratory")).Return(nil)

	return client
}

func TestDeletionOrder(t *testing.T) {
	t.Parallel()

	order, err := csapi.DeletionOrder(csapi.HierarchyDependencies)
	require.NoError(t, err)
	assert.Equal(t, []csapi.ResourceType{
		csapi.ResourceItem, csapi.ResourceSection, csapi.ResourceStorage, csapi.ResourceLaboratory,
	}, order)

	creation, err := csapi.CreationOrder(csapi.HierarchyDependencies)
	require.NoError(t, err)
	assert.Equal(t, csapi.ResourceLaboratory, creation[0])
}

func TestCreationOrder_Cycle(t *testing.T) {
	t.Parallel()

	_, err := csapi.CreationOrder(map[csapi.ResourceType][]csapi.ResourceType{
		csapi.ResourceItem:    {csapi.ResourceSection},
		csapi.ResourceSection: {csapi.ResourceItem},
	})
	require.ErrorIs(t, err, csapi.ErrDependencyCycle)
}

func TestPurger_PurgeAll(t *testing.T) {
	t.Parallel()

	log := &deleteLog{}
	client := populated(log)

	report, err := csapi.NewPurger(client).PurgeAll(context.Background(), true)
	require.NoError(t, err)

	assert.True(t, report.Confirmed)
	assert.True(t, report.Success)
	assert.True(t, report.Clean())
	assert.Equal(t, 5, report.DeletedCount())
	assert.Equal(t, []string{"item", "item", "section", "storage", "laboratory"}, log.kinds())

	require.Len(t, report.Phases, 4)
	assert.Equal(t, csapi.ResourceItem, report.Phases[0].Resource)
	assert.Equal(t, 2, report.Phases[0].Found)
}

func TestPurger_RequiresConfirmation(t *testing.T) {
	t.Parallel()

	log := &deleteLog{}
	client := populated(log)

	report, err := csapi.NewPurger(client).PurgeAll(context.Background(), false)
	require.NoError(t, err)
	assert.False(t, report.Confirmed)
	assert.False(t, report.Success)
	assert.Empty(t, report.Phases)
	assert.Empty(t, log.kinds())
	client.items.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
}

func TestPurger_DeleteFailuresAreItemized(t *testing.T) {
	t.Parallel()

	log := &deleteLog{}
	client := NewMockClient()

	client.items.On("List", mock.Anything, mock.Anything).Return(onePage(item(1), item(2), item(3)), nil)
	client.sections.On("List", mock.Anything, mock.Anything).Return(onePage[csapi.Section](), nil)
	client.storages.On("List", mock.Anything, mock.Anything).Return(onePage[csapi.Storage](), nil)
	client.labs.On("List", mock.Anything, mock.Anything).Return(onePage[csapi.Laboratory](), nil)

	client.items.On("Delete", mock.Anything, 2).Return(csapi.NewStatusError(500, []byte(`{"error":"db locked"}`)))
	client.items.On("Delete", mock.Anything, mock.Anything).Run(log.record("item")).Return(nil)

	report, err := csapi.NewPurger(client, csapi.WithPurgeConcurrency(3)).PurgeAll(context.Background(), true)
	require.NoError(t, err)

	assert.True(t, report.Success)
	assert.False(t, report.Clean())
	assert.Equal(t, 2, report.DeletedCount())

	failures := report.Failures()
	require.Len(t, failures, 1)
	assert.Equal(t, csapi.ResourceItem, failures[0].Resource)
	assert.Equal(t, 2, failures[0].ID)
	assert.Equal(t, 2, failures[0].Index)
	assert.True(t, csapi.IsServerError(failures[0].Err))
}

func TestPurger_NotFoundCountsAsDeleted(t *testing.T) {
	t.Parallel()

	client := NewMockClient()

	client.items.On("List", mock.Anything, mock.Anything).Return(onePage(item(1), item(2)), nil)
	client.sections.On("List", mock.Anything, mock.Anything).Return(onePage[csapi.Section](), nil)
	client.storages.On("List", mock.Anything, mock.Anything).Return(onePage[csapi.Storage](), nil)
	client.labs.On("List", mock.Anything, mock.Anything).Return(onePage[csapi.Laboratory](), nil)

	// item 2 was removed by an earlier attempt whose response was lost
	client.items.On("Delete", mock.Anything, 2).Return(csapi.NewStatusError(404, []byte(`{"error":"Item not found"}`)))
	client.items.On("Delete", mock.Anything, mock.Anything).Return(nil)

	report, err := csapi.NewPurger(client).PurgeAll(context.Background(), true)
	require.NoError(t, err)

	assert.True(t, report.Clean())
	assert.Equal(t, 2, report.DeletedCount())
	assert.Empty(t, report.Failures())
}

func TestPurger_ListingFailureAborts(t *testing.T) {
	t.Parallel()

	log := &deleteLog{}
	client := NewMockClient()

	client.items.On("List", mock.Anything, mock.Anything).Return(onePage(item(1)), nil)
	client.items.On("Delete", mock.Anything, mock.Anything).Run(log.record("item")).Return(nil)
	client.sections.On("List", mock.Anything, mock.Anything).Return(nil, errBoom)

	report, err := csapi.NewPurger(client).PurgeAll(context.Background(), true)
	require.Error(t, err)
	assert.True(t, csapi.IsPurgeAborted(err))
	require.ErrorIs(t, err, errBoom)

	assert.False(t, report.Success)
	require.Len(t, report.Phases, 2)
	assert.Equal(t, 1, report.Phases[0].Deleted)
	require.Error(t, report.Phases[1].Err)
	assert.Equal(t, []string{"item"}, log.kinds())
	client.storages.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
}

func TestPurger_CancelledContext(t *testing.T) {
	t.Parallel()

	log := &deleteLog{}
	client := populated(log)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := csapi.NewPurger(client).PurgeAll(ctx, true)
	require.Error(t, err)
	require.ErrorIs(t, err, context.Canceled)
	assert.False(t, report.Success)
	assert.Empty(t, log.kinds())
}
