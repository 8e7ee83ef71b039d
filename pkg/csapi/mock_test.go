package csapi_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/central-storage/csclient/pkg/csapi"
)

// MockClient implements csapi.Client for testing.
type MockClient struct {
	labs     *MockLaboratoriesClient
	storages *MockStoragesClient
	sections *MockSectionsClient
	items    *MockItemsClient
}

func NewMockClient() *MockClient {
	return &MockClient{
		labs:     &MockLaboratoriesClient{},
		storages: &MockStoragesClient{},
		sections: &MockSectionsClient{},
		items:    &MockItemsClient{},
	}
}

func (m *MockClient) Laboratories() csapi.LaboratoriesClient { return m.labs }
func (m *MockClient) Storages() csapi.StoragesClient         { return m.storages }
func (m *MockClient) Sections() csapi.SectionsClient         { return m.sections }
func (m *MockClient) Items() csapi.ItemsClient               { return m.items }
func (m *MockClient) Movements() csapi.MovementsClient       { return nil }
func (m *MockClient) Users() csapi.UsersClient               { return nil }
func (m *MockClient) Auth() csapi.AuthClient                 { return nil }
func (m *MockClient) Stats() csapi.StatsClient               { return nil }

// mockResource holds the CRUD expectations shared by the hierarchy mocks.
type mockResource[R, C, U any] struct {
	mock.Mock
}

func (m *mockResource[R, C, U]) Get(ctx context.Context, id int) (*R, error) {
	args := m.MethodCalled("Get", ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*R), args.Error(1)
}

func (m *mockResource[R, C, U]) List(ctx context.Context, params *csapi.QueryParams) (*csapi.ListResponse[R], error) {
	args := m.MethodCalled("List", ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*csapi.ListResponse[R]), args.Error(1)
}

func (m *mockResource[R, C, U]) Create(ctx context.Context, request *C) (*R, error) {
	args := m.MethodCalled("Create", ctx, request)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*R), args.Error(1)
}

func (m *mockResource[R, C, U]) Update(ctx context.Context, id int, request *U) (*R, error) {
	args := m.MethodCalled("Update", ctx, id, request)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*R), args.Error(1)
}

func (m *mockResource[R, C, U]) Delete(ctx context.Context, id int) error {
	args := m.MethodCalled("Delete", ctx, id)

	return args.Error(0)
}

func (m *mockResource[R, C, U]) ListAll(ctx context.Context, params *csapi.QueryParams) ([]R, error) {
	return csapi.FetchAllPages[R](ctx, m, params, nil)
}

type MockLaboratoriesClient struct {
	mockResource[csapi.Laboratory, csapi.LaboratoryCreateRequest, csapi.LaboratoryUpdateRequest]
}

func (m *MockLaboratoriesClient) ListStorages(ctx context.Context, labID int) ([]csapi.Storage, error) {
	args := m.Called(ctx, labID)

	return args.Get(0).([]csapi.Storage), args.Error(1)
}

type MockStoragesClient struct {
	mockResource[csapi.Storage, csapi.StorageCreateRequest, csapi.StorageUpdateRequest]
}

func (m *MockStoragesClient) ListSections(ctx context.Context, storageID int) ([]csapi.Section, error) {
	args := m.Called(ctx, storageID)

	return args.Get(0).([]csapi.Section), args.Error(1)
}

type MockSectionsClient struct {
	mockResource[csapi.Section, csapi.SectionCreateRequest, csapi.SectionUpdateRequest]
}

type MockItemsClient struct {
	mockResource[csapi.Item, csapi.ItemCreateRequest, csapi.ItemUpdateRequest]
}

func (m *MockItemsClient) GetRecord(ctx context.Context, id int) (*csapi.ItemRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*csapi.ItemRecord), args.Error(1)
}

func (m *MockItemsClient) ListRecords(ctx context.Context, params *csapi.QueryParams) (*csapi.ListResponse[csapi.ItemRecord], error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*csapi.ListResponse[csapi.ItemRecord]), args.Error(1)
}

func (m *MockItemsClient) UpdateQuantity(ctx context.Context, id, quantity int) (*csapi.QuantityChange, error) {
	args := m.Called(ctx, id, quantity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*csapi.QuantityChange), args.Error(1)
}

func (m *MockItemsClient) Categories(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)

	return args.Get(0).([]string), args.Error(1)
}

func (m *MockItemsClient) LowStock(ctx context.Context) ([]csapi.Item, error) {
	args := m.Called(ctx)

	return args.Get(0).([]csapi.Item), args.Error(1)
}

func (m *MockItemsClient) Expiring(ctx context.Context, days int) ([]csapi.Item, error) {
	args := m.Called(ctx, days)

	return args.Get(0).([]csapi.Item), args.Error(1)
}

func (m *MockItemsClient) CodeExists(ctx context.Context, code string, excludeID int) (bool, error) {
	args := m.Called(ctx, code, excludeID)

	return args.Bool(0), args.Error(1)
}

// onePage builds a single-page list response.
func onePage[T any](data ...T) *csapi.ListResponse[T] {
	return &csapi.ListResponse[T]{
		Pagination: csapi.Pagination{Total: len(data), Page: 1, PageSize: 100, TotalPages: 1},
		Data:       data,
	}
}

func lab(id int) csapi.Laboratory {
	return csapi.Laboratory{Resource: csapi.Resource{ID: id}, Code: "LAB", Name: "Lab"}
}

func storage(id int) csapi.Storage {
	return csapi.Storage{Resource: csapi.Resource{ID: id}, Code: "ST", Name: "Storage"}
}

func section(id int) csapi.Section {
	return csapi.Section{Resource: csapi.Resource{ID: id}, Code: "SEC", Name: "Section"}
}

func item(id int) csapi.Item {
	return csapi.Item{Resource: csapi.Resource{ID: id}, Code: "IT", Name: "Item"}
}
