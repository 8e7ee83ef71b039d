package csapi_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/central-storage/csclient/pkg/csapi"
)

func TestDate_JSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"calendar date", `"2024-06-30"`, "2024-06-30"},
		{"timestamp", `"2024-06-30T08:00:00Z"`, "2024-06-30"},
		{"null", `null`, ""},
		{"empty string", `""`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var date csapi.Date
			require.NoError(t, json.Unmarshal([]byte(tt.input), &date))
			assert.Equal(t, tt.want, date.String())
		})
	}

	var bad csapi.Date
	require.Error(t, json.Unmarshal([]byte(`"30/06/2024"`), &bad))

	encoded, err := json.Marshal(csapi.Date{})
	require.NoError(t, err)
	assert.JSONEq(t, `null`, string(encoded))
}

func TestItem_DecodesServerRecord(t *testing.T) {
	t.Parallel()

	body := `{
		"id": 12,
		"code": "CHEM-001",
		"name": "乙醇",
		"price": 12.35,
		"quantity": 2,
		"min_quantity": 5,
		"expiry_date": "2025-01-31T00:00:00Z",
		"properties": {"purity": "99.5%"},
		"section_id": 4
	}`

	var item csapi.Item
	require.NoError(t, json.Unmarshal([]byte(body), &item))

	assert.Equal(t, 12, item.GetID())
	assert.True(t, item.Price.Equal(decimal.RequireFromString("12.35")))
	assert.True(t, item.LowStock())
	require.NotNil(t, item.ExpiryDate)
	assert.Equal(t, time.January, item.ExpiryDate.Month())
	assert.Equal(t, "99.5%", item.Properties["purity"])
}

func TestItemCreateRequest_PriceEncodesAsNumber(t *testing.T) {
	t.Parallel()

	price := decimal.RequireFromString("12.50")

	encoded, err := json.Marshal(&csapi.ItemCreateRequest{Code: "I1", Name: "Ethanol", Price: &price, SectionID: 4})
	require.NoError(t, err)
	assert.Contains(t, string(encoded), `"price":12.5`)

	var server struct {
		Price float64 `json:"price"`
	}

	require.NoError(t, json.Unmarshal(encoded, &server))
	assert.InDelta(t, 12.5, server.Price, 0)
}

func TestItem_LowStockBoundary(t *testing.T) {
	t.Parallel()

	assert.True(t, (&csapi.Item{Quantity: 5, MinQuantity: 5}).LowStock())
	assert.False(t, (&csapi.Item{Quantity: 6, MinQuantity: 5}).LowStock())
}

func TestUpdateRequest_OmitsUnsetFields(t *testing.T) {
	t.Parallel()

	name := "Cold room"
	encoded, err := json.Marshal(&csapi.StorageUpdateRequest{Name: &name})
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"Cold room"}`, string(encoded))

	level := 0
	encoded, err = json.Marshal(&csapi.LaboratoryUpdateRequest{SecurityLevel: &level})
	require.NoError(t, err)
	assert.JSONEq(t, `{"security_level":0}`, string(encoded))
}

func TestEntity_CreateAndUpdateRequests(t *testing.T) {
	t.Parallel()

	section := csapi.Section{
		Resource:  csapi.Resource{ID: 9},
		Code:      "S-1",
		Name:      "Top shelf",
		Status:    csapi.SectionStatusAvailable,
		Capacity:  20,
		StorageID: 3,
	}

	create := section.CreateRequest()
	assert.Equal(t, "S-1", create.Code)
	assert.Equal(t, 3, create.StorageID)

	update := section.UpdateRequest()
	require.NotNil(t, update.StorageID)
	assert.Equal(t, 3, *update.StorageID)
	assert.Equal(t, csapi.SectionStatusAvailable, *update.Status)
}

func TestUserCreateRequest_PasswordNotInYAML(t *testing.T) {
	t.Parallel()

	encoded, err := yaml.Marshal(&csapi.UserCreateRequest{Username: "alice", Password: "secret"})
	require.NoError(t, err)
	assert.Contains(t, string(encoded), "alice")
	assert.NotContains(t, string(encoded), "secret")
}
