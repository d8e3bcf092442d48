package flights

import (
	"encoding/json"
	"testing"

	"github.com/aviatio/flightdeck/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestSearchResult_JSON_OneWayIsFlat(t *testing.T) {
	result := SearchResult{
		Outbound: &PagedResult{
			Data:       []domain.Flight{{ID: 1}},
			Pagination: Pagination{Page: 1, Limit: 10, Total: 1, TotalPages: 1},
		},
	}

	data, err := json.Marshal(result)
	assert.NoError(t, err)

	var raw map[string]json.RawMessage
	assert.NoError(t, json.Unmarshal(data, &raw))
	assert.Contains(t, raw, "data")
	assert.Contains(t, raw, "pagination")
	assert.NotContains(t, raw, "outbound")
}

func TestSearchResult_JSON_RoundTripHasBothLegs(t *testing.T) {
	result := SearchResult{
		Outbound: &PagedResult{Data: []domain.Flight{{ID: 1}}},
		Return:   &PagedResult{Data: []domain.Flight{{ID: 2}}},
	}

	data, err := json.Marshal(result)
	assert.NoError(t, err)

	var raw map[string]json.RawMessage
	assert.NoError(t, json.Unmarshal(data, &raw))
	assert.Contains(t, raw, "outbound")
	assert.Contains(t, raw, "return")
}

func TestSearchResult_JSON_RoundTripsThroughCache(t *testing.T) {
	tests := []struct {
		name   string
		result SearchResult
	}{
		{"one way", SearchResult{Outbound: &PagedResult{Data: []domain.Flight{{ID: 1}}}}},
		{"round trip", SearchResult{
			Outbound: &PagedResult{Data: []domain.Flight{{ID: 1}}},
			Return:   &PagedResult{Data: []domain.Flight{{ID: 2}}},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.result)
			assert.NoError(t, err)

			var decoded SearchResult
			assert.NoError(t, json.Unmarshal(data, &decoded))
			assert.Equal(t, tt.result.Outbound.Data[0].ID, decoded.Outbound.Data[0].ID)
			if tt.result.Return != nil {
				assert.Equal(t, tt.result.Return.Data[0].ID, decoded.Return.Data[0].ID)
			} else {
				assert.Nil(t, decoded.Return)
			}
		})
	}
}
