package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAvailabilityOf(t *testing.T) {
	cases := []struct {
		stock int
		want  StockStatus
	}{
		{-5, StockUnavailable},
		{0, StockUnavailable},
		{1, StockLimited},
		{2, StockLimited},
		{3, StockLimited},
		{4, StockAvailable},
		{100, StockAvailable},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, AvailabilityOf(tc.stock), "stock=%d", tc.stock)
	}
}

func TestProductSuggestionNeverLeaksIDOrStock(t *testing.T) {
	fact := ProductFact{
		ID:         42,
		Name:       "Bague Solitaire Éclat",
		Price:      1290,
		Category:   "Bagues",
		Stock:      2,
		IsFeatured: true,
	}
	data, err := json.Marshal(SuggestionOf(fact))
	require.NoError(t, err)

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &out))
	require.NotContains(t, out, "id")
	require.NotContains(t, out, "productId")
	require.NotContains(t, out, "stock")
	require.Equal(t, string(StockLimited), out["stockStatus"])
}
